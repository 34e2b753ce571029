package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/umarahad2005/bit-brainiac-web/internal"
	"github.com/umarahad2005/bit-brainiac-web/internal/export"
)

var (
	exportFormat string
	exportOutput string
	exportCached bool
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <session-id>",
	Short: "Export a session transcript",
	Long: `Export one session in JSON, JSONL, YAML, or Markdown.

The session is fetched from the backend unless --cached is given, in which
case the locally cached copy is used.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		exporter, err := export.NewExporter(exportFormat)
		if err != nil {
			return err
		}

		client, kv, cfg, err := newClient()
		if err != nil {
			return err
		}
		defer kv.Close()

		cache := internal.NewCacheManager(cfg.CachePath())

		var session *internal.Session
		if exportCached {
			session, err = cache.LoadSession(args[0])
			if err != nil {
				return err
			}
			if session == nil {
				return fmt.Errorf("session %s is not cached; run `bitbraniac sessions show %s` first", args[0], args[0])
			}
		} else {
			store := internal.NewChatStore(client)
			session = store.LoadSession(cmd.Context(), args[0])
			if session == nil {
				return fmt.Errorf("%s", store.Err())
			}
			if err := cache.SaveSession(session); err != nil {
				internal.LogWarn("failed to cache session: %v", err)
			}
		}

		out := os.Stdout
		if exportOutput != "" {
			path := exportOutput
			if filepath.Ext(path) == "" {
				path = fmt.Sprintf("%s.%s", path, exporter.Extension())
			}
			f, err := os.Create(path)
			if err != nil {
				return &internal.ExportError{Format: exportFormat, Path: path, Err: err}
			}
			defer f.Close()
			out = f
			fmt.Fprintln(os.Stderr, successStyle.Render("Exporting to ")+path)
		}

		if err := exporter.Export(session, out); err != nil {
			return &internal.ExportError{Format: exportFormat, Path: exportOutput, Err: err}
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "Export format (json, jsonl, yaml, md)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default stdout)")
	exportCmd.Flags().BoolVar(&exportCached, "cached", false, "Export the locally cached copy without contacting the backend")
	rootCmd.AddCommand(exportCmd)
}
