package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/umarahad2005/bit-brainiac-web/internal"
)

var (
	verbose    bool
	baseURL    string
	configPath string
	version    string = "dev"
	commit     string = "unknown"
	date       string = "unknown"
)

var (
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "bitbraniac",
	Short: "Chat with the BitBraniac educational assistant",
	Long: `A terminal client for the BitBraniac educational assistant.

Chat with the assistant, manage saved conversation sessions, and export
transcripts, all against a running BitBraniac backend.

Quick Start:
  bitbraniac chat                        # Start chatting (anonymous)
  bitbraniac login                       # Sign in to keep sessions
  bitbraniac sessions list               # List saved sessions
  bitbraniac export <session-id> -f md   # Export a session as Markdown`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "Backend API base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default ~/.bitbraniac/config.yaml)")

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// loadConfig resolves the effective configuration: defaults, then config
// file, then environment, then flags.
func loadConfig() (internal.Config, error) {
	path := configPath
	if path == "" {
		if dir, err := internal.DefaultDataDir(); err == nil {
			path = filepath.Join(dir, "config.yaml")
		}
	}

	cfg, err := internal.LoadConfig(path)
	if err != nil {
		return cfg, err
	}
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return cfg, nil
}

// newClient builds the authenticated client over the persistent credential
// store. The caller owns closing the returned KVStore.
func newClient() (*internal.Client, *internal.KVStore, internal.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, cfg, err
	}

	kv, err := internal.OpenKV(cfg.CredentialsPath())
	if err != nil {
		return nil, nil, cfg, err
	}

	clientID, err := kv.ClientID()
	if err != nil {
		internal.LogWarn("failed to read client id: %v", err)
	}

	client := internal.NewClient(cfg.BaseURL, internal.NewKVTokenStore(kv),
		internal.WithTimeout(time.Duration(cfg.RequestTimeout)),
		internal.WithClientID(clientID))
	client.AuthExpired = func() {
		fmt.Println(errorStyle.Render("Session expired. Please run `bitbraniac login` again."))
	}
	return client, kv, cfg, nil
}
