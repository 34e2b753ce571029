package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/umarahad2005/bit-brainiac-web/internal"
)

var (
	sessionsCached bool
	newTitle       string
	clearYes       bool
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)
)

// sessionsCmd represents the sessions command group
var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage saved chat sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved sessions",
	Long: `List saved chat sessions, most recent first.

With --cached, the locally cached listing is shown without contacting the
backend.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, kv, cfg, err := newClient()
		if err != nil {
			return err
		}
		defer kv.Close()

		cache := internal.NewCacheManager(cfg.CachePath())

		if sessionsCached {
			index, err := cache.LoadIndex()
			if err != nil {
				return err
			}
			if index == nil {
				fmt.Println(infoStyle.Render("No cached session list. Run without --cached first."))
				return nil
			}
			displayIndex(index)
			return nil
		}

		store := internal.NewChatStore(client)
		store.SetSessionLimit(cfg.SessionLimit)
		store.LoadUserSessions(cmd.Context())
		if msg := store.Err(); msg != "" {
			return fmt.Errorf("%s", msg)
		}

		sessions := store.Sessions()
		if err := cache.SaveIndex(sessions, client.BaseURL()); err != nil {
			internal.LogWarn("failed to refresh session cache: %v", err)
		}
		displaySessions(sessions)
		return nil
	},
}

var sessionsNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a new session",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, kv, _, err := newClient()
		if err != nil {
			return err
		}
		defer kv.Close()

		store := internal.NewChatStore(client)
		session := store.CreateNewSession(cmd.Context(), newTitle)
		if session == nil {
			return fmt.Errorf("%s", store.Err())
		}
		fmt.Println(successStyle.Render("Created: ") + session.ID)
		return nil
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show one session's transcript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, kv, cfg, err := newClient()
		if err != nil {
			return err
		}
		defer kv.Close()

		store := internal.NewChatStore(client)
		session := store.LoadSession(cmd.Context(), args[0])
		if session == nil {
			return fmt.Errorf("%s", store.Err())
		}

		cache := internal.NewCacheManager(cfg.CachePath())
		if err := cache.SaveSession(session); err != nil {
			internal.LogWarn("failed to cache session: %v", err)
		}

		renderTranscript(os.Stdout, store, cfg)
		return nil
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Delete a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, kv, cfg, err := newClient()
		if err != nil {
			return err
		}
		defer kv.Close()

		store := internal.NewChatStore(client)
		if !store.DeleteSession(cmd.Context(), args[0]) {
			return fmt.Errorf("%s", store.Err())
		}

		cache := internal.NewCacheManager(cfg.CachePath())
		if err := cache.RemoveSession(args[0]); err != nil {
			internal.LogWarn("failed to evict cached session: %v", err)
		}

		fmt.Println(successStyle.Render("Deleted."))
		return nil
	},
}

var sessionsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !clearYes {
			return fmt.Errorf("refusing to delete all sessions without --yes")
		}

		client, kv, cfg, err := newClient()
		if err != nil {
			return err
		}
		defer kv.Close()

		store := internal.NewChatStore(client)
		if !store.ClearAllSessions(cmd.Context()) {
			return fmt.Errorf("%s", store.Err())
		}

		cache := internal.NewCacheManager(cfg.CachePath())
		if err := cache.Clear(); err != nil {
			internal.LogWarn("failed to clear session cache: %v", err)
		}

		fmt.Println(successStyle.Render("All sessions cleared."))
		return nil
	},
}

func displaySessions(sessions []internal.Session) {
	if len(sessions) == 0 {
		fmt.Println(infoStyle.Render("No saved sessions."))
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, headerStyle.Render("ID")+"\t"+headerStyle.Render("Title")+"\t"+headerStyle.Render("Messages")+"\t"+headerStyle.Render("Updated"))
	for _, session := range sessions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			idStyle.Render(session.ID),
			session.Title,
			countStyle.Render(fmt.Sprintf("%d", session.MessageCount)),
			session.UpdatedAt,
		)
	}
	_ = w.Flush()
}

func displayIndex(index *internal.SessionIndex) {
	if len(index.Sessions) == 0 {
		fmt.Println(infoStyle.Render("Cached session list is empty."))
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, headerStyle.Render("ID")+"\t"+headerStyle.Render("Title")+"\t"+headerStyle.Render("Messages")+"\t"+headerStyle.Render("Updated"))
	for _, entry := range index.Sessions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			idStyle.Render(entry.ID),
			entry.Title,
			countStyle.Render(fmt.Sprintf("%d", entry.MessageCount)),
			entry.UpdatedAt,
		)
	}
	_ = w.Flush()
	fmt.Printf("\n%s\n", timestampStyle.Render("cached "+index.UpdatedAt.Format("2006-01-02 15:04:05")))
}

func init() {
	sessionsListCmd.Flags().BoolVar(&sessionsCached, "cached", false, "Show the locally cached listing without contacting the backend")
	sessionsNewCmd.Flags().StringVar(&newTitle, "title", internal.DefaultSessionTitle, "Session title")
	sessionsClearCmd.Flags().BoolVar(&clearYes, "yes", false, "Confirm deleting all sessions")

	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsNewCmd)
	sessionsCmd.AddCommand(sessionsShowCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)
	sessionsCmd.AddCommand(sessionsClearCmd)
	rootCmd.AddCommand(sessionsCmd)
}
