package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/umarahad2005/bit-brainiac-web/internal"
)

var (
	chatSessionID string
)

var (
	userStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	assistantStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42"))

	timestampStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))
)

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat with the assistant",
	Long: `Start an interactive chat with the BitBraniac assistant.

Signed-in users chat inside a saved session; anonymous chat works without an
account but is not persisted. Type /quit to leave, /new to start a fresh
session, /sessions to list saved sessions, /open <id> to resume one, and
/clear to reset anonymous history.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, kv, cfg, err := newClient()
		if err != nil {
			return err
		}
		defer kv.Close()

		store := internal.NewChatStore(client)
		store.SetSessionLimit(cfg.SessionLimit)
		ctx := cmd.Context()

		if client.IsAuthenticated() {
			store.LoadUserSessions(ctx)
			if msg := store.Err(); msg != "" {
				internal.LogWarn("session hydration failed: %s", msg)
			}
		}

		if !client.IsAuthenticated() {
			store.LoadAnonymousHistory(ctx)
			store.ClearErr()
		}

		if chatSessionID != "" {
			if session := store.LoadSession(ctx, chatSessionID); session == nil {
				return fmt.Errorf("%s", store.Err())
			}
		}

		store.LoadWelcome(ctx)
		renderTranscript(os.Stdout, store, cfg)

		return chatLoop(cmd, store, cfg)
	},
}

func chatLoop(cmd *cobra.Command, store *internal.ChatStore, cfg internal.Config) error {
	ctx := cmd.Context()
	reader := bufio.NewReader(os.Stdin)

	for {
		fmt.Print(userStyle.Render("you> "))
		line, err := reader.ReadString('\n')
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		line = strings.TrimSpace(line)

		switch {
		case line == "/quit" || line == "/exit":
			return nil
		case line == "/new":
			if session := store.CreateNewSession(ctx, internal.DefaultSessionTitle); session != nil {
				fmt.Println(successStyle.Render("Started: " + session.Title))
			} else {
				fmt.Println(errorStyle.Render(store.Err()))
			}
			continue
		case line == "/clear":
			if store.Current() != nil {
				fmt.Println(infoStyle.Render("/clear only applies to anonymous chat; use `bitbraniac sessions delete` instead."))
				continue
			}
			if store.ClearAnonymousChat(ctx) {
				fmt.Println(successStyle.Render("Chat history cleared."))
			} else {
				fmt.Println(errorStyle.Render(store.Err()))
			}
			continue
		case line == "/sessions":
			for _, session := range store.Sessions() {
				fmt.Printf("  %s  %s\n", session.ID, session.Title)
			}
			continue
		case strings.HasPrefix(line, "/open "):
			id := strings.TrimSpace(strings.TrimPrefix(line, "/open "))
			if session := store.LoadSession(ctx, id); session != nil {
				fmt.Println(successStyle.Render("Opened: " + session.Title))
				renderTranscript(os.Stdout, store, cfg)
			} else {
				fmt.Println(errorStyle.Render(store.Err()))
			}
			continue
		case line == "":
			continue
		}

		before := len(store.Messages())
		store.SendMessage(ctx, line)

		if msg := store.Err(); msg != "" {
			// Input stays retryable: the optimistic turn has been rolled back.
			fmt.Println(errorStyle.Render(msg))
			continue
		}

		messages := store.Messages()
		for _, msg := range messages[before:] {
			if msg.Role == internal.RoleAssistant {
				printMessage(os.Stdout, msg)
			}
		}
	}
}

func renderTranscript(w io.Writer, store *internal.ChatStore, cfg internal.Config) {
	if current := store.Current(); current != nil {
		fmt.Fprintln(w, titleStyle.Render(current.Title))
	}

	messages := internal.TruncateHistory(store.Messages(),
		cfg.HistoryTokenLimit, cfg.HistoryMessageLimit)
	for _, msg := range messages {
		printMessage(w, msg)
	}
}

func printMessage(w io.Writer, msg internal.Message) {
	label := assistantStyle.Render("assistant")
	if msg.Role == internal.RoleUser {
		label = userStyle.Render("you")
	}
	if msg.Timestamp != "" {
		label += " " + timestampStyle.Render(msg.Timestamp)
	}
	fmt.Fprintf(w, "%s\n%s\n\n", label, msg.Content)
}

func init() {
	chatCmd.Flags().StringVar(&chatSessionID, "session", "", "Open a saved session by id")
	rootCmd.AddCommand(chatCmd)
}
