package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	loginEmail    string
	loginPassword string
)

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the BitBraniac backend",
	Long: `Sign in with your email and password.

Credentials are exchanged for a token pair that is stored locally and
attached to subsequent requests. The access token is renewed automatically
when it expires.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCredentialFlow(cmd, "login")
	},
}

// registerCmd represents the register command
var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a BitBraniac account",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCredentialFlow(cmd, "register")
	},
}

// logoutCmd represents the logout command
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and discard stored credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, kv, _, err := newClient()
		if err != nil {
			return err
		}
		defer kv.Close()

		env := client.Logout(cmd.Context())
		if !env.Success {
			// Local credentials are cleared regardless.
			fmt.Println(infoStyle.Render("Backend logout failed: " + env.Message))
		}
		fmt.Println(successStyle.Render("Signed out."))
		return nil
	},
}

// whoamiCmd represents the whoami command
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the currently authenticated account",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, kv, _, err := newClient()
		if err != nil {
			return err
		}
		defer kv.Close()

		if !client.IsAuthenticated() {
			fmt.Println(infoStyle.Render("Not signed in."))
			return nil
		}

		user, env := client.CurrentUser(cmd.Context())
		if user == nil {
			return fmt.Errorf("%s", env.ErrorMessage("failed to fetch current user"))
		}
		fmt.Printf("%s\n", successStyle.Render(user.Email))
		if user.CreatedAt != "" {
			fmt.Printf("Member since: %s\n", user.CreatedAt)
		}
		return nil
	},
}

func runCredentialFlow(cmd *cobra.Command, action string) error {
	client, kv, _, err := newClient()
	if err != nil {
		return err
	}
	defer kv.Close()

	email := loginEmail
	if email == "" {
		fmt.Print("Email: ")
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read email: %w", err)
		}
		email = strings.TrimSpace(line)
	}

	password := loginPassword
	if password == "" {
		fmt.Print("Password: ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		password = string(raw)
	}

	ctx := cmd.Context()
	var envMessage string
	switch action {
	case "register":
		user, env := client.Register(ctx, email, password)
		if env.Success {
			fmt.Println(successStyle.Render("Account created. You are signed in."))
			if user != nil {
				fmt.Printf("Signed in as %s\n", user.Email)
			}
			return nil
		}
		envMessage = env.ErrorMessage("registration failed")
	default:
		user, env := client.Login(ctx, email, password)
		if env.Success {
			fmt.Println(successStyle.Render("Signed in."))
			if user != nil {
				fmt.Printf("Signed in as %s\n", user.Email)
			}
			return nil
		}
		envMessage = env.ErrorMessage("login failed")
	}
	return fmt.Errorf("%s", envMessage)
}

func init() {
	for _, c := range []*cobra.Command{loginCmd, registerCmd} {
		c.Flags().StringVar(&loginEmail, "email", "", "Account email (prompted when omitted)")
		c.Flags().StringVar(&loginPassword, "password", "", "Account password (prompted when omitted)")
	}
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
}
