package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// healthCmd represents the health command
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check backend connectivity",
	Long: `Probe the backend's chat health endpoint and report whether the
assistant is reachable from this machine.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, kv, _, err := newClient()
		if err != nil {
			return err
		}
		defer kv.Close()

		fmt.Printf("Backend: %s\n", infoStyle.Render(client.BaseURL()))

		env := client.CheckHealth(cmd.Context())
		if !env.Success {
			fmt.Println(errorStyle.Render("✗ Disconnected: ") + env.ErrorMessage("backend unhealthy"))
			return fmt.Errorf("backend health check failed")
		}

		fmt.Println(successStyle.Render("✓ Connected"))
		return nil
	},
}

// welcomeCmd represents the welcome command
var welcomeCmd = &cobra.Command{
	Use:   "welcome",
	Short: "Print the assistant's greeting",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, kv, _, err := newClient()
		if err != nil {
			return err
		}
		defer kv.Close()

		greeting, env := client.WelcomeMessage(cmd.Context())
		if !env.Success {
			return fmt.Errorf("%s", env.ErrorMessage("failed to fetch welcome message"))
		}
		fmt.Println(greeting)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(welcomeCmd)
}
