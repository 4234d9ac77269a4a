package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// pingCommand creates the ping command for checking server reachability.
func (c *CLI) pingCommand() *cobra.Command {
	var server string

	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Verify the server is reachable",
		Long: `Ping the configured artifact repository server and report its latency.

Examples:
  hound ping
  hound ping --server https://repo.example.com/artifactory`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPing(cmd, server)
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "server base URL (overrides config)")

	return cmd
}

func (c *CLI) runPing(cmd *cobra.Command, server string) error {
	cfg, err := loadConfig(c.ConfigPath)
	if err != nil {
		return err
	}

	client, err := c.newClient(cfg, clientOptions{server: server, noCache: true})
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	spinner := newSpinnerWithContext(ctx, "Pinging server...")
	spinner.Start()

	start := time.Now()
	err = client.Ping(ctx)
	latency := time.Since(start)

	if err != nil {
		spinner.StopWithError("Server unreachable")
		return fmt.Errorf("ping %s: %w", client.BaseURL(), err)
	}
	spinner.Stop()

	printSuccess("Server is up")
	printKeyValue("Server", StyleLink.Render(client.BaseURL()))
	printKeyValue("Latency", latency.Round(time.Millisecond).String())
	return nil
}
