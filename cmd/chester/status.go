package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the current check, tests and coverage status",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().String("socket", "/run/chester.sock", "Path to the chester IPC Unix socket")
}

func runStatus(cmd *cobra.Command, args []string) error {
	socketPath, _ := cmd.Flags().GetString("socket")

	client := &http.Client{
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, "unix", socketPath)
			},
		},
		Timeout: 5 * time.Second,
	}

	for _, stage := range []string{"check", "tests", "coverage"} {
		value, err := fetchStatus(client, stage)
		if err != nil {
			return fmt.Errorf("fetch %s status: %w", stage, err)
		}
		fmt.Printf("%-10s %s\n", stage, value)
	}
	return nil
}

// fetchStatus reads a single {"<stage>_status": "..."} response body and
// returns its value, whatever that value is (an outcome word, or for
// coverage a percentage rendered as a string).
func fetchStatus(client *http.Client, stage string) (string, error) {
	resp, err := client.Get(fmt.Sprintf("http://unix/%s/status", stage))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	return body[stage+"_status"], nil
}
