package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/prgi-labs/titlechain/pkg/client"
)

func createHistoryCmd() *cobra.Command {
	var gatewayURL string
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show a running gateway's session history",
		Long: `Show the verdicts and attestations journaled by a running gateway.

The journal lives in the gateway process and is discarded when it exits;
this command queries the gateway's history endpoint.

EXAMPLES:
  titlechain history
  titlechain history --gateway http://localhost:8080 --limit 20
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd.Context(), gatewayURL, limit)
		},
	}

	cmd.Flags().StringVar(&gatewayURL, "gateway", "", "gateway URL (default from TITLECHAIN_GATEWAY or http://localhost:8080)")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum entries per section")

	return cmd
}

func runHistory(ctx context.Context, gatewayURL string, limit int) error {
	if gatewayURL == "" {
		gatewayURL = os.Getenv("TITLECHAIN_GATEWAY")
	}
	if gatewayURL == "" {
		gatewayURL = "http://localhost:8080"
	}

	var opts []client.Option
	if key := os.Getenv("TITLECHAIN_GATEWAY_KEY"); key != "" {
		opts = append(opts, client.WithAPIKey(key))
	}

	history, err := client.New(gatewayURL, opts...).GetHistory(ctx, limit)
	if err != nil {
		return fmt.Errorf("fetching history from %s: %w", gatewayURL, err)
	}

	if len(history.Verdicts) == 0 && len(history.Attestations) == 0 {
		fmt.Println("No session activity yet.")
		return nil
	}

	if len(history.Verdicts) > 0 {
		fmt.Println("Verdicts:")
		for _, v := range history.Verdicts {
			mark := "❌"
			if v.Approved {
				mark = "✅"
			}
			fmt.Printf("   %s %-40s %.1f%%  %s\n", mark, v.Title, v.Probability, v.CreatedAt)
		}
	}

	if len(history.Attestations) > 0 {
		fmt.Println()
		fmt.Println("Attestations:")
		for _, rec := range history.Attestations {
			fmt.Printf("   [%s] %-40s %s\n", rec.Status, rec.Title, rec.TitleHash)
			if rec.TxHash != "" {
				fmt.Printf("            tx %s\n", rec.TxHash)
			}
			if rec.Reason != "" {
				fmt.Printf("            reason: %s\n", rec.Reason)
			}
		}
	}

	return nil
}
