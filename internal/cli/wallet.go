package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func createWalletCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wallet",
		Short: "Wallet session commands",
	}

	cmd.AddCommand(createWalletStatusCmd())

	return cmd
}

func createWalletStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the wallet session state",
		Long: `Show the wallet session state for the configured wallet RPC endpoint.

Resumes silently: reports an existing account if the endpoint exposes one,
but never triggers an interactive connection prompt.

EXAMPLES:
  titlechain wallet status
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWalletStatus(cmd.Context())
		},
	}

	return cmd
}

func runWalletStatus(ctx context.Context) error {
	walletRPC := getWalletRPC()
	if walletRPC == "" {
		fmt.Println("Wallet: not configured")
		fmt.Println("   Set TITLECHAIN_WALLET_RPC or pass --wallet-rpc to enable signing.")
		return nil
	}

	s, err := buildStack(ctx, true)
	if err != nil {
		return err
	}
	defer s.Close()

	s.session.Resume(ctx)

	fmt.Printf("Wallet RPC: %s\n", walletRPC)
	if !s.session.Connected() {
		fmt.Println("Status:     disconnected (no account exposed)")
		return nil
	}

	fmt.Println("Status:     connected")
	fmt.Printf("Address:    %s\n", s.session.Address())

	chainID, err := s.session.LiveChainID(ctx)
	if err != nil {
		fmt.Printf("Network:    unavailable (%v)\n", err)
		return nil
	}

	name := s.catalog.Name(chainID)
	fmt.Printf("Network:    %s (%s)\n", name, chainID)
	if chainID != s.cfg.Registry.ChainID {
		fmt.Printf("⚠️  Configured target is %s (%s); switch networks before registering\n",
			s.catalog.Name(s.cfg.Registry.ChainID), s.cfg.Registry.ChainID)
	}
	return nil
}
