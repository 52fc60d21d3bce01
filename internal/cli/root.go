package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	flagVerifierURL string
	flagContract    string
	flagChainID     string
	flagRPCURL      string
	flagWalletRPC   string
)

// Execute runs the CLI
func Execute(version string) error {
	rootCmd := &cobra.Command{
		Use:     "titlechain",
		Short:   "Publication title verification and on-chain attestation CLI",
		Long:    `Titlechain verifies proposed publication titles against the PRGI scoring engine and attests approved titles on an Ethereum registry contract.`,
		Version: version,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&flagVerifierURL, "verifier", "", "verification engine URL (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagContract, "contract", "", "registry contract address (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagChainID, "chain-id", "", "target chain id in hex (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagRPCURL, "rpc", "", "public read-only RPC URL (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagWalletRPC, "wallet-rpc", "", "wallet RPC endpoint for signing (default from TITLECHAIN_WALLET_RPC)")

	// Add subcommands
	rootCmd.AddCommand(createVerifyCmd())
	rootCmd.AddCommand(createHashCmd())
	rootCmd.AddCommand(createRegisterCmd())
	rootCmd.AddCommand(createLookupCmd())
	rootCmd.AddCommand(createWalletCmd())
	rootCmd.AddCommand(createHistoryCmd())
	rootCmd.AddCommand(createConfigCmd())

	return rootCmd.Execute()
}

// getWalletRPC returns the wallet RPC endpoint from flag or environment.
// Empty means no wallet: verification and lookup still work, signing does not.
func getWalletRPC() string {
	if flagWalletRPC != "" {
		return flagWalletRPC
	}
	return os.Getenv("TITLECHAIN_WALLET_RPC")
}
