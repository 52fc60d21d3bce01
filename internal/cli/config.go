package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/prgi-labs/titlechain/internal/auth"
	"github.com/prgi-labs/titlechain/internal/config"
)

func createConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration commands",
	}

	cmd.AddCommand(createConfigInitCmd())
	cmd.AddCommand(createConfigShowCmd())
	cmd.AddCommand(createConfigGenKeyCmd())

	return cmd
}

func createConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a titlechain.toml config file",
		Long: `Create a titlechain.toml configuration file in the current directory.

The file stores project-level settings: the verification engine URL, the
registry contract address, the target chain, and the public RPC endpoint.
Environment variables override file values.

EXAMPLES:
  titlechain config init
  titlechain config init --force
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigInit(force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing config")

	return cmd
}

func createConfigShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow()
		},
	}

	return cmd
}

func createConfigGenKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gen-key",
		Short: "Generate a gateway access token",
		Long: `Generate a random access token for the gateway.

Set it as GATEWAY_API_KEY on the gateway process to require it on the
verify and register endpoints, and as TITLECHAIN_GATEWAY_KEY for CLI
commands that talk to the gateway.
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGenKey()
		},
	}

	return cmd
}

func runConfigGenKey() error {
	token, err := auth.GenerateToken()
	if err != nil {
		return fmt.Errorf("generating token: %w", err)
	}
	fmt.Println(token)
	return nil
}

func runConfigInit(force bool) error {
	configPath := "titlechain.toml"

	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", configPath)
	}

	content := fmt.Sprintf(`# Titlechain project configuration
# Environment variables (TITLECHAIN_*) override these values.

verifier_url = "%s"
contract_address = "%s"
chain_id = "%s"
rpc_url = "%s"
`, config.DefaultVerifierURL, config.DefaultContractAddress, config.DefaultChainID, config.DefaultRPCURL)

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Printf("Created %s\n", configPath)
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Printf("  1. Edit %s to point at your deployment\n", configPath)
	fmt.Println("  2. Run 'titlechain verify \"Your Title\"' to score a title")
	fmt.Println("  3. Run 'titlechain register \"Your Title\"' to attest it on chain")

	return nil
}

func runConfigShow() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Println("Configuration sources (in order of precedence):")
	fmt.Println("  1. Command line flags (--verifier, --contract, --chain-id, --rpc, --wallet-rpc)")
	fmt.Println("  2. Environment variables (TITLECHAIN_*)")
	fmt.Println("  3. Project config file (titlechain.toml)")
	fmt.Println("  4. Built-in defaults")
	fmt.Println()

	fmt.Println("Effective configuration:")
	fmt.Printf("  Verifier URL:      %s\n", cfg.Verifier.BaseURL)
	fmt.Printf("  Verifier timeout:  %ds\n", cfg.Verifier.TimeoutSeconds)
	if cfg.Verifier.MinRulesetVersion != "" {
		fmt.Printf("  Min ruleset:       %s\n", cfg.Verifier.MinRulesetVersion)
	}
	fmt.Printf("  Contract address:  %s\n", cfg.Registry.ContractAddress)
	fmt.Printf("  Target chain:      %s\n", cfg.Registry.ChainID)
	fmt.Printf("  Public RPC:        %s\n", cfg.Registry.RPCURL)
	fmt.Printf("  Confirm poll:      %ds\n", cfg.Registry.ConfirmPollSeconds)
	fmt.Printf("  Confirm timeout:   %ds\n", cfg.Registry.ConfirmTimeoutSecs)
	if walletRPC := getWalletRPC(); walletRPC != "" {
		fmt.Printf("  Wallet RPC:        %s\n", walletRPC)
	} else {
		fmt.Println("  Wallet RPC:        (not set)")
	}

	return nil
}
