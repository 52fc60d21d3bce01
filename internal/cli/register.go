package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	attestation "github.com/prgi-labs/titlechain/internal/attestation/domain"
	"github.com/prgi-labs/titlechain/internal/titlehash"
	verification "github.com/prgi-labs/titlechain/internal/verification/domain"
)

func createRegisterCmd() *cobra.Command {
	var hindiTitle string
	var yes bool

	cmd := &cobra.Command{
		Use:   "register <title>",
		Short: "Verify a title and attest it on chain",
		Long: `Verify a proposed title and, if approved, register its hash on the
registry contract.

Registration needs a wallet RPC endpoint that can sign transactions
(TITLECHAIN_WALLET_RPC or --wallet-rpc). Only the Keccak-256 hash of the
canonical title goes on chain. The engine's approval is required: a rejected
title cannot be registered.

EXAMPLES:
  # Verify and register in one step
  titlechain register "The Daily Chronicle"

  # Skip the confirmation prompt (for scripted use)
  titlechain register "The Daily Chronicle" --yes
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegister(cmd.Context(), args[0], hindiTitle, yes)
		},
	}

	cmd.Flags().StringVar(&hindiTitle, "hindi-title", "", "regional-language title (optional)")
	cmd.Flags().BoolVar(&yes, "yes", false, "submit without asking for confirmation")

	return cmd
}

func runRegister(ctx context.Context, title, hindiTitle string, yes bool) error {
	s, err := buildStack(ctx, true)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.session.Connect(ctx); err != nil {
		return fmt.Errorf("connecting wallet: %w", err)
	}
	fmt.Printf("🔗 Wallet connected: %s\n", s.session.Address())

	fmt.Printf("🔍 Verifying %q\n", strings.TrimSpace(title))
	verdict, err := s.verifier.Verify(ctx, verification.TitlePair{
		EnglishTitle:  title,
		RegionalTitle: hindiTitle,
	})
	if err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}
	if !verdict.Approved {
		printVerdict(verdict, s.cfg.Verifier.MinRulesetVersion)
		return fmt.Errorf("title was not approved; only approved titles can be registered")
	}
	fmt.Printf("✅ Approved - %s (%.1f%%)\n", verdict.ConfidenceBucket, verdict.Probability)

	hash, err := titlehash.Hash(verdict.Title)
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Printf("About to register on %s:\n", s.catalog.Name(s.cfg.Registry.ChainID))
	fmt.Printf("   Title:    %s\n", verdict.Title)
	fmt.Printf("   Hash:     %s\n", hash.Hex())
	fmt.Printf("   Contract: %s\n", s.cfg.Registry.ContractAddress)
	fmt.Printf("   From:     %s\n", s.session.Address())

	if !yes {
		ok, err := confirm("Submit transaction? [y/N]: ")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Aborted.")
			return nil
		}
	}

	rec, err := s.attester.Submit(ctx, verdict, s.session)
	if err != nil {
		switch {
		case errors.Is(err, attestation.ErrWrongNetwork):
			return fmt.Errorf("%v", err)
		case rec != nil && rec.Reason != "":
			return fmt.Errorf("transaction not submitted: %s", rec.Reason)
		default:
			return fmt.Errorf("transaction not submitted: %w", err)
		}
	}

	fmt.Println()
	fmt.Printf("📤 Transaction submitted: %s\n", rec.TxHash)
	if rec.ExplorerURL != "" {
		fmt.Printf("   %s\n", rec.ExplorerURL)
	}
	fmt.Println("⏳ Waiting for confirmation...")

	done := s.attester.Await(ctx, s.session, rec)
	switch done.Status {
	case attestation.StatusConfirmed:
		fmt.Println("✅ CONFIRMED - title hash registered on chain")
		return nil
	default:
		if done.Reason != "" {
			return fmt.Errorf("registration failed: %s", done.Reason)
		}
		return fmt.Errorf("registration failed")
	}
}

// confirm prompts on stdin. A non-interactive stdin counts as a refusal so
// scripted runs must pass --yes explicitly.
func confirm(prompt string) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, fmt.Errorf("stdin is not a terminal; use --yes to confirm non-interactively")
	}

	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("reading confirmation: %w", err)
	}

	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}
