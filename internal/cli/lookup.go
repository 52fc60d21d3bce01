package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	domain "github.com/prgi-labs/titlechain/internal/lookup/domain"
	"github.com/prgi-labs/titlechain/internal/titlehash"
	"github.com/prgi-labs/titlechain/internal/validation"
)

func createLookupCmd() *cobra.Command {
	var byTitle bool

	cmd := &cobra.Command{
		Use:   "lookup <hash>",
		Short: "Check whether a title hash is registered on chain",
		Long: `Check whether a 32-byte title hash is registered on the registry contract.

Lookup is public and read-only: it needs no wallet and no verification
session. With --title the argument is treated as a title and hashed first.

EXAMPLES:
  # Look up a hash directly
  titlechain lookup 0x6a3f...

  # Hash a title, then look it up
  titlechain lookup --title "The Daily Chronicle"
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLookup(cmd.Context(), args[0], byTitle)
		},
	}

	cmd.Flags().BoolVar(&byTitle, "title", false, "treat the argument as a title and hash it first")

	return cmd
}

func runLookup(ctx context.Context, input string, byTitle bool) error {
	hashText := input
	if byTitle {
		hash, err := titlehash.Hash(input)
		if err != nil {
			return err
		}
		hashText = hash.Hex()
		fmt.Printf("Title hash: %s\n", hashText)
	}

	s, err := buildStack(ctx, false)
	if err != nil {
		return err
	}
	defer s.Close()

	result, err := s.lookups.Lookup(ctx, hashText)
	if err != nil {
		switch {
		case errors.Is(err, validation.ErrInvalidHashFormat):
			return fmt.Errorf("invalid hash: expected 0x followed by 64 hex characters")
		case errors.Is(err, domain.ErrLookupFailed):
			return fmt.Errorf("blockchain query failed: %v", err)
		default:
			return err
		}
	}

	network := s.catalog.Name(s.cfg.Registry.ChainID)
	if result.IsRegistered {
		fmt.Printf("✅ REGISTERED on %s\n", network)
	} else {
		fmt.Printf("❌ Not registered on %s\n", network)
	}
	return nil
}
