package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prgi-labs/titlechain/internal/titlehash"
)

func createHashCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hash <title>",
		Short: "Compute the canonical on-chain hash of a title",
		Long: `Compute the Keccak-256 hash of a title's canonical form.

The title is trimmed and lowercased before hashing, so any formatting
variant of the same title maps to the same 32-byte identifier. This is the
exact value stored by the registry contract; the title text itself never
goes on chain.

EXAMPLES:
  titlechain hash "The Daily Chronicle"
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHash(args[0])
		},
	}

	return cmd
}

func runHash(title string) error {
	hash, err := titlehash.Hash(title)
	if err != nil {
		return err
	}

	fmt.Printf("Canonical form: %q\n", titlehash.Normalize(title))
	fmt.Printf("Title hash:     %s\n", hash.Hex())
	return nil
}
