package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/prgi-labs/titlechain/internal/titlehash"
	"github.com/prgi-labs/titlechain/internal/validation"
	domain "github.com/prgi-labs/titlechain/internal/verification/domain"
)

func createVerifyCmd() *cobra.Command {
	var hindiTitle string

	cmd := &cobra.Command{
		Use:   "verify <title>",
		Short: "Verify a proposed title against the scoring engine",
		Long: `Verify a proposed publication title against the remote scoring engine.

The engine checks rule compliance, lexical/phonetic similarity, and semantic
similarity against the existing title index, and returns an authoritative
approve/reject verdict with supporting detail.

EXAMPLES:
  # Verify a title
  titlechain verify "The Daily Chronicle"

  # Include the regional-language title
  titlechain verify "The Daily Chronicle" --hindi-title "दैनिक क्रॉनिकल"
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd.Context(), args[0], hindiTitle)
		},
	}

	cmd.Flags().StringVar(&hindiTitle, "hindi-title", "", "regional-language title (optional)")

	return cmd
}

func runVerify(ctx context.Context, title, hindiTitle string) error {
	s, err := buildStack(ctx, false)
	if err != nil {
		return err
	}
	defer s.Close()

	fmt.Printf("🔍 Verifying %q\n", strings.TrimSpace(title))

	verdict, err := s.verifier.Verify(ctx, domain.TitlePair{
		EnglishTitle:  title,
		RegionalTitle: hindiTitle,
	})
	if err != nil {
		var serverErr *domain.ServerError
		switch {
		case errors.Is(err, validation.ErrEmptyTitle):
			return fmt.Errorf("title must not be empty")
		case errors.Is(err, validation.ErrTitleTooLong):
			return fmt.Errorf("title exceeds the maximum length of %d characters", validation.MaxTitleLength)
		case errors.As(err, &serverErr):
			return fmt.Errorf("engine rejected the request: %s", serverErr.Error())
		case errors.Is(err, domain.ErrServerUnreachable):
			return fmt.Errorf("verification engine unreachable at %s", s.cfg.Verifier.BaseURL)
		default:
			return err
		}
	}

	printVerdict(verdict, s.cfg.Verifier.MinRulesetVersion)
	return nil
}

func printVerdict(v *domain.Verdict, minRuleset string) {
	fmt.Println()
	if v.Approved {
		fmt.Printf("✅ APPROVED - %s (%.1f%%)\n", v.ConfidenceBucket, v.Probability)
	} else {
		fmt.Printf("❌ REJECTED - %s (%.1f%%)\n", v.ConfidenceBucket, v.Probability)
	}
	if v.Reason != "" {
		fmt.Printf("   Reason: %s\n", v.Reason)
	}

	fmt.Println()
	fmt.Println("Stages:")
	fmt.Printf("   A (rules):    %s\n", v.Stages.RuleCompliance)
	fmt.Printf("   B (lexical):  %s\n", v.Stages.Lexical)
	fmt.Printf("   C (semantic): %s\n", v.Stages.Semantic)
	if v.SMax > 0 {
		fmt.Printf("   Highest similarity: %.3f\n", v.SMax)
	}

	if len(v.TopMatches) > 0 {
		fmt.Println()
		fmt.Println("Closest existing titles:")
		for _, m := range v.TopMatches {
			fmt.Printf("   %.3f  %-40s (%s)\n", m.Score, m.Title, m.Stage)
		}
	}

	if len(v.Tags) > 0 {
		fmt.Printf("\nTags: %s\n", strings.Join(v.Tags, ", "))
	}
	if len(v.Suggestions) > 0 {
		fmt.Println()
		fmt.Println("Suggestions:")
		for _, sug := range v.Suggestions {
			fmt.Printf("   - %s\n", sug)
		}
	}

	if hash, err := titlehash.Hash(v.Title); err == nil {
		fmt.Printf("\nTitle hash: %s\n", hash.Hex())
	}

	if v.ModelVersion != "" || v.RulesetVersion != "" {
		fmt.Println()
		fmt.Printf("Engine: model %s, ruleset %s", v.ModelVersion, v.RulesetVersion)
		if v.InferenceSeconds > 0 {
			fmt.Printf(" (%.2fs)", v.InferenceSeconds)
		}
		fmt.Println()
		if minRuleset != "" && domain.RulesetOutdated(v, minRuleset) {
			fmt.Printf("⚠️  Ruleset %s is older than required %s; verdict lineage may be stale\n", v.RulesetVersion, minRuleset)
		}
	}
}
