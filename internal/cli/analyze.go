package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/debatecards/internal/model"
	"github.com/ppiankov/debatecards/internal/pipeline"
)

var (
	prompt       string
	outJSON      string
	outMD        string
	boldArgs     bool
	highlightNum bool
	citations    bool
	timeout      time.Duration
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Cut debate cards from a local text file",
	Long: `Analyze reads a plain-text document and:
- Highlights statistics and bolds key-argument words (optional)
- Cuts up to three evidence cards from the opening sentences
- Grades each card against the prompt and assigns a debate category
- Asks the configured summarization provider for a narrative summary

Example:
  debatecards analyze brief.txt --prompt "economic impact of carbon taxes"
  debatecards analyze brief.txt --prompt "policy" --bold --stats --md brief.md
  debatecards analyze brief.txt --prompt "research" --provider none`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	addAnalysisFlags(analyzeCmd)

	analyzeCmd.Flags().StringVar(&outJSON, "json", "-", "output JSON path (- for stdout)")
	analyzeCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	analyzeCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall analysis timeout")
}

// addAnalysisFlags registers the prompt and highlight toggles shared by analyze and batch
func addAnalysisFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "research prompt the cards are graded against (required)")
	cmd.Flags().BoolVar(&boldArgs, "bold", false, "bold key-argument words")
	cmd.Flags().BoolVar(&highlightNum, "stats", false, "highlight statistics")
	cmd.Flags().BoolVar(&citations, "citations", false, "include citations (reserved)")
	_ = cmd.MarkFlagRequired("prompt")
}

// analysisSettings starts from the configured defaults and applies explicitly set flags
func analysisSettings(cmd *cobra.Command, defaults model.AnalysisSettings) model.AnalysisSettings {
	settings := defaults
	if cmd.Flags().Changed("bold") {
		settings.BoldKeyArguments = boldArgs
	}
	if cmd.Flags().Changed("stats") {
		settings.HighlightStatistics = highlightNum
	}
	if cmd.Flags().Changed("citations") {
		settings.IncludeCitations = citations
	}
	return settings
}

// readDocument returns the file contents unchanged, rejecting blank files
func readDocument(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	text := string(data)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%s is empty", path)
	}
	return text, nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	path := args[0]

	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}

	if strings.TrimSpace(prompt) == "" {
		return fmt.Errorf("--prompt must not be empty")
	}

	text, err := readDocument(path)
	if err != nil {
		return err
	}

	settings := analysisSettings(cmd, cfg.Defaults)

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "Analyzing: %s\n", path)
		fmt.Fprintf(os.Stderr, "Prompt: %s\n", prompt)
		fmt.Fprintf(os.Stderr, "Provider: %s\n", cfg.LLM.Provider)
		fmt.Fprintln(os.Stderr)
	}

	p, cleanup, err := buildPipeline(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	result, err := p.Analyze(ctx, text, prompt, settings)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "✓ Cut %d cards\n", len(result.Cards))
		if result.Summary != "" {
			fmt.Fprintf(os.Stderr, "✓ Generated summary using %s\n", p.SummarizerName())
		}
		fmt.Fprintln(os.Stderr)
	}

	report := &pipeline.Report{
		Source:      path,
		Prompt:      prompt,
		Settings:    settings,
		Provider:    p.SummarizerName(),
		GeneratedAt: time.Now().UTC(),
		Result:      *result,
	}

	if err := pipeline.NewRenderer().RenderReport(report, outJSON, outMD, cfg.Output.Verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	return nil
}
