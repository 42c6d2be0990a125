package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/debatecards/internal/model"
)

// Report is a rendered analysis of a local file
type Report struct {
	Source      string                 `json:"source"`
	Prompt      string                 `json:"prompt"`
	Settings    model.AnalysisSettings `json:"settings"`
	Provider    string                 `json:"provider,omitempty"`
	GeneratedAt time.Time              `json:"generatedAt"`
	Result
}

// Renderer writes reports as JSON or Markdown
type Renderer struct{}

// NewRenderer creates a renderer
func NewRenderer() *Renderer {
	return &Renderer{}
}

// RenderJSON writes the report as indented JSON. Path "-" means stdout.
func (r *Renderer) RenderJSON(report *Report, path string) error {
	return writeTo(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(report)
	})
}

// RenderMarkdown writes the report as Markdown. Path "-" means stdout.
func (r *Renderer) RenderMarkdown(report *Report, path string) error {
	return writeTo(path, func(w io.Writer) error {
		_, err := io.WriteString(w, r.Markdown(report))
		return err
	})
}

// Markdown formats the report
func (r *Renderer) Markdown(report *Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Debate cards: %s\n\n", report.Source)
	fmt.Fprintf(&b, "**Prompt:** %s\n\n", report.Prompt)

	if report.Summary != "" {
		b.WriteString("## Summary\n\n")
		b.WriteString(report.Summary)
		b.WriteString("\n\n")
	}

	b.WriteString("## Cards\n\n")
	if len(report.Cards) == 0 {
		b.WriteString("_No evidence sentences qualified as cards._\n\n")
	}
	for _, card := range report.Cards {
		fmt.Fprintf(&b, "### %s\n\n", card.Title)
		fmt.Fprintf(&b, "- Relevance: %s\n", card.Relevance)
		fmt.Fprintf(&b, "- Category: %s\n\n", card.Category)
		fmt.Fprintf(&b, "> %s\n\n", card.Content)
	}

	b.WriteString("## Processed text\n\n")
	b.WriteString(report.Content)
	b.WriteString("\n")

	return b.String()
}

// RenderReport renders the report to the requested outputs
func (r *Renderer) RenderReport(report *Report, jsonPath, mdPath string, verbose bool) error {
	if jsonPath != "" {
		if err := r.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose && jsonPath != "-" {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := r.RenderMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose && mdPath != "-" {
			fmt.Fprintf(os.Stderr, "✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	return nil
}

func writeTo(path string, write func(io.Writer) error) error {
	if path == "-" {
		return write(os.Stdout)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
