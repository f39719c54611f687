package summaries

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/siamcode/standupstrip-backend/internal/standups"
	"github.com/siamcode/standupstrip-backend/pkg/logger"
	"github.com/siamcode/standupstrip-backend/pkg/metrics"
)

const (
	sourceAI       = "ai"
	sourceTemplate = "template"
)

type textGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Generator turns a standup set into summary text. The model is tried first;
// any failure falls through to a deterministic template so callers always get
// text back once at least one standup exists.
type Generator struct {
	ai      textGenerator
	logg    *logger.Logger
	summary *metrics.SummaryMetrics
}

// NewGenerator builds a generator. Metrics may be nil.
func NewGenerator(ai textGenerator, logg *logger.Logger, summary *metrics.SummaryMetrics) (*Generator, error) {
	if ai == nil {
		return nil, fmt.Errorf("text generator required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Generator{ai: ai, logg: logg, summary: summary}, nil
}

// Summarize returns the generated text and whether the model produced it.
func (g *Generator) Summarize(ctx context.Context, entries []standups.StandupWithAuthor) (string, bool) {
	start := time.Now()
	text, err := g.ai.Generate(ctx, buildPrompt(entries))
	if err != nil {
		g.logg.Warn(ctx, fmt.Sprintf("text generation unavailable, using template: %v", err))
		text = fallbackSummary(entries)
		g.summary.IncGenerated(sourceTemplate)
		g.summary.ObserveDuration(sourceTemplate, time.Since(start))
		return text, false
	}
	g.summary.IncGenerated(sourceAI)
	g.summary.ObserveDuration(sourceAI, time.Since(start))
	return text, true
}

func buildPrompt(entries []standups.StandupWithAuthor) string {
	var b strings.Builder
	b.WriteString("You are a helpful assistant that summarizes daily standup meetings. ")
	b.WriteString("Please analyze the following team standup updates and provide a concise, ")
	b.WriteString("actionable summary. Format the output in a clear, readable way with emojis.\n\n")
	b.WriteString("=== TEAM STANDUP ENTRIES ===\n\n")

	for i, entry := range entries {
		fmt.Fprintf(&b, "Team Member %d:\n", i+1)
		fmt.Fprintf(&b, "  Yesterday: %s\n", orDefault(entry.Yesterday, "Not provided"))
		fmt.Fprintf(&b, "  Today: %s\n", orDefault(entry.Today, "Not provided"))
		fmt.Fprintf(&b, "  Blockers: %s\n\n", orDefault(derefString(entry.Blockers), "None"))
	}

	b.WriteString("Please provide:\n")
	b.WriteString("1. A brief overview (1-2 sentences)\n")
	b.WriteString("2. Key accomplishments from yesterday (bullet points)\n")
	b.WriteString("3. Today's focus areas (bullet points)\n")
	b.WriteString("4. Blockers that need attention (if any)\n")
	b.WriteString("5. Key insights or recommendations\n")
	b.WriteString("\nKeep the summary concise but comprehensive.")
	return b.String()
}

// fallbackSummary is total: for any non-empty standup set it produces text
// without touching the network.
func fallbackSummary(entries []standups.StandupWithAuthor) string {
	var b strings.Builder
	b.WriteString("=== TEAM STANDUP SUMMARY ===\n\n")

	b.WriteString("**Overview**\n")
	fmt.Fprintf(&b, "- Total participants: %d\n", len(entries))
	if len(entries) > 0 {
		fmt.Fprintf(&b, "- Date: %s\n", entries[0].Date)
	}
	b.WriteString("\n")

	b.WriteString("**Yesterday's Accomplishments**\n")
	for _, entry := range entries {
		if text := strings.TrimSpace(entry.Yesterday); text != "" {
			fmt.Fprintf(&b, "- %s\n", text)
		}
	}
	b.WriteString("\n")

	b.WriteString("**Today's Plans**\n")
	for _, entry := range entries {
		if text := strings.TrimSpace(entry.Today); text != "" {
			fmt.Fprintf(&b, "- %s\n", text)
		}
	}
	b.WriteString("\n")

	blockers := collectBlockers(entries)
	if len(blockers) > 0 {
		b.WriteString("**Blockers & Impediments**\n")
		for _, blocker := range blockers {
			fmt.Fprintf(&b, "- %s\n", blocker)
		}
		b.WriteString("\n")
	} else {
		b.WriteString("**No blockers reported!**\n\n")
	}

	b.WriteString("**Key Insights**\n")
	if len(blockers) == 0 {
		b.WriteString("- Team is running smoothly with no blockers\n")
	} else {
		fmt.Fprintf(&b, "- Team is facing %d blocker(s)\n", len(blockers))
	}
	fmt.Fprintf(&b, "- %d team members actively working\n", len(entries))
	return b.String()
}

func collectBlockers(entries []standups.StandupWithAuthor) []string {
	var out []string
	for _, entry := range entries {
		if entry.Blockers == nil {
			continue
		}
		if text := strings.TrimSpace(*entry.Blockers); text != "" {
			out = append(out, text)
		}
	}
	return out
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
