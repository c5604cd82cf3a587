package app

import (
	"context"
	_ "embed"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/denchenko/mrdigest/internal/core/domain"
	"github.com/rs/zerolog/log"
)

//go:embed prompts/best_practices.tmpl
var bestPracticesPrompt string

type promptData struct {
	Comments string
}

func parsePrompt() (*template.Template, error) {
	tmpl, err := template.New("best_practices").Parse(bestPracticesPrompt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse best practices prompt: %w", err)
	}

	return tmpl, nil
}

// Consolidate renders the user notes of discussions as one text block.
// Discussions with only system notes are left out.
func Consolidate(discussions []*domain.Discussion) string {
	blocks := make([]string, 0, len(discussions))

	for _, d := range discussions {
		notes := d.UserNotes()
		if len(notes) == 0 {
			continue
		}

		var b strings.Builder
		fmt.Fprintf(&b, "=== Discussion %s ===\n", d.ID)

		if c := d.Classify(); c.IsCode {
			line := "N/A"
			if c.Line > 0 {
				line = strconv.Itoa(c.Line)
			}
			fmt.Fprintf(&b, "File: %s, Line: %s\n", c.FilePath, line)
		}

		for i, note := range notes {
			fmt.Fprintf(&b, "\nComment %d by %s:\n%s\n", i+1, note.Author.DisplayName(), note.Body)
		}

		blocks = append(blocks, b.String())
	}

	return strings.Join(blocks, "\n")
}

// ExtractBestPractices asks the LLM for the coding standards stated in the
// discussions.
func (a *App) ExtractBestPractices(ctx context.Context, discussions []*domain.Discussion) (string, error) {
	comments := Consolidate(discussions)
	if strings.TrimSpace(comments) == "" {
		return "", domain.ErrNoComments
	}

	var prompt strings.Builder
	if err := a.prompt.Execute(&prompt, promptData{Comments: comments}); err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}

	log.Debug().
		Int("discussions", len(discussions)).
		Int("prompt_chars", prompt.Len()).
		Msg("extracting best practices")

	practices, err := a.extractor.Extract(ctx, prompt.String())
	if err != nil {
		return "", fmt.Errorf("failed to extract best practices: %w", err)
	}

	return practices, nil
}
