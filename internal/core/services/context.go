package services

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/scoring"
)

// TruncationMarker is appended to rendered context that was cut to fit.
const TruncationMarker = "\n[context truncated]"

// excerptLength bounds the content excerpt of each document.
const excerptLength = 1000

// RenderContext renders the documents of rc in format and truncates the
// result to maxLength runes, appending TruncationMarker when cut.
// Empty context renders as the empty string.
func RenderContext(rc *domain.RetrievalContext, format domain.ContextFormat, maxLength int) string {
	if rc.IsEmpty() {
		return ""
	}

	var out string
	switch format {
	case domain.ContextFormatNatural:
		out = renderNatural(rc)
	case domain.ContextFormatMinimal:
		out = renderMinimal(rc)
	default:
		out = renderStructured(rc)
	}
	return truncateContext(out, maxLength)
}

func renderStructured(rc *domain.RetrievalContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Retrieved %d documents for %q (%s search):\n", len(rc.Documents), rc.Query, rc.Method)
	for i, r := range rc.Documents {
		d := r.Document
		fmt.Fprintf(&b, "\n## [%d] %s\n", i+1, displayTitle(d))
		fmt.Fprintf(&b, "Source: %s\n", d.SourcePath)
		fmt.Fprintf(&b, "Score: %.3f", r.Score)
		if d.FileType != "" {
			fmt.Fprintf(&b, " | Type: %s", d.FileType)
		}
		if len(d.Tags) > 0 {
			fmt.Fprintf(&b, " | Tags: %s", strings.Join(d.Tags, ", "))
		}
		b.WriteString("\n\n")
		b.WriteString(excerpt(d.Content))
		b.WriteString("\n")
		if len(r.Highlights) > 0 {
			b.WriteString("\nHighlights:\n")
			for _, h := range r.Highlights {
				fmt.Fprintf(&b, "- %s\n", h)
			}
		}
	}
	return b.String()
}

func renderNatural(rc *domain.RetrievalContext) string {
	titles := make([]string, len(rc.Documents))
	for i, r := range rc.Documents {
		titles[i] = fmt.Sprintf("%q (%s)", displayTitle(r.Document), r.Document.SourcePath)
	}

	var b strings.Builder
	if len(titles) == 1 {
		fmt.Fprintf(&b, "One note is relevant to this question: %s.\n", titles[0])
	} else {
		fmt.Fprintf(&b, "%d notes are relevant to this question: %s and %s.\n",
			len(titles), strings.Join(titles[:len(titles)-1], ", "), titles[len(titles)-1])
	}
	for _, r := range rc.Documents {
		fmt.Fprintf(&b, "\nFrom %q: %s\n", displayTitle(r.Document), excerpt(r.Document.Content))
	}
	return b.String()
}

func renderMinimal(rc *domain.RetrievalContext) string {
	parts := make([]string, len(rc.Documents))
	for i, r := range rc.Documents {
		parts[i] = excerpt(r.Document.Content)
	}
	return strings.Join(parts, "\n\n")
}

func displayTitle(d domain.Document) string {
	if d.Title != "" {
		return d.Title
	}
	return d.SourcePath
}

func excerpt(content string) string {
	return scoring.Truncate(strings.TrimSpace(content), excerptLength)
}

// truncateContext cuts s to maxLength runes. A maxLength of zero or less
// disables the cut.
func truncateContext(s string, maxLength int) string {
	if maxLength <= 0 || utf8.RuneCountInString(s) <= maxLength {
		return s
	}
	n := 0
	for i := range s {
		if n == maxLength {
			return s[:i] + TruncationMarker
		}
		n++
	}
	return s
}
