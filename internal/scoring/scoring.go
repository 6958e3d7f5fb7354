// Package scoring provides the pure similarity and relevance functions used by
// the retrieval engine and the document stores.
package scoring

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/custodia-labs/recall/internal/core/domain"
)

// stopwords are dropped from keyword queries.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "by": {},
	"did": {}, "do": {}, "does": {}, "for": {}, "from": {}, "how": {}, "in": {},
	"is": {}, "it": {}, "of": {}, "on": {}, "or": {}, "that": {}, "the": {},
	"this": {}, "to": {}, "was": {}, "were": {}, "what": {}, "when": {},
	"where": {}, "which": {}, "who": {}, "why": {}, "with": {},
}

// Cosine returns the cosine similarity of a and b in [-1, 1].
// A zero vector has similarity 0 with everything.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", domain.ErrDimensionMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	// Clamp rounding drift.
	return math.Max(-1, math.Min(1, sim)), nil
}

// Normalize scales v to unit length in place and returns it.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	norm := float32(math.Sqrt(sum))
	for i := range v {
		v[i] /= norm
	}
	return v
}

// Mean returns the element-wise mean of vectors, unit-normalised.
// It returns nil when vectors is empty or their lengths differ.
func Mean(vectors [][]float32) []float32 {
	if len(vectors) == 0 {
		return nil
	}
	dim := len(vectors[0])
	out := make([]float32, dim)
	for _, v := range vectors {
		if len(v) != dim {
			return nil
		}
		for i, x := range v {
			out[i] += x
		}
	}
	for i := range out {
		out[i] /= float32(len(vectors))
	}
	return Normalize(out)
}

// Tokenize lower-cases text and splits it on anything that is not a letter or digit.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// ExtractKeywords returns the distinct significant terms of query in order.
func ExtractKeywords(query string) []string {
	seen := make(map[string]bool)
	var keywords []string
	for _, tok := range Tokenize(query) {
		if len([]rune(tok)) < 2 {
			continue
		}
		if _, stop := stopwords[tok]; stop {
			continue
		}
		if seen[tok] {
			continue
		}
		seen[tok] = true
		keywords = append(keywords, tok)
	}
	return keywords
}

// KeywordScore scores content by summed keyword occurrence counts normalised
// by sqrt(content length) times the keyword count. Shorter documents with
// proportionally more matches score higher.
func KeywordScore(content string, keywords []string) float64 {
	if content == "" || len(keywords) == 0 {
		return 0
	}
	lower := strings.ToLower(content)
	total := 0
	for _, kw := range keywords {
		total += strings.Count(lower, strings.ToLower(kw))
	}
	if total == 0 {
		return 0
	}
	return float64(total) / (math.Sqrt(float64(len(content))) * float64(len(keywords)))
}

// HighlightLength is the maximum number of runes kept per highlight.
const HighlightLength = 200

// Truncate shortens s to at most n runes, appending "..." when cut.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

// Highlights returns up to limit sentences of content that mention a term.
func Highlights(content string, terms []string, limit int) []string {
	if len(terms) == 0 || limit <= 0 {
		return nil
	}

	var highlights []string
	for _, sentence := range SplitSentences(content) {
		lower := strings.ToLower(sentence)
		for _, term := range terms {
			if strings.Contains(lower, strings.ToLower(term)) {
				highlights = append(highlights, Truncate(sentence, HighlightLength))
				break
			}
		}
		if len(highlights) >= limit {
			break
		}
	}
	return highlights
}

// SplitSentences splits content into trimmed sentences.
func SplitSentences(content string) []string {
	var sentences []string
	var current strings.Builder

	for _, r := range content {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}

	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}
