// Package llm holds prompt assembly shared by the generator adapters.
package llm

import (
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/recall/internal/core/ports/driven"
)

// Default prompt templates, used when no PromptStore is configured or a
// prompt cannot be loaded.
var defaults = map[string]string{
	driven.PromptAnswerSystem: `You are Recall, an assistant that answers questions from the user's own notes.
Answer using only the provided context. If the context does not contain the answer, say so.
Cite sources by their file path.`,

	driven.PromptAnswer: `Context:
%s

Question: %s`,

	driven.PromptAnswerNoContext: `No relevant notes were found.

Question: %s`,
}

// Default returns the built-in template for name.
func Default(name string) (string, bool) {
	p, ok := defaults[name]
	return p, ok
}

// Names returns the names of all built-in templates in sorted order.
func Names() []string {
	names := make([]string, 0, len(defaults))
	for name := range defaults {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Prompts resolves templates from an optional store.
type Prompts struct {
	store driven.PromptStore
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (p *Prompts) SetPromptStore(store driven.PromptStore) {
	p.store = store
}

func (p *Prompts) load(name string) string {
	if p.store != nil {
		if prompt, err := p.store.Load(name); err == nil && prompt != "" {
			return prompt
		}
	}
	return defaults[name]
}

// Build returns the system and user messages for a question and its
// rendered retrieval context.
func (p *Prompts) Build(question, retrieved string) (system, user string) {
	system = p.load(driven.PromptAnswerSystem)
	if strings.TrimSpace(retrieved) == "" {
		return system, fmt.Sprintf(p.load(driven.PromptAnswerNoContext), question)
	}
	return system, fmt.Sprintf(p.load(driven.PromptAnswer), retrieved, question)
}
