package llm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/recall/internal/core/ports/driven"
)

type mapStore map[string]string

func (m mapStore) Load(name string) (string, error) {
	if p, ok := m[name]; ok {
		return p, nil
	}
	return "", errors.New("missing")
}

func (m mapStore) Reload() {}

func TestBuild_Defaults(t *testing.T) {
	var p Prompts

	system, user := p.Build("where is the cat?", "[1] cat.md\nThe cat sat.")
	assert.Contains(t, system, "Recall")
	assert.Contains(t, user, "The cat sat.")
	assert.Contains(t, user, "Question: where is the cat?")

	_, user = p.Build("where is the cat?", "  ")
	assert.Contains(t, user, "No relevant notes")
}

func TestBuild_StoreOverridesAndFallsBack(t *testing.T) {
	var p Prompts
	p.SetPromptStore(mapStore{driven.PromptAnswer: "CTX=%s Q=%s"})

	system, user := p.Build("q", "c")
	assert.Equal(t, "CTX=c Q=q", user)

	def, ok := Default(driven.PromptAnswerSystem)
	assert.True(t, ok)
	assert.Equal(t, def, system)
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{
		driven.PromptAnswer,
		driven.PromptAnswerNoContext,
		driven.PromptAnswerSystem,
	}, Names())
}
