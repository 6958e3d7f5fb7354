package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSearchMethod_IsValid tests recognised search methods
func TestSearchMethod_IsValid(t *testing.T) {
	tests := []struct {
		method SearchMethod
		want   bool
	}{
		{SearchMethodHybrid, true},
		{SearchMethodSemantic, true},
		{SearchMethodKeyword, true},
		{SearchMethod(""), false},
		{SearchMethod("fuzzy"), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.method), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.method.IsValid())
			assert.Equal(t, string(tt.method), tt.method.String())
		})
	}
}

// TestRetrievalContext_IsEmpty tests emptiness including the nil receiver
func TestRetrievalContext_IsEmpty(t *testing.T) {
	var nilCtx *RetrievalContext
	assert.True(t, nilCtx.IsEmpty())
	assert.True(t, (&RetrievalContext{Query: "q"}).IsEmpty())
	assert.False(t, (&RetrievalContext{Documents: []ScoredDocument{{Score: 0.1}}}).IsEmpty())
}

// TestQueryResponse_JSON tests the wire field names
func TestQueryResponse_JSON(t *testing.T) {
	resp := QueryResponse{
		AnswerText:     "answer",
		ContextUsed:    true,
		RetrievedCount: 2,
		SearchTimeMs:   12,
		Method:         SearchMethodHybrid,
		Sources:        []string{"a.md"},
		States:         []QueryState{StateStart, StateDone},
	}

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.Equal(t, "answer", fields["answerText"])
	assert.Equal(t, true, fields["contextUsed"])
	assert.InDelta(t, 2, fields["retrievedCount"], 0)
	assert.InDelta(t, 12, fields["searchTimeMs"], 0)
	assert.Equal(t, "hybrid", fields["method"])
	assert.Equal(t, false, fields["fallbackUsed"])
	assert.Equal(t, false, fields["generationFailed"])
	assert.Equal(t, []any{"a.md"}, fields["sources"])
	assert.Equal(t, []any{"start", "done"}, fields["states"])
}

// TestQueryResponse_JSONOmitsEmpty tests optional fields are dropped
func TestQueryResponse_JSONOmitsEmpty(t *testing.T) {
	data, err := json.Marshal(QueryResponse{})
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.NotContains(t, fields, "method")
	assert.NotContains(t, fields, "sources")
	assert.NotContains(t, fields, "states")
	assert.Contains(t, fields, "contextUsed")
}

// TestSearchPattern_SuccessRate tests the ratio and the zero case
func TestSearchPattern_SuccessRate(t *testing.T) {
	assert.Zero(t, SearchPattern{}.SuccessRate())
	assert.InDelta(t, 0.75, SearchPattern{SuccessCount: 3, TotalCount: 4}.SuccessRate(), 1e-9)
	assert.InDelta(t, 1.0, SearchPattern{SuccessCount: 2, TotalCount: 2}.SuccessRate(), 1e-9)
}

// TestBatchReport_Add tests outcome counters
func TestBatchReport_Add(t *testing.T) {
	var r BatchReport
	r.Add(IndexOutcome{Path: "a"})
	r.Add(IndexOutcome{Path: "b", Skipped: true})
	r.Add(IndexOutcome{Path: "c", Err: ErrNotFound})
	r.Add(IndexOutcome{Path: "d", Skipped: true, Err: ErrInvalidInput})

	assert.Equal(t, 1, r.Indexed)
	assert.Equal(t, 1, r.Skipped)
	assert.Equal(t, 2, r.Failed)
	assert.Len(t, r.Outcomes, 4)
	assert.True(t, r.Outcomes[0].OK())
	assert.False(t, r.Outcomes[2].OK())
}

// TestOperation_Kinds tests each variant reports its kind
func TestOperation_Kinds(t *testing.T) {
	tests := []struct {
		op   Operation
		want OperationKind
	}{
		{ReadOp{}, OpRead},
		{WriteOp{}, OpWrite},
		{AppendOp{}, OpAppend},
		{UpdateSectionOp{}, OpUpdateSection},
		{CreateFolderOp{}, OpCreateFolder},
		{ListOp{}, OpList},
		{ToolCallOp{Name: ToolSearch}, OpToolCall},
	}
	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.op.Kind())
		})
	}
}
