package types

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalJSON_SortsKeys(t *testing.T) {
	ctx := Context{
		"model":       "o1-preview",
		"provider":    "openai",
		"temperature": 0.7,
	}

	got := ctx.CanonicalJSON()
	assert.Equal(t, `{"model":"o1-preview","provider":"openai","temperature":0.7}`, got)
}

func TestCanonicalJSON_IndependentOfInsertionOrder(t *testing.T) {
	a := Context{}
	a["alpha"] = 1
	a["beta"] = 2
	a["gamma"] = 3

	b := Context{}
	b["gamma"] = 3
	b["alpha"] = 1
	b["beta"] = 2

	assert.Equal(t, a.CanonicalJSON(), b.CanonicalJSON())
}

func TestCanonicalJSON_StringifiesUnserializableValues(t *testing.T) {
	ctx := Context{
		"problem": "percentage",
		"bad":     math.NaN(), // NaN is not valid JSON
	}

	got := ctx.CanonicalJSON()
	require.NotEmpty(t, got)
	assert.Contains(t, got, `"bad":"NaN"`)
	assert.Contains(t, got, `"problem":"percentage"`)

	// Stringification keeps canonicalization deterministic.
	assert.Equal(t, got, ctx.CanonicalJSON())
}

func TestClone_IsDetached(t *testing.T) {
	ctx := Context{
		"problem": "15% of 80",
		"nested":  map[string]any{"a": 1},
	}

	clone := ctx.Clone()
	require.Equal(t, ctx.CanonicalJSON(), clone.CanonicalJSON())

	// Mutating the original must not leak into the clone.
	ctx["problem"] = "changed"
	ctx["nested"].(map[string]any)["a"] = 99

	assert.Equal(t, "15% of 80", clone["problem"])
	assert.Contains(t, clone.CanonicalJSON(), `"a":1`)
}

func TestClone_Nil(t *testing.T) {
	var ctx Context
	assert.Nil(t, ctx.Clone())
}

func TestPromptText_JoinsUserMessages(t *testing.T) {
	ctx := Context{
		"model": "o1-preview",
		"messages": []any{
			map[string]any{"role": "system", "content": "You are helpful."},
			map[string]any{"role": "user", "content": "Write a python script"},
			map[string]any{"role": "assistant", "content": "Sure."},
			map[string]any{"role": "user", "content": "to scrape a website"},
		},
	}

	assert.Equal(t, "Write a python script to scrape a website", ctx.PromptText())
}

func TestPromptText_MessageMapSlice(t *testing.T) {
	ctx := Context{
		"messages": []map[string]any{
			{"role": "user", "content": "solve 15% of 80"},
		},
	}

	assert.Equal(t, "solve 15% of 80", ctx.PromptText())
}

func TestPromptText_FallsBackToCanonicalJSON(t *testing.T) {
	ctx := Context{"problem": "percentage"}
	assert.Equal(t, ctx.CanonicalJSON(), ctx.PromptText())
}
