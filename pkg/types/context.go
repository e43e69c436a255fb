// Package types provides the value types shared across the agentcache system.
//
// The types here are plain data carriers owned by the reasoning cache tiers.
// They carry no behavior beyond derived accessors and canonicalization
// helpers, so they can cross package boundaries freely.
package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Context is a structured description of a reasoning problem instance,
// used as the cache key input. Keys are free-form (e.g. "model", "provider",
// "messages", "temperature"); values may be any JSON-serializable data.
// Values that cannot be serialized are stringified during canonicalization
// rather than rejected.
type Context map[string]any

// CanonicalJSON returns the deterministic serialized form of the context:
// JSON with lexicographically sorted keys. Identical content produces
// identical output regardless of how the map was populated. Values that
// fail to marshal are replaced by their fmt.Sprint rendering, so this
// never fails.
func (c Context) CanonicalJSON() string {
	b, err := json.Marshal(map[string]any(c))
	if err == nil {
		return string(b)
	}

	// At least one value is not JSON-serializable. Stringify the offenders
	// and marshal again; the result is all strings and marshalable values.
	safe := make(map[string]any, len(c))
	for k, v := range c {
		if _, verr := json.Marshal(v); verr != nil {
			safe[k] = fmt.Sprint(v)
		} else {
			safe[k] = v
		}
	}

	b, err = json.Marshal(safe)
	if err != nil {
		// Unreachable: every value above is marshalable.
		return "{}"
	}
	return string(b)
}

// Clone returns an owned deep copy of the context. The cache stores clones
// so that a cached state exclusively owns its context data and later caller
// mutations cannot corrupt similarity scoring.
//
// The copy is made via a JSON round trip; values that do not survive it
// (channels, funcs, cycles) fall back to a shallow copy of the top level.
func (c Context) Clone() Context {
	if c == nil {
		return nil
	}

	b, err := json.Marshal(map[string]any(c))
	if err == nil {
		var out Context
		if json.Unmarshal(b, &out) == nil {
			return out
		}
	}

	out := make(Context, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// PromptText extracts the free-text prompt from a chat-style context: the
// concatenated content of all user-role entries under the "messages" key.
// When the context has no "messages" field the canonical JSON form is
// returned instead, so the result is always usable as comparison text.
func (c Context) PromptText() string {
	raw, ok := c["messages"]
	if !ok {
		return c.CanonicalJSON()
	}

	var parts []string
	appendUser := func(m map[string]any) {
		role, _ := m["role"].(string)
		if role != "user" {
			return
		}
		if content, ok := m["content"].(string); ok {
			parts = append(parts, content)
		}
	}

	switch msgs := raw.(type) {
	case []any:
		for _, m := range msgs {
			if mm, ok := m.(map[string]any); ok {
				appendUser(mm)
			}
		}
	case []map[string]any:
		for _, mm := range msgs {
			appendUser(mm)
		}
	}

	return strings.Join(parts, " ")
}
