package reasoning

import "github.com/agentcache/agentcache-go/pkg/types"

// tier is one memory tier: an insertion-ordered mapping from context hash
// to reasoning state. Insertion order is the fixed iteration order, which
// keeps eviction tie-breaks and similarity tie-breaks reproducible.
//
// tier is not safe for concurrent use; the cache facade serializes access.
type tier struct {
	items map[string]*types.ReasoningState
	order []string
}

func newTier() *tier {
	return &tier{items: make(map[string]*types.ReasoningState)}
}

func (t *tier) len() int {
	return len(t.items)
}

func (t *tier) get(hash string) (*types.ReasoningState, bool) {
	s, ok := t.items[hash]
	return s, ok
}

func (t *tier) has(hash string) bool {
	_, ok := t.items[hash]
	return ok
}

// put inserts or replaces the state for hash. A replaced entry keeps its
// original position in the iteration order.
func (t *tier) put(hash string, s *types.ReasoningState) {
	if _, ok := t.items[hash]; !ok {
		t.order = append(t.order, hash)
	}
	t.items[hash] = s
}

// delete removes the entry for hash, if present.
func (t *tier) delete(hash string) {
	if _, ok := t.items[hash]; !ok {
		return
	}
	delete(t.items, hash)
	for i, h := range t.order {
		if h == hash {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}

// states returns the resident states in insertion order. The slice is a
// snapshot; the states themselves are the live tier entries.
func (t *tier) states() []*types.ReasoningState {
	out := make([]*types.ReasoningState, 0, len(t.order))
	for _, h := range t.order {
		out = append(out, t.items[h])
	}
	return out
}

// transferTo atomically moves the entry for hash into dst. The entry is
// removed from the source before insertion so that a hash is never resident
// in two tiers at once. Returns false when hash is not resident here.
func (t *tier) transferTo(hash string, dst *tier) bool {
	s, ok := t.items[hash]
	if !ok {
		return false
	}
	t.delete(hash)
	dst.put(hash, s)
	return true
}
