package reasoning

import (
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Scorer computes a similarity score in [0,1] between two pieces of
// comparison text derived from contexts (canonical JSON by default, or the
// extracted prompt text when the cache is configured for prompt mode).
//
// Scorer implementations must be safe for concurrent use: the similarity
// scan scores candidates in parallel.
type Scorer interface {
	Score(a, b string) float64
}

// ScorerFunc adapts a plain function to the Scorer interface.
type ScorerFunc func(a, b string) float64

// Score implements Scorer.
func (f ScorerFunc) Score(a, b string) float64 { return f(a, b) }

// jaccardStrip holds the punctuation characters that are treated as token
// separators alongside whitespace. They are the JSON structural characters
// that would otherwise glue key/value tokens together.
var jaccardStrip = strings.NewReplacer(`"`, " ", ":", " ", "{", " ", "}", " ")

// JaccardScorer is the default textual similarity heuristic: the Jaccard
// index of the lowercased token sets of both sides. It is a deliberate
// placeholder for embedding-based similarity in a production deployment;
// swap in EmbeddingScorer (or any Scorer) without touching the rest of the
// cache.
type JaccardScorer struct{}

// Score returns |intersection| / |union| of the two token sets, or 0.0
// when the union is empty.
func (JaccardScorer) Score(a, b string) float64 {
	setA := tokenize(a)
	setB := tokenize(b)

	intersection := 0
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}

// tokenize lowercases the text, replaces JSON structural punctuation with
// spaces and splits on whitespace, returning the resulting token set.
func tokenize(text string) map[string]struct{} {
	cleaned := jaccardStrip.Replace(strings.ToLower(text))
	fields := strings.Fields(cleaned)

	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

// EmbedFunc produces a vector embedding for a piece of text. Implementations
// typically call out to an embedding model; errors degrade the score to 0.0
// rather than failing the retrieval.
type EmbedFunc func(text string) ([]float64, error)

// EmbeddingScorer scores similarity as the cosine of caller-supplied
// embeddings. It is the production-grade substitute for JaccardScorer
// behind the same Scorer interface.
type EmbeddingScorer struct {
	embed EmbedFunc
}

// NewEmbeddingScorer wraps an embedding function in a Scorer.
func NewEmbeddingScorer(embed EmbedFunc) *EmbeddingScorer {
	return &EmbeddingScorer{embed: embed}
}

// Score embeds both sides and returns their cosine similarity clamped to
// [0,1]. Embedding failures, dimension mismatches and zero-norm vectors all
// score 0.0, so a broken embedder turns similarity retrieval into misses
// instead of errors.
func (s *EmbeddingScorer) Score(a, b string) float64 {
	va, err := s.embed(a)
	if err != nil {
		return 0.0
	}
	vb, err := s.embed(b)
	if err != nil {
		return 0.0
	}
	if len(va) == 0 || len(va) != len(vb) {
		return 0.0
	}

	normA := floats.Norm(va, 2)
	normB := floats.Norm(vb, 2)
	if normA == 0 || normB == 0 {
		return 0.0
	}

	cos := floats.Dot(va, vb) / (normA * normB)
	if cos < 0 {
		return 0.0
	}
	if cos > 1 {
		return 1.0
	}
	return cos
}
