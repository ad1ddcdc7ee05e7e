package retrieval

import "strings"

// NoContextSentinel is emitted as the context block when no candidate
// survives filtering. The generation prompt tells the model to ignore the
// retrieval context entirely when it sees this marker, so an empty section
// never invites hallucinated relevance.
const NoContextSentinel = "(no prior relevant context)"

// Config holds the retrieval filtering constants.
type Config struct {
	similarityCutoff float64
	candidates       int
	maxContext       int
}

// Default filtering constants.
const (
	DefaultSimilarityCutoff = 0.75 // discard weak matches
	DefaultCandidates       = 12   // fetch more, then filter
	DefaultMaxContext       = 6    // final context size
)

// NewConfig creates a Config. Non-positive counts and an out-of-range cutoff
// fall back to the defaults.
func NewConfig(similarityCutoff float64, candidates, maxContext int) Config {
	cfg := DefaultConfig()
	if similarityCutoff > 0 && similarityCutoff <= 1 {
		cfg.similarityCutoff = similarityCutoff
	}
	if candidates > 0 {
		cfg.candidates = candidates
	}
	if maxContext > 0 {
		cfg.maxContext = maxContext
	}
	return cfg
}

// DefaultConfig returns the baseline filtering configuration.
func DefaultConfig() Config {
	return Config{
		similarityCutoff: DefaultSimilarityCutoff,
		candidates:       DefaultCandidates,
		maxContext:       DefaultMaxContext,
	}
}

// SimilarityCutoff returns the minimum acceptable score.
func (c Config) SimilarityCutoff() float64 { return c.similarityCutoff }

// Candidates returns how many rows to request from the store.
func (c Config) Candidates() int { return c.candidates }

// MaxContext returns how many rows to keep after filtering.
func (c Config) MaxContext() int { return c.maxContext }

// Filter applies the similarity cutoff to a store-ordered candidate list and
// truncates it to the configured context size. Store order (descending
// similarity) is preserved, which also makes ties deterministic: the store's
// ordering decides.
func Filter(candidates []Snippet, cfg Config) []Snippet {
	kept := make([]Snippet, 0, cfg.maxContext)
	for _, s := range candidates {
		if s.Score() < cfg.similarityCutoff {
			continue
		}
		kept = append(kept, s)
		if len(kept) == cfg.maxContext {
			break
		}
	}
	return kept
}

// ContextBlock renders the filtered snippets into the prompt context block.
// An empty list yields NoContextSentinel.
func ContextBlock(snippets []Snippet) string {
	if len(snippets) == 0 {
		return NoContextSentinel
	}

	var b strings.Builder
	for _, s := range snippets {
		b.WriteString("Subject: ")
		b.WriteString(s.Subject())
		b.WriteString("\nContent: ")
		b.WriteString(s.Content())
		b.WriteString("\n---\n")
	}
	return b.String()
}
