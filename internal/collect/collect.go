package collect

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/hasibx0/ai-blogger-bot/internal/config"
	"github.com/hasibx0/ai-blogger-bot/internal/fetch"
)

// DefaultMaxSnippets caps the context handed to the generator.
const DefaultMaxSnippets = 6

// SourceKind tags where a snippet came from.
type SourceKind string

const (
	Encyclopedia SourceKind = "encyclopedia"
	News         SourceKind = "news"
	Research     SourceKind = "research"
)

// Snippet is one short piece of background text.
type Snippet struct {
	Source SourceKind
	Text   string
}

// Source produces zero or more snippets for a topic. Implementations swallow
// their own failures and return nil instead.
type Source interface {
	Kind() SourceKind
	Fetch(ctx context.Context, topic string) []Snippet
}

// Gatherer merges snippets from all configured sources.
type Gatherer struct {
	sources []Source
	max     int
	rng     *rand.Rand
	logger  *slog.Logger
}

// NewGatherer creates a Gatherer. rng may be nil; max <= 0 means
// DefaultMaxSnippets.
func NewGatherer(sources []Source, max int, rng *rand.Rand, logger *slog.Logger) *Gatherer {
	if max <= 0 {
		max = DefaultMaxSnippets
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gatherer{sources: sources, max: max, rng: rng, logger: logger}
}

// NewFromConfig wires the enabled sources from configuration.
func NewFromConfig(cfg config.Context, fetcher *fetch.Fetcher, logger *slog.Logger) *Gatherer {
	var sources []Source
	if s := cfg.Sources.Wikipedia; s.Enabled {
		sources = append(sources, NewWikipediaSource(fetcher, s.BaseURL, logger))
	}
	if s := cfg.Sources.News; s.Enabled {
		sources = append(sources, NewNewsSource(fetcher, s.BaseURL, s.MaxItems, logger))
	}
	if s := cfg.Sources.Arxiv; s.Enabled {
		sources = append(sources, NewArxivSource(fetcher, s.BaseURL, s.MaxItems, logger))
	}
	return NewGatherer(sources, cfg.MaxSnippets, nil, logger)
}

// Gather queries every source in order, shuffles the merged snippets and
// keeps at most max of them. It never fails; an unreachable source simply
// contributes nothing.
func (g *Gatherer) Gather(ctx context.Context, topic string) []Snippet {
	var all []Snippet
	counts := make(map[SourceKind]int)

	for _, src := range g.sources {
		snippets := src.Fetch(ctx, topic)
		counts[src.Kind()] += len(snippets)
		all = append(all, snippets...)
	}

	shuffle := rand.Shuffle
	if g.rng != nil {
		shuffle = g.rng.Shuffle
	}
	shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })

	if len(all) > g.max {
		all = all[:g.max]
	}

	g.logger.Info("context gathered",
		"topic", topic,
		"kept", len(all),
		string(Encyclopedia), counts[Encyclopedia],
		string(News), counts[News],
		string(Research), counts[Research],
	)
	return all
}

// FormatContext renders snippets as the context blob of a generation prompt.
func FormatContext(snippets []Snippet) string {
	if len(snippets) == 0 {
		return ""
	}
	lines := make([]string, 0, len(snippets))
	for _, s := range snippets {
		lines = append(lines, "- "+s.Text)
	}
	return strings.Join(lines, "\n")
}

// Texts returns the snippet texts in order.
func Texts(snippets []Snippet) []string {
	out := make([]string, len(snippets))
	for i, s := range snippets {
		out[i] = s.Text
	}
	return out
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
