package topic

import (
	"math/rand/v2"
	"testing"
)

func TestPickSeedWins(t *testing.T) {
	p := NewPicker("  Quantum ML ", []string{"A", "B"}, nil)
	if got := p.Pick(); got != "Quantum ML" {
		t.Errorf("expected seed, got %q", got)
	}
}

func TestPickFromCatalog(t *testing.T) {
	catalog := []string{"A", "B", "C"}
	p := NewPicker("", catalog, rand.New(rand.NewPCG(1, 2)))

	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		seen[p.Pick()] = true
	}
	for _, c := range catalog {
		if !seen[c] {
			t.Errorf("expected %q to be picked at least once", c)
		}
	}
}

func TestPickSkipsBlankEntries(t *testing.T) {
	p := NewPicker("", []string{"", "   ", "Only"}, nil)
	for i := 0; i < 20; i++ {
		if got := p.Pick(); got != "Only" {
			t.Fatalf("expected 'Only', got %q", got)
		}
	}
}

func TestPickEmptyCatalogFallsBackToDefault(t *testing.T) {
	p := NewPicker("", nil, nil)
	if got := p.Pick(); got != DefaultSeed {
		t.Errorf("expected %q, got %q", DefaultSeed, got)
	}
}
