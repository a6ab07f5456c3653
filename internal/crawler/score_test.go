package crawler

import (
	"container/heap"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeywordScorer(t *testing.T) {
	tests := []struct {
		name     string
		keywords []string
		url      string
		want     float64
	}{
		{name: "no keywords", keywords: nil, url: "https://example.com/docs", want: 0},
		{name: "no match", keywords: []string{"tutorial"}, url: "https://example.com/docs", want: 0},
		{name: "full match", keywords: []string{"docs"}, url: "https://example.com/docs", want: 0.7},
		{name: "half match", keywords: []string{"docs", "api"}, url: "https://example.com/docs", want: 0.35},
		{name: "case insensitive", keywords: []string{"DOCS"}, url: "https://example.com/Docs/intro", want: 0.7},
		{name: "blank keywords ignored", keywords: []string{" ", "", "docs"}, url: "https://example.com/docs", want: 0.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewKeywordScorer(tt.keywords)
			assert.InDelta(t, tt.want, s.Score(tt.url), 1e-9)
		})
	}
}

func TestFrontierOrdering(t *testing.T) {
	f := &frontier{}
	heap.Init(f)

	// Pushed in arrival order; equal scores must come back FIFO.
	heap.Push(f, &candidate{score: 0, depth: 1})
	heap.Push(f, &candidate{score: 0.7, depth: 2})
	heap.Push(f, &candidate{score: 0, depth: 3})
	heap.Push(f, &candidate{score: 0.35, depth: 4})

	var order []int
	for f.Len() > 0 {
		order = append(order, heap.Pop(f).(*candidate).depth)
	}

	assert.Equal(t, []int{2, 4, 1, 3}, order)
}
