package crawler

import "net/url"

// candidate is a URL waiting to be fetched.
type candidate struct {
	url   *url.URL
	depth int
	score float64
	seq   int
}

// frontier is a max-heap of candidates ordered by score, with insertion
// order breaking ties so the no-keyword case degrades to breadth-first.
type frontier struct {
	items []*candidate
	next  int
}

func (f *frontier) Len() int { return len(f.items) }

func (f *frontier) Less(i, j int) bool {
	if f.items[i].score != f.items[j].score {
		return f.items[i].score > f.items[j].score
	}
	return f.items[i].seq < f.items[j].seq
}

func (f *frontier) Swap(i, j int) {
	f.items[i], f.items[j] = f.items[j], f.items[i]
}

func (f *frontier) Push(x any) {
	c := x.(*candidate)
	c.seq = f.next
	f.next++
	f.items = append(f.items, c)
}

func (f *frontier) Pop() any {
	old := f.items
	n := len(old)
	c := old[n-1]
	old[n-1] = nil
	f.items = old[:n-1]
	return c
}
