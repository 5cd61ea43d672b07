package stats

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"sort"
)

// Entry is a term with the number of times it occurred.
type Entry struct {
	Term  string
	Count uint64
}

// FreqTable counts term occurrences. It is not safe for concurrent use.
type FreqTable struct {
	counts map[string]uint64
	total  uint64
}

// NewFreqTable creates an empty table.
func NewFreqTable() *FreqTable {
	return &FreqTable{counts: make(map[string]uint64)}
}

// Add records one occurrence of term.
func (t *FreqTable) Add(term string) {
	t.counts[term]++
	t.total++
}

// Len returns the number of distinct terms.
func (t *FreqTable) Len() int { return len(t.counts) }

// Total returns the number of occurrences recorded.
func (t *FreqTable) Total() uint64 { return t.total }

// Count returns the occurrences of term.
func (t *FreqTable) Count(term string) uint64 { return t.counts[term] }

// Sorted returns all entries by descending count, ties by term.
func (t *FreqTable) Sorted() []Entry {
	entries := make([]Entry, 0, len(t.counts))
	for term, n := range t.counts {
		entries = append(entries, Entry{Term: term, Count: n})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Term < entries[j].Term
	})
	return entries
}

// WriteTo writes "<count> <term>" lines in Sorted order.
func (t *FreqTable) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var n int64
	for _, e := range t.Sorted() {
		k, err := fmt.Fprintf(bw, "%d %s\n", e.Count, e.Term)
		n += int64(k)
		if err != nil {
			return n, err
		}
	}
	return n, bw.Flush()
}

// ZipfPoint compares the observed frequency at a rank with the ideal C/rank
// curve, where C is the frequency of the top term.
type ZipfPoint struct {
	Rank  int
	Term  string
	Freq  uint64
	Ideal float64
}

// Zipf returns up to limit points of the rank/frequency distribution.
// limit <= 0 means all terms.
func (t *FreqTable) Zipf(limit int) []ZipfPoint {
	entries := t.Sorted()
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	if len(entries) == 0 {
		return nil
	}
	c := float64(entries[0].Count)
	points := make([]ZipfPoint, len(entries))
	for i, e := range entries {
		rank := i + 1
		points[i] = ZipfPoint{Rank: rank, Term: e.Term, Freq: e.Count, Ideal: c / float64(rank)}
	}
	return points
}

// ZipfExponent fits log(freq) = a - s*log(rank) by least squares over the
// given points and returns s. Zipf's law predicts s close to 1. It returns 0
// when fewer than two points are given.
func ZipfExponent(points []ZipfPoint) float64 {
	if len(points) < 2 {
		return 0
	}
	var sx, sy, sxx, sxy float64
	n := float64(len(points))
	for _, p := range points {
		x := math.Log(float64(p.Rank))
		y := math.Log(float64(p.Freq))
		sx += x
		sy += y
		sxx += x * x
		sxy += x * y
	}
	den := n*sxx - sx*sx
	if den == 0 {
		return 0
	}
	return -(n*sxy - sx*sy) / den
}
