package query

import (
	"sort"

	"github.com/rpcpool/boolidx/posting"
)

// wrapSortedByEstimate wraps each child in a peekSeek and orders them
// ascending by EstimateLength, so And starts its cycle from the
// cheapest-to-exhaust operand and Or's length estimate tracks its
// priciest operand (spec.md §4.6: "children sorted ascending by
// estimated length").
func wrapSortedByEstimate(children []Iterator) []*peekSeek {
	wrapped := make([]*peekSeek, len(children))
	for i, c := range children {
		wrapped[i] = newPeekSeek(c)
	}
	sort.SliceStable(wrapped, func(i, j int) bool {
		return wrapped[i].EstimateLength() < wrapped[j].EstimateLength()
	})
	return wrapped
}

// andIterator intersects its children by doc id: the focus-and-cycle
// algorithm of spec.md §4.6 — pick a candidate from the current anchor,
// seek every other child to it; the first child to return something
// larger becomes the new anchor and the cycle restarts from the top. A
// full cycle with no update means every child agrees on the candidate.
type andIterator struct {
	children []*peekSeek
}

func newAnd(children []Iterator) *andIterator {
	return &andIterator{children: wrapSortedByEstimate(children)}
}

func (a *andIterator) EstimateLength() uint64 {
	if len(a.children) == 0 {
		return 0
	}
	return a.children[0].EstimateLength()
}

func (a *andIterator) Next() (*posting.Posting, bool) {
	if len(a.children) == 0 {
		return nil, false
	}
	focus, ok := a.children[0].Next()
	if !ok {
		return nil, false
	}
	lastIter := 0
	for {
		restarted := false
		for i, child := range a.children {
			if i == lastIter {
				continue
			}
			v, ok := child.NextSeek(focus.DocID)
			if !ok {
				return nil, false
			}
			if v.DocID > focus.DocID {
				focus = v
				lastIter = i
				restarted = true
				break
			}
		}
		if !restarted {
			return focus, true
		}
	}
}

func (a *andIterator) NextSeek(target uint64) (*posting.Posting, bool) {
	for _, c := range a.children {
		c.PeekSeek(target)
	}
	return a.Next()
}

// orIterator unions its children by doc id, discarding exhausted
// operands as it goes. Positions on the emitted posting come from the
// first operand (in the sorted child order) that matched the minimum
// doc id; positions from any other matching operand are discarded
// (spec.md §9: "Or's position-merging semantics... the spec declares
// positions from non-first operands discarded").
type orIterator struct {
	children []*peekSeek
	estimate uint64
}

func newOr(children []Iterator) *orIterator {
	wrapped := wrapSortedByEstimate(children)
	var estimate uint64
	if len(wrapped) > 0 {
		estimate = wrapped[len(wrapped)-1].EstimateLength()
	}
	return &orIterator{children: wrapped, estimate: estimate}
}

func (o *orIterator) EstimateLength() uint64 {
	return o.estimate
}

func (o *orIterator) Next() (*posting.Posting, bool) {
	var minDocID uint64
	found := false
	for _, c := range o.children {
		p, ok := c.Peek()
		if !ok {
			continue
		}
		if !found || p.DocID < minDocID {
			minDocID = p.DocID
			found = true
		}
	}
	if !found {
		return nil, false
	}

	var result *posting.Posting
	remaining := o.children[:0]
	for _, c := range o.children {
		p, ok := c.Peek()
		if !ok {
			continue // exhausted, drop it
		}
		if p.DocID == minDocID {
			v, _ := c.Next()
			if result == nil {
				result = v
			}
		}
		remaining = append(remaining, c)
	}
	o.children = remaining
	return result, result != nil
}

func (o *orIterator) NextSeek(target uint64) (*posting.Posting, bool) {
	for _, c := range o.children {
		c.PeekSeek(target)
	}
	return o.Next()
}
