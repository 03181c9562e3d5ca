package query

import (
	"sort"

	"github.com/rpcpool/boolidx/posting"
)

// phraseTerm is one slot in a positional query: a child iterator plus the
// offset that slot's matches must sit at relative to the phrase's anchor
// doc position. A wildcard slot (spec.md glossary "Wildcard") matches any
// term at its offset and therefore contributes no iterator at all.
type phraseTerm struct {
	child  *peekSeek
	offset uint32
}

// positionalIterator matches an ordered sequence of terms (and wildcard
// gaps) occurring at consecutive positions within one document (spec.md
// §4.6 "Phrase/InOrder component"). It intersects its concrete terms'
// doc ids exactly like And, then additionally requires that some anchor
// position p exists such that, for every concrete term at offset o, p+o
// appears in that term's position list for the candidate doc.
type positionalIterator struct {
	terms    []phraseTerm
	estimate uint64
}

func newPositional(terms []phraseTerm) *positionalIterator {
	sort.SliceStable(terms, func(i, j int) bool {
		return terms[i].child.EstimateLength() < terms[j].child.EstimateLength()
	})
	var estimate uint64
	if len(terms) > 0 {
		estimate = terms[0].child.EstimateLength()
	}
	return &positionalIterator{terms: terms, estimate: estimate}
}

func (p *positionalIterator) EstimateLength() uint64 {
	return p.estimate
}

func (p *positionalIterator) Next() (*posting.Posting, bool) {
	if len(p.terms) == 0 {
		return nil, false
	}
	current := make([]*posting.Posting, len(p.terms))

	v, ok := p.terms[0].child.Next()
	if !ok {
		return nil, false
	}
	current[0] = v
	focusDocID := v.DocID
	lastIter := 0

	for {
		restarted := false
		for i, t := range p.terms {
			if i == lastIter {
				continue
			}
			cv, ok := t.child.NextSeek(focusDocID)
			if !ok {
				return nil, false
			}
			current[i] = cv
			if cv.DocID > focusDocID {
				focusDocID = cv.DocID
				lastIter = i
				restarted = true
				break
			}
		}
		if restarted {
			continue
		}

		if match := matchAnchor(p.terms, current, focusDocID); match != nil {
			return match, true
		}

		v, ok := p.terms[0].child.Next()
		if !ok {
			return nil, false
		}
		current[0] = v
		focusDocID = v.DocID
		lastIter = 0
	}
}

func (p *positionalIterator) NextSeek(target uint64) (*posting.Posting, bool) {
	for _, t := range p.terms {
		t.child.PeekSeek(target)
	}
	return p.Next()
}

// matchAnchor checks, for the doc id every term's current posting already
// agrees on, whether an anchor position exists such that anchor+offset
// appears in every term's position list. It returns a synthetic posting
// carrying the matched anchor positions, or nil if no anchor works.
func matchAnchor(terms []phraseTerm, current []*posting.Posting, docID uint64) *posting.Posting {
	var anchors []uint32
	for _, pos := range current[0].Positions {
		if pos < terms[0].offset {
			continue
		}
		anchors = append(anchors, pos-terms[0].offset)
	}

	var matched []uint32
	for _, anchor := range anchors {
		ok := true
		for i := 1; i < len(terms); i++ {
			if !containsPosition(current[i].Positions, anchor+terms[i].offset) {
				ok = false
				break
			}
		}
		if ok {
			matched = append(matched, anchor)
		}
	}
	if len(matched) == 0 {
		return nil
	}
	return &posting.Posting{DocID: docID, Positions: matched}
}

func containsPosition(positions []uint32, target uint32) bool {
	i := sort.Search(len(positions), func(i int) bool { return positions[i] >= target })
	return i < len(positions) && positions[i] == target
}
