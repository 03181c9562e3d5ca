package build

import "sort"

// triple is one (term, doc, position) observation emitted by the
// producer (spec.md §4.4 step 1).
type triple struct {
	termID   uint64
	docID    uint64
	position uint32
}

// shard is a batch of triples tagged with the monotonic chunkCount the
// producer assigned it. The tag is only carried through to groupedShard;
// routing to a worker and restoring submission order are done by the
// ordered sorter pool (see sortWork).
type shard struct {
	chunkCount uint64
	triples    []triple
}

// postingDraft is one term's not-yet-encoded occurrences within a single
// document, still carrying absolute (not delta) values.
type postingDraft struct {
	docID     uint64
	positions []uint32
}

// termGroup is one term's postings extracted from a single shard, in
// strictly increasing doc id order.
type termGroup struct {
	termID   uint64
	postings []postingDraft
}

// groupedShard is a shard after the sorter has stable-sorted it by
// term id and grouped runs into per-term postings.
type groupedShard struct {
	chunkCount uint64
	groups     []termGroup
}

// groupShard stable-sorts s by term id and folds consecutive same-term
// triples into termGroups, and within each group folds consecutive
// same-doc triples into one posting's position list (spec.md §4.4 step
// 2). The sort is stable so that doc/position order within a term's
// group is preserved exactly as the producer emitted it.
func groupShard(s shard) groupedShard {
	sort.SliceStable(s.triples, func(i, j int) bool {
		return s.triples[i].termID < s.triples[j].termID
	})

	var groups []termGroup
	i := 0
	for i < len(s.triples) {
		j := i
		termID := s.triples[i].termID
		for j < len(s.triples) && s.triples[j].termID == termID {
			j++
		}
		groups = append(groups, termGroup{termID: termID, postings: foldPostings(s.triples[i:j])})
		i = j
	}
	return groupedShard{chunkCount: s.chunkCount, groups: groups}
}

func foldPostings(triples []triple) []postingDraft {
	var postings []postingDraft
	for _, t := range triples {
		if n := len(postings); n > 0 && postings[n-1].docID == t.docID {
			postings[n-1].positions = append(postings[n-1].positions, t.position)
			continue
		}
		postings = append(postings, postingDraft{docID: t.docID, positions: []uint32{t.position}})
	}
	return postings
}
