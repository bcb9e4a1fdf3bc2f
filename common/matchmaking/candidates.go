package matchmaking

import (
	"sort"

	"github.com/elliotchance/orderedmap/v2"
)

// NodeCandidates is an insertion-ordered set of NodeCandidate instances.
//
// The set is keyed by CandidateKey and therefore never contains two candidates with the same
// identity tuple. NodeCandidates is not safe for concurrent modification; once it has been handed
// to a Solver, it must be treated as read-only.
type NodeCandidates struct {
	candidates *orderedmap.OrderedMap[CandidateKey, *NodeCandidate]
	byId       map[string]*NodeCandidate
}

// NewNodeCandidates creates a new NodeCandidates set containing the given candidates.
func NewNodeCandidates(candidates ...*NodeCandidate) *NodeCandidates {
	set := &NodeCandidates{
		candidates: orderedmap.NewOrderedMap[CandidateKey, *NodeCandidate](),
		byId:       make(map[string]*NodeCandidate, len(candidates)),
	}

	for _, candidate := range candidates {
		set.Add(candidate)
	}

	return set
}

// Add adds the given NodeCandidate to the set.
//
// Add returns false if a candidate with the same identity tuple was already present, in which case
// the set is left unchanged.
func (s *NodeCandidates) Add(candidate *NodeCandidate) bool {
	if _, loaded := s.candidates.Get(candidate.Key()); loaded {
		return false
	}

	s.candidates.Set(candidate.Key(), candidate)
	s.byId[candidate.ID()] = candidate
	return true
}

// Len returns the number of candidates in the set.
func (s *NodeCandidates) Len() int {
	if s == nil {
		return 0
	}

	return s.candidates.Len()
}

// IsEmpty returns true if the set contains no candidates.
func (s *NodeCandidates) IsEmpty() bool {
	return s.Len() == 0
}

// Get returns the candidate with the given identity tuple.
func (s *NodeCandidates) Get(key CandidateKey) (*NodeCandidate, bool) {
	return s.candidates.Get(key)
}

// ByID returns the candidate with the given candidate ID.
func (s *NodeCandidates) ByID(id string) (*NodeCandidate, bool) {
	candidate, ok := s.byId[id]
	return candidate, ok
}

// Contains returns true if a candidate with the same identity tuple is in the set.
func (s *NodeCandidates) Contains(candidate *NodeCandidate) bool {
	_, ok := s.candidates.Get(candidate.Key())
	return ok
}

// Slice returns the candidates in insertion order.
func (s *NodeCandidates) Slice() []*NodeCandidate {
	if s == nil {
		return []*NodeCandidate{}
	}

	slice := make([]*NodeCandidate, 0, s.candidates.Len())
	for el := s.candidates.Front(); el != nil; el = el.Next() {
		slice = append(slice, el.Value)
	}

	return slice
}

// SortedByPrice returns the candidates ordered by ascending price.
//
// Candidates with equal prices retain their insertion order.
func (s *NodeCandidates) SortedByPrice() []*NodeCandidate {
	slice := s.Slice()
	sort.SliceStable(slice, func(i, j int) bool {
		return slice[i].Price().LessThan(slice[j].Price())
	})
	return slice
}

// Filter returns a new set containing the candidates for which keep returns true.
func (s *NodeCandidates) Filter(keep func(*NodeCandidate) bool) *NodeCandidates {
	filtered := NewNodeCandidates()
	for el := s.candidates.Front(); el != nil; el = el.Next() {
		if keep(el.Value) {
			filtered.Add(el.Value)
		}
	}

	return filtered
}
