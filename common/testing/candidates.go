package testing

import (
	"fmt"

	"github.com/scusemua/cloud-matchmaker/common/catalog"
	"github.com/scusemua/cloud-matchmaker/common/matchmaking"
	"github.com/shopspring/decimal"
)

var (
	testCloud    = &catalog.Cloud{ID: "test-cloud", Type: catalog.PublicCloud}
	testImage    = &catalog.Image{ID: "test-image", OSFamily: catalog.Ubuntu}
	testLocation = &catalog.Location{ID: "test-location", Country: "DE", Assignable: true}
)

// NewCandidate creates a matchmaking.NodeCandidate with the given hardware profile and price.
//
// All candidates created by NewCandidate share the same cloud, image, and location; the hardware ID
// is derived from the name so that distinct names yield distinct candidates.
func NewCandidate(name string, cores int, ramMB int64, price string) *matchmaking.NodeCandidate {
	hw := &catalog.Hardware{ID: fmt.Sprintf("hw-%s", name), Name: name, Cores: cores, RamMB: ramMB}
	return matchmaking.NewNodeCandidate(testCloud, hw, testImage, testLocation, decimal.RequireFromString(price))
}

// NewCandidates creates a candidate set of n candidates priced 1, 2, ..., n with 2, 4, ..., 2n cores.
func NewCandidates(n int) *matchmaking.NodeCandidates {
	set := matchmaking.NewNodeCandidates()
	for i := 1; i <= n; i++ {
		set.Add(NewCandidate(fmt.Sprintf("c%d", i), 2*i, int64(4096*i), fmt.Sprintf("%d", i)))
	}
	return set
}

// AcceptAll is a matchmaking.ConstraintChecker that accepts every candidate and selection.
type AcceptAll struct{}

func (AcceptAll) CheckNode(_ *matchmaking.NodeCandidate) (bool, error) { return true, nil }

func (AcceptAll) CheckSolution(_ []*matchmaking.NodeCandidate) (bool, error) { return true, nil }

// CheckerFunc adapts a selection predicate to the matchmaking.ConstraintChecker interface.
// Every individual node is accepted.
type CheckerFunc func(selection []*matchmaking.NodeCandidate) bool

func (f CheckerFunc) CheckNode(_ *matchmaking.NodeCandidate) (bool, error) {
	return true, nil
}

func (f CheckerFunc) CheckSolution(selection []*matchmaking.NodeCandidate) (bool, error) {
	return f(selection), nil
}
