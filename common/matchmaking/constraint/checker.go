package constraint

import (
	"fmt"
	"math"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/scusemua/cloud-matchmaker/common/matchmaking"
)

type expression struct {
	source  string
	program cel.Program
	perNode bool
}

// Checker is a compiled set of constraint expressions.
//
// Checker is safe for concurrent use.
type Checker struct {
	expressions []*expression
	numPerNode  int

	// nodes caches the activation value of each candidate, keyed by candidate ID.
	nodes cmap.ConcurrentMap[string, map[string]interface{}]
}

// Len returns the number of compiled expressions.
func (c *Checker) Len() int {
	return len(c.expressions)
}

// NumPerNode returns the number of compiled expressions that constrain individual nodes.
func (c *Checker) NumPerNode() int {
	return c.numPerNode
}

// CheckNode evaluates the per-node expressions against the given candidate alone.
func (c *Checker) CheckNode(candidate *matchmaking.NodeCandidate) (bool, error) {
	if c.numPerNode == 0 {
		return true, nil
	}

	nodes := []interface{}{c.node(candidate)}
	for _, expr := range c.expressions {
		if !expr.perNode {
			continue
		}

		if ok, err := expr.eval(nodes); !ok || err != nil {
			return false, err
		}
	}

	return true, nil
}

// CheckSolution evaluates every expression against the given selection.
func (c *Checker) CheckSolution(selection []*matchmaking.NodeCandidate) (bool, error) {
	if len(c.expressions) == 0 {
		return true, nil
	}

	nodes := make([]interface{}, 0, len(selection))
	for _, candidate := range selection {
		nodes = append(nodes, c.node(candidate))
	}

	for _, expr := range c.expressions {
		if ok, err := expr.eval(nodes); !ok || err != nil {
			return false, err
		}
	}

	return true, nil
}

func (c *Checker) node(candidate *matchmaking.NodeCandidate) map[string]interface{} {
	if node, ok := c.nodes.Get(candidate.ID()); ok {
		return node
	}

	node := NodeValue(candidate)
	c.nodes.Set(candidate.ID(), node)
	return node
}

func (e *expression) eval(nodes []interface{}) (bool, error) {
	out, _, err := e.program.Eval(map[string]interface{}{NodesVariable: nodes})
	if err != nil {
		return false, fmt.Errorf("%w: \"%s\": %v", ErrConstraintEvaluation, e.source, err)
	}

	result, ok := out.(types.Bool)
	if !ok {
		return false, fmt.Errorf("%w: %w: \"%s\" evaluated to %v", ErrConstraintEvaluation,
			ErrNonBooleanConstraint, e.source, out.Value())
	}

	return bool(result), nil
}

// NodeValue returns the representation of the candidate that is bound within constraint expressions.
func NodeValue(candidate *matchmaking.NodeCandidate) map[string]interface{} {
	priceValue := math.MaxFloat64
	if candidate.HasKnownPrice() {
		priceValue = candidate.Price().InexactFloat64()
	}

	loc := candidate.Location()
	scope := make([]string, 0, 2)
	parent := ""
	for l := loc; l != nil; l = l.Parent {
		scope = append(scope, l.ID)
	}
	if loc.Parent != nil {
		parent = loc.Parent.ID
	}

	return map[string]interface{}{
		"id":    candidate.ID(),
		"price": priceValue,
		"cloud": map[string]interface{}{
			"id":   candidate.Cloud().ID,
			"name": candidate.Cloud().Name,
			"type": string(candidate.Cloud().Type),
		},
		"hardware": map[string]interface{}{
			"id":    candidate.Hardware().ID,
			"name":  candidate.Hardware().Name,
			"cores": int64(candidate.Hardware().Cores),
			"ram":   candidate.Hardware().RamMB,
			"disk":  candidate.Hardware().DiskGB,
		},
		"image": map[string]interface{}{
			"id":   candidate.Image().ID,
			"name": candidate.Image().Name,
			"os":   string(candidate.Image().OSFamily),
		},
		"location": map[string]interface{}{
			"id":      loc.ID,
			"name":    loc.Name,
			"country": loc.EffectiveCountry(),
			"parent":  parent,
			"scope":   scope,
		},
	}
}
