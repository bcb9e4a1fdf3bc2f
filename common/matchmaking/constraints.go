package matchmaking

import (
	"sort"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// QuotaScope is the kind of catalog entity to which a Quota applies.
type QuotaScope string

// QuotaResource is the resource that is limited by a Quota.
type QuotaResource string

const (
	CloudScope    QuotaScope = "cloud"
	LocationScope QuotaScope = "location"

	CoresResource QuotaResource = "cores"
	RamResource   QuotaResource = "ram"
	NodesResource QuotaResource = "nodes"
)

// Quota is an upper bound on the usage of a resource within a scope.
//
// A LocationScope Quota applies to candidates whose location has ScopeID within its location scope.
type Quota struct {
	Scope    QuotaScope    `json:"scope" yaml:"scope"`
	ScopeID  string        `json:"scopeId" yaml:"scope_id"`
	Resource QuotaResource `json:"resource" yaml:"resource"`
	Limit    int64         `json:"limit" yaml:"limit"`
}

// ExistingNode is a node that has already been provisioned for the user.
type ExistingNode struct {
	ID              string `json:"id"`
	NodeCandidateID string `json:"nodeCandidateId"`
}

// ConstraintSet is the declarative requirement of a single solve request.
type ConstraintSet struct {
	// Requirements are the constraint expressions that candidates and solutions must satisfy.
	Requirements []string `json:"requirements"`

	// ExistingNodes are the nodes that have already been provisioned for the user.
	ExistingNodes []ExistingNode `json:"existingNodes"`

	// MinimumNodeSize is the requested solution size. Zero means unspecified.
	MinimumNodeSize int `json:"minimumNodeSize,omitempty"`

	// Quotas are the per-scope resource limits of the user.
	Quotas []Quota `json:"quotas"`
}

// TargetSize returns the number of nodes that a Solution must contain.
//
// If a minimum size was specified, then that size is the target. Otherwise the target is one more than
// the number of existing nodes.
func (cs *ConstraintSet) TargetSize() int {
	if cs.MinimumNodeSize > 0 {
		return cs.MinimumNodeSize
	}

	return len(cs.ExistingNodes) + 1
}

// Fingerprint returns a hash of everything in the ConstraintSet that influences the filtered candidate
// set, along with the given extra values.
//
// The order of ExistingNodes and Quotas does not affect the result. The order of Requirements does.
func (cs *ConstraintSet) Fingerprint(extra ...string) uint64 {
	digest := xxhash.New()

	write := func(section string, values []string) {
		_, _ = digest.WriteString(section)
		_, _ = digest.WriteString(strconv.Itoa(len(values)))
		for _, value := range values {
			_, _ = digest.WriteString("\x00")
			_, _ = digest.WriteString(value)
		}
		_, _ = digest.WriteString("\x01")
	}

	write("requirements", cs.Requirements)

	existing := make([]string, 0, len(cs.ExistingNodes))
	for _, node := range cs.ExistingNodes {
		existing = append(existing, node.NodeCandidateID)
	}
	sort.Strings(existing)
	write("existing", existing)

	quotas := make([]string, 0, len(cs.Quotas))
	for _, q := range cs.Quotas {
		quotas = append(quotas, string(q.Scope)+"|"+q.ScopeID+"|"+string(q.Resource)+"|"+strconv.FormatInt(q.Limit, 10))
	}
	sort.Strings(quotas)
	write("quotas", quotas)

	write("extra", extra)

	return digest.Sum64()
}
