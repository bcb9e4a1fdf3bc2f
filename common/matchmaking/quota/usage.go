package quota

import (
	"github.com/scusemua/cloud-matchmaker/common/matchmaking"
)

// placement is the accounting view of a single node.
type placement struct {
	cloudId string
	scope   []string
	cores   int64
	ramMB   int64
}

func placementOf(candidate *matchmaking.NodeCandidate) placement {
	scope := make([]string, 0, 2)
	for loc := candidate.Location(); loc != nil; loc = loc.Parent {
		scope = append(scope, loc.ID)
	}

	return placement{
		cloudId: candidate.Cloud().ID,
		scope:   scope,
		cores:   int64(candidate.Hardware().Cores),
		ramMB:   candidate.Hardware().RamMB,
	}
}

// appliesTo returns true if the quota constrains nodes with the given placement.
func appliesTo(q matchmaking.Quota, p placement) bool {
	switch q.Scope {
	case matchmaking.CloudScope:
		return q.ScopeID == p.cloudId
	case matchmaking.LocationScope:
		for _, id := range p.scope {
			if id == q.ScopeID {
				return true
			}
		}
	}

	return false
}

// demand returns the amount of the quota's resource that count nodes with the given placement consume.
func demand(q matchmaking.Quota, p placement, count int64) int64 {
	switch q.Resource {
	case matchmaking.CoresResource:
		return p.cores * count
	case matchmaking.RamResource:
		return p.ramMB * count
	case matchmaking.NodesResource:
		return count
	default:
		return 0
	}
}

// Usage is the consumption of each of a fixed list of quotas.
type Usage struct {
	quotas []matchmaking.Quota
	used   []int64
}

func newUsage(quotas []matchmaking.Quota) *Usage {
	return &Usage{
		quotas: quotas,
		used:   make([]int64, len(quotas)),
	}
}

func (u *Usage) add(p placement, count int64) {
	for i, q := range u.quotas {
		if appliesTo(q, p) {
			u.used[i] += demand(q, p, count)
		}
	}
}

// fits returns true if adding count nodes with the given placement keeps every quota within its limit.
func (u *Usage) fits(p placement, count int64) bool {
	for i, q := range u.quotas {
		if appliesTo(q, p) && u.used[i]+demand(q, p, count) > q.Limit {
			return false
		}
	}

	return true
}

// clone returns an independent copy of the Usage.
func (u *Usage) clone() *Usage {
	used := make([]int64, len(u.used))
	copy(used, u.used)
	return &Usage{quotas: u.quotas, used: used}
}

// Used returns the consumption of the i-th quota.
func (u *Usage) Used(i int) int64 {
	return u.used[i]
}

// Remaining returns the amount of the i-th quota that is still available.
func (u *Usage) Remaining(i int) int64 {
	return u.quotas[i].Limit - u.used[i]
}
