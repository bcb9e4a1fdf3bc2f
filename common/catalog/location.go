package catalog

import "fmt"

// Location is a region, zone, or other placement scope of a Cloud.
//
// Locations form a tree via their Parent references (e.g., zone -> region).
type Location struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Country    string    `json:"country"`
	Assignable bool      `json:"assignable"`
	Parent     *Location `json:"-"`
}

// Scope returns the set of location IDs from the Location itself up through all of its ancestors.
func (l *Location) Scope() map[string]struct{} {
	ids := make(map[string]struct{})
	for loc := l; loc != nil; loc = loc.Parent {
		ids[loc.ID] = struct{}{}
	}
	return ids
}

// InScope returns true if the location with the given ID is the Location itself or one of its ancestors.
func (l *Location) InScope(id string) bool {
	for loc := l; loc != nil; loc = loc.Parent {
		if loc.ID == id {
			return true
		}
	}
	return false
}

// Root returns the top-most ancestor of the Location.
func (l *Location) Root() *Location {
	loc := l
	for loc.Parent != nil {
		loc = loc.Parent
	}
	return loc
}

// EffectiveCountry returns the country of the Location, falling back to the
// nearest ancestor that specifies one.
func (l *Location) EffectiveCountry() string {
	for loc := l; loc != nil; loc = loc.Parent {
		if loc.Country != "" {
			return loc.Country
		}
	}
	return ""
}

func (l *Location) String() string {
	if l.Parent != nil {
		return fmt.Sprintf("Location[ID=%s,Parent=%s,Assignable=%v]", l.ID, l.Parent.ID, l.Assignable)
	}
	return fmt.Sprintf("Location[ID=%s,Assignable=%v]", l.ID, l.Assignable)
}
