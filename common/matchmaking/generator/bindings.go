package generator

import (
	"github.com/scusemua/cloud-matchmaker/common/catalog"
)

type bindingKey struct {
	cloudId  string
	entityId string
}

// Bindings records the location to which each image and hardware profile that is unbound in the catalog
// was bound during a single generation pass. Such an entity becomes bound to the first location against
// which it is matched.
//
// Entities that are bound in the catalog itself keep that binding and are not recorded; their location
// is read from the catalog. Bindings never modifies the catalog.
type Bindings struct {
	images   map[bindingKey]*catalog.Location
	hardware map[bindingKey]*catalog.Location
}

func newBindings() *Bindings {
	return &Bindings{
		images:   make(map[bindingKey]*catalog.Location),
		hardware: make(map[bindingKey]*catalog.Location),
	}
}

// Image returns the location to which the image was bound during generation. It returns false for images
// that are bound in the catalog.
func (b *Bindings) Image(cloudId string, imageId string) (*catalog.Location, bool) {
	loc, ok := b.images[bindingKey{cloudId, imageId}]
	return loc, ok
}

// Hardware returns the location to which the hardware profile was bound during generation. It returns false
// for hardware profiles that are bound in the catalog.
func (b *Bindings) Hardware(cloudId string, hardwareId string) (*catalog.Location, bool) {
	loc, ok := b.hardware[bindingKey{cloudId, hardwareId}]
	return loc, ok
}

// Len returns the total number of images and hardware profiles that were bound during generation.
func (b *Bindings) Len() int {
	return len(b.images) + len(b.hardware)
}

// admit checks whether the entity may be placed at a location with the given scope, binding it to loc
// if it is not yet bound.
func admit(bound map[bindingKey]*catalog.Location, key bindingKey, static *catalog.Location,
	loc *catalog.Location, scope map[string]struct{}) bool {

	if static == nil {
		static = bound[key]
	}

	if static == nil {
		bound[key] = loc
		return true
	}

	_, ok := scope[static.ID]
	return ok
}
