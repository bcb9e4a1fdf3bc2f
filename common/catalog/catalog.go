package catalog

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CloudType is the deployment model of a Cloud.
type CloudType string

const (
	PublicCloud  CloudType = "PUBLIC"
	PrivateCloud CloudType = "PRIVATE"
)

// OSFamily is the operating-system family of an Image.
type OSFamily string

const (
	Ubuntu  OSFamily = "UBUNTU"
	Debian  OSFamily = "DEBIAN"
	CentOS  OSFamily = "CENTOS"
	Windows OSFamily = "WINDOWS"
	Unknown OSFamily = "UNKNOWN"
)

// Hardware is a hardware profile (flavor) offered by a Cloud.
//
// If Location is non-nil, then the Hardware is only offered within the scope of that Location.
type Hardware struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Cores    int       `json:"cores"`
	RamMB    int64     `json:"ram"`
	DiskGB   float64   `json:"disk"`
	Location *Location `json:"-"`
}

func (h *Hardware) String() string {
	return fmt.Sprintf("Hardware[ID=%s,Cores=%d,RAM=%dMB]", h.ID, h.Cores, h.RamMB)
}

// Image is a machine image offered by a Cloud.
//
// If Location is non-nil, then the Image is only offered within the scope of that Location.
type Image struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	OSFamily OSFamily  `json:"os_family"`
	Location *Location `json:"-"`
}

func (i *Image) String() string {
	return fmt.Sprintf("Image[ID=%s,OS=%s]", i.ID, i.OSFamily)
}

// Price is a single price entry of a Cloud. A Price applies to exactly one
// (image, hardware, location) combination of its owning Cloud.
type Price struct {
	Image    *Image
	Hardware *Hardware
	Location *Location
	Amount   decimal.Decimal
}

// Cloud owns the images, hardware profiles, locations, and price entries that it offers.
type Cloud struct {
	ID        string
	Name      string
	Type      CloudType
	Images    []*Image
	Hardware  []*Hardware
	Locations []*Location
	Prices    []*Price
}

func (c *Cloud) String() string {
	return fmt.Sprintf("Cloud[ID=%s,Type=%s]", c.ID, c.Type)
}

// Catalog is an immutable snapshot of the clouds available to a particular user.
//
// Every Catalog is assigned a unique snapshot identity when it is created. Caches that are derived
// from a Catalog (such as price indices or generated candidates) are keyed by this identity.
type Catalog struct {
	id     string
	clouds []*Cloud
}

// New creates a new Catalog snapshot containing the specified clouds.
func New(clouds ...*Cloud) *Catalog {
	return &Catalog{
		id:     uuid.NewString(),
		clouds: clouds,
	}
}

// ID returns the snapshot identity of the Catalog.
func (c *Catalog) ID() string {
	return c.id
}

// Clouds returns the clouds of the Catalog.
//
// The returned slice must not be modified.
func (c *Catalog) Clouds() []*Cloud {
	return c.clouds
}

// Cloud returns the Cloud with the given ID, if one exists.
func (c *Catalog) Cloud(id string) (*Cloud, bool) {
	for _, cloud := range c.clouds {
		if cloud.ID == id {
			return cloud, true
		}
	}

	return nil, false
}

// NumCombinations returns the number of (image, hardware, location) combinations across all clouds.
// This is an upper bound on the number of candidates that may be generated from the Catalog.
func (c *Catalog) NumCombinations() int {
	total := 0
	for _, cloud := range c.clouds {
		total += len(cloud.Images) * len(cloud.Hardware) * len(cloud.Locations)
	}
	return total
}

func (c *Catalog) String() string {
	return fmt.Sprintf("Catalog[ID=%s,NumClouds=%d]", c.id, len(c.clouds))
}
