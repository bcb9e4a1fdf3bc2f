package matchmaking

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/scusemua/cloud-matchmaker/common/catalog"
	"github.com/shopspring/decimal"
)

var (
	// UnknownPrice is attached to candidates for which the catalog contains no price entry.
	// It compares greater than any real price.
	UnknownPrice = decimal.NewFromFloat(math.MaxFloat64)

	// candidateNamespace is the UUID namespace from which NodeCandidate IDs are derived.
	candidateNamespace = uuid.MustParse("8b5f6f0e-51c4-4a3e-9d0c-5e1f3b7a2c64")
)

// CandidateKey is the identity of a NodeCandidate.
//
// Two NodeCandidate instances with equal CandidateKey values are the same candidate.
type CandidateKey struct {
	CloudID    string `json:"cloud"`
	HardwareID string `json:"hardware"`
	ImageID    string `json:"image"`
	LocationID string `json:"location"`
}

func (k CandidateKey) String() string {
	return fmt.Sprintf("%s/%s/%s/%s", k.CloudID, k.HardwareID, k.ImageID, k.LocationID)
}

// CandidateID returns the NodeCandidate ID that corresponds to the CandidateKey.
//
// IDs are derived deterministically from the key, so a candidate keeps its ID across catalog
// snapshots for as long as its configuration is offered.
func (k CandidateKey) CandidateID() string {
	return uuid.NewSHA1(candidateNamespace, []byte(k.String())).String()
}

// NodeCandidate is a concrete, priced combination of cloud, hardware profile, image, and location
// that could be provisioned.
//
// NodeCandidate is immutable once created.
type NodeCandidate struct {
	id    string
	key   CandidateKey
	price decimal.Decimal

	cloud    *catalog.Cloud
	hardware *catalog.Hardware
	image    *catalog.Image
	location *catalog.Location
}

// NewNodeCandidate creates a new NodeCandidate for the given entities and price.
func NewNodeCandidate(cloud *catalog.Cloud, hardware *catalog.Hardware, image *catalog.Image,
	location *catalog.Location, price decimal.Decimal) *NodeCandidate {

	key := CandidateKey{
		CloudID:    cloud.ID,
		HardwareID: hardware.ID,
		ImageID:    image.ID,
		LocationID: location.ID,
	}

	return &NodeCandidate{
		id:       key.CandidateID(),
		key:      key,
		price:    price,
		cloud:    cloud,
		hardware: hardware,
		image:    image,
		location: location,
	}
}

// ID returns the candidate ID of the NodeCandidate.
func (c *NodeCandidate) ID() string {
	return c.id
}

// Key returns the identity tuple of the NodeCandidate.
func (c *NodeCandidate) Key() CandidateKey {
	return c.key
}

// Price returns the price that was attached to the NodeCandidate when it was generated.
func (c *NodeCandidate) Price() decimal.Decimal {
	return c.price
}

// HasKnownPrice returns false if the catalog did not contain a price entry for the NodeCandidate.
func (c *NodeCandidate) HasKnownPrice() bool {
	return !c.price.Equal(UnknownPrice)
}

func (c *NodeCandidate) Cloud() *catalog.Cloud {
	return c.cloud
}

func (c *NodeCandidate) Hardware() *catalog.Hardware {
	return c.hardware
}

func (c *NodeCandidate) Image() *catalog.Image {
	return c.image
}

func (c *NodeCandidate) Location() *catalog.Location {
	return c.location
}

func (c *NodeCandidate) String() string {
	if !c.HasKnownPrice() {
		return fmt.Sprintf("NodeCandidate[ID=%s,Key=%s,Price=UNKNOWN]", c.id, c.key)
	}

	return fmt.Sprintf("NodeCandidate[ID=%s,Key=%s,Price=%s]", c.id, c.key, c.price.StringFixed(4))
}
