package testing

import (
	"github.com/onsi/ginkgo/v2"
	"github.com/scusemua/cloud-matchmaker/common/catalog"
	"github.com/shopspring/decimal"
)

// CatalogBuilder is used to assemble catalog.Catalog snapshots within unit tests.
type CatalogBuilder struct {
	clouds []*CloudBuilder
}

// CloudBuilder adds entities to a single catalog.Cloud of a CatalogBuilder.
type CloudBuilder struct {
	Cloud *catalog.Cloud
}

func NewCatalogBuilder() *CatalogBuilder {
	return &CatalogBuilder{}
}

// Cloud adds a new, empty cloud to the catalog.
func (b *CatalogBuilder) Cloud(id string, cloudType catalog.CloudType) *CloudBuilder {
	cb := &CloudBuilder{Cloud: &catalog.Cloud{ID: id, Name: id, Type: cloudType}}
	b.clouds = append(b.clouds, cb)
	return cb
}

// Build returns a new catalog.Catalog snapshot of the clouds added so far.
func (b *CatalogBuilder) Build() *catalog.Catalog {
	clouds := make([]*catalog.Cloud, 0, len(b.clouds))
	for _, cb := range b.clouds {
		clouds = append(clouds, cb.Cloud)
	}

	cat := catalog.New(clouds...)
	ginkgo.GinkgoWriter.Printf("Built catalog %s with %d possible combination(s).\n", cat.ID(), cat.NumCombinations())
	return cat
}

func (cb *CloudBuilder) Location(id string, country string, assignable bool, parent *catalog.Location) *catalog.Location {
	loc := &catalog.Location{ID: id, Name: id, Country: country, Assignable: assignable, Parent: parent}
	cb.Cloud.Locations = append(cb.Cloud.Locations, loc)
	return loc
}

func (cb *CloudBuilder) Hardware(id string, cores int, ramMB int64, bound *catalog.Location) *catalog.Hardware {
	hw := &catalog.Hardware{ID: id, Name: id, Cores: cores, RamMB: ramMB, DiskGB: 20, Location: bound}
	cb.Cloud.Hardware = append(cb.Cloud.Hardware, hw)
	return hw
}

func (cb *CloudBuilder) Image(id string, os catalog.OSFamily, bound *catalog.Location) *catalog.Image {
	img := &catalog.Image{ID: id, Name: id, OSFamily: os, Location: bound}
	cb.Cloud.Images = append(cb.Cloud.Images, img)
	return img
}

// Price adds a price entry. The amount must be a valid decimal string.
func (cb *CloudBuilder) Price(img *catalog.Image, hw *catalog.Hardware, loc *catalog.Location, amount string) *catalog.Price {
	price := &catalog.Price{Image: img, Hardware: hw, Location: loc, Amount: decimal.RequireFromString(amount)}
	cb.Cloud.Prices = append(cb.Cloud.Prices, price)
	return price
}

// PriceAll adds the same price entry for every image and hardware combination at the given location.
func (cb *CloudBuilder) PriceAll(loc *catalog.Location, amount string) {
	for _, img := range cb.Cloud.Images {
		for _, hw := range cb.Cloud.Hardware {
			cb.Price(img, hw, loc, amount)
		}
	}
}
