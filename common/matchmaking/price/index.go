package price

import (
	"fmt"

	"github.com/scusemua/cloud-matchmaker/common/catalog"
	"github.com/shopspring/decimal"
)

// Key identifies a single price entry.
type Key struct {
	CloudID    string
	ImageID    string
	HardwareID string
	LocationID string
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%s/%s", k.CloudID, k.ImageID, k.HardwareID, k.LocationID)
}

// Index maps the (cloud, image, hardware, location) tuples of a single catalog snapshot to prices.
//
// An Index is never modified after Build returns it.
type Index struct {
	catalogId  string
	prices     map[Key]decimal.Decimal
	duplicates int
}

// Build scans every price entry of the given catalog.
//
// If the catalog lists more than one entry for the same tuple, then the first entry wins.
func Build(cat *catalog.Catalog) *Index {
	index := &Index{
		catalogId: cat.ID(),
		prices:    make(map[Key]decimal.Decimal),
	}

	for _, cloud := range cat.Clouds() {
		for _, entry := range cloud.Prices {
			if entry.Image == nil || entry.Hardware == nil || entry.Location == nil {
				continue
			}

			key := Key{
				CloudID:    cloud.ID,
				ImageID:    entry.Image.ID,
				HardwareID: entry.Hardware.ID,
				LocationID: entry.Location.ID,
			}

			if _, loaded := index.prices[key]; loaded {
				index.duplicates++
				continue
			}

			index.prices[key] = entry.Amount
		}
	}

	return index
}

// Lookup returns the price of the given tuple, if the catalog contained one.
func (idx *Index) Lookup(cloudId string, imageId string, hardwareId string, locationId string) (decimal.Decimal, bool) {
	price, ok := idx.prices[Key{CloudID: cloudId, ImageID: imageId, HardwareID: hardwareId, LocationID: locationId}]
	return price, ok
}

// LookupOr returns the price of the given tuple, or def if the catalog contained none.
func (idx *Index) LookupOr(cloudId string, imageId string, hardwareId string, locationId string, def decimal.Decimal) decimal.Decimal {
	if price, ok := idx.Lookup(cloudId, imageId, hardwareId, locationId); ok {
		return price
	}

	return def
}

// CatalogID returns the identity of the snapshot from which the Index was built.
func (idx *Index) CatalogID() string {
	return idx.catalogId
}

// Len returns the number of distinct tuples in the Index.
func (idx *Index) Len() int {
	return len(idx.prices)
}

// Duplicates returns the number of price entries that were ignored because their tuple was already indexed.
func (idx *Index) Duplicates() int {
	return idx.duplicates
}
