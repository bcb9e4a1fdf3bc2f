package catalog_test

import (
	"errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/scusemua/cloud-matchmaker/common/catalog"
	"github.com/shopspring/decimal"
)

var (
	sampleCatalogDocument = `
clouds:
  - id: aws
    name: Amazon Web Services
    type: PUBLIC
    locations:
      - id: us-east-1
        name: US East (N. Virginia)
        country: US
        assignable: false
      - id: us-east-1a
        name: us-east-1a
        assignable: true
        parent: us-east-1
      - id: eu-west-1
        name: EU (Ireland)
        country: IE
        assignable: true
    hardware:
      - id: m5.large
        name: m5.large
        cores: 2
        ram: 8192
        disk: 20
      - id: c5.xlarge
        name: c5.xlarge
        cores: 4
        ram: 8192
        disk: 20
        location: us-east-1
    images:
      - id: ubuntu-22.04
        name: Ubuntu 22.04
        os_family: UBUNTU
    prices:
      - image: ubuntu-22.04
        hardware: m5.large
        location: us-east-1a
        price: 0.096
      - image: ubuntu-22.04
        hardware: c5.xlarge
        location: us-east-1a
        price: "0.17"
`
)

var _ = Describe("Catalog", func() {
	Context("Location scope", func() {
		var (
			region *catalog.Location
			zone   *catalog.Location
		)

		BeforeEach(func() {
			region = &catalog.Location{ID: "region", Country: "DE"}
			zone = &catalog.Location{ID: "zone", Parent: region, Assignable: true}
		})

		It("Will contain the location itself and all of its ancestors", func() {
			scope := zone.Scope()
			Expect(scope).To(HaveLen(2))
			Expect(scope).To(HaveKey("zone"))
			Expect(scope).To(HaveKey("region"))

			Expect(region.Scope()).To(HaveLen(1))
			Expect(region.Scope()).To(HaveKey("region"))
		})

		It("Will not contain descendants", func() {
			Expect(region.InScope("zone")).To(BeFalse())
			Expect(zone.InScope("region")).To(BeTrue())
			Expect(zone.InScope("zone")).To(BeTrue())
		})

		It("Will inherit the country of the nearest ancestor", func() {
			Expect(zone.EffectiveCountry()).To(Equal("DE"))
			Expect(zone.Root()).To(Equal(region))
		})
	})

	Context("Snapshot identity", func() {
		It("Will assign a distinct identity to every snapshot", func() {
			first := catalog.New(&catalog.Cloud{ID: "aws"})
			second := catalog.New(&catalog.Cloud{ID: "aws"})

			Expect(first.ID()).ToNot(BeEmpty())
			Expect(first.ID()).ToNot(Equal(second.ID()))
		})
	})

	Context("Catalog documents", func() {
		It("Will resolve all references of a valid document", func() {
			cat, err := catalog.Parse([]byte(sampleCatalogDocument))
			Expect(err).To(BeNil())
			Expect(cat).ToNot(BeNil())
			Expect(cat.Clouds()).To(HaveLen(1))

			cloud, ok := cat.Cloud("aws")
			Expect(ok).To(BeTrue())
			Expect(cloud.Type).To(Equal(catalog.PublicCloud))
			Expect(cloud.Locations).To(HaveLen(3))
			Expect(cloud.Hardware).To(HaveLen(2))
			Expect(cloud.Images).To(HaveLen(1))
			Expect(cloud.Prices).To(HaveLen(2))

			zone := cloud.Locations[1]
			Expect(zone.Parent).To(Equal(cloud.Locations[0]))
			Expect(zone.EffectiveCountry()).To(Equal("US"))

			Expect(cloud.Hardware[0].Location).To(BeNil())
			Expect(cloud.Hardware[1].Location).To(Equal(cloud.Locations[0]))

			Expect(cloud.Prices[0].Amount.Equal(decimal.RequireFromString("0.096"))).To(BeTrue())
			Expect(cloud.Prices[1].Amount.Equal(decimal.RequireFromString("0.17"))).To(BeTrue())
			Expect(cloud.Prices[0].Hardware).To(Equal(cloud.Hardware[0]))

			Expect(cat.NumCombinations()).To(Equal(6))
		})

		It("Will reject a price that references an unknown hardware profile", func() {
			doc := `
clouds:
  - id: gcp
    locations:
      - id: europe-west3
        assignable: true
    images:
      - id: debian
    prices:
      - image: debian
        hardware: n2-standard-2
        location: europe-west3
        price: 0.1
`
			_, err := catalog.Parse([]byte(doc))
			Expect(err).ToNot(BeNil())
			Expect(errors.Is(err, catalog.ErrUnknownHardware)).To(BeTrue())
		})

		It("Will reject a location with an unknown parent", func() {
			doc := `
clouds:
  - id: gcp
    locations:
      - id: europe-west3-a
        assignable: true
        parent: europe-west3
`
			_, err := catalog.Parse([]byte(doc))
			Expect(errors.Is(err, catalog.ErrUnknownLocation)).To(BeTrue())
		})

		It("Will reject cyclic location trees", func() {
			doc := `
clouds:
  - id: gcp
    locations:
      - id: a
        parent: b
      - id: b
        parent: a
`
			_, err := catalog.Parse([]byte(doc))
			Expect(errors.Is(err, catalog.ErrLocationCycle)).To(BeTrue())
		})

		It("Will reject duplicate identifiers", func() {
			doc := `
clouds:
  - id: gcp
    images:
      - id: debian
      - id: debian
`
			_, err := catalog.Parse([]byte(doc))
			Expect(errors.Is(err, catalog.ErrDuplicateID)).To(BeTrue())
		})

		It("Will default the operating-system family of an image", func() {
			doc := `
clouds:
  - id: gcp
    images:
      - id: custom
`
			cat, err := catalog.Parse([]byte(doc))
			Expect(err).To(BeNil())
			Expect(cat.Clouds()[0].Images[0].OSFamily).To(Equal(catalog.Unknown))
		})
	})
})
