package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownLocation = errors.New("unknown location")
	ErrUnknownImage    = errors.New("unknown image")
	ErrUnknownHardware = errors.New("unknown hardware")
	ErrDuplicateID     = errors.New("duplicate id")
	ErrInvalidPrice    = errors.New("invalid price")
	ErrLocationCycle   = errors.New("location parent chain contains a cycle")
)

// Document is the serialized (YAML) form of a Catalog.
//
// Entities refer to one another by ID. Locations reference their parent by ID, and
// images and hardware may reference the location to which they are bound.
type Document struct {
	Clouds []CloudDocument `yaml:"clouds" json:"clouds"`
}

type CloudDocument struct {
	ID        string             `yaml:"id" json:"id"`
	Name      string             `yaml:"name" json:"name"`
	Type      CloudType          `yaml:"type" json:"type"`
	Locations []LocationDocument `yaml:"locations" json:"locations"`
	Hardware  []HardwareDocument `yaml:"hardware" json:"hardware"`
	Images    []ImageDocument    `yaml:"images" json:"images"`
	Prices    []PriceDocument    `yaml:"prices" json:"prices"`
}

type LocationDocument struct {
	ID         string `yaml:"id" json:"id"`
	Name       string `yaml:"name" json:"name"`
	Country    string `yaml:"country" json:"country"`
	Assignable bool   `yaml:"assignable" json:"assignable"`
	Parent     string `yaml:"parent,omitempty" json:"parent,omitempty"`
}

type HardwareDocument struct {
	ID       string  `yaml:"id" json:"id"`
	Name     string  `yaml:"name" json:"name"`
	Cores    int     `yaml:"cores" json:"cores"`
	RamMB    int64   `yaml:"ram" json:"ram"`
	DiskGB   float64 `yaml:"disk" json:"disk"`
	Location string  `yaml:"location,omitempty" json:"location,omitempty"`
}

type ImageDocument struct {
	ID       string   `yaml:"id" json:"id"`
	Name     string   `yaml:"name" json:"name"`
	OSFamily OSFamily `yaml:"os_family" json:"os_family"`
	Location string   `yaml:"location,omitempty" json:"location,omitempty"`
}

type PriceDocument struct {
	Image    string `yaml:"image" json:"image"`
	Hardware string `yaml:"hardware" json:"hardware"`
	Location string `yaml:"location" json:"location"`
	Price    string `yaml:"price" json:"price"`
}

// Decode reads a YAML Document from the given reader and resolves it into a new Catalog snapshot.
func Decode(r io.Reader) (*Catalog, error) {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, err
	}

	return doc.Build()
}

// Parse resolves the YAML Document contained in data into a new Catalog snapshot.
func Parse(data []byte) (*Catalog, error) {
	return Decode(bytes.NewReader(data))
}

// Load reads the YAML Document stored at the given path.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return Decode(f)
}

// Build resolves all ID references within the Document and returns a new Catalog snapshot.
func (d *Document) Build() (*Catalog, error) {
	clouds := make([]*Cloud, 0, len(d.Clouds))
	for i := range d.Clouds {
		cloud, err := d.Clouds[i].build()
		if err != nil {
			return nil, fmt.Errorf("cloud \"%s\": %w", d.Clouds[i].ID, err)
		}

		clouds = append(clouds, cloud)
	}

	return New(clouds...), nil
}

func (cd *CloudDocument) build() (*Cloud, error) {
	cloud := &Cloud{
		ID:   cd.ID,
		Name: cd.Name,
		Type: cd.Type,
	}

	locations := make(map[string]*Location, len(cd.Locations))
	for _, ld := range cd.Locations {
		if _, loaded := locations[ld.ID]; loaded {
			return nil, fmt.Errorf("%w: location \"%s\"", ErrDuplicateID, ld.ID)
		}

		loc := &Location{ID: ld.ID, Name: ld.Name, Country: ld.Country, Assignable: ld.Assignable}
		locations[ld.ID] = loc
		cloud.Locations = append(cloud.Locations, loc)
	}

	// Parents are linked in a second pass so that they may be listed in any order.
	for _, ld := range cd.Locations {
		if ld.Parent == "" {
			continue
		}

		parent, ok := locations[ld.Parent]
		if !ok {
			return nil, fmt.Errorf("%w: \"%s\" (parent of location \"%s\")", ErrUnknownLocation, ld.Parent, ld.ID)
		}

		locations[ld.ID].Parent = parent
	}

	for _, loc := range cloud.Locations {
		if err := checkAcyclic(loc, len(cloud.Locations)); err != nil {
			return nil, err
		}
	}

	lookupLocation := func(id string) (*Location, error) {
		if id == "" {
			return nil, nil
		}

		loc, ok := locations[id]
		if !ok {
			return nil, fmt.Errorf("%w: \"%s\"", ErrUnknownLocation, id)
		}

		return loc, nil
	}

	hardware := make(map[string]*Hardware, len(cd.Hardware))
	for _, hd := range cd.Hardware {
		if _, loaded := hardware[hd.ID]; loaded {
			return nil, fmt.Errorf("%w: hardware \"%s\"", ErrDuplicateID, hd.ID)
		}

		loc, err := lookupLocation(hd.Location)
		if err != nil {
			return nil, err
		}

		hw := &Hardware{ID: hd.ID, Name: hd.Name, Cores: hd.Cores, RamMB: hd.RamMB, DiskGB: hd.DiskGB, Location: loc}
		hardware[hd.ID] = hw
		cloud.Hardware = append(cloud.Hardware, hw)
	}

	images := make(map[string]*Image, len(cd.Images))
	for _, id := range cd.Images {
		if _, loaded := images[id.ID]; loaded {
			return nil, fmt.Errorf("%w: image \"%s\"", ErrDuplicateID, id.ID)
		}

		loc, err := lookupLocation(id.Location)
		if err != nil {
			return nil, err
		}

		osFamily := id.OSFamily
		if osFamily == "" {
			osFamily = Unknown
		}

		img := &Image{ID: id.ID, Name: id.Name, OSFamily: osFamily, Location: loc}
		images[id.ID] = img
		cloud.Images = append(cloud.Images, img)
	}

	for _, pd := range cd.Prices {
		img, ok := images[pd.Image]
		if !ok {
			return nil, fmt.Errorf("%w: \"%s\" (referenced by price)", ErrUnknownImage, pd.Image)
		}

		hw, ok := hardware[pd.Hardware]
		if !ok {
			return nil, fmt.Errorf("%w: \"%s\" (referenced by price)", ErrUnknownHardware, pd.Hardware)
		}

		loc, ok := locations[pd.Location]
		if !ok {
			return nil, fmt.Errorf("%w: \"%s\" (referenced by price)", ErrUnknownLocation, pd.Location)
		}

		amount, err := decimal.NewFromString(pd.Price)
		if err != nil {
			return nil, fmt.Errorf("%w: \"%s\": %v", ErrInvalidPrice, pd.Price, err)
		}

		if amount.IsNegative() {
			return nil, fmt.Errorf("%w: \"%s\" is negative", ErrInvalidPrice, pd.Price)
		}

		cloud.Prices = append(cloud.Prices, &Price{Image: img, Hardware: hw, Location: loc, Amount: amount})
	}

	return cloud, nil
}

func checkAcyclic(loc *Location, numLocations int) error {
	depth := 0
	for l := loc; l != nil; l = l.Parent {
		depth++
		if depth > numLocations {
			return fmt.Errorf("%w: location \"%s\"", ErrLocationCycle, loc.ID)
		}
	}

	return nil
}
