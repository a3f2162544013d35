/*
Package geo holds the known-location catalog and the location rules built on it:
local place search, partial address matching, city-name fallback coordinates,
nearest-city lookup and device location acquisition with a fixed fallback.
*/
package geo

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed locations.yaml
var embeddedLocations []byte

// Coordinates is a WGS84 point in degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether c lies within latitude and longitude bounds.
func (c Coordinates) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// Place is a catalog entry. RadiusKm is set for city centers only.
type Place struct {
	Name     string  `yaml:"name" json:"name"`
	Full     string  `yaml:"full" json:"full"`
	Kind     string  `yaml:"type" json:"type"`
	Lat      float64 `yaml:"lat" json:"lat"`
	Lng      float64 `yaml:"lng" json:"lng"`
	RadiusKm float64 `yaml:"radius_km,omitempty" json:"radius_km,omitempty"`

	// Aliases are alternative lowercase city names, used by CityCoordinates.
	Aliases []string `yaml:"aliases,omitempty" json:"-"`
}

// Coordinates returns the position of p.
func (p Place) Coordinates() Coordinates {
	return Coordinates{Lat: p.Lat, Lng: p.Lng}
}

// IsCity reports whether p is a city center usable for nearest-city lookup.
func (p Place) IsCity() bool {
	return p.RadiusKm > 0
}

// Secondary returns the address part after the place name, as shown under it in suggestions.
func (p Place) Secondary() string {
	return strings.Replace(p.Full, p.Name+", ", "", 1)
}

// Catalog is an ordered, read-only list of known places.
type Catalog struct {
	places []Place
	cities []Place
}

type catalogFile struct {
	Places []Place `yaml:"places"`
}

// ParseCatalog decodes a YAML catalog document.
func ParseCatalog(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	c := &Catalog{places: make([]Place, 0, len(f.Places))}
	for i, p := range f.Places {
		if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.Full) == "" {
			return nil, fmt.Errorf("catalog entry %d: name and full are required", i)
		}
		if !p.Coordinates().Valid() {
			return nil, fmt.Errorf("catalog entry %q: coordinates out of range", p.Name)
		}
		if p.RadiusKm < 0 {
			return nil, fmt.Errorf("catalog entry %q: negative radius", p.Name)
		}

		c.places = append(c.places, p)
		if p.IsCity() {
			c.cities = append(c.cities, p)
		}
	}

	return c, nil
}

var defaultCatalog = sync.OnceValue(func() *Catalog {
	c, err := ParseCatalog(embeddedLocations)
	if err != nil {
		panic(err)
	}
	return c
})

// DefaultCatalog returns the catalog embedded in the binary.
func DefaultCatalog() *Catalog {
	return defaultCatalog()
}

// Places returns a copy of all catalog entries in document order.
func (c *Catalog) Places() []Place {
	out := make([]Place, len(c.places))
	copy(out, c.places)
	return out
}

// Cities returns the entries that carry a radius.
func (c *Catalog) Cities() []Place {
	out := make([]Place, len(c.cities))
	copy(out, c.cities)
	return out
}

// Search returns up to limit places whose name or full address contains q,
// case-insensitively, in catalog order.
func (c *Catalog) Search(q string, limit int) []Place {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" || limit <= 0 {
		return nil
	}

	out := make([]Place, 0, limit)
	for _, p := range c.places {
		if strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.Full), q) {
			out = append(out, p)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}

// Match returns the first place whose name appears in address, or whose full
// address contains address. This is the first step of forward geocoding.
func (c *Catalog) Match(address string) (Place, bool) {
	lower := strings.ToLower(strings.TrimSpace(address))
	if lower == "" {
		return Place{}, false
	}

	for _, p := range c.places {
		if strings.Contains(lower, strings.ToLower(p.Name)) || strings.Contains(strings.ToLower(p.Full), lower) {
			return p, true
		}
	}
	return Place{}, false
}

// CityCoordinates returns the first city whose name or one of its aliases
// appears in address.
func (c *Catalog) CityCoordinates(address string) (Place, bool) {
	lower := strings.ToLower(address)
	for _, city := range c.cities {
		if strings.Contains(lower, strings.ToLower(city.Name)) {
			return city, true
		}
		for _, alias := range city.Aliases {
			if strings.Contains(lower, alias) {
				return city, true
			}
		}
	}
	return Place{}, false
}
