package board

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MajorCityGroup is a named major city: one center milepost plus outposts,
// all mutually connected once any one of them is reached.
type MajorCityGroup struct {
	Name     string      `json:"name" yaml:"name"`
	Center   GridPoint   `json:"center" yaml:"center"`
	Outposts []GridPoint `json:"outposts" yaml:"outposts"`
}

// Points returns the center plus all outposts.
func (g MajorCityGroup) Points() []GridPoint {
	out := make([]GridPoint, 0, len(g.Outposts)+1)
	out = append(out, g.Center)
	out = append(out, g.Outposts...)
	return out
}

// FerryEdge joins two mileposts across water.
type FerryEdge struct {
	A    GridPoint `json:"a" yaml:"a"`
	B    GridPoint `json:"b" yaml:"b"`
	Cost int       `json:"cost" yaml:"cost"`
}

// Catalog is the fixed board metadata loaded once at process start: major
// city groups and ferry crossings. It is never mutated after loading.
type Catalog struct {
	MajorCities []MajorCityGroup `json:"majorCities" yaml:"majorCities"`
	Ferries     []FerryEdge      `json:"ferries" yaml:"ferries"`

	byPoint map[GridPoint]string
}

// finish builds the point index. Called once after construction.
func (c *Catalog) finish() {
	c.byPoint = make(map[GridPoint]string)
	for _, g := range c.MajorCities {
		for _, p := range g.Points() {
			c.byPoint[p] = g.Name
		}
	}
}

// MajorCityAt returns the major city name owning a point, or "".
func (c *Catalog) MajorCityAt(p GridPoint) string {
	return c.byPoint[p]
}

// Group returns the named major city group, or nil.
func (c *Catalog) Group(name string) *MajorCityGroup {
	for i := range c.MajorCities {
		if c.MajorCities[i].Name == name {
			return &c.MajorCities[i]
		}
	}
	return nil
}

// LoadCatalog reads a catalog definition from a YAML file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog yaml: %w", err)
	}
	if len(c.MajorCities) == 0 {
		return nil, fmt.Errorf("catalog defines no major cities")
	}
	c.finish()
	return &c, nil
}
