package board

// Terrain 地形类型
type Terrain byte

const (
	TerrainClear Terrain = iota
	TerrainForest
	TerrainMountain
	TerrainAlpine
	TerrainCity
	TerrainMajorCity
	TerrainWater
)

var TerrainDictionary = map[Terrain]string{
	TerrainClear:     "clear",
	TerrainForest:    "forest",
	TerrainMountain:  "mountain",
	TerrainAlpine:    "alpine",
	TerrainCity:      "city",
	TerrainMajorCity: "majorCity",
	TerrainWater:     "water",
}

func (t Terrain) String() string {
	if s, ok := TerrainDictionary[t]; ok {
		return s
	}
	return "unknown"
}

// EntryCost is the cost to lay track into (or move pathfinding through) a
// milepost of this terrain. Water mileposts take no track at all.
func (t Terrain) EntryCost() int {
	switch t {
	case TerrainClear:
		return 1
	case TerrainForest:
		return 2
	case TerrainMountain:
		return 5
	case TerrainAlpine:
		return 5
	case TerrainCity:
		return 3
	case TerrainMajorCity:
		return 5
	default:
		return 0
	}
}

// Buildable reports whether track may terminate on this terrain.
func (t Terrain) Buildable() bool {
	return t != TerrainWater
}

// Milepost is one addressable board coordinate with its terrain and, when it
// belongs to a city, the city name.
type Milepost struct {
	Point   GridPoint `json:"point" yaml:"point"`
	Terrain Terrain   `json:"terrain" yaml:"terrain"`
	City    string    `json:"city,omitempty" yaml:"city,omitempty"`
}

// Topology is the full board keyed by grid point. It is built once at startup
// and treated as read-only everywhere downstream.
type Topology map[GridPoint]Milepost

// CityPoints returns every milepost belonging to the named city.
func (t Topology) CityPoints(city string) []GridPoint {
	var out []GridPoint
	for p, mp := range t {
		if mp.City == city {
			out = append(out, p)
		}
	}
	return out
}
