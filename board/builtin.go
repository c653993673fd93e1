package board

import "fmt"

// The builtin board is a small deterministic map used by botsim, tests, and
// local games that do not load an external catalog file.

const (
	builtinRows = 12
	builtinCols = 16
)

var builtinMajorCities = []MajorCityGroup{
	majorCityAt("Aurora", GridPoint{1, 2}),
	majorCityAt("Blackwater", GridPoint{1, 12}),
	majorCityAt("Calder", GridPoint{4, 7}),
	majorCityAt("Dunmore", GridPoint{6, 2}),
	majorCityAt("Eastport", GridPoint{6, 13}),
	majorCityAt("Foxhaven", GridPoint{9, 5}),
	majorCityAt("Grayling", GridPoint{9, 10}),
	majorCityAt("Harlow", GridPoint{10, 14}),
}

var builtinSmallCities = map[GridPoint]string{
	{3, 3}:  "Millbrook",
	{3, 10}: "Stonefield",
	{7, 7}:  "Redford",
	{8, 12}: "Saltcreek",
	{10, 1}: "Westervale",
}

// BuiltinCityStock is the demo city -> available load types seeding.
var BuiltinCityStock = map[string][]Load{
	"Aurora":     {LoadMachines, LoadSteel},
	"Blackwater": {LoadCoal, LoadOil},
	"Calder":     {LoadWheat},
	"Dunmore":    {LoadCattle, LoadTimber},
	"Eastport":   {LoadFish, LoadWine},
	"Foxhaven":   {LoadTimber},
	"Grayling":   {LoadSteel, LoadCoal},
	"Harlow":     {LoadTourists},
	"Millbrook":  {LoadWheat},
	"Stonefield": {LoadCoal},
	"Redford":    {LoadCattle},
	"Saltcreek":  {LoadFish},
	"Westervale": {LoadTimber, LoadWine},
}

func majorCityAt(name string, center GridPoint) MajorCityGroup {
	return MajorCityGroup{
		Name:     name,
		Center:   center,
		Outposts: center.Neighbors(),
	}
}

// BuiltinCatalog returns the demo catalog. The result is freshly built each
// call; callers treat it as immutable once wired in.
func BuiltinCatalog() *Catalog {
	c := &Catalog{
		MajorCities: builtinMajorCities,
		Ferries: []FerryEdge{
			{A: GridPoint{5, 9}, B: GridPoint{7, 10}, Cost: 4},
		},
	}
	c.finish()
	return c
}

// BuiltinTopology generates the demo board: a clear grid with deterministic
// terrain bands, water under the ferry, and all catalog cities placed.
func BuiltinTopology(c *Catalog) Topology {
	topo := make(Topology, builtinRows*builtinCols)
	for r := 0; r < builtinRows; r++ {
		for col := 0; col < builtinCols; col++ {
			p := GridPoint{r, col}
			topo[p] = Milepost{Point: p, Terrain: builtinTerrain(p)}
		}
	}
	for p, name := range builtinSmallCities {
		topo[p] = Milepost{Point: p, Terrain: TerrainCity, City: name}
	}
	for _, g := range c.MajorCities {
		for _, p := range g.Points() {
			topo[p] = Milepost{Point: p, Terrain: TerrainMajorCity, City: g.Name}
		}
	}
	return topo
}

func builtinTerrain(p GridPoint) Terrain {
	// A mountain ridge through the middle rows and water around the ferry gap.
	if p.Row == 6 && p.Col >= 8 && p.Col <= 11 {
		return TerrainWater
	}
	if (p.Row == 4 || p.Row == 5) && p.Col%3 == 0 {
		return TerrainMountain
	}
	if p.Row >= 8 && p.Col%5 == 2 {
		return TerrainForest
	}
	return TerrainClear
}

// BuiltinDemandDeck returns a deterministic demo demand deck.
func BuiltinDemandDeck() []DemandCard {
	type line struct {
		city string
		load Load
		pay  int
	}
	spec := [][3]line{
		{{"Aurora", LoadCoal, 22}, {"Eastport", LoadCattle, 18}, {"Foxhaven", LoadWheat, 12}},
		{{"Blackwater", LoadTimber, 16}, {"Dunmore", LoadFish, 24}, {"Grayling", LoadMachines, 28}},
		{{"Calder", LoadOil, 20}, {"Harlow", LoadSteel, 17}, {"Aurora", LoadWine, 19}},
		{{"Eastport", LoadCoal, 15}, {"Westervale", LoadMachines, 26}, {"Dunmore", LoadWheat, 11}},
		{{"Grayling", LoadTourists, 30}, {"Millbrook", LoadFish, 21}, {"Blackwater", LoadCattle, 14}},
		{{"Foxhaven", LoadSteel, 18}, {"Stonefield", LoadWine, 23}, {"Redford", LoadCoal, 13}},
	}
	deck := make([]DemandCard, 0, len(spec))
	for i, card := range spec {
		dc := DemandCard{ID: fmt.Sprintf("demand_%d", i+1)}
		for _, l := range card {
			dc.Demands = append(dc.Demands, Demand{City: l.city, Load: l.load, Payment: l.pay})
		}
		deck = append(deck, dc)
	}
	return deck
}
