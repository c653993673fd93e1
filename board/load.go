package board

// Load 货物类型
type Load string

const (
	LoadCoal     Load = "coal"
	LoadSteel    Load = "steel"
	LoadTimber   Load = "timber"
	LoadWheat    Load = "wheat"
	LoadCattle   Load = "cattle"
	LoadOil      Load = "oil"
	LoadMachines Load = "machines"
	LoadWine     Load = "wine"
	LoadFish     Load = "fish"
	LoadTourists Load = "tourists"
)

// Demand is one line of a demand card: deliver Load to City for Payment.
type Demand struct {
	City    string `json:"city" yaml:"city"`
	Load    Load   `json:"load" yaml:"load"`
	Payment int    `json:"payment" yaml:"payment"`
}

// DemandCard is a hand card carrying up to three alternative demands; filling
// any one of them discards the card.
type DemandCard struct {
	ID      string   `json:"id" yaml:"id"`
	Demands []Demand `json:"demands" yaml:"demands"`
}
