package board

// TrainType 火车类型
type TrainType byte

const (
	TrainFreight TrainType = iota
	TrainFastFreight
	TrainHeavyFreight
	TrainSuperFreight
)

var TrainTypeDictionary = map[TrainType]string{
	TrainFreight:      "freight",
	TrainFastFreight:  "fastFreight",
	TrainHeavyFreight: "heavyFreight",
	TrainSuperFreight: "superFreight",
}

func (t TrainType) String() string {
	if s, ok := TrainTypeDictionary[t]; ok {
		return s
	}
	return "unknown"
}

// Capacity is the number of loads the train can carry at once.
func (t TrainType) Capacity() int {
	switch t {
	case TrainHeavyFreight, TrainSuperFreight:
		return 3
	default:
		return 2
	}
}

// Speed is the movement allowance per turn in mileposts.
func (t TrainType) Speed() int {
	switch t {
	case TrainFastFreight, TrainSuperFreight:
		return 12
	default:
		return 9
	}
}

// UpgradeKind distinguishes a straight upgrade from a same-price crossgrade.
type UpgradeKind string

const (
	UpgradeKindUpgrade    UpgradeKind = "upgrade"
	UpgradeKindCrossgrade UpgradeKind = "crossgrade"
)

// TrainUpgrade is one edge of the fixed train transition table.
type TrainUpgrade struct {
	Kind UpgradeKind
	To   TrainType
	Cost int
}

const trainUpgradeCost = 20

var trainTransitions = map[TrainType][]TrainUpgrade{
	TrainFreight: {
		{Kind: UpgradeKindUpgrade, To: TrainFastFreight, Cost: trainUpgradeCost},
		{Kind: UpgradeKindUpgrade, To: TrainHeavyFreight, Cost: trainUpgradeCost},
	},
	TrainFastFreight: {
		{Kind: UpgradeKindUpgrade, To: TrainSuperFreight, Cost: trainUpgradeCost},
		{Kind: UpgradeKindCrossgrade, To: TrainHeavyFreight, Cost: trainUpgradeCost},
	},
	TrainHeavyFreight: {
		{Kind: UpgradeKindUpgrade, To: TrainSuperFreight, Cost: trainUpgradeCost},
		{Kind: UpgradeKindCrossgrade, To: TrainFastFreight, Cost: trainUpgradeCost},
	},
	// TrainSuperFreight is terminal: no transitions.
}

// Upgrades returns the valid transition edges from a train type. The result
// is a copy; the table itself never changes after init.
func (t TrainType) Upgrades() []TrainUpgrade {
	edges := trainTransitions[t]
	out := make([]TrainUpgrade, len(edges))
	copy(out, edges)
	return out
}
