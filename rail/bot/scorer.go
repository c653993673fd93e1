package bot

import (
	"fmt"
	"sort"
	"strings"

	"railway-lite/board"
)

// ScoreOptions weighs every feasible option against the skill/archetype pair
// and returns them sorted by descending score. The computation has no
// randomness: identical inputs always produce the same total order.
func ScoreOptions(options []Feasible, snap *WorldSnapshot, cfg BotConfig) []ScoredOption {
	if len(options) == 0 {
		return nil
	}
	scored := make([]ScoredOption, 0, len(options))
	for _, opt := range options {
		values := dimensionValues(opt, snap)
		total := 0.0
		var parts []string
		for _, dim := range Dimensions {
			raw, ok := values[dim]
			if !ok || raw == 0 {
				continue
			}
			w := Weight(cfg.Skill, cfg.Archetype, dim)
			total += w * raw
			parts = append(parts, fmt.Sprintf("%s=%.1f", dim, w*raw))
		}
		rationale := "no scoring dimensions apply"
		if len(parts) > 0 {
			rationale = strings.Join(parts, ", ")
		}
		scored = append(scored, ScoredOption{Feasible: opt, Score: total, Rationale: rationale})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Description < scored[j].Description
	})
	return scored
}

// dimensionValues computes the raw (unweighted) dimension readings an option
// touches. PassTurn touches none, pinning it to the minimum whenever any
// non-trivial alternative exists.
func dimensionValues(opt Feasible, snap *WorldSnapshot) map[Dimension]float64 {
	v := make(map[Dimension]float64)
	eventRisk := float64(len(snap.ActiveEvents()))

	switch p := opt.Params.(type) {
	case DeliverParams:
		v[DimIncomeNow] = float64(p.Payment)
		v[DimIncomePerDistance] = float64(p.Payment) / float64(1+p.MoveCost)
		v[DimVictoryProgress] = victoryShare(snap, p.Payment)
		v[DimMultiDelivery] = float64(countOtherDeliverable(snap, p.Load)) * 2
		v[DimLoadSynergy] = float64(countDemandsAtCity(snap, p.City)-1) * 3
		if eventRisk > 0 {
			v[DimRiskExposure] = -eventRisk
		}

	case PickupParams:
		totalDist := p.MoveCost
		if p.Deliver != nil {
			totalDist += p.Deliver.MoveCost
			v[DimIncomeNow] = float64(p.Deliver.Payment) * 0.8
			v[DimIncomePerDistance] = float64(p.Deliver.Payment) / float64(1+totalDist)
		}
		v[DimLoadScarcity] = scarcity(snap, p.Load)
		spare := snap.TrainType().Capacity() - len(snap.CarriedLoads()) - 1
		if spare > 0 {
			v[DimMultiDelivery] = float64(spare) * 2
		}
		if eventRisk > 0 {
			v[DimRiskExposure] = -eventRisk
		}

	case UpgradeParams:
		dCap := p.Target.Capacity() - snap.TrainType().Capacity()
		dSpeed := p.Target.Speed() - snap.TrainType().Speed()
		v[DimUpgradeROI] = float64(dCap*12+dSpeed*2) - float64(p.Cost)*0.3

	case BuildParams:
		v[DimNetworkExpansion] = float64(len(p.Segments)) * 2
		if len(snap.OwnSegments()) > 0 {
			v[DimBackboneAlignment] = 3
		}
		if p.Cost > 0 {
			v[DimRiskExposure] = -float64(p.Cost) * 0.2
		}
		if opt.Action == ActionBuildTowardMajorCity {
			if snap.ConnectedCityCount() < snap.Config().VictoryCities {
				v[DimVictoryProgress] = 10
			} else {
				v[DimVictoryProgress] = 2
			}
			v[DimBackboneAlignment] = 5
			v[DimCityProximity] = 10 / float64(1+p.Cost)
			v[DimBlocking] = blockingPressure(snap)
		}

	case PassParams:
		// nothing
	}
	return v
}

func victoryShare(snap *WorldSnapshot, payment int) float64 {
	gap := snap.Config().VictoryMoney - snap.Money()
	if gap <= 0 {
		return 10
	}
	share := float64(payment) / float64(gap) * 10
	if share > 10 {
		share = 10
	}
	return share
}

func countOtherDeliverable(snap *WorldSnapshot, except board.Load) int {
	n := 0
	for _, l := range snap.CarriedLoads() {
		if l == except {
			continue
		}
		for _, card := range snap.Hand() {
			for _, d := range card.Demands {
				if d.Load == l {
					n++
				}
			}
		}
	}
	return n
}

func countDemandsAtCity(snap *WorldSnapshot, city string) int {
	n := 0
	for _, card := range snap.Hand() {
		for _, d := range card.Demands {
			if d.City == city {
				n++
			}
		}
	}
	return n
}

// scarcity grows as fewer cities stock the load.
func scarcity(snap *WorldSnapshot, load board.Load) float64 {
	stocking := 0
	for _, loads := range snap.CityLoads() {
		for _, l := range loads {
			if l == load {
				stocking++
			}
		}
	}
	if stocking == 0 {
		return 0
	}
	return 5 / float64(stocking)
}

// blockingPressure rises when opponents are ahead on connected cities.
func blockingPressure(snap *WorldSnapshot) float64 {
	ahead := 0
	for _, o := range snap.Opponents() {
		if o.ConnectedCities > snap.ConnectedCityCount() {
			ahead++
		}
	}
	return float64(ahead) * 1.5
}
