package bot

import (
	"fmt"

	"railway-lite/board"
)

// ValidatePlan re-checks a plan's legality against the snapshot in one pass,
// accumulating every violation instead of stopping at the first. Running
// totals carry across the ordered actions: money spent, build budget used
// (on top of spend already committed this turn), carried load count, and
// movement. Reachability considers track implied by earlier builds in the
// same plan.
func ValidatePlan(plan TurnPlan, snap *WorldSnapshot) ValidationResult {
	var violations []string

	cfg := snap.Config()
	moneyLeft := snap.Money()
	budgetLeft := cfg.BuildBudgetPerTurn - snap.TurnBuildSpend()
	movementLeft := snap.MovementRemaining()

	carried := make(map[board.Load]int)
	carriedCount := 0
	for _, l := range snap.CarriedLoads() {
		carried[l]++
		carriedCount++
	}
	handCards := make(map[string]bool)
	for _, c := range snap.Hand() {
		handCards[c.ID] = true
	}

	segments := snap.OwnSegments()
	graph := NewGraph(segments, snap.topo, snap.catalog)
	pos := snap.Position()

	for i, action := range plan.Actions {
		tag := fmt.Sprintf("action %d (%s)", i+1, action.Action)
		switch p := action.Params.(type) {
		case DeliverParams:
			if carried[p.Load] == 0 {
				violations = append(violations, fmt.Sprintf("%s: not carrying %s", tag, p.Load))
			}
			if !handCards[p.DemandCardID] {
				violations = append(violations, fmt.Sprintf("%s: demand card %s not in hand", tag, p.DemandCardID))
			}
			if pos == nil {
				violations = append(violations, fmt.Sprintf("%s: train has no position", tag))
			} else if path, cost, ok := graph.ReachableWithinBudget(*pos, p.City, movementLeft); !ok {
				violations = append(violations, fmt.Sprintf("%s: %s not reachable within %d movement", tag, p.City, movementLeft))
			} else {
				movementLeft -= cost
				if len(path) > 0 {
					end := path[len(path)-1]
					pos = &end
				}
			}
			if carried[p.Load] > 0 {
				carried[p.Load]--
				carriedCount--
			}
			delete(handCards, p.DemandCardID)

		case PickupParams:
			// Capacity must hold at the point this executes within the plan.
			if carriedCount >= snap.TrainType().Capacity() {
				violations = append(violations, fmt.Sprintf("%s: train at capacity (%d)", tag, snap.TrainType().Capacity()))
			}
			if p.Deliver != nil {
				if !handCards[p.Deliver.DemandCardID] {
					violations = append(violations, fmt.Sprintf("%s: demand card %s not in hand", tag, p.Deliver.DemandCardID))
				}
			} else if !demandInHand(snap, handCards, p.Load) {
				// The delivery leg may be deferred to a later turn, but the
				// pickup still needs a demand the load could fill.
				violations = append(violations, fmt.Sprintf("%s: no demand in hand for %s", tag, p.Load))
			}
			if pos == nil {
				violations = append(violations, fmt.Sprintf("%s: train has no position", tag))
			} else if path, cost, ok := graph.ReachableWithinBudget(*pos, p.PickupCity, movementLeft); !ok {
				violations = append(violations, fmt.Sprintf("%s: %s not reachable within %d movement", tag, p.PickupCity, movementLeft))
			} else {
				movementLeft -= cost
				if len(path) > 0 {
					end := path[len(path)-1]
					pos = &end
				}
				if p.Deliver != nil {
					if _, dCost, dOK := graph.ReachableWithinBudget(*pos, p.Deliver.City, movementLeft); !dOK {
						violations = append(violations, fmt.Sprintf("%s: %s not reachable within %d movement", tag, p.Deliver.City, movementLeft))
					} else {
						movementLeft -= dCost
					}
				}
			}
			carried[p.Load]++
			carriedCount++
			if p.Deliver != nil {
				carried[p.Load]--
				carriedCount--
				delete(handCards, p.Deliver.DemandCardID)
			}

		case BuildParams:
			if len(p.Segments) == 0 {
				violations = append(violations, fmt.Sprintf("%s: no segments to build", tag))
			}
			if action.Action == ActionBuildTowardMajorCity && p.TargetCity == "" {
				violations = append(violations, fmt.Sprintf("%s: no target city named", tag))
			}
			if p.Cost > budgetLeft {
				violations = append(violations, fmt.Sprintf("%s: cost %d exceeds remaining turn budget %d", tag, p.Cost, budgetLeft))
			}
			if p.Cost > moneyLeft {
				violations = append(violations, fmt.Sprintf("%s: cost %d exceeds remaining funds %d", tag, p.Cost, moneyLeft))
			}
			budgetLeft -= p.Cost
			moneyLeft -= p.Cost
			// Later reachability checks see the track this build implies.
			segments = append(segments, p.Segments...)
			graph = NewGraph(segments, snap.topo, snap.catalog)

		case UpgradeParams:
			if !validTransition(snap.TrainType(), p) {
				violations = append(violations, fmt.Sprintf("%s: no transition from %s to %s", tag, snap.TrainType(), p.Target))
			}
			if p.Cost > budgetLeft {
				violations = append(violations, fmt.Sprintf("%s: cost %d exceeds remaining turn budget %d", tag, p.Cost, budgetLeft))
			}
			if p.Cost > moneyLeft {
				violations = append(violations, fmt.Sprintf("%s: cost %d exceeds remaining funds %d", tag, p.Cost, moneyLeft))
			}
			budgetLeft -= p.Cost
			moneyLeft -= p.Cost

		case PassParams:
			// always valid

		default:
			violations = append(violations, fmt.Sprintf("%s: unknown action parameters", tag))
		}
	}

	return ValidationResult{Valid: len(violations) == 0, Violations: violations}
}

func demandInHand(snap *WorldSnapshot, handCards map[string]bool, load board.Load) bool {
	for _, card := range snap.Hand() {
		if !handCards[card.ID] {
			continue
		}
		for _, d := range card.Demands {
			if d.Load == load {
				return true
			}
		}
	}
	return false
}

func validTransition(from board.TrainType, p UpgradeParams) bool {
	if p.Target == from {
		return false
	}
	for _, up := range from.Upgrades() {
		if up.To == p.Target && up.Kind == p.Kind {
			return true
		}
	}
	return false
}
