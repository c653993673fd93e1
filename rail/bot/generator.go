package bot

import (
	"container/heap"
	"fmt"
	"sort"

	"railway-lite/board"
	"railway-lite/rail"
)

// GenerateResult splits candidates into executable options and the ones
// considered but ruled out.
type GenerateResult struct {
	Feasible   []Feasible
	Infeasible []Infeasible
}

// demandRef ties one demand line back to its hand card.
type demandRef struct {
	cardID string
	demand board.Demand
}

// GenerateOptions enumerates every candidate action for the snapshot. The
// result always contains at least the feasible PassTurn. During the initial
// build phase only track construction and passing are considered.
func GenerateOptions(snap *WorldSnapshot) GenerateResult {
	var res GenerateResult
	graph := snap.Graph()

	if snap.Phase() != PhaseInitialBuild {
		generateDeliveries(snap, graph, &res)
		generatePickups(snap, graph, &res)
		generateUpgrades(snap, &res)
	}
	generateBuilds(snap, graph, &res)

	res.Feasible = append(res.Feasible, Feasible{
		Action:      ActionPassTurn,
		Description: "Pass the turn",
		Params:      PassParams{},
	})
	return res
}

func outstandingDemands(snap *WorldSnapshot) []demandRef {
	var refs []demandRef
	for _, card := range snap.Hand() {
		for _, d := range card.Demands {
			refs = append(refs, demandRef{cardID: card.ID, demand: d})
		}
	}
	return refs
}

func generateDeliveries(snap *WorldSnapshot, graph *Graph, res *GenerateResult) {
	pos := snap.Position()
	for _, load := range snap.CarriedLoads() {
		for _, ref := range outstandingDemands(snap) {
			if ref.demand.Load != load {
				continue
			}
			desc := fmt.Sprintf("Deliver %s to %s for %d", load, ref.demand.City, ref.demand.Payment)
			if pos == nil {
				res.Infeasible = append(res.Infeasible, Infeasible{
					Action:      ActionDeliverLoad,
					Description: desc,
					Reason:      "train has not been placed on the board",
				})
				continue
			}
			path, cost, ok := graph.ReachableWithinBudget(*pos, ref.demand.City, snap.MovementRemaining())
			if !ok {
				res.Infeasible = append(res.Infeasible, Infeasible{
					Action:      ActionDeliverLoad,
					Description: desc,
					Reason: fmt.Sprintf("%s not reachable within %d movement",
						ref.demand.City, snap.MovementRemaining()),
				})
				continue
			}
			res.Feasible = append(res.Feasible, Feasible{
				Action:      ActionDeliverLoad,
				Description: desc,
				Params: DeliverParams{
					Load:         load,
					City:         ref.demand.City,
					DemandCardID: ref.cardID,
					Payment:      ref.demand.Payment,
					Path:         path,
					MoveCost:     cost,
				},
			})
		}
	}
}

func generatePickups(snap *WorldSnapshot, graph *Graph, res *GenerateResult) {
	carriedLoads := snap.CarriedLoads()
	// At capacity: no pickup options at all, feasible or not.
	if len(carriedLoads) >= snap.TrainType().Capacity() {
		return
	}
	carried := make(map[board.Load]bool, len(carriedLoads))
	for _, l := range carriedLoads {
		carried[l] = true
	}
	pos := snap.Position()

	type source struct {
		city        string
		load        board.Load
		fromDropped bool
	}
	var sources []source
	for city, loads := range snap.CityLoads() {
		for _, l := range loads {
			sources = append(sources, source{city: city, load: l})
		}
	}
	for city, drops := range snap.DroppedByCity() {
		for _, d := range drops {
			sources = append(sources, source{city: city, load: d.Load, fromDropped: true})
		}
	}
	sort.Slice(sources, func(i, j int) bool {
		if sources[i].city != sources[j].city {
			return sources[i].city < sources[j].city
		}
		return sources[i].load < sources[j].load
	})

	emitted := make(map[string]bool)
	for _, src := range sources {
		if carried[src.load] {
			continue // already carrying this resource: no option emitted
		}
		for _, ref := range outstandingDemands(snap) {
			if ref.demand.Load != src.load {
				continue
			}
			key := fmt.Sprintf("%s|%s|%s", src.city, src.load, ref.cardID)
			if emitted[key] {
				continue
			}
			emitted[key] = true
			desc := fmt.Sprintf("Pick up %s at %s and deliver to %s", src.load, src.city, ref.demand.City)
			if pos == nil {
				res.Infeasible = append(res.Infeasible, Infeasible{
					Action:      ActionPickupAndDeliver,
					Description: desc,
					Reason:      "train has not been placed on the board",
				})
				continue
			}
			path, cost, ok := graph.ReachableWithinBudget(*pos, src.city, snap.MovementRemaining())
			if !ok {
				res.Infeasible = append(res.Infeasible, Infeasible{
					Action:      ActionPickupAndDeliver,
					Description: desc,
					Reason: fmt.Sprintf("%s not reachable within %d movement",
						src.city, snap.MovementRemaining()),
				})
				continue
			}
			params := PickupParams{
				Load:        src.load,
				PickupCity:  src.city,
				FromDropped: src.fromDropped,
				Path:        path,
				MoveCost:    cost,
			}
			// Attach the delivery leg when it still fits the movement budget.
			if len(path) > 0 {
				from := path[len(path)-1]
				dPath, dCost, dOK := graph.ReachableWithinBudget(from, ref.demand.City, snap.MovementRemaining()-cost)
				if dOK {
					params.Deliver = &DeliverParams{
						Load:         src.load,
						City:         ref.demand.City,
						DemandCardID: ref.cardID,
						Payment:      ref.demand.Payment,
						Path:         dPath,
						MoveCost:     dCost,
					}
				}
			}
			res.Feasible = append(res.Feasible, Feasible{
				Action:      ActionPickupAndDeliver,
				Description: desc,
				Params:      params,
			})
		}
	}
}

func generateUpgrades(snap *WorldSnapshot, res *GenerateResult) {
	budgetLeft := snap.Config().BuildBudgetPerTurn - snap.TurnBuildSpend()
	for _, up := range snap.TrainType().Upgrades() {
		desc := fmt.Sprintf("%s train to %s", up.Kind, up.To)
		if up.Cost <= snap.Money() && up.Cost <= budgetLeft {
			res.Feasible = append(res.Feasible, Feasible{
				Action:      ActionUpgradeTrain,
				Description: desc,
				Params:      UpgradeParams{Kind: up.Kind, Target: up.To, Cost: up.Cost},
			})
		} else {
			res.Infeasible = append(res.Infeasible, Infeasible{
				Action:      ActionUpgradeTrain,
				Description: desc,
				Reason:      "insufficient funds",
			})
		}
	}
}

func generateBuilds(snap *WorldSnapshot, graph *Graph, res *GenerateResult) {
	budgetLeft := snap.Config().BuildBudgetPerTurn - snap.TurnBuildSpend()
	if budgetLeft <= 0 || snap.Money() <= 0 {
		return // budget or funds exhausted: no build options at all
	}
	limit := budgetLeft
	if snap.Money() < limit {
		limit = snap.Money()
	}

	_, connected := graph.BestComponent()
	connectedSet := make(map[string]bool, len(connected))
	for _, name := range connected {
		connectedSet[name] = true
	}

	// Track extensions toward unmet-demand cities.
	seen := make(map[string]bool)
	for _, ref := range outstandingDemands(snap) {
		city := ref.demand.City
		if seen[city] {
			continue
		}
		seen[city] = true
		if connectedSet[city] {
			continue
		}
		segments, cost, ok := proposeTrack(snap, graph, city, limit)
		if !ok {
			continue
		}
		res.Feasible = append(res.Feasible, Feasible{
			Action:      ActionBuildTrack,
			Description: fmt.Sprintf("Build track toward %s", city),
			Params:      BuildParams{Segments: segments, Cost: cost},
		})
	}

	// Extensions toward unconnected major cities; never a connected one.
	if snap.Catalog() == nil {
		return
	}
	for _, group := range snap.Catalog().MajorCities {
		if connectedSet[group.Name] {
			continue
		}
		segments, cost, ok := proposeTrack(snap, graph, group.Name, limit)
		if !ok {
			continue
		}
		res.Feasible = append(res.Feasible, Feasible{
			Action:      ActionBuildTowardMajorCity,
			Description: fmt.Sprintf("Build toward major city %s", group.Name),
			Params:      BuildParams{Segments: segments, Cost: cost, TargetCity: group.Name},
		})
	}
}

// proposeTrack finds the cheapest buildable path from the bot's network (or,
// with no track yet, from any major city milepost) toward the target city and
// truncates it to the affordable prefix.
func proposeTrack(snap *WorldSnapshot, graph *Graph, targetCity string, limit int) ([]rail.TrackSegment, int, bool) {
	starts := graph.trackEnds
	if len(starts) == 0 {
		if snap.Catalog() == nil {
			return nil, 0, false
		}
		// No track yet: root the search at every major city except the
		// target itself, or the search would end where it starts.
		for _, g := range snap.Catalog().MajorCities {
			if g.Name == targetCity {
				continue
			}
			starts = append(starts, g.Points()...)
		}
	}
	path, ok := cheapestBuildPath(snap, starts, targetCity)
	if !ok || len(path) < 2 {
		return nil, 0, false
	}

	owned := make(map[[2]board.GridPoint]bool)
	for _, seg := range snap.OwnSegments() {
		owned[[2]board.GridPoint{seg.From, seg.To}] = true
		owned[[2]board.GridPoint{seg.To, seg.From}] = true
	}

	var segments []rail.TrackSegment
	total := 0
	for i := 1; i < len(path); i++ {
		from, to := path[i-1], path[i]
		if owned[[2]board.GridPoint{from, to}] {
			continue
		}
		cost := 1
		if mp, found := snap.MilepostAt(to); found {
			cost = mp.Terrain.EntryCost()
		}
		if total+cost > limit {
			break
		}
		segments = append(segments, rail.TrackSegment{From: from, To: to, Cost: cost})
		total += cost
	}
	if len(segments) == 0 {
		return nil, 0, false
	}
	return segments, total, true
}

// cheapestBuildPath runs a multi-source shortest-cost search over the board
// grid (buildable terrain only) to any milepost of the target city.
func cheapestBuildPath(snap *WorldSnapshot, starts []board.GridPoint, targetCity string) ([]board.GridPoint, bool) {
	dist := make(map[board.GridPoint]int)
	prev := make(map[board.GridPoint]board.GridPoint)
	origin := make(map[board.GridPoint]board.GridPoint)
	pq := &pointHeap{}
	for _, s := range starts {
		if _, ok := snap.MilepostAt(s); !ok {
			continue
		}
		if _, seen := dist[s]; seen {
			continue
		}
		dist[s] = 0
		origin[s] = s
		*pq = append(*pq, pointCost{point: s, cost: 0})
	}
	heap.Init(pq)

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(pointCost)
		if cur.cost > dist[cur.point] {
			continue
		}
		if mp, ok := snap.MilepostAt(cur.point); ok && cityMatches(snap, mp, targetCity) {
			return rebuildPath(prev, origin[cur.point], cur.point), true
		}
		for _, n := range cur.point.Neighbors() {
			mp, ok := snap.MilepostAt(n)
			if !ok || !mp.Terrain.Buildable() {
				continue
			}
			next := cur.cost + mp.Terrain.EntryCost()
			if d, seen := dist[n]; !seen || next < d {
				dist[n] = next
				prev[n] = cur.point
				origin[n] = origin[cur.point]
				heap.Push(pq, pointCost{point: n, cost: next})
			}
		}
	}
	return nil, false
}

func cityMatches(snap *WorldSnapshot, mp board.Milepost, city string) bool {
	if mp.City == city {
		return true
	}
	return snap.Catalog() != nil && snap.Catalog().MajorCityAt(mp.Point) == city
}
