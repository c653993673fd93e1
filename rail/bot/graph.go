package bot

import (
	"container/heap"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"

	"railway-lite/board"
	"railway-lite/rail"
)

const pathCacheSize = 256

// Graph is an undirected reachability network over board mileposts, built
// from a set of track segments plus the implicit edges every network gets
// for free: major-city internal connections and ferry crossings.
type Graph struct {
	adj       map[board.GridPoint][]graphEdge
	trackEnds []board.GridPoint
	topo      board.Topology
	catalog   *board.Catalog

	paths *lru.Cache[pathKey, pathResult]
}

type graphEdge struct {
	to   board.GridPoint
	cost int
}

type pathKey struct {
	start  board.GridPoint
	city   string
	budget int
}

type pathResult struct {
	path []board.GridPoint
	cost int
	ok   bool
}

// NewGraph builds the network. Edge weights are the terrain entry cost of the
// destination milepost (1 when the milepost is off the known topology).
// City-internal edges are free; a ferry edge joins its two endpoints only when
// both already appear in the graph.
func NewGraph(segments []rail.TrackSegment, topo board.Topology, catalog *board.Catalog) *Graph {
	g := &Graph{
		adj:     make(map[board.GridPoint][]graphEdge),
		topo:    topo,
		catalog: catalog,
	}
	g.paths, _ = lru.New[pathKey, pathResult](pathCacheSize)

	seen := make(map[board.GridPoint]bool)
	for _, seg := range segments {
		g.addEdge(seg.From, seg.To)
		for _, p := range []board.GridPoint{seg.From, seg.To} {
			if !seen[p] {
				seen[p] = true
				g.trackEnds = append(g.trackEnds, p)
			}
		}
	}
	sort.Slice(g.trackEnds, func(i, j int) bool {
		return lessPoint(g.trackEnds[i], g.trackEnds[j])
	})

	if catalog != nil {
		// Every milepost of a major city reaches every other for free.
		for _, group := range catalog.MajorCities {
			pts := group.Points()
			for i := 0; i < len(pts); i++ {
				for j := i + 1; j < len(pts); j++ {
					g.addFreeEdge(pts[i], pts[j])
				}
			}
		}
		for _, f := range catalog.Ferries {
			if len(g.adj[f.A]) > 0 && len(g.adj[f.B]) > 0 {
				g.addEdge(f.A, f.B)
			}
		}
	}
	return g
}

func (g *Graph) entryCost(p board.GridPoint) int {
	if mp, ok := g.topo[p]; ok {
		if c := mp.Terrain.EntryCost(); c > 0 {
			return c
		}
	}
	return 1
}

func (g *Graph) addEdge(a, b board.GridPoint) {
	g.adj[a] = append(g.adj[a], graphEdge{to: b, cost: g.entryCost(b)})
	g.adj[b] = append(g.adj[b], graphEdge{to: a, cost: g.entryCost(a)})
}

func (g *Graph) addFreeEdge(a, b board.GridPoint) {
	g.adj[a] = append(g.adj[a], graphEdge{to: b, cost: 0})
	g.adj[b] = append(g.adj[b], graphEdge{to: a, cost: 0})
}

// Contains reports whether the point is on the network's own track.
func (g *Graph) Contains(p board.GridPoint) bool {
	for _, end := range g.trackEnds {
		if end == p {
			return true
		}
	}
	return false
}

// Components returns the connected components holding at least one track
// endpoint, in first-discovered order (endpoints visited in sorted order).
func (g *Graph) Components() [][]board.GridPoint {
	visited := make(map[board.GridPoint]bool)
	var comps [][]board.GridPoint
	for _, start := range g.trackEnds {
		if visited[start] {
			continue
		}
		var comp []board.GridPoint
		queue := []board.GridPoint{start}
		visited[start] = true
		for len(queue) > 0 {
			p := queue[0]
			queue = queue[1:]
			comp = append(comp, p)
			for _, e := range g.adj[p] {
				if !visited[e.to] {
					visited[e.to] = true
					queue = append(queue, e.to)
				}
			}
		}
		comps = append(comps, comp)
	}
	return comps
}

// MajorCities returns the distinct major city names touched by a component,
// sorted for stable output.
func (g *Graph) MajorCities(component []board.GridPoint) []string {
	if g.catalog == nil {
		return nil
	}
	set := make(map[string]bool)
	for _, p := range component {
		if name := g.catalog.MajorCityAt(p); name != "" {
			set[name] = true
		}
	}
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BestComponent returns the component touching the most major cities and the
// city names it touches. Ties go to the first-discovered component.
func (g *Graph) BestComponent() ([]board.GridPoint, []string) {
	var bestComp []board.GridPoint
	var bestCities []string
	for _, comp := range g.Components() {
		cities := g.MajorCities(comp)
		if bestComp == nil || len(cities) > len(bestCities) {
			bestComp = comp
			bestCities = cities
		}
	}
	return bestComp, bestCities
}

// ConnectedCityCount is the major-city count of the best component.
func (g *Graph) ConnectedCityCount() int {
	_, cities := g.BestComponent()
	return len(cities)
}

// ReachableWithinBudget runs a shortest-cost search from start to any milepost
// of the named city, bounded by the movement budget. It returns the point
// path (start first), its total cost, and whether the city was reachable.
func (g *Graph) ReachableWithinBudget(start board.GridPoint, city string, budget int) ([]board.GridPoint, int, bool) {
	key := pathKey{start: start, city: city, budget: budget}
	if g.paths != nil {
		if res, ok := g.paths.Get(key); ok {
			return res.path, res.cost, res.ok
		}
	}
	path, cost, ok := g.shortestToCity(start, city, budget)
	if g.paths != nil {
		g.paths.Add(key, pathResult{path: path, cost: cost, ok: ok})
	}
	return path, cost, ok
}

func (g *Graph) isCityPoint(p board.GridPoint, city string) bool {
	if g.catalog != nil && g.catalog.MajorCityAt(p) == city {
		return true
	}
	if mp, ok := g.topo[p]; ok && mp.City == city {
		return true
	}
	return false
}

func (g *Graph) shortestToCity(start board.GridPoint, city string, budget int) ([]board.GridPoint, int, bool) {
	if g.isCityPoint(start, city) {
		return []board.GridPoint{start}, 0, true
	}

	dist := map[board.GridPoint]int{start: 0}
	prev := make(map[board.GridPoint]board.GridPoint)
	pq := &pointHeap{{point: start, cost: 0}}
	heap.Init(pq)

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(pointCost)
		if cur.cost > dist[cur.point] {
			continue
		}
		if g.isCityPoint(cur.point, city) {
			return rebuildPath(prev, start, cur.point), cur.cost, true
		}
		for _, e := range g.adj[cur.point] {
			next := cur.cost + e.cost
			if next > budget {
				continue
			}
			if d, ok := dist[e.to]; !ok || next < d {
				dist[e.to] = next
				prev[e.to] = cur.point
				heap.Push(pq, pointCost{point: e.to, cost: next})
			}
		}
	}
	return nil, 0, false
}

func rebuildPath(prev map[board.GridPoint]board.GridPoint, start, end board.GridPoint) []board.GridPoint {
	var rev []board.GridPoint
	for p := end; ; {
		rev = append(rev, p)
		if p == start {
			break
		}
		p = prev[p]
	}
	path := make([]board.GridPoint, 0, len(rev))
	for i := len(rev) - 1; i >= 0; i-- {
		path = append(path, rev[i])
	}
	return path
}

func lessPoint(a, b board.GridPoint) bool {
	if a.Row != b.Row {
		return a.Row < b.Row
	}
	return a.Col < b.Col
}

// pointHeap is a min-heap ordered by cost, then row/col for determinism.
type pointCost struct {
	point board.GridPoint
	cost  int
}

type pointHeap []pointCost

func (h pointHeap) Len() int { return len(h) }
func (h pointHeap) Less(i, j int) bool {
	if h[i].cost != h[j].cost {
		return h[i].cost < h[j].cost
	}
	return lessPoint(h[i].point, h[j].point)
}
func (h pointHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *pointHeap) Push(x any)   { *h = append(*h, x.(pointCost)) }
func (h *pointHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
