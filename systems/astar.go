package systems

import (
	"container/heap"
	"math"

	"github.com/pthm-cable/simcore/components"
)

// AStarPlanner computes tile paths over a PathGrid using reusable
// heap/closed-set/gScore/fScore structures cleared between searches,
// generalized from world-coordinate grid cells to direct tile coordinates
// (no grid indexing arithmetic is needed since the tile world is unbounded
// and keyed by chunk, not a fixed-size array).
type AStarPlanner struct {
	grid *PathGrid

	openHeap    *astarHeap
	closedSet   map[components.IVec2]struct{}
	cameFrom    map[components.IVec2]components.IVec2
	gScore      map[components.IVec2]float32
	fScore      map[components.IVec2]float32
	neighborBuf []components.IVec2
}

// astarNode is a node in the open set.
type astarNode struct {
	tile  components.IVec2
	f, h  float32
	index int
}

type astarHeap []*astarNode

func (h astarHeap) Len() int { return len(h) }
func (h astarHeap) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	if h[i].h != h[j].h {
		return h[i].h < h[j].h
	}
	// Final deterministic tie-break: lower tile coordinate first.
	if h[i].tile.Y != h[j].tile.Y {
		return h[i].tile.Y < h[j].tile.Y
	}
	return h[i].tile.X < h[j].tile.X
}
func (h astarHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index, h[j].index = i, j
}
func (h *astarHeap) Push(x any) {
	n := x.(*astarNode)
	n.index = len(*h)
	*h = append(*h, n)
}
func (h *astarHeap) Pop() any {
	old := *h
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	node.index = -1
	*h = old[:n-1]
	return node
}

// NewAStarPlanner creates a planner over the given grid.
func NewAStarPlanner(grid *PathGrid) *AStarPlanner {
	return &AStarPlanner{
		grid:      grid,
		openHeap:  &astarHeap{},
		closedSet: make(map[components.IVec2]struct{}, 256),
		cameFrom:  make(map[components.IVec2]components.IVec2, 256),
		gScore:    make(map[components.IVec2]float32, 256),
		fScore:    make(map[components.IVec2]float32, 256),
	}
}

// defaultMaxIterations bounds search effort; since the tile world is
// unbounded, iterations are capped by an absolute budget instead of
// width*height the way a fixed-size grid would.
const defaultMaxIterations = 20000

// FindPath computes a path from start to goal using A* with 8-neighborhood
// movement and no-corner-cutting diagonals. Returns nil if no path is found
// within the iteration budget. start==goal returns a single-waypoint path.
func (a *AStarPlanner) FindPath(start, goal components.IVec2, maxIterations int) []components.IVec2 {
	if start == goal {
		return []components.IVec2{start}
	}
	if !a.grid.Walkable(start) || !a.grid.Walkable(goal) {
		return nil
	}
	if maxIterations <= 0 {
		maxIterations = defaultMaxIterations
	}

	*a.openHeap = (*a.openHeap)[:0]
	for k := range a.closedSet {
		delete(a.closedSet, k)
	}
	for k := range a.cameFrom {
		delete(a.cameFrom, k)
	}
	for k := range a.gScore {
		delete(a.gScore, k)
	}
	for k := range a.fScore {
		delete(a.fScore, k)
	}

	h0 := heuristic(start, goal)
	a.gScore[start] = 0
	a.fScore[start] = h0
	heap.Push(a.openHeap, &astarNode{tile: start, f: h0, h: h0})

	iterations := 0
	for a.openHeap.Len() > 0 && iterations < maxIterations {
		iterations++
		current := heap.Pop(a.openHeap).(*astarNode)

		if current.tile == goal {
			return a.reconstructPath(start, goal)
		}
		if _, closed := a.closedSet[current.tile]; closed {
			continue
		}
		a.closedSet[current.tile] = struct{}{}

		a.neighborBuf = a.grid.neighbors(a.neighborBuf[:0], current.tile)
		for _, n := range a.neighborBuf {
			if _, closed := a.closedSet[n]; closed {
				continue
			}
			cost := stepCost(n.Sub(current.tile))
			tentativeG := a.gScore[current.tile] + cost

			existingG, exists := a.gScore[n]
			if exists && tentativeG >= existingG {
				continue
			}

			a.cameFrom[n] = current.tile
			a.gScore[n] = tentativeG
			h := heuristic(n, goal)
			a.fScore[n] = tentativeG + h
			heap.Push(a.openHeap, &astarNode{tile: n, f: a.fScore[n], h: h})
		}
	}

	return nil // no path found within budget
}

func heuristic(a, b components.IVec2) float32 {
	dx := float64(b.X - a.X)
	dy := float64(b.Y - a.Y)
	return float32(math.Sqrt(dx*dx + dy*dy))
}

// reconstructPath walks cameFrom from goal back to start and simplifies the
// result via line-of-sight waypoint reduction.
func (a *AStarPlanner) reconstructPath(start, goal components.IVec2) []components.IVec2 {
	var reversed []components.IVec2
	current := goal
	for current != start {
		reversed = append(reversed, current)
		prev, ok := a.cameFrom[current]
		if !ok {
			break
		}
		current = prev
	}
	reversed = append(reversed, start)

	path := make([]components.IVec2, len(reversed))
	for i, t := range reversed {
		path[len(reversed)-1-i] = t
	}

	return a.simplifyPath(path)
}

// simplifyPath removes waypoints that lie on a straight walkable line
// between their neighbors, a line-of-sight reduction pass.
func (a *AStarPlanner) simplifyPath(path []components.IVec2) []components.IVec2 {
	if len(path) <= 2 {
		return path
	}
	simplified := make([]components.IVec2, 0, len(path))
	simplified = append(simplified, path[0])

	for i := 1; i < len(path)-1; i++ {
		prev := simplified[len(simplified)-1]
		next := path[i+1]
		if a.hasLineOfSight(prev, next) {
			continue // skip path[i]: prev->next is walkable in a straight line
		}
		simplified = append(simplified, path[i])
	}
	simplified = append(simplified, path[len(path)-1])
	return simplified
}

// hasLineOfSight walks a Bresenham line between two tiles and reports
// whether every tile on it is walkable.
func (a *AStarPlanner) hasLineOfSight(from, to components.IVec2) bool {
	x0, y0 := from.X, from.Y
	x1, y1 := to.X, to.Y
	dx := abs32(x1 - x0)
	dy := -abs32(y1 - y0)
	sx := int32(1)
	if x0 >= x1 {
		sx = -1
	}
	sy := int32(1)
	if y0 >= y1 {
		sy = -1
	}
	err := dx + dy

	for {
		if !a.grid.Walkable(components.IVec2{X: x0, Y: y0}) {
			return false
		}
		if x0 == x1 && y0 == y1 {
			return true
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
