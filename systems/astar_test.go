package systems

import (
	"testing"

	"github.com/pthm-cable/simcore/components"
)

func gridAllWalkableExcept(blocked map[components.IVec2]bool) *PathGrid {
	return NewPathGrid(func(t components.IVec2) bool {
		return !blocked[t]
	})
}

func TestAStarSimplePath(t *testing.T) {
	grid := gridAllWalkableExcept(nil)
	planner := NewAStarPlanner(grid)

	start := components.IVec2{X: 0, Y: 0}
	goal := components.IVec2{X: 20, Y: 10}
	path := planner.FindPath(start, goal, 0)

	if path == nil {
		t.Fatal("expected path, got nil")
	}
	if path[0] != start {
		t.Errorf("first waypoint = %v, want start %v", path[0], start)
	}
	if path[len(path)-1] != goal {
		t.Errorf("last waypoint = %v, want goal %v", path[len(path)-1], goal)
	}
}

func TestAStarStartEqualsGoal(t *testing.T) {
	grid := gridAllWalkableExcept(nil)
	planner := NewAStarPlanner(grid)

	tile := components.IVec2{X: 5, Y: 5}
	path := planner.FindPath(tile, tile, 0)
	if len(path) != 1 || path[0] != tile {
		t.Fatalf("expected single-waypoint path for start==goal, got %v", path)
	}
}

func TestAStarAroundObstacle(t *testing.T) {
	blocked := make(map[components.IVec2]bool)
	for y := int32(-5); y <= 5; y++ {
		blocked[components.IVec2{X: 10, Y: y}] = true
	}
	grid := gridAllWalkableExcept(blocked)
	planner := NewAStarPlanner(grid)

	path := planner.FindPath(components.IVec2{X: 0, Y: 0}, components.IVec2{X: 20, Y: 0}, 0)
	if path == nil {
		t.Fatal("expected path around obstacle, got nil")
	}
	for _, wp := range path {
		if blocked[wp] {
			t.Errorf("waypoint %v falls inside the blocked wall", wp)
		}
	}
}

func TestAStarNoCornerCutting(t *testing.T) {
	// Block the two tiles orthogonally adjacent to a diagonal step, so the
	// diagonal must not be taken even though its start and end tiles are open.
	blocked := map[components.IVec2]bool{
		{X: 1, Y: 0}: true,
		{X: 0, Y: 1}: true,
	}
	grid := gridAllWalkableExcept(blocked)
	planner := NewAStarPlanner(grid)

	path := planner.FindPath(components.IVec2{X: 0, Y: 0}, components.IVec2{X: 1, Y: 1}, 0)
	if path == nil {
		t.Fatal("expected a path that detours around the corner")
	}
	if len(path) < 3 {
		t.Errorf("expected a detour of at least 3 waypoints, got %d: %v", len(path), path)
	}
}

func TestAStarNoPath(t *testing.T) {
	blocked := make(map[components.IVec2]bool)
	for y := int32(-20); y <= 20; y++ {
		blocked[components.IVec2{X: 10, Y: y}] = true
	}
	grid := gridAllWalkableExcept(blocked)
	planner := NewAStarPlanner(grid)

	path := planner.FindPath(components.IVec2{X: 0, Y: 0}, components.IVec2{X: 20, Y: 0}, 1000)
	if path != nil {
		t.Errorf("expected no path through a complete wall, got %d waypoints", len(path))
	}
}

func TestAStarUnwalkableEndpoint(t *testing.T) {
	blocked := map[components.IVec2]bool{{X: 5, Y: 5}: true}
	grid := gridAllWalkableExcept(blocked)
	planner := NewAStarPlanner(grid)

	if path := planner.FindPath(components.IVec2{X: 0, Y: 0}, components.IVec2{X: 5, Y: 5}, 0); path != nil {
		t.Errorf("expected nil path to an unwalkable goal, got %v", path)
	}
}
