package systems

import (
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/simcore/components"
)

func newTestQueue() (*PathfindingQueue, *ecs.World) {
	grid := gridAllWalkableExcept(nil)
	cache := NewPathCache(1000)
	return NewPathfindingQueue(grid, cache), ecs.NewWorld()
}

func TestPathfindingQueueRequestAndDrain(t *testing.T) {
	q, w := newTestQueue()
	e := w.NewEntity()

	from := components.IVec2{X: 0, Y: 0}
	to := components.IVec2{X: 3, Y: 0}
	id := q.RequestPath(e, from, to, PriorityNormal, "forage", 0)

	q.Drain(10, 0)

	res, ok := q.PollResult(id)
	if !ok {
		t.Fatal("expected a ready result after draining")
	}
	if !res.Ready {
		t.Fatalf("expected successful path, got failure: %s", res.FailReason)
	}
	if res.Path.At(0) != from || res.Path.At(res.Path.Len()-1) != to {
		t.Errorf("path endpoints = %v..%v, want %v..%v", res.Path.At(0), res.Path.At(res.Path.Len()-1), from, to)
	}
}

func TestPathfindingQueueDedupe(t *testing.T) {
	q, w := newTestQueue()
	e := w.NewEntity()

	from := components.IVec2{X: 0, Y: 0}
	to := components.IVec2{X: 3, Y: 0}
	id1 := q.RequestPath(e, from, to, PriorityNormal, "forage", 0)
	id2 := q.RequestPath(e, from, to, PriorityNormal, "forage", 0)

	if id1 != id2 {
		t.Errorf("expected identical (entity,from,to) requests to dedupe to the same id, got %d and %d", id1, id2)
	}
	if _, _, lazy := q.Depths(); lazy != 0 {
		t.Errorf("dedupe must not grow any lane, lazy depth = %d", lazy)
	}
}

func TestPathfindingQueuePriorityOrder(t *testing.T) {
	q, w := newTestQueue()

	for i := 0; i < 100; i++ {
		e := w.NewEntity()
		q.RequestPath(e, components.IVec2{X: 0, Y: 0}, components.IVec2{X: 1, Y: int32(i % 5)}, PriorityLazy, "wander", 0)
	}
	for i := 0; i < 10; i++ {
		e := w.NewEntity()
		q.RequestPath(e, components.IVec2{X: 0, Y: 0}, components.IVec2{X: 2, Y: int32(i % 5)}, PriorityUrgent, "flee", 0)
	}

	q.Drain(20, 0)

	urgent, _, lazy := q.Depths()
	if urgent != 0 {
		t.Errorf("expected all 10 urgent requests drained first, %d remain", urgent)
	}
	if lazy != 90 {
		t.Errorf("expected 10 lazy requests drained alongside urgent (budget 20), 90 remaining, got %d remaining", lazy)
	}

	q.Drain(20, 1)
	_, _, lazy = q.Depths()
	if lazy != 70 {
		t.Errorf("tick two should drain 20 more lazy requests, got %d remaining", lazy)
	}
}

func TestPathfindingQueueCancelRemovesReadyResult(t *testing.T) {
	q, w := newTestQueue()
	e := w.NewEntity()

	id := q.RequestPath(e, components.IVec2{X: 0, Y: 0}, components.IVec2{X: 1, Y: 0}, PriorityNormal, "forage", 0)
	q.Cancel(id)
	q.Drain(10, 0)

	if _, ok := q.PollResult(id); ok {
		t.Error("expected cancelled request to never produce a ready result")
	}
}

func TestPathfindingQueueFailureDoesNotCache(t *testing.T) {
	blocked := make(map[components.IVec2]bool)
	for dy := int32(-1); dy <= 1; dy++ {
		for dx := int32(-1); dx <= 1; dx++ {
			if dx != 0 || dy != 0 {
				blocked[components.IVec2{X: 10 + dx, Y: dy}] = true
			}
		}
	}
	grid := gridAllWalkableExcept(blocked)
	cache := NewPathCache(1000)
	q := NewPathfindingQueue(grid, cache)
	w := ecs.NewWorld()
	e := w.NewEntity()

	from := components.IVec2{X: 0, Y: 0}
	to := components.IVec2{X: 10, Y: 0}
	id := q.RequestPath(e, from, to, PriorityNormal, "forage", 0)
	q.Drain(10, 0)

	res, ok := q.PollResult(id)
	if !ok || res.Ready {
		t.Fatalf("expected a failed result for an unreachable goal, got ok=%v ready=%v", ok, res.Ready)
	}
	if cache.Len() != 0 {
		t.Errorf("failed searches must not be cached, cache len = %d", cache.Len())
	}
}
