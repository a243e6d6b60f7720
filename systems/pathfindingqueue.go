package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/simcore/components"
)

// RequestPriority orders PathRequests across the queue's three FIFO lanes.
type RequestPriority int

const (
	PriorityLazy RequestPriority = iota
	PriorityNormal
	PriorityUrgent
)

// PathRequest is one pending pathfinding job.
type PathRequest struct {
	ID            uint64
	Entity        ecs.Entity
	From, To      components.IVec2
	Priority      RequestPriority
	Reason        string
	RequestedTick uint64
}

// PathResult is the outcome of a drained request, keyed by request ID.
type PathResult struct {
	Ready        bool // true: Path is valid; false: the request failed
	Path         *components.SharedPath
	ComputedTick uint64
	Cost         float32
	RetryCount   int
	FailReason   string
}

type requestKey struct {
	entity   ecs.Entity
	from, to components.IVec2
}

// PathfindingQueue batches A* work across three priority lanes and drains a
// fixed budget per tick, so actions never run synchronous A* inline.
// Grounded on priority-lane job queues, generalized to a single resource-form
// queue keyed by request_id, since ark components favor a dense fixed layout
// over a variable PathReady/PathFailed component per entity.
type PathfindingQueue struct {
	grid    *PathGrid
	cache   *PathCache
	planner *AStarPlanner

	urgent []PathRequest
	normal []PathRequest
	lazy   []PathRequest

	pending map[requestKey]uint64 // dedupe: (entity,from,to) -> request id
	byID    map[uint64]requestKey

	ready map[uint64]PathResult

	nextID uint64

	processed uint64 // rolling total, for telemetry
}

// NewPathfindingQueue creates an empty queue computing paths over grid, using
// cache to skip recomputation of recently-seen routes.
func NewPathfindingQueue(grid *PathGrid, cache *PathCache) *PathfindingQueue {
	return &PathfindingQueue{
		grid:    grid,
		cache:   cache,
		planner: NewAStarPlanner(grid),
		pending: make(map[requestKey]uint64),
		byID:    make(map[uint64]requestKey),
		ready:   make(map[uint64]PathResult),
	}
}

// RequestPath enqueues a path computation, returning its request ID. An
// identical (entity, from, to) request already pending returns the existing
// ID instead of enqueuing a duplicate.
func (q *PathfindingQueue) RequestPath(entity ecs.Entity, from, to components.IVec2, priority RequestPriority, reason string, tick uint64) uint64 {
	key := requestKey{entity, from, to}
	if id, ok := q.pending[key]; ok {
		return id
	}

	q.nextID++
	id := q.nextID
	req := PathRequest{
		ID:            id,
		Entity:        entity,
		From:          from,
		To:            to,
		Priority:      priority,
		Reason:        reason,
		RequestedTick: tick,
	}
	switch priority {
	case PriorityUrgent:
		q.urgent = append(q.urgent, req)
	case PriorityNormal:
		q.normal = append(q.normal, req)
	default:
		q.lazy = append(q.lazy, req)
	}
	q.pending[key] = id
	q.byID[id] = key
	return id
}

// Cancel removes a pending or ready request for an entity's current request,
// so a cancelled action never receives a stale PathReady/PathFailed later.
func (q *PathfindingQueue) Cancel(id uint64) {
	if key, ok := q.byID[id]; ok {
		delete(q.pending, key)
		delete(q.byID, id)
	}
	delete(q.ready, id)
	q.urgent = removeRequest(q.urgent, id)
	q.normal = removeRequest(q.normal, id)
	q.lazy = removeRequest(q.lazy, id)
}

func removeRequest(lane []PathRequest, id uint64) []PathRequest {
	for i, r := range lane {
		if r.ID == id {
			return append(lane[:i], lane[i+1:]...)
		}
	}
	return lane
}

// Drain processes up to budget requests this tick in priority order
// (urgent -> normal -> lazy), never starting a lower-priority lane while a
// higher one still has work within this tick's budget.
func (q *PathfindingQueue) Drain(budget int, tick uint64) {
	budget = q.drainLane(&q.urgent, budget, tick)
	budget = q.drainLane(&q.normal, budget, tick)
	q.drainLane(&q.lazy, budget, tick)
}

func (q *PathfindingQueue) drainLane(lane *[]PathRequest, budget int, tick uint64) int {
	l := *lane
	n := 0
	for n < len(l) && budget > 0 {
		q.process(l[n], tick)
		budget--
		n++
	}
	*lane = l[n:]
	return budget
}

func (q *PathfindingQueue) process(req PathRequest, tick uint64) {
	defer func() {
		delete(q.pending, requestKey{req.Entity, req.From, req.To})
		delete(q.byID, req.ID)
		q.processed++
	}()

	if cached := q.cache.Get(req.From, req.To, tick); cached != nil {
		q.ready[req.ID] = PathResult{Ready: true, Path: cached, ComputedTick: tick}
		return
	}

	waypoints := q.planner.FindPath(req.From, req.To, 0)
	if waypoints == nil {
		q.ready[req.ID] = PathResult{Ready: false, ComputedTick: tick, FailReason: "no_path"}
		return
	}

	path := components.NewSharedPath(waypoints)
	q.cache.Put(req.From, req.To, path, tick)
	q.ready[req.ID] = PathResult{Ready: true, Path: path, ComputedTick: tick, Cost: float32(len(waypoints))}
}

// PollResult returns and removes a drained result for id, if ready.
func (q *PathfindingQueue) PollResult(id uint64) (PathResult, bool) {
	res, ok := q.ready[id]
	if ok {
		delete(q.ready, id)
	}
	return res, ok
}

// Depths returns the current (urgent, normal, lazy) lane lengths, for
// telemetry.
func (q *PathfindingQueue) Depths() (urgent, normal, lazy int) {
	return len(q.urgent), len(q.normal), len(q.lazy)
}

// Processed returns the rolling total of requests drained, for telemetry.
func (q *PathfindingQueue) Processed() uint64 {
	return q.processed
}
