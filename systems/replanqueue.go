package systems

import "github.com/mlange-42/ark/ecs"

// ReplanPriority is the ReplanQueue lane an entity is pushed onto.
type ReplanPriority uint8

const (
	ReplanNormal ReplanPriority = iota
	ReplanHigh
)

// ReplanQueue is a two-lane FIFO with a dedupe set over entity ids, so a
// pushed entity is never queued twice until it is drained.
type ReplanQueue struct {
	high   []ecs.Entity
	normal []ecs.Entity
	queued map[ecs.Entity]ReplanPriority
}

func NewReplanQueue() *ReplanQueue {
	return &ReplanQueue{queued: make(map[ecs.Entity]ReplanPriority)}
}

// Push enqueues entity at the given priority if it is not already queued at
// any priority. Pushing High for an entity already queued Normal upgrades
// it in place so it drains from the high lane instead.
func (q *ReplanQueue) Push(e ecs.Entity, priority ReplanPriority) {
	if existing, ok := q.queued[e]; ok {
		if priority == ReplanHigh && existing == ReplanNormal {
			q.normal = removeEntity(q.normal, e)
			q.high = append(q.high, e)
			q.queued[e] = ReplanHigh
		}
		return
	}
	q.queued[e] = priority
	if priority == ReplanHigh {
		q.high = append(q.high, e)
	} else {
		q.normal = append(q.normal, e)
	}
}

// Drain pops up to budget entities, high lane first, returning the high-
// and normal-lane entities separately so callers can apply the "a Normal
// replan does not interrupt a non-interruptible action" rule, which only
// applies to entities drained from normal. Each popped entity is removed
// from the dedupe set so a future Push can re-queue it.
func (q *ReplanQueue) Drain(budget int) (high, normal []ecs.Entity) {
	for budget > 0 && len(q.high) > 0 {
		e := q.high[0]
		q.high = q.high[1:]
		delete(q.queued, e)
		high = append(high, e)
		budget--
	}
	for budget > 0 && len(q.normal) > 0 {
		e := q.normal[0]
		q.normal = q.normal[1:]
		delete(q.queued, e)
		normal = append(normal, e)
		budget--
	}
	return high, normal
}

// Len reports the total number of entities currently queued across both lanes.
func (q *ReplanQueue) Len() int {
	return len(q.high) + len(q.normal)
}
