package components

import "sync/atomic"

// SharedPath is an immutable sequence of tile waypoints, reference-counted
// so PathCache and every mover following it can share one allocation
// instead of copying. Once constructed a SharedPath is never mutated.
type SharedPath struct {
	Waypoints []IVec2
	refs       int32
}

// NewSharedPath wraps waypoints in a SharedPath with an initial refcount of 1.
func NewSharedPath(waypoints []IVec2) *SharedPath {
	return &SharedPath{Waypoints: waypoints, refs: 1}
}

// Retain increments the reference count and returns the same path, so
// callers can write `p = p.Retain()` when handing out a new reference.
func (p *SharedPath) Retain() *SharedPath {
	if p == nil {
		return nil
	}
	atomic.AddInt32(&p.refs, 1)
	return p
}

// Release decrements the reference count. The backing slice is garbage
// collected normally once nothing holds a reference; Release exists so
// callers can assert a path is no longer needed (tests and leak checks).
func (p *SharedPath) Release() {
	if p == nil {
		return
	}
	atomic.AddInt32(&p.refs, -1)
}

// RefCount returns the current reference count, for tests only.
func (p *SharedPath) RefCount() int32 {
	if p == nil {
		return 0
	}
	return atomic.LoadInt32(&p.refs)
}

// Len returns the number of waypoints.
func (p *SharedPath) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Waypoints)
}

// At returns the waypoint at index i.
func (p *SharedPath) At(i int) IVec2 {
	return p.Waypoints[i]
}

// MovementState is the state machine driving how an entity covers ground.
type MovementState uint8

const (
	MovementIdle MovementState = iota
	MovementPathRequested
	MovementFollowingPath
	MovementStuck
)

// MovementComponent is the per-entity movement state machine described in
// the data model: Idle | PathRequested{request_id} |
// FollowingPath{path, index} | Stuck{attempts}.
type MovementComponent struct {
	State     MovementState
	RequestID uint64      // valid when State == MovementPathRequested
	Path      *SharedPath // valid when State == MovementFollowingPath
	Index     int         // current waypoint index into Path
	Attempts  int         // consecutive failed retarget attempts, valid when State == MovementStuck
	Progress  float32     // fractional progress toward the next waypoint, in [0,1)
}

// NextWaypoint returns the tile the entity is currently walking toward, and
// whether one is available.
func (m *MovementComponent) NextWaypoint() (IVec2, bool) {
	if m.Path == nil || m.Index >= m.Path.Len() {
		return IVec2{}, false
	}
	return m.Path.At(m.Index), true
}

// Reset releases the current path and returns the component to Idle.
func (m *MovementComponent) Reset() {
	m.Path.Release()
	*m = MovementComponent{State: MovementIdle}
}
