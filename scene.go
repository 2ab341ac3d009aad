package tessera

import (
	"fmt"
	"iter"
	"reflect"
	"time"

	"go.uber.org/zap"
)

// Scene owns every entity, their components and the scene clock. It is not
// safe for concurrent use: mutate during update, then read during render.
type Scene struct {
	entities  entityPool
	pools     map[reflect.Type]anyPool
	poolOrder []anyPool

	clock time.Duration
	log   *zap.Logger
	sink  EventSink
}

// SceneOption configures a Scene.
type SceneOption func(*Scene)

// WithLogger sets the logger used for recoverable warnings.
func WithLogger(log *zap.Logger) SceneOption {
	return func(s *Scene) {
		if log != nil {
			s.log = log
		}
	}
}

// WithEventSink routes scene events to sink.
func WithEventSink(sink EventSink) SceneOption {
	return func(s *Scene) { s.sink = sink }
}

// NewScene creates an empty scene with its clock at zero.
func NewScene(opts ...SceneOption) *Scene {
	s := &Scene{
		pools: make(map[reflect.Type]anyPool),
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Logger returns the scene logger.
func (s *Scene) Logger() *zap.Logger { return s.log }

// SetEventSink replaces the event sink. nil disables events.
func (s *Scene) SetEventSink(sink EventSink) { s.sink = sink }

func (s *Scene) emit(ev Event) {
	if s.sink != nil {
		s.sink.EmitEvent(ev)
	}
}

// CreateEntity creates a live entity carrying Name, TagDefault and the
// default Transform.
func (s *Scene) CreateEntity(name string) Entity {
	e := s.entities.create()
	poolOf[Name](s).add(e, Name{Value: name})
	poolOf[Tag](s).add(e, TagDefault)
	poolOf[Transform](s).add(e, DefaultTransform())
	s.emit(Event{Type: EventEntityCreated, Entity: e, Name: name})
	return e
}

// DestroyEntity destroys e together with all of its components. The handle
// and any copies of it become stale.
func (s *Scene) DestroyEntity(e Entity) error {
	if !s.entities.isAlive(e) {
		return fmt.Errorf("destroy %v: %w", e, ErrStaleEntity)
	}
	var name string
	if n := lookupPool[Name](s); n != nil {
		if c := n.get(e); c != nil {
			name = c.Value
		}
	}
	for _, p := range s.poolOrder {
		p.remove(e)
	}
	s.entities.destroy(e)
	s.emit(Event{Type: EventEntityDestroyed, Entity: e, Name: name})
	return nil
}

// Alive reports whether e refers to a live entity.
func (s *Scene) Alive(e Entity) bool { return s.entities.isAlive(e) }

// Len returns the number of live entities.
func (s *Scene) Len() int { return s.entities.count }

// Entities yields every live entity in slot order.
func (s *Scene) Entities() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		for i, alive := range s.entities.alive {
			if !alive {
				continue
			}
			if !yield(newEntity(uint32(i), s.entities.generations[i])) {
				return
			}
		}
	}
}

// FindByName returns the first entity whose Name matches.
func (s *Scene) FindByName(name string) (Entity, bool) {
	for e, n := range View[Name](s) {
		if n.Value == name {
			return e, true
		}
	}
	return NullEntity, false
}

// Components returns copies of every component attached to e, in the order
// their kinds were first used in the scene.
func (s *Scene) Components(e Entity) []any {
	if !s.entities.isAlive(e) {
		return nil
	}
	var out []any
	for _, p := range s.poolOrder {
		if v, ok := p.value(e); ok {
			out = append(out, v)
		}
	}
	return out
}

// Clear destroys every entity. Existing handles become stale.
func (s *Scene) Clear() {
	for _, p := range s.poolOrder {
		p.clear()
	}
	s.entities.reset()
}

// Update advances the scene clock by dt.
func (s *Scene) Update(dt time.Duration) {
	s.clock += dt
}

// Now returns the scene clock: the total time passed to Update.
func (s *Scene) Now() time.Duration { return s.clock }
