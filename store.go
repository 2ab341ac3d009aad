package tessera

import (
	"fmt"
	"iter"
	"reflect"
	"slices"
)

// anyPool is the type-erased view of a componentPool the Scene keeps so it
// can destroy every component of an entity without knowing the kinds.
type anyPool interface {
	kind() string
	size() int
	owner(i int) Entity
	has(e Entity) bool
	value(e Entity) (any, bool)
	remove(e Entity) bool
	clear()
}

// componentPool is a sparse set: dense values packed for iteration, plus a
// sparse table from entity slot index to dense position (+1, so 0 = absent).
type componentPool[T any] struct {
	name   string
	sparse []int32
	dense  []T
	owners []Entity
}

func (p *componentPool[T]) kind() string       { return p.name }
func (p *componentPool[T]) size() int          { return len(p.dense) }
func (p *componentPool[T]) owner(i int) Entity { return p.owners[i] }
func (p *componentPool[T]) has(e Entity) bool  { return p.indexOf(e) >= 0 }

func (p *componentPool[T]) indexOf(e Entity) int {
	idx := int(e.Index())
	if idx >= len(p.sparse) {
		return -1
	}
	pos := int(p.sparse[idx]) - 1
	if pos < 0 || p.owners[pos] != e {
		return -1
	}
	return pos
}

func (p *componentPool[T]) get(e Entity) *T {
	if i := p.indexOf(e); i >= 0 {
		return &p.dense[i]
	}
	return nil
}

func (p *componentPool[T]) value(e Entity) (any, bool) {
	if i := p.indexOf(e); i >= 0 {
		return p.dense[i], true
	}
	return nil, false
}

func (p *componentPool[T]) add(e Entity, v T) *T {
	idx := int(e.Index())
	if idx >= len(p.sparse) {
		p.sparse = append(p.sparse, make([]int32, idx+1-len(p.sparse))...)
	}
	p.dense = append(p.dense, v)
	p.owners = append(p.owners, e)
	p.sparse[idx] = int32(len(p.dense))
	return &p.dense[len(p.dense)-1]
}

// remove swaps the last element into the hole.
func (p *componentPool[T]) remove(e Entity) bool {
	i := p.indexOf(e)
	if i < 0 {
		return false
	}
	last := len(p.dense) - 1
	if i != last {
		p.dense[i] = p.dense[last]
		p.owners[i] = p.owners[last]
		p.sparse[p.owners[i].Index()] = int32(i + 1)
	}
	var zero T
	p.dense[last] = zero
	p.dense = p.dense[:last]
	p.owners = p.owners[:last]
	p.sparse[e.Index()] = 0
	return true
}

func (p *componentPool[T]) clear() {
	clear(p.dense)
	p.dense = p.dense[:0]
	p.owners = p.owners[:0]
	clear(p.sparse)
}

func typeName[T any]() string {
	return reflect.TypeFor[T]().String()
}

// poolOf returns the pool for T, creating it on first use.
func poolOf[T any](s *Scene) *componentPool[T] {
	t := reflect.TypeFor[T]()
	if p, ok := s.pools[t]; ok {
		return p.(*componentPool[T])
	}
	p := &componentPool[T]{name: t.String()}
	s.pools[t] = p
	s.poolOrder = append(s.poolOrder, p)
	return p
}

// lookupPool returns the pool for T or nil. Reads never create pools.
func lookupPool[T any](s *Scene) *componentPool[T] {
	if p, ok := s.pools[reflect.TypeFor[T]()]; ok {
		return p.(*componentPool[T])
	}
	return nil
}

// AddComponent attaches value to e and returns a reference to the stored
// copy. It fails with ErrDuplicateComponent if e already carries a T and
// with ErrStaleEntity if e is not alive.
//
// References returned by the store stay valid until the next structural
// change (add or remove) to the same component kind.
func AddComponent[T any](s *Scene, e Entity, value T) (*T, error) {
	if !s.entities.isAlive(e) {
		return nil, fmt.Errorf("add %s to %v: %w", typeName[T](), e, ErrStaleEntity)
	}
	if isFrameVariant[T]() {
		return nil, fmt.Errorf("add %s to %v: %w", typeName[T](), e, ErrBareFrameSource)
	}
	p := poolOf[T](s)
	if p.has(e) {
		return nil, fmt.Errorf("add %s to %v: %w", p.name, e, ErrDuplicateComponent)
	}
	return p.add(e, value), nil
}

// SetComponent stores value on e, replacing any existing T.
func SetComponent[T any](s *Scene, e Entity, value T) (*T, error) {
	if !s.entities.isAlive(e) {
		return nil, fmt.Errorf("set %s on %v: %w", typeName[T](), e, ErrStaleEntity)
	}
	if isFrameVariant[T]() {
		return nil, fmt.Errorf("set %s on %v: %w", typeName[T](), e, ErrBareFrameSource)
	}
	p := poolOf[T](s)
	if c := p.get(e); c != nil {
		*c = value
		return c, nil
	}
	return p.add(e, value), nil
}

// isFrameVariant reports whether T is a concrete FrameSource variant. Those
// live only in the FrameSource pool, where frame selection looks for them.
func isFrameVariant[T any]() bool {
	switch any((*T)(nil)).(type) {
	case *Flipbook, *TileFrame:
		return true
	}
	return false
}

// GetComponent returns the T attached to e. A missing component is always
// an error; callers never receive a usable zero value.
func GetComponent[T any](s *Scene, e Entity) (*T, error) {
	if !s.entities.isAlive(e) {
		return nil, fmt.Errorf("get %s from %v: %w", typeName[T](), e, ErrStaleEntity)
	}
	if p := lookupPool[T](s); p != nil {
		if c := p.get(e); c != nil {
			return c, nil
		}
	}
	return nil, fmt.Errorf("get %s from %v: %w", typeName[T](), e, ErrComponentMissing)
}

// HasComponent reports whether e is alive and carries a T.
func HasComponent[T any](s *Scene, e Entity) bool {
	if !s.entities.isAlive(e) {
		return false
	}
	p := lookupPool[T](s)
	return p != nil && p.has(e)
}

// RemoveComponent detaches T from e.
func RemoveComponent[T any](s *Scene, e Entity) error {
	if !s.entities.isAlive(e) {
		return fmt.Errorf("remove %s from %v: %w", typeName[T](), e, ErrStaleEntity)
	}
	p := lookupPool[T](s)
	if p == nil || !p.remove(e) {
		return fmt.Errorf("remove %s from %v: %w", typeName[T](), e, ErrComponentMissing)
	}
	return nil
}

// Ref2 holds references to two components of one entity.
type Ref2[A, B any] struct {
	First  *A
	Second *B
}

// Ref3 holds references to three components of one entity.
type Ref3[A, B, C any] struct {
	First  *A
	Second *B
	Third  *C
}

// View yields every entity carrying a T in the pool's storage order, which
// Sort can set and removals perturb.
// Structural changes to T while iterating are not supported; collect the
// entities first and mutate afterwards.
func View[T any](s *Scene) iter.Seq2[Entity, *T] {
	return func(yield func(Entity, *T) bool) {
		p := lookupPool[T](s)
		if p == nil {
			return
		}
		for i := 0; i < len(p.dense); i++ {
			if !yield(p.owners[i], &p.dense[i]) {
				return
			}
		}
	}
}

// smallest returns the pool with the fewest members.
func smallest(pools ...anyPool) anyPool {
	best := pools[0]
	for _, p := range pools[1:] {
		if p.size() < best.size() {
			best = p
		}
	}
	return best
}

// View2 yields every entity carrying both an A and a B. It walks the
// smaller of the two pools and probes the other.
func View2[A, B any](s *Scene) iter.Seq2[Entity, Ref2[A, B]] {
	return func(yield func(Entity, Ref2[A, B]) bool) {
		pa, pb := lookupPool[A](s), lookupPool[B](s)
		if pa == nil || pb == nil {
			return
		}
		driver := smallest(pa, pb)
		for i := 0; i < driver.size(); i++ {
			e := driver.owner(i)
			ia, ib := pa.indexOf(e), pb.indexOf(e)
			if ia < 0 || ib < 0 {
				continue
			}
			if !yield(e, Ref2[A, B]{First: &pa.dense[ia], Second: &pb.dense[ib]}) {
				return
			}
		}
	}
}

// View3 yields every entity carrying an A, a B and a C.
func View3[A, B, C any](s *Scene) iter.Seq2[Entity, Ref3[A, B, C]] {
	return func(yield func(Entity, Ref3[A, B, C]) bool) {
		pa, pb, pc := lookupPool[A](s), lookupPool[B](s), lookupPool[C](s)
		if pa == nil || pb == nil || pc == nil {
			return
		}
		driver := smallest(pa, pb, pc)
		for i := 0; i < driver.size(); i++ {
			e := driver.owner(i)
			ia, ib, ic := pa.indexOf(e), pb.indexOf(e), pc.indexOf(e)
			if ia < 0 || ib < 0 || ic < 0 {
				continue
			}
			ref := Ref3[A, B, C]{First: &pa.dense[ia], Second: &pb.dense[ib], Third: &pc.dense[ic]}
			if !yield(e, ref) {
				return
			}
		}
	}
}

// Each2 calls fn for every entity carrying both an A and a B.
func Each2[A, B any](s *Scene, fn func(Entity, *A, *B)) {
	for e, r := range View2[A, B](s) {
		fn(e, r.First, r.Second)
	}
}

// Each3 calls fn for every entity carrying an A, a B and a C.
func Each3[A, B, C any](s *Scene, fn func(Entity, *A, *B, *C)) {
	for e, r := range View3[A, B, C](s) {
		fn(e, r.First, r.Second, r.Third)
	}
}

// Count returns the number of entities carrying a T.
func Count[T any](s *Scene) int {
	if p := lookupPool[T](s); p != nil {
		return p.size()
	}
	return 0
}

// Sort stably reorders the T pool so that View[T] yields components in cmp
// order. Other pools are unaffected.
func Sort[T any](s *Scene, cmp func(a, b *T) int) {
	p := lookupPool[T](s)
	if p == nil || len(p.dense) < 2 {
		return
	}
	perm := make([]int, len(p.dense))
	for i := range perm {
		perm[i] = i
	}
	slices.SortStableFunc(perm, func(i, j int) int {
		return cmp(&p.dense[i], &p.dense[j])
	})
	dense := make([]T, len(p.dense))
	owners := make([]Entity, len(p.owners))
	for to, from := range perm {
		dense[to] = p.dense[from]
		owners[to] = p.owners[from]
		p.sparse[owners[to].Index()] = int32(to + 1)
	}
	p.dense = dense
	p.owners = owners
}
