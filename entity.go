package tessera

import "fmt"

// Entity is a generation-checked handle into a Scene. The low 32 bits hold
// the slot index and the high 32 bits the slot generation. The zero value
// never refers to a live entity.
type Entity uint64

// NullEntity is the zero handle.
const NullEntity Entity = 0

func newEntity(index, generation uint32) Entity {
	return Entity(uint64(generation)<<32 | uint64(index))
}

// Index returns the slot index.
func (e Entity) Index() uint32 { return uint32(e) }

// Generation returns the slot generation the handle was issued for.
func (e Entity) Generation() uint32 { return uint32(e >> 32) }

// IsNull reports whether e is the zero handle.
func (e Entity) IsNull() bool { return e == NullEntity }

func (e Entity) String() string {
	if e.IsNull() {
		return "Entity(null)"
	}
	return fmt.Sprintf("Entity(%d:%d)", e.Index(), e.Generation())
}

// entityPool hands out slot indices and tracks the live generation of each.
// Generations start at 1 so that no live entity equals NullEntity.
type entityPool struct {
	generations []uint32
	alive       []bool
	free        []uint32
	count       int
}

func (p *entityPool) create() Entity {
	var idx uint32
	if n := len(p.free); n > 0 {
		idx = p.free[n-1]
		p.free = p.free[:n-1]
	} else {
		idx = uint32(len(p.generations))
		p.generations = append(p.generations, 1)
		p.alive = append(p.alive, false)
	}
	p.alive[idx] = true
	p.count++
	return newEntity(idx, p.generations[idx])
}

func (p *entityPool) isAlive(e Entity) bool {
	idx := e.Index()
	if int(idx) >= len(p.generations) {
		return false
	}
	return p.alive[idx] && p.generations[idx] == e.Generation()
}

// destroy frees the slot and bumps its generation. Returns false for
// handles that were not alive.
func (p *entityPool) destroy(e Entity) bool {
	if !p.isAlive(e) {
		return false
	}
	idx := e.Index()
	p.alive[idx] = false
	p.generations[idx]++
	if p.generations[idx] == 0 {
		p.generations[idx] = 1
	}
	p.free = append(p.free, idx)
	p.count--
	return true
}

func (p *entityPool) reset() {
	for i := range p.generations {
		if p.alive[i] {
			p.alive[i] = false
			p.generations[i]++
			if p.generations[i] == 0 {
				p.generations[i] = 1
			}
		}
	}
	p.free = p.free[:0]
	for i := len(p.generations) - 1; i >= 0; i-- {
		p.free = append(p.free, uint32(i))
	}
	p.count = 0
}
