package cidxml

// poolHashBuckets mirrors the reference implementation's tuning constant
// (design §4.4's "Open Questions": the modulus is a tuning constant, not a
// correctness constraint).
const poolHashBuckets = 109

// Poolable is implemented by every declaration kind stored in a NamePool:
// element, entity, and notation declarations.
type Poolable interface {
	PoolKey() string
	PoolID() int
	setPoolID(int)
}

// NamePool is a hybrid data structure giving both O(1) name lookup (a
// fixed-modulus hash table of chained entries) and O(1) id lookup (a dense
// array indexed by id), per design component C4.
type NamePool[T Poolable] struct {
	buckets [poolHashBuckets][]T
	dense   []T
	seq     uint64
	iterIdx int
}

// NewNamePool returns an empty pool.
func NewNamePool[T Poolable]() *NamePool[T] {
	return &NamePool[T]{}
}

func hashName(name string) int {
	var h uint32
	for i := 0; i < len(name); i++ {
		h = h*31 + uint32(name[i])
	}
	return int(h % poolHashBuckets)
}

// Lookup returns the entry named name, if any.
func (p *NamePool[T]) Lookup(name string) (T, bool) {
	b := p.buckets[hashName(name)]
	for _, e := range b {
		if e.PoolKey() == name {
			return e, true
		}
	}
	var zero T
	return zero, false
}

// ByID returns the entry with the given id, if any.
func (p *NamePool[T]) ByID(id int) (T, bool) {
	if id < 0 || id >= len(p.dense) {
		var zero T
		return zero, false
	}
	return p.dense[id], true
}

// Insert adds item under its PoolKey, assigning it the next-free id and
// storing that id back into the item via setPoolID. The pool's sequence
// number is bumped so external cursors can detect invalidation.
func (p *NamePool[T]) Insert(item T) {
	id := len(p.dense)
	item.setPoolID(id)
	p.dense = append(p.dense, item)
	bucket := hashName(item.PoolKey())
	p.buckets[bucket] = append(p.buckets[bucket], item)
	p.seq++
}

// Len returns the number of entries.
func (p *NamePool[T]) Len() int { return len(p.dense) }

// Seq returns the current mutation sequence number.
func (p *NamePool[T]) Seq() uint64 { return p.seq }

// ResetIter resets the internal iteration cursor to the beginning.
func (p *NamePool[T]) ResetIter() { p.iterIdx = 0 }

// Next advances the internal cursor and returns the next entry, or false
// when exhausted.
func (p *NamePool[T]) Next() (T, bool) {
	if p.iterIdx >= len(p.dense) {
		var zero T
		return zero, false
	}
	item := p.dense[p.iterIdx]
	p.iterIdx++
	return item, true
}

// RemoveAll clears every entry and bumps the sequence number.
func (p *NamePool[T]) RemoveAll() {
	for i := range p.buckets {
		p.buckets[i] = nil
	}
	p.dense = nil
	p.iterIdx = 0
	p.seq++
}

// Cursor is an external iteration cursor that fails fast if the pool
// mutates after it was captured.
type Cursor[T Poolable] struct {
	pool *NamePool[T]
	seq  uint64
	idx  int
}

// NewCursor captures the pool's current sequence number.
func (p *NamePool[T]) NewCursor() *Cursor[T] {
	return &Cursor[T]{pool: p, seq: p.seq}
}

// Next returns the next entry under the cursor, or an error if the pool has
// mutated since the cursor was created.
func (c *Cursor[T]) Next() (T, bool, error) {
	var zero T
	if c.seq != c.pool.seq {
		return zero, false, errCursorInvalidated
	}
	if c.idx >= len(c.pool.dense) {
		return zero, false, nil
	}
	item := c.pool.dense[c.idx]
	c.idx++
	return item, true, nil
}

var errCursorInvalidated = poolInvalidatedError{}

type poolInvalidatedError struct{}

func (poolInvalidatedError) Error() string { return "cidxml: name pool cursor invalidated by mutation" }
