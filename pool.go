package tablefsm

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrPoolExhausted = errors.New("pool exhausted")
	ErrDoubleRelease = errors.New("block released twice")
)

// Block links a pooled payload to its pool. Embed it in a payload struct to
// let the engine return the payload to the pool once it is consumed.
type Block struct {
	pool  blockPool
	self  any
	inUse bool
}

type blockPool interface {
	deallocate(b *Block)
	inUse(b *Block) bool
}

// pooled is implemented by every payload that embeds Block.
type pooled interface {
	block() *Block
}

// Release returns the payload to its pool. Payloads that did not come from a
// pool are left alone.
func (b *Block) Release() {
	if b.pool != nil {
		b.pool.deallocate(b)
	}
}

func (b *Block) block() *Block {
	return b
}

// released reports whether the block has gone back to its pool.
func (b *Block) released() bool {
	return b.pool != nil && !b.pool.inUse(b)
}

// Pooled is the constraint satisfied by *T when T embeds Block.
type Pooled[T any] interface {
	*T
	block() *Block
}

// PoolStats is a snapshot of a pool's counters.
type PoolStats struct {
	Name          string
	BlockCount    int // blocks created
	BlocksInUse   int
	Allocations   int
	Deallocations int
}

// Pool is a fixed-block allocator for payloads of type T. Released blocks go
// on a free list and are handed out again, zeroed, by Allocate.
type Pool[T any, P Pooled[T]] struct {
	name      string
	maxBlocks int

	mu    sync.Mutex
	free  []P
	stats PoolStats
}

// NewPool creates a pool. maxBlocks bounds the number of blocks ever
// created; zero means unbounded.
func NewPool[T any, P Pooled[T]](name string, maxBlocks int) *Pool[T, P] {
	return &Pool[T, P]{
		name:      name,
		maxBlocks: maxBlocks,
		stats:     PoolStats{Name: name},
	}
}

// Allocate returns a zeroed payload owned by the caller until it is handed
// to a machine or released.
func (p *Pool[T, P]) Allocate() (P, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var ptr P
	if n := len(p.free); n > 0 {
		ptr = p.free[n-1]
		p.free = p.free[:n-1]
		var zero T
		*ptr = zero
	} else {
		if p.maxBlocks > 0 && p.stats.BlockCount >= p.maxBlocks {
			return nil, fmt.Errorf("%w: %s has %d blocks in use", ErrPoolExhausted, p.name, p.stats.BlocksInUse)
		}
		ptr = P(new(T))
		p.stats.BlockCount++
	}

	b := ptr.block()
	b.pool = p
	b.self = ptr
	b.inUse = true

	p.stats.Allocations++
	p.stats.BlocksInUse++
	return ptr, nil
}

func (p *Pool[T, P]) deallocate(b *Block) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !b.inUse {
		panic(fmt.Errorf("%w: pool %s", ErrDoubleRelease, p.name))
	}
	b.inUse = false
	p.free = append(p.free, b.self.(P))

	p.stats.Deallocations++
	p.stats.BlocksInUse--
}

func (p *Pool[T, P]) inUse(b *Block) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return b.inUse
}

// Stats returns the pool's counters.
func (p *Pool[T, P]) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}
