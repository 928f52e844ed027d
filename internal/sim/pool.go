package sim

import (
	"sync"

	"github.com/san-kum/attractor/internal/dynamo"
)

// Pool recycles trajectory buffers of one fixed size. Search workers reject
// most attempts, so the same search-window buffer is reused many times.
type Pool struct {
	pool   sync.Pool
	dim    int
	length int
}

func NewPool(dim, length int) *Pool {
	p := &Pool{dim: dim, length: length}
	p.pool.New = func() any {
		return dynamo.NewTrajectory(dim, length)
	}
	return p
}

func (p *Pool) Get() *dynamo.Trajectory {
	return p.pool.Get().(*dynamo.Trajectory)
}

// Put returns t to the pool. Buffers of another size are dropped.
func (p *Pool) Put(t *dynamo.Trajectory) {
	if t == nil || t.Dim != p.dim || t.Len() != p.length {
		return
	}
	p.pool.Put(t)
}
