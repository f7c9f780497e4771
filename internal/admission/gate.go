// Package admission limits the service to one build at a time.
//
// Admission is a single compare-and-swap: a second caller is turned away
// immediately with domain.ErrBuildInProgress and is never queued.
package admission

import (
	"sync"
	"sync/atomic"

	"themegen/internal/domain"
)

// Gate is a single build slot. The zero value is an open gate.
type Gate struct {
	busy     atomic.Bool
	admitted atomic.Int64
	rejected atomic.Int64
}

// New returns an open gate.
func New() *Gate { return &Gate{} }

// Token is held by the admitted build until it calls Release.
type Token struct {
	gate *Gate
	once sync.Once
}

// Admit takes the slot or fails with domain.ErrBuildInProgress.
func (g *Gate) Admit() (*Token, error) {
	if !g.busy.CompareAndSwap(false, true) {
		g.rejected.Add(1)
		return nil, domain.ErrBuildInProgress
	}
	g.admitted.Add(1)
	return &Token{gate: g}, nil
}

// Release frees the slot. Only the first call has an effect, so it is safe
// to defer alongside an explicit release.
func (t *Token) Release() {
	if t == nil {
		return
	}
	t.once.Do(func() { t.gate.busy.Store(false) })
}

// Running reports whether a build currently holds the slot.
func (g *Gate) Running() bool { return g.busy.Load() }

// Stats counts admissions since start.
type Stats struct {
	Admitted int64 `json:"admitted"`
	Rejected int64 `json:"rejected"`
	Running  bool  `json:"running"`
}

func (g *Gate) Stats() Stats {
	return Stats{Admitted: g.admitted.Load(), Rejected: g.rejected.Load(), Running: g.Running()}
}
