package service

import (
	"sync/atomic"
	"time"
)

// State — лёгкий снапшот живости движка для admin-эндпоинтов.
// Ready выставляется после bootstrap-а стейта, lastCycle трогает раннер.
type State struct {
	ready     atomic.Bool
	startedAt time.Time

	lastCycleUnix atomic.Int64 // unix seconds
	cycles        atomic.Int64
}

func NewState() *State {
	s := &State{startedAt: time.Now()}
	s.ready.Store(false)
	return s
}

func (s *State) SetReady(v bool) { s.ready.Store(v) }
func (s *State) Ready() bool     { return s.ready.Load() }

func (s *State) TouchCycle(t time.Time) {
	s.lastCycleUnix.Store(t.Unix())
	s.cycles.Add(1)
}

func (s *State) LastCycle() time.Time {
	u := s.lastCycleUnix.Load()
	if u == 0 {
		return time.Time{}
	}
	return time.Unix(u, 0)
}

func (s *State) Cycles() int64 { return s.cycles.Load() }

func (s *State) Uptime() time.Duration { return time.Since(s.startedAt) }
