package game

import (
	"math/rand"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/atshalahmedkhan/CodeOpoly-sub001/platform/judge"
	"github.com/atshalahmedkhan/CodeOpoly-sub001/platform/problems"
)

// Deps are the collaborators a runner needs. Rand and Now default to the real
// thing; tests inject seeded/fake ones.
type Deps struct {
	Judge     judge.Evaluator
	Catalog   problems.Catalog
	Snapshots SnapshotStore
	Sink      Broadcaster
	Rand      *rand.Rand
	Now       func() time.Time
}

// Registry owns every live session runner in the process, keyed by room code.
// It replaces the original's module-level session map: created once at
// process start and injected into the transport layer.
type Registry struct {
	mu      sync.RWMutex
	runners map[string]*Runner
	deps    Deps
}

func NewRegistry(deps Deps) *Registry {
	return &Registry{
		runners: make(map[string]*Runner),
		deps:    deps,
	}
}

// SetSink wires the broadcast side after the socket server exists.
func (reg *Registry) SetSink(b Broadcaster) {
	reg.mu.Lock()
	reg.deps.Sink = b
	reg.mu.Unlock()
}

// Create starts a fresh match runner for the given seats.
func (reg *Registry) Create(id, code string, seats []Seat) (*Runner, error) {
	if len(seats) < 2 {
		return nil, ErrInvalidTransition
	}
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if _, exists := reg.runners[code]; exists {
		return nil, ErrInvalidTransition
	}
	r := newRunner(NewSession(id, code, seats), reg.deps, reg.onRunnerStop)
	reg.runners[code] = r
	r.start()
	return r, nil
}

// Get returns the live runner for a room code. A session missing from memory
// (crashed loop, process restart) is restored from its snapshot.
func (reg *Registry) Get(code string) (*Runner, error) {
	reg.mu.RLock()
	r, ok := reg.runners[code]
	reg.mu.RUnlock()
	if ok {
		return r, nil
	}
	return reg.restore(code)
}

func (reg *Registry) restore(code string) (*Runner, error) {
	if reg.deps.Snapshots == nil {
		return nil, ErrUnknownEntity
	}
	data, err := reg.deps.Snapshots.Load(code)
	if err != nil {
		return nil, ErrUnknownEntity
	}
	s, err := RestoreSession(data)
	if err != nil {
		log.WithField("session", code).WithError(err).Error("corrupt session snapshot")
		return nil, ErrUnknownEntity
	}
	if s.Status != StatusInProgress {
		return nil, ErrUnknownEntity
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()
	if r, ok := reg.runners[code]; ok {
		return r, nil
	}
	r := newRunner(s, reg.deps, reg.onRunnerStop)
	reg.runners[code] = r
	r.start()
	log.WithField("session", code).Info("session restored from snapshot")
	return r, nil
}

// RestoreAll revives the given snapshotted sessions, typically the snapshot
// store's full key listing at process start. Snapshots that are corrupt or
// already finished are skipped.
func (reg *Registry) RestoreAll(codes []string) int {
	n := 0
	for _, code := range codes {
		if _, err := reg.restore(code); err == nil {
			n++
		}
	}
	return n
}

func (reg *Registry) onRunnerStop(code string, crashed bool) {
	reg.mu.Lock()
	delete(reg.runners, code)
	reg.mu.Unlock()
	if crashed {
		log.WithField("session", code).Warn("session discarded after crash")
	}
}

// Remove drops a runner, e.g. when every player has left.
func (reg *Registry) Remove(code string) {
	reg.mu.Lock()
	r, ok := reg.runners[code]
	delete(reg.runners, code)
	reg.mu.Unlock()
	if ok {
		r.shutdown()
	}
}
