package game

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atshalahmedkhan/CodeOpoly-sub001/app/models"
	"github.com/atshalahmedkhan/CodeOpoly-sub001/platform/judge"
)

// fakeJudge passes any code containing "pass" and fails the rest. Code
// containing "down" simulates a collaborator outage.
type fakeJudge struct{}

func (fakeJudge) Evaluate(_ context.Context, code string, _ judge.Language, _ []models.TestCase) (judge.Verdict, error) {
	switch {
	case strings.Contains(code, "down"):
		return judge.Verdict{}, judge.ErrUnavailable
	case strings.Contains(code, "pass"):
		return judge.Verdict{Passed: true, PassedCount: 2, TotalCount: 2}, nil
	default:
		return judge.Verdict{Passed: false, PassedCount: 0, TotalCount: 2}, nil
	}
}

type fakeCatalog struct{}

func (fakeCatalog) Pick(category, difficulty string) (models.Problem, error) {
	return models.Problem{Id: "p-" + category + "-" + difficulty, Title: "Problem", Category: category, Difficulty: difficulty}, nil
}

type memorySnapshots struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemorySnapshots() *memorySnapshots {
	return &memorySnapshots{data: make(map[string][]byte)}
}

func (m *memorySnapshots) Save(code string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	m.data[code] = cp
	return nil
}

func (m *memorySnapshots) Load(code string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.data[code]
	if !ok {
		return nil, errors.New("not found")
	}
	return data, nil
}

func (m *memorySnapshots) Delete(code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, code)
	return nil
}

type eventSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *eventSink) Broadcast(_ string, ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
}

func (s *eventSink) has(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ev := range s.events {
		if ev.Name == name {
			return true
		}
	}
	return false
}

func testDeps(snaps SnapshotStore, sink Broadcaster) Deps {
	return Deps{
		Judge:     fakeJudge{},
		Catalog:   fakeCatalog{},
		Snapshots: snaps,
		Sink:      sink,
		Rand:      rand.New(rand.NewSource(7)),
		Now:       time.Now,
	}
}

func testSeats() []Seat {
	return []Seat{
		{UserID: "alice", Name: "alice"},
		{UserID: "bob", Name: "bob"},
	}
}

// startRunner spins up a loop for a hand-built session, outside any registry.
func startRunner(t *testing.T, s *Session, deps Deps) *Runner {
	t.Helper()
	r := newRunner(s, deps, nil)
	r.start()
	t.Cleanup(r.shutdown)
	return r
}

func TestRegistryCreate(t *testing.T) {
	reg := NewRegistry(testDeps(newMemorySnapshots(), &eventSink{}))
	t.Cleanup(func() { reg.Remove("ROOM1") })

	r, err := reg.Create("game-1", "ROOM1", testSeats())
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, r.Session().Status)

	// Duplicate code and short rosters are rejected.
	_, err = reg.Create("game-2", "ROOM1", testSeats())
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = reg.Create("game-3", "ROOM2", testSeats()[:1])
	assert.ErrorIs(t, err, ErrInvalidTransition)

	got, err := reg.Get("ROOM1")
	require.NoError(t, err)
	assert.Same(t, r, got)

	_, err = reg.Get("NOPE")
	assert.ErrorIs(t, err, ErrUnknownEntity)
}

func TestRunnerSerializesCommands(t *testing.T) {
	sink := &eventSink{}
	snaps := newMemorySnapshots()
	reg := NewRegistry(testDeps(snaps, sink))
	t.Cleanup(func() { reg.Remove("ROOM1") })

	r, err := reg.Create("game-1", "ROOM1", testSeats())
	require.NoError(t, err)

	assert.ErrorIs(t, r.Do(EndTurn{PlayerID: "alice"}), ErrInvalidTransition)
	require.NoError(t, r.Do(RollDice{PlayerID: "alice"}))
	assert.ErrorIs(t, r.Do(RollDice{PlayerID: "bob"}), ErrOutOfTurn)

	assert.True(t, sink.has(EvDiceRolled))
	assert.True(t, sink.has(EvPlayerMoved))

	// A successful command leaves a durable snapshot behind.
	require.Eventually(t, func() bool {
		_, err := snaps.Load("ROOM1")
		return err == nil
	}, 5*time.Second, 10*time.Millisecond)
	data, err := snaps.Load("ROOM1")
	require.NoError(t, err)
	restored, err := RestoreSession(data)
	require.NoError(t, err)
	assert.Equal(t, "ROOM1", restored.Code)
}

func TestRunnerDuelRace(t *testing.T) {
	sink := &eventSink{}
	s := testSession(t, "alice", "bob")
	giveProperty(t, s, "bob", 5)
	s.applyRoll(s.CurrentPlayer(), 2, 3, testRNG())
	require.Equal(t, PendingRent, s.Pending.Kind)

	r := startRunner(t, s, testDeps(newMemorySnapshots(), sink))

	require.NoError(t, r.Do(StartDuel{PlayerID: "alice"}))
	require.NoError(t, r.Do(SubmitDuelCode{PlayerID: "bob", Code: "this will fail", Language: judge.Python}))
	require.NoError(t, r.Do(SubmitDuelCode{PlayerID: "alice", Code: "this will pass", Language: judge.Python}))

	// Observing the end event through the sink's lock also orders the state
	// writes before our reads.
	require.Eventually(t, func() bool {
		return sink.has(EvDuelEnded)
	}, 5*time.Second, 10*time.Millisecond)

	assert.Nil(t, s.Duel)
	prop, err := s.Track.PropertyAt(5)
	require.NoError(t, err)
	assert.Equal(t, "alice", prop.OwnerID)
}

func TestRunnerJudgeOutageKeepsDuelAlive(t *testing.T) {
	sink := &eventSink{}
	s := testSession(t, "alice", "bob")
	giveProperty(t, s, "bob", 5)
	s.applyRoll(s.CurrentPlayer(), 2, 3, testRNG())

	r := startRunner(t, s, testDeps(newMemorySnapshots(), sink))

	require.NoError(t, r.Do(StartDuel{PlayerID: "alice"}))
	require.NoError(t, r.Do(SubmitDuelCode{PlayerID: "alice", Code: "judge is down", Language: judge.Python}))

	require.Eventually(t, func() bool {
		return sink.has(EvSubmissionResult)
	}, 5*time.Second, 10*time.Millisecond)

	require.NotNil(t, s.Duel)
	assert.Equal(t, DuelActive, s.Duel.Status)
	assert.False(t, s.Duel.Sides["alice"].Outstanding)
}

func TestRunnerChallengeThroughLoop(t *testing.T) {
	sink := &eventSink{}
	s := testSession(t, "alice", "bob")
	s.applyRoll(s.CurrentPlayer(), 1, 2, testRNG())
	require.Equal(t, PendingPurchase, s.Pending.Kind)

	r := startRunner(t, s, testDeps(newMemorySnapshots(), sink))

	require.NoError(t, r.Do(SolveForProperty{PlayerID: "alice"}))
	assert.True(t, sink.has(EvProblemAssigned))
	require.NoError(t, r.Do(SubmitPropertyCode{PlayerID: "alice", Code: "this will pass", Language: judge.JS}))

	require.Eventually(t, func() bool {
		return sink.has(EvPropertyBought)
	}, 5*time.Second, 10*time.Millisecond)

	prop, err := s.Track.PropertyAt(3)
	require.NoError(t, err)
	assert.Equal(t, "alice", prop.OwnerID)
	alice, _ := s.player("alice")
	assert.Equal(t, StartingMoney, alice.Money)
}

func TestRunnerRejectsDuelCommandsWithoutDuel(t *testing.T) {
	s := testSession(t, "alice", "bob")
	r := startRunner(t, s, testDeps(newMemorySnapshots(), &eventSink{}))

	assert.ErrorIs(t, r.Do(SubmitDuelCode{PlayerID: "alice", Code: "x", Language: judge.Python}), ErrInvalidTransition)
	assert.ErrorIs(t, r.Do(StartDuel{PlayerID: "alice"}), ErrInvalidTransition)
	assert.ErrorIs(t, r.Do(SolveForProperty{PlayerID: "alice"}), ErrInvalidTransition)
}

func TestRegistryRestoresFromSnapshot(t *testing.T) {
	snaps := newMemorySnapshots()
	reg := NewRegistry(testDeps(snaps, &eventSink{}))

	r, err := reg.Create("game-1", "ROOM1", testSeats())
	require.NoError(t, err)
	require.NoError(t, r.Do(RollDice{PlayerID: "alice"}))

	alice, _ := r.Session().player("alice")
	wantMoney, wantPos := alice.Money, alice.Position

	// The snapshot is written after Do returns; wait for it, then simulate a
	// process restart by dropping the in-memory runner.
	require.Eventually(t, func() bool {
		_, err := snaps.Load("ROOM1")
		return err == nil
	}, 5*time.Second, 10*time.Millisecond)
	reg.Remove("ROOM1")

	reg2 := NewRegistry(testDeps(snaps, &eventSink{}))
	t.Cleanup(func() { reg2.Remove("ROOM1") })
	restored, err := reg2.Get("ROOM1")
	require.NoError(t, err)
	got, _ := restored.Session().player("alice")
	assert.Equal(t, wantMoney, got.Money)
	assert.Equal(t, wantPos, got.Position)
}

func TestRegistryRestoreAll(t *testing.T) {
	snaps := newMemorySnapshots()

	live := NewSession("game-1", "LIVE1", testSeats())
	data, err := live.Snapshot()
	require.NoError(t, err)
	require.NoError(t, snaps.Save("LIVE1", data))

	done := NewSession("game-2", "DONE1", testSeats())
	done.Status = StatusFinished
	data, err = done.Snapshot()
	require.NoError(t, err)
	require.NoError(t, snaps.Save("DONE1", data))

	require.NoError(t, snaps.Save("BAD1", []byte("{")))

	reg := NewRegistry(testDeps(snaps, &eventSink{}))
	t.Cleanup(func() { reg.Remove("LIVE1") })

	n := reg.RestoreAll([]string{"LIVE1", "DONE1", "BAD1"})
	assert.Equal(t, 1, n)

	r, err := reg.Get("LIVE1")
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, r.Session().Status)
	_, err = reg.Get("DONE1")
	assert.ErrorIs(t, err, ErrUnknownEntity)
}

func TestRegistryIgnoresCorruptAndFinishedSnapshots(t *testing.T) {
	snaps := newMemorySnapshots()
	reg := NewRegistry(testDeps(snaps, &eventSink{}))

	require.NoError(t, snaps.Save("BAD", []byte("{")))
	_, err := reg.Get("BAD")
	assert.ErrorIs(t, err, ErrUnknownEntity)

	done := NewSession("game-1", "DONE", testSeats())
	done.Status = StatusFinished
	data, err := done.Snapshot()
	require.NoError(t, err)
	require.NoError(t, snaps.Save("DONE", data))
	_, err = reg.Get("DONE")
	assert.ErrorIs(t, err, ErrUnknownEntity)
}

func TestFinishedMatchStopsRunnerAndDropsSnapshot(t *testing.T) {
	sink := &eventSink{}
	snaps := newMemorySnapshots()

	// Alice ends her turn owing rent she cannot cover; the forced settlement
	// bankrupts her and finishes the two-player match.
	s := testSession(t, "alice", "bob")
	giveProperty(t, s, "bob", 39)
	alice := s.CurrentPlayer()
	alice.Money = 10
	alice.HasRolled = true
	s.Pending = &Pending{Kind: PendingRent, PlayerID: "alice", Position: 39, Amount: 50, OwnerID: "bob"}

	stopped := make(chan bool, 1)
	r := newRunner(s, testDeps(snaps, sink), func(code string, crashed bool) { stopped <- crashed })
	r.start()

	require.NoError(t, r.Do(EndTurn{PlayerID: "alice"}))

	select {
	case crashed := <-stopped:
		assert.False(t, crashed)
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not stop after the match finished")
	}

	assert.True(t, sink.has(EvGameOver))
	assert.Equal(t, StatusFinished, s.Status)
	assert.Equal(t, "bob", s.WinnerID)
	_, err := snaps.Load("ROOM1")
	assert.Error(t, err)

	// The stopped loop rejects everything after that.
	assert.ErrorIs(t, r.Do(RollDice{PlayerID: "bob"}), ErrUnknownEntity)
}

func TestRestoredChallengePastDeadlineExpiresImmediately(t *testing.T) {
	sink := &eventSink{}
	s := testSession(t, "alice", "bob")
	s.applyRoll(s.CurrentPlayer(), 1, 2, testRNG())
	require.Equal(t, PendingPurchase, s.Pending.Kind)

	// As if restored from a snapshot taken mid-challenge: the window closed
	// while the process was down, so starting the loop re-arms an already
	// overdue timer.
	s.Challenge = &Challenge{
		PlayerID:  "alice",
		Position:  3,
		Problem:   models.Problem{Id: "p-brown-easy"},
		StartedAt: time.Now().Add(-2 * DefaultTimeLimit),
		TimeLimit: DefaultTimeLimit,
	}
	startRunner(t, s, testDeps(newMemorySnapshots(), sink))

	require.Eventually(t, func() bool {
		return sink.has(EvChallengeExpired)
	}, 5*time.Second, 10*time.Millisecond)

	assert.Nil(t, s.Challenge)
	prop, err := s.Track.PropertyAt(3)
	require.NoError(t, err)
	assert.Empty(t, prop.OwnerID)
}
