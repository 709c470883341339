package game

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	uuid "github.com/satori/go.uuid"
	log "github.com/sirupsen/logrus"

	"github.com/atshalahmedkhan/CodeOpoly-sub001/app/models"
	"github.com/atshalahmedkhan/CodeOpoly-sub001/platform/judge"
	"github.com/atshalahmedkhan/CodeOpoly-sub001/platform/problems"
)

// judgeCallTimeout bounds one evaluation round-trip; past it the submission
// degrades to a failed attempt.
const judgeCallTimeout = 90 * time.Second

// SnapshotStore is the persistence collaborator: durable session snapshots
// keyed by session code, last writer wins.
type SnapshotStore interface {
	Save(code string, data []byte) error
	Load(code string) ([]byte, error)
	Delete(code string) error
}

// Broadcaster delivers resulting events to every connected member of a
// session. Implemented by the socket layer.
type Broadcaster interface {
	Broadcast(code string, ev Event)
}

// Runner owns one session. All mutations funnel through its command loop,
// which is the session's single-writer serialization point. Judge calls run
// outside the loop and re-enter as verdict commands; duel and challenge
// expiries re-enter as timer commands.
type Runner struct {
	session *Session
	cmds    chan envelope
	quit    chan struct{}
	done    chan struct{}
	stop    sync.Once

	rng     *rand.Rand
	now     func() time.Time
	judge   judge.Evaluator
	catalog problems.Catalog
	snaps   SnapshotStore
	sink    Broadcaster
	log     *log.Entry

	// onStop is called once when the loop exits (finished match or panic).
	onStop func(code string, crashed bool)

	duelTimer      *time.Timer
	challengeTimer *time.Timer
}

type envelope struct {
	cmd  Command
	errc chan error
}

func newRunner(s *Session, deps Deps, onStop func(string, bool)) *Runner {
	r := &Runner{
		session: s,
		cmds:    make(chan envelope, 32),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
		rng:     deps.Rand,
		now:     deps.Now,
		judge:   deps.Judge,
		catalog: deps.Catalog,
		snaps:   deps.Snapshots,
		sink:    deps.Sink,
		log:     log.WithField("session", s.Code),
		onStop:  onStop,
	}
	if r.rng == nil {
		r.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

func (r *Runner) start() {
	// A restored session may carry a live duel or challenge whose deadline
	// must be re-armed.
	if d := r.session.Duel; d != nil && !d.Terminal() {
		r.armDuelTimer(d)
	}
	if c := r.session.Challenge; c != nil {
		r.armChallengeTimer(c)
	}
	go r.loop()
}

// Session returns the owned session. Reading it outside the command loop is
// only safe for the immutable identity fields.
func (r *Runner) Session() *Session {
	return r.session
}

// Do submits a command and waits for its synchronous outcome. Events produced
// by the mutation are broadcast before the next command is admitted.
func (r *Runner) Do(cmd Command) error {
	env := envelope{cmd: cmd, errc: make(chan error, 1)}
	select {
	case r.cmds <- env:
	case <-r.done:
		return ErrUnknownEntity
	}
	select {
	case err := <-env.errc:
		return err
	case <-r.done:
		return ErrUnknownEntity
	}
}

func (r *Runner) loop() {
	crashed := false
	defer func() {
		if p := recover(); p != nil {
			// Crash-only: discard the in-memory session, a later lookup
			// restores it from the snapshot store.
			r.log.WithField("panic", p).Error("session loop panicked, discarding in-memory state")
			crashed = true
		}
		r.stopTimers()
		close(r.done)
		if r.onStop != nil {
			r.onStop(r.session.Code, crashed)
		}
	}()

	for {
		select {
		case env := <-r.cmds:
			events, err := r.dispatch(env.cmd)
			env.errc <- err
			for _, ev := range events {
				if r.sink != nil {
					r.sink.Broadcast(r.session.Code, ev)
				}
			}
			if err == nil {
				r.persist()
			}
			if r.session.Status == StatusFinished {
				if r.snaps != nil {
					if err := r.snaps.Delete(r.session.Code); err != nil {
						r.log.WithError(err).Warn("failed to drop finished session snapshot")
					}
				}
				return
			}
		case <-r.quit:
			return
		}
	}
}

// shutdown stops the loop without marking the session finished.
func (r *Runner) shutdown() {
	r.stop.Do(func() { close(r.quit) })
}

func (r *Runner) dispatch(cmd Command) ([]Event, error) {
	s := r.session
	switch c := cmd.(type) {
	case RollDice:
		return s.RollDice(c.PlayerID, r.rng)

	case BuyProperty:
		return s.BuyProperty(c.PlayerID)

	case SolveForProperty:
		problem, err := r.pickForPending(c.PlayerID, PendingPurchase)
		if err != nil {
			return nil, err
		}
		events, err := s.StartChallenge(c.PlayerID, problem, r.now())
		if err != nil {
			return nil, err
		}
		r.armChallengeTimer(s.Challenge)
		return events, nil

	case SubmitPropertyCode:
		if err := s.SubmitChallengeCode(c.PlayerID, c.Code, c.Language); err != nil {
			return nil, err
		}
		r.evaluateAsync(c.Code, c.Language, s.Challenge.Problem, func(v judge.Verdict, err error) Command {
			return challengeVerdict{PlayerID: c.PlayerID, Verdict: v, Err: err}
		})
		return nil, nil

	case PayRent:
		return s.PayRent(c.PlayerID)

	case StartDuel:
		problem, err := r.pickForPending(c.PlayerID, PendingRent)
		if err != nil {
			return nil, err
		}
		events, err := s.StartDuel(c.PlayerID, uuid.NewV4().String(), problem, r.now())
		if err != nil {
			return nil, err
		}
		r.armDuelTimer(s.Duel)
		return events, nil

	case SubmitDuelCode:
		d := s.Duel
		if d == nil {
			return nil, ErrInvalidTransition
		}
		duelID := d.ID
		if err := s.SubmitDuelCode(duelID, c.PlayerID, c.Code, c.Language); err != nil {
			return nil, err
		}
		r.evaluateAsync(c.Code, c.Language, d.Problem, func(v judge.Verdict, err error) Command {
			return duelVerdict{DuelID: duelID, PlayerID: c.PlayerID, Verdict: v, Err: err}
		})
		return nil, nil

	case EndTurn:
		return s.EndTurn(c.PlayerID)

	case PayJailFine:
		return s.PayJailFine(c.PlayerID)

	case BuildHouse:
		return s.BuildHouse(c.PlayerID, c.Position)

	case duelVerdict:
		events := s.ApplyDuelVerdict(c.DuelID, c.PlayerID, c.Verdict, c.Err, r.now())
		if s.Duel == nil && r.duelTimer != nil {
			r.duelTimer.Stop()
			r.duelTimer = nil
		}
		return events, nil

	case duelExpired:
		return s.ExpireDuel(c.DuelID), nil

	case challengeVerdict:
		events := s.ApplyChallengeVerdict(c.PlayerID, c.Verdict, c.Err)
		if s.Challenge == nil && r.challengeTimer != nil {
			r.challengeTimer.Stop()
			r.challengeTimer = nil
		}
		return events, nil

	case challengeExpired:
		return s.ExpireChallenge(c.PlayerID), nil

	default:
		return nil, ErrInvalidTransition
	}
}

// pickForPending selects a problem matching the pending property's category
// and price tier.
func (r *Runner) pickForPending(playerID string, kind PendingKind) (problem models.Problem, err error) {
	s := r.session
	if s.Pending == nil || s.Pending.Kind != kind || s.Pending.PlayerID != playerID {
		return problem, ErrInvalidTransition
	}
	prop, perr := s.Track.PropertyAt(s.Pending.Position)
	if perr != nil {
		return problem, ErrUnknownEntity
	}
	problem, err = r.catalog.Pick(prop.Group, problems.DifficultyForPrice(prop.Price))
	if err != nil {
		r.log.WithError(err).Error("problem selection failed")
		return problem, errors.New("no problem available")
	}
	return problem, nil
}

// evaluateAsync ships a submission to the judging collaborator without
// holding the serialization point, and feeds the verdict back in as an
// ordinary command. A runner that stopped in the meantime drops it.
func (r *Runner) evaluateAsync(code string, lang judge.Language, problem models.Problem, wrap func(judge.Verdict, error) Command) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), judgeCallTimeout)
		defer cancel()
		v, err := r.judge.Evaluate(ctx, code, lang, problem.TestCases)
		if err != nil && !errors.Is(err, judge.ErrUnavailable) {
			err = judge.ErrUnavailable
		}
		_ = r.Do(wrap(v, err))
	}()
}

func (r *Runner) armDuelTimer(d *Duel) {
	delay := d.Deadline().Sub(r.now())
	if delay < 0 {
		delay = 0
	}
	id := d.ID
	r.duelTimer = time.AfterFunc(delay, func() {
		_ = r.Do(duelExpired{DuelID: id})
	})
}

func (r *Runner) armChallengeTimer(c *Challenge) {
	delay := c.Deadline().Sub(r.now())
	if delay < 0 {
		delay = 0
	}
	playerID := c.PlayerID
	r.challengeTimer = time.AfterFunc(delay, func() {
		_ = r.Do(challengeExpired{PlayerID: playerID})
	})
}

func (r *Runner) stopTimers() {
	if r.duelTimer != nil {
		r.duelTimer.Stop()
	}
	if r.challengeTimer != nil {
		r.challengeTimer.Stop()
	}
}

func (r *Runner) persist() {
	if r.snaps == nil {
		return
	}
	data, err := r.session.Snapshot()
	if err != nil {
		r.log.WithError(err).Error("snapshot marshal failed")
		return
	}
	if err := r.snaps.Save(r.session.Code, data); err != nil {
		r.log.WithError(err).Warn("snapshot save failed")
	}
}
