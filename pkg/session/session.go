// Package session implements the match session lifecycle state machine.
//
// A session freezes its configuration boundary when it enters setup and
// accumulates an append-only timeline until it completes. Transitions are
// one-way; wrong-phase calls and double writes are invariant violations,
// not business outcomes, and are reported as *InvariantError.
package session

import (
	"hash/fnv"
	"time"

	"github.com/quarrylabs/matchspine/pkg/contracts"
)

// Phase is a session lifecycle state.
type Phase string

const (
	PhaseCreated     Phase = "CREATED"
	PhaseSetup       Phase = "SETUP"
	PhaseRegulation  Phase = "REGULATION"
	PhaseSuddenDeath Phase = "SUDDEN_DEATH"
	PhaseBattleLoop  Phase = "BATTLE_LOOP"
	PhaseComplete    Phase = "COMPLETE"
)

// transitions is the one-way phase graph.
var transitions = map[Phase][]Phase{
	PhaseCreated:     {PhaseSetup},
	PhaseSetup:       {PhaseRegulation, PhaseBattleLoop},
	PhaseRegulation:  {PhaseSuddenDeath, PhaseComplete},
	PhaseSuddenDeath: {PhaseComplete},
	PhaseBattleLoop:  {PhaseComplete},
}

// Session owns a single match's phase, frozen configuration snapshot, and
// append-only timeline. It is not safe for concurrent mutation; the hosting
// platform must serialize access per session.
type Session struct {
	SessionID string
	MatchID   string
	Seed      int64

	phase    Phase
	pointer  contracts.SessionPointer
	snapshot *contracts.SessionSnapshot
	timeline []contracts.TimelineEvent
	outcome  *contracts.BattleOutcome
	clock    func() time.Time
}

// New creates a session in the CREATED phase.
func New(sessionID, matchID string, seed int64, pointer contracts.SessionPointer) *Session {
	return &Session{
		SessionID: sessionID,
		MatchID:   matchID,
		Seed:      seed,
		phase:     PhaseCreated,
		pointer:   pointer,
		clock:     time.Now,
	}
}

// WithClock overrides the wall clock used for the snapshot freeze stamp.
// Timeline event times never use this clock.
func (s *Session) WithClock(clock func() time.Time) *Session {
	s.clock = clock
	return s
}

// Phase returns the current lifecycle phase.
func (s *Session) Phase() Phase { return s.phase }

// Pointer returns the current session pointer.
func (s *Session) Pointer() contracts.SessionPointer { return s.pointer }

// SetPointer replaces the session pointer. Allowed only before setup
// freezes the configuration boundary.
func (s *Session) SetPointer(p contracts.SessionPointer) error {
	if err := s.ensureMutable("SetPointer"); err != nil {
		return err
	}
	s.pointer = p
	return nil
}

// Snapshot returns the frozen configuration snapshot, or nil before setup.
func (s *Session) Snapshot() *contracts.SessionSnapshot { return s.snapshot }

// ConfigResolver resolves a session pointer into immutable registry
// records. The config loader implements this.
type ConfigResolver interface {
	Resolve(pointer contracts.SessionPointer) (*contracts.SessionSnapshot, error)
}

// BeginSetup resolves and freezes the session snapshot and moves the
// session to SETUP. Calling it twice, or from any phase but CREATED, is an
// invariant violation.
func (s *Session) BeginSetup(resolver ConfigResolver) error {
	if s.phase != PhaseCreated {
		return phaseMismatch("BeginSetup", s.phase, PhaseCreated)
	}
	if s.snapshot != nil {
		return &InvariantError{Op: "BeginSetup", Reason: "snapshot already frozen"}
	}
	snap, err := resolver.Resolve(s.pointer)
	if err != nil {
		return err
	}
	snap.FrozenAt = s.clock().UTC()
	s.snapshot = snap
	s.phase = PhaseSetup
	return nil
}

// Transition moves the session to the given phase along the one-way graph.
func (s *Session) Transition(to Phase) error {
	if to == PhaseComplete {
		return s.Complete()
	}
	for _, next := range transitions[s.phase] {
		if next == to {
			s.phase = to
			return nil
		}
	}
	return phaseMismatch("Transition:"+string(to), s.phase, to)
}

// AppendTimelineEvent assigns the next idx, derives the deterministic event
// time, and appends. The timeline is append-only by construction: no
// removal or edit operation exists.
func (s *Session) AppendTimelineEvent(code, participantID string, metrics map[string]float64, extra map[string]any) (contracts.TimelineEvent, error) {
	if s.phase == PhaseCreated || s.phase == PhaseComplete {
		return contracts.TimelineEvent{}, phaseMismatch("AppendTimelineEvent", s.phase, PhaseSetup)
	}
	ev := contracts.TimelineEvent{
		Idx:           len(s.timeline),
		Code:          code,
		At:            EventTick(s.Seed, s.MatchID, len(s.timeline)),
		ParticipantID: participantID,
		Metrics:       metrics,
		Extra:         extra,
	}
	s.timeline = append(s.timeline, ev)
	return ev, nil
}

// Timeline returns a copy of the accumulated events.
func (s *Session) Timeline() []contracts.TimelineEvent {
	return append([]contracts.TimelineEvent(nil), s.timeline...)
}

// Outcome returns the battle outcome, or nil if none has been set.
func (s *Session) Outcome() *contracts.BattleOutcome { return s.outcome }

// SetBattleOutcome records the session outcome. Allowed only before
// COMPLETE; setting it twice is an invariant violation.
func (s *Session) SetBattleOutcome(outcome contracts.BattleOutcome) error {
	if s.phase == PhaseComplete {
		return phaseMismatch("SetBattleOutcome", s.phase, PhaseBattleLoop)
	}
	if s.outcome != nil {
		return &InvariantError{Op: "SetBattleOutcome", Reason: "outcome already set"}
	}
	s.outcome = &outcome
	return nil
}

// Complete moves the session to COMPLETE. It requires a battle outcome to
// already be present.
func (s *Session) Complete() error {
	if !s.canComplete() {
		return phaseMismatch("Complete", s.phase, PhaseComplete)
	}
	if s.outcome == nil {
		return &InvariantError{Op: "Complete", Reason: "no battle outcome set"}
	}
	s.phase = PhaseComplete
	return nil
}

func (s *Session) canComplete() bool {
	for _, next := range transitions[s.phase] {
		if next == PhaseComplete {
			return true
		}
	}
	return false
}

func (s *Session) ensureMutable(op string) error {
	if s.phase != PhaseCreated {
		return &InvariantError{Op: op, Reason: "session pointer frozen after setup", Phase: s.phase}
	}
	return nil
}

// EventTick derives a deterministic timeline timestamp from the seed, match
// id, and event index. Replays of the same match reproduce identical ticks.
func EventTick(seed int64, matchID string, idx int) int64 {
	h := fnv.New64a()
	h.Write([]byte(matchID))
	base := int64(h.Sum64()^uint64(seed)) & 0x7fffffffffff
	return base + int64(idx)
}
