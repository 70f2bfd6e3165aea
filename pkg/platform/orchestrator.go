// Package platform composes the match pipeline: preflight gate, session
// lifecycle, engine adapter calls, artifact persistence, and platform
// events. All dependencies are injected; there is no ambient global state.
package platform

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/quarrylabs/matchspine/pkg/contracts"
	"github.com/quarrylabs/matchspine/pkg/engine"
	"github.com/quarrylabs/matchspine/pkg/events"
	"github.com/quarrylabs/matchspine/pkg/session"
	"github.com/quarrylabs/matchspine/pkg/store"
	"github.com/quarrylabs/matchspine/pkg/universe"
)

// Orchestrator drives one match at a time from preflight to persisted
// artifact. Different orchestrator calls for different sessions are fully
// independent and may run concurrently.
type Orchestrator struct {
	gate     *universe.Gate
	engines  *engine.Registry
	resolver session.ConfigResolver
	store    store.ArtifactStore
	bus      *events.Bus
	logger   *slog.Logger
	clock    func() time.Time
}

// New wires an orchestrator from its collaborators.
func New(gate *universe.Gate, engines *engine.Registry, resolver session.ConfigResolver, artifacts store.ArtifactStore, bus *events.Bus, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		gate:     gate,
		engines:  engines,
		resolver: resolver,
		store:    artifacts,
		bus:      bus,
		logger:   logger,
		clock:    time.Now,
	}
}

// WithClock overrides the clock for deterministic testing.
func (o *Orchestrator) WithClock(clock func() time.Time) *Orchestrator {
	o.clock = clock
	return o
}

// MatchRequest describes one match to run.
type MatchRequest struct {
	Preflight    universe.Request
	Pointer      contracts.SessionPointer
	Participants []contracts.Participant
	CardKeys     []string
	Seed         int64
	MatchID      string
	Kit          contracts.BoltOnKit
	Inputs       map[string]any
}

// MatchOutcome is the data-level result of a match run. OK is false for
// expected business failures: a blocked preflight, a rejected deck, or a
// failed engine call. Invariant violations surface as the error return.
type MatchOutcome struct {
	OK            bool                     `json:"ok"`
	MatchID       string                   `json:"matchId"`
	ViolationCode string                   `json:"violationCode,omitempty"`
	Errors        []engine.ProtocolError   `json:"errors,omitempty"`
	Message       string                   `json:"message,omitempty"`
	Artifact      *contracts.MatchArtifact `json:"artifact,omitempty"`
	Snapshot      *contracts.SetupSnapshot `json:"snapshot,omitempty"`
}

// RunMatch executes the full pipeline for one match.
func (o *Orchestrator) RunMatch(ctx context.Context, req MatchRequest) (*MatchOutcome, error) {
	matchID := req.MatchID
	if matchID == "" {
		matchID = uuid.NewString()
	}
	logger := o.logger.With("matchId", matchID, "engine", req.Kit.EngineCode)

	decision := o.gate.Check(req.Preflight)
	if !decision.OK {
		logger.Warn("preflight blocked", "violation", decision.ViolationCode)
		return o.failed(matchID, &MatchOutcome{
			MatchID:       matchID,
			ViolationCode: decision.ViolationCode,
			Message:       decision.Message,
		}), nil
	}

	sess := session.New(uuid.NewString(), matchID, req.Seed, req.Pointer)
	if err := sess.BeginSetup(o.resolver); err != nil {
		return nil, fmt.Errorf("begin setup: %w", err)
	}

	adapter, err := o.engines.Resolve(req.Kit)
	if err != nil {
		return nil, fmt.Errorf("resolve engine: %w", err)
	}

	inputs := req.Inputs
	if inputs == nil {
		inputs = map[string]any{}
	}
	inputs["universeCode"] = req.Preflight.UniverseCode
	inputs["modeCode"] = req.Preflight.ModeCode

	validated, err := adapter.ValidateDeck(ctx, req.CardKeys, nil)
	if err != nil {
		return nil, fmt.Errorf("validateDeck: %w", err)
	}
	if !validated.OK {
		logger.Info("deck rejected", "errors", len(validated.Errors))
		return o.failed(matchID, &MatchOutcome{
			MatchID: matchID,
			Errors:  validated.Errors,
			Message: "deck validation failed",
		}), nil
	}

	created, err := adapter.CreateMatch(ctx, matchID, req.Participants, req.Seed, inputs)
	if err != nil {
		return nil, fmt.Errorf("createMatch: %w", err)
	}
	if !created.OK {
		return o.failed(matchID, &MatchOutcome{
			MatchID: matchID,
			Errors:  created.Errors,
			Message: "createMatch failed",
		}), nil
	}

	if err := sess.Transition(session.PhaseBattleLoop); err != nil {
		return nil, err
	}

	run, err := adapter.RunMatch(ctx, matchID, req.Seed, created.State, inputs)
	if err != nil {
		return nil, fmt.Errorf("runMatch: %w", err)
	}
	if !run.OK {
		return o.failed(matchID, &MatchOutcome{
			MatchID: matchID,
			Errors:  run.Errors,
			Message: "runMatch failed",
		}), nil
	}

	if err := recordRun(sess, run.Outputs); err != nil {
		return nil, err
	}
	if err := sess.Complete(); err != nil {
		return nil, err
	}

	artifact, err := adapter.ProduceArtifact(ctx, matchID, req.Seed, req.Participants, inputs, run.Outputs)
	if err != nil {
		return nil, fmt.Errorf("produceArtifact: %w", err)
	}

	record := &store.MatchRecord{
		MatchID:  matchID,
		Artifact: artifact,
		Snapshot: decision.Snapshot,
		SavedAt:  o.clock().UTC(),
	}
	if err := o.store.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("persist artifact: %w", err)
	}

	logger.Info("match completed",
		"winner", artifact.Result.WinnerParticipantID,
		"hash", artifact.DeterministicHash.Value)
	if o.bus != nil {
		o.bus.Publish(contracts.EventMatchCompleted, matchID, artifact.Clone(), nil)
	}

	return &MatchOutcome{
		OK:       true,
		MatchID:  matchID,
		Artifact: artifact,
		Snapshot: decision.Snapshot,
	}, nil
}

// recordRun mirrors the engine's run outputs into the session timeline and
// battle outcome so the session's record matches the artifact's.
func recordRun(sess *session.Session, outputs map[string]any) error {
	if timeline, ok := outputs["timeline"].([]any); ok {
		for _, raw := range timeline {
			entry, _ := raw.(map[string]any)
			code, _ := entry["code"].(string)
			participant, _ := entry["participantId"].(string)
			if _, err := sess.AppendTimelineEvent(code, participant, nil, nil); err != nil {
				return err
			}
		}
	}

	outcome := contracts.BattleOutcome{}
	outcome.Winner, _ = outputs["winner"].(string)
	outcome.WinReason, _ = outputs["winReason"].(string)
	if n, ok := asInt(outputs["totalBattles"]); ok {
		outcome.TotalBattles = n
	}
	if n, ok := asInt(outputs["finalCoinCount"]); ok {
		outcome.FinalCoinCount = &n
	}
	return sess.SetBattleOutcome(outcome)
}

func (o *Orchestrator) failed(matchID string, outcome *MatchOutcome) *MatchOutcome {
	if o.bus != nil {
		o.bus.Publish(contracts.EventMatchFailed, matchID, outcome, nil)
	}
	return outcome
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
