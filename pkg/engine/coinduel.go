package engine

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/quarrylabs/matchspine/pkg/canonicalize"
	"github.com/quarrylabs/matchspine/pkg/contracts"
)

// CoinDuelCode and CoinDuelVersion identify the reference stub engine.
const (
	CoinDuelCode    = "COINDUEL"
	CoinDuelVersion = "1.0.0"
)

// coinsToWin is the number of coin wins that ends a duel.
const coinsToWin = 3

// CoinDuel is the reference engine shipped with the platform. It is a stub:
// no real game rules, just seeded coin flips. Its purpose is to exercise the
// adapter protocol end to end and to serve as a fully deterministic fixture
// for conformance and platform tests.
type CoinDuel struct {
	clock func() time.Time
}

// NewCoinDuel constructs the stub engine.
func NewCoinDuel() *CoinDuel {
	return &CoinDuel{clock: time.Now}
}

// WithClock overrides the wall clock used for artifact header timestamps.
func (e *CoinDuel) WithClock(clock func() time.Time) *CoinDuel {
	e.clock = clock
	return e
}

// Manifest declares the stub's supported surface.
func (e *CoinDuel) Manifest() contracts.EngineManifest {
	return contracts.EngineManifest{
		EngineCode:    CoinDuelCode,
		EngineVersion: CoinDuelVersion,
		Universes:     []string{"*"},
		Modes:         []string{"DUEL"},
		Determinism:   contracts.DeterminismFull,
		Sandbox:       contracts.SandboxHints{TimeoutMs: 5000},
	}
}

// ValidateDeck accepts any non-empty deck and flags duplicate card keys.
func (e *CoinDuel) ValidateDeck(_ context.Context, cardKeys []string, _ map[string]any) (*ValidationResult, error) {
	if len(cardKeys) == 0 {
		return &ValidationResult{
			OK:     false,
			Errors: []ProtocolError{{Code: "DECK_EMPTY", Message: "deck has no cards"}},
		}, nil
	}
	seen := make(map[string]bool, len(cardKeys))
	var warnings []string
	for _, key := range cardKeys {
		if seen[key] {
			warnings = append(warnings, fmt.Sprintf("duplicate card key %q", key))
		}
		seen[key] = true
	}
	return &ValidationResult{OK: true, Warnings: warnings}, nil
}

// CreateMatch checks the fixture shape and returns the initial state.
func (e *CoinDuel) CreateMatch(_ context.Context, matchID string, participants []contracts.Participant, seed int64, _ map[string]any) (*CreateResult, error) {
	if len(participants) != 2 {
		return &CreateResult{
			OK: false,
			Errors: []ProtocolError{{
				Code:    "PARTICIPANT_COUNT",
				Message: "coin duel requires exactly two participants",
				Details: map[string]any{"got": len(participants)},
			}},
		}, nil
	}
	return &CreateResult{
		OK: true,
		State: map[string]any{
			"matchId":      matchID,
			"seed":         seed,
			"participants": []any{participants[0].ParticipantID, participants[1].ParticipantID},
			"phase":        "READY",
		},
	}, nil
}

// RunMatch replays the duel purely from {seed, matchId, state}.
func (e *CoinDuel) RunMatch(_ context.Context, matchID string, seed int64, state map[string]any, _ map[string]any) (*RunResult, error) {
	ids, err := stateParticipants(state)
	if err != nil {
		return &RunResult{
			OK:     false,
			Errors: []ProtocolError{{Code: "BAD_STATE", Message: err.Error()}},
		}, nil
	}

	rng := newDuelRNG(seed, matchID)
	coins := map[string]int{ids[0]: 0, ids[1]: 0}
	var timeline []any
	battles := 0
	for coins[ids[0]] < coinsToWin && coins[ids[1]] < coinsToWin {
		battles++
		winner := ids[rng.next()%2]
		coins[winner]++
		timeline = append(timeline, map[string]any{
			"code":          "BATTLE_RESOLVED",
			"participantId": winner,
			"battle":        battles,
			"coins":         coins[winner],
		})
	}

	winner := ids[0]
	if coins[ids[1]] > coins[ids[0]] {
		winner = ids[1]
	}
	return &RunResult{
		OK: true,
		Outputs: map[string]any{
			"winner":         winner,
			"totalBattles":   battles,
			"winReason":      "COIN_MAJORITY",
			"finalCoinCount": coins[winner],
			"scores": map[string]any{
				ids[0]: coins[ids[0]],
				ids[1]: coins[ids[1]],
			},
			"timeline": timeline,
		},
	}, nil
}

// ProduceArtifact assembles the standardized receipt from the run outputs.
// Called twice with identical inputs it yields an identical deterministic
// hash; that property is what conformance certifies.
func (e *CoinDuel) ProduceArtifact(_ context.Context, matchID string, seed int64, participants []contracts.Participant, inputs map[string]any, outputs map[string]any) (*contracts.MatchArtifact, error) {
	inputsDigest, err := canonicalize.InputsDigest(inputs)
	if err != nil {
		return nil, fmt.Errorf("inputs digest: %w", err)
	}

	now := e.clock().UTC()
	artifact := &contracts.MatchArtifact{
		Header: contracts.ArtifactHeader{
			UniverseCode:  stringField(inputs, "universeCode"),
			EngineCode:    CoinDuelCode,
			EngineVersion: CoinDuelVersion,
			ModeCode:      stringField(inputs, "modeCode"),
			MatchID:       matchID,
			StartedAt:     now,
			CompletedAt:   now,
		},
		Participants: append([]contracts.Participant(nil), participants...),
		Seed:         seed,
		InputsDigest: inputsDigest,
		Result: contracts.MatchResult{
			WinnerParticipantID:   stringField(outputs, "winner"),
			ScoresByParticipantID: scoreMap(outputs["scores"]),
		},
		Replay: contracts.ReplayEnvelope{
			Version: "coinduel/1",
			Payload: map[string]any{"seed": seed, "matchId": matchID},
		},
	}

	for i, raw := range sliceField(outputs, "timeline") {
		entry, _ := raw.(map[string]any)
		artifact.Timeline = append(artifact.Timeline, contracts.TimelineEvent{
			Idx:           i,
			Code:          stringField(entry, "code"),
			At:            tick(seed, matchID, i),
			ParticipantID: stringField(entry, "participantId"),
		})
	}

	hash, err := canonicalize.DeterministicHash(artifact, canonicalize.BundleOptions{IncludeTimeline: true})
	if err != nil {
		return nil, fmt.Errorf("deterministic hash: %w", err)
	}
	artifact.DeterministicHash = hash
	return artifact, nil
}

// duelRNG is a splitmix64 stream seeded from {seed, matchId}.
type duelRNG struct{ state uint64 }

func newDuelRNG(seed int64, matchID string) *duelRNG {
	h := fnv.New64a()
	h.Write([]byte(matchID))
	return &duelRNG{state: uint64(seed) ^ h.Sum64()}
}

func (r *duelRNG) next() int {
	r.state += 0x9e3779b97f4a7c15
	z := r.state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return int((z ^ (z >> 31)) & 0x7fffffff)
}

func tick(seed int64, matchID string, idx int) int64 {
	h := fnv.New64a()
	h.Write([]byte(matchID))
	return (int64(h.Sum64()^uint64(seed)) & 0x7fffffffffff) + int64(idx)
}

func stateParticipants(state map[string]any) ([]string, error) {
	raw, ok := state["participants"].([]any)
	if !ok || len(raw) != 2 {
		return nil, fmt.Errorf("state missing two participants")
	}
	ids := make([]string, 2)
	for i, v := range raw {
		s, ok := v.(string)
		if !ok || s == "" {
			return nil, fmt.Errorf("participant %d is not a string id", i)
		}
		ids[i] = s
	}
	return ids, nil
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func sliceField(m map[string]any, key string) []any {
	s, _ := m[key].([]any)
	return s
}

func scoreMap(v any) map[string]float64 {
	raw, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]float64, len(raw))
	for k, val := range raw {
		switch n := val.(type) {
		case float64:
			out[k] = n
		case int:
			out[k] = float64(n)
		}
	}
	return out
}
