// Package contracts defines the shared data model of the match platform:
// session pointers and snapshots, timeline events, match artifacts,
// engine manifests, tournaments, and universe integrations.
//
// Everything downstream systems consume crosses one of these types. The
// MatchArtifact in particular is the only object tournament, audit, and
// reward logic may read — never live engine state.
package contracts

import "time"

// Digest is a versioned hash value. The algorithm label and the hashed
// content can evolve independently.
type Digest struct {
	Algo  string `json:"algo"`
	Value string `json:"value"`
}

// ArtifactHeader binds an artifact to the universe, engine, and mode that
// produced it. Tournament derivation matches artifacts against this header
// exactly.
type ArtifactHeader struct {
	UniverseCode  string    `json:"universeCode"`
	EngineCode    string    `json:"engineCode"`
	EngineVersion string    `json:"engineVersion"`
	ModeCode      string    `json:"modeCode"`
	MatchID       string    `json:"matchId"`
	StartedAt     time.Time `json:"startedAt"`
	CompletedAt   time.Time `json:"completedAt"`
}

// MatchResult is the outcome section of an artifact. All fields are
// optional; derivers apply a fixed precedence (winner, then placements,
// then scores) when reading it.
type MatchResult struct {
	WinnerParticipantID     string             `json:"winnerParticipantId,omitempty"`
	PlacementByParticipant  map[string]int     `json:"placementByParticipantId,omitempty"`
	ScoresByParticipantID   map[string]float64 `json:"scoresByParticipantId,omitempty"`
	OutcomeFlags            []string           `json:"outcomeFlags,omitempty"`
}

// ReplayEnvelope carries whatever an engine needs to re-run the match.
// The payload is opaque to the platform.
type ReplayEnvelope struct {
	Version string         `json:"version"`
	Payload map[string]any `json:"payload,omitempty"`
}

// MatchArtifact is the standardized, hash-verifiable receipt of a completed
// match. Once produced it is a value type: copied, never mutated.
type MatchArtifact struct {
	Header            ArtifactHeader  `json:"header"`
	Participants      []Participant   `json:"participants"`
	Seed              int64           `json:"seed"`
	InputsDigest      Digest          `json:"inputsDigest"`
	Timeline          []TimelineEvent `json:"timeline,omitempty"`
	Result            MatchResult     `json:"result"`
	DeterministicHash Digest          `json:"deterministicHash"`
	Replay            ReplayEnvelope  `json:"replay"`
	// PlatformMeta may vary run-to-run and is excluded from the
	// determinism bundle.
	PlatformMeta map[string]any `json:"platformMeta,omitempty"`
}

// Participant identifies one entrant in a match.
type Participant struct {
	ParticipantID string         `json:"participantId"`
	DeckID        string         `json:"deckId,omitempty"`
	Extra         map[string]any `json:"extra,omitempty"`
}

// ParticipantIDs returns the participant ids in artifact order.
func (a *MatchArtifact) ParticipantIDs() []string {
	ids := make([]string, len(a.Participants))
	for i, p := range a.Participants {
		ids[i] = p.ParticipantID
	}
	return ids
}

// Clone returns a deep copy of the artifact so callers can hold it without
// aliasing the producer's memory.
func (a *MatchArtifact) Clone() *MatchArtifact {
	cp := *a
	cp.Participants = make([]Participant, len(a.Participants))
	for i, p := range a.Participants {
		cp.Participants[i] = p
		cp.Participants[i].Extra = cloneMap(p.Extra)
	}
	cp.Timeline = make([]TimelineEvent, len(a.Timeline))
	for i, ev := range a.Timeline {
		cp.Timeline[i] = ev
		cp.Timeline[i].Metrics = cloneFloatMap(ev.Metrics)
		cp.Timeline[i].Extra = cloneMap(ev.Extra)
	}
	cp.Result.PlacementByParticipant = cloneIntMap(a.Result.PlacementByParticipant)
	cp.Result.ScoresByParticipantID = cloneFloatMap(a.Result.ScoresByParticipantID)
	cp.Result.OutcomeFlags = append([]string(nil), a.Result.OutcomeFlags...)
	cp.Replay.Payload = cloneMap(a.Replay.Payload)
	cp.PlatformMeta = cloneMap(a.PlatformMeta)
	return &cp
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneIntMap(m map[string]int) map[string]int {
	if m == nil {
		return nil
	}
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneFloatMap(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
