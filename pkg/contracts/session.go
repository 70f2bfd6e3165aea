package contracts

import "time"

// VersionedRef identifies a registry record by id and version.
type VersionedRef struct {
	ID      string `json:"id"`
	Version string `json:"version"`
}

// SessionPointer identifies what rules a match runs under. It is mutable
// only while the session is in its initial phase and frozen thereafter.
type SessionPointer struct {
	Format   VersionedRef  `json:"format"`
	GameMode VersionedRef  `json:"gameMode"`
	Ruleset  *VersionedRef `json:"ruleset,omitempty"`
}

// SessionSnapshot holds resolved, immutable copies of the format and
// game-mode records, captured exactly once when the session enters setup.
// It is never recomputed or replaced.
type SessionSnapshot struct {
	Format   RegistryRecord  `json:"format"`
	GameMode RegistryRecord  `json:"gameMode"`
	Ruleset  *RegistryRecord `json:"ruleset,omitempty"`
	FrozenAt time.Time       `json:"frozenAt"`
}

// RegistryRecord is a resolved configuration record from the format or
// game-mode registry.
type RegistryRecord struct {
	ID                  string         `json:"id"`
	Version             string         `json:"version"`
	Name                string         `json:"name,omitempty"`
	EngineCompatVersion string         `json:"engineCompatVersion,omitempty"`
	Data                map[string]any `json:"data,omitempty"`
}

// TimelineEvent is one entry in a session's append-only timeline. Idx is
// assigned by the state machine at append time, never by the caller. At is
// derived deterministically from the seed and match id, never wall clock.
type TimelineEvent struct {
	Idx           int                `json:"idx"`
	Code          string             `json:"code"`
	At            int64              `json:"at"`
	ParticipantID string             `json:"participantId,omitempty"`
	Metrics       map[string]float64 `json:"metrics,omitempty"`
	Extra         map[string]any     `json:"extra,omitempty"`
}

// BattleOutcome is the terminal result of a session's battle loop. Set at
// most once per session.
type BattleOutcome struct {
	Winner         string `json:"winner"`
	TotalBattles   int    `json:"totalBattles"`
	WinReason      string `json:"winReason"`
	FinalCoinCount *int   `json:"finalCoinCount,omitempty"`
}
