package contracts

// TournamentStructure names the bracket shape of a tournament.
type TournamentStructure string

const (
	StructureRoundRobin        TournamentStructure = "ROUND_ROBIN"
	StructureSingleElimination TournamentStructure = "SINGLE_ELIMINATION"
)

// TournamentHeader locks a tournament to one universe/engine/mode binding.
// Every artifact considered for the tournament must match it exactly.
type TournamentHeader struct {
	TournamentID  string              `json:"tournamentId"`
	UniverseCode  string              `json:"universeCode"`
	EngineCode    string              `json:"engineCode"`
	EngineVersion string              `json:"engineVersion"`
	ModeCode      string              `json:"modeCode"`
	Structure     TournamentStructure `json:"structure"`
}

// ScheduleSlot is one planned match in a bracket. Round and position place
// it in the bracket spine; MatchID links it to an artifact once played.
type ScheduleSlot struct {
	SlotID         string   `json:"slotId"`
	Round          int      `json:"round"`
	Position       int      `json:"position"`
	ParticipantIDs []string `json:"participantIds,omitempty"`
	MatchID        string   `json:"matchId,omitempty"`
}

// TournamentV1 is the tournament record consumed by the derivers.
type TournamentV1 struct {
	Header        TournamentHeader `json:"header"`
	Participants  []string         `json:"participants"`
	Schedule      []ScheduleSlot   `json:"schedule,omitempty"`
	ArtifactIndex []string         `json:"artifactIndex,omitempty"`
}

// StandingsRow is one participant's derived record. Rows are produced fresh
// on every derivation call and never persisted inside the deriver.
type StandingsRow struct {
	ParticipantID string    `json:"participantId"`
	Wins          int       `json:"wins"`
	Losses        int       `json:"losses"`
	Ties          int       `json:"ties"`
	Points        float64   `json:"points"`
	TieBreakers   []float64 `json:"tieBreakers,omitempty"`
}
