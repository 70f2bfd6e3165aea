// Package tournament derives standings and bracket progress strictly from
// match artifacts. Both derivers are pure functions over
// (tournament, artifacts); they never call an engine and hold no state
// between calls.
package tournament

import (
	"fmt"
	"sort"

	"github.com/quarrylabs/matchspine/pkg/contracts"
)

// BindingError reports an artifact whose header does not match the
// tournament's locked binding. It is fatal: an artifact from the wrong
// binding must never silently count.
type BindingError struct {
	TournamentID string
	MatchID      string
	Field        string
	Want         string
	Got          string
}

func (e *BindingError) Error() string {
	return fmt.Sprintf("tournament %s: artifact %s binding mismatch on %s: want %q, got %q",
		e.TournamentID, e.MatchID, e.Field, e.Want, e.Got)
}

// Derivation is the combined output of a derivation call. It is produced
// fresh every time and never cached inside the deriver.
type Derivation struct {
	Standings       []contracts.StandingsRow `json:"standings"`
	Progress        Progress                 `json:"progress"`
	SourceArtifacts []string                 `json:"sourceArtifacts"`
}

// Progress is the bracket/schedule completion view.
type Progress struct {
	MatchesPlanned        int         `json:"matchesPlanned"`
	MatchesCompleted      int         `json:"matchesCompleted"`
	Rounds                []RoundView `json:"rounds,omitempty"`
	ChampionParticipantID string      `json:"championParticipantId,omitempty"`
	Complete              bool        `json:"complete"`
}

// RoundView groups completed and pending slots for one bracket round.
type RoundView struct {
	Round int        `json:"round"`
	Slots []SlotView `json:"slots"`
}

// SlotView is the derived state of one schedule slot.
type SlotView struct {
	SlotID              string   `json:"slotId"`
	Position            int      `json:"position"`
	MatchID             string   `json:"matchId,omitempty"`
	ParticipantIDs      []string `json:"participantIds,omitempty"`
	Completed           bool     `json:"completed"`
	WinnerParticipantID string   `json:"winnerParticipantId,omitempty"`
}

// Derive dispatches on the tournament structure.
func Derive(t *contracts.TournamentV1, artifacts []*contracts.MatchArtifact) (*Derivation, error) {
	switch t.Header.Structure {
	case contracts.StructureRoundRobin:
		return DeriveRoundRobin(t, artifacts)
	case contracts.StructureSingleElimination:
		return DeriveSingleElimination(t, artifacts)
	default:
		return nil, fmt.Errorf("tournament %s: unknown structure %q", t.Header.TournamentID, t.Header.Structure)
	}
}

// guardBinding checks every artifact against the tournament's locked
// binding before anything is counted.
func guardBinding(t *contracts.TournamentV1, artifacts []*contracts.MatchArtifact) error {
	for _, a := range artifacts {
		fields := []struct {
			name string
			want string
			got  string
		}{
			{"universeCode", t.Header.UniverseCode, a.Header.UniverseCode},
			{"engineCode", t.Header.EngineCode, a.Header.EngineCode},
			{"engineVersion", t.Header.EngineVersion, a.Header.EngineVersion},
			{"modeCode", t.Header.ModeCode, a.Header.ModeCode},
		}
		for _, f := range fields {
			if f.want != f.got {
				return &BindingError{
					TournamentID: t.Header.TournamentID,
					MatchID:      a.Header.MatchID,
					Field:        f.name,
					Want:         f.want,
					Got:          f.got,
				}
			}
		}
	}
	return nil
}

// outcome is the result of reading one artifact with the fixed precedence:
// explicit winner, then minimum placement group, then maximum score group.
// counted=false means the artifact contributes nothing.
type outcome struct {
	winners []string
	losers  []string
	counted bool
}

func deriveOutcome(a *contracts.MatchArtifact) outcome {
	ids := a.ParticipantIDs()

	if w := a.Result.WinnerParticipantID; w != "" {
		return outcome{winners: []string{w}, losers: exclude(ids, []string{w}), counted: true}
	}

	if len(a.Result.PlacementByParticipant) > 0 {
		best := 0
		first := true
		for _, place := range a.Result.PlacementByParticipant {
			if first || place < best {
				best = place
				first = false
			}
		}
		var group []string
		for id, place := range a.Result.PlacementByParticipant {
			if place == best {
				group = append(group, id)
			}
		}
		sort.Strings(group)
		return outcome{winners: group, losers: exclude(ids, group), counted: true}
	}

	if len(a.Result.ScoresByParticipantID) > 0 {
		best := 0.0
		first := true
		for _, score := range a.Result.ScoresByParticipantID {
			if first || score > best {
				best = score
				first = false
			}
		}
		var group []string
		for id, score := range a.Result.ScoresByParticipantID {
			if score == best {
				group = append(group, id)
			}
		}
		sort.Strings(group)
		return outcome{winners: group, losers: exclude(ids, group), counted: true}
	}

	return outcome{}
}

func exclude(ids, remove []string) []string {
	removed := make(map[string]bool, len(remove))
	for _, id := range remove {
		removed[id] = true
	}
	var out []string
	for _, id := range ids {
		if !removed[id] {
			out = append(out, id)
		}
	}
	return out
}

// sortStandings orders rows points desc, wins desc, participantId asc. The
// id tie-break keeps output deterministic regardless of insertion order.
func sortStandings(rows []contracts.StandingsRow) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Points != rows[j].Points {
			return rows[i].Points > rows[j].Points
		}
		if rows[i].Wins != rows[j].Wins {
			return rows[i].Wins > rows[j].Wins
		}
		return rows[i].ParticipantID < rows[j].ParticipantID
	})
}
