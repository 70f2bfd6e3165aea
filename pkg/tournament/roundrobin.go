package tournament

import (
	"github.com/quarrylabs/matchspine/pkg/contracts"
)

// Round-robin scoring: win 1 point, tie 0.5, loss 0.
const (
	winPoints = 1.0
	tiePoints = 0.5
)

// DeriveRoundRobin computes standings for a round-robin tournament. Every
// artifact is read with the outcome precedence of deriveOutcome; artifacts
// that yield no outcome are excluded from SourceArtifacts.
func DeriveRoundRobin(t *contracts.TournamentV1, artifacts []*contracts.MatchArtifact) (*Derivation, error) {
	if err := guardBinding(t, artifacts); err != nil {
		return nil, err
	}

	rows := make(map[string]*contracts.StandingsRow, len(t.Participants))
	for _, id := range t.Participants {
		rows[id] = &contracts.StandingsRow{ParticipantID: id}
	}

	var counted []string
	for _, a := range artifacts {
		out := deriveOutcome(a)
		if !out.counted {
			continue
		}
		counted = append(counted, a.Header.MatchID)

		if len(out.winners) == 1 {
			if row := rows[out.winners[0]]; row != nil {
				row.Wins++
				row.Points += winPoints
			}
		} else {
			// A multi-way winner group is a tie group.
			for _, id := range out.winners {
				if row := rows[id]; row != nil {
					row.Ties++
					row.Points += tiePoints
				}
			}
		}
		for _, id := range out.losers {
			if row := rows[id]; row != nil {
				row.Losses++
			}
		}
	}

	standings := make([]contracts.StandingsRow, 0, len(rows))
	for _, row := range rows {
		standings = append(standings, *row)
	}
	sortStandings(standings)

	planned := len(t.Schedule)
	if planned == 0 {
		// Without a schedule, all pairings are implied: n choose 2.
		n := len(t.Participants)
		planned = n * (n - 1) / 2
	}

	return &Derivation{
		Standings: standings,
		Progress: Progress{
			MatchesPlanned:   planned,
			MatchesCompleted: len(counted),
			Complete:         planned > 0 && len(counted) >= planned,
		},
		SourceArtifacts: counted,
	}, nil
}
