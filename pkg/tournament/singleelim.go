package tournament

import (
	"sort"

	"github.com/quarrylabs/matchspine/pkg/contracts"
)

// DeriveSingleElimination computes standings and bracket progress for a
// single-elimination tournament. The tournament's schedule is the bracket
// spine; a slot is completed iff its matchId has a matching artifact.
//
// A slot winner is derived with the shared outcome precedence but collapsed
// to "no winner" when the precedence yields a multi-way tie — single
// elimination cannot have a tied slot winner.
func DeriveSingleElimination(t *contracts.TournamentV1, artifacts []*contracts.MatchArtifact) (*Derivation, error) {
	if err := guardBinding(t, artifacts); err != nil {
		return nil, err
	}

	byMatch := make(map[string]*contracts.MatchArtifact, len(artifacts))
	for _, a := range artifacts {
		byMatch[a.Header.MatchID] = a
	}

	rows := make(map[string]*contracts.StandingsRow, len(t.Participants))
	for _, id := range t.Participants {
		rows[id] = &contracts.StandingsRow{ParticipantID: id}
	}

	slots := append([]contracts.ScheduleSlot(nil), t.Schedule...)
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].Round != slots[j].Round {
			return slots[i].Round < slots[j].Round
		}
		if slots[i].Position != slots[j].Position {
			return slots[i].Position < slots[j].Position
		}
		return slots[i].SlotID < slots[j].SlotID
	})

	var counted []string
	views := make(map[int][]SlotView)
	var roundNums []int
	completed := 0

	for _, slot := range slots {
		view := SlotView{
			SlotID:         slot.SlotID,
			Position:       slot.Position,
			MatchID:        slot.MatchID,
			ParticipantIDs: append([]string(nil), slot.ParticipantIDs...),
		}

		if a, ok := byMatch[slot.MatchID]; ok && slot.MatchID != "" {
			view.Completed = true
			completed++
			counted = append(counted, a.Header.MatchID)

			out := deriveOutcome(a)
			if out.counted && len(out.winners) == 1 {
				winner := out.winners[0]
				view.WinnerParticipantID = winner
				if row := rows[winner]; row != nil {
					row.Wins++
					row.Points += winPoints
				}
				for _, id := range a.ParticipantIDs() {
					if id == winner {
						continue
					}
					if row := rows[id]; row != nil {
						row.Losses++
					}
				}
			}
		}

		if _, seen := views[slot.Round]; !seen {
			roundNums = append(roundNums, slot.Round)
		}
		views[slot.Round] = append(views[slot.Round], view)
	}

	sort.Ints(roundNums)
	rounds := make([]RoundView, 0, len(roundNums))
	for _, n := range roundNums {
		rounds = append(rounds, RoundView{Round: n, Slots: views[n]})
	}

	champion := deriveChampion(rounds)

	standings := make([]contracts.StandingsRow, 0, len(rows))
	for _, row := range rows {
		standings = append(standings, *row)
	}
	sortStandings(standings)

	return &Derivation{
		Standings: standings,
		Progress: Progress{
			MatchesPlanned:        len(slots),
			MatchesCompleted:      completed,
			Rounds:                rounds,
			ChampionParticipantID: champion,
			Complete:              champion != "",
		},
		SourceArtifacts: counted,
	}, nil
}

// deriveChampion returns a champion only when the highest-numbered round
// has exactly one completed slot with exactly one winner.
func deriveChampion(rounds []RoundView) string {
	if len(rounds) == 0 {
		return ""
	}
	final := rounds[len(rounds)-1]
	var winners []string
	completed := 0
	for _, slot := range final.Slots {
		if !slot.Completed {
			continue
		}
		completed++
		if slot.WinnerParticipantID != "" {
			winners = append(winners, slot.WinnerParticipantID)
		}
	}
	if completed == 1 && len(winners) == 1 {
		return winners[0]
	}
	return ""
}
