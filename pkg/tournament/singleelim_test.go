package tournament

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrylabs/matchspine/pkg/contracts"
)

func seTournament() *contracts.TournamentV1 {
	return &contracts.TournamentV1{
		Header: contracts.TournamentHeader{
			TournamentID:  "t-se",
			UniverseCode:  "BOBA",
			EngineCode:    "COINDUEL",
			EngineVersion: "1.0.0",
			ModeCode:      "DUEL",
			Structure:     contracts.StructureSingleElimination,
		},
		Participants: []string{"P1", "P2", "P3", "P4"},
		Schedule: []contracts.ScheduleSlot{
			{SlotID: "QF1", Round: 1, Position: 1, ParticipantIDs: []string{"P1", "P2"}, MatchID: "M_QF1"},
			{SlotID: "QF2", Round: 1, Position: 2, ParticipantIDs: []string{"P3", "P4"}, MatchID: "M_QF2"},
			{SlotID: "FINAL", Round: 2, Position: 1, MatchID: "M_FINAL"},
		},
	}
}

func TestDeriveSingleElimination_IncompleteFinal(t *testing.T) {
	artifacts := []*contracts.MatchArtifact{
		wonBy("M_QF1", "P1", "P1", "P2"),
		wonBy("M_QF2", "P3", "P3", "P4"),
	}

	derivation, err := DeriveSingleElimination(seTournament(), artifacts)
	require.NoError(t, err)

	assert.Equal(t, 2, derivation.Progress.MatchesCompleted)
	assert.Equal(t, 3, derivation.Progress.MatchesPlanned)
	assert.Empty(t, derivation.Progress.ChampionParticipantID)
	assert.False(t, derivation.Progress.Complete)

	byID := rowsByID(derivation.Standings)
	assert.Equal(t, 1, byID["P1"].Wins)
	assert.Equal(t, 1, byID["P3"].Wins)
	assert.Equal(t, 1, byID["P2"].Losses)
	assert.Equal(t, 1, byID["P4"].Losses)
}

func TestDeriveSingleElimination_ChampionFromCompletedFinal(t *testing.T) {
	artifacts := []*contracts.MatchArtifact{
		wonBy("M_QF1", "P1", "P1", "P2"),
		wonBy("M_QF2", "P3", "P3", "P4"),
		wonBy("M_FINAL", "P3", "P1", "P3"),
	}

	derivation, err := DeriveSingleElimination(seTournament(), artifacts)
	require.NoError(t, err)

	assert.Equal(t, "P3", derivation.Progress.ChampionParticipantID)
	assert.True(t, derivation.Progress.Complete)

	byID := rowsByID(derivation.Standings)
	assert.Equal(t, 2, byID["P3"].Wins)
	assert.InDelta(t, 2.0, byID["P3"].Points, 0)
	assert.Equal(t, 1, byID["P1"].Wins)
	assert.Equal(t, 1, byID["P1"].Losses)

	// Standings lead with the champion.
	assert.Equal(t, "P3", derivation.Standings[0].ParticipantID)
}

func TestDeriveSingleElimination_TiedSlotHasNoWinner(t *testing.T) {
	tournament := seTournament()
	tied := boundArtifact("M_QF1", []string{"P1", "P2"})
	tied.Result.ScoresByParticipantID = map[string]float64{"P1": 2, "P2": 2}

	derivation, err := DeriveSingleElimination(tournament, []*contracts.MatchArtifact{tied})
	require.NoError(t, err)

	require.Len(t, derivation.Progress.Rounds, 2)
	slot := derivation.Progress.Rounds[0].Slots[0]
	assert.True(t, slot.Completed)
	assert.Empty(t, slot.WinnerParticipantID)

	// A tied slot awards nothing.
	byID := rowsByID(derivation.Standings)
	assert.Zero(t, byID["P1"].Wins)
	assert.Zero(t, byID["P2"].Wins)
}

func TestDeriveSingleElimination_ProgressOrdering(t *testing.T) {
	tournament := seTournament()
	// Shuffle the schedule: the view must still sort round asc, position asc.
	tournament.Schedule = []contracts.ScheduleSlot{
		tournament.Schedule[2],
		tournament.Schedule[1],
		tournament.Schedule[0],
	}

	derivation, err := DeriveSingleElimination(tournament, nil)
	require.NoError(t, err)

	require.Len(t, derivation.Progress.Rounds, 2)
	assert.Equal(t, 1, derivation.Progress.Rounds[0].Round)
	assert.Equal(t, "QF1", derivation.Progress.Rounds[0].Slots[0].SlotID)
	assert.Equal(t, "QF2", derivation.Progress.Rounds[0].Slots[1].SlotID)
	assert.Equal(t, 2, derivation.Progress.Rounds[1].Round)
}

func TestDeriveSingleElimination_BindingMismatchFatal(t *testing.T) {
	rogue := wonBy("M_QF1", "P1", "P1", "P2")
	rogue.Header.UniverseCode = "NOT_BOBA"

	_, err := DeriveSingleElimination(seTournament(), []*contracts.MatchArtifact{rogue})

	var binding *BindingError
	require.ErrorAs(t, err, &binding)
	assert.Equal(t, "universeCode", binding.Field)
}

func TestDerive_DispatchesOnStructure(t *testing.T) {
	rr := rrTournament("P1", "P2")
	_, err := Derive(rr, nil)
	require.NoError(t, err)

	se := seTournament()
	_, err = Derive(se, nil)
	require.NoError(t, err)

	unknown := rrTournament("P1")
	unknown.Header.Structure = "DOUBLE_ELIM"
	_, err = Derive(unknown, nil)
	assert.Error(t, err)
}
