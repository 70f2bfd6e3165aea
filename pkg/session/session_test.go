package session

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrylabs/matchspine/pkg/contracts"
)

type staticResolver struct{}

func (staticResolver) Resolve(pointer contracts.SessionPointer) (*contracts.SessionSnapshot, error) {
	return &contracts.SessionSnapshot{
		Format:   contracts.RegistryRecord{ID: pointer.Format.ID, Version: pointer.Format.Version},
		GameMode: contracts.RegistryRecord{ID: pointer.GameMode.ID, Version: pointer.GameMode.Version},
	}, nil
}

func newTestSession() *Session {
	pointer := contracts.SessionPointer{
		Format:   contracts.VersionedRef{ID: "standard", Version: "1"},
		GameMode: contracts.VersionedRef{ID: "duel", Version: "1"},
	}
	s := New("s-1", "m-1", 42, pointer)
	s.WithClock(func() time.Time { return time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC) })
	return s
}

func TestBeginSetup_FreezesSnapshotOnce(t *testing.T) {
	s := newTestSession()
	require.Equal(t, PhaseCreated, s.Phase())

	require.NoError(t, s.BeginSetup(staticResolver{}))
	assert.Equal(t, PhaseSetup, s.Phase())
	require.NotNil(t, s.Snapshot())
	assert.Equal(t, "standard", s.Snapshot().Format.ID)

	err := s.BeginSetup(staticResolver{})
	var inv *InvariantError
	require.ErrorAs(t, err, &inv)
	assert.Equal(t, "BeginSetup", inv.Op)
}

func TestSetPointer_FrozenAfterSetup(t *testing.T) {
	s := newTestSession()
	require.NoError(t, s.SetPointer(s.Pointer()))

	require.NoError(t, s.BeginSetup(staticResolver{}))

	err := s.SetPointer(contracts.SessionPointer{})
	var inv *InvariantError
	require.ErrorAs(t, err, &inv)
	assert.Equal(t, PhaseSetup, inv.Phase)
}

func TestAppendTimelineEvent_AssignsMonotonicIdx(t *testing.T) {
	s := newTestSession()
	require.NoError(t, s.BeginSetup(staticResolver{}))
	require.NoError(t, s.Transition(PhaseBattleLoop))

	first, err := s.AppendTimelineEvent("BATTLE_RESOLVED", "P1", nil, nil)
	require.NoError(t, err)
	second, err := s.AppendTimelineEvent("BATTLE_RESOLVED", "P2", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 0, first.Idx)
	assert.Equal(t, 1, second.Idx)
	assert.Equal(t, first.At+1, second.At)
	assert.Len(t, s.Timeline(), 2)
}

func TestAppendTimelineEvent_WrongPhase(t *testing.T) {
	s := newTestSession()

	_, err := s.AppendTimelineEvent("EARLY", "", nil, nil)
	var inv *InvariantError
	require.ErrorAs(t, err, &inv)
	assert.Equal(t, PhaseCreated, inv.Phase)
	assert.Contains(t, inv.Error(), "AppendTimelineEvent")
}

func TestEventTick_Deterministic(t *testing.T) {
	a := EventTick(42, "m-1", 0)
	b := EventTick(42, "m-1", 0)
	assert.Equal(t, a, b)

	assert.NotEqual(t, a, EventTick(43, "m-1", 0))
	assert.NotEqual(t, a, EventTick(42, "m-2", 0))
	assert.Equal(t, a+5, EventTick(42, "m-1", 5))
}

func TestSetBattleOutcome_WriteOnce(t *testing.T) {
	s := newTestSession()
	require.NoError(t, s.BeginSetup(staticResolver{}))
	require.NoError(t, s.Transition(PhaseBattleLoop))

	outcome := contracts.BattleOutcome{Winner: "P1", TotalBattles: 3, WinReason: "COIN_MAJORITY"}
	require.NoError(t, s.SetBattleOutcome(outcome))

	err := s.SetBattleOutcome(outcome)
	var inv *InvariantError
	require.ErrorAs(t, err, &inv)
	assert.Equal(t, "SetBattleOutcome", inv.Op)
}

func TestComplete_RequiresOutcome(t *testing.T) {
	s := newTestSession()
	require.NoError(t, s.BeginSetup(staticResolver{}))
	require.NoError(t, s.Transition(PhaseBattleLoop))

	err := s.Complete()
	var inv *InvariantError
	require.ErrorAs(t, err, &inv)

	require.NoError(t, s.SetBattleOutcome(contracts.BattleOutcome{Winner: "P1", TotalBattles: 1, WinReason: "X"}))
	require.NoError(t, s.Complete())
	assert.Equal(t, PhaseComplete, s.Phase())

	// No transitions out of COMPLETE.
	assert.Error(t, s.Transition(PhaseBattleLoop))
	_, err = s.AppendTimelineEvent("LATE", "", nil, nil)
	assert.Error(t, err)
}

func TestTransition_OneWayGraph(t *testing.T) {
	s := newTestSession()
	require.NoError(t, s.BeginSetup(staticResolver{}))

	require.NoError(t, s.Transition(PhaseRegulation))
	require.NoError(t, s.Transition(PhaseSuddenDeath))

	// Backwards is refused.
	err := s.Transition(PhaseRegulation)
	require.Error(t, err)
	var inv *InvariantError
	assert.True(t, errors.As(err, &inv))
}

func TestComplete_FromCreatedFails(t *testing.T) {
	s := newTestSession()
	err := s.Complete()
	var inv *InvariantError
	require.ErrorAs(t, err, &inv)
	assert.Equal(t, PhaseCreated, inv.Phase)
}
