package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrylabs/matchspine/pkg/contracts"
)

func TestBus_PublishFansOutToNamedSubscribers(t *testing.T) {
	bus := NewBus()

	var completed []contracts.PlatformEvent
	bus.Subscribe(contracts.EventMatchCompleted, func(e contracts.PlatformEvent) {
		completed = append(completed, e)
	})
	var failed int
	bus.Subscribe(contracts.EventMatchFailed, func(contracts.PlatformEvent) {
		failed++
	})

	bus.Publish(contracts.EventMatchCompleted, "m-1", map[string]any{"matchId": "m-1"}, nil)
	bus.Publish(contracts.EventMatchCompleted, "m-2", nil, nil)

	require.Len(t, completed, 2)
	assert.Equal(t, "m-1", completed[0].Correlation)
	assert.Zero(t, failed)
}

func TestBus_EnvelopeFields(t *testing.T) {
	at := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	bus := NewBus().WithClock(func() time.Time { return at })

	event := bus.Publish(contracts.EventMatchCompleted, "m-1",
		map[string]any{"matchId": "m-1"},
		map[string]any{"source": "orchestrator"})

	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, contracts.EventMatchCompleted, event.Name)
	assert.Equal(t, at, event.OccurredAt)
	assert.Equal(t, "m-1", event.Correlation)
	assert.Equal(t, "orchestrator", event.Meta["source"])

	second := bus.Publish(contracts.EventMatchCompleted, "m-2", nil, nil)
	assert.NotEqual(t, event.EventID, second.EventID)
}

func TestBus_WildcardSubscriberSeesEverything(t *testing.T) {
	bus := NewBus()

	var names []string
	bus.Subscribe("", func(e contracts.PlatformEvent) {
		names = append(names, e.Name)
	})

	bus.Publish(contracts.EventMatchCompleted, "", nil, nil)
	bus.Publish(contracts.EventMatchFailed, "", nil, nil)
	bus.Publish(contracts.EventTournamentCompleted, "", nil, nil)

	assert.Equal(t, []string{
		contracts.EventMatchCompleted,
		contracts.EventMatchFailed,
		contracts.EventTournamentCompleted,
	}, names)
}

func TestBus_SubscribeDuringPublishDoesNotDeadlock(t *testing.T) {
	bus := NewBus()

	var late int
	bus.Subscribe(contracts.EventMatchCompleted, func(contracts.PlatformEvent) {
		bus.Subscribe(contracts.EventMatchFailed, func(contracts.PlatformEvent) { late++ })
	})

	bus.Publish(contracts.EventMatchCompleted, "", nil, nil)
	bus.Publish(contracts.EventMatchFailed, "", nil, nil)
	assert.Equal(t, 1, late)
}
