package contracts

import "time"

// Platform event names published for external subscribers.
const (
	EventMatchCompleted           = "match.completed"
	EventMatchFailed              = "match.failed"
	EventTournamentRoundCompleted = "tournament.round.completed"
	EventTournamentCompleted      = "tournament.completed"
	EventRewardsIssued            = "rewards.issued"
)

// PlatformEvent is the envelope every published event is wrapped in.
type PlatformEvent struct {
	EventID     string         `json:"eventId"`
	Name        string         `json:"name"`
	OccurredAt  time.Time      `json:"occurredAt"`
	Correlation string         `json:"correlation"`
	Payload     any            `json:"payload"`
	Meta        map[string]any `json:"meta,omitempty"`
}
