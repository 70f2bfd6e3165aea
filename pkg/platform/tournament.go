package platform

import (
	"context"
	"errors"
	"fmt"

	"github.com/quarrylabs/matchspine/pkg/contracts"
	"github.com/quarrylabs/matchspine/pkg/store"
	"github.com/quarrylabs/matchspine/pkg/tournament"
)

// TournamentSnapshot is the payload published with tournament events.
type TournamentSnapshot struct {
	Header     contracts.TournamentHeader `json:"header"`
	Derivation *tournament.Derivation     `json:"derivation"`
}

// DeriveTournament loads the tournament's indexed artifacts from the store
// and runs the structure's deriver. Artifacts missing from the store are
// skipped: an unplayed match is not an error. Binding mismatches are.
func (o *Orchestrator) DeriveTournament(ctx context.Context, t *contracts.TournamentV1) (*tournament.Derivation, error) {
	var artifacts []*contracts.MatchArtifact
	for _, matchID := range t.ArtifactIndex {
		record, err := o.store.Get(ctx, matchID)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load artifact %s: %w", matchID, err)
		}
		artifacts = append(artifacts, record.Artifact)
	}

	derivation, err := tournament.Derive(t, artifacts)
	if err != nil {
		return nil, err
	}

	o.logger.Info("tournament derived",
		"tournamentId", t.Header.TournamentID,
		"completed", derivation.Progress.MatchesCompleted,
		"planned", derivation.Progress.MatchesPlanned)

	if o.bus != nil {
		snapshot := &TournamentSnapshot{Header: t.Header, Derivation: derivation}
		for _, round := range derivation.Progress.Rounds {
			if roundComplete(round) {
				o.bus.Publish(contracts.EventTournamentRoundCompleted, t.Header.TournamentID, snapshot,
					map[string]any{"round": round.Round})
			}
		}
		if derivation.Progress.Complete {
			o.bus.Publish(contracts.EventTournamentCompleted, t.Header.TournamentID, snapshot, nil)
		}
	}
	return derivation, nil
}

func roundComplete(round tournament.RoundView) bool {
	for _, slot := range round.Slots {
		if !slot.Completed {
			return false
		}
	}
	return len(round.Slots) > 0
}
