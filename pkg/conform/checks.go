package conform

import (
	"context"
	"fmt"

	"github.com/quarrylabs/matchspine/pkg/engine"
)

func (r *Runner) checkValidateDeck(ctx context.Context, a engine.Adapter, fix fixture) CheckResult {
	res, err := a.ValidateDeck(ctx, fix.deck, map[string]any{"maxCards": 60})
	if err != nil {
		return CheckResult{Name: CheckValidateDeck, OK: false, Message: fmt.Sprintf("call failed: %v", err)}
	}
	if res == nil {
		return CheckResult{Name: CheckValidateDeck, OK: false, Message: "nil result"}
	}
	if !res.OK && len(res.Errors) == 0 {
		return CheckResult{Name: CheckValidateDeck, OK: false, Message: "ok=false with no errors reported"}
	}
	return CheckResult{Name: CheckValidateDeck, OK: true}
}

func (r *Runner) checkCreateMatch(ctx context.Context, a engine.Adapter, fix fixture) CheckResult {
	res, err := a.CreateMatch(ctx, fix.matchID, fix.participants, fix.seed, fix.inputs)
	if err != nil {
		return CheckResult{Name: CheckCreateMatch, OK: false, Message: fmt.Sprintf("call failed: %v", err)}
	}
	if res == nil {
		return CheckResult{Name: CheckCreateMatch, OK: false, Message: "nil result"}
	}
	if !res.OK {
		return CheckResult{Name: CheckCreateMatch, OK: false, Message: "fixture match rejected", Extra: map[string]any{"errors": res.Errors}}
	}
	if res.State == nil {
		return CheckResult{Name: CheckCreateMatch, OK: false, Message: "ok=true but no state returned"}
	}
	return CheckResult{Name: CheckCreateMatch, OK: true}
}

func (r *Runner) checkRunMatch(ctx context.Context, a engine.Adapter, fix fixture) CheckResult {
	created, err := a.CreateMatch(ctx, fix.matchID, fix.participants, fix.seed, fix.inputs)
	if err != nil || created == nil || !created.OK {
		return CheckResult{Name: CheckRunMatch, OK: false, Message: "createMatch precondition failed"}
	}
	res, err := a.RunMatch(ctx, fix.matchID, fix.seed, created.State, fix.inputs)
	if err != nil {
		return CheckResult{Name: CheckRunMatch, OK: false, Message: fmt.Sprintf("call failed: %v", err)}
	}
	if res == nil {
		return CheckResult{Name: CheckRunMatch, OK: false, Message: "nil result"}
	}
	if !res.OK {
		return CheckResult{Name: CheckRunMatch, OK: false, Message: "fixture run failed", Extra: map[string]any{"errors": res.Errors}}
	}
	if res.Outputs == nil {
		return CheckResult{Name: CheckRunMatch, OK: false, Message: "ok=true but no outputs returned"}
	}
	return CheckResult{Name: CheckRunMatch, OK: true}
}

func (r *Runner) checkProduceArtifact(ctx context.Context, a engine.Adapter, fix fixture) CheckResult {
	outputs, fail := r.pipelineOutputs(ctx, a, fix)
	if fail != "" {
		return CheckResult{Name: CheckProduceArtifact, OK: false, Message: fail}
	}
	artifact, err := a.ProduceArtifact(ctx, fix.matchID, fix.seed, fix.participants, fix.inputs, outputs)
	if err != nil {
		return CheckResult{Name: CheckProduceArtifact, OK: false, Message: fmt.Sprintf("call failed: %v", err)}
	}
	if artifact == nil {
		return CheckResult{Name: CheckProduceArtifact, OK: false, Message: "nil artifact"}
	}
	switch {
	case artifact.Header.MatchID != fix.matchID:
		return CheckResult{Name: CheckProduceArtifact, OK: false, Message: "artifact header matchId does not echo the fixture"}
	case artifact.Seed != fix.seed:
		return CheckResult{Name: CheckProduceArtifact, OK: false, Message: "artifact seed does not echo the fixture"}
	case artifact.DeterministicHash.Value == "":
		return CheckResult{Name: CheckProduceArtifact, OK: false, Message: "artifact has no deterministic hash"}
	case artifact.InputsDigest.Value == "":
		return CheckResult{Name: CheckProduceArtifact, OK: false, Message: "artifact has no inputs digest"}
	}
	return CheckResult{Name: CheckProduceArtifact, OK: true}
}

func (r *Runner) checkPipeline(ctx context.Context, a engine.Adapter, fix fixture) CheckResult {
	outputs, fail := r.pipelineOutputs(ctx, a, fix)
	if fail != "" {
		return CheckResult{Name: CheckPipeline, OK: false, Message: fail}
	}
	artifact, err := a.ProduceArtifact(ctx, fix.matchID, fix.seed, fix.participants, fix.inputs, outputs)
	if err != nil || artifact == nil {
		return CheckResult{Name: CheckPipeline, OK: false, Message: fmt.Sprintf("produceArtifact failed: %v", err)}
	}
	return CheckResult{Name: CheckPipeline, OK: true, Extra: map[string]any{
		"hash": artifact.DeterministicHash.Value,
	}}
}

// checkHashStability is the determinism proof: two ProduceArtifact calls
// with identical inputs must yield identical deterministic hash values. An
// adapter that folds wall-clock time or other ambient state into the hashed
// bundle fails here.
func (r *Runner) checkHashStability(ctx context.Context, a engine.Adapter, fix fixture) CheckResult {
	outputs, fail := r.pipelineOutputs(ctx, a, fix)
	if fail != "" {
		return CheckResult{Name: CheckHashStability, OK: false, Message: fail}
	}
	first, err := a.ProduceArtifact(ctx, fix.matchID, fix.seed, fix.participants, fix.inputs, outputs)
	if err != nil || first == nil {
		return CheckResult{Name: CheckHashStability, OK: false, Message: fmt.Sprintf("first produceArtifact failed: %v", err)}
	}
	second, err := a.ProduceArtifact(ctx, fix.matchID, fix.seed, fix.participants, fix.inputs, outputs)
	if err != nil || second == nil {
		return CheckResult{Name: CheckHashStability, OK: false, Message: fmt.Sprintf("second produceArtifact failed: %v", err)}
	}
	if first.DeterministicHash.Value != second.DeterministicHash.Value {
		return CheckResult{
			Name:    CheckHashStability,
			OK:      false,
			Message: "deterministic hash differs across identical calls",
			Extra: map[string]any{
				"first":  first.DeterministicHash.Value,
				"second": second.DeterministicHash.Value,
			},
		}
	}
	return CheckResult{Name: CheckHashStability, OK: true, Extra: map[string]any{"hash": first.DeterministicHash.Value}}
}

// pipelineOutputs runs createMatch and runMatch against the fixture and
// returns the run outputs, or a failure message.
func (r *Runner) pipelineOutputs(ctx context.Context, a engine.Adapter, fix fixture) (map[string]any, string) {
	created, err := a.CreateMatch(ctx, fix.matchID, fix.participants, fix.seed, fix.inputs)
	if err != nil {
		return nil, fmt.Sprintf("createMatch failed: %v", err)
	}
	if created == nil || !created.OK {
		return nil, "createMatch rejected the fixture"
	}
	run, err := a.RunMatch(ctx, fix.matchID, fix.seed, created.State, fix.inputs)
	if err != nil {
		return nil, fmt.Sprintf("runMatch failed: %v", err)
	}
	if run == nil || !run.OK {
		return nil, "runMatch rejected the fixture"
	}
	return run.Outputs, ""
}
