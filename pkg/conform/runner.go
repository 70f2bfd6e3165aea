// Package conform certifies engine adapters before the platform trusts
// them. Given a bolt-on kit it resolves the adapter through the engine
// registry and runs a fixed minimal suite against a synthetic fixture:
// shape checks for each protocol call, an end-to-end pipeline check, and
// the determinism proof (two identical ProduceArtifact calls must yield an
// identical deterministic hash).
//
// Every check is recorded independently so an integrator can fix one
// failure without re-running the whole suite blind.
package conform

import (
	"context"
	"fmt"
	"time"

	"github.com/quarrylabs/matchspine/pkg/contracts"
	"github.com/quarrylabs/matchspine/pkg/engine"
)

// RunStatus is the overall outcome of a conformance run.
type RunStatus string

const (
	// StatusPass means every check passed.
	StatusPass RunStatus = "PASS"
	// StatusFail means at least one assertion failed normally.
	StatusFail RunStatus = "FAIL"
	// StatusError means loading or execution itself broke.
	StatusError RunStatus = "ERROR"
)

// Check names, stable across runs.
const (
	CheckResolve         = "adapter.resolve"
	CheckValidateDeck    = "validateDeck.shape"
	CheckCreateMatch     = "createMatch.shape"
	CheckRunMatch        = "runMatch.shape"
	CheckProduceArtifact = "produceArtifact.shape"
	CheckPipeline        = "pipeline.end_to_end"
	CheckHashStability   = "produceArtifact.stable_hash"
)

// CheckResult records one independent conformance check.
type CheckResult struct {
	Name    string         `json:"name"`
	OK      bool           `json:"ok"`
	Message string         `json:"message,omitempty"`
	Extra   map[string]any `json:"extra,omitempty"`
}

// Report is the result of a full conformance run.
type Report struct {
	RunID         string        `json:"runId"`
	EngineCode    string        `json:"engineCode"`
	EngineVersion string        `json:"engineVersion"`
	Status        RunStatus     `json:"status"`
	Checks        []CheckResult `json:"checks"`
	StartedAt     time.Time     `json:"startedAt"`
	Duration      time.Duration `json:"duration"`
}

// Options configures a conformance run.
type Options struct {
	// ContinueOnFail keeps running remaining checks after a failure.
	// Defaults to true; a run stops early only when explicitly disabled.
	ContinueOnFail *bool
}

func (o Options) continueOnFail() bool {
	return o.ContinueOnFail == nil || *o.ContinueOnFail
}

// Runner executes the conformance suite.
type Runner struct {
	registry *engine.Registry
	clock    func() time.Time
}

// NewRunner creates a runner backed by the given engine registry.
func NewRunner(registry *engine.Registry) *Runner {
	return &Runner{registry: registry, clock: time.Now}
}

// WithClock overrides the clock for deterministic testing.
func (r *Runner) WithClock(clock func() time.Time) *Runner {
	r.clock = clock
	return r
}

// fixture is the synthetic input set every adapter is exercised with.
type fixture struct {
	matchID      string
	seed         int64
	participants []contracts.Participant
	deck         []string
	inputs       map[string]any
}

func newFixture() fixture {
	return fixture{
		matchID: "conformance-fixture-0001",
		seed:    424242,
		participants: []contracts.Participant{
			{ParticipantID: "FIXTURE_P1"},
			{ParticipantID: "FIXTURE_P2"},
		},
		deck: []string{"card.alpha", "card.beta", "card.gamma"},
		inputs: map[string]any{
			"universeCode": "CONFORMANCE",
			"modeCode":     "DUEL",
			"fixture":      true,
		},
	}
}

// Run certifies the adapter a kit points at.
func (r *Runner) Run(ctx context.Context, kit contracts.BoltOnKit, opts Options) *Report {
	start := r.clock()
	report := &Report{
		RunID:         fmt.Sprintf("conform-%s-%d", kit.EngineCode, start.UnixNano()),
		EngineCode:    kit.EngineCode,
		EngineVersion: kit.EngineVersion,
		StartedAt:     start.UTC(),
	}

	adapter, err := r.registry.Resolve(kit)
	if err != nil {
		report.Checks = append(report.Checks, CheckResult{
			Name:    CheckResolve,
			OK:      false,
			Message: err.Error(),
		})
		report.Status = StatusError
		report.Duration = r.clock().Sub(start)
		return report
	}
	report.Checks = append(report.Checks, CheckResult{Name: CheckResolve, OK: true})

	fix := newFixture()
	suite := []func(context.Context, engine.Adapter, fixture) CheckResult{
		r.checkValidateDeck,
		r.checkCreateMatch,
		r.checkRunMatch,
		r.checkProduceArtifact,
		r.checkPipeline,
		r.checkHashStability,
	}

	errored := false
	for _, check := range suite {
		result := runGuarded(ctx, adapter, fix, check)
		report.Checks = append(report.Checks, result)
		if result.Extra != nil && result.Extra["panic"] != nil {
			errored = true
		}
		if !result.OK && !opts.continueOnFail() {
			break
		}
	}

	report.Status = StatusPass
	for _, c := range report.Checks {
		if !c.OK {
			report.Status = StatusFail
			break
		}
	}
	if errored {
		report.Status = StatusError
	}
	report.Duration = r.clock().Sub(start)
	return report
}

// runGuarded converts a panicking adapter into an ERROR-class check result
// instead of taking down the runner.
func runGuarded(ctx context.Context, a engine.Adapter, fix fixture, check func(context.Context, engine.Adapter, fixture) CheckResult) (result CheckResult) {
	defer func() {
		if rec := recover(); rec != nil {
			result = CheckResult{
				Name:    "panic",
				OK:      false,
				Message: fmt.Sprintf("adapter panicked: %v", rec),
				Extra:   map[string]any{"panic": fmt.Sprint(rec)},
			}
		}
	}()
	return check(ctx, a, fix)
}
