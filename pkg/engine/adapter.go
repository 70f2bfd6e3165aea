// Package engine defines the four-call adapter protocol every pluggable
// game engine must implement, and the factory registry the platform uses
// to resolve implementations.
//
// Protocol failures are expected business outcomes and travel as data
// ({code, message, details}); the error return on each call is reserved for
// infrastructure faults. Callers must branch on OK, not on err.
package engine

import (
	"context"

	"github.com/quarrylabs/matchspine/pkg/contracts"
)

// ProtocolError is a data-level failure reported by an adapter.
type ProtocolError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ValidationResult is the outcome of ValidateDeck.
type ValidationResult struct {
	OK       bool            `json:"ok"`
	Errors   []ProtocolError `json:"errors,omitempty"`
	Warnings []string        `json:"warnings,omitempty"`
}

// CreateResult is the outcome of CreateMatch. State is the engine's opaque
// initial match state, passed back verbatim into RunMatch.
type CreateResult struct {
	OK     bool            `json:"ok"`
	State  map[string]any  `json:"state,omitempty"`
	Errors []ProtocolError `json:"errors,omitempty"`
}

// RunResult is the outcome of RunMatch. Outputs is the engine's opaque run
// product, passed verbatim into ProduceArtifact.
type RunResult struct {
	OK      bool            `json:"ok"`
	Outputs map[string]any  `json:"outputs,omitempty"`
	Errors  []ProtocolError `json:"errors,omitempty"`
}

// Adapter is the capability set a pluggable engine implements. Every call
// must be pure with respect to {seed, inputs, participants, mode,
// engineVersion}: same arguments, same answer. All payloads crossing the
// boundary are plain JSON values.
type Adapter interface {
	ValidateDeck(ctx context.Context, cardKeys []string, constraints map[string]any) (*ValidationResult, error)
	CreateMatch(ctx context.Context, matchID string, participants []contracts.Participant, seed int64, inputs map[string]any) (*CreateResult, error)
	RunMatch(ctx context.Context, matchID string, seed int64, state map[string]any, inputs map[string]any) (*RunResult, error)
	ProduceArtifact(ctx context.Context, matchID string, seed int64, participants []contracts.Participant, inputs map[string]any, outputs map[string]any) (*contracts.MatchArtifact, error)
}

// Manifester is optionally implemented by adapters that expose their
// manifest programmatically.
type Manifester interface {
	Manifest() contracts.EngineManifest
}
