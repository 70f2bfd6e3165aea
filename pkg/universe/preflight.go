package universe

import (
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/quarrylabs/matchspine/pkg/contracts"
)

// Violation codes surfaced to operators when preflight blocks a session.
const (
	ViolationUniverseNotFound           = "V_UNIVERSE_NOT_FOUND"
	ViolationEngineNotAuthorized        = "V_ENGINE_NOT_AUTHORIZED"
	ViolationEngineVersionNotAuthorized = "V_ENGINE_VERSION_NOT_AUTHORIZED"
	ViolationModeNotAllowed             = "V_MODE_NOT_ALLOWED"
	ViolationDeckMissingRequiredTag     = "V_DECK_MISSING_REQUIRED_TAG"
	ViolationDeckHasForbiddenTag        = "V_DECK_HAS_FORBIDDEN_TAG"
)

// Request describes the session a caller wants to start.
type Request struct {
	UniverseCode  string   `json:"universeCode"`
	EngineCode    string   `json:"engineCode"`
	EngineVersion string   `json:"engineVersion"`
	ModeCode      string   `json:"modeCode"`
	DeckID        string   `json:"deckId,omitempty"`
	DeckTags      []string `json:"deckTags,omitempty"`
}

// Decision is the structured outcome of a preflight. A blocked preflight
// carries enough evidence (which tag was missing, which version was
// rejected) for the caller to self-diagnose without internal state.
type Decision struct {
	OK            bool                     `json:"ok"`
	ViolationCode string                   `json:"violationCode,omitempty"`
	Message       string                   `json:"message,omitempty"`
	Evidence      map[string]any           `json:"evidence,omitempty"`
	Snapshot      *contracts.SetupSnapshot `json:"snapshot,omitempty"`
}

// Gate runs the preflight composition against a universe registry.
type Gate struct {
	registry *Registry
}

// NewGate creates a preflight gate.
func NewGate(registry *Registry) *Gate {
	return &Gate{registry: registry}
}

// Check runs the full preflight, short-circuiting at the first failure:
// universe lookup, engine authorization (code, version, mode), then
// deck-tag acceptance. On success it returns the frozen setup snapshot.
func (g *Gate) Check(req Request) Decision {
	u, ok := g.registry.Lookup(req.UniverseCode)
	if !ok {
		return deny(ViolationUniverseNotFound,
			fmt.Sprintf("universe %q is not registered", req.UniverseCode),
			map[string]any{"universeCode": req.UniverseCode})
	}

	if d := checkEngine(u, req); !d.OK {
		return d
	}
	if d := checkDeck(u, req); !d.OK {
		return d
	}

	return Decision{
		OK: true,
		Snapshot: &contracts.SetupSnapshot{
			UniverseCode:          u.UniverseCode,
			UniverseIntegrationID: u.IntegrationID,
			EngineCode:            req.EngineCode,
			EngineVersion:         req.EngineVersion,
			ModeCode:              req.ModeCode,
			DeckID:                req.DeckID,
			DeckTags:              append([]string(nil), req.DeckTags...),
		},
	}
}

func checkEngine(u contracts.UniverseIntegration, req Request) Decision {
	var binding *contracts.EngineAuthorization
	for i := range u.AuthorizedEngines {
		if u.AuthorizedEngines[i].EngineCode == req.EngineCode {
			binding = &u.AuthorizedEngines[i]
			break
		}
	}
	if binding == nil {
		return deny(ViolationEngineNotAuthorized,
			fmt.Sprintf("engine %q is not authorized in universe %q", req.EngineCode, u.UniverseCode),
			map[string]any{"engineCode": req.EngineCode, "universeCode": u.UniverseCode})
	}

	if !versionAuthorized(binding.Versions, req.EngineVersion) {
		return deny(ViolationEngineVersionNotAuthorized,
			fmt.Sprintf("engine %q version %q is not authorized", req.EngineCode, req.EngineVersion),
			map[string]any{
				"engineCode":         req.EngineCode,
				"engineVersion":      req.EngineVersion,
				"authorizedVersions": binding.Versions,
			})
	}

	// Mode must be allowed at the universe level and, if the binding
	// declares its own list, at the binding level too.
	if len(u.AllowedModeCodes) > 0 && !containsString(u.AllowedModeCodes, req.ModeCode) {
		return deny(ViolationModeNotAllowed,
			fmt.Sprintf("mode %q is not allowed in universe %q", req.ModeCode, u.UniverseCode),
			map[string]any{"modeCode": req.ModeCode, "allowedModeCodes": u.AllowedModeCodes})
	}
	if len(binding.AllowedModeCodes) > 0 && !containsString(binding.AllowedModeCodes, req.ModeCode) {
		return deny(ViolationModeNotAllowed,
			fmt.Sprintf("mode %q is not allowed for engine %q", req.ModeCode, req.EngineCode),
			map[string]any{"modeCode": req.ModeCode, "allowedModeCodes": binding.AllowedModeCodes})
	}

	return Decision{OK: true}
}

// versionAuthorized accepts exact version strings and semver constraints
// (e.g. ">=1.2.0 <2.0.0").
func versionAuthorized(authorized []string, version string) bool {
	parsed, parseErr := semver.NewVersion(version)
	for _, entry := range authorized {
		if entry == version {
			return true
		}
		if parseErr != nil {
			continue
		}
		constraint, err := semver.NewConstraint(entry)
		if err != nil {
			continue
		}
		if constraint.Check(parsed) {
			return true
		}
	}
	return false
}

func checkDeck(u contracts.UniverseIntegration, req Request) Decision {
	// No declared policy means no constraint.
	policy := u.DeckAcceptance

	tags := make(map[string]bool, len(req.DeckTags))
	for _, tag := range req.DeckTags {
		tags[tag] = true
	}

	for _, required := range policy.RequiredTags {
		if !tags[required] {
			return deny(ViolationDeckMissingRequiredTag,
				fmt.Sprintf("deck is missing required tag %q", required),
				map[string]any{"requiredTag": required, "deckTags": req.DeckTags})
		}
	}
	for _, forbidden := range policy.ForbiddenTags {
		if tags[forbidden] {
			return deny(ViolationDeckHasForbiddenTag,
				fmt.Sprintf("deck carries forbidden tag %q", forbidden),
				map[string]any{"forbiddenTag": forbidden, "deckTags": req.DeckTags})
		}
	}
	return Decision{OK: true}
}

func deny(code, message string, evidence map[string]any) Decision {
	return Decision{OK: false, ViolationCode: code, Message: message, Evidence: evidence}
}

func containsString(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
