package contracts

// EngineAuthorization is one authorized engine entry inside a universe.
// Versions may be exact values or semver constraints; AllowedModeCodes, if
// declared, further restricts modes for this binding beyond the universe
// level.
type EngineAuthorization struct {
	EngineCode       string   `json:"engineCode"`
	Versions         []string `json:"versions"`
	AllowedModeCodes []string `json:"allowedModeCodes,omitempty"`
}

// DeckAcceptance declares tag constraints on decks entering a universe.
// An absent policy means no constraint.
type DeckAcceptance struct {
	RequiredTags  []string `json:"requiredTags,omitempty"`
	ForbiddenTags []string `json:"forbiddenTags,omitempty"`
}

// UniverseIntegration is a tenant/game-family boundary: which engines,
// versions, and modes are allowed inside it, and what decks it accepts.
type UniverseIntegration struct {
	IntegrationID     string                `json:"integrationId"`
	UniverseCode      string                `json:"universeCode"`
	AuthorizedEngines []EngineAuthorization `json:"authorizedEngines"`
	AllowedModeCodes  []string              `json:"allowedModeCodes,omitempty"`
	EligibilityPolicy string                `json:"eligibilityPolicy,omitempty"`
	DeckAcceptance    DeckAcceptance        `json:"deckAcceptance,omitempty"`
}

// SetupSnapshot captures the frozen result of a successful preflight for
// later audit.
type SetupSnapshot struct {
	UniverseCode          string   `json:"universeCode"`
	UniverseIntegrationID string   `json:"universeIntegrationId"`
	EngineCode            string   `json:"engineCode"`
	EngineVersion         string   `json:"engineVersion"`
	ModeCode              string   `json:"modeCode"`
	DeckID                string   `json:"deckId,omitempty"`
	DeckTags              []string `json:"deckTags,omitempty"`
}
