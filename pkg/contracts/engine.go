package contracts

// DeterminismLevel declares how reproducible an engine claims to be.
type DeterminismLevel string

const (
	DeterminismFull    DeterminismLevel = "FULL"
	DeterminismPartial DeterminismLevel = "PARTIAL"
	DeterminismNone    DeterminismLevel = "NONE"
)

// SandboxHints carries advisory execution limits. Enforcement is the
// hosting platform's responsibility, not the core's.
type SandboxHints struct {
	TimeoutMs int `json:"timeoutMs,omitempty"`
}

// EngineManifest declares which universes and modes an engine
// implementation supports and its determinism level.
type EngineManifest struct {
	EngineCode    string           `json:"engineCode"`
	EngineVersion string           `json:"engineVersion"`
	Universes     []string         `json:"universes,omitempty"`
	Modes         []string         `json:"modes,omitempty"`
	Determinism   DeterminismLevel `json:"determinism"`
	Sandbox       SandboxHints     `json:"sandbox,omitempty"`
}

// KitExports names the adapter and manifest locations inside a bolt-on kit.
// AdapterExportName is resolved against the engine factory registry.
type KitExports struct {
	AdapterModule      string `json:"adapterModule,omitempty"`
	AdapterExportName  string `json:"adapterExportName"`
	ManifestModule     string `json:"manifestModule,omitempty"`
	ManifestExportName string `json:"manifestExportName,omitempty"`
}

// KitConformance names the entrypoint the conformance runner exercises.
type KitConformance struct {
	Entrypoint string `json:"entrypoint"`
}

// BoltOnKit is the packaging descriptor that tells the platform how to load
// and certify a third-party engine.
type BoltOnKit struct {
	EngineCode    string         `json:"engineCode"`
	EngineVersion string         `json:"engineVersion"`
	Exports       KitExports     `json:"exports"`
	Conformance   KitConformance `json:"conformance"`
}
