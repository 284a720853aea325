package tool

// Manifest schema constants for the v1 tool contract.
const (
	ManifestVersionV1 = "1.0"
	SchemaToolV1      = "https://toolbelt.dev/schemas/tool-manifest/v1.json"
)

// Manifest describes a registered tool independent of how it executes.
type Manifest struct {
	Schema          string                `json:"$schema,omitempty"`
	ManifestVersion string                `json:"manifest_version"`
	Tool            ToolInfo              `json:"tool"`
	Transport       TransportSpec         `json:"transport"`
	Actions         map[string]ActionSpec `json:"actions"`
	Config          map[string]FieldSpec  `json:"config,omitempty"`
	Health          *HealthConfig         `json:"health,omitempty"`
}

// ToolInfo contains display metadata for a tool.
type ToolInfo struct {
	Name        string   `json:"name"`
	Version     string   `json:"version,omitempty"`
	Description string   `json:"description,omitempty"`
	Author      string   `json:"author,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// ActionSpec defines callable behavior on a tool.
type ActionSpec struct {
	Description string               `json:"description,omitempty"`
	Inputs      map[string]FieldSpec `json:"inputs,omitempty"`
	Outputs     map[string]FieldSpec `json:"outputs,omitempty"`
	Idempotent  bool                 `json:"idempotent,omitempty"`
}

// FieldSpec is the v1 field/type descriptor used for inputs, outputs, and config.
type FieldSpec struct {
	Type        string               `json:"type"`
	Required    bool                 `json:"required,omitempty"`
	Description string               `json:"description,omitempty"`
	Default     any                  `json:"default,omitempty"`
	Sensitive   bool                 `json:"sensitive,omitempty"`
	Items       *FieldSpec           `json:"items,omitempty"`
	Properties  map[string]FieldSpec `json:"properties,omitempty"`
}

// TransportType enumerates supported invocation transports.
type TransportType string

const (
	TransportTypeNative TransportType = "native"
	TransportTypeHTTP   TransportType = "http"
)

// TransportSpec describes how toolbelt invokes the tool.
type TransportSpec struct {
	Type      TransportType `json:"type"`
	Endpoint  string        `json:"endpoint,omitempty"`
	TimeoutMS int           `json:"timeout_ms,omitempty"`
	Retry     RetryPolicy   `json:"retry,omitempty"`
}

// RetryPolicy defines adapter retry behavior.
type RetryPolicy struct {
	MaxAttempts    int   `json:"max_attempts,omitempty"`
	BackoffMS      int   `json:"backoff_ms,omitempty"`
	RetryableCodes []int `json:"retryable_codes,omitempty"`
}

// HealthConfig defines optional health-check settings for HTTP tools.
// Schedule is a standard five-field cron expression evaluated in UTC.
type HealthConfig struct {
	Endpoint           string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	Schedule           string `json:"schedule,omitempty" yaml:"schedule,omitempty"`
	TimeoutMS          int    `json:"timeout_ms,omitempty" yaml:"timeout_ms,omitempty"`
	UnhealthyThreshold int    `json:"unhealthy_threshold,omitempty" yaml:"unhealthy_threshold,omitempty"`
}

// NewManifest returns a manifest pre-populated with v1 schema metadata.
func NewManifest(name string) Manifest {
	return Manifest{
		Schema:          SchemaToolV1,
		ManifestVersion: ManifestVersionV1,
		Tool: ToolInfo{
			Name: name,
		},
		Actions: make(map[string]ActionSpec),
	}
}

// NewNativeTransport returns a transport spec for in-process tools.
func NewNativeTransport() TransportSpec {
	return TransportSpec{Type: TransportTypeNative}
}

// NewHTTPTransport returns an HTTP transport spec, forcing the type field.
func NewHTTPTransport(spec TransportSpec) TransportSpec {
	spec.Type = TransportTypeHTTP
	return spec
}
