package cache

// Keyer builds cache keys for pipeline stages.
type Keyer interface {
	// ArtifactKey identifies one rendered output of a stack.
	ArtifactKey(stackHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts holds every option that changes the rendered bytes.
type ArtifactKeyOpts struct {
	VizType  string  `json:"viz_type"`
	Format   string  `json:"format"`
	Style    string  `json:"style,omitempty"`
	Width    float64 `json:"width,omitempty"`
	Margin   float64 `json:"margin,omitempty"`
	Scale    float64 `json:"scale,omitempty"`
	Detailed bool    `json:"detailed,omitempty"`

	Interactive bool `json:"interactive,omitempty"`
}

// DefaultKeyer hashes the stack hash together with the options.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ArtifactKey returns "artifact:<sha256>".
func (DefaultKeyer) ArtifactKey(stackHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", stackHash, opts)
}

var _ Keyer = DefaultKeyer{}
