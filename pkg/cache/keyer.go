package cache

// Keyer builds cache keys for pipeline stages.
type Keyer interface {
	// LayoutKey returns the key of the resolved layout of a table.
	LayoutKey(tableHash string) string
	// ArtifactKey returns the key of one rendered output of a table.
	ArtifactKey(tableHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts lists every option that changes a rendered artifact.
type ArtifactKeyOpts struct {
	Format      string `json:"format"`
	Border      string `json:"border,omitempty"`
	Align       string `json:"align,omitempty"`
	MinWidth    int    `json:"min_width"`
	Padding     int    `json:"padding"`
	ContentHash string `json:"content_hash,omitempty"`
}

// DefaultKeyer produces "layout:<hash>" and "artifact:<hash>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey returns the key of the resolved layout of a table.
func (DefaultKeyer) LayoutKey(tableHash string) string {
	return "layout:" + tableHash
}

// ArtifactKey returns the key of one rendered output of a table.
func (DefaultKeyer) ArtifactKey(tableHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", tableHash, opts)
}

// ScopedKeyer wraps a Keyer with a prefix so that several users of one
// backend get separate namespaces.
//
//	apiKeyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "api:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// LayoutKey returns the prefixed layout key.
func (k *ScopedKeyer) LayoutKey(tableHash string) string {
	return k.prefix + k.inner.LayoutKey(tableHash)
}

// ArtifactKey returns the prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(tableHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(tableHash, opts)
}
