package cache

// ScopedKeyer prefixes every key of an inner keyer, so several walls or
// server instances can share one backend without colliding.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "serve:portfolio:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// RenderKey implements Keyer.
func (k *ScopedKeyer) RenderKey(manifestHash string, opts RenderKeyOpts) string {
	return k.prefix + k.inner.RenderKey(manifestHash, opts)
}
