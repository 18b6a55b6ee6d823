package cache

// ScopedKeyer wraps a Keyer with a prefix, giving each board or user a
// separate namespace in a shared cache.
//
//	k := NewScopedKeyer(NewDefaultKeyer(), "board:global:")
//	k.PreviewKey("https://go.dev") // "board:global:preview:..."
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer uses the
// default.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

func (k *ScopedKeyer) PreviewKey(url string) string {
	return k.prefix + k.inner.PreviewKey(url)
}
