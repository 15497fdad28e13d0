package assets

import "clockwork/internal/engine"

// Loader adapts Cache to engine.AssetLoader: Reset's gameConfig carries
// the asset URLs to warm under the "assetURLs" extra key.
type Loader struct {
	Cache *Cache
}

// NewLoader wraps cache as an engine.AssetLoader.
func NewLoader(cache *Cache) *Loader { return &Loader{Cache: cache} }

// Preload extracts []string from cfg.Extra["assetURLs"] (missing or
// wrong-typed is treated as "nothing to preload", not an error) and
// blocks until every one resolves.
func (l *Loader) Preload(cfg engine.GameConfig) error {
	if cfg.Extra == nil {
		return nil
	}
	urls, ok := cfg.Extra["assetURLs"].([]string)
	if !ok {
		return nil
	}
	return l.Cache.Preload(urls)
}
