package config

// mergeMaps deep-merges src into dst. Nested maps are merged recursively;
// everything else in src overwrites the dst value at the same key.
func mergeMaps(dst, src map[string]any) {
	for k, v := range src {
		if mv, ok := v.(map[string]any); ok {
			if existing, ok := dst[k].(map[string]any); ok {
				mergeMaps(existing, mv)
				continue
			}
		}
		dst[k] = v
	}
}
