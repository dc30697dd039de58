package fragment

import (
	"fmt"

	"dario.cat/mergo"
)

// Merge deep merges fragments left to right into a new Config. Plugins and
// loader rules concatenate in encounter order; other fields take the value of
// the last fragment that sets them. The fragments themselves are not modified.
func Merge(fragments ...Config) (Config, error) {
	var merged Config

	for i, f := range fragments {
		if err := mergo.Merge(&merged, f, mergo.WithOverride, mergo.WithAppendSlice); err != nil {
			return Config{}, fmt.Errorf("error merging fragment %d: %w", i, err)
		}
	}

	return merged, nil
}
