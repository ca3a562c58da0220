package provider

import (
	"github.com/spf13/viper"
)

// Priority is the fixed preference order for provider selection. The first
// provider with a configured credential wins. Consumed exactly once at the
// start of a run, never re-evaluated per file, so every file in the same run
// is reviewed by the same provider.
var Priority = []string{"openai", "anthropic", "gemini"}

// providerKeys are the config keys copied into a provider-scoped viper.
var providerKeys = []string{"api_key", "base_url", "model", "max_tokens", "temperature", "timeout"}

// Scoped returns a viper carrying only the configuration block of one
// provider ("providers.<name>.*" flattened to top-level keys), which is the
// shape every provider factory expects. The run-wide "ai_timeout" key serves
// as the timeout when the provider block does not set its own.
func Scoped(root *viper.Viper, name string) *viper.Viper {
	v := viper.New()
	for _, k := range providerKeys {
		full := "providers." + name + "." + k
		if root.IsSet(full) {
			v.Set(k, root.Get(full))
		}
	}
	if !v.IsSet("timeout") {
		if t := root.GetDuration("ai_timeout"); t > 0 {
			v.Set("timeout", t)
		}
	}
	return v
}

// Configured reports which providers have a credential present, in Priority
// order.
func Configured(root *viper.Viper) []string {
	var names []string
	for _, name := range Priority {
		if root.GetString("providers."+name+".api_key") != "" {
			names = append(names, name)
		}
	}
	return names
}

// Select picks the provider for this run: the first entry of Priority whose
// credential is configured. A (nil, nil) return means no provider is
// available, which is not an error -- the pipeline degrades to linter-only
// review.
func Select(root *viper.Viper) (AIProvider, error) {
	return globalRegistry.Select(root)
}

// Select is the registry-scoped variant of the package-level Select.
func (r *Registry) Select(root *viper.Viper) (AIProvider, error) {
	for _, name := range Priority {
		if root.GetString("providers."+name+".api_key") == "" {
			continue
		}
		return r.Get(name, Scoped(root, name))
	}
	return nil, nil
}
