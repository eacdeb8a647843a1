package config

import "sort"

var Presets = map[string]*Config{
	"gas": {
		Particles: 200, BoxSize: 10, Dt: 0.01, TMax: 20, VMax: 1, Seed: 1,
		Force: ForceConfig{Law: "free"},
	},
	"bounce": {
		Particles: 1, BoxSize: 10, Dt: 0.01, TMax: 10, VMax: 5, Seed: 7,
		Force: ForceConfig{Law: "free"},
	},
	"plasma": {
		Particles: 64, BoxSize: 10, Dt: 0.005, TMax: 10, VMax: 0.5, Seed: 3,
		Force: ForceConfig{Law: "inverse_square", Strength: 0.05, Softening: 0.1},
	},
	"crystal": {
		Particles: 36, BoxSize: 10, Dt: 0.005, TMax: 15, VMax: 0.1, Seed: 5,
		Force: ForceConfig{Law: "inverse_square", Strength: -0.02, Softening: 0.2},
	},
	"corner": {
		Particles: 16, BoxSize: 4, Dt: 0.01, TMax: 10, VMax: 2, Seed: 11,
		Force: ForceConfig{Law: "harmonic", Stiffness: 0.05},
	},
}

// GetPreset returns a copy of the named preset with output settings taken
// from the defaults, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := *p
	cfg.Output = DefaultConfig().Output
	return &cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
