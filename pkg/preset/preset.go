// Package preset loads named voice presets from YAML files. A preset
// bundles the prosody parameters a caller would otherwise pass as flags;
// explicit flags always win over preset values.
package preset

import "fmt"

// Preset is one named parameter bundle.
type Preset struct {
	Name            string  `yaml:"name"`
	Voice           string  `yaml:"voice"`
	Speed           float64 `yaml:"speed"`
	Pitch           float64 `yaml:"pitch"`
	Emotion         string  `yaml:"emotion"`
	EmotionStrength float64 `yaml:"emotion_strength"`
	Exaggeration    float64 `yaml:"exaggeration"`
	CFGWeight       float64 `yaml:"cfg_weight"`
	Language        string  `yaml:"language"`
}

// Validate checks the preset against the same bounds the command line
// enforces. Zero values mean "not set" and are always valid.
func (p *Preset) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("preset: name is required")
	}
	if p.Speed != 0 && (p.Speed < 0.5 || p.Speed > 2.0) {
		return fmt.Errorf("preset %q: speed %g out of range [0.5, 2.0]", p.Name, p.Speed)
	}
	if p.Pitch != 0 && (p.Pitch < 0.5 || p.Pitch > 2.0) {
		return fmt.Errorf("preset %q: pitch %g out of range [0.5, 2.0]", p.Name, p.Pitch)
	}
	if p.EmotionStrength < 0 || p.EmotionStrength > 1.0 {
		return fmt.Errorf("preset %q: emotion_strength %g out of range [0.0, 1.0]", p.Name, p.EmotionStrength)
	}
	return nil
}
