// Package config loads a YAML device profile describing the RDM
// identity and parameter set a responder should present, playing the
// role gopper's standalone/config package plays for a G-code
// controller's printer profile, adapted to spec.md's parameter model
// and backed by the same gopkg.in/yaml.v3 library.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile describes one RDM responder's static identity.
type Profile struct {
	ManufacturerID  uint16          `yaml:"manufacturer_id"`
	ModelID         uint16          `yaml:"model_id"`
	Category        uint16          `yaml:"category"`
	SoftwareVersion uint32          `yaml:"software_version"`
	SoftwareLabel   string          `yaml:"software_label"`
	DeviceLabel     string          `yaml:"device_label"`
	Personalities   []Personality   `yaml:"personalities"`
	StartAddress    uint16          `yaml:"start_address"`
	Serial          SerialSettings  `yaml:"serial"`
}

// Personality describes one DMX_PERSONALITY slot a device can be set
// to via SET DMX_PERSONALITY.
type Personality struct {
	Slot        byte   `yaml:"slot"`
	Footprint   uint16 `yaml:"footprint"`
	Description string `yaml:"description"`
}

// SerialSettings names the host-side transport a Profile is served
// over.
type SerialSettings struct {
	Device string `yaml:"device"`
	NvsPath string `yaml:"nvs_path"`
}

// Load reads and validates a Profile from path.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return &p, nil
}

func (p *Profile) validate() error {
	if p.Serial.Device == "" {
		return fmt.Errorf("serial.device is required")
	}
	if len(p.Personalities) == 0 {
		return fmt.Errorf("at least one personality is required")
	}
	seen := make(map[byte]bool, len(p.Personalities))
	for _, pers := range p.Personalities {
		if seen[pers.Slot] {
			return fmt.Errorf("duplicate personality slot %d", pers.Slot)
		}
		seen[pers.Slot] = true
	}
	return nil
}
