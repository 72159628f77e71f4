package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dnounce/dnounce-api/lifecycle"
)

// tuningFile mirrors lifecycle.DemoTuning with optional fields, so a file only
// needs to name the values it changes.
type tuningFile struct {
	Weights          []lifecycle.StageWeight `yaml:"weights"`
	MinProgress      *float64                `yaml:"minProgress"`
	ProgressBuckets  *uint32                 `yaml:"progressBuckets"`
	StartWindow      *string                 `yaml:"startWindow"`
	ShowDeletedSlots *uint32                 `yaml:"showDeletedSlots"`
	AnchorDivisor    *int64                  `yaml:"anchorDivisor"`
	NoDeadlineAnchor *string                 `yaml:"noDeadlineAnchor"`
}

// LoadDemoTuning returns the stock demo tuning overlaid with the YAML file at
// path. An empty path returns the defaults. The result is validated.
func LoadDemoTuning(path string) (lifecycle.DemoTuning, error) {
	t := lifecycle.DefaultDemoTuning()
	if path == "" {
		return t, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("failed to read demo tuning file: %w", err)
	}

	var f tuningFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return t, fmt.Errorf("failed to parse demo tuning file: %w", err)
	}

	if len(f.Weights) > 0 {
		t.Weights = f.Weights
	}
	if f.MinProgress != nil {
		t.MinProgress = *f.MinProgress
	}
	if f.ProgressBuckets != nil {
		t.ProgressBuckets = *f.ProgressBuckets
	}
	if f.ShowDeletedSlots != nil {
		t.ShowDeletedSlots = *f.ShowDeletedSlots
	}
	if f.AnchorDivisor != nil {
		t.AnchorDivisor = *f.AnchorDivisor
	}
	if f.StartWindow != nil {
		if t.StartWindow, err = parseDuration("startWindow", *f.StartWindow); err != nil {
			return t, err
		}
	}
	if f.NoDeadlineAnchor != nil {
		if t.NoDeadlineAnchor, err = parseDuration("noDeadlineAnchor", *f.NoDeadlineAnchor); err != nil {
			return t, err
		}
	}

	if err := t.Validate(); err != nil {
		return t, err
	}
	return t, nil
}

func parseDuration(field, v string) (time.Duration, error) {
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", lifecycle.ErrInvalidTuning, field, err)
	}
	return d, nil
}
