package config

import (
	_ "embed"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRules []byte

// DefaultMaxDateSpanDays applies when a rules file does not set max_date_span_days.
const DefaultMaxDateSpanDays = 92

// Rules drive baseline eligibility in the result filter.
type Rules struct {
	MinCapacity     int      `yaml:"min_capacity" validate:"gte=0"`
	MaxDateSpanDays int      `yaml:"max_date_span_days" validate:"gte=1,lte=366"`
	VenueDenylist   []string `yaml:"venue_denylist" validate:"dive,required"`
	TitleDenylist   []string `yaml:"title_denylist" validate:"dive,required"`
	Regions         []string `yaml:"regions" validate:"min=1,dive,required"`
}

// LoadRules reads the rules file at path, or the embedded defaults when path is empty.
func LoadRules(path string) (*Rules, error) {
	b := defaultRules
	if path != "" {
		var err error
		if b, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("read rules file: %w", err)
		}
	}
	return ParseRules(b)
}

func ParseRules(b []byte) (*Rules, error) {
	var r Rules
	if err := yaml.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	if r.MaxDateSpanDays == 0 {
		r.MaxDateSpanDays = DefaultMaxDateSpanDays
	}
	if err := validate.Struct(&r); err != nil {
		return nil, fmt.Errorf("invalid rules: %w", err)
	}
	return &r, nil
}

// DefaultRules returns the embedded rules. They are validated at test time,
// so a failure here is a build defect.
func DefaultRules() *Rules {
	r, err := ParseRules(defaultRules)
	if err != nil {
		panic(fmt.Sprintf("embedded rules: %v", err))
	}
	return r
}

// KnownRegion reports whether code is one of the selectable region codes.
func (r *Rules) KnownRegion(code string) bool {
	return slices.Contains(r.Regions, code)
}
