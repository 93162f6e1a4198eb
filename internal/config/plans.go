package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"lexscribe/internal/app/model"
)

// PlanLimits are the metered limits of a plan
type PlanLimits struct {
	TranscriptionHours float64 `yaml:"transcription_hours" json:"transcriptionHours"`
	RetentionDays      int     `yaml:"retention_days" json:"retention"`
}

// TranscriptionSeconds returns the transcription quota in seconds
func (l PlanLimits) TranscriptionSeconds() float64 {
	return l.TranscriptionHours * 3600
}

// Plan is one catalog entry
type Plan struct {
	ID       model.PlanID `yaml:"id" json:"id"`
	Name     string       `yaml:"name" json:"name"`
	Price    float64      `yaml:"price" json:"price"`
	Currency string       `yaml:"currency" json:"currency"`
	Limits   PlanLimits   `yaml:"limits" json:"limits"`
}

// Plans is the plan catalog, keyed by plan id
type Plans map[model.PlanID]Plan

// DefaultPlans returns the built-in catalog
func DefaultPlans() Plans {
	return Plans{
		model.PlanFree: {
			ID:       model.PlanFree,
			Name:     "Free",
			Currency: "ZAR",
			Limits:   PlanLimits{TranscriptionHours: 1, RetentionDays: 7},
		},
		model.PlanBasic: {
			ID:       model.PlanBasic,
			Name:     "Basic",
			Price:    199.00,
			Currency: "ZAR",
			Limits:   PlanLimits{TranscriptionHours: 10, RetentionDays: 30},
		},
		model.PlanProfessional: {
			ID:       model.PlanProfessional,
			Name:     "Professional",
			Price:    499.00,
			Currency: "ZAR",
			Limits:   PlanLimits{TranscriptionHours: 30, RetentionDays: 90},
		},
	}
}

// Get returns the plan for id, falling back to the free plan for unknown ids
func (p Plans) Get(id model.PlanID) Plan {
	if plan, ok := p[id]; ok {
		return plan
	}
	return p[model.PlanFree]
}

// Lookup returns the plan for id and whether it exists
func (p Plans) Lookup(id model.PlanID) (Plan, bool) {
	plan, ok := p[id]
	return plan, ok
}

// Validate checks the catalog is usable
func (p Plans) Validate() error {
	if _, ok := p[model.PlanFree]; !ok {
		return fmt.Errorf("plan catalog must define the %q plan", model.PlanFree)
	}
	for id, plan := range p {
		if plan.Limits.TranscriptionHours <= 0 {
			return fmt.Errorf("plan %q: transcription_hours must be positive", id)
		}
		if plan.Limits.RetentionDays <= 0 {
			return fmt.Errorf("plan %q: retention_days must be positive", id)
		}
		if plan.Price < 0 {
			return fmt.Errorf("plan %q: price cannot be negative", id)
		}
	}
	return nil
}

type plansFile struct {
	Plans []Plan `yaml:"plans"`
}

// LoadPlans reads a plan catalog from a YAML file. Entries override the
// built-in defaults by id.
func LoadPlans(path string) (Plans, error) {
	path = os.ExpandEnv(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plans file: %w", err)
	}

	var file plansFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	plans := DefaultPlans()
	for _, plan := range file.Plans {
		if plan.ID == "" {
			return nil, fmt.Errorf("plan entry without id")
		}
		if plan.Currency == "" {
			plan.Currency = "ZAR"
		}
		plans[plan.ID] = plan
	}

	if err := plans.Validate(); err != nil {
		return nil, fmt.Errorf("invalid plan catalog: %w", err)
	}
	return plans, nil
}
