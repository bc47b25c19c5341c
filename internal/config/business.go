package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Business holds the operational settings of the wash: prices, washer
// selection and time-slot seeding.
type Business struct {
	Prices             map[string]float64 `yaml:"prices"`
	SelectionPolicy    string             `yaml:"selection_policy"`
	RescanOnCompletion bool               `yaml:"rescan_on_completion"`
	ResetTokenTTL      time.Duration      `yaml:"reset_token_ttl"`
	Slots              SlotSeeding        `yaml:"slots"`
}

type SlotSeeding struct {
	Open            string `yaml:"open"`
	Close           string `yaml:"close"`
	IntervalMinutes int    `yaml:"interval_minutes"`
	Capacity        int    `yaml:"capacity"`
	Days            int    `yaml:"days"`
}

func DefaultBusiness() *Business {
	return &Business{
		Prices: map[string]float64{
			"basic":   15.00,
			"premium": 25.00,
			"deluxe":  35.00,
		},
		SelectionPolicy:    "seniority",
		RescanOnCompletion: true,
		ResetTokenTTL:      time.Hour,
		Slots: SlotSeeding{
			Open:            "08:00",
			Close:           "18:00",
			IntervalMinutes: 60,
			Capacity:        3,
			Days:            30,
		},
	}
}

// LoadBusiness returns the defaults overlaid with the YAML file at path.
// An empty path yields the defaults.
func LoadBusiness(path string) (*Business, error) {
	b := DefaultBusiness()
	if path == "" {
		return b, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read business config: %w", err)
	}

	if err := ParseBusiness(data, b); err != nil {
		return nil, err
	}
	return b, nil
}

func ParseBusiness(data []byte, into *Business) error {
	if err := yaml.Unmarshal(data, into); err != nil {
		return fmt.Errorf("parse business config: %w", err)
	}
	return into.Validate()
}

func (b *Business) Validate() error {
	switch b.SelectionPolicy {
	case "seniority", "registration":
	default:
		return fmt.Errorf("business config: unknown selection_policy %q", b.SelectionPolicy)
	}

	for _, wt := range []string{"basic", "premium", "deluxe"} {
		price, ok := b.Prices[wt]
		if !ok || price <= 0 {
			return fmt.Errorf("business config: price for %s must be positive", wt)
		}
	}

	if b.ResetTokenTTL <= 0 {
		return fmt.Errorf("business config: reset_token_ttl must be positive")
	}

	open, err := time.Parse("15:04", b.Slots.Open)
	if err != nil {
		return fmt.Errorf("business config: slots.open: %w", err)
	}
	closing, err := time.Parse("15:04", b.Slots.Close)
	if err != nil {
		return fmt.Errorf("business config: slots.close: %w", err)
	}
	if !closing.After(open) {
		return fmt.Errorf("business config: slots.close must be after slots.open")
	}
	if b.Slots.IntervalMinutes <= 0 || b.Slots.Capacity <= 0 || b.Slots.Days <= 0 {
		return fmt.Errorf("business config: slots interval, capacity and days must be positive")
	}

	return nil
}
