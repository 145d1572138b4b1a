package config

import (
	"fmt"
)

// Validate checks the configuration for impossible or contradictory values.
// Defaults are applied before validation, so only user-supplied nonsense
// should trip these.
func (c *Config) Validate() error {
	if c.Governor.RequestsPerMinute < 1 {
		return fmt.Errorf("governor.requests_per_minute must be >= 1, got %d", c.Governor.RequestsPerMinute)
	}
	if c.Governor.MaxAttempts < 1 {
		return fmt.Errorf("governor.max_attempts must be >= 1, got %d", c.Governor.MaxAttempts)
	}
	if c.Governor.BaseBackoffSeconds < 0 {
		return fmt.Errorf("governor.base_backoff_seconds cannot be negative, got %d", c.Governor.BaseBackoffSeconds)
	}
	for name, v := range map[string]int{
		"plan_delay_seconds":       c.Governor.PlanDelaySeconds,
		"section_delay_seconds":    c.Governor.SectionDelaySeconds,
		"screenshot_delay_seconds": c.Governor.ScreenshotDelaySeconds,
		"diagram_delay_seconds":    c.Governor.DiagramDelaySeconds,
	} {
		if v < 0 {
			return fmt.Errorf("governor.%s cannot be negative, got %d", name, v)
		}
	}

	if c.Outline.MinSections > c.Outline.MaxSections {
		return fmt.Errorf("outline.min_sections (%d) exceeds outline.max_sections (%d)",
			c.Outline.MinSections, c.Outline.MaxSections)
	}
	if c.Outline.SmallMinSections > c.Outline.SmallMaxSections {
		return fmt.Errorf("outline.small_min_sections (%d) exceeds outline.small_max_sections (%d)",
			c.Outline.SmallMinSections, c.Outline.SmallMaxSections)
	}

	if c.Budget.MaxScreenshots < 0 {
		return fmt.Errorf("budget.max_screenshots cannot be negative, got %d", c.Budget.MaxScreenshots)
	}
	if c.Budget.MaxDiagrams < 0 {
		return fmt.Errorf("budget.max_diagrams cannot be negative, got %d", c.Budget.MaxDiagrams)
	}

	return nil
}
