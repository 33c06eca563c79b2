package config

import (
	"fmt"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if err := c.SRS.validate(); err != nil {
		return fmt.Errorf("srs: %w", err)
	}
	if err := c.Session.validate(); err != nil {
		return fmt.Errorf("session: %w", err)
	}
	return nil
}

func (s *SRSConfig) validate() error {
	if s.MinEaseFactor <= 0 {
		return fmt.Errorf("min_ease_factor must be > 0 (got %v)", s.MinEaseFactor)
	}
	if s.DefaultEaseFactor < s.MinEaseFactor {
		return fmt.Errorf("default_ease_factor %v must be >= min_ease_factor %v", s.DefaultEaseFactor, s.MinEaseFactor)
	}
	if s.MaxIntervalDays <= 0 {
		return fmt.Errorf("max_interval_days must be > 0 (got %d)", s.MaxIntervalDays)
	}
	if s.FirstIntervalEasy < 1 || s.FirstIntervalMed < 1 || s.FirstIntervalHard < 1 {
		return fmt.Errorf("first intervals must be >= 1 day")
	}
	if s.RelearnDelay <= 0 {
		return fmt.Errorf("relearn_delay must be > 0 (got %v)", s.RelearnDelay)
	}
	if s.HardIntervalFactor <= 1.0 {
		return fmt.Errorf("hard_interval_factor must be > 1.0 (got %v)", s.HardIntervalFactor)
	}
	if s.EasyIntervalFactor < 1.0 {
		return fmt.Errorf("easy_interval_factor must be >= 1.0 (got %v)", s.EasyIntervalFactor)
	}
	return nil
}

func (s *SessionConfig) validate() error {
	if s.DefaultQueueSize <= 0 {
		return fmt.Errorf("default_queue_size must be > 0 (got %d)", s.DefaultQueueSize)
	}
	if s.MaxQueueSize < s.DefaultQueueSize {
		return fmt.Errorf("max_queue_size %d must be >= default_queue_size %d", s.MaxQueueSize, s.DefaultQueueSize)
	}
	if s.IdleTimeout <= 0 {
		return fmt.Errorf("idle_timeout must be > 0 (got %v)", s.IdleTimeout)
	}
	if s.SweepInterval <= 0 {
		return fmt.Errorf("sweep_interval must be > 0 (got %v)", s.SweepInterval)
	}
	if s.AccuracyWindow <= 0 {
		return fmt.Errorf("accuracy_window must be > 0 (got %d)", s.AccuracyWindow)
	}
	return nil
}
