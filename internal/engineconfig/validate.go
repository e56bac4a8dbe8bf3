package engineconfig

import "fmt"

// Validate checks that a configuration is internally coherent.
func Validate(cfg *Config) error {
	w := cfg.ReturnWindow

	if w.SlackDays < 0 || w.SlackDays > 31 {
		return fmt.Errorf("return_window.slack_days must be within 0..31, got %d", w.SlackDays)
	}
	if w.MinDays <= 0 || w.MaxDays <= 0 || w.MinDays >= w.MaxDays {
		return fmt.Errorf("return_window requires 0 < min_days < max_days, got %d..%d", w.MinDays, w.MaxDays)
	}
	if w.MinHistory < 13 {
		// 12 points cover exactly one year with no prior-year anchor;
		// 13 is the minimum that can ever produce a return.
		return fmt.Errorf("return_window.min_history must be at least 13, got %d", w.MinHistory)
	}

	if cfg.Rounding.Decimals < 0 || cfg.Rounding.Decimals > 6 {
		return fmt.Errorf("rounding.decimals must be within 0..6, got %d", cfg.Rounding.Decimals)
	}

	if cfg.Movers.Threshold <= 0.5 || cfg.Movers.Threshold > 1.0 {
		return fmt.Errorf("movers.threshold must be within (0.5, 1.0], got %v", cfg.Movers.Threshold)
	}
	if cfg.Movers.MinMonths < 2 {
		return fmt.Errorf("movers.min_months must be at least 2, got %d", cfg.Movers.MinMonths)
	}

	if cfg.Schedule.Cron == "" {
		return fmt.Errorf("schedule.cron must not be empty")
	}

	return nil
}
