package engineconfig

// Config is the full engine tuning configuration, loaded from YAML.
// Every tolerance the computation depends on is declared here so that
// nothing about the matching or rounding policy is implicit.
type Config struct {
	Meta         Meta         `yaml:"meta" json:"meta"`
	ReturnWindow ReturnWindow `yaml:"return_window" json:"return_window"`
	Rounding     Rounding     `yaml:"rounding" json:"rounding"`
	Movers       Movers       `yaml:"movers" json:"movers"`
	Schedule     Schedule     `yaml:"schedule" json:"schedule"`
	Reports      Reports      `yaml:"reports" json:"reports"`
}

// Meta identifies the configuration.
type Meta struct {
	Name    string `yaml:"name" json:"name"`
	Version string `yaml:"version" json:"version"`
}

// ReturnWindow controls how a price ~12 months before a month-end is
// matched. The candidate is the most recent point dated no later than
// the exact 12-months-earlier date plus SlackDays; it is accepted only
// when the span between both ends falls inside [MinDays, MaxDays].
type ReturnWindow struct {
	SlackDays  int `yaml:"slack_days" json:"slack_days"`   // calendar slack past the exact anniversary
	MinDays    int `yaml:"min_days" json:"min_days"`       // shortest acceptable span
	MaxDays    int `yaml:"max_days" json:"max_days"`       // longest acceptable span
	MinHistory int `yaml:"min_history" json:"min_history"` // month-ends required before any return exists
}

// Rounding fixes the output precision of trailing returns.
type Rounding struct {
	Decimals int32 `yaml:"decimals" json:"decimals"`
}

// Movers controls the consistent-mover classification.
type Movers struct {
	Threshold float64 `yaml:"threshold" json:"threshold"` // share of months moving one way
	MinMonths int     `yaml:"min_months" json:"min_months"`
}

// Schedule holds the cron expression for the monthly batch job.
type Schedule struct {
	Cron string `yaml:"cron" json:"cron"`
}

// Reports toggles optional outputs.
type Reports struct {
	Historical bool `yaml:"historical" json:"historical"`
}

// Default returns the configuration used when no YAML file is provided.
// The window bounds reproduce the established matching rule: 15 days of
// month-end slack, spans of roughly 11 to 13 months accepted.
func Default() *Config {
	return &Config{
		Meta: Meta{
			Name:    "niftyrank",
			Version: "1",
		},
		ReturnWindow: ReturnWindow{
			SlackDays:  15,
			MinDays:    330,
			MaxDays:    395,
			MinHistory: 13,
		},
		Rounding: Rounding{
			Decimals: 2,
		},
		Movers: Movers{
			Threshold: 0.75,
			MinMonths: 3,
		},
		Schedule: Schedule{
			Cron: "0 0 7 1 * *", // 07:00 on the 1st of every month
		},
		Reports: Reports{
			Historical: false,
		},
	}
}
