package config

import (
	"time"

	"sliderCaptchaAuth/pkg/puzzle"
)

type Puzzle struct {
	Tolerance    int           `envconfig:"TOLERANCE" yaml:"tolerance"`
	ImageURL     string        `envconfig:"IMAGE_URL" yaml:"image_url"`
	FallbackPath string        `envconfig:"FALLBACK_PATH" yaml:"fallback_path"`
	FetchTimeout time.Duration `envconfig:"FETCH_TIMEOUT" yaml:"fetch_timeout"`
}

func defaultPuzzle() Puzzle {
	return Puzzle{
		Tolerance:    puzzle.DefaultTolerance,
		FallbackPath: "./images",
		FetchTimeout: 5 * time.Second,
	}
}

const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

type Store struct {
	Driver        string        `envconfig:"STORE" yaml:"store"`
	SQLitePath    string        `envconfig:"SQLITE_PATH" yaml:"sqlite_path"`
	ChallengeTTL  time.Duration `envconfig:"CHALLENGE_TTL" yaml:"challenge_ttl"`
	SweepInterval time.Duration `envconfig:"SWEEP_INTERVAL" yaml:"sweep_interval"`
}

func defaultStore() Store {
	return Store{
		Driver:        DriverMemory,
		SQLitePath:    "./data/captcha.db",
		ChallengeTTL:  5 * time.Minute,
		SweepInterval: time.Minute,
	}
}
