// Package config loads worker and starter settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/MABAIStrategies/kimi-automation-v1/journey/types"
)

// ParseEnv loads configuration from environment variables into target.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Delays are the animation gates, overridable per deployment.
type Delays struct {
	BookOpen   time.Duration `env:"JOURNEY_DELAY_BOOK_OPEN" envDefault:"1500ms"`
	MapBurn    time.Duration `env:"JOURNEY_DELAY_MAP_BURN" envDefault:"2s"`
	PageTurn   time.Duration `env:"JOURNEY_DELAY_PAGE_TURN" envDefault:"500ms"`
	Treasure   time.Duration `env:"JOURNEY_DELAY_TREASURE" envDefault:"3s"`
	Payment    time.Duration `env:"JOURNEY_DELAY_PAYMENT" envDefault:"3s"`
	HeroReturn time.Duration `env:"JOURNEY_DELAY_HERO_RETURN" envDefault:"2s"`
}

// Timings converts the delays into the workflow payload type.
func (d Delays) Timings() types.Timings {
	return types.Timings{
		BookOpen:   d.BookOpen,
		MapBurn:    d.MapBurn,
		PageTurn:   d.PageTurn,
		Treasure:   d.Treasure,
		Payment:    d.Payment,
		HeroReturn: d.HeroReturn,
	}
}

// Worker configures journey/worker.
type Worker struct {
	TemporalHost  string `env:"TEMPORAL_HOST" envDefault:"localhost:7233"`
	TaskQueue     string `env:"JOURNEY_TASK_QUEUE" envDefault:"journey-task-queue"`
	StoragePath   string `env:"JOURNEY_DB" envDefault:"journey.db"`
	MetricsAddr   string `env:"JOURNEY_METRICS_ADDR" envDefault:":9464"`
	LogLevel      string `env:"JOURNEY_LOG_LEVEL" envDefault:"info"`
	MaxConcurrent int    `env:"JOURNEY_MAX_CONCURRENT_ACTIVITIES" envDefault:"100"`
}

// Starter configures journey/starter.
type Starter struct {
	TemporalHost     string `env:"TEMPORAL_HOST" envDefault:"localhost:7233"`
	TaskQueue        string `env:"JOURNEY_TASK_QUEUE" envDefault:"journey-task-queue"`
	CatalogPath      string `env:"JOURNEY_CATALOG"`
	SessionID        string `env:"JOURNEY_SESSION_ID"`
	ViewerName       string `env:"JOURNEY_VIEWER_NAME"`
	StrictNavigation bool   `env:"JOURNEY_STRICT_NAVIGATION" envDefault:"false"`
	MaxActionsPerRun int    `env:"JOURNEY_MAX_ACTIONS_PER_RUN" envDefault:"500"`
	LogLevel         string `env:"JOURNEY_LOG_LEVEL" envDefault:"info"`
	Async            bool   `env:"ASYNC" envDefault:"false"`
	Delays           Delays
}

// CLI supplies journeyctl's flag defaults.
type CLI struct {
	StoragePath      string `env:"JOURNEY_DB" envDefault:"journey.db"`
	Profile          string `env:"JOURNEY_PROFILE" envDefault:"default"`
	CatalogPath      string `env:"JOURNEY_CATALOG"`
	StrictNavigation bool   `env:"JOURNEY_STRICT_NAVIGATION" envDefault:"false"`
	MetricsFile      string `env:"JOURNEY_METRICS_FILE"`
	Delays           Delays
}
