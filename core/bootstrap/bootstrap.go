// Package bootstrap initialises the shared infrastructure before the bot runs.
package bootstrap

import (
	"errors"
	"fmt"

	coreconfig "github.com/m3rciful/planpicker/core/config"
	"github.com/m3rciful/planpicker/core/logger"
	"github.com/m3rciful/planpicker/core/metrics"
)

// Options control the bootstrap pipeline. Nil funcs use the defaults.
type Options struct {
	Config *coreconfig.Config

	LoggerInit func(*coreconfig.Config) error
	NewMetrics func() *metrics.Metrics
}

// Result is the infrastructure handed to the app.
type Result struct {
	Metrics *metrics.Metrics
}

// Run initialises the logger and the metrics registry.
func Run(opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, errors.New("bootstrap: nil config provided")
	}
	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}
	newMetrics := opts.NewMetrics
	if newMetrics == nil {
		newMetrics = metrics.New
	}
	return &Result{Metrics: newMetrics()}, nil
}
