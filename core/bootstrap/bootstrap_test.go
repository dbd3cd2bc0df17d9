package bootstrap

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/m3rciful/planpicker/core/config"
)

func TestRunRequiresConfig(t *testing.T) {
	_, err := Run(Options{})
	assert.Error(t, err)
}

func TestRunWiresLoggerAndMetrics(t *testing.T) {
	var seen *coreconfig.Config
	cfg := &coreconfig.Config{}
	res, err := Run(Options{
		Config:     cfg,
		LoggerInit: func(c *coreconfig.Config) error { seen = c; return nil },
	})
	require.NoError(t, err)
	assert.Same(t, cfg, seen)
	require.NotNil(t, res.Metrics)
	assert.NotNil(t, res.Metrics.Registry)
}

func TestRunLoggerFailure(t *testing.T) {
	boom := errors.New("boom")
	_, err := Run(Options{
		Config:     &coreconfig.Config{},
		LoggerInit: func(*coreconfig.Config) error { return boom },
	})
	assert.ErrorIs(t, err, boom)
}
