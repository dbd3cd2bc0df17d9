package logger

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	coreconfig "github.com/m3rciful/planpicker/core/config"
)

func TestResolveDefaults(t *testing.T) {
	set := resolve(nil)
	assert.Equal(t, slog.LevelInfo, set.level)
	assert.Equal(t, formatJSON, set.format)
	assert.Equal(t, defaultKeyOrder, set.keyOrder)
}

func TestResolveLoggingSection(t *testing.T) {
	cfg := &coreconfig.Config{Logging: coreconfig.LoggingConfig{
		Level:     " WARN ",
		Profile:   "Dev",
		KeysOrder: "event, ,level",
	}}
	set := resolve(cfg)
	assert.Equal(t, slog.LevelWarn, set.level)
	assert.Equal(t, formatKV, set.format)
	assert.Equal(t, "dev", set.profile)
	assert.Equal(t, []string{"event", "level"}, set.keyOrder)

	cfg.Logging.Format = "json"
	assert.Equal(t, formatJSON, resolve(cfg).format)

	cfg.Logging = coreconfig.LoggingConfig{}
	assert.Equal(t, "prod", resolve(cfg).profile)
}

func TestStatusAndRoundMS(t *testing.T) {
	assert.Equal(t, "ok", Status(nil))
	assert.Equal(t, "fail", Status(assert.AnError))
	assert.Equal(t, 2*time.Millisecond, RoundMS(1600*time.Microsecond))
	assert.Zero(t, RoundMS(-time.Second))
}
