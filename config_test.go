package glitter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigEmptyIsDefault(t *testing.T) {
	cfg, err := LoadConfig(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, 0.04, cfg.Physics.Gravity)
	assert.Equal(t, 0.2, cfg.Physics.Bounciness)
	assert.Equal(t, 0.2, cfg.Physics.Friction)
	assert.Equal(t, 0.01, cfg.Physics.Damping)
}

func TestLoadConfigOverridesSomeFields(t *testing.T) {
	cfg, err := LoadConfig(strings.NewReader(`
physics:
  gravity: 0.08
max_particles: 100
debug: true
log_level: debug
`))
	require.NoError(t, err)
	assert.Equal(t, 0.08, cfg.Physics.Gravity)
	assert.Equal(t, 0.2, cfg.Physics.Bounciness, "unset fields keep their defaults")
	assert.Equal(t, 100, cfg.MaxParticles)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 20, cfg.TPS)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"negative max":   "max_particles: -1",
		"zero tps":       "tps: 0",
		"damping > 1":    "physics: {damping: 1.5}",
		"friction < 0":   "physics: {friction: -0.1}",
		"malformed yaml": "physics: [",
		"wrong type":     "tps: fast",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestConfiguredPhysicsModule(t *testing.T) {
	cfg, err := LoadConfig(strings.NewReader("physics: {gravity: 0.5, damping: 0}"))
	require.NoError(t, err)

	m, err := NewPhysicsModule(Variable(3), Variable(3), Variable(3), WithPhysicsConfig(cfg.Physics))
	require.NoError(t, err)
	p := []float64{}
	m.Update(p)
	assert.InDelta(t, -0.5, m.vel.Y, 1e-12)
}
