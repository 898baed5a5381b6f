package container

import (
	"context"
	"testing"
	"time"

	"gostatcore/adapters/memory"
	"gostatcore/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Log:      config.LogConfig{Level: "error"},
		Analysis: config.AnalysisConfig{MaxConcurrentUnits: 2, UnitTimeout: time.Second},
	}
}

func TestNew_NilConfig(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestNew_DefaultsToMemoryStore(t *testing.T) {
	c, err := New(testConfig())
	require.NoError(t, err)
	assert.IsType(t, &memory.ResultStore{}, c.Results)
	assert.Nil(t, c.DB)
	assert.NoError(t, c.Shutdown(context.Background()))
}

func TestDeps(t *testing.T) {
	c, err := New(testConfig())
	require.NoError(t, err)

	closed := false
	deps := c.Deps(func() { closed = true })
	assert.Same(t, c.Logger, deps.Logger)
	assert.Equal(t, int64(2), deps.MaxConcurrentUnits)
	assert.Equal(t, time.Second, deps.UnitTimeout)
	assert.NotNil(t, deps.Units)
	require.NotNil(t, deps.OnClose)
	deps.OnClose()
	assert.True(t, closed)
}

func TestInitWithDatabase_Nil(t *testing.T) {
	c, err := New(testConfig())
	require.NoError(t, err)
	assert.Error(t, c.InitWithDatabase(context.Background(), nil))
}
