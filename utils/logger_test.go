package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInitLogger(t *testing.T) {
	t.Cleanup(func() { Logger = zap.NewNop() })

	require.NoError(t, InitLogger("release", "serve"))
	assert.Equal(t, "serve", Logger.Name())
	assert.False(t, Logger.Core().Enabled(zap.DebugLevel))

	require.NoError(t, InitLogger("debug", "studio"))
	assert.Equal(t, "studio", Logger.Name())
	assert.True(t, Logger.Core().Enabled(zap.DebugLevel))

	require.NoError(t, InitLogger("test", "edit"))
	assert.False(t, Logger.Core().Enabled(zap.ErrorLevel))
}
