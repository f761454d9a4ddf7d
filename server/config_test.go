package server_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carn181/phplsp/server"
)

func TestConfigDefaults(t *testing.T) {
	var cfg server.Config
	require.NoError(t, json.Unmarshal([]byte(`{}`), &cfg))
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.Excluded(".git/HEAD"))
}

func TestConfigOverrides(t *testing.T) {
	var cfg server.Config
	require.NoError(t, json.Unmarshal([]byte(`{"exclude":["vendor/**"],"log_level":"debug"}`), &cfg))
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Excluded("vendor/autoload.php"))
	assert.False(t, cfg.Excluded("src/app.php"))
}

func TestIsPHPFile(t *testing.T) {
	assert.True(t, server.IsPHPFile("/a/b.php"))
	assert.True(t, server.IsPHPFile("/a/B.PHP"))
	assert.False(t, server.IsPHPFile("/a/b.phtml"))
	assert.False(t, server.IsPHPFile("/a/php"))
}
