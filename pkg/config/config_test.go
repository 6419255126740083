package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, "8000", c.Port)
	assert.Equal(t, 20, c.Assignment.MaxWeightPasses)
	assert.Equal(t, 15, c.Assignment.MaxCountPasses)
	assert.Equal(t, 10000, c.DefaultRateLimit)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MAX_WEIGHT_PASSES", "5")
	t.Setenv("MAX_COUNT_PASSES", "not-a-number")
	t.Setenv("ADMIN_HOTEL", "harbor")

	c := Default()
	c.LoadFromEnv()
	assert.Equal(t, "9090", c.Port)
	assert.Equal(t, 5, c.Assignment.MaxWeightPasses)
	assert.Equal(t, 15, c.Assignment.MaxCountPasses, "invalid values keep the default")
	assert.Equal(t, "harbor", c.Admin.Hotel)
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "7000"
jwt_secret: file-secret
log:
  level: debug
assignment:
  max_weight_passes: 8
`), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "7100")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "7100", c.Port, "env wins over file")
	assert.Equal(t, "file-secret", c.JWTSecret)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, 8, c.Assignment.MaxWeightPasses)
	assert.Equal(t, 15, c.Assignment.MaxCountPasses)
}

func TestLoadFile_Missing(t *testing.T) {
	err := Default().LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	c := Default()
	require.Error(t, c.Validate(), "release mode needs secrets")

	c.GinMode = "debug"
	require.NoError(t, c.Validate())

	c.GinMode = "release"
	c.JWTSecret = "j"
	c.APIMasterSecret = "k"
	require.NoError(t, c.Validate())

	c.DefaultRateLimit = 0
	require.Error(t, c.Validate())
}
