package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `yaml:"name"`
	Port  int    `yaml:"port"`
	Token string `yaml:"token"`
}

func (s *sample) Validate() error {
	if s.Port <= 0 {
		return errors.New("port must be positive")
	}
	return nil
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoad_ExpandsEnvAndKeepsDefaults(t *testing.T) {
	t.Setenv("SAMPLE_TOKEN", "s3cret")
	p := writeFile(t, "port: 9090\ntoken: ${SAMPLE_TOKEN}\n")

	cfg := sample{Name: "default", Port: 1}
	require.NoError(t, Load(p, &cfg))
	assert.Equal(t, sample{Name: "default", Port: 9090, Token: "s3cret"}, cfg)
}

func TestLoad_Validates(t *testing.T) {
	p := writeFile(t, "port: 0\n")
	cfg := sample{Port: 1}
	err := Load(p, &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation failed")
}

func TestLoad_MissingFile(t *testing.T) {
	var cfg sample
	assert.Error(t, Load(filepath.Join(t.TempDir(), "nope.yaml"), &cfg))
}

func TestLoadOptional(t *testing.T) {
	cfg := sample{Port: 8080}
	loaded, err := LoadOptional(filepath.Join(t.TempDir(), "nope.yaml"), &cfg)
	require.NoError(t, err)
	assert.False(t, loaded)
	assert.Equal(t, 8080, cfg.Port, "defaults changed")

	bad := sample{}
	_, err = LoadOptional(filepath.Join(t.TempDir(), "nope.yaml"), &bad)
	assert.Error(t, err, "defaults should still be validated")

	p := writeFile(t, "name: custom\n")
	loaded, err = LoadOptional(p, &cfg)
	require.NoError(t, err)
	assert.True(t, loaded)
	assert.Equal(t, "custom", cfg.Name)
}

func TestLoad_InvalidYAML(t *testing.T) {
	p := writeFile(t, "port: [unterminated\n")
	var cfg sample
	err := Load(p, &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse")
}
