package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse(nil, env(nil))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:5000", cfg.Addr)
	assert.Equal(t, "intakes.sqlite3", cfg.DBUrl)
	assert.Equal(t, "uploads", cfg.UploadsDir)
	assert.Equal(t, int64(10), cfg.MaxUploadMB)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes())
	assert.Equal(t, "coach", cfg.CoachUser)
	assert.Equal(t, "change-me", cfg.CoachPass)
	assert.True(t, cfg.DefaultCredentials())
	assert.False(t, cfg.Debug)
	assert.False(t, cfg.LogJSON)
	assert.Equal(t, "http://localhost:5000", cfg.Url())
}

func TestParse_FlagsAndEnv(t *testing.T) {
	cfg, err := Parse(
		[]string{"-host", "127.0.0.1", "-port", "8080", "-db-url", "x.db", "-uploads-dir", "/tmp/up", "-max-upload-mb", "3", "-debug", "-log-json"},
		env(map[string]string{"COACH_USER": "mick", "COACH_PASS": "s3cret"}),
	)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.Addr)
	assert.Equal(t, "x.db", cfg.DBUrl)
	assert.Equal(t, "/tmp/up", cfg.UploadsDir)
	assert.Equal(t, int64(3), cfg.MaxUploadMB)
	assert.True(t, cfg.Debug)
	assert.True(t, cfg.LogJSON)
	assert.Equal(t, "mick", cfg.CoachUser)
	assert.Equal(t, "s3cret", cfg.CoachPass)
	assert.False(t, cfg.DefaultCredentials())
	assert.Equal(t, "http://127.0.0.1:8080", cfg.Url())
}

func TestParse_EmptyEnvIsKept(t *testing.T) {
	cfg, err := Parse(nil, env(map[string]string{"COACH_USER": "", "COACH_PASS": ""}))
	require.NoError(t, err)
	assert.Equal(t, "", cfg.CoachUser)
	assert.Equal(t, "", cfg.CoachPass)
	assert.False(t, cfg.DefaultCredentials())

	cfg, err = Parse(nil, env(map[string]string{"COACH_PASS": "pw"}))
	require.NoError(t, err)
	assert.Equal(t, DefaultCoachUser, cfg.CoachUser)
	assert.Equal(t, "pw", cfg.CoachPass)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"-nope"}},
		{"port out of range", []string{"-port", "70000"}},
		{"zero upload size", []string{"-max-upload-mb", "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.args, env(nil))
			assert.Error(t, err)
		})
	}
}
