package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettings_Precedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bucketsweep.yaml")
	content := `role-name: FileRole
partition: aws-us-gov
concurrency: 3
session-name: file-session
session-duration: 1h
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("BUCKETSWEEP_CONCURRENCY", "5")
	t.Setenv("BUCKETSWEEP_SESSION_NAME", "env-session")

	f := newFixture()
	code, _, stderr := f.run(
		"--config", path,
		"--session-name", "flag-session",
		"--log-level", "error",
		"tmp-",
	)

	require.Equal(t, exitOK, code, stderr)
	assert.Equal(t, "FileRole", f.config.RoleName)
	assert.Equal(t, "aws-us-gov", f.config.Partition)
	assert.Equal(t, 5, f.config.Concurrency)
	assert.Equal(t, "flag-session", f.config.SessionName)
	assert.Equal(t, time.Hour, f.config.SessionDuration)
	assert.Equal(t, int32(1000), f.config.PageSize)
}

func TestLoadSettings_Defaults(t *testing.T) {
	f := newFixture()

	code, _, _ := f.run("--log-level", "error", "tmp-")

	require.Equal(t, exitOK, code)
	assert.Equal(t, "AWSCloudFormationStackSetExecutionRole", f.config.RoleName)
	assert.Equal(t, "aws", f.config.Partition)
	assert.Equal(t, "delete-buckets", f.config.SessionName)
	assert.Equal(t, 1, f.config.Concurrency)
	assert.Equal(t, 5, f.config.MaxRetries)
	assert.Equal(t, 3, f.config.DeleteAttempts)
	assert.Equal(t, int32(1000), f.config.PageSize)
	assert.Zero(t, f.config.SessionDuration)
	assert.Zero(t, f.config.RateLimit)
	assert.Empty(t, f.config.Region)
	assert.Empty(t, f.config.ExternalID)
	assert.False(t, f.config.DeleteOnPartialPurge)
}

func TestLoadSettings_InvalidSessionDuration(t *testing.T) {
	t.Setenv("BUCKETSWEEP_SESSION_DURATION", "1m")

	f := newFixture()
	code, _, stderr := f.run("tmp-")

	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr, "session duration")
}

func TestLoadSettings_PageSizeOutOfRange(t *testing.T) {
	for _, size := range []string{"0", "1001", "4294967297"} {
		f := newFixture()

		code, _, stderr := f.run("--page-size", size, "tmp-")

		assert.Equal(t, exitUsage, code, size)
		assert.Contains(t, stderr, "page-size must be between 1 and 1000")
		assert.Zero(t, f.calls, size)
	}
}

func TestNewLogger(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := newLogger(&buf, "info", "json")
		require.NoError(t, err)

		logger.Info("deleted bucket", "bucket", "tmp-one")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "deleted bucket", entry["msg"])
		assert.Equal(t, "tmp-one", entry["bucket"])
	})

	t.Run("level filters", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := newLogger(&buf, "warn", "text")
		require.NoError(t, err)

		logger.Info("hidden")
		logger.Warn("shown")

		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("invalid level", func(t *testing.T) {
		_, err := newLogger(&bytes.Buffer{}, "loud", "text")
		assert.Error(t, err)
	})

	t.Run("invalid format", func(t *testing.T) {
		_, err := newLogger(&bytes.Buffer{}, "info", "xml")
		assert.Error(t, err)
	})
}
