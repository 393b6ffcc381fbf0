package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("no arguments prints usage and exits cleanly", func(t *testing.T) {
		var out bytes.Buffer
		cfg, shouldExit, err := Parse(nil, &out)
		require.NoError(t, err)
		assert.True(t, shouldExit)
		assert.Nil(t, cfg)
		assert.Contains(t, out.String(), "Usage:")
	})

	t.Run("positional patch path", func(t *testing.T) {
		var out bytes.Buffer
		cfg, shouldExit, err := Parse([]string{"lead.hcl"}, &out)
		require.NoError(t, err)
		assert.False(t, shouldExit)
		assert.Equal(t, "lead.hcl", cfg.PatchPath)
	})

	t.Run("patch flag wins over positional", func(t *testing.T) {
		var out bytes.Buffer
		cfg, _, err := Parse([]string{"-patch", "a.hcl", "b.hcl"}, &out)
		require.NoError(t, err)
		assert.Equal(t, "a.hcl", cfg.PatchPath)
	})

	t.Run("engine options pass through", func(t *testing.T) {
		var out bytes.Buffer
		cfg, _, err := Parse([]string{
			"-p", "lead.hcl",
			"-sample-rate", "48000",
			"-buffer", "256",
			"-low-water-ms", "40",
			"-high-water-ms", "60",
			"-listen-port", "8080",
			"-capture", "out.wav",
			"-duration", "30s",
		}, &out)
		require.NoError(t, err)
		assert.Equal(t, 48000, cfg.SampleRate)
		assert.Equal(t, 256, cfg.BufferSize)
		assert.Equal(t, 40, cfg.LowWaterMs)
		assert.Equal(t, 60, cfg.HighWaterMs)
		assert.Equal(t, 8080, cfg.ListenPort)
		assert.Equal(t, "out.wav", cfg.CaptureWAV)
		assert.Equal(t, 30*time.Second, cfg.Duration)
	})

	t.Run("invalid log format", func(t *testing.T) {
		var out bytes.Buffer
		_, _, err := Parse([]string{"-log-format", "xml", "lead.hcl"}, &out)
		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 2, exitErr.Code)
	})

	t.Run("invalid log level", func(t *testing.T) {
		var out bytes.Buffer
		_, _, err := Parse([]string{"-log-level", "loud", "lead.hcl"}, &out)
		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 2, exitErr.Code)
	})

	t.Run("inverted water marks are rejected", func(t *testing.T) {
		var out bytes.Buffer
		_, _, err := Parse([]string{"-low-water-ms", "100", "-high-water-ms", "80", "lead.hcl"}, &out)
		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 2, exitErr.Code)
	})
}
