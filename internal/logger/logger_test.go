package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDebugSuppressedWhenQuiet(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	Debug("hidden %d", 1)
	Info("hidden too")
	Warn("and this")

	assert.Empty(t, buf.String())
}

func TestVerboseLevels(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)
	defer SetVerbose(false)

	Debug("d %d", 1)
	Info("i")
	Warn("w")
	Section("stage")

	out := buf.String()
	assert.Contains(t, out, "[DEBUG] d 1")
	assert.Contains(t, out, "[INFO] i")
	assert.Contains(t, out, "[WARN] w")
	assert.Contains(t, out, "=== stage ===")
}

func TestErrorAlwaysPrinted(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	Error("boom %s", "x")

	assert.Contains(t, buf.String(), "[ERROR] boom x")
}
