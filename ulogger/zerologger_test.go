package ulogger

import (
	"bytes"
	"testing"

	"github.com/ordishs/gocore"
	"github.com/stretchr/testify/assert"
)

func TestShortCaller(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		width    int
		expected string
	}{
		{"fits whole", "a/b/c.go:10", 32, "a/b/c.go:10"},
		{"keeps the tail", "services/blockassembly/BlockAssembler.go:116", 40, "blockassembly/BlockAssembler.go:116"},
		{"file name wider than width", "x/averyveryverylongfilename.go:1", 8, "averyveryverylongfilename.go:1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, shortCaller(tt.file, tt.width))
		})
	}
}

func TestZeroLoggerLevels(t *testing.T) {
	z := NewZeroLogger("levels", WithWriter(&bytes.Buffer{}), WithPretty(false))

	for name, expected := range map[string]int{
		"debug":    int(gocore.DEBUG),
		"WARN":     int(gocore.WARN),
		"error":    int(gocore.ERROR),
		"nonsense": int(gocore.INFO),
	} {
		z.SetLogLevel(name)
		assert.Equal(t, expected, z.LogLevel(), name)
	}
}

func TestColorize(t *testing.T) {
	assert.Equal(t, "WARN", colorize("WARN", colorYellow, true))
	assert.Equal(t, "\x1b[33mWARN\x1b[0m", colorize("WARN", colorYellow, false))
}
