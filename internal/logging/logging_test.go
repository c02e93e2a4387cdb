package logging

import (
	"testing"

	"go.uber.org/zap"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zap.AtomicLevel{
		"":        zap.NewAtomicLevelAt(zap.InfoLevel),
		"DEBUG":   zap.NewAtomicLevelAt(zap.DebugLevel),
		" warn ":  zap.NewAtomicLevelAt(zap.WarnLevel),
		"warning": zap.NewAtomicLevelAt(zap.WarnLevel),
		"error":   zap.NewAtomicLevelAt(zap.ErrorLevel),
	}
	for raw, want := range cases {
		got, err := ParseLevel(raw)
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", raw, err)
		}
		if got != want.Level() {
			t.Fatalf("ParseLevel(%q) = %v, want %v", raw, got, want.Level())
		}
	}

	if _, err := ParseLevel("verbose"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestNew(t *testing.T) {
	logger, err := New("debug", true)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer logger.Sync()

	if !logger.Core().Enabled(zap.DebugLevel) {
		t.Fatalf("expected debug level to be enabled")
	}

	if _, err := New("loud", false); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
