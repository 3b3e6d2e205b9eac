package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewReturnsUsableLogger(t *testing.T) {
	log := New(LevelDebug, false)
	if log == nil {
		t.Fatal("New returned nil")
	}
	log.Infow("test message", "key", "value")
}

func TestQuietForcesErrorLevel(t *testing.T) {
	log := New(LevelDebug, true)
	if log == nil {
		t.Fatal("New returned nil")
	}
	if log.Desugar().Core().Enabled(zapcore.WarnLevel) {
		t.Error("quiet logger should not enable warn level")
	}
}

func TestNopDiscardsWithoutPanicking(t *testing.T) {
	log := Nop()
	log.Debugw("discarded")
	log.Infow("discarded")
}
