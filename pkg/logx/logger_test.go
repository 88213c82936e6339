package logx

import (
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestLoggerLevels(t *testing.T) {
	tests := []struct {
		level    string
		expected logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{"info", logrus.InfoLevel},
		{"warn", logrus.WarnLevel},
		{"warning", logrus.WarnLevel},
		{"error", logrus.ErrorLevel},
		{"invalid", logrus.InfoLevel}, // should default to info
	}

	for _, test := range tests {
		t.Run(test.level, func(t *testing.T) {
			result := parseLevel(test.level)
			if result != test.expected {
				t.Errorf("parseLevel(%q) = %v; want %v", test.level, result, test.expected)
			}
		})
	}
}

func TestLoggerCreation(t *testing.T) {
	logger := New("debug")
	if logger == nil {
		t.Fatal("Failed to create logger")
	}
	if !logger.entry.Logger.IsLevelEnabled(logrus.DebugLevel) {
		t.Errorf("expected debug level enabled")
	}
}

func TestWithFieldsPersists(t *testing.T) {
	base := New("info")
	child := base.WithField("location", "Hadera")

	if _, ok := child.entry.Data["location"]; !ok {
		t.Fatalf("expected persistent field 'location' on child logger")
	}
	if _, ok := base.entry.Data["location"]; ok {
		t.Fatalf("WithField must not mutate the receiver")
	}
}

func TestWithKVsOddArgsIgnoresTrailing(t *testing.T) {
	l := New("info")
	entry := l.withKVs("key1", "val1", "dangling")
	if entry.Data["key1"] != "val1" {
		t.Errorf("expected key1=val1, got %v", entry.Data)
	}
	if len(entry.Data) != 1 {
		t.Errorf("expected exactly one field from odd-length kv list, got %v", entry.Data)
	}
}

func TestWithKVsNonStringKeySkipped(t *testing.T) {
	l := New("info")
	entry := l.withKVs(42, "val1", "key2", "val2")
	if _, ok := entry.Data["key2"]; !ok {
		t.Errorf("expected key2 to be present")
	}
	if len(entry.Data) != 1 {
		t.Errorf("non-string key should be skipped, got fields %v", entry.Data)
	}
}

func TestSetLevel(t *testing.T) {
	l := New("info")
	l.SetLevel("debug")
	if !strings.EqualFold(l.entry.Logger.GetLevel().String(), "debug") {
		t.Errorf("expected level debug after SetLevel, got %v", l.entry.Logger.GetLevel())
	}
}
