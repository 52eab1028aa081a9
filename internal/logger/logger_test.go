package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	t.Run("InvalidLevel", func(t *testing.T) {
		if _, err := New(Config{Level: "loud"}); err == nil {
			t.Fatal("expected error for invalid level")
		}
	})

	t.Run("FileOutput", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "grammar.log")
		log, err := New(Config{Level: "info", Format: "json", File: &FileConfig{Enabled: true, Path: path}})
		if err != nil {
			t.Fatalf("Failed to create logger: %v", err)
		}

		log.WithComponent("test").LogCorrection("She don't have no money", 12, 2, 70, []string{"Double Negatives"})
		_ = log.Sync()

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("Failed to read log file: %v", err)
		}
		out := string(data)
		if !strings.Contains(out, `"text_digest":"`+Digest("She don't have no money")+`"`) {
			t.Errorf("digest missing from log line: %s", out)
		}
		if strings.Contains(out, "money") {
			t.Errorf("submitted text leaked into log: %s", out)
		}
		if !strings.Contains(out, `"component":"test"`) {
			t.Errorf("component missing from log line: %s", out)
		}
	})
}

func TestSetLevel(t *testing.T) {
	log, err := New(Config{Level: "info", Format: "console"})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	child := log.WithRequestID("abc")

	if err := log.SetLevel("debug"); err != nil {
		t.Fatalf("SetLevel failed: %v", err)
	}
	if child.Level() != zapcore.DebugLevel {
		t.Errorf("derived logger level = %v, want debug", child.Level())
	}
	if !child.Core().Enabled(zapcore.DebugLevel) {
		t.Error("derived logger should emit debug after SetLevel")
	}
	if err := log.SetLevel("verbose"); err == nil {
		t.Error("expected error for invalid level")
	}
}

func TestDigest(t *testing.T) {
	if len(Digest("")) != 12 {
		t.Errorf("digest length = %d, want 12", len(Digest("")))
	}
	if Digest("a") == Digest("b") {
		t.Error("different inputs share a digest")
	}
}
