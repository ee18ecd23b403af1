package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogRotation(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "objview.log")

	// 1MB is the smallest size lumberjack rotates at.
	restore := Replace(zap.NewNop())
	defer restore()
	err := InitWithFileConfig("debug", FileConfig{
		Path:       logFile,
		MaxSizeMB:  1,
		MaxBackups: 2,
		MaxAgeDays: 1,
	}, false)
	if err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}

	payload := strings.Repeat("v", 200)
	for i := 0; i < 15000; i++ {
		Sugar.Infof("vertex batch %d: %s", i, payload)
	}
	Sync()

	if _, err := os.Stat(logFile); err != nil {
		t.Fatalf("main log file missing: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	rotated := 0
	for _, e := range entries {
		name := e.Name()
		if name == "objview.log" || !strings.HasPrefix(name, "objview") {
			continue
		}
		rotated++
		// Rotated files carry a timestamp: objview-YYYY-MM-DDTHH-MM-SS.SSS.log
		if !strings.Contains(name, "-20") {
			t.Errorf("rotated file %s has no timestamp", name)
		}
	}
	if rotated == 0 {
		t.Error("no rotated files found")
	}
}

func TestLogLevels(t *testing.T) {
	dir := t.TempDir()
	restore := Replace(zap.NewNop())
	defer restore()

	tests := []struct {
		level    string
		expected []string
		excluded []string
	}{
		{"error", []string{"ERROR"}, []string{"WARN", "INFO", "DEBUG"}},
		{"warn", []string{"ERROR", "WARN"}, []string{"INFO", "DEBUG"}},
		{"info", []string{"ERROR", "WARN", "INFO"}, []string{"DEBUG"}},
		{"debug", []string{"ERROR", "WARN", "INFO", "DEBUG"}, nil},
		{"bogus", []string{"ERROR", "WARN", "INFO"}, []string{"DEBUG"}},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logFile := filepath.Join(dir, tt.level+".log")
			if err := InitWithFileConfig(tt.level, FileConfig{Path: logFile, MaxSizeMB: 10}, false); err != nil {
				t.Fatalf("failed to init logger: %v", err)
			}

			Debug("debug message")
			Info("info message")
			Warn("warn message")
			Error("error message")
			Sync()

			content, err := os.ReadFile(logFile)
			if err != nil {
				t.Fatalf("failed to read log file: %v", err)
			}
			out := string(content)
			for _, want := range tt.expected {
				if !strings.Contains(out, want) {
					t.Errorf("expected %s in log output", want)
				}
			}
			for _, unwanted := range tt.excluded {
				if strings.Contains(out, unwanted) {
					t.Errorf("unexpected %s in log output", unwanted)
				}
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in    string
		want  zapcore.Level
		known bool
	}{
		{"", zapcore.InfoLevel, true},
		{"debug", zapcore.DebugLevel, true},
		{"DEBUG", zapcore.DebugLevel, true},
		{"Warn", zapcore.WarnLevel, true},
		{"warning", zapcore.WarnLevel, true},
		{"error", zapcore.ErrorLevel, true},
		{"verbose", zapcore.InfoLevel, false},
	}

	for _, tt := range tests {
		got, known := parseLevel(tt.in)
		if got != tt.want || known != tt.known {
			t.Errorf("parseLevel(%q) = %v, %v; want %v, %v", tt.in, got, known, tt.want, tt.known)
		}
	}
}

func TestUnknownLevelWarns(t *testing.T) {
	restore := Replace(zap.NewNop())
	defer restore()

	logFile := filepath.Join(t.TempDir(), "objview.log")
	if err := InitWithFileConfig("verbose", FileConfig{Path: logFile, MaxSizeMB: 1}, false); err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}
	Sync()

	content, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(content), "unknown log level") {
		t.Errorf("expected a warning about the level, got %q", content)
	}
}

func TestInitCreatesLogDir(t *testing.T) {
	restore := Replace(zap.NewNop())
	defer restore()

	logFile := filepath.Join(t.TempDir(), "logs", "nested", "objview.log")
	if err := InitWithFileConfig("info", FileConfig{Path: logFile, MaxSizeMB: 1}, false); err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}
	if _, err := os.Stat(filepath.Dir(logFile)); err != nil {
		t.Errorf("log dir not created: %v", err)
	}
}

func TestInitLogDirError(t *testing.T) {
	restore := Replace(zap.NewNop())
	defer restore()

	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	before := Log
	err := InitWithFileConfig("info", FileConfig{Path: filepath.Join(blocker, "sub", "objview.log")}, false)
	if err == nil {
		t.Fatal("expected an error for a log dir under a regular file")
	}
	if Log != before {
		t.Error("failed init replaced the global logger")
	}
}

func TestNamed(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	restore := Replace(zap.New(core))
	defer restore()

	Named("mesh").Info("mesh loaded", zap.Int("faces", 12))
	Named("scene").Debug("dropped below level")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].LoggerName != "mesh" {
		t.Errorf("expected logger name mesh, got %q", entries[0].LoggerName)
	}
	if got := entries[0].ContextMap()["faces"]; got != int64(12) {
		t.Errorf("expected faces=12, got %v", got)
	}
}

func TestReplaceRestores(t *testing.T) {
	before := Log
	restore := Replace(zap.NewExample())
	if Log == before {
		t.Error("Replace did not install the new logger")
	}
	restore()
	if Log != before {
		t.Error("restore did not reinstate the previous logger")
	}
}

func TestDefaultFileConfig(t *testing.T) {
	cfg := DefaultFileConfig("/tmp/objview.log")

	if cfg.Path != "/tmp/objview.log" {
		t.Errorf("expected path /tmp/objview.log, got %s", cfg.Path)
	}
	if cfg.MaxSizeMB != 50 || cfg.MaxBackups != 3 || cfg.MaxAgeDays != 7 {
		t.Errorf("unexpected limits %+v", cfg)
	}
	if !cfg.Compress {
		t.Error("expected Compress to be true")
	}
}
