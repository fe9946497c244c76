package logging

import (
	"testing"
	"time"

	"github.com/cineshazam/cineshazam/pkg/models"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name: "JSON format to stdout",
			config: Config{
				Level:  "info",
				Format: "json",
				Output: "stdout",
			},
			wantErr: false,
		},
		{
			name: "Console format to stderr",
			config: Config{
				Level:  "debug",
				Format: "console",
				Output: "stderr",
			},
			wantErr: false,
		},
		{
			name: "Invalid log level defaults to info",
			config: Config{
				Level:  "invalid",
				Format: "json",
				Output: "stdout",
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewLogger(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewLogger() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && logger == nil {
				t.Error("Expected non-nil logger")
			}
		})
	}
}

func TestLoggerMethods(t *testing.T) {
	logger, err := NewLogger(Config{
		Level:  "debug",
		Format: "json",
		Output: "stdout",
	})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	// Derived loggers should not panic and should be independent values
	logger.WithRequestID("req-1").Info("request started")
	logger.WithMovieID("tt0076759").Debug("scoring candidate")
	logger.WithStrategy("direct-download").Warn("strategy failed")

	logger.LogExtractionAttempt("req-1", models.ExtractionAttempt{
		StrategyName: "direct-download",
		StartedAt:    time.Now(),
		Outcome:      models.OutcomeTransientFailure,
		ErrorDetail:  "connection reset",
	})

	logger.LogIdentification("req-1", 12, 3, 250*time.Millisecond)
}

func TestNewDefaultLogger(t *testing.T) {
	logger, err := NewDefaultLogger()
	if err != nil {
		t.Fatalf("Failed to create default logger: %v", err)
	}
	if logger == nil {
		t.Error("Expected non-nil logger")
	}
}

func TestMustDefaultLogger(t *testing.T) {
	logger := MustDefaultLogger()
	if logger == nil {
		t.Fatal("Expected non-nil logger")
	}
	logger.WithWorkerID("worker-1").Info("ready")
}
