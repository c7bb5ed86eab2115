package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// RawSink writes a batch's raw records and run metadata to disk.
type RawSink struct {
	root   string
	clock  Clock
	logger *zap.Logger
}

// RunInfo summarizes one batch run alongside its raw output.
type RunInfo struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Requested  int       `json:"requested"`
	Collected  int       `json:"collected"`
	RawPath    string    `json:"raw_path"`
}

// NewRawSink returns a sink rooted at dir, creating it if needed.
func NewRawSink(root string, clock Clock, logger *zap.Logger) (*RawSink, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create sink dir %s: %w", root, err)
	}
	return &RawSink{root: root, clock: clock, logger: logger}, nil
}

// SaveRaw writes the records as a timestamped JSON array and returns the
// file path.
func (s *RawSink) SaveRaw(ctx context.Context, records []PropertyRecord) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("context canceled: %w", err)
	}
	payload, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal records: %w", err)
	}
	name := fmt.Sprintf("funda_data_%s.json", s.clock.Now().Format("20060102_150405"))
	target := filepath.Join(s.root, name)
	if err := os.WriteFile(target, payload, 0o600); err != nil {
		return "", fmt.Errorf("write raw data %s: %w", target, err)
	}
	s.logger.Info("Raw data saved",
		zap.String("path", target),
		zap.Int("records", len(records)),
	)
	return target, nil
}

// SaveRunInfo writes one metadata json per run next to the raw file.
func (s *RawSink) SaveRunInfo(ctx context.Context, info RunInfo) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context canceled: %w", err)
	}
	payload, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal run info: %w", err)
	}
	target := filepath.Join(s.root, fmt.Sprintf("run_%s.json", info.RunID))
	if err := os.WriteFile(target, payload, 0o600); err != nil {
		return fmt.Errorf("write run info %s: %w", target, err)
	}
	return nil
}
