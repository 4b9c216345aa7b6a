package feed

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rickgao/kalshi-streamfeed/internal/logging"
	"github.com/rickgao/kalshi-streamfeed/internal/pipeline"
	"github.com/rickgao/kalshi-streamfeed/internal/reconnect"
	"github.com/rickgao/kalshi-streamfeed/internal/sink"
)

func TestHandler_RunPropagatesHeaderProviderError(t *testing.T) {
	opts := logging.DefaultOptions()
	opts.OutputPath = filepath.Join(t.TempDir(), "log.jsonl")
	logger, err := logging.New(opts)
	if err != nil {
		t.Fatalf("logging.New failed: %v", err)
	}
	defer logger.Close()

	p := pipeline.New(sink.NewFanoutSink(), logger, nil, pipeline.Options{})
	limiter := NewRunLimiter(0)
	h := New(p, logger, limiter, nil)

	headerErr := errors.New("no credentials configured")
	cfg := reconnect.Config{
		URL:     "wss://example.invalid/path",
		Headers: func() (map[string]string, error) { return nil, headerErr },
	}

	err = h.Run(context.Background(), cfg)
	if !errors.Is(err, headerErr) {
		t.Fatalf("Run() error = %v, want %v", err, headerErr)
	}
}
