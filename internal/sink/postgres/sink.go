// Package postgres persists market data events to PostgreSQL, batching
// writes the same way the rest of this codebase's storage layer does.
package postgres

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rickgao/kalshi-streamfeed/internal/model"
)

// Config controls batching behavior.
type Config struct {
	BatchSize     int
	FlushInterval time.Duration
}

// DefaultConfig batches up to 500 rows per table or flushes every second,
// whichever comes first.
func DefaultConfig() Config {
	return Config{BatchSize: 500, FlushInterval: time.Second}
}

// Metrics tracks row counts across the sink's lifetime.
type Metrics struct {
	SnapshotInserts int64
	DeltaInserts    int64
	TradeInserts    int64
	Errors          int64
}

type snapshotRow struct {
	Ticker   string
	Sequence uint64
	Yes      []byte
	No       []byte
	Ts       int64
}

type deltaRow struct {
	Ticker   string
	Sequence uint64
	Price    uint16
	Delta    int32
	Side     string
	Ts       int64
}

type tradeRow struct {
	Ticker    string
	YesPrice  uint16
	NoPrice   uint16
	Count     uint32
	TakerSide string
	Ts        int64
}

// Sink is a sink.MarketSink that batches rows and flushes them to Postgres
// on a timer or when a batch fills up.
type Sink struct {
	cfg    Config
	db     *pgxpool.Pool
	logger *slog.Logger

	mu        sync.Mutex
	snapshots []snapshotRow
	deltas    []deltaRow
	trades    []tradeRow

	metricsMu sync.Mutex
	metrics   Metrics

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New constructs a Sink. Call Start to begin the periodic flush loop and
// Stop to drain it.
func New(cfg Config, db *pgxpool.Pool, logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultConfig().BatchSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = DefaultConfig().FlushInterval
	}
	return &Sink{cfg: cfg, db: db, logger: logger}
}

// Start begins the periodic flush loop.
func (s *Sink) Start(ctx context.Context) {
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go s.flushLoop()
}

// Stop cancels the flush loop and performs one final flush.
func (s *Sink) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.flush()
}

// Metrics returns a snapshot of the sink's row counts.
func (s *Sink) Metrics() Metrics {
	s.metricsMu.Lock()
	defer s.metricsMu.Unlock()
	return s.metrics
}

func (s *Sink) flushLoop() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.cfg.FlushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.flush()
		}
	}
}

func (s *Sink) OnSnapshot(snapshot model.OrderbookSnapshot) {
	yes, _ := json.Marshal(snapshot.Yes)
	no, _ := json.Marshal(snapshot.No)

	s.mu.Lock()
	s.snapshots = append(s.snapshots, snapshotRow{
		Ticker: snapshot.Ticker, Sequence: uint64(snapshot.Sequence),
		Yes: yes, No: no, Ts: int64(snapshot.Ts),
	})
	full := len(s.snapshots) >= s.cfg.BatchSize
	s.mu.Unlock()
	if full {
		s.flush()
	}
}

func (s *Sink) OnDelta(delta model.OrderbookDelta) {
	s.mu.Lock()
	s.deltas = append(s.deltas, deltaRow{
		Ticker: delta.Ticker, Sequence: uint64(delta.Sequence),
		Price: uint16(delta.Price), Delta: int32(delta.Delta),
		Side: delta.Side.String(), Ts: int64(delta.Ts),
	})
	full := len(s.deltas) >= s.cfg.BatchSize
	s.mu.Unlock()
	if full {
		s.flush()
	}
}

func (s *Sink) OnTrade(trade model.TradeEvent) {
	s.mu.Lock()
	s.trades = append(s.trades, tradeRow{
		Ticker: trade.Ticker, YesPrice: uint16(trade.YesPrice), NoPrice: uint16(trade.NoPrice),
		Count: uint32(trade.Count), TakerSide: trade.TakerSide.String(), Ts: int64(trade.Ts),
	})
	full := len(s.trades) >= s.cfg.BatchSize
	s.mu.Unlock()
	if full {
		s.flush()
	}
}

// OnStatus is unreachable from the current codec dispatch but is
// implemented for MarketSink completeness.
func (s *Sink) OnStatus(model.MarketStatusUpdate) {}

func (s *Sink) flush() {
	s.mu.Lock()
	snapshots := s.snapshots
	deltas := s.deltas
	trades := s.trades
	s.snapshots = nil
	s.deltas = nil
	s.trades = nil
	s.mu.Unlock()

	if len(snapshots) == 0 && len(deltas) == 0 && len(trades) == 0 {
		return
	}

	if len(snapshots) > 0 {
		s.insertSnapshots(snapshots)
	}
	if len(deltas) > 0 {
		s.insertDeltas(deltas)
	}
	if len(trades) > 0 {
		s.insertTrades(trades)
	}
}

func (s *Sink) insertSnapshots(rows []snapshotRow) {
	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(`
			INSERT INTO orderbook_snapshots (ticker, sequence, yes, no, ts)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (ticker, sequence) DO NOTHING
		`, r.Ticker, r.Sequence, r.Yes, r.No, r.Ts)
	}
	s.execBatch(batch, len(rows), &s.metrics.SnapshotInserts, "orderbook_snapshots")
}

func (s *Sink) insertDeltas(rows []deltaRow) {
	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(`
			INSERT INTO orderbook_deltas (ticker, sequence, price, delta, side, ts)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (ticker, sequence) DO NOTHING
		`, r.Ticker, r.Sequence, r.Price, r.Delta, r.Side, r.Ts)
	}
	s.execBatch(batch, len(rows), &s.metrics.DeltaInserts, "orderbook_deltas")
}

func (s *Sink) insertTrades(rows []tradeRow) {
	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(`
			INSERT INTO trades (ticker, yes_price, no_price, count, taker_side, ts)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, r.Ticker, r.YesPrice, r.NoPrice, r.Count, r.TakerSide, r.Ts)
	}
	s.execBatch(batch, len(rows), &s.metrics.TradeInserts, "trades")
}

func (s *Sink) execBatch(batch *pgx.Batch, n int, counter *int64, table string) {
	results := s.db.SendBatch(s.ctx, batch)
	defer results.Close()

	inserted := 0
	for i := 0; i < n; i++ {
		ct, err := results.Exec()
		if err != nil {
			s.logger.Error("batch insert failed", "table", table, "error", err)
			s.metricsMu.Lock()
			s.metrics.Errors++
			s.metricsMu.Unlock()
			continue
		}
		inserted += int(ct.RowsAffected())
	}

	s.metricsMu.Lock()
	*counter += int64(inserted)
	s.metricsMu.Unlock()
}
