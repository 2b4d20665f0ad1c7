// Package evaluator - Built-in evaluation observers.
package evaluator

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"sync"
	"sync/atomic"

	"github.com/nvr-ai/go-ilsvrc/metrics"
)

// ProgressLogger logs evaluation progress through the standard logger.
type ProgressLogger struct {
	// Every controls how often a progress line is emitted, in images.
	Every int

	total     int64
	processed int64
}

// NewProgressLogger creates a progress logger that reports every n images.
func NewProgressLogger(n int) *ProgressLogger {
	if n <= 0 {
		n = 100
	}
	return &ProgressLogger{Every: n}
}

// OnEvaluationStart records the total image count.
func (p *ProgressLogger) OnEvaluationStart(shardCounts map[uint64]int) {
	var total int64
	for _, count := range shardCounts {
		total += int64(count)
	}
	atomic.StoreInt64(&p.total, total)
	log.Printf("evaluating %d images across %d shards", total, len(shardCounts))
}

// OnSingleImageEvaluationComplete logs a progress line every Every images.
func (p *ProgressLogger) OnSingleImageEvaluationComplete(shardID uint64, acc metrics.TopKAccuracy, imagePath string) {
	done := atomic.AddInt64(&p.processed, 1)
	if done%int64(p.Every) != 0 && done != atomic.LoadInt64(&p.total) {
		return
	}

	top1 := 0.0
	if accs := acc.Accuracies(); len(accs) > 0 {
		top1 = accs[0]
	}
	log.Printf(
		"progress: %d/%d images (shard %d top-1 %.2f%%)",
		done, atomic.LoadInt64(&p.total), shardID, top1*100,
	)
}

// CSVLogger writes one CSV row per evaluated image with the owning shard's
// running accuracies.
type CSVLogger struct {
	mu sync.Mutex
	w  *csv.Writer
	k  int
}

// NewCSVLogger creates a CSV observer writing to w, tracking k ranks. The
// header row is written immediately.
func NewCSVLogger(w io.Writer, k int) (*CSVLogger, error) {
	l := &CSVLogger{w: csv.NewWriter(w), k: k}

	header := make([]string, 0, k+2)
	header = append(header, "shard", "image")
	for i := 1; i <= k; i++ {
		header = append(header, fmt.Sprintf("top%d", i))
	}
	if err := l.w.Write(header); err != nil {
		return nil, err
	}
	l.w.Flush()

	return l, l.w.Error()
}

// OnEvaluationStart implements Observer.
func (l *CSVLogger) OnEvaluationStart(shardCounts map[uint64]int) {}

// OnSingleImageEvaluationComplete appends a row for the image.
func (l *CSVLogger) OnSingleImageEvaluationComplete(shardID uint64, acc metrics.TopKAccuracy, imagePath string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	row := make([]string, 0, l.k+2)
	row = append(row, fmt.Sprintf("%d", shardID), imagePath)
	for _, a := range acc.Accuracies() {
		row = append(row, fmt.Sprintf("%.6f", a))
	}

	if err := l.w.Write(row); err != nil {
		log.Printf("csv log write failed for %s: %v", imagePath, err)
	}
}

// Flush writes any buffered rows to the underlying writer.
func (l *CSVLogger) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Flush()
	return l.w.Error()
}
