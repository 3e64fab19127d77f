// Package metrics provides case execution metrics collection and aggregation.
package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/ethpandaops/tapcheck/internal/testcase"
	"github.com/sirupsen/logrus"
)

// caseMetric records one finished case.
type caseMetric struct {
	id       string
	duration time.Duration
}

// SummaryMetric provides aggregate statistics across a run.
type SummaryMetric struct {
	TotalDuration time.Duration
	TotalCases    int
	// CaseTime is the sum of every case's own duration.
	CaseTime    time.Duration
	Slowest     string
	SlowestTime time.Duration
}

// Collector interface for metrics collection
type Collector interface {
	Start(ctx context.Context) error
	Stop() error
	CaseFinished(result *testcase.Result)
	GetSummary() SummaryMetric
}

type collector struct {
	log         logrus.FieldLogger
	mu          sync.RWMutex
	caseMetrics []caseMetric
	startTime   time.Time
	stopTime    time.Time
}

// NewCollector creates a new metrics collector
func NewCollector(log logrus.FieldLogger) Collector {
	return &collector{
		log:         log.WithField("component", "metrics_collector"),
		caseMetrics: make([]caseMetric, 0, 64),
	}
}

func (c *collector) Start(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.startTime = time.Now()

	c.log.Debug("metrics collector started")

	return nil
}

func (c *collector) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopTime = time.Now()

	c.log.Debug("metrics collector stopped")

	return nil
}

// CaseFinished records a completed case. It satisfies scheduler.Observer.
func (c *collector) CaseFinished(result *testcase.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.caseMetrics = append(c.caseMetrics, caseMetric{
		id:       result.ID(),
		duration: result.Duration,
	})
}

func (c *collector) GetSummary() SummaryMetric {
	c.mu.RLock()
	defer c.mu.RUnlock()

	end := c.stopTime
	if end.IsZero() {
		end = time.Now()
	}

	summary := SummaryMetric{TotalCases: len(c.caseMetrics)}
	if !c.startTime.IsZero() {
		summary.TotalDuration = end.Sub(c.startTime)
	}

	for _, m := range c.caseMetrics {
		summary.CaseTime += m.duration
		if m.duration > summary.SlowestTime {
			summary.Slowest = m.id
			summary.SlowestTime = m.duration
		}
	}

	return summary
}

// Compile-time interface compliance check
var _ Collector = (*collector)(nil)
