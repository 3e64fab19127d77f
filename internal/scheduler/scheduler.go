// Package scheduler fans a list of cases out to concurrent executions and collects their
// results.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethpandaops/tapcheck/internal/testcase"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var (
	errDuplicateCase = errors.New("duplicate case name")
	errNilResult     = errors.New("runner returned no result")
	errNilCase       = errors.New("nil case")
)

// Runner executes a single case.
type Runner interface {
	Run(ctx context.Context, spec *testcase.CaseSpec) *testcase.Result
}

// Observer is notified as each case completes. Calls are serialized, so an observer may
// write to a shared stream without further locking.
type Observer interface {
	CaseFinished(result *testcase.Result)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(result *testcase.Result)

// CaseFinished calls f.
func (f ObserverFunc) CaseFinished(result *testcase.Result) { f(result) }

// Scheduler runs every case of a suite concurrently, one goroutine per case.
type Scheduler struct {
	runner    Runner
	observers []Observer
	log       logrus.FieldLogger

	mu sync.Mutex
}

// New creates a Scheduler dispatching to runner.
func New(log logrus.FieldLogger, runner Runner, observers ...Observer) *Scheduler {
	return &Scheduler{
		runner:    runner,
		observers: observers,
		log:       log.WithField("component", "scheduler"),
	}
}

// RunSuite executes all cases and returns exactly one result per case, in submission order.
// A failing case never cancels its siblings; only structural problems (duplicate names, a
// runner returning nil) are reported as errors.
func (s *Scheduler) RunSuite(ctx context.Context, cases []*testcase.CaseSpec) ([]*testcase.Result, error) {
	if err := Validate(cases); err != nil {
		return nil, err
	}

	start := time.Now()
	results := make([]*testcase.Result, len(cases))

	s.log.WithField("cases", len(cases)).Debug("dispatching cases")

	// No WithContext: one case failing must not cancel the others.
	var g errgroup.Group

	for i, spec := range cases {
		g.Go(func() error {
			result := s.runner.Run(ctx, spec)
			if result == nil {
				return fmt.Errorf("%w: %s", errNilResult, spec.ID())
			}

			// No mutex needed for results, each goroutine owns its index.
			results[i] = result
			s.notify(result)

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"cases":    len(results),
		"duration": time.Since(start),
	}).Debug("all cases completed")

	return results, nil
}

func (s *Scheduler) notify(result *testcase.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range s.observers {
		o.CaseFinished(result)
	}
}

// Validate reports structural problems that would stop RunSuite, so callers can check
// before emitting any output.
func Validate(cases []*testcase.CaseSpec) error {
	seen := make(map[string]struct{}, len(cases))

	for _, c := range cases {
		if c == nil {
			return errNilCase
		}

		id := c.ID()
		if _, ok := seen[id]; ok {
			return fmt.Errorf("%w: %s", errDuplicateCase, id)
		}

		seen[id] = struct{}{}
	}

	return nil
}
