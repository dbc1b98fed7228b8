package runner

import (
	"context"
	"sync"
	"time"

	"github.com/measurement-kit/go-libnettest2/internal/model"
	"github.com/measurement-kit/go-libnettest2/internal/probeservices"
)

// maxIndex32 is the deliberate 32-bit interoperability ceiling on the
// number of inputs a single run may dispatch.
const maxIndex32 = 1<<32 - 1

// dispatch fans inputs out across parallelism workers, each claiming
// the next shared index until the list is exhausted, 90% of the run
// budget has elapsed, or Interrupt has been called.
func (r *Runner) dispatch(ctx context.Context, nc *model.NettestContext, collector *probeservices.Client, collectorBaseURL, testStartTime string, inputs []string) {
	if len(inputs) == 0 {
		return
	}

	parallelism := int(r.Settings.Options.Parallelism)
	if !r.Nettest.NeedsInput() {
		parallelism = 1
	} else if parallelism <= 0 {
		parallelism = 3
	}

	start := time.Now()
	budget := time.Duration(r.Settings.Options.MaxRuntime) * time.Second

	var mu sync.Mutex
	next := 0

	var active sync.WaitGroup
	for w := 0; w < parallelism; w++ {
		active.Add(1)
		go func() {
			defer active.Done()
			for {
				if r.interrupted.Load() {
					return
				}

				mu.Lock()
				if next >= len(inputs) || next > maxIndex32 {
					mu.Unlock()
					return
				}
				idx := next
				next++
				mu.Unlock()

				if time.Since(start) >= budget*9/10 {
					return
				}

				r.runOneMeasurement(ctx, nc, collector, collectorBaseURL, testStartTime, idx, inputs[idx])
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		active.Wait()
		close(done)
	}()
	for {
		select {
		case <-done:
			return
		case <-time.After(250 * time.Millisecond):
		}
	}
}
