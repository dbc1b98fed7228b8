package emitter

import (
	"sync"
	"testing"

	"github.com/measurement-kit/go-libnettest2/internal/model"
)

type collectingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *collectingSink) Consume(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func TestEmitWrapsKeyValue(t *testing.T) {
	sink := &collectingSink{}
	e := New(sink, model.LogLevelInfo, nil)
	e.Emit("status.queued", struct{}{})
	if len(sink.events) != 1 {
		t.Fatal("expected exactly one event")
	}
	if sink.events[0].Key != "status.queued" {
		t.Fatal("unexpected key", sink.events[0].Key)
	}
}

func TestDebugSuppressedBelowLevel(t *testing.T) {
	sink := &collectingSink{}
	e := New(sink, model.LogLevelInfo, nil)
	e.Debugf("this should not produce a log event")
	for _, ev := range sink.events {
		if ev.Key == "log" {
			t.Fatal("did not expect a log event at INFO level for a debug message")
		}
	}
}

func TestDebugEmittedAtDebugLevel(t *testing.T) {
	sink := &collectingSink{}
	e := New(sink, model.LogLevelDebug, nil)
	e.Debugf("hello %s", "world")
	found := false
	for _, ev := range sink.events {
		if ev.Key == "log" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a log event at DEBUG level")
	}
}

func TestProgressMonotonic(t *testing.T) {
	sink := &collectingSink{}
	e := New(sink, model.LogLevelInfo, nil)
	e.Progress(0.1, "contact bouncer")
	e.Progress(1.0, "report close")
	if len(sink.events) != 2 {
		t.Fatal("expected two progress events")
	}
}

func TestConcurrentEmitIsSafe(t *testing.T) {
	sink := &collectingSink{}
	e := New(sink, model.LogLevelInfo, nil)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			e.Emit("status.measurement_done", struct {
				Idx int `json:"idx"`
			}{idx})
		}(i)
	}
	wg.Wait()
	if len(sink.events) != 50 {
		t.Fatal("expected 50 events, got", len(sink.events))
	}
}
