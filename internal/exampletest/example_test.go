package exampletest

import (
	"context"
	"testing"
	"time"

	"github.com/measurement-kit/go-libnettest2/internal/model"
)

func TestRunSucceedsByDefault(t *testing.T) {
	nt := New(Config{Message: "hello", SleepTime: time.Millisecond})
	keys, err := nt.Run(context.Background(), &model.Settings{}, model.NewNettestContext(), "", &model.BytesInfo{})
	if err != nil {
		t.Fatal(err)
	}
	m, ok := keys.(map[string]any)
	if !ok {
		t.Fatal("expected a map[string]any test_keys value")
	}
	if m["success"] != true {
		t.Fatal("expected success=true")
	}
}

func TestRunHonorsReturnError(t *testing.T) {
	nt := New(Config{ReturnError: true, SleepTime: time.Millisecond})
	keys, err := nt.Run(context.Background(), &model.Settings{}, model.NewNettestContext(), "", &model.BytesInfo{})
	if err != ErrFailure {
		t.Fatalf("expected ErrFailure, got %v", err)
	}
	m := keys.(map[string]any)
	if m["success"] != false {
		t.Fatal("expected success=false")
	}
}

func TestNameVersionNeedsInput(t *testing.T) {
	nt := New(Config{})
	if nt.Name() != "example" {
		t.Fatal("unexpected name")
	}
	if nt.Version() != testVersion {
		t.Fatal("unexpected version")
	}
	if nt.NeedsInput() {
		t.Fatal("example nettest does not need input")
	}
}
