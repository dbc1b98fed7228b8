package model

import "context"

// Nettest is the capability interface the Runner invokes to perform the
// actual measurement. Individual nettest semantics are the embedder's
// responsibility; the Runner only needs this contract.
type Nettest interface {
	// Name is the nettest's name (e.g. "example").
	Name() string

	// Version is the nettest's version (e.g. "0.1.0").
	Version() string

	// TestHelpers lists the names of test helpers this nettest wants
	// the bouncer to resolve on its behalf.
	TestHelpers() []string

	// NeedsInput tells the Runner whether this nettest consumes the
	// configured input list or runs exactly once with no input.
	NeedsInput() bool

	// Run executes one measurement against input, recording any bytes
	// transferred into bytesInfo, and returns the nettest-defined
	// test_keys value to embed into the measurement record.
	Run(ctx context.Context, settings *Settings, nc *NettestContext, input string, bytesInfo *BytesInfo) (testKeys any, err error)
}
