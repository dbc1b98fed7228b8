// Package exampletest contains a minimal model.Nettest implementation
// meant as a template for bootstrapping new nettests, and as the
// default nettest wired into the CLI driver.
package exampletest

import (
	"context"
	"errors"
	"time"

	"github.com/measurement-kit/go-libnettest2/internal/model"
)

const testVersion = "0.1.0"

// ErrFailure is returned by Run when Config.ReturnError is set.
var ErrFailure = errors.New("exampletest: mocked error")

// Config holds the knobs this nettest exposes.
type Config struct {
	Message     string
	ReturnError bool
	SleepTime   time.Duration
}

// TestKeys describes the keys of the test_keys map that Run returns.
type TestKeys struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
}

// Nettest implements model.Nettest with a fixed sleep and an optional
// mocked failure, useful for exercising the Runner pipeline end to end.
type Nettest struct {
	Config Config
}

// New returns a Nettest using config, filling in a default sleep time
// of two seconds if config.SleepTime is zero.
func New(config Config) *Nettest {
	if config.SleepTime == 0 {
		config.SleepTime = 2 * time.Second
	}
	return &Nettest{Config: config}
}

func (n *Nettest) Name() string          { return "example" }
func (n *Nettest) Version() string       { return testVersion }
func (n *Nettest) TestHelpers() []string { return nil }
func (n *Nettest) NeedsInput() bool      { return false }

// Run sleeps for Config.SleepTime, honoring ctx cancellation, then
// returns a map[string]any test_keys value with "success" and "message"
// keys, reporting success unless Config.ReturnError is set.
func (n *Nettest) Run(ctx context.Context, settings *model.Settings, nc *model.NettestContext, input string, bytesInfo *model.BytesInfo) (any, error) {
	ctx, cancel := context.WithTimeout(ctx, n.Config.SleepTime)
	defer cancel()
	<-ctx.Done()

	var err error
	if n.Config.ReturnError {
		err = ErrFailure
	}
	testKeys := map[string]any{
		"success": err == nil,
		"message": n.Config.Message,
	}
	return testKeys, err
}
