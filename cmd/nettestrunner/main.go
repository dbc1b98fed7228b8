// Command nettestrunner drives a single nettest through the full
// queued -> started -> ... -> end lifecycle, printing every emitted
// event as NDJSON on stdout and a human-readable progress line on
// stderr.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/apex/log"

	clihandler "github.com/measurement-kit/go-libnettest2/internal/log/handlers/cli"

	"github.com/measurement-kit/go-libnettest2/internal/emitter"
	"github.com/measurement-kit/go-libnettest2/internal/exampletest"
	"github.com/measurement-kit/go-libnettest2/internal/model"
	"github.com/measurement-kit/go-libnettest2/internal/runner"
	"github.com/measurement-kit/go-libnettest2/internal/runtimex"
)

var (
	app             = kingpin.New("nettestrunner", "Runs a single OONI-style nettest.")
	settingsPath    = app.Flag("settings", "Path to a settings JSON file.").Required().String()
	messageFlag     = app.Flag("message", "Message the example nettest reports on completion.").Default("Follow the white rabbit.").String()
	returnErrorFlag = app.Flag("return-error", "Make the example nettest fail on purpose.").Bool()
)

func main() {
	kingpin.MustParse(app.Parse(os.Args[1:]))

	raw, err := os.ReadFile(*settingsPath)
	runtimex.PanicOnError(err, "cannot read settings file")

	settings, warnings, err := model.ParseSettings(raw)
	runtimex.PanicOnError(err, "cannot parse settings file")

	log.SetHandler(clihandler.Default)
	log.SetLevel(apexLevel(model.ParseLogLevel(settings.LogLevel)))
	for _, warning := range warnings {
		log.Warn(warning)
	}

	sink := emitter.SinkFunc(func(e emitter.Event) {
		data, err := json.Marshal(e)
		if err != nil {
			return
		}
		fmt.Println(string(data))
	})
	em := emitter.New(sink, model.ParseLogLevel(settings.LogLevel), log.Log)

	nt := exampletest.New(exampletest.Config{
		Message:     *messageFlag,
		ReturnError: *returnErrorFlag,
		SleepTime:   2 * time.Second,
	})

	r := runner.New(settings, nt, em)
	r.Run(context.Background())
}

func apexLevel(lvl model.LogLevel) log.Level {
	switch lvl {
	case model.LogLevelQuiet, model.LogLevelErr:
		return log.ErrorLevel
	case model.LogLevelWarning:
		return log.WarnLevel
	case model.LogLevelDebug, model.LogLevelDebug2:
		return log.DebugLevel
	default:
		return log.InfoLevel
	}
}
