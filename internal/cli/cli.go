package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/synthgrid/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config, a
// boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("synthgrid", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
synthgrid - a modular software synthesizer.

Usage:
  synthgrid [options] [PATCH_PATH]

Arguments:
  PATCH_PATH
    Path to a .hcl patch describing the signal graph.

Options:
`)
		flagSet.PrintDefaults()
	}

	patchFlag := flagSet.String("patch", "", "Path to the patch file.")
	pFlag := flagSet.String("p", "", "Path to the patch file (shorthand).")
	sampleRateFlag := flagSet.Int("sample-rate", 0, "Output sample rate in Hz. 0 uses the engine default.")
	bufferFlag := flagSet.Int("buffer", 0, "Samples per device buffer. 0 uses the engine default.")
	lowWaterFlag := flagSet.Int("low-water-ms", 0, "Fill-burst trigger in milliseconds of queued audio. 0 uses the engine default.")
	highWaterFlag := flagSet.Int("high-water-ms", 0, "Fill-burst target in milliseconds of queued audio. 0 uses the engine default.")
	listenPortFlag := flagSet.Int("listen-port", 0, "Port for the HTTP health and metrics server. 0 is disabled.")
	captureFlag := flagSet.String("capture", "", "Record the played signal to this WAV file on exit.")
	durationFlag := flagSet.Duration("duration", 0, "Stop after this long (e.g. 30s). 0 runs until interrupted.")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *patchFlag != "" {
		path = *patchFlag
	} else if *pFlag != "" {
		path = *pFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Patch path determined.", "path", path)

	if path == "" {
		slog.Debug("No patch path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		PatchPath:   path,
		SampleRate:  *sampleRateFlag,
		BufferSize:  *bufferFlag,
		LowWaterMs:  *lowWaterFlag,
		HighWaterMs: *highWaterFlag,
		ListenPort:  *listenPortFlag,
		CaptureWAV:  *captureFlag,
		Duration:    *durationFlag,
		LogFormat:   logFormat,
		LogLevel:    logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
