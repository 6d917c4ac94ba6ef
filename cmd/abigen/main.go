package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/woxQAQ/abigen/internal/config"
	"github.com/woxQAQ/abigen/internal/generator"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr io.Writer) int {
	flags := flag.NewFlagSet("abigen", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		fmt.Fprintf(flags.Output(), "usage: abigen [flags] <api-name> <spec-path>\n")
		flags.PrintDefaults()
	}

	// Parse command-line flags
	hostOut := flags.String("host-out", "", "Host Go output (default bindgen_<api>_host.go)")
	guestOut := flags.String("guest-out", "", "Guest C output (default bindgen_<api>_guest_stubs.c)")
	guestInclude := flags.String("guest-include", "", "Header included at the top of the guest stubs")
	configPath := flags.String("config", "", "Path to configuration file")
	logLevel := flags.String("log-level", "", "Log level (debug, info, warn, error)")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if flags.NArg() != 2 {
		flags.Usage()
		return exitUsage
	}

	// Load configuration
	cfg, err := config.LoadGeneratorConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "abigen: failed to load configuration: %v\n", err)
		return exitError
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	// Initialize logger
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(stderr, "abigen: %v\n", err)
		return exitUsage
	}
	defer logger.Sync()

	logger.Debug("Starting abigen",
		zap.String("version", version),
		zap.String("commit", commit),
		zap.String("date", date),
	)

	opts := generator.Options{
		APIName:            flags.Arg(0),
		SpecPath:           flags.Arg(1),
		HostOut:            *hostOut,
		GuestOut:           *guestOut,
		GuestInclude:       *guestInclude,
		HostPackage:        cfg.Host.Package,
		ImportModule:       cfg.Guest.ImportModule,
		ImportMacro:        cfg.Guest.ImportMacro,
		PadEmptySignatures: cfg.ABI.PadEmptySignatures,
	}
	if _, err := generator.New(logger).Run(opts); err != nil {
		logger.Error("Generation failed", zap.Error(err))
		return exitError
	}
	return exitOK
}

// newLogger builds a development logger for debug and a production logger
// at the requested level otherwise.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level '%s'", level)
	}
	if lvl == zapcore.DebugLevel {
		return zap.NewDevelopment()
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}
