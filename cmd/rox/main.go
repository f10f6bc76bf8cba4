// Command rox runs rox scripts, compiles them to chunk files, or starts a REPL.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	rox "github.com/xirelogy/go-rox"
	"github.com/xirelogy/go-rox/internal/config"
	"github.com/xirelogy/go-rox/internal/logs"
)

// Exit codes follow sysexits.h.
const (
	exitOK    = 0
	exitUsage = 64
	exitIOErr = 74
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("rox", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to a rox.toml configuration file (default: ./rox.toml if present)")
	output := fs.String("o", "", "Compile the script to a .roxc chunk file instead of running it")
	verbose := fs.Bool("v", false, "Log at debug level, overriding [log] level")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: rox [options] [path]\n\n")
		fmt.Fprintf(stderr, "Runs a .rox script or .roxc chunk; starts a REPL when no path is given.\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  rox                      # Start REPL\n")
		fmt.Fprintf(stderr, "  rox hello.rox            # Compile and run\n")
		fmt.Fprintf(stderr, "  rox -o hello.roxc hello.rox  # Compile only\n")
		fmt.Fprintf(stderr, "  rox hello.roxc           # Run a compiled chunk\n")
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "rox: %v\n", err)
		return exitUsage
	}
	level, _ := cfg.Log.SlogLevel()
	logger, logLevel, closeLog, err := logs.New(logs.Options{Writer: stderr, Level: level, File: cfg.Log.File})
	if err != nil {
		fmt.Fprintf(stderr, "rox: cannot open log file: %v\n", err)
		return exitIOErr
	}
	defer closeLog()
	if *verbose {
		logLevel.Set(slog.LevelDebug)
	}
	if cfg.Path != "" {
		logger.Debug("loaded config", "path", cfg.Path)
	}

	in := rox.New(rox.Options{
		Stdout:           stdout,
		Stderr:           stderr,
		Logger:           logger,
		MaxStack:         cfg.VM.MaxStack,
		InstructionLimit: cfg.VM.InstructionLimit,
		TraceExecution:   cfg.Debug.TraceExecution,
		PrintCode:        cfg.Debug.PrintCode,
	})

	switch fs.NArg() {
	case 0:
		if *output != "" {
			fs.Usage()
			return exitUsage
		}
		return repl(in, stdin, stderr)
	case 1:
		return runFile(in, fs.Arg(0), *output, stderr)
	default:
		fs.Usage()
		return exitUsage
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	dir, err := os.Getwd()
	if err != nil {
		return config.Default(), nil
	}
	return config.FindAndLoad(dir)
}

func runFile(in *rox.Interpreter, path, output string, stderr io.Writer) int {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stderr, "Could not open file \"%s\".\n", path)
		return exitIOErr
	}

	if output != "" {
		res, err := in.CompileToFile(string(data), output)
		if err != nil {
			fmt.Fprintf(stderr, "Could not write file \"%s\": %v\n", output, err)
			return exitIOErr
		}
		return res.ExitCode()
	}
	if strings.HasSuffix(path, ".roxc") {
		return in.RunChunk(data).ExitCode()
	}
	return in.Interpret(string(data)).ExitCode()
}
