package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"avo/interpreter-go/pkg/driver"
	"avo/interpreter-go/pkg/interpreter"
	"avo/interpreter-go/pkg/native"
	"avo/interpreter-go/pkg/report"
)

const cliToolVersion = "avo 0.1.0"

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return exitUsage
	}

	switch args[0] {
	case "--help", "-h", "help":
		printUsage()
		return exitOK
	case "--version", "-V", "version":
		fmt.Fprintln(os.Stdout, cliToolVersion)
		return exitOK
	case "run":
		return runCommand(args[1:])
	case "check":
		return checkCommand(args[1:])
	case "repl":
		return replCommand(args[1:])
	case "deps":
		return runDeps(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", args[0])
		printUsage()
		return exitUsage
	}
}

// project is a manifest together with the logger and error policy derived
// from it.
type project struct {
	manifest *driver.Manifest
	logger   *slog.Logger
	errors   report.Config
	cacheDir string
}

// openProject loads the manifest governing dir, or a default one when dir has
// no avo.yml above it. An empty logLevel defers to the manifest.
func openProject(dir, logLevel string) (*project, error) {
	manifest, err := loadManifestFrom(dir)
	if err != nil {
		return nil, err
	}
	if logLevel == "" {
		logLevel = manifest.LogLevel
	}
	logger, err := newLogger(logLevel)
	if err != nil {
		return nil, err
	}
	handler, err := report.ByName(manifest.Errors.Handler, os.Stderr)
	if err != nil {
		return nil, err
	}
	cacheDir, err := resolveAvoHome()
	if err != nil {
		return nil, err
	}
	return &project{
		manifest: manifest,
		logger:   logger,
		errors:   report.Config{Handler: handler, ExitOnError: manifest.Errors.ExitOnError},
		cacheDir: cacheDir,
	}, nil
}

func loadManifestFrom(dir string) (*driver.Manifest, error) {
	path, err := driver.FindManifest(dir)
	if errors.Is(err, driver.ErrManifestNotFound) {
		return driver.DefaultManifest(dir)
	}
	if err != nil {
		return nil, err
	}
	return driver.LoadManifest(path)
}

func newLogger(level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})), nil
}

func (p *project) load() (*driver.Program, error) {
	roots, err := driver.NewInstaller(p.cacheDir, cliToolVersion, p.logger).Roots(p.manifest)
	if err != nil {
		return nil, err
	}
	return driver.NewLoader(p.manifest.Main, p.logger).Load(append([]string{p.manifest.SourceDir}, roots...)...)
}

func (p *project) newInterpreter() *interpreter.Interpreter {
	return interpreter.NewWithOptions(interpreter.Options{
		Natives:      native.Default(os.Stdout, os.Stdin),
		Logger:       p.logger,
		MaxCallDepth: p.manifest.MaxCallDepth,
	})
}

func (p *project) execute() error {
	program, err := p.load()
	if err != nil {
		return err
	}
	return driver.Run(program, p.newInterpreter())
}

// fail reports err through the project's handler and picks the exit code.
func (p *project) fail(err error) int {
	if p.errors.Handle(err) {
		return exitError
	}
	return exitOK
}

func reportStartup(err error) int {
	report.NewBoxed(os.Stderr).Report(err)
	return exitError
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}

// parseFlags parses args and returns the single optional directory operand.
func parseFlags(fs *flag.FlagSet, args []string) (string, int, bool) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return "", exitOK, false
		}
		return "", exitUsage, false
	}
	switch fs.NArg() {
	case 0:
		return ".", exitOK, true
	case 1:
		return fs.Arg(0), exitOK, true
	default:
		fmt.Fprintf(os.Stderr, "avo %s: unexpected arguments: %s\n", fs.Name(), strings.Join(fs.Args()[1:], " "))
		return "", exitUsage, false
	}
}

func runCommand(args []string) int {
	fs := newFlagSet("run")
	watch := fs.Bool("watch", false, "re-run when sources or avo.yml change")
	logLevel := fs.String("log-level", "", "log level: debug, info, warn or error")
	dir, code, ok := parseFlags(fs, args)
	if !ok {
		return code
	}

	proj, err := openProject(dir, *logLevel)
	if err != nil {
		return reportStartup(err)
	}
	if *watch {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		return watchProject(ctx, dir, *logLevel, proj)
	}
	if err := proj.execute(); err != nil {
		return proj.fail(err)
	}
	return exitOK
}

func checkCommand(args []string) int {
	fs := newFlagSet("check")
	logLevel := fs.String("log-level", "", "log level: debug, info, warn or error")
	dir, code, ok := parseFlags(fs, args)
	if !ok {
		return code
	}

	proj, err := openProject(dir, *logLevel)
	if err != nil {
		return reportStartup(err)
	}
	program, err := proj.load()
	if err == nil {
		_, err = program.Entry.MainFunction()
	}
	if err != nil {
		return proj.fail(err)
	}
	fmt.Fprintf(os.Stdout, "ok: %d modules, main module %s\n", len(program.Modules), program.Entry.Name)
	return exitOK
}

func runDeps(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "avo deps requires a subcommand (install)")
		return exitUsage
	}
	switch args[0] {
	case "install":
		return runDepsInstall(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown deps subcommand %q\n", args[0])
		return exitUsage
	}
}

func runDepsInstall(args []string) int {
	fs := newFlagSet("deps install")
	dir, code, ok := parseFlags(fs, args)
	if !ok {
		return code
	}

	manifestPath, err := driver.FindManifest(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "unable to locate %s: %v\n", driver.ManifestName, err)
		return exitError
	}
	manifest, err := driver.LoadManifest(manifestPath)
	if err != nil {
		return reportStartup(err)
	}
	logger, err := newLogger(manifest.LogLevel)
	if err != nil {
		return reportStartup(err)
	}
	cacheDir, err := resolveAvoHome()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve AVO_HOME: %v\n", err)
		return exitError
	}

	fmt.Fprintf(os.Stdout, "Manifest: %s\n", manifest.Path)
	fmt.Fprintf(os.Stdout, "Root package: %s\n", manifest.Name)
	fmt.Fprintf(os.Stdout, "Dependencies: %d\n", len(manifest.Dependencies))
	fmt.Fprintf(os.Stdout, "Cache directory: %s\n", cacheDir)

	lock, _, err := driver.NewInstaller(cacheDir, cliToolVersion, logger).Install(manifest)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve dependencies: %v\n", err)
		return exitError
	}
	for _, pkg := range lock.Packages {
		fmt.Fprintf(os.Stdout, "  %s %s\n", pkg.Name, pkg.Source)
	}
	fmt.Fprintf(os.Stdout, "Wrote %s: %s\n", driver.LockfileName, lock.Path)
	return exitOK
}

// resolveAvoHome locates the dependency cache: $AVO_HOME, else ~/.avo.
func resolveAvoHome() (string, error) {
	if home := strings.TrimSpace(os.Getenv("AVO_HOME")); home != "" {
		abs, err := filepath.Abs(home)
		if err != nil {
			return "", fmt.Errorf("resolve AVO_HOME %q: %w", home, err)
		}
		return abs, nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home: %w", err)
	}
	return filepath.Join(userHome, ".avo"), nil
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  avo run [--watch] [--log-level level] [dir]")
	fmt.Fprintln(os.Stderr, "  avo check [dir]")
	fmt.Fprintln(os.Stderr, "  avo repl")
	fmt.Fprintln(os.Stderr, "  avo deps install [dir]")
	fmt.Fprintln(os.Stderr, "  avo version")
}
