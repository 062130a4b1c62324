package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"avo/interpreter-go/pkg/interpreter"
)

// ManifestName is the project manifest file name.
const ManifestName = "avo.yml"

// ErrManifestNotFound is returned by FindManifest when no avo.yml exists.
var ErrManifestNotFound = errors.New("avo.yml not found")

var logLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

var errorHandlers = map[string]bool{"boxed": true, "plain": true, "silent": true}

// Manifest represents the parsed contents of avo.yml.
type Manifest struct {
	Path         string
	Dir          string
	Name         string
	Version      string
	SourceDir    string
	Main         string
	LogLevel     string
	MaxCallDepth int
	Errors       ErrorsConfig
	Dependencies map[string]*DependencySpec
}

// ErrorsConfig selects how failures are reported.
type ErrorsConfig struct {
	Handler     string
	ExitOnError bool
}

// DependencySpec describes a dependency descriptor in the manifest.
type DependencySpec struct {
	Git    string
	Rev    string
	Tag    string
	Branch string
	Path   string
}

// Kind names the dependency source, "path" or "git".
func (d *DependencySpec) Kind() string {
	if d.Path != "" {
		return "path"
	}
	return "git"
}

// ValidationError aggregates manifest validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "manifest: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("manifest validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// DefaultManifest describes a project in dir that has no avo.yml.
func DefaultManifest(dir string) (*Manifest, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("manifest: resolve %s: %w", dir, err)
	}
	return &Manifest{
		Dir:          abs,
		Name:         filepath.Base(abs),
		SourceDir:    abs,
		Main:         "main",
		LogLevel:     "warn",
		MaxCallDepth: interpreter.DefaultMaxCallDepth,
		Errors:       ErrorsConfig{Handler: "boxed", ExitOnError: true},
		Dependencies: map[string]*DependencySpec{},
	}, nil
}

// LoadManifest parses avo.yml from disk, returning a validated manifest.
func LoadManifest(path string) (*Manifest, error) {
	if path == "" {
		return nil, fmt.Errorf("manifest: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("manifest: open %s: %w", absPath, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var raw manifestFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("manifest: %s is empty", absPath)
		}
		return nil, fmt.Errorf("manifest: parse %s: %w", absPath, err)
	}

	manifest, err := raw.toManifest(absPath)
	if err != nil {
		return nil, err
	}
	if err := manifest.validate(raw); err != nil {
		return nil, err
	}
	return manifest, nil
}

// FindManifest walks up from start and returns the first avo.yml found.
func FindManifest(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolve start directory %q: %w", start, err)
	}
	if info, statErr := os.Stat(dir); statErr == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	origin := dir
	for {
		candidate := filepath.Join(dir, ManifestName)
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s found from %s upwards: %w", ManifestName, origin, ErrManifestNotFound)
		}
		dir = parent
	}
}

// DependencyNames lists the declared dependencies in sorted order.
func (m *Manifest) DependencyNames() []string {
	names := make([]string, 0, len(m.Dependencies))
	for name := range m.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (m *Manifest) validate(raw manifestFile) error {
	var errs ValidationError
	if m.Name == "" {
		errs.Issues = append(errs.Issues, "name must be provided")
	}
	if m.Main == "" {
		errs.Issues = append(errs.Issues, "main must not be empty")
	}
	if !logLevels[m.LogLevel] {
		errs.Issues = append(errs.Issues, fmt.Sprintf("log_level %q must be one of debug, info, warn, error", m.LogLevel))
	}
	if m.MaxCallDepth < 0 {
		errs.Issues = append(errs.Issues, fmt.Sprintf("max_call_depth must not be negative, got %d", m.MaxCallDepth))
	}
	if !errorHandlers[m.Errors.Handler] {
		errs.Issues = append(errs.Issues, fmt.Sprintf("errors.handler %q must be one of boxed, plain, silent", m.Errors.Handler))
	}
	if info, err := os.Stat(m.SourceDir); err != nil || !info.IsDir() {
		errs.Issues = append(errs.Issues, fmt.Sprintf("source %q is not a directory", raw.Source))
	}
	for _, name := range m.DependencyNames() {
		for _, issue := range m.Dependencies[name].validate() {
			errs.Issues = append(errs.Issues, fmt.Sprintf("dependencies.%s: %s", name, issue))
		}
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

func (d *DependencySpec) validate() []string {
	var errs []string
	if d.Path != "" && d.Git != "" {
		return []string{"path dependencies cannot also specify git"}
	}
	if d.Path == "" && d.Git == "" {
		errs = append(errs, "must specify git or path")
	}
	if d.Path != "" && (d.Rev != "" || d.Tag != "" || d.Branch != "") {
		errs = append(errs, "rev, tag and branch apply only to git dependencies")
	}
	if d.Git != "" {
		refs := 0
		for _, ref := range []string{d.Rev, d.Tag, d.Branch} {
			if ref != "" {
				refs++
			}
		}
		if refs == 0 {
			errs = append(errs, "git dependencies require rev, tag, or branch")
		} else if refs > 1 {
			errs = append(errs, "git dependencies accept only one of rev, tag, or branch")
		}
	}
	return errs
}

type manifestFile struct {
	Name         string        `yaml:"name"`
	Version      string        `yaml:"version"`
	Source       string        `yaml:"source"`
	Main         *string       `yaml:"main"`
	LogLevel     string        `yaml:"log_level"`
	MaxCallDepth *int          `yaml:"max_call_depth"`
	Errors       errorsYAML    `yaml:"errors"`
	Dependencies dependencyMap `yaml:"dependencies"`
}

type errorsYAML struct {
	Handler     string `yaml:"handler"`
	ExitOnError *bool  `yaml:"exit_on_error"`
}

type dependencyMap map[string]*DependencySpec

func (mf manifestFile) toManifest(path string) (*Manifest, error) {
	result, err := DefaultManifest(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	result.Path = path
	result.Name = strings.TrimSpace(mf.Name)
	result.Version = strings.TrimSpace(mf.Version)
	if src := strings.TrimSpace(mf.Source); src != "" {
		result.SourceDir = resolveRelative(result.Dir, src)
	}
	if mf.Main != nil {
		result.Main = strings.TrimSpace(*mf.Main)
	}
	if level := strings.ToLower(strings.TrimSpace(mf.LogLevel)); level != "" {
		result.LogLevel = level
	}
	if mf.MaxCallDepth != nil {
		result.MaxCallDepth = *mf.MaxCallDepth
	}
	if handler := strings.ToLower(strings.TrimSpace(mf.Errors.Handler)); handler != "" {
		result.Errors.Handler = handler
	}
	if mf.Errors.ExitOnError != nil {
		result.Errors.ExitOnError = *mf.Errors.ExitOnError
	}
	for name, dep := range mf.Dependencies {
		clone := *dep
		if clone.Path != "" {
			clone.Path = resolveRelative(result.Dir, clone.Path)
		}
		result.Dependencies[name] = &clone
	}
	return result, nil
}

func resolveRelative(base, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(base, path)
}

func (dm *dependencyMap) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == 0 || (value.Kind == yaml.ScalarNode && value.Tag == "!!null") {
		*dm = make(dependencyMap)
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("manifest: dependencies must be a mapping")
	}
	result := make(dependencyMap, len(value.Content)/2)
	for i := 0; i < len(value.Content); i += 2 {
		keyNode := value.Content[i]
		valNode := value.Content[i+1]

		var key string
		if err := keyNode.Decode(&key); err != nil {
			return err
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("manifest: dependency names must be non-empty")
		}
		var dep DependencySpec
		if err := dep.unmarshalYAML(valNode); err != nil {
			return fmt.Errorf("manifest: dependency %q: %w", key, err)
		}
		result[key] = &dep
	}
	*dm = result
	return nil
}

func (d *DependencySpec) unmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.MappingNode:
		var raw struct {
			Git    string `yaml:"git"`
			Rev    string `yaml:"rev"`
			Tag    string `yaml:"tag"`
			Branch string `yaml:"branch"`
			Path   string `yaml:"path"`
		}
		if err := value.Decode(&raw); err != nil {
			return err
		}
		*d = DependencySpec{
			Git:    strings.TrimSpace(raw.Git),
			Rev:    strings.TrimSpace(raw.Rev),
			Tag:    strings.TrimSpace(raw.Tag),
			Branch: strings.TrimSpace(raw.Branch),
			Path:   strings.TrimSpace(raw.Path),
		}
		return nil
	case yaml.AliasNode:
		return d.unmarshalYAML(value.Alias)
	default:
		return fmt.Errorf("expected mapping, found %s", value.ShortTag())
	}
}
