package driver

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Installer resolves manifest dependencies into local source roots.
type Installer struct {
	CacheDir string
	Tool     string
	Logger   *slog.Logger
}

// NewInstaller returns an installer that checks git dependencies out below
// cacheDir.
func NewInstaller(cacheDir, tool string, logger *slog.Logger) *Installer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Installer{CacheDir: cacheDir, Tool: tool, Logger: logger}
}

// LockfilePath is the avo.lock location for a manifest.
func LockfilePath(m *Manifest) string {
	return filepath.Join(m.Dir, LockfileName)
}

// Install resolves every dependency of m, including dependencies declared by
// dependency manifests, writes avo.lock and returns the lockfile together
// with the source roots to load.
func (i *Installer) Install(m *Manifest) (*Lockfile, []string, error) {
	lock := NewLockfile(m.Name, i.Tool)
	var roots []string
	resolved := make(map[string]*LockedPackage)

	var install func(owner *Manifest) error
	install = func(owner *Manifest) error {
		for _, name := range owner.DependencyNames() {
			spec := owner.Dependencies[name]
			pkg, err := i.resolve(name, spec)
			if err != nil {
				return fmt.Errorf("dependency %s: %w", name, err)
			}
			if prev, ok := resolved[name]; ok {
				if prev.Source != pkg.Source {
					return fmt.Errorf("dependency %s resolves to both %s and %s", name, prev.Source, pkg.Source)
				}
				continue
			}
			resolved[name] = pkg
			lock.Packages = append(lock.Packages, pkg)

			root := pkg.Dir
			depManifest, err := LoadManifest(filepath.Join(pkg.Dir, ManifestName))
			switch {
			case err == nil:
				root = depManifest.SourceDir
				roots = append(roots, root)
				if err := install(depManifest); err != nil {
					return err
				}
			case errors.Is(err, os.ErrNotExist):
				roots = append(roots, root)
			default:
				return fmt.Errorf("dependency %s: %w", name, err)
			}
		}
		return nil
	}

	if err := install(m); err != nil {
		return nil, nil, err
	}
	if err := WriteLockfile(lock, LockfilePath(m)); err != nil {
		return nil, nil, err
	}
	i.Logger.Info("dependencies installed", "count", len(lock.Packages), "lockfile", lock.Path)
	return lock, roots, nil
}

// Roots returns the dependency source roots recorded in avo.lock, running
// Install when the lockfile is missing, stale or points at missing
// directories.
func (i *Installer) Roots(m *Manifest) ([]string, error) {
	if len(m.Dependencies) == 0 {
		return nil, nil
	}
	lock, err := LoadLockfile(LockfilePath(m))
	if err == nil {
		if roots, ok := lockedRoots(m, lock); ok {
			return roots, nil
		}
		i.Logger.Debug("lockfile out of date", "path", lock.Path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	_, roots, err := i.Install(m)
	return roots, err
}

func lockedRoots(m *Manifest, lock *Lockfile) ([]string, bool) {
	for _, name := range m.DependencyNames() {
		pkg, ok := lock.Package(name)
		if !ok || !lockedMatches(m.Dependencies[name], pkg) {
			return nil, false
		}
	}
	roots := make([]string, 0, len(lock.Packages))
	for _, pkg := range lock.Packages {
		info, err := os.Stat(pkg.Dir)
		if err != nil || !info.IsDir() {
			return nil, false
		}
		root := pkg.Dir
		if depManifest, err := LoadManifest(filepath.Join(pkg.Dir, ManifestName)); err == nil {
			root = depManifest.SourceDir
		}
		roots = append(roots, root)
	}
	return roots, true
}

func lockedMatches(spec *DependencySpec, pkg *LockedPackage) bool {
	if spec.Kind() == "path" {
		return pkg.Source == "path+"+spec.Path
	}
	if !strings.HasPrefix(pkg.Source, "git+"+spec.Git+"@") {
		return false
	}
	return spec.Rev == "" || strings.HasPrefix(pkg.Commit, spec.Rev)
}

func (i *Installer) resolve(name string, spec *DependencySpec) (*LockedPackage, error) {
	if spec.Kind() == "path" {
		info, err := os.Stat(spec.Path)
		if err != nil {
			return nil, fmt.Errorf("path %s: %w", spec.Path, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("path %s is not a directory", spec.Path)
		}
		return &LockedPackage{Name: name, Source: "path+" + spec.Path, Dir: spec.Path}, nil
	}

	if i.CacheDir == "" {
		return nil, fmt.Errorf("no cache directory configured for git dependencies")
	}
	baseDir := filepath.Join(i.CacheDir, sanitizePathSegment(name))
	i.Logger.Info("fetching git dependency", "name", name, "url", spec.Git)
	version, commit, err := ensureGitCheckout(baseDir, spec)
	if err != nil {
		return nil, err
	}
	return &LockedPackage{
		Name:   name,
		Source: fmt.Sprintf("git+%s@%s", spec.Git, commit),
		Commit: commit,
		Dir:    filepath.Join(baseDir, sanitizePathSegment(version)),
	}, nil
}

func ensureGitCheckout(baseDir string, spec *DependencySpec) (string, string, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return "", "", err
	}

	revisions, descriptor, err := gitRevisionsFromSpec(spec)
	if err != nil {
		return "", "", err
	}

	if spec.Rev != "" {
		existing := filepath.Join(baseDir, sanitizePathSegment(spec.Rev))
		if _, err := os.Stat(existing); err == nil {
			return spec.Rev, spec.Rev, nil
		}
	}

	tmpDir, err := os.MkdirTemp(baseDir, "git-fetch-*")
	if err != nil {
		return "", "", err
	}
	if err := os.RemoveAll(tmpDir); err != nil {
		return "", "", err
	}

	repo, err := git.PlainClone(tmpDir, false, &git.CloneOptions{URL: spec.Git})
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("git clone %s: %w", spec.Git, err)
	}

	var hash *plumbing.Hash
	for _, rev := range revisions {
		if hash, err = repo.ResolveRevision(rev); err == nil {
			break
		}
	}
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("resolve revision %s: %w", descriptor, err)
	}

	version := gitPinnedVersion(descriptor, hash.String())
	if spec.Rev != "" {
		version = spec.Rev
	}
	targetDir := filepath.Join(baseDir, sanitizePathSegment(version))
	if _, err := os.Stat(targetDir); err == nil {
		_ = os.RemoveAll(tmpDir)
		return version, hash.String(), nil
	}

	worktree, err := repo.Worktree()
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", err
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true}); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("git checkout %s: %w", descriptor, err)
	}

	if err := os.Rename(tmpDir, targetDir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", err
	}
	return version, hash.String(), nil
}

func gitPinnedVersion(descriptor, commit string) string {
	if descriptor == "" || descriptor == commit {
		return commit
	}
	return fmt.Sprintf("%s@%s", descriptor, commit)
}

// gitRevisionsFromSpec lists candidate revisions in lookup order. A cloned
// repository only has a local head for its default branch, so other
// branches resolve through the origin remote.
func gitRevisionsFromSpec(spec *DependencySpec) ([]plumbing.Revision, string, error) {
	switch {
	case spec.Rev != "":
		return []plumbing.Revision{plumbing.Revision(spec.Rev)}, spec.Rev, nil
	case spec.Tag != "":
		return []plumbing.Revision{plumbing.Revision("refs/tags/" + spec.Tag)}, spec.Tag, nil
	case spec.Branch != "":
		return []plumbing.Revision{
			plumbing.Revision("refs/heads/" + spec.Branch),
			plumbing.Revision("refs/remotes/origin/" + spec.Branch),
		}, spec.Branch, nil
	}
	return nil, "", fmt.Errorf("git dependencies require rev, tag, or branch")
}

func sanitizePathSegment(segment string) string {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return "head"
	}
	var b strings.Builder
	for _, r := range segment {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
