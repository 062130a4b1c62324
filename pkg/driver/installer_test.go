package driver

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

func initGitRepo(t *testing.T, dir string) string {
	t.Helper()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}
	if err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == filepath.Join(dir, ".git") {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		_, err = worktree.Add(filepath.ToSlash(rel))
		return err
	}); err != nil {
		t.Fatalf("stage files: %v", err)
	}
	hash, err := worktree.Commit("init", &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Avo CLI",
			Email: "avo@example.com",
			When:  time.Now(),
		},
	})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	return hash.String()
}

func loadTestManifest(t *testing.T, dir string) *Manifest {
	t.Helper()
	m, err := LoadManifest(filepath.Join(dir, ManifestName))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	return m
}

func TestInstallerPathDependencyTransitive(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "util", "util.avo"), "module util")
	writeFile(t, filepath.Join(root, "strs", ManifestName), `
name: strs
source: lib
dependencies:
  util:
    path: ../util
`)
	writeFile(t, filepath.Join(root, "strs", "lib", "strs.avo"), "module strs\nimport util")
	writeFile(t, filepath.Join(root, "app", ManifestName), `
name: app
dependencies:
  strs:
    path: ../strs
`)

	m := loadTestManifest(t, filepath.Join(root, "app"))
	lock, roots, err := NewInstaller(filepath.Join(root, "cache"), "avo-test", nil).Install(m)
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	wantRoots := []string{filepath.Join(root, "strs", "lib"), filepath.Join(root, "util")}
	if len(roots) != 2 || roots[0] != wantRoots[0] || roots[1] != wantRoots[1] {
		t.Fatalf("roots = %v, want %v", roots, wantRoots)
	}
	if len(lock.Packages) != 2 || lock.Packages[0].Name != "strs" || lock.Packages[1].Name != "util" {
		t.Fatalf("unexpected lock packages %+v", lock.Packages)
	}
	if lock.Packages[1].Source != "path+"+filepath.Join(root, "util") {
		t.Fatalf("unexpected source %q", lock.Packages[1].Source)
	}
	if _, err := os.Stat(filepath.Join(root, "app", LockfileName)); err != nil {
		t.Fatalf("expected lockfile to be written: %v", err)
	}
}

func TestInstallerPathDependencyMissing(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ManifestName), "name: app\ndependencies:\n  gone:\n    path: ./gone")
	m := loadTestManifest(t, root)
	if _, _, err := NewInstaller("", "avo-test", nil).Install(m); err == nil || !strings.Contains(err.Error(), "dependency gone") {
		t.Fatalf("expected missing path error, got %v", err)
	}
}

func writeColorsRepo(t *testing.T, dir string) string {
	t.Helper()
	writeFile(t, filepath.Join(dir, ManifestName), "name: colors\nsource: src")
	writeFile(t, filepath.Join(dir, "src", "colors.avo"), `
module colors

fun red -> string {
	return "red"
}
`)
	return initGitRepo(t, dir)
}

func TestInstallerGitDependencyByRev(t *testing.T) {
	root := t.TempDir()
	repo := filepath.Join(root, "repo")
	rev := writeColorsRepo(t, repo)

	app := filepath.Join(root, "app")
	writeFile(t, filepath.Join(app, ManifestName), `
name: app
dependencies:
  colors:
    git: `+repo+`
    rev: `+rev+`
`)
	writeFile(t, filepath.Join(app, "main.avo"), `
import colors

fun main {
	internal println(colors.red())
}
`)

	m := loadTestManifest(t, app)
	cacheDir := filepath.Join(root, "cache")
	lock, roots, err := NewInstaller(cacheDir, "avo-test", nil).Install(m)
	if err != nil {
		t.Fatalf("Install error: %v", err)
	}
	if len(lock.Packages) != 1 {
		t.Fatalf("lock packages unexpected: %#v", lock.Packages)
	}
	pkg := lock.Packages[0]
	if want := fmt.Sprintf("git+%s@%s", repo, rev); pkg.Source != want {
		t.Fatalf("pkg.Source = %q, want %q", pkg.Source, want)
	}
	if pkg.Commit != rev {
		t.Fatalf("pkg.Commit = %q, want %q", pkg.Commit, rev)
	}
	cached := filepath.Join(cacheDir, "colors", rev)
	if pkg.Dir != cached {
		t.Fatalf("pkg.Dir = %q, want %q", pkg.Dir, cached)
	}
	if len(roots) != 1 || roots[0] != filepath.Join(cached, "src") {
		t.Fatalf("unexpected roots %v", roots)
	}

	program, err := NewLoader(m.Main, nil).Load(append([]string{m.SourceDir}, roots...)...)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	var out bytes.Buffer
	if err := Run(program, newTestInterpreter(&out)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.String() != "red\n" {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestInstallerGitDependencyBranch(t *testing.T) {
	root := t.TempDir()
	repo := filepath.Join(root, "repo")
	rev := writeColorsRepo(t, repo)

	app := filepath.Join(root, "app")
	writeFile(t, filepath.Join(app, ManifestName), `
name: app
dependencies:
  colors:
    git: `+repo+`
    branch: master
`)
	m := loadTestManifest(t, app)
	lock, _, err := NewInstaller(filepath.Join(root, "cache"), "avo-test", nil).Install(m)
	if err != nil {
		t.Fatalf("Install error: %v", err)
	}
	pkg := lock.Packages[0]
	if pkg.Commit != rev {
		t.Fatalf("pkg.Commit = %q, want %q", pkg.Commit, rev)
	}
	if filepath.Base(pkg.Dir) != "master_"+rev {
		t.Fatalf("unexpected checkout dir %s", pkg.Dir)
	}
}

func TestInstallerRootsReusesLockfile(t *testing.T) {
	root := t.TempDir()
	repo := filepath.Join(root, "repo")
	rev := writeColorsRepo(t, repo)
	app := filepath.Join(root, "app")
	writeFile(t, filepath.Join(app, ManifestName), `
name: app
dependencies:
  colors:
    git: `+repo+`
    rev: `+rev+`
`)
	m := loadTestManifest(t, app)
	installer := NewInstaller(filepath.Join(root, "cache"), "avo-test", nil)
	first, err := installer.Roots(m)
	if err != nil {
		t.Fatalf("Roots: %v", err)
	}

	// With the repository gone, only the lockfile and cache can satisfy the request.
	if err := os.RemoveAll(repo); err != nil {
		t.Fatalf("remove repo: %v", err)
	}
	second, err := installer.Roots(m)
	if err != nil {
		t.Fatalf("Roots with lockfile: %v", err)
	}
	if len(first) != 1 || len(second) != 1 || first[0] != second[0] {
		t.Fatalf("roots changed: %v vs %v", first, second)
	}
}

func TestInstallerRootsWithoutDependencies(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ManifestName), "name: app")
	roots, err := NewInstaller("", "avo-test", nil).Roots(loadTestManifest(t, dir))
	if err != nil || len(roots) != 0 {
		t.Fatalf("Roots = %v, %v", roots, err)
	}
	if _, err := os.Stat(filepath.Join(dir, LockfileName)); !os.IsNotExist(err) {
		t.Fatalf("no lockfile expected without dependencies, got %v", err)
	}
}
