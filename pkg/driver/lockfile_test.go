package driver

import (
	"path/filepath"
	"testing"
)

func TestWriteAndLoadLockfile(t *testing.T) {
	lock := &Lockfile{
		Root:      " calculator ",
		Tool:      "avo 0.1.0",
		Generated: "2026-01-01T00:00:00Z",
		Packages: []*LockedPackage{
			{Name: "strs", Source: " path+/src/strs ", Dir: "/src/strs"},
			{Name: "colors", Source: "git+https://example.com/colors.git@abc", Commit: "abc", Dir: "/cache/colors/abc"},
		},
	}

	path := filepath.Join(t.TempDir(), LockfileName)
	if err := WriteLockfile(lock, path); err != nil {
		t.Fatalf("WriteLockfile error: %v", err)
	}

	loaded, err := LoadLockfile(path)
	if err != nil {
		t.Fatalf("LoadLockfile error: %v", err)
	}
	if loaded.Root != "calculator" || loaded.Tool != "avo 0.1.0" {
		t.Fatalf("unexpected metadata %+v", loaded)
	}
	if len(loaded.Packages) != 2 {
		t.Fatalf("Packages length = %d, want 2", len(loaded.Packages))
	}
	if loaded.Packages[0].Name != "colors" || loaded.Packages[0].Commit != "abc" {
		t.Fatalf("unexpected first package %+v", loaded.Packages[0])
	}
	if pkg, ok := loaded.Package("strs"); !ok || pkg.Source != "path+/src/strs" || pkg.Commit != "" {
		t.Fatalf("unexpected strs package %+v", pkg)
	}
	if loaded.Path != path {
		t.Fatalf("Path = %q, want %q", loaded.Path, path)
	}
}

func TestLoadLockfileMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.lock")
	if _, err := LoadLockfile(path); err == nil {
		t.Fatal("expected error for missing lockfile, got nil")
	}
}

func TestWriteLockfileRequiresPath(t *testing.T) {
	if err := WriteLockfile(NewLockfile("demo", "avo"), ""); err == nil {
		t.Fatal("expected error without a path")
	}
}
