package discovery

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindProfileWalksUp(t *testing.T) {
	root := t.TempDir()
	deep := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(deep, 0o755); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := FindProfile(deep); err != nil || ok {
		t.Fatalf("FindProfile() found a profile in an empty tree (err %v)", err)
	}

	if err := os.MkdirAll(filepath.Join(root, "a", DirName), 0o755); err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(root, "a", DirName, DBFile)
	if err := os.WriteFile(want, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	got, ok, err := FindProfile(deep)
	if err != nil || !ok {
		t.Fatalf("FindProfile() = %q, %v, %v", got, ok, err)
	}
	if got != want {
		t.Errorf("FindProfile() = %q, want %q", got, want)
	}
	if cfg := ConfigPathFor(got); cfg != filepath.Join(root, "a", DirName, ConfigFile) {
		t.Errorf("ConfigPathFor() = %q", cfg)
	}
}

func TestResolve(t *testing.T) {
	if got, _ := Resolve("/tmp/x.toml", "."); got != "/tmp/x.toml" {
		t.Errorf("explicit path ignored: %q", got)
	}
	got, err := Resolve("", t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(got) != ProfileFile || filepath.Base(filepath.Dir(got)) != DirName {
		t.Errorf("Resolve() fallback = %q", got)
	}
}
