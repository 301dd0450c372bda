package typeset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/image/font/gofont/goregular"
)

func TestFontStorageLoadFont(t *testing.T) {
	storage := NewFontStorage()

	if !storage.IsEmpty() {
		t.Error("new storage should be empty")
	}

	source, err := storage.LoadFont(goregular.TTF)
	if err != nil {
		t.Fatalf("LoadFont failed: %v", err)
	}
	t.Cleanup(func() {
		_ = source.Close()
	})

	if storage.Len() != 1 {
		t.Errorf("Len() = %d, want 1", storage.Len())
	}
	if storage.IsEmpty() {
		t.Error("IsEmpty() = true after load")
	}
	if storage.Default() != source {
		t.Error("first loaded source should become the default")
	}
}

func TestFontStorageLoadFontFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "goregular.ttf")
	if err := os.WriteFile(path, goregular.TTF, 0o600); err != nil {
		t.Fatalf("failed to write font file: %v", err)
	}

	storage := NewFontStorage()
	source, err := storage.LoadFontFile(path)
	if err != nil {
		t.Fatalf("LoadFontFile failed: %v", err)
	}
	t.Cleanup(func() {
		_ = source.Close()
	})

	if storage.Len() != 1 {
		t.Errorf("Len() = %d, want 1", storage.Len())
	}
}

func TestFontStorageQuery(t *testing.T) {
	storage := NewFontStorage()
	source, err := storage.LoadFont(goregular.TTF)
	if err != nil {
		t.Fatalf("LoadFont failed: %v", err)
	}
	t.Cleanup(func() {
		_ = source.Close()
	})

	name := source.Name()
	if name == "" {
		t.Fatal("font has no family name")
	}

	// Lookup is case-insensitive.
	for _, q := range []string{name, strings.ToUpper(name), strings.ToLower(name)} {
		got, ok := storage.Query(q)
		if !ok || got != source {
			t.Errorf("Query(%q) = (%v, %v), want registered source", q, got, ok)
		}
	}

	if _, ok := storage.Query("definitely-not-a-family"); ok {
		t.Error("Query of unknown family reported a match")
	}
}

func TestFontStorageFont(t *testing.T) {
	storage := NewFontStorage()
	source, err := storage.LoadFont(goregular.TTF)
	if err != nil {
		t.Fatalf("LoadFont failed: %v", err)
	}
	t.Cleanup(func() {
		_ = source.Close()
	})

	got, ok := storage.Font(source.ID())
	if !ok || got != source {
		t.Errorf("Font(%d) = (%v, %v), want the loaded source", source.ID(), got, ok)
	}

	if _, ok := storage.Font(source.ID() + 1<<20); ok {
		t.Error("Font() reported a source for an unknown ID")
	}
}

func TestFontStorageFamilies(t *testing.T) {
	storage := NewFontStorage()
	source, err := storage.LoadFont(goregular.TTF)
	if err != nil {
		t.Fatalf("LoadFont failed: %v", err)
	}
	t.Cleanup(func() {
		_ = source.Close()
	})

	families := storage.Families()
	if len(families) != 1 {
		t.Fatalf("Families() returned %d entries, want 1", len(families))
	}
	if want := strings.ToLower(source.Name()); families[0] != want {
		t.Errorf("Families()[0] = %q, want %q", families[0], want)
	}
}

func TestFontStorageSetDefault(t *testing.T) {
	storage := NewFontStorage()

	a, err := storage.LoadFont(goregular.TTF)
	if err != nil {
		t.Fatalf("LoadFont failed: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })

	b, err := storage.LoadFont(goregular.TTF)
	if err != nil {
		t.Fatalf("LoadFont failed: %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })

	if storage.Default() != a {
		t.Error("default should stay at the first source")
	}
	storage.SetDefault(b)
	if storage.Default() != b {
		t.Error("SetDefault did not take effect")
	}
}

func TestFontStorageDefaultNil(t *testing.T) {
	var storage *FontStorage
	if storage.Default() != nil {
		t.Error("nil storage Default() should be nil")
	}

	if NewFontStorage().Default() != nil {
		t.Error("empty storage Default() should be nil")
	}
}

func TestFontStorageAddNil(t *testing.T) {
	storage := NewFontStorage()
	storage.Add(nil)
	if !storage.IsEmpty() {
		t.Error("Add(nil) should be a no-op")
	}
}

func TestFontStorageLoadSystemFonts(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping system font scan in short mode")
	}

	storage := NewFontStorage()
	if err := storage.LoadSystemFonts(); err != nil {
		// Systems without fonts (minimal containers) are fine.
		t.Skipf("system font scan unavailable: %v", err)
	}

	// The index alone loads no sources; families may list discovered names.
	if storage.Len() != 0 {
		t.Errorf("Len() = %d after index-only scan, want 0", storage.Len())
	}
	t.Logf("indexed %d system families", len(storage.Families()))
}
