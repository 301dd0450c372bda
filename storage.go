package typeset

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/go-text/typesetting/fontscan"
)

// FontStorage is a shared, mutex-guarded collection of font sources.
// Layout and rendering resolve fonts through a storage instance, so one
// storage can back any number of concurrent layouts.
//
// The first loaded source becomes the default. Elements with a nil Source
// fall back to the default; with no default either they degrade to
// zero-width placeholders instead of failing.
type FontStorage struct {
	mu       sync.RWMutex
	sources  []*FontSource
	byFamily map[string]*FontSource
	def      *FontSource

	// system maps lower-cased family names to font file paths discovered
	// by fontscan. Entries are parsed lazily on first query.
	system map[string]string
}

// NewFontStorage creates an empty font storage.
func NewFontStorage() *FontStorage {
	return &FontStorage{
		byFamily: make(map[string]*FontSource),
	}
}

// LoadFont parses font data (TTF or OTF) and registers the resulting
// source. The data slice is copied and can be reused after this call.
func (fs *FontStorage) LoadFont(data []byte, opts ...SourceOption) (*FontSource, error) {
	source, err := NewFontSource(data, opts...)
	if err != nil {
		return nil, err
	}
	fs.Add(source)
	return source, nil
}

// LoadFontFile reads and registers a font file.
func (fs *FontStorage) LoadFontFile(path string, opts ...SourceOption) (*FontSource, error) {
	source, err := NewFontSourceFromFile(path, opts...)
	if err != nil {
		return nil, err
	}
	fs.Add(source)
	return source, nil
}

// Add registers an externally created source. The first registered source
// becomes the default. A nil source is ignored.
func (fs *FontStorage) Add(source *FontSource) {
	if source == nil {
		return
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.sources = append(fs.sources, source)
	key := strings.ToLower(source.Name())
	if _, exists := fs.byFamily[key]; !exists {
		fs.byFamily[key] = source
	}
	if fs.def == nil {
		fs.def = source
	}
}

// LoadSystemFonts indexes the fonts installed on the system using
// fontscan. Discovery only records family names and file paths; a font
// file is read and parsed the first time its family is queried.
func (fs *FontStorage) LoadSystemFonts() error {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		slogger().Warn("typeset: no user cache dir for font index", "error", err)
		cacheDir = os.TempDir()
	}

	footprints, err := fontscan.SystemFonts(nil, cacheDir)
	if err != nil {
		return fmt.Errorf("typeset: system font scan failed: %w", err)
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	if fs.system == nil {
		fs.system = make(map[string]string, len(footprints))
	}
	for i := range footprints {
		family := strings.ToLower(footprints[i].Family)
		if family == "" {
			continue
		}
		if _, exists := fs.system[family]; !exists {
			fs.system[family] = footprints[i].Location.File
		}
	}

	slogger().Debug("typeset: indexed system fonts",
		"families", len(fs.system))
	return nil
}

// Query returns the source for a family name, case-insensitively.
// Registered sources take precedence over the system index. A system font
// is loaded on first use; if loading fails the failure is logged and the
// family reported as absent.
func (fs *FontStorage) Query(family string) (*FontSource, bool) {
	key := strings.ToLower(family)

	fs.mu.RLock()
	source, ok := fs.byFamily[key]
	path := ""
	if !ok && fs.system != nil {
		path = fs.system[key]
	}
	fs.mu.RUnlock()

	if ok {
		return source, true
	}
	if path == "" {
		return nil, false
	}

	// Parse outside the lock; registration re-checks for a racing load.
	loaded, err := NewFontSourceFromFile(path)
	if err != nil {
		slogger().Warn("typeset: failed to load system font",
			"family", family, "path", path, "error", err)
		return nil, false
	}

	fs.mu.Lock()
	if existing, exists := fs.byFamily[key]; exists {
		fs.mu.Unlock()
		return existing, true
	}
	fs.sources = append(fs.sources, loaded)
	fs.byFamily[key] = loaded
	if fs.def == nil {
		fs.def = loaded
	}
	fs.mu.Unlock()
	return loaded, true
}

// Families returns the sorted family names known to the storage,
// registered and system-indexed alike.
func (fs *FontStorage) Families() []string {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	seen := make(map[string]bool, len(fs.byFamily)+len(fs.system))
	names := make([]string, 0, len(fs.byFamily)+len(fs.system))
	for name := range fs.byFamily {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	for name := range fs.system {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// Font returns the source with the given ID. IDs come from
// FontSource.ID and are stable for the life of the process.
func (fs *FontStorage) Font(id uint64) (*FontSource, bool) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	for _, s := range fs.sources {
		if s.ID() == id {
			return s, true
		}
	}
	return nil, false
}

// Default returns the default source, or nil if none is registered.
func (fs *FontStorage) Default() *FontSource {
	if fs == nil {
		return nil
	}
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fs.def
}

// SetDefault overrides the default source.
func (fs *FontStorage) SetDefault(source *FontSource) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.def = source
}

// Len returns the number of parsed sources held by the storage. Lazily
// indexed system fonts count only once loaded.
func (fs *FontStorage) Len() int {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return len(fs.sources)
}

// IsEmpty reports whether no sources are loaded.
func (fs *FontStorage) IsEmpty() bool {
	return fs.Len() == 0
}
