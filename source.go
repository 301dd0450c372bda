package typeset

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
)

// fontSourceID hands out process-unique identifiers for glyph cache keys.
// Zero is never issued, so a zero FontID always means "no font".
var fontSourceID atomic.Uint64

// FontSource represents a loaded font file.
// One FontSource can be referenced by any number of text elements at
// different sizes. FontSource is heavyweight and should be shared across
// the application.
//
// FontSource is safe for concurrent use.
// FontSource must not be copied after creation (enforced by copyCheck).
type FontSource struct {
	// addr is used for copy protection (Ebitengine pattern).
	// It must point to the FontSource itself.
	addr *FontSource

	// id identifies the source in glyph cache keys.
	id uint64

	// Font data
	data   []byte
	parsed ParsedFont // Abstracted font interface (pluggable backend)

	// Metadata
	name string

	// Mutex protects data and parsed against Close.
	mu sync.RWMutex

	// Configuration
	config sourceConfig
}

// SourceOption configures FontSource creation.
type SourceOption func(*sourceConfig)

// sourceConfig holds configuration for FontSource.
type sourceConfig struct {
	parserName string
}

// defaultSourceConfig returns the default source configuration.
func defaultSourceConfig() sourceConfig {
	return sourceConfig{
		parserName: defaultParserName, // Default parser (ximage)
	}
}

// WithParser specifies the font parser backend.
// The default is "ximage" which uses golang.org/x/image/font/opentype.
//
// Custom parsers can be registered with RegisterParser.
func WithParser(name string) SourceOption {
	return func(c *sourceConfig) {
		c.parserName = name
	}
}

// NewFontSource creates a FontSource from font data (TTF or OTF).
// The data slice is copied internally and can be reused after this call.
func NewFontSource(data []byte, opts ...SourceOption) (*FontSource, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFontData
	}

	// Apply options first to get parser name
	config := defaultSourceConfig()
	for _, opt := range opts {
		opt(&config)
	}

	// Get parser and parse the font
	parser := getParser(config.parserName)
	parsed, err := parser.Parse(data)
	if err != nil {
		return nil, err
	}

	// Copy the data
	dataCopy := make([]byte, len(data))
	copy(dataCopy, data)

	s := &FontSource{
		id:     fontSourceID.Add(1),
		data:   dataCopy,
		parsed: parsed,
		config: config,
	}
	s.addr = s // Self-reference for copy detection

	// Extract font name
	s.name = extractFontName(parsed)

	return s, nil
}

// NewFontSourceFromFile loads a FontSource from a font file path.
func NewFontSourceFromFile(path string, opts ...SourceOption) (*FontSource, error) {
	// #nosec G304 -- Font file path is provided by the user
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("typeset: failed to read font file: %w", err)
	}

	return NewFontSource(data, opts...)
}

// ID returns the process-unique identifier of the source, used in glyph
// cache keys. IDs start at 1; zero is reserved.
func (s *FontSource) ID() uint64 {
	s.copyCheck()
	return s.id
}

// Name returns the font family name.
func (s *FontSource) Name() string {
	s.copyCheck()
	return s.name
}

// Parsed returns the parsed font for measurement and rasterization.
// It returns nil after Close.
func (s *FontSource) Parsed() ParsedFont {
	s.copyCheck()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.parsed
}

// Close releases resources associated with the FontSource.
// Text referencing the source shapes to zero-width placeholders afterward.
func (s *FontSource) Close() error {
	s.copyCheck()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return ErrSourceClosed
	}
	s.data = nil
	s.parsed = nil

	return nil
}

// fontData returns the raw font bytes, or nil after Close. Shapers that
// maintain their own parsed representation read the bytes through this.
func (s *FontSource) fontData() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}

// copyCheck panics if FontSource was copied by value.
// This is the Ebitengine pattern for preventing accidental copies.
func (s *FontSource) copyCheck() {
	if s.addr != s {
		panic("typeset: FontSource must not be copied by value")
	}
}

// extractFontName extracts the font family name from the parsed font.
func extractFontName(parsed ParsedFont) string {
	// Try to get the family name
	if name := parsed.Name(); name != "" {
		return name
	}

	// Try full name as fallback
	if fullName := parsed.FullName(); fullName != "" {
		return fullName
	}

	// Fallback
	return "Unknown Font"
}
