package typeset

// SubpixelMode controls subpixel text positioning.
// Subpixel positioning improves text quality by allowing glyphs to be rendered
// at fractional pixel positions. This is especially important for small text
// where the difference between whole pixel positions is noticeable.
//
// Each enabled axis multiplies the number of distinct cache entries a
// glyph can occupy, so higher modes trade cache capacity for quality.
type SubpixelMode int

const (
	// SubpixelNone disables subpixel positioning.
	// Glyphs snap to whole pixels. Fastest but lower quality.
	SubpixelNone SubpixelMode = 0

	// Subpixel4 uses 4 subpixel positions (0.0, 0.25, 0.5, 0.75).
	// Good balance of quality and cache size.
	Subpixel4 SubpixelMode = 4

	// Subpixel10 uses 10 subpixel positions (0.0, 0.1, ..., 0.9).
	// Highest quality but 10x cache entries per glyph.
	Subpixel10 SubpixelMode = 10
)

// String returns the string representation of the subpixel mode.
func (m SubpixelMode) String() string {
	switch m {
	case SubpixelNone:
		return "None"
	case Subpixel4:
		return "Subpixel4"
	case Subpixel10:
		return "Subpixel10"
	default:
		return unknownStr
	}
}

// IsEnabled returns true if subpixel positioning is enabled.
func (m SubpixelMode) IsEnabled() bool {
	return m > 0
}

// Divisions returns the number of subpixel divisions.
// Returns 1 for SubpixelNone (no divisions).
func (m SubpixelMode) Divisions() int {
	if m <= 0 {
		return 1
	}
	return int(m)
}

// SubpixelConfig holds subpixel positioning configuration.
type SubpixelConfig struct {
	// Mode determines the number of subpixel positions.
	Mode SubpixelMode

	// Horizontal enables subpixel positioning on X axis.
	Horizontal bool

	// Vertical enables subpixel positioning on Y axis (rarely needed).
	Vertical bool
}

// DefaultSubpixelConfig returns default configuration.
// Uses 4 horizontal subpixel positions.
func DefaultSubpixelConfig() SubpixelConfig {
	return SubpixelConfig{
		Mode:       Subpixel4,
		Horizontal: true,
		Vertical:   false,
	}
}

// NoSubpixelConfig returns a configuration with subpixel positioning disabled.
func NoSubpixelConfig() SubpixelConfig {
	return SubpixelConfig{
		Mode:       SubpixelNone,
		Horizontal: false,
		Vertical:   false,
	}
}

// IsEnabled returns true if any subpixel positioning is enabled.
func (c SubpixelConfig) IsEnabled() bool {
	return c.Mode.IsEnabled() && (c.Horizontal || c.Vertical)
}

// CacheMultiplier returns the factor by which cache pressure increases.
// For Subpixel4 with horizontal only: 4x.
func (c SubpixelConfig) CacheMultiplier() int {
	if !c.Mode.IsEnabled() {
		return 1
	}
	mult := 1
	if c.Horizontal {
		mult *= c.Mode.Divisions()
	}
	if c.Vertical {
		mult *= c.Mode.Divisions()
	}
	return mult
}

// sizeQuantize is the fixed-point scale for font sizes in glyph keys.
// Sizes closer than 1/256 px share a rasterization.
const sizeQuantize = 256.0

// GlyphKey identifies one rasterized glyph bitmap in a cache: font, glyph,
// quantized size, and subpixel phase. Two requests with equal keys are
// cache-equivalent regardless of which text element produced them.
type GlyphKey struct {
	// FontID is the owning FontSource's ID.
	FontID uint64

	// GID is the glyph index within the font.
	GID GlyphID

	// SizeQ is the font size in 1/256 px units.
	SizeQ uint32

	// SubX and SubY are the quantized subpixel positions.
	SubX, SubY uint8
}

// MakeGlyphKey builds the cache key for a positioned glyph under the
// given subpixel configuration.
func MakeGlyphKey[P any](g *PositionedGlyph[P], config SubpixelConfig) GlyphKey {
	var id uint64
	if g.Source != nil {
		id = g.Source.ID()
	}
	_, _, subX, subY := QuantizePoint(g.X, g.Y, config)
	return GlyphKey{
		FontID: id,
		GID:    g.GID,
		SizeQ:  QuantizeSize(g.Size),
		SubX:   subX,
		SubY:   subY,
	}
}

// QuantizeSize converts a font size to its fixed-point key representation.
func QuantizeSize(size float64) uint32 {
	if size <= 0 {
		return 0
	}
	return uint32(size*sizeQuantize + 0.5)
}

// Quantize converts a fractional position to quantized subpixel offset.
// Returns the integer position and subpixel key component.
//
// For example, with Subpixel4 mode:
//   - pos=10.0 returns (10, 0)
//   - pos=10.25 returns (10, 1)
//   - pos=10.5 returns (10, 2)
//   - pos=10.75 returns (10, 3)
//   - pos=10.99 returns (10, 3)
func Quantize(pos float64, mode SubpixelMode) (intPos int, subPos uint8) {
	if !mode.IsEnabled() {
		// No subpixel positioning - round to nearest integer
		return int(pos + 0.5), 0
	}

	// Compute floor (integer part that is <= pos)
	intPart := int(pos)
	if pos < 0 && pos != float64(intPart) {
		intPart--
	}

	// Get the fractional part [0, 1)
	frac := pos - float64(intPart)

	// Quantize to subpixel position
	divisions := float64(mode.Divisions())
	subPosInt := int(frac * divisions)

	// Clamp to valid range [0, mode-1]
	if subPosInt >= mode.Divisions() {
		subPosInt = mode.Divisions() - 1
	}
	if subPosInt < 0 {
		subPosInt = 0
	}

	return intPart, uint8(subPosInt) //nolint:gosec // subPosInt is bounded [0, mode-1]
}

// QuantizePoint quantizes both X and Y positions.
// Returns integer positions and subpixel key components.
func QuantizePoint(x, y float64, config SubpixelConfig) (intX, intY int, subX, subY uint8) {
	if config.Horizontal {
		intX, subX = Quantize(x, config.Mode)
	} else {
		intX, subX = int(x+0.5), 0
	}

	if config.Vertical {
		intY, subY = Quantize(y, config.Mode)
	} else {
		intY, subY = int(y+0.5), 0
	}

	return intX, intY, subX, subY
}

// SubpixelOffset returns the rendering offset for a subpixel position.
// For Subpixel4 mode: 0 -> 0.0, 1 -> 0.25, 2 -> 0.5, 3 -> 0.75
func SubpixelOffset(subPos uint8, mode SubpixelMode) float64 {
	if !mode.IsEnabled() {
		return 0
	}
	return float64(subPos) / float64(mode.Divisions())
}

// SubpixelOffsets returns both X and Y rendering offsets.
func SubpixelOffsets(subX, subY uint8, config SubpixelConfig) (offsetX, offsetY float64) {
	if config.Horizontal {
		offsetX = SubpixelOffset(subX, config.Mode)
	}
	if config.Vertical {
		offsetY = SubpixelOffset(subY, config.Mode)
	}
	return offsetX, offsetY
}
