package cache

import (
	"errors"
	"fmt"
)

// ErrNoTiers is returned when a cache is constructed with an empty tier
// list.
var ErrNoTiers = errors.New("cache: tier list is empty")

// ErrTierBusy is returned when every cell of a tier has been referenced
// in the current batch, so evicting would invalidate a handle the caller
// may still submit. The caller should flush its pending work, start a new
// batch, and retry.
var ErrTierBusy = errors.New("cache: all cells referenced in current batch")

// OversizedError is returned when a glyph bitmap exceeds the largest
// configured cell size. It is a per-glyph failure: the caller skips or
// direct-draws the glyph and continues.
type OversizedError struct {
	Width, Height int
	MaxCell       int
}

func (e *OversizedError) Error() string {
	return fmt.Sprintf("cache: glyph %dx%d exceeds largest cell size %d",
		e.Width, e.Height, e.MaxCell)
}

// ConfigError reports an invalid tier configuration field.
type ConfigError struct {
	Tier   int
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("cache: tier %d: invalid %s: %s", e.Tier, e.Field, e.Reason)
}
