// Package pokeapi resolves artwork URLs and display names from the PokeAPI
// pokemon resource.
package pokeapi

import (
	"net/url"
	"strings"
	"time"

	"github.com/pokeart/pokeart-go/internal/errors"
)

// DefaultBaseURL is the PokeAPI pokemon resource. The identifier is
// appended as the last path segment.
const DefaultBaseURL = "https://pokeapi.co/api/v2/pokemon"

// officialArtworkKey is the sprites.other entry holding the artwork.
const officialArtworkKey = "official-artwork"

// Config holds configuration for the PokeAPI client
type Config struct {
	BaseURL  string        // pokemon resource URL
	CacheTTL time.Duration // 0 disables the record memo
}

// DefaultConfig returns the public endpoint with caching disabled.
func DefaultConfig() Config {
	return Config{BaseURL: DefaultBaseURL}
}

// Record is the subset of the pokemon resource this program consumes.
type Record struct {
	ID      int     `json:"id"`
	Name    string  `json:"name"`
	Sprites Sprites `json:"sprites"`
}

// Sprites holds the image variants of a record.
type Sprites struct {
	Other map[string]Artwork `json:"other"`
}

// Artwork is a single image variant.
type Artwork struct {
	FrontDefault string `json:"front_default"`
}

// ImageURL returns the official artwork URL exactly as present in the record.
func (r *Record) ImageURL() (string, error) {
	raw := r.Sprites.Other[officialArtworkKey].FrontDefault
	if raw == "" {
		return "", errors.Newf("API record %d has no official artwork", r.ID).
			Component("pokeapi").
			Category(errors.CategoryInvalidResponse).
			Context("identifier", r.ID).
			Context("field", "sprites.other.official-artwork.front_default").
			Build()
	}

	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", errors.Newf("API record %d has a malformed artwork URL", r.ID).
			Component("pokeapi").
			Category(errors.CategoryInvalidResponse).
			Context("identifier", r.ID).
			NetworkContext(raw).
			Build()
	}

	return raw, nil
}

// DisplayName returns the top-level name. Names are used in file names, so
// values that could escape the output directory are rejected.
func (r *Record) DisplayName() (string, error) {
	name := r.Name
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", errors.Newf("API record %d has no usable name", r.ID).
			Component("pokeapi").
			Category(errors.CategoryInvalidResponse).
			Context("identifier", r.ID).
			Context("field", "name").
			Build()
	}
	return name, nil
}
