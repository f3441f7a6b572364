// Package genre implements the genre-cleanup mapper (spec §4.13, C12),
// grounded on original_source/src/helpers/genre_cleanup.rs.
package genre

import (
	"encoding/json"
	"os"
	"sort"
	"strings"
	"sync"
)

// Config is the on-disk genre configuration document (spec §6.4):
// {"_ignore": [...], "mappings": {from: to}}.
type Config struct {
	Comment  string            `json:"_comment,omitempty"`
	Ignore   []string          `json:"_ignore"`
	Mappings map[string]string `json:"mappings"`
}

// Cleanup canonicalizes and deduplicates genre tags. Matching against
// the ignore set and mapping table is case-insensitive; mapping values
// and non-mapped originals keep their original case (trimmed).
type Cleanup struct {
	ignore   map[string]struct{}
	mappings map[string]string
}

// New builds a Cleanup from a parsed Config.
func New(cfg Config) *Cleanup {
	ignore := make(map[string]struct{}, len(cfg.Ignore))
	for _, g := range cfg.Ignore {
		ignore[strings.ToLower(g)] = struct{}{}
	}
	mappings := make(map[string]string, len(cfg.Mappings))
	for k, v := range cfg.Mappings {
		mappings[strings.ToLower(k)] = v
	}
	return &Cleanup{ignore: ignore, mappings: mappings}
}

// FromFile loads a Cleanup from a genre-config JSON file.
func FromFile(path string) (*Cleanup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return New(cfg), nil
}

// CleanGenre returns the canonical form of a single genre, or ok=false
// if it should be dropped.
func (c *Cleanup) CleanGenre(genreStr string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(genreStr))
	if _, ignored := c.ignore[lower]; ignored {
		return "", false
	}
	if mapped, ok := c.mappings[lower]; ok {
		return mapped, true
	}
	return strings.TrimSpace(genreStr), true
}

// CleanGenres applies CleanGenre to every element, drops duplicates and
// ignored entries, and sorts the result alphabetically.
//
// spec.md §4.13's prose says this "deduplicates preserving insertion
// order"; original_source/src/helpers/genre_cleanup.rs::clean_genres
// instead collects into a HashSet and sorts. We follow the original
// source's behavior (see SPEC_FULL.md §C) -- it is the concretely
// testable implementation the idempotency law (spec §8 property 9) was
// written against, and a sorted result is idempotent regardless of the
// caller's input ordering, a strictly stronger guarantee.
func (c *Cleanup) CleanGenres(genres []string) []string {
	seen := make(map[string]struct{}, len(genres))
	for _, g := range genres {
		if cleaned, ok := c.CleanGenre(g); ok {
			seen[cleaned] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for g := range seen {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}

// globalMu guards the process-wide singleton (spec §9 "global
// singletons"): the secret store, attribute cache, image cache, rate
// limiter and coverart manager are process-global and must fail fast,
// not silently default, if used before init -- genre cleanup is the
// one subsystem spec.md explicitly allows a graceful degraded mode for
// (dedupe+sort passthrough), matching
// original_source/src/helpers/genre_cleanup.rs's global helpers.
var (
	globalMu sync.RWMutex
	global   *Cleanup
)

// Init installs the process-wide Cleanup instance.
func Init(c *Cleanup) {
	globalMu.Lock()
	defer globalMu.Unlock()
	global = c
}

// CleanGenresGlobal cleans using the global instance if initialized,
// else falls back to dedupe+sort.
func CleanGenresGlobal(genres []string) []string {
	globalMu.RLock()
	c := global
	globalMu.RUnlock()
	if c != nil {
		return c.CleanGenres(genres)
	}
	seen := make(map[string]struct{}, len(genres))
	for _, g := range genres {
		seen[strings.TrimSpace(g)] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for g := range seen {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}
