// Copyright (c) 2026 The AudioBatch Authors. All rights reserved.
// Use of this source code is governed by the MIT License.
//
// AudioBatch - batch media-to-audio conversion tool
//
// Package meta derives tag candidates from container tags, filename
// heuristics, and user overrides, and merges them under a single
// precedence flag.

package meta

import (
	"regexp"
	"strings"
)

// Bundle is a merged tag set for one output file. Empty fields stay
// empty; values are never invented.
type Bundle struct {
	Title   string
	Artist  string
	Album   string
	Genre   string
	Date    string
	Track   string
	Comment string

	// CoverImagePath is filled by the cover resolver, not by detection.
	CoverImagePath string
}

// IsZero reports whether no field carries a value.
func (b Bundle) IsZero() bool {
	return b == Bundle{}
}

var (
	reBracketed = regexp.MustCompile(`\[[^\]]*\]|\([^)]*\)`)
	reNoise     = regexp.MustCompile(`(?i)\b(official video|official audio|audio only|lyrics|remastered|remaster|hd|4k|mv|clip)\b`)
	reSpaces    = regexp.MustCompile(`\s+`)
	reByPattern = regexp.MustCompile(`(?i)^(.+?)\s+by\s+(.+)$`)
)

// scrub removes bracketed/parenthesized annotations and noise tokens,
// then normalizes whitespace.
func scrub(s string) string {
	s = reBracketed.ReplaceAllString(s, " ")
	s = reNoise.ReplaceAllString(s, " ")
	s = reSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// FromFilename applies the filename heuristic to a base name (extension
// already stripped). Patterns are tried in order: "Artist - Title",
// "Title by Artist", "Artist _ Title", then a generic dash split. The
// first pattern yielding two non-empty scrubbed strings wins; no match
// yields a zero Bundle.
func FromFilename(base string) Bundle {
	if artist, title, ok := splitPair(base, " - "); ok {
		return Bundle{Artist: artist, Title: title}
	}

	if m := reByPattern.FindStringSubmatch(base); m != nil {
		title, artist := scrub(m[1]), scrub(m[2])
		if title != "" && artist != "" {
			return Bundle{Artist: artist, Title: title}
		}
	}

	if artist, title, ok := splitPair(base, " _ "); ok {
		return Bundle{Artist: artist, Title: title}
	}

	if artist, title, ok := splitPair(base, "-"); ok {
		return Bundle{Artist: artist, Title: title}
	}

	return Bundle{}
}

func splitPair(s, sep string) (artist, title string, ok bool) {
	idx := strings.Index(s, sep)
	if idx < 0 {
		return "", "", false
	}
	artist = scrub(s[:idx])
	title = scrub(s[idx+len(sep):])
	return artist, title, artist != "" && title != ""
}

// Tag key aliases, in lookup order.
var (
	titleKeys   = []string{"title", "itl", "tracktitle"}
	artistKeys  = []string{"artist", "album_artist", "author"}
	albumKeys   = []string{"album"}
	genreKeys   = []string{"genre"}
	dateKeys    = []string{"date", "year"}
	trackKeys   = []string{"track"}
	commentKeys = []string{"comment", "description"}
)

// FromTags resolves tag aliases against probed container and stream tags.
// Keys are matched case-insensitively; a container (format-level) tag wins
// over any stream-level tag for the same field.
func FromTags(container map[string]string, streams []map[string]string) Bundle {
	lower := func(tags map[string]string) map[string]string {
		out := make(map[string]string, len(tags))
		for k, v := range tags {
			out[strings.ToLower(k)] = v
		}
		return out
	}

	sources := make([]map[string]string, 0, len(streams)+1)
	sources = append(sources, lower(container))
	for _, s := range streams {
		sources = append(sources, lower(s))
	}

	pick := func(keys []string) string {
		for _, src := range sources {
			for _, k := range keys {
				if v := strings.TrimSpace(src[k]); v != "" {
					return v
				}
			}
		}
		return ""
	}

	return Bundle{
		Title:   pick(titleKeys),
		Artist:  pick(artistKeys),
		Album:   pick(albumKeys),
		Genre:   pick(genreKeys),
		Date:    pick(dateKeys),
		Track:   pick(trackKeys),
		Comment: pick(commentKeys),
	}
}

// Merge combines a detected bundle with user overrides. When
// preferDetected is set, detected values win wherever present; otherwise
// (the default) user overrides win. Absent values fall through to the
// other layer.
func Merge(detected, user Bundle, preferDetected bool) Bundle {
	first, second := user, detected
	if preferDetected {
		first, second = detected, user
	}

	choose := func(a, b string) string {
		if a != "" {
			return a
		}
		return b
	}

	return Bundle{
		Title:          choose(first.Title, second.Title),
		Artist:         choose(first.Artist, second.Artist),
		Album:          choose(first.Album, second.Album),
		Genre:          choose(first.Genre, second.Genre),
		Date:           choose(first.Date, second.Date),
		Track:          choose(first.Track, second.Track),
		Comment:        choose(first.Comment, second.Comment),
		CoverImagePath: choose(first.CoverImagePath, second.CoverImagePath),
	}
}

// Detect builds the merged bundle for one input: container/stream tags,
// then the filename heuristic for fields still missing (when autoMeta is
// on), then the user overrides folded in by Merge.
func Detect(base string, container map[string]string, streams []map[string]string, user Bundle, autoMeta, preferDetected bool) Bundle {
	detected := FromTags(container, streams)
	if autoMeta {
		// Filename guesses only backfill fields the container lacks.
		detected = Merge(detected, FromFilename(base), true)
	}
	return Merge(detected, user, preferDetected)
}
