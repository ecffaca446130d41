// Package media holds the audio metadata types shared across the import
// pipeline.
package media

import (
	"path/filepath"
	"strings"
)

// Metadata is the tag set dropzone reads, edits, and writes.
type Metadata struct {
	Title  string
	Artist string
	Album  string
	Date   string
}

// IsZero reports whether no field is set.
func (m Metadata) IsZero() bool {
	return m.Title == "" && m.Artist == "" && m.Album == "" && m.Date == ""
}

// Merge fills empty fields from other.
func (m Metadata) Merge(other Metadata) Metadata {
	if m.Title == "" {
		m.Title = other.Title
	}
	if m.Artist == "" {
		m.Artist = other.Artist
	}
	if m.Album == "" {
		m.Album = other.Album
	}
	if m.Date == "" {
		m.Date = other.Date
	}
	return m
}

// Unknown is the placeholder metadata shown when no lookup match was found.
func Unknown() Metadata {
	return Metadata{Title: "Unknown", Artist: "Unknown", Album: "Unknown"}
}

// SupportedExtension reports whether the file type can be imported.
// Apple Music's auto-import folder accepts more formats, but tagging is
// only wired for these two.
func SupportedExtension(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3", ".m4a":
		return true
	}
	return false
}
