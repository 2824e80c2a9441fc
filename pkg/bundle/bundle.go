// Package bundle handles exported device log bundles: locating extracted
// bundle folders and extracting the password-protected archives devices
// produce.
package bundle

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// ArchiveDir is where processed archives are moved after extraction.
const ArchiveDir = "Original Zips"

// serialPatterns match the 14-character device serial in the three archive
// naming layouts seen in the field:
//
//	[2025.11.10-00.37]KKB241600073WE.zip
//	20250908060735_KKB233100604WE_v01.26.38.00_OCPP16JDiag.zip
//	KKB240500105WE_v01.26.38.00_OCPP16JDiag.zip
var serialPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\]([A-Z0-9]{14})`),
	regexp.MustCompile(`_([A-Z0-9]{14})_`),
	regexp.MustCompile(`^([A-Z0-9]{14})_`),
}

var evPattern = regexp.MustCompile(`EV(\d+)`)

// Bundle is one extracted device log folder.
type Bundle struct {
	// Dir is the bundle's root directory.
	Dir string

	// Serial is the 14-character device serial from the folder name.
	Serial string

	// EVNumber is the site-assigned charger number, if present.
	EVNumber string

	// Updated marks a capture taken after a firmware update (-UP suffix).
	Updated bool
}

// Name returns the bundle's folder name.
func (b *Bundle) Name() string {
	return filepath.Base(b.Dir)
}

// ParseSerial extracts the device serial from an archive or folder name.
func ParseSerial(name string) (string, bool) {
	for _, p := range serialPatterns {
		if m := p.FindStringSubmatch(name); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// FromDir interprets a directory as a bundle. Returns false when the name
// carries no recognizable serial.
func FromDir(dir string) (Bundle, bool) {
	name := filepath.Base(dir)
	serial, ok := ParseSerial(name)
	if !ok {
		return Bundle{}, false
	}

	b := Bundle{Dir: dir, Serial: serial}

	if m := evPattern.FindStringSubmatch(name); m != nil {
		b.EVNumber = m[1]
	}
	b.Updated = strings.Contains(name, "-UP")

	return b, true
}

// Discover scans a directory for extracted bundle folders. Folders without
// a recognizable serial (and the archive folder) are skipped silently.
func Discover(root string) ([]Bundle, error) {
	dirents, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading bundle directory: %w", err)
	}

	var bundles []Bundle
	for _, de := range dirents {
		if !de.IsDir() || de.Name() == ArchiveDir {
			continue
		}
		if b, ok := FromDir(filepath.Join(root, de.Name())); ok {
			bundles = append(bundles, b)
		}
	}

	return bundles, nil
}
