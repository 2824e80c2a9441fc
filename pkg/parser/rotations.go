package parser

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// RotationFile is one file belonging to a stream. Index is the numeric
// rotation suffix, LiveRotation for the live file.
type RotationFile struct {
	Path  string
	Index int
}

// Stream is a named logical log: the live file plus its numbered rotations,
// parsed into a single file-ordered entry list (oldest rotation first, live
// file last). Entries gain absolute timestamps during reconstruction.
type Stream struct {
	Name string

	// Dir is the directory the stream was resolved to; empty if the stream
	// was absent from every candidate location.
	Dir string

	// Files are the rotation files in processing order, oldest first.
	Files []RotationFile

	// Entries is the concatenated file-order entry list.
	Entries []Entry

	Stats Stats

	// OldestModTime is the modification time of the oldest rotation file,
	// used to seed year inference when no clock correction has been seen.
	OldestModTime time.Time
}

// Empty reports whether the stream has no parsed entries.
func (s *Stream) Empty() bool {
	return len(s.Entries) == 0
}

// ResolveStreamDir locates a stream by trying candidate subdirectories of
// root in order. A directory matches if it contains the live file or any
// rotation of it.
func ResolveStreamDir(root, name string, dirs []string) (string, bool) {
	for _, d := range dirs {
		dir := filepath.Join(root, d)
		if len(DiscoverRotations(dir, name)) > 0 {
			return dir, true
		}
	}
	return "", false
}

// DiscoverRotations lists the rotation files of a stream in dir, oldest
// first: highest numeric suffix down to .0, live file last. The result does
// not depend on directory enumeration order.
func DiscoverRotations(dir, name string) []RotationFile {
	dirents, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var files []RotationFile
	for _, de := range dirents {
		if de.IsDir() {
			continue
		}
		fname := de.Name()
		if fname == name {
			files = append(files, RotationFile{Path: filepath.Join(dir, fname), Index: LiveRotation})
			continue
		}
		suffix, ok := strings.CutPrefix(fname, name+".")
		if !ok {
			continue
		}
		idx, err := strconv.Atoi(suffix)
		if err != nil || idx < 0 {
			continue
		}
		files = append(files, RotationFile{Path: filepath.Join(dir, fname), Index: idx})
	}

	// Higher index is older content; process oldest first.
	sort.Slice(files, func(i, j int) bool {
		return files[i].Index > files[j].Index
	})

	return files
}

// LoadStream resolves and parses a stream under root. A stream that is
// absent from every candidate directory loads as empty: zero entries, zero
// gaps, never an error.
func LoadStream(ctx context.Context, root, name string, dirs []string) (*Stream, error) {
	s := &Stream{Name: name}

	dir, ok := ResolveStreamDir(root, name, dirs)
	if !ok {
		return s, nil
	}
	s.Dir = dir
	s.Files = DiscoverRotations(dir, name)

	for _, rf := range s.Files {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		stats, err := readRotation(rf, &s.Entries)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", rf.Path, err)
		}
		s.Stats.add(stats)

		if info, err := os.Stat(rf.Path); err == nil {
			if s.OldestModTime.IsZero() || info.ModTime().Before(s.OldestModTime) {
				s.OldestModTime = info.ModTime()
			}
		}
	}

	return s, nil
}

// readRotation parses one rotation file, appending entries in line order.
func readRotation(rf RotationFile, out *[]Entry) (Stats, error) {
	var stats Stats

	f, err := os.Open(rf.Path) // #nosec G304 -- bundle paths are user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return stats, nil
		}
		return stats, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024) // 1MB max line size

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		stats.Lines++

		entry, ok := ParseLine(scanner.Text(), rf.Path, rf.Index, lineNum)
		if !ok {
			stats.Skipped++
			continue
		}
		stats.Parsed++
		*out = append(*out, entry)
	}
	if err := scanner.Err(); err != nil {
		return stats, err
	}

	return stats, nil
}
