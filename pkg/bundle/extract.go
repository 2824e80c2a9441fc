package bundle

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/yeka/zip"
)

// passwordSuffix completes the derived archive password: <serial>@delta.
const passwordSuffix = "@delta"

// ExtractResult reports the outcome of extracting one archive. A failed
// archive never aborts the batch; Err carries the per-file failure.
type ExtractResult struct {
	Archive string
	Serial  string
	Dest    string
	Err     error
}

// Password derives the archive password from a device serial.
func Password(serial string) string {
	return serial + passwordSuffix
}

// destFolder picks the extraction folder for an archive. GetDiagnostics
// captures share a timestamp-first naming scheme and extract to
// [GetDiag]<serial>; everything else extracts to the archive stem.
func destFolder(zipPath, serial string) string {
	base := filepath.Base(zipPath)
	dir := filepath.Dir(zipPath)

	if strings.Contains(base, "Diag") {
		return filepath.Join(dir, "[GetDiag]"+serial)
	}
	return filepath.Join(dir, strings.TrimSuffix(base, filepath.Ext(base)))
}

// ExtractAll extracts every .zip archive in dir using passwords derived
// from the serial embedded in each archive name. Archives whose name
// carries no serial, or that fail to extract, are reported in the result
// list and skipped.
func ExtractAll(ctx context.Context, dir string) ([]ExtractResult, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.zip"))
	if err != nil {
		return nil, fmt.Errorf("listing archives: %w", err)
	}

	results := make([]ExtractResult, 0, len(matches))
	for _, zipPath := range matches {
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		default:
		}
		results = append(results, extractOne(zipPath))
	}

	return results, nil
}

func extractOne(zipPath string) ExtractResult {
	res := ExtractResult{Archive: zipPath}

	serial, ok := ParseSerial(filepath.Base(zipPath))
	if !ok {
		res.Err = fmt.Errorf("no device serial in archive name")
		return res
	}
	res.Serial = serial
	res.Dest = destFolder(zipPath, serial)

	if err := extractZip(zipPath, res.Dest, Password(serial)); err != nil {
		res.Err = err
	}
	return res
}

func extractZip(zipPath, dest, password string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer r.Close()

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("creating destination: %w", err)
	}

	for _, f := range r.File {
		if err := extractFile(f, dest, password); err != nil {
			return fmt.Errorf("extracting %s: %w", f.Name, err)
		}
	}
	return nil
}

func extractFile(f *zip.File, dest, password string) error {
	target := filepath.Join(dest, filepath.Clean(f.Name))
	if !strings.HasPrefix(target, filepath.Clean(dest)+string(os.PathSeparator)) {
		return fmt.Errorf("archive member escapes destination")
	}

	if f.FileInfo().IsDir() {
		return os.MkdirAll(target, 0o755)
	}

	if f.IsEncrypted() {
		f.SetPassword(password)
	}

	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	out, err := os.Create(target) // #nosec G304 -- target is validated above
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, rc); err != nil { // #nosec G110 -- bundles are bounded device logs
		return err
	}
	return out.Close()
}

// ArchiveProcessed moves an extracted archive into the archive folder so
// repeated runs skip it.
func ArchiveProcessed(zipPath string) error {
	dir := filepath.Join(filepath.Dir(zipPath), ArchiveDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.Rename(zipPath, filepath.Join(dir, filepath.Base(zipPath)))
}
