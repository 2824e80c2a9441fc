package bundle

import (
	stdzip "archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeZip(t *testing.T, path string, members map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create zip: %v", err)
	}
	defer f.Close()

	zw := stdzip.NewWriter(f)
	for name, content := range members {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("Failed to add member %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("Failed to write member %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Failed to close zip: %v", err)
	}
}

func TestExtractAll(t *testing.T) {
	dir := t.TempDir()
	writeZip(t, filepath.Join(dir, "[2025.11.10-00.37]KKB241600073WE.zip"), map[string]string{
		"Storage/SystemLog/SystemLog": "Mar 10 14:02:11 CSU Boot-up!!\n",
	})
	writeZip(t, filepath.Join(dir, "no-serial.zip"), map[string]string{
		"readme.txt": "x",
	})

	results, err := ExtractAll(context.Background(), dir)
	if err != nil {
		t.Fatalf("ExtractAll failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}

	var okCount, errCount int
	for _, res := range results {
		if res.Err != nil {
			errCount++
			continue
		}
		okCount++

		extracted := filepath.Join(res.Dest, "Storage", "SystemLog", "SystemLog")
		data, err := os.ReadFile(extracted)
		if err != nil {
			t.Fatalf("Extracted file missing: %v", err)
		}
		if string(data) != "Mar 10 14:02:11 CSU Boot-up!!\n" {
			t.Errorf("Extracted content = %q", data)
		}
		if res.Serial != "KKB241600073WE" {
			t.Errorf("Serial = %q", res.Serial)
		}
	}

	if okCount != 1 || errCount != 1 {
		t.Errorf("okCount=%d errCount=%d, want 1/1", okCount, errCount)
	}
}

func TestExtractAll_NoZips(t *testing.T) {
	results, err := ExtractAll(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("ExtractAll failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expected no results, got %d", len(results))
	}
}

func TestExtractZip_PathEscape(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "[2025.11.10-00.37]KKB241600073WE.zip")
	writeZip(t, zipPath, map[string]string{
		"../escape.txt": "evil",
	})

	results, err := ExtractAll(context.Background(), dir)
	if err != nil {
		t.Fatalf("ExtractAll failed: %v", err)
	}
	if len(results) != 1 || results[0].Err == nil {
		t.Fatal("Expected path-escaping member to fail extraction")
	}
	if _, err := os.Stat(filepath.Join(dir, "escape.txt")); !os.IsNotExist(err) {
		t.Error("Escaping member must not be written outside the destination")
	}
}

func TestArchiveProcessed(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "[2025.11.10-00.37]KKB241600073WE.zip")
	writeZip(t, zipPath, map[string]string{"x": "y"})

	if err := ArchiveProcessed(zipPath); err != nil {
		t.Fatalf("ArchiveProcessed failed: %v", err)
	}

	moved := filepath.Join(dir, ArchiveDir, "[2025.11.10-00.37]KKB241600073WE.zip")
	if _, err := os.Stat(moved); err != nil {
		t.Errorf("Archive not moved: %v", err)
	}
	if _, err := os.Stat(zipPath); !os.IsNotExist(err) {
		t.Error("Original archive still present")
	}
}
