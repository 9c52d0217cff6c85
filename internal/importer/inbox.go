package importer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// processedDir holds committed files, inside the import directory.
const processedDir = "processed"

// FileInfo is a CSV waiting in the import directory.
type FileInfo struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
}

// Scan lists the CSV files waiting in dir, oldest first. Hidden files and
// subdirectories are skipped; a missing dir is empty.
func Scan(dir string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing import dir %s: %w", dir, err)
	}

	var files []FileInfo
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.EqualFold(filepath.Ext(name), ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", name, err)
		}
		files = append(files, FileInfo{
			Name:    name,
			Path:    filepath.Join(dir, name),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	sort.SliceStable(files, func(i, j int) bool {
		if files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].Name < files[j].Name
		}
		return files[i].ModTime.Before(files[j].ModTime)
	})
	return files, nil
}

// MarkProcessed moves dir/name into dir/processed and returns the new
// path. A file already processed under the same name is kept; the new one
// gets a numeric suffix.
func MarkProcessed(dir, name string) (string, error) {
	target := filepath.Join(dir, processedDir)
	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", target, err)
	}

	dst := filepath.Join(target, name)
	ext := filepath.Ext(name)
	for n := 1; ; n++ {
		if _, err := os.Stat(dst); errors.Is(err, fs.ErrNotExist) {
			break
		}
		dst = filepath.Join(target, fmt.Sprintf("%s-%d%s", strings.TrimSuffix(name, ext), n, ext))
	}

	if err := os.Rename(filepath.Join(dir, name), dst); err != nil {
		return "", fmt.Errorf("moving %s to %s: %w", name, processedDir, err)
	}
	return dst, nil
}
