package edinet

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// Archive wraps a downloaded XBRL container. EDINET ships one ZIP per
// document with the instance, its taxonomy extensions, and audit
// attachments inside.
type Archive struct {
	zr *zip.Reader
}

// OpenArchive reads a ZIP container from memory.
func OpenArchive(data []byte) (*Archive, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, eris.Wrap(err, "edinet: open archive")
	}
	return &Archive{zr: zr}, nil
}

// OpenArchiveFile opens a ZIP container from disk.
func OpenArchiveFile(path string) (*Archive, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "edinet: read archive %s", path)
	}
	return OpenArchive(data)
}

// Instance returns the name and contents of the main XBRL instance
// document. Preference order: the jpcrp030000-asr securities-report
// instance under PublicDoc, then any PublicDoc instance, then any .xbrl
// entry at all.
func (a *Archive) Instance() (string, []byte, error) {
	match := func(pred func(string) bool) *zip.File {
		for _, f := range a.zr.File {
			if pred(f.Name) {
				return f
			}
		}
		return nil
	}

	f := match(func(name string) bool {
		return strings.Contains(name, "PublicDoc") &&
			strings.HasSuffix(name, ".xbrl") &&
			strings.Contains(name, "jpcrp030000-asr")
	})
	if f == nil {
		f = match(func(name string) bool {
			return strings.Contains(name, "PublicDoc") && strings.HasSuffix(name, ".xbrl")
		})
	}
	if f == nil {
		f = match(func(name string) bool { return strings.HasSuffix(name, ".xbrl") })
	}
	if f == nil {
		return "", nil, eris.New("edinet: no instance document in archive")
	}

	rc, err := f.Open()
	if err != nil {
		return "", nil, eris.Wrapf(err, "edinet: open entry %s", f.Name)
	}
	defer rc.Close() //nolint:errcheck

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", nil, eris.Wrapf(err, "edinet: read entry %s", f.Name)
	}
	return f.Name, data, nil
}

// ExtractTo writes the archive's XBRL and XML entries under destDir,
// preserving entry paths, and returns the written paths. Entry names that
// would escape destDir are rejected.
func (a *Archive) ExtractTo(destDir string) ([]string, error) {
	var extracted []string
	for _, f := range a.zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if !strings.HasSuffix(f.Name, ".xbrl") && !strings.HasSuffix(f.Name, ".xml") {
			continue
		}

		destPath := filepath.Join(destDir, f.Name)
		if !strings.HasPrefix(filepath.Clean(destPath), filepath.Clean(destDir)+string(os.PathSeparator)) {
			return extracted, eris.Errorf("edinet: illegal path %q (zip slip attempt)", f.Name)
		}
		if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
			return extracted, eris.Wrap(err, "edinet: create parent directory")
		}

		if err := a.writeEntry(f, destPath); err != nil {
			return extracted, err
		}
		extracted = append(extracted, destPath)
	}
	return extracted, nil
}

func (a *Archive) writeEntry(f *zip.File, destPath string) error {
	rc, err := f.Open()
	if err != nil {
		return eris.Wrapf(err, "edinet: open entry %s", f.Name)
	}
	defer rc.Close() //nolint:errcheck

	out, err := os.Create(destPath)
	if err != nil {
		return eris.Wrap(err, "edinet: create file")
	}
	defer out.Close() //nolint:errcheck

	if _, err := io.Copy(out, rc); err != nil {
		return eris.Wrapf(err, "edinet: write %s", destPath)
	}
	return nil
}
