package pack

import (
	"archive/zip"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/klauspost/compress/flate"
)

// DefaultLevel is a middle DEFLATE level: the output is a download, so
// neither speed nor size matters much.
const DefaultLevel = 6

// File is one archive member. Names ending in "/" are directories.
type File struct {
	Name string
	Data []byte
}

// Archiver writes files as a single archive.
type Archiver interface {
	Archive(w io.Writer, files []File) error
}

// ZipArchiver writes DEFLATE-compressed ZIP archives.
type ZipArchiver struct {
	Level int
	// Modified stamps every member; zero means the time of the call.
	Modified time.Time
}

// NewZipArchiver returns a ZipArchiver at level; out-of-range levels
// fall back to DefaultLevel.
func NewZipArchiver(level int) *ZipArchiver {
	if level < flate.HuffmanOnly || level > flate.BestCompression {
		level = DefaultLevel
	}
	return &ZipArchiver{Level: level}
}

func (z *ZipArchiver) Archive(w io.Writer, files []File) error {
	level := z.Level
	mod := z.Modified
	if mod.IsZero() {
		mod = time.Now()
	}

	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, level)
	})

	for _, f := range files {
		hdr := &zip.FileHeader{Name: f.Name, Modified: mod}
		if strings.HasSuffix(f.Name, "/") {
			hdr.Method = zip.Store
			if _, err := zw.CreateHeader(hdr); err != nil {
				return fmt.Errorf("pack: zip dir %s: %w", f.Name, err)
			}
			continue
		}
		hdr.Method = zip.Deflate
		fw, err := zw.CreateHeader(hdr)
		if err != nil {
			return fmt.Errorf("pack: zip %s: %w", f.Name, err)
		}
		if _, err := fw.Write(f.Data); err != nil {
			return fmt.Errorf("pack: zip %s: %w", f.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("pack: zip close: %w", err)
	}
	return nil
}
