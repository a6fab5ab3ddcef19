// Package logfile opens simulator logs, plain or compressed, and reads them
// whole.
package logfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/gabriel-vasile/mimetype"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"

	"github.com/imishinist/congstat/internal/extract"
)

// MaxLineSize bounds a single log line.
const MaxLineSize = 8 * 1024 * 1024

// Reader is an open log file with decompression applied.
type Reader struct {
	file    *os.File
	reader  io.Reader
	release func() error
	Format  string
}

func (r *Reader) Read(p []byte) (int, error) {
	return r.reader.Read(p)
}

// Close releases the decoder and the file.
func (r *Reader) Close() error {
	var err error
	if r.release != nil {
		err = r.release()
	}
	if cerr := r.file.Close(); err == nil {
		err = cerr
	}
	return err
}

// Open opens path and picks a decoder from the file content.
func Open(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %w", extract.ErrMissingFile, err)
		}
		return nil, err
	}

	mime, err := mimetype.DetectReader(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("detect type of %s: %w", path, err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		file.Close()
		return nil, fmt.Errorf("rewind %s: %w", path, err)
	}

	r := &Reader{file: file, Format: mime.String()}
	switch {
	case mime.Is("application/gzip"):
		zr, err := gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("open gzip %s: %w", path, err)
		}
		r.reader, r.release, r.Format = zr, zr.Close, "gzip"
	case mime.Is("application/zstd"):
		zr, err := zstd.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("open zstd %s: %w", path, err)
		}
		r.reader, r.Format = zr, "zstd"
		r.release = func() error {
			zr.Close()
			return nil
		}
	case mime.Is("application/x-xz"):
		xr, err := xz.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("open xz %s: %w", path, err)
		}
		r.reader, r.Format = xr, "xz"
	case mime.Is("application/octet-stream"):
		fallthrough
	case isText(mime):
		r.reader, r.Format = bufio.NewReader(file), "text"
	default:
		file.Close()
		return nil, errors.New("unsupported file type: " + mime.String())
	}
	return r, nil
}

// isText reports whether m is text/plain or a refinement of it. Free-form
// log lines can sniff as csv, tsv or html.
func isText(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

// ReadLines reads every line of r. Line numbers start at 1.
func ReadLines(r io.Reader) ([]extract.Line, error) {
	var lines []extract.Line
	s := bufio.NewScanner(r)
	s.Buffer(nil, MaxLineSize)
	n := 0
	for s.Scan() {
		n++
		lines = append(lines, extract.Line{Number: n, Text: s.Text()})
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("read line %d: %w", n+1, err)
	}
	return lines, nil
}

// Load opens, reads and closes path.
func Load(path string) ([]extract.Line, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	lines, err := ReadLines(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return lines, nil
}
