// Package loader reads Power Query sources from stdin, a file or a
// directory and produces one combined source in the header convention
// understood by the document splitter.
package loader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/leapstack-labs/pqdeps/pkg/document"
)

// StdinPath selects standard input.
const StdinPath = "-"

// Extensions are the file suffixes picked up from a directory.
var Extensions = []string{".pq", ".m", ".pqm"}

// ErrNoSources is returned for a directory without query files.
var ErrNoSources = errors.New("no Power Query files found")

// Source is a loaded combined source.
type Source struct {
	// Path is what was loaded: StdinPath, a file or a directory
	Path string
	// Files lists the files read, sorted (empty for stdin)
	Files []string
	// Text is the combined source
	Text string
}

// Loader reads sources. Marker is the header prefix used when naming
// directory files (default "//").
type Loader struct {
	Marker string
	Stdin  io.Reader
}

// Load reads path. An empty path or StdinPath reads Stdin.
func (l Loader) Load(path string) (*Source, error) {
	if path == "" || path == StdinPath {
		return l.loadStdin()
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if info.IsDir() {
		return l.loadDir(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return &Source{Path: path, Files: []string{path}, Text: string(data)}, nil
}

func (l Loader) loadStdin() (*Source, error) {
	in := l.Stdin
	if in == nil {
		in = os.Stdin
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	return &Source{Path: StdinPath, Text: string(data)}, nil
}

// loadDir combines every query file directly inside dir in name order. A file
// that does not start with a header is introduced by one named after the
// file, so no file's text joins the previous file's last document.
func (l Loader) loadDir(dir string) (*Source, error) {
	files, err := QueryFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoSources, dir)
	}

	marker := l.Marker
	if marker == "" {
		marker = document.DefaultMarker
	}
	splitter := document.Splitter{Marker: marker}

	var b strings.Builder
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", f, err)
		}
		text := string(data)
		if !splitter.StartsWithHeader(text) {
			fmt.Fprintf(&b, "%s %s\n", marker, QueryName(f))
		}
		b.WriteString(text)
		if !strings.HasSuffix(text, "\n") {
			b.WriteString("\n")
		}
	}
	return &Source{Path: dir, Files: files, Text: b.String()}, nil
}

// QueryFiles returns the query files directly inside dir, sorted.
func QueryFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !IsQueryFile(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// IsQueryFile reports whether name has one of Extensions.
func IsQueryFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// QueryName derives a document name from a file path.
func QueryName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
