package forest

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/kailas-cloud/mqttguard/internal/domain"
)

// Load reads a JSON artifact from path. Files ending in .gz are gunzipped.
// Every failure wraps domain.ErrModelLoad.
func Load(path string) (*Forest, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrModelLoad, err)
	}
	defer f.Close()

	var r io.Reader = bufio.NewReader(f)
	if strings.HasSuffix(path, ".gz") {
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("%w: open gzip %s: %w", domain.ErrModelLoad, path, err)
		}
		defer zr.Close()
		r = zr
	}

	forest, err := Read(r)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return forest, nil
}

// Read decodes and validates an artifact from r.
func Read(r io.Reader) (*Forest, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var a Artifact
	if err := dec.Decode(&a); err != nil {
		return nil, fmt.Errorf("%w: decode artifact: %w", domain.ErrModelLoad, err)
	}
	return New(a)
}

// Save writes a as JSON to path, gzip-compressed when path ends in .gz.
func Save(path string, a Artifact) (err error) {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	var w io.Writer = f
	if strings.HasSuffix(path, ".gz") {
		zw := gzip.NewWriter(f)
		defer func() {
			if cerr := zw.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("close gzip %s: %w", path, cerr)
			}
		}()
		w = zw
	}

	if err := json.NewEncoder(w).Encode(a); err != nil {
		return fmt.Errorf("encode artifact: %w", err)
	}
	return nil
}
