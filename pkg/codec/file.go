package codec

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ssargent/roster/pkg/store"
)

// WriteFile encodes rs to path, creating or truncating the file. Records are
// checked before the file is touched, so an unencodable record leaves the
// existing file intact. A write interrupted part way may leave a partial file.
func (c *RecordCodec) WriteFile(path string, rs *store.RecordStore) error {
	if err := c.Check(rs); err != nil {
		return fmt.Errorf("refusing to write %s: %w", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open %s for writing: %w", path, err)
	}

	if err := c.Encode(file, rs); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err := file.Sync(); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to sync %s: %w", path, err)
	}

	return file.Close()
}

// ReadFile decodes path into a new store built with cfg. A file that does
// not exist or cannot be opened yields ErrNoFile and a nil store; an empty
// file yields an empty store.
func (c *RecordCodec) ReadFile(path string, cfg store.Config) (*store.RecordStore, *Report, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrNoFile, err)
	}
	defer file.Close()

	rs := store.NewRecordStore(cfg)
	report, err := c.Decode(file, rs)
	if err != nil {
		return rs, report, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return rs, report, nil
}
