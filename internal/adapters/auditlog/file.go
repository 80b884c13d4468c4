package auditlog

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/atvirokodosprendimai/regintake/internal/core/domain"
)

const DefaultMaxBytes = domain.DefaultAuditMaxBytes

// FileStore appends audit records as JSON lines to a local file. When the file
// has grown past maxBytes it is truncated and the new record becomes the only
// line. Appends are serialized in-process by a mutex and across processes by an
// exclusive file lock where the platform supports one.
type FileStore struct {
	path     string
	maxBytes int64
	mu       sync.Mutex
}

func NewFileStore(path string, maxBytes int64) *FileStore {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &FileStore{path: path, maxBytes: maxBytes}
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Append(_ context.Context, record domain.AuditRecord) error {
	line, err := record.Line()
	if err != nil {
		return fmt.Errorf("encode audit record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	if err := lockFile(f); err != nil {
		return fmt.Errorf("lock audit log: %w", err)
	}
	defer func() { _ = unlockFile(f) }()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat audit log: %w", err)
	}
	if info.Size() > s.maxBytes {
		if err := f.Truncate(0); err != nil {
			return fmt.Errorf("truncate audit log: %w", err)
		}
	}

	if _, err := f.Write(line); err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}
	return nil
}
