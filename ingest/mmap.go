package ingest

import (
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"
)

// MappedFile is a read-only memory mapping of an ITCH capture. The
// mapping stays valid until Close; the decoder copies everything it
// needs out of the view, so Close is safe as soon as the producer has
// finished.
type MappedFile struct {
	file *os.File
	mem  mmap.MMap
}

func OpenMapped(path string) (*MappedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture: %w", err)
	}

	mem, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to map capture: %w", err)
	}

	return &MappedFile{file: f, mem: mem}, nil
}

// Bytes returns the mapped view of the whole file.
func (m *MappedFile) Bytes() []byte {
	return m.mem
}

func (m *MappedFile) Close() error {
	if err := m.mem.Unmap(); err != nil {
		m.file.Close()
		return fmt.Errorf("failed to unmap capture: %w", err)
	}
	return m.file.Close()
}
