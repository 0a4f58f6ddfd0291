package directory

import (
	"io"
	"log/slog"
	"sync"
	"time"
)

// Directory is an in-memory hierarchical entry store with DN addressing,
// compound filter search, schema validation and virtual-directory
// configuration storage. Each instance owns its own state; there is no
// process-wide store.
//
// All operations are safe for concurrent use. Structural mutations
// (AddEntry, ModifyEntry, DeleteEntry, MoveEntry) take an exclusive lock for
// their full duration because they update the DN map and the parent/children
// adjacency together; read operations share a read lock.
type Directory struct {
	mu      sync.RWMutex
	entries map[string]*Entry

	schemas     map[string]*DirectorySchema
	schemaOrder []string

	virtual map[string]*VirtualDirectoryConfig

	index        *attributeIndex
	indexingOn   bool
	indexedAttrs map[string]struct{}

	logger *slog.Logger
	clock  func() time.Time
	stats  *OperationStats
}

// New creates an empty Directory configured by the given options.
func New(opts ...Option) *Directory {
	d := &Directory{
		entries:    make(map[string]*Entry),
		schemas:    make(map[string]*DirectorySchema),
		virtual:    make(map[string]*VirtualDirectoryConfig),
		index:      newAttributeIndex(),
		indexingOn: true,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		clock:      time.Now,
		stats:      &OperationStats{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// EntryCount returns the number of stored entries.
func (d *Directory) EntryCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.entries)
}

// SchemaCount returns the number of registered schemas.
func (d *Directory) SchemaCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.schemas)
}

// VirtualDirectoryCount returns the number of stored virtual directory
// configurations.
func (d *Directory) VirtualDirectoryCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.virtual)
}
