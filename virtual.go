package directory

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// MergeStrategy tags how an external federator should combine entries from
// several virtual directory sources. The directory stores the tag verbatim;
// no merging happens here.
type MergeStrategy string

const (
	// MergeFirstMatch returns the first source that yields an entry.
	MergeFirstMatch MergeStrategy = "first-match"
	// MergePriority prefers values from the highest-priority source.
	MergePriority MergeStrategy = "priority"
	// MergeUnion combines attribute values from every source.
	MergeUnion MergeStrategy = "union"
)

// VirtualDirectorySource describes one backing source of a virtual
// directory: where its namespace is rooted and how it ranks against the
// other sources.
type VirtualDirectorySource struct {
	ID       string            `yaml:"id" json:"id"`
	BaseDN   string            `yaml:"baseDn" json:"baseDn"`
	Priority int               `yaml:"priority,omitempty" json:"priority,omitempty"`
	// Attributes carries merge-relevant source metadata, such as attribute
	// renames or connection hints, passed through untouched.
	Attributes map[string]string `yaml:"attributes,omitempty" json:"attributes,omitempty"`
}

// VirtualDirectoryConfig is the stored configuration of one virtual
// directory: an ordered list of sources plus merge and cache policy. It is
// configuration storage only; an external federator consumes it, and nothing
// in this package executes it.
type VirtualDirectoryConfig struct {
	ID            string                   `yaml:"id" json:"id"`
	Name          string                   `yaml:"name,omitempty" json:"name,omitempty"`
	Sources       []VirtualDirectorySource `yaml:"sources,omitempty" json:"sources,omitempty"`
	MergeStrategy MergeStrategy            `yaml:"mergeStrategy,omitempty" json:"mergeStrategy,omitempty"`
	CacheEnabled  bool                     `yaml:"cacheEnabled,omitempty" json:"cacheEnabled,omitempty"`
	CacheTTL      time.Duration            `yaml:"cacheTtl,omitempty" json:"cacheTtl,omitempty"`
}

// Clone returns a deep copy of the configuration.
func (c *VirtualDirectoryConfig) Clone() *VirtualDirectoryConfig {
	if c == nil {
		return nil
	}
	clone := *c
	clone.Sources = make([]VirtualDirectorySource, len(c.Sources))
	for i, src := range c.Sources {
		if src.Attributes != nil {
			attrs := make(map[string]string, len(src.Attributes))
			for k, v := range src.Attributes {
				attrs[k] = v
			}
			src.Attributes = attrs
		}
		clone.Sources[i] = src
	}
	return &clone
}

// ConfigureVirtualDirectory stores a virtual directory configuration under
// its ID, replacing any existing configuration with the same ID. Returns a
// copy of what was stored.
func (d *Directory) ConfigureVirtualDirectory(cfg *VirtualDirectoryConfig) (*VirtualDirectoryConfig, error) {
	if cfg == nil || strings.TrimSpace(cfg.ID) == "" {
		return nil, operationError("ConfigureVirtualDirectory", "", fmt.Errorf("virtual directory config id must not be empty"))
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.virtual[cfg.ID] = cfg.Clone()
	d.logger.Debug("virtual_directory_configured",
		slog.String("config_id", cfg.ID),
		slog.Int("source_count", len(cfg.Sources)))
	return cfg.Clone(), nil
}

// GetVirtualDirectoryConfig returns a copy of the configuration stored
// under id, or ErrVirtualConfigNotFound.
func (d *Directory) GetVirtualDirectoryConfig(id string) (*VirtualDirectoryConfig, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	cfg, ok := d.virtual[id]
	if !ok {
		return nil, operationError("GetVirtualDirectoryConfig", "", ErrVirtualConfigNotFound).WithContext("config_id", id)
	}
	return cfg.Clone(), nil
}
