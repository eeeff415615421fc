package store

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"labctl/internal/runtime"
)

// Cache persists the last-known node records for one lab session so the
// status view works without a server connection.
type Cache struct {
	UpdatedAt time.Time    `yaml:"updated_at"`
	LabID     string       `yaml:"lab_id"`
	Nodes     []NodeRecord `yaml:"nodes"`
}

// NodeRecord is the on-disk form of one runtime record.
type NodeRecord struct {
	NodeID           string    `yaml:"node_id"`
	Name             string    `yaml:"name"`
	DesiredState     string    `yaml:"desired_state,omitempty"`
	ActualState      string    `yaml:"actual_state,omitempty"`
	DisplayState     string    `yaml:"display_state,omitempty"`
	Ready            bool      `yaml:"ready,omitempty"`
	WillRetry        bool      `yaml:"will_retry,omitempty"`
	ErrorMessage     string    `yaml:"error_message,omitempty"`
	ImageSyncStatus  string    `yaml:"image_sync_status,omitempty"`
	ImageSyncMessage string    `yaml:"image_sync_message,omitempty"`
	UpdatedAt        time.Time `yaml:"updated_at,omitempty"`
}

// LoadCache loads the cache from disk. If the file is missing, returns an empty cache.
func LoadCache(path string) (*Cache, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Cache{}, nil
		}
		return nil, err
	}

	var cache Cache
	if err := yaml.Unmarshal(data, &cache); err != nil {
		return nil, err
	}

	return &cache, nil
}

// SaveCache writes the cache to disk.
func SaveCache(path string, cache *Cache) error {
	if cache == nil {
		return nil
	}
	cache.UpdatedAt = time.Now().UTC()
	data, err := yaml.Marshal(cache)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

// FromRecords builds a cache from projector records.
func FromRecords(labID string, recs []runtime.Record) *Cache {
	nodes := make([]NodeRecord, 0, len(recs))
	for _, rec := range recs {
		nodes = append(nodes, NodeRecord{
			NodeID:           rec.NodeID,
			Name:             rec.Name,
			DesiredState:     string(rec.DesiredState),
			ActualState:      string(rec.ActualState),
			DisplayState:     string(rec.Hint),
			Ready:            rec.Ready,
			WillRetry:        rec.WillRetry,
			ErrorMessage:     rec.ErrorMessage,
			ImageSyncStatus:  rec.ImageSyncStatus,
			ImageSyncMessage: rec.ImageSyncMessage,
			UpdatedAt:        rec.UpdatedAt,
		})
	}
	return &Cache{LabID: labID, Nodes: nodes}
}

// Records converts cached nodes back into runtime records.
func (c *Cache) Records() []runtime.Record {
	recs := make([]runtime.Record, 0, len(c.Nodes))
	for _, n := range c.Nodes {
		recs = append(recs, runtime.Record{
			NodeID:           n.NodeID,
			Name:             n.Name,
			DesiredState:     runtime.DesiredState(n.DesiredState),
			ActualState:      runtime.ActualState(n.ActualState),
			Hint:             runtime.DisplayHint(n.DisplayState),
			Ready:            n.Ready,
			WillRetry:        n.WillRetry,
			ErrorMessage:     n.ErrorMessage,
			ImageSyncStatus:  n.ImageSyncStatus,
			ImageSyncMessage: n.ImageSyncMessage,
			UpdatedAt:        n.UpdatedAt,
		})
	}
	return recs
}
