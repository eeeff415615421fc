package runtime

import (
	"sort"
	"sync"
	"time"
)

// Record is the latest observed runtime state for one node. Each update
// from the server replaces the whole record; fields are never merged
// across updates.
type Record struct {
	NodeID           string
	Name             string
	DesiredState     DesiredState
	ActualState      ActualState
	Hint             DisplayHint
	Ready            bool
	WillRetry        bool
	ErrorMessage     string
	ImageSyncStatus  string
	ImageSyncMessage string
	UpdatedAt        time.Time
}

// Status projects the record into its display status.
func (r Record) Status() Status {
	return Project(r.ActualState, r.DesiredState, r.WillRetry, r.Hint)
}

// Projector keeps the latest Record per node for one lab session.
// Records are created on first observation and live until the session
// ends; there is no deletion path. Writes come from a single ingest
// loop, the lock makes concurrent readers safe.
type Projector struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewProjector creates an empty projector.
func NewProjector() *Projector {
	return &Projector{records: make(map[string]Record)}
}

// Ingest replaces the stored record for rec.NodeID. Records without a
// node ID are dropped.
func (p *Projector) Ingest(rec Record) {
	if rec.NodeID == "" {
		return
	}
	p.mu.Lock()
	p.records[rec.NodeID] = rec
	p.mu.Unlock()
}

// IngestAll ingests a bulk snapshot, one record at a time.
func (p *Projector) IngestAll(recs []Record) {
	for _, rec := range recs {
		p.Ingest(rec)
	}
}

// Get returns the latest record for a node ID. The second return is
// false if the node has never been observed.
func (p *Projector) Get(nodeID string) (Record, bool) {
	p.mu.RLock()
	rec, ok := p.records[nodeID]
	p.mu.RUnlock()
	return rec, ok
}

// Snapshot returns a copy of all records, ordered by node name then ID
// so rendered tables are stable across refreshes.
func (p *Projector) Snapshot() []Record {
	p.mu.RLock()
	recs := make([]Record, 0, len(p.records))
	for _, rec := range p.records {
		recs = append(recs, rec)
	}
	p.mu.RUnlock()

	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Name != recs[j].Name {
			return recs[i].Name < recs[j].Name
		}
		return recs[i].NodeID < recs[j].NodeID
	})
	return recs
}

// Len reports how many nodes have been observed.
func (p *Projector) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.records)
}
