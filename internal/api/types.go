package api

import "time"

// NodeState is the per-node state record delivered by the server, both
// in bulk snapshots and in incremental updates. Optional fields may be
// null or absent; they decode to zero values.
type NodeState struct {
	NodeID           string `json:"node_id"`
	NodeName         string `json:"node_name"`
	DesiredState     string `json:"desired_state"`
	ActualState      string `json:"actual_state"`
	IsReady          bool   `json:"is_ready"`
	ErrorMessage     string `json:"error_message,omitempty"`
	ImageSyncStatus  string `json:"image_sync_status,omitempty"`
	ImageSyncMessage string `json:"image_sync_message,omitempty"`
	WillRetry        bool   `json:"will_retry,omitempty"`
	DisplayState     string `json:"display_state,omitempty"`
}

// Lab summarizes one lab session.
type Lab struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Owner     string    `json:"owner"`
	NodeCount int       `json:"node_count"`
	CreatedAt time.Time `json:"created_at"`
}

// LabsResponse lists the labs visible to the caller.
type LabsResponse struct {
	Labs []Lab `json:"labs"`
}

// NodesResponse is the bulk node-state snapshot for one lab.
type NodesResponse struct {
	LabID string      `json:"lab_id"`
	Nodes []NodeState `json:"nodes"`
}

// HostMetric is a resource sample for one lab host.
type HostMetric struct {
	Timestamp time.Time `json:"timestamp"`
	HostID    string    `json:"host_id"`
	CPUPct    float64   `json:"cpu_pct"`
	MemoryPct float64   `json:"memory_pct"`
	DiskPct   float64   `json:"disk_pct"`
	LabCount  int       `json:"lab_count"`
	NodeCount int       `json:"node_count"`
}

// HostsResponse is the current resource snapshot for all hosts.
type HostsResponse struct {
	Hosts []HostMetric `json:"hosts"`
}

// HealthResponse reports server liveness and version.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}
