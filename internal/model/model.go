package model

import "time"

// HostMetric is a single resource sample for one lab host.
type HostMetric struct {
	Timestamp time.Time
	HostID    string
	CPUPct    float64
	MemoryPct float64
	DiskPct   float64
	LabCount  int
	NodeCount int
}
