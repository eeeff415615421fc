package metrics

import (
	"math"
	"sort"
	"time"

	"labctl/internal/model"
)

// Aggregate is the fleet-wide view of the latest host samples.
type Aggregate struct {
	Hosts        int
	Labs         int
	Nodes        int
	AvgCPUPct    float64
	MaxCPUPct    float64
	AvgMemoryPct float64
	MaxMemoryPct float64
	AvgDiskPct   float64
	MaxDiskPct   float64
}

// AggregateHosts folds one sample per host into fleet totals.
func AggregateHosts(samples []model.HostMetric) Aggregate {
	if len(samples) == 0 {
		return Aggregate{}
	}

	agg := Aggregate{Hosts: len(samples)}
	for _, s := range samples {
		agg.Labs += s.LabCount
		agg.Nodes += s.NodeCount
		agg.AvgCPUPct += s.CPUPct
		agg.AvgMemoryPct += s.MemoryPct
		agg.AvgDiskPct += s.DiskPct
		if s.CPUPct > agg.MaxCPUPct {
			agg.MaxCPUPct = s.CPUPct
		}
		if s.MemoryPct > agg.MaxMemoryPct {
			agg.MaxMemoryPct = s.MemoryPct
		}
		if s.DiskPct > agg.MaxDiskPct {
			agg.MaxDiskPct = s.DiskPct
		}
	}

	count := float64(len(samples))
	agg.AvgCPUPct /= count
	agg.AvgMemoryPct /= count
	agg.AvgDiskPct /= count
	return agg
}

// Summary is a basic statistics snapshot over recorded samples.
type Summary struct {
	Count        int
	From         time.Time
	To           time.Time
	AvgCPUPct    float64
	P95CPUPct    float64
	MinCPUPct    float64
	MaxCPUPct    float64
	AvgMemoryPct float64
	AvgDiskPct   float64
}

// Summarize computes summary metrics for items in a time window.
func Summarize(items []model.HostMetric, since time.Time) Summary {
	filtered := make([]model.HostMetric, 0, len(items))
	for _, m := range items {
		if m.Timestamp.After(since) || m.Timestamp.Equal(since) {
			filtered = append(filtered, m)
		}
	}

	if len(filtered) == 0 {
		return Summary{Count: 0}
	}

	values := make([]float64, 0, len(filtered))
	var sumCPU, sumMemory, sumDisk float64
	minCPU := math.MaxFloat64
	maxCPU := 0.0
	from := filtered[0].Timestamp
	to := filtered[0].Timestamp

	for _, m := range filtered {
		values = append(values, m.CPUPct)
		sumCPU += m.CPUPct
		sumMemory += m.MemoryPct
		sumDisk += m.DiskPct
		if m.CPUPct < minCPU {
			minCPU = m.CPUPct
		}
		if m.CPUPct > maxCPU {
			maxCPU = m.CPUPct
		}
		if m.Timestamp.Before(from) {
			from = m.Timestamp
		}
		if m.Timestamp.After(to) {
			to = m.Timestamp
		}
	}

	sort.Float64s(values)
	p95 := percentile(values, 0.95)
	count := float64(len(filtered))

	return Summary{
		Count:        len(filtered),
		From:         from,
		To:           to,
		AvgCPUPct:    sumCPU / count,
		P95CPUPct:    p95,
		MinCPUPct:    minCPU,
		MaxCPUPct:    maxCPU,
		AvgMemoryPct: sumMemory / count,
		AvgDiskPct:   sumDisk / count,
	}
}

func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	if p <= 0 {
		return values[0]
	}
	if p >= 1 {
		return values[len(values)-1]
	}
	idx := int(math.Ceil(p*float64(len(values)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(values) {
		idx = len(values) - 1
	}
	return values[idx]
}
