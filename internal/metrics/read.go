package metrics

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"labctl/internal/model"
)

// ReadCSV loads samples from a CSV file.
func ReadCSV(path string) ([]model.HostMetric, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return readCSV(file)
}

func readCSV(r io.Reader) ([]model.HostMetric, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	start := 0
	if len(records[0]) > 0 && records[0][0] == "timestamp" {
		start = 1
	}

	items := make([]model.HostMetric, 0, len(records)-start)
	for i := start; i < len(records); i++ {
		rec := records[i]
		if len(rec) < 7 {
			return nil, fmt.Errorf("invalid record at line %d", i+1)
		}
		ts, err := time.Parse(time.RFC3339Nano, rec[0])
		if err != nil {
			return nil, fmt.Errorf("invalid timestamp at line %d: %w", i+1, err)
		}
		cpu, _ := strconv.ParseFloat(rec[2], 64)
		memory, _ := strconv.ParseFloat(rec[3], 64)
		disk, _ := strconv.ParseFloat(rec[4], 64)
		labs, _ := strconv.Atoi(rec[5])
		nodes, _ := strconv.Atoi(rec[6])
		items = append(items, model.HostMetric{
			Timestamp: ts,
			HostID:    rec[1],
			CPUPct:    cpu,
			MemoryPct: memory,
			DiskPct:   disk,
			LabCount:  labs,
			NodeCount: nodes,
		})
	}

	return items, nil
}
