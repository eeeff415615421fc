package metrics

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"labctl/internal/model"
)

var csvHeader = []string{
	"timestamp",
	"host_id",
	"cpu_pct",
	"memory_pct",
	"disk_pct",
	"lab_count",
	"node_count",
}

// WriteCSV writes samples to CSV with a fixed column order.
func WriteCSV(w io.Writer, items []model.HostMetric) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, m := range items {
		if err := writer.Write(csvRecord(m)); err != nil {
			return err
		}
	}
	return writer.Error()
}

// AppendCSV appends samples to the CSV file at path, creating it (and
// the header) when missing. Not safe for concurrent writers; the watch
// loop is the only producer.
func AppendCSV(path string, items []model.HostMetric) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	info, err := os.Stat(path)
	writeHeader := err != nil || info.Size() == 0

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if writeHeader {
		if err := writer.Write(csvHeader); err != nil {
			return err
		}
	}
	for _, m := range items {
		if err := writer.Write(csvRecord(m)); err != nil {
			return err
		}
	}
	return writer.Error()
}

func csvRecord(m model.HostMetric) []string {
	return []string{
		m.Timestamp.UTC().Format(time.RFC3339Nano),
		m.HostID,
		strconv.FormatFloat(m.CPUPct, 'f', 2, 64),
		strconv.FormatFloat(m.MemoryPct, 'f', 2, 64),
		strconv.FormatFloat(m.DiskPct, 'f', 2, 64),
		strconv.Itoa(m.LabCount),
		strconv.Itoa(m.NodeCount),
	}
}
