package runtime

import (
	"testing"
	"time"
)

func TestProjector_IngestIsIdempotent(t *testing.T) {
	t.Parallel()

	p := NewProjector()
	rec := Record{
		NodeID:      "ceos-1",
		Name:        "ceos-1",
		ActualState: ActualRunning,
		UpdatedAt:   time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
	p.Ingest(rec)
	p.Ingest(rec)

	got, ok := p.Get("ceos-1")
	if !ok {
		t.Fatalf("record missing")
	}
	if got != rec {
		t.Fatalf("record=%+v", got)
	}
	if p.Len() != 1 {
		t.Fatalf("len=%d", p.Len())
	}
	if got.Status() != StatusRunning {
		t.Fatalf("status=%s", got.Status())
	}
}

func TestProjector_IngestOverwritesWholeRecord(t *testing.T) {
	t.Parallel()

	p := NewProjector()
	p.Ingest(Record{
		NodeID:       "ceos-2",
		ActualState:  ActualError,
		WillRetry:    true,
		ErrorMessage: "image pull failed",
	})
	p.Ingest(Record{
		NodeID:      "ceos-2",
		ActualState: ActualRunning,
	})

	got, ok := p.Get("ceos-2")
	if !ok {
		t.Fatalf("record missing")
	}
	if got.ErrorMessage != "" || got.WillRetry {
		t.Fatalf("stale fields survived: %+v", got)
	}
	if got.ActualState != ActualRunning {
		t.Fatalf("actual=%s", got.ActualState)
	}
}

func TestProjector_GetUnknownNode(t *testing.T) {
	t.Parallel()

	p := NewProjector()
	if _, ok := p.Get("absent"); ok {
		t.Fatalf("expected absent")
	}
}

func TestProjector_DeploymentSequence(t *testing.T) {
	t.Parallel()

	p := NewProjector()
	p.Ingest(Record{
		NodeID:          "ceos-2",
		ActualState:     ActualUndeployed,
		DesiredState:    DesiredRunning,
		ImageSyncStatus: "syncing",
	})
	p.Ingest(Record{
		NodeID:       "ceos-2",
		ActualState:  ActualStarting,
		DesiredState: DesiredRunning,
	})

	got, ok := p.Get("ceos-2")
	if !ok {
		t.Fatalf("record missing")
	}
	if got.ActualState != ActualStarting {
		t.Fatalf("actual=%s", got.ActualState)
	}
	if got.ImageSyncStatus != "" {
		t.Fatalf("image_sync_status=%q", got.ImageSyncStatus)
	}
	if got.Status() != StatusBooting {
		t.Fatalf("status=%s", got.Status())
	}
}

func TestProjector_SnapshotOrder(t *testing.T) {
	t.Parallel()

	p := NewProjector()
	p.IngestAll([]Record{
		{NodeID: "n3", Name: "spine-1"},
		{NodeID: "n1", Name: "leaf-2"},
		{NodeID: "n2", Name: "leaf-1"},
	})

	recs := p.Snapshot()
	if len(recs) != 3 {
		t.Fatalf("len=%d", len(recs))
	}
	if recs[0].Name != "leaf-1" || recs[1].Name != "leaf-2" || recs[2].Name != "spine-1" {
		t.Fatalf("order=%s,%s,%s", recs[0].Name, recs[1].Name, recs[2].Name)
	}
}

func TestProjector_DropsEmptyNodeID(t *testing.T) {
	t.Parallel()

	p := NewProjector()
	p.Ingest(Record{Name: "anonymous"})
	if p.Len() != 0 {
		t.Fatalf("len=%d", p.Len())
	}
}
