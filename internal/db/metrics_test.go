package db

import (
	"context"
	"testing"

	"github.com/polykv/polykv-go/pkg/metrics"
)

func TestDatabase_ImplementsMetricsSampler(t *testing.T) {
	dir := t.TempDir()
	d, st := Open(context.Background(), Config{Backend: BackendMemory, DataDir: dir})
	if st != nil {
		t.Fatalf("Open: %v", st)
	}
	defer d.Close()

	var _ metrics.Sampler = d

	if d.SnapshotsOpen() != 0 {
		t.Errorf("SnapshotsOpen() = %d, want 0 before any snapshot is created", d.SnapshotsOpen())
	}

	_, _, release, snapErr := d.BeginSnapshotTxn(context.Background())
	if snapErr != nil {
		t.Fatalf("BeginSnapshotTxn: %v", snapErr)
	}
	if d.SnapshotsOpen() != 1 {
		t.Errorf("SnapshotsOpen() = %d, want 1 with a snapshot held open", d.SnapshotsOpen())
	}
	release()

	if d.MetricsCollectors() != nil {
		t.Error("expected no extra collectors for the memory substrate")
	}
}

func TestDatabase_RegisterWithMetricsRegistry(t *testing.T) {
	dir := t.TempDir()
	d, st := Open(context.Background(), Config{Backend: BackendMemory, DataDir: dir})
	if st != nil {
		t.Fatalf("Open: %v", st)
	}
	defer d.Close()

	reg := metrics.NewRegistry()
	if err := reg.Register(metrics.NewCollector(d)); err != nil {
		t.Fatalf("Register: %v", err)
	}
}
