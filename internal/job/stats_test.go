package job

import "testing"

func TestStatsSnapshotAccumulates(t *testing.T) {
	var s Stats
	s.addOptimized(1000, 400)
	s.addOptimized(2000, 1000)
	s.addUnchanged()
	s.addSkipped()
	s.addSkipped()
	s.addErrored()

	snap := s.Snapshot()
	if snap.Optimized != 2 {
		t.Fatalf("Optimized = %d, want 2", snap.Optimized)
	}
	if snap.Unchanged != 1 {
		t.Fatalf("Unchanged = %d, want 1", snap.Unchanged)
	}
	if snap.Skipped != 2 {
		t.Fatalf("Skipped = %d, want 2", snap.Skipped)
	}
	if snap.Errored != 1 {
		t.Fatalf("Errored = %d, want 1", snap.Errored)
	}
	if snap.BytesBefore != 3000 || snap.BytesAfter != 1400 {
		t.Fatalf("bytes = (%d,%d), want (3000,1400)", snap.BytesBefore, snap.BytesAfter)
	}
	if snap.BytesSaved() != 1600 {
		t.Fatalf("BytesSaved() = %d, want 1600", snap.BytesSaved())
	}
}

func TestStatsSnapshotIsIndependentOfLiveStats(t *testing.T) {
	var s Stats
	s.addOptimized(100, 50)
	snap := s.Snapshot()
	s.addOptimized(100, 50)
	if snap.Optimized != 1 {
		t.Fatalf("a previously taken snapshot should not see later updates, got %d", snap.Optimized)
	}
}
