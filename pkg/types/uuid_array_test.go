package types

import (
	"testing"

	"github.com/google/uuid"
)

func TestUUIDArrayRoundTrip(t *testing.T) {
	ids := UUIDArray{uuid.New(), uuid.New()}

	value, err := ids.Value()
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}

	var scanned UUIDArray
	if err := scanned.Scan(value); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(scanned) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(scanned))
	}
	for i := range ids {
		if scanned[i] != ids[i] {
			t.Fatalf("element %d mismatch: %s vs %s", i, scanned[i], ids[i])
		}
	}
}

func TestUUIDArrayScanNilYieldsEmpty(t *testing.T) {
	var scanned UUIDArray
	if err := scanned.Scan(nil); err != nil {
		t.Fatalf("Scan(nil) failed: %v", err)
	}
	if scanned == nil || len(scanned) != 0 {
		t.Fatalf("expected empty non-nil array, got %#v", scanned)
	}
}

func TestUUIDArrayScanRejectsGarbage(t *testing.T) {
	var scanned UUIDArray
	if err := scanned.Scan([]byte(`{"not-a-uuid"}`)); err == nil {
		t.Fatal("expected scan error for malformed uuid")
	}
}
