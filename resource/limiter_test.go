package resource

import "testing"

func TestAllocationProtocolScenario6(t *testing.T) {
	l := NewLimiter("bank", 1024, 0, 0)

	var callbackCurrent, callbackLimit int64
	var callbackCalls int
	l.OnThreshold(func(kind Kind, current, limit int64) {
		if kind != KindMemory {
			return
		}
		callbackCalls++
		callbackCurrent = current
		callbackLimit = limit
	})

	if err := l.Allocate(KindMemory, 800); err != nil {
		t.Fatalf("first allocate: %v", err)
	}
	if err := l.Allocate(KindMemory, 300); err == nil {
		t.Fatal("expected QuotaExceeded on second allocate")
	}

	snap := l.Snapshot(KindMemory)
	if snap.Peak != 800 {
		t.Fatalf("peak = %d, want 800", snap.Peak)
	}
	if snap.Violations != 1 {
		t.Fatalf("violations = %d, want 1", snap.Violations)
	}
	if callbackCalls != 1 {
		t.Fatalf("callback calls = %d, want 1", callbackCalls)
	}
	if callbackCurrent != 800 || callbackLimit != 1024 {
		t.Fatalf("callback args = (%d,%d), want (800,1024)", callbackCurrent, callbackLimit)
	}
}

func TestFreeClampsAtZero(t *testing.T) {
	l := NewLimiter("c", 100, 0, 0)
	l.Free(KindMemory, 50)
	if snap := l.Snapshot(KindMemory); snap.Current != 0 {
		t.Fatalf("current = %d, want 0", snap.Current)
	}
}
