package lifecycle

import (
	"errors"
	"testing"

	"needletrack/internal/domain"
)

func TestValidateRecord(t *testing.T) {
	if err := ValidateRecord(0, "1組醫師A"); !errors.Is(err, ErrNoNeedles) {
		t.Errorf("zero needles: got %v, want ErrNoNeedles", err)
	}
	if err := ValidateRecord(3, ""); !errors.Is(err, ErrNoPhysician) {
		t.Errorf("no physician: got %v, want ErrNoPhysician", err)
	}
	if err := ValidateRecord(3, "1組醫師A"); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestStateOf(t *testing.T) {
	open := domain.TreatmentSession{StartTime: "2026-01-15 09:30"}
	if StateOf(open) != Open {
		t.Error("session without removal time should be Open")
	}

	closed := open
	closed.RemovalTime = "2026-01-15 11:00"
	if StateOf(closed) != Closed {
		t.Error("session with removal time should be Closed")
	}
}

func TestClose(t *testing.T) {
	s := domain.TreatmentSession{StartTime: "2026-01-15 09:30"}
	if err := Close(&s, "2026-01-15 11:00"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if s.RemovalTime != "2026-01-15 11:00" {
		t.Errorf("removal time not written, got %q", s.RemovalTime)
	}

	// 已关闭的纪录再拔针：拒绝且原时间不变
	if err := Close(&s, "2026-01-15 12:00"); !errors.Is(err, ErrAlreadyClosed) {
		t.Errorf("second close: got %v, want ErrAlreadyClosed", err)
	}
	if s.RemovalTime != "2026-01-15 11:00" {
		t.Errorf("removal time must not change on rejected close, got %q", s.RemovalTime)
	}
}
