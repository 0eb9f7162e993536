package entity

import (
	"testing"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
)

func newTestUnit(status SerialStatus) *SerializedUnit {
	inv := NewInventoryRecord(id.New(), id.New())
	u := NewSerializedUnit(inv, "SN-001", nil)
	u.Status = status
	return u
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from SerialStatus
		to   SerialStatus
		want bool
	}{
		{SerialAvailable, SerialReserved, true},
		{SerialAvailable, SerialDamaged, true},
		{SerialAvailable, SerialInTransit, true},
		{SerialReserved, SerialAvailable, true},
		{SerialInTransit, SerialReturned, true},
		{SerialReturned, SerialAvailable, true},
		{SerialDamaged, SerialReturned, true},
		{SerialSold, SerialReturned, true},

		// Selling is Ship's job, never a general update.
		{SerialReserved, SerialSold, false},
		{SerialAvailable, SerialSold, false},
		// SOLD and DAMAGED must pass inspection first.
		{SerialSold, SerialAvailable, false},
		{SerialDamaged, SerialAvailable, false},
	}

	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestTransition_RejectedEdgeKeepsStatus(t *testing.T) {
	u := newTestUnit(SerialSold)

	err := u.Transition(SerialAvailable)
	if err == nil {
		t.Fatal("expected error for SOLD -> AVAILABLE")
	}
	if !apperror.IsCode(err, apperror.CodeInvalidStatusTransition) {
		t.Errorf("error code = %v, want INVALID_STATUS_TRANSITION", err)
	}
	if u.Status != SerialSold {
		t.Errorf("status mutated on rejected transition: %s", u.Status)
	}
}

func TestTransition_SameStatusIsNoop(t *testing.T) {
	u := newTestUnit(SerialAvailable)
	if err := u.Transition(SerialAvailable); err != nil {
		t.Fatalf("same-status transition should be a no-op, got %v", err)
	}
}

func TestSell(t *testing.T) {
	u := newTestUnit(SerialReserved)
	if err := u.Sell(); err != nil {
		t.Fatalf("Sell() from RESERVED: %v", err)
	}
	if u.Status != SerialSold {
		t.Errorf("status = %s, want SOLD", u.Status)
	}

	for _, status := range []SerialStatus{SerialAvailable, SerialInTransit, SerialReturned, SerialDamaged, SerialSold} {
		u := newTestUnit(status)
		if err := u.Sell(); err == nil {
			t.Errorf("Sell() from %s should fail", status)
		}
	}
}

func TestParseSerialStatus(t *testing.T) {
	if _, err := ParseSerialStatus("RESERVED"); err != nil {
		t.Errorf("valid status rejected: %v", err)
	}
	if _, err := ParseSerialStatus("LOST"); err == nil {
		t.Error("unknown status accepted")
	}
}
