package entity

import (
	"testing"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
)

func newRecord(stock, reserved, nonSaleable, hold int64) *InventoryRecord {
	r := NewInventoryRecord(id.New(), id.New())
	r.StockQuantity = stock
	r.ReservedQuantity = reserved
	r.NonSaleableQuantity = nonSaleable
	r.HoldQuantity = hold
	return r
}

func TestApply_BucketTransitions(t *testing.T) {
	tests := []struct {
		name    string
		start   *InventoryRecord
		adjType AdjustmentType
		qty     int64

		wantStock       int64
		wantReserved    int64
		wantNonSaleable int64
		wantHold        int64
	}{
		{
			name:  "addition increments stock",
			start: newRecord(0, 0, 0, 0), adjType: Addition, qty: 10,
			wantStock: 10,
		},
		{
			name:  "subtraction decrements stock",
			start: newRecord(10, 0, 0, 0), adjType: Subtraction, qty: 4,
			wantStock: 6,
		},
		{
			name:  "reservation moves stock to reserved",
			start: newRecord(20, 0, 0, 0), adjType: Reservation, qty: 8,
			wantStock: 12, wantReserved: 8,
		},
		{
			name:  "reservation checks stock only, not already reserved units",
			start: newRecord(1, 1, 0, 0), adjType: Reservation, qty: 1,
			wantStock: 0, wantReserved: 2,
		},
		{
			name:  "release reservation moves reserved back",
			start: newRecord(12, 8, 0, 0), adjType: ReleaseReservation, qty: 5,
			wantStock: 17, wantReserved: 3,
		},
		{
			name:  "non-saleable moves stock aside",
			start: newRecord(10, 0, 0, 0), adjType: NonSaleable, qty: 3,
			wantStock: 7, wantNonSaleable: 3,
		},
		{
			name:  "return to stock reverses non-saleable",
			start: newRecord(7, 0, 3, 0), adjType: ReturnToStock, qty: 2,
			wantStock: 9, wantNonSaleable: 1,
		},
		{
			name:  "hold moves stock to hold",
			start: newRecord(10, 0, 0, 0), adjType: Hold, qty: 6,
			wantStock: 4, wantHold: 6,
		},
		{
			name:  "release hold reverses hold",
			start: newRecord(4, 0, 0, 6), adjType: ReleaseHold, qty: 6,
			wantStock: 10,
		},
		{
			name:  "ship order settles reserved only",
			start: newRecord(12, 8, 0, 0), adjType: ShipOrder, qty: 8,
			wantStock: 12,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.start.Apply(tt.adjType, tt.qty); err != nil {
				t.Fatalf("Apply() error = %v", err)
			}
			if tt.start.StockQuantity != tt.wantStock {
				t.Errorf("stock = %d, want %d", tt.start.StockQuantity, tt.wantStock)
			}
			if tt.start.ReservedQuantity != tt.wantReserved {
				t.Errorf("reserved = %d, want %d", tt.start.ReservedQuantity, tt.wantReserved)
			}
			if tt.start.NonSaleableQuantity != tt.wantNonSaleable {
				t.Errorf("nonSaleable = %d, want %d", tt.start.NonSaleableQuantity, tt.wantNonSaleable)
			}
			if tt.start.HoldQuantity != tt.wantHold {
				t.Errorf("hold = %d, want %d", tt.start.HoldQuantity, tt.wantHold)
			}
		})
	}
}

func TestApply_PreconditionViolations(t *testing.T) {
	tests := []struct {
		name    string
		start   *InventoryRecord
		adjType AdjustmentType
		qty     int64
	}{
		{"subtraction beyond stock", newRecord(5, 0, 0, 0), Subtraction, 10},
		{"reservation beyond stock", newRecord(2, 8, 0, 0), Reservation, 3},
		{"release beyond reserved", newRecord(10, 2, 0, 0), ReleaseReservation, 3},
		{"non-saleable beyond stock", newRecord(2, 0, 0, 0), NonSaleable, 3},
		{"return beyond non-saleable", newRecord(10, 0, 1, 0), ReturnToStock, 2},
		{"hold beyond stock", newRecord(1, 0, 0, 0), Hold, 2},
		{"release hold beyond held", newRecord(10, 0, 0, 1), ReleaseHold, 2},
		{"ship beyond reserved", newRecord(10, 1, 0, 0), ShipOrder, 2},
		{"zero quantity", newRecord(10, 0, 0, 0), Addition, 0},
		{"negative quantity", newRecord(10, 0, 0, 0), Addition, -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := *tt.start

			err := tt.start.Apply(tt.adjType, tt.qty)
			if err == nil {
				t.Fatal("Apply() expected error, got nil")
			}
			if !apperror.IsCode(err, apperror.CodePrecondition) {
				t.Errorf("error code = %v, want PRECONDITION_VIOLATION", err)
			}
			// Rejection leaves the record untouched.
			if *tt.start != before {
				t.Errorf("record mutated on rejected adjustment: %+v != %+v", *tt.start, before)
			}
		})
	}
}

func TestApply_ReservationRoundTrip(t *testing.T) {
	r := newRecord(20, 0, 0, 0)

	if err := r.Apply(Reservation, 8); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if r.StockQuantity != 12 || r.ReservedQuantity != 8 {
		t.Fatalf("after reserve: stock=%d reserved=%d, want 12/8", r.StockQuantity, r.ReservedQuantity)
	}

	if err := r.Apply(ReleaseReservation, 5); err != nil {
		t.Fatalf("release: %v", err)
	}
	if r.StockQuantity != 17 || r.ReservedQuantity != 3 {
		t.Fatalf("after release: stock=%d reserved=%d, want 17/3", r.StockQuantity, r.ReservedQuantity)
	}
}

func TestAvailableToPromise(t *testing.T) {
	// Reserved units already left stock, so stock is the promisable pool.
	r := newRecord(12, 8, 0, 0)
	if got := r.AvailableToPromise(); got != 12 {
		t.Errorf("AvailableToPromise() = %d, want 12", got)
	}

	if err := r.Apply(Reservation, 12); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if got := r.AvailableToPromise(); got != 0 {
		t.Errorf("AvailableToPromise() after full reservation = %d, want 0", got)
	}
}

func TestIsLowStock(t *testing.T) {
	r := newRecord(5, 0, 0, 0)
	if r.IsLowStock() {
		t.Error("no threshold configured, want false")
	}

	threshold := int64(5)
	r.LowStockThreshold = &threshold
	if !r.IsLowStock() {
		t.Error("stock at threshold, want true")
	}

	r.StockQuantity = 6
	if r.IsLowStock() {
		t.Error("stock above threshold, want false")
	}
}

func TestStockDelta(t *testing.T) {
	tests := []struct {
		adjType AdjustmentType
		want    int64
	}{
		{Addition, 5},
		{ReleaseReservation, 5},
		{ReturnToStock, 5},
		{ReleaseHold, 5},
		{Subtraction, -5},
		{Reservation, -5},
		{NonSaleable, -5},
		{Hold, -5},
		{ShipOrder, -5},
	}
	for _, tt := range tests {
		if got := tt.adjType.StockDelta(5); got != tt.want {
			t.Errorf("%s.StockDelta(5) = %d, want %d", tt.adjType, got, tt.want)
		}
	}
}

func TestParseAdjustmentType(t *testing.T) {
	if _, err := ParseAdjustmentType("ADDITION"); err != nil {
		t.Errorf("valid type rejected: %v", err)
	}
	if _, err := ParseAdjustmentType("TELEPORT"); err == nil {
		t.Error("unknown type accepted")
	}
}
