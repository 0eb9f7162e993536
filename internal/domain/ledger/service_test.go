package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
	"stockledger/internal/core/tx"
	"stockledger/internal/domain/journal"
	"stockledger/internal/domain/product"
)

// --- In-memory fakes ---

type fakeInventoryRepo struct {
	records map[id.ID]*entity.InventoryRecord
}

func newFakeInventoryRepo() *fakeInventoryRepo {
	return &fakeInventoryRepo{records: make(map[id.ID]*entity.InventoryRecord)}
}

func (f *fakeInventoryRepo) put(r *entity.InventoryRecord) {
	cp := *r
	f.records[r.ID] = &cp
}

func (f *fakeInventoryRepo) GetByID(_ context.Context, inventoryID id.ID) (*entity.InventoryRecord, error) {
	r, ok := f.records[inventoryID]
	if !ok {
		return nil, apperror.NewNotFound("inventory record", inventoryID)
	}
	cp := *r
	return &cp, nil
}

func (f *fakeInventoryRepo) GetForUpdate(ctx context.Context, inventoryID id.ID) (*entity.InventoryRecord, error) {
	return f.GetByID(ctx, inventoryID)
}

func (f *fakeInventoryRepo) GetOrCreateForUpdate(_ context.Context, productID, locationID id.ID) (*entity.InventoryRecord, error) {
	for _, r := range f.records {
		if r.ProductID == productID && r.LocationID == locationID {
			cp := *r
			return &cp, nil
		}
	}
	fresh := entity.NewInventoryRecord(productID, locationID)
	f.put(fresh)
	cp := *fresh
	return &cp, nil
}

func (f *fakeInventoryRepo) Update(_ context.Context, record *entity.InventoryRecord) error {
	if _, ok := f.records[record.ID]; !ok {
		return apperror.NewNotFound("inventory record", record.ID)
	}
	f.put(record)
	return nil
}

type fakeJournalRepo struct {
	entries []entity.AdjustmentRecord
}

func (f *fakeJournalRepo) Append(_ context.Context, record *entity.AdjustmentRecord) error {
	f.entries = append(f.entries, *record)
	return nil
}

func (f *fakeJournalRepo) ListByInventory(_ context.Context, inventoryID id.ID, _ journal.ListFilter) ([]entity.AdjustmentRecord, error) {
	var out []entity.AdjustmentRecord
	for i := len(f.entries) - 1; i >= 0; i-- {
		if f.entries[i].InventoryID == inventoryID {
			out = append(out, f.entries[i])
		}
	}
	return out, nil
}

func (f *fakeJournalRepo) ListByReason(_ context.Context, reasonID id.ID, _ journal.ListFilter) ([]entity.AdjustmentRecord, error) {
	var out []entity.AdjustmentRecord
	for i := len(f.entries) - 1; i >= 0; i-- {
		if f.entries[i].ReasonID == reasonID {
			out = append(out, f.entries[i])
		}
	}
	return out, nil
}

func (f *fakeJournalRepo) CountByReason(_ context.Context, reasonID id.ID) (int64, error) {
	var n int64
	for _, e := range f.entries {
		if e.ReasonID == reasonID {
			n++
		}
	}
	return n, nil
}

type fakeReasonRepo struct {
	reasons map[id.ID]*entity.AdjustmentReason
}

func (f *fakeReasonRepo) GetByID(_ context.Context, reasonID id.ID) (*entity.AdjustmentReason, error) {
	r, ok := f.reasons[reasonID]
	if !ok {
		return nil, apperror.NewNotFound("adjustment reason", reasonID)
	}
	return r, nil
}

func (f *fakeReasonRepo) Delete(_ context.Context, reasonID id.ID) error {
	delete(f.reasons, reasonID)
	return nil
}

// --- Fixture ---

type fixture struct {
	svc       *Service
	repo      *fakeInventoryRepo
	journal   *fakeJournalRepo
	productID id.ID
	reasonID  id.ID
	inv       *entity.InventoryRecord
}

func newFixture(t *testing.T, tracking entity.Tracking, stock int64) *fixture {
	t.Helper()

	repo := newFakeInventoryRepo()
	journalRepo := &fakeJournalRepo{}
	productID := id.New()
	reasonID := id.New()

	inv := entity.NewInventoryRecord(productID, id.New())
	inv.StockQuantity = stock
	repo.put(inv)

	svc := NewService(
		repo,
		journal.NewService(journalRepo),
		product.StaticResolver{productID: tracking},
		&fakeReasonRepo{reasons: map[id.ID]*entity.AdjustmentReason{
			reasonID: {ID: reasonID, Name: "cycle count", IsActive: true},
		}},
		&tx.MockManager{},
		nil,
		nil,
	)

	return &fixture{
		svc:       svc,
		repo:      repo,
		journal:   journalRepo,
		productID: productID,
		reasonID:  reasonID,
		inv:       inv,
	}
}

func (fx *fixture) apply(adjType entity.AdjustmentType, qty int64) (*entity.AdjustmentRecord, error) {
	return fx.svc.ApplyAdjustment(context.Background(), ApplyRequest{
		InventoryID:    fx.inv.ID,
		AdjustmentType: adjType,
		Quantity:       qty,
		ReasonID:       fx.reasonID,
	})
}

// --- Tests ---

func TestApplyAdjustment_AdditionJournalsAndPersists(t *testing.T) {
	fx := newFixture(t, entity.Tracking{}, 0)

	record, err := fx.apply(entity.Addition, 10)
	require.NoError(t, err)

	assert.Equal(t, entity.Addition, record.AdjustmentType)
	assert.Equal(t, int64(10), record.QuantityChange)
	assert.Equal(t, int64(10), record.NewStockQuantity)
	assert.Equal(t, fx.reasonID, record.ReasonID)

	stored, err := fx.repo.GetByID(context.Background(), fx.inv.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), stored.StockQuantity)

	require.Len(t, fx.journal.entries, 1)
}

func TestApplyAdjustment_RejectionLeavesStateUnchanged(t *testing.T) {
	fx := newFixture(t, entity.Tracking{}, 5)

	_, err := fx.apply(entity.Subtraction, 10)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodePrecondition))

	stored, err := fx.repo.GetByID(context.Background(), fx.inv.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), stored.StockQuantity)
	assert.Empty(t, fx.journal.entries, "rejected adjustment must not journal")
}

func TestApplyAdjustment_ReservationRoundTrip(t *testing.T) {
	fx := newFixture(t, entity.Tracking{}, 20)

	_, err := fx.apply(entity.Reservation, 8)
	require.NoError(t, err)

	stored, _ := fx.repo.GetByID(context.Background(), fx.inv.ID)
	assert.Equal(t, int64(12), stored.StockQuantity)
	assert.Equal(t, int64(8), stored.ReservedQuantity)

	record, err := fx.apply(entity.ReleaseReservation, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), record.QuantityChange)
	assert.Equal(t, int64(17), record.NewStockQuantity)

	stored, _ = fx.repo.GetByID(context.Background(), fx.inv.ID)
	assert.Equal(t, int64(17), stored.StockQuantity)
	assert.Equal(t, int64(3), stored.ReservedQuantity)
}

func TestApplyAdjustment_JournalSigns(t *testing.T) {
	fx := newFixture(t, entity.Tracking{}, 0)

	steps := []struct {
		adjType    entity.AdjustmentType
		qty        int64
		wantChange int64
	}{
		{entity.Addition, 20, 20},
		{entity.Reservation, 8, -8},
		{entity.ReleaseReservation, 5, 5},
		{entity.Hold, 4, -4},
		{entity.Subtraction, 2, -2},
	}

	for _, step := range steps {
		record, err := fx.apply(step.adjType, step.qty)
		require.NoError(t, err, step.adjType)
		assert.Equal(t, step.wantChange, record.QuantityChange, step.adjType)
	}

	history, err := fx.svc.journal.HistoryByInventory(context.Background(), fx.inv.ID, journal.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, history, len(steps))
}

func TestApplyAdjustment_RequestValidation(t *testing.T) {
	fx := newFixture(t, entity.Tracking{}, 10)

	t.Run("non-positive quantity", func(t *testing.T) {
		_, err := fx.apply(entity.Addition, 0)
		assert.True(t, apperror.IsCode(err, apperror.CodePrecondition))
	})

	t.Run("unknown reason", func(t *testing.T) {
		_, err := fx.svc.ApplyAdjustment(context.Background(), ApplyRequest{
			InventoryID:    fx.inv.ID,
			AdjustmentType: entity.Addition,
			Quantity:       1,
			ReasonID:       id.New(),
		})
		assert.True(t, apperror.IsNotFound(err))
	})

	t.Run("no target", func(t *testing.T) {
		_, err := fx.svc.ApplyAdjustment(context.Background(), ApplyRequest{
			AdjustmentType: entity.Addition,
			Quantity:       1,
			ReasonID:       fx.reasonID,
		})
		assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
	})

	t.Run("both hint kinds", func(t *testing.T) {
		_, err := fx.svc.ApplyAdjustment(context.Background(), ApplyRequest{
			InventoryID:    fx.inv.ID,
			AdjustmentType: entity.Addition,
			Quantity:       1,
			ReasonID:       fx.reasonID,
			LotHints:       &LotHints{},
			SerialHints:    &SerialHints{},
		})
		assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
	})
}

func TestApplyAdjustment_LazyRecordCreation(t *testing.T) {
	fx := newFixture(t, entity.Tracking{}, 0)
	locationID := id.New()

	record, err := fx.svc.ApplyAdjustment(context.Background(), ApplyRequest{
		ProductID:      fx.productID,
		LocationID:     locationID,
		AdjustmentType: entity.Addition,
		Quantity:       7,
		ReasonID:       fx.reasonID,
	})
	require.NoError(t, err)

	created, err := fx.repo.GetByID(context.Background(), record.InventoryID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), created.StockQuantity)
	assert.Equal(t, locationID, created.LocationID)

	// A second event for the same key lands on the same record.
	again, err := fx.svc.ApplyAdjustment(context.Background(), ApplyRequest{
		ProductID:      fx.productID,
		LocationID:     locationID,
		AdjustmentType: entity.Addition,
		Quantity:       3,
		ReasonID:       fx.reasonID,
	})
	require.NoError(t, err)
	assert.Equal(t, record.InventoryID, again.InventoryID)
	assert.Equal(t, int64(10), again.NewStockQuantity)
}

func TestApplyAdjustment_HintsRequireTrackingMode(t *testing.T) {
	fx := newFixture(t, entity.Tracking{}, 10)
	lotNumber := "LOT-001"

	_, err := fx.svc.ApplyAdjustment(context.Background(), ApplyRequest{
		InventoryID:    fx.inv.ID,
		AdjustmentType: entity.Addition,
		Quantity:       1,
		ReasonID:       fx.reasonID,
		LotHints:       &LotHints{LotNumber: &lotNumber},
	})
	assert.True(t, apperror.IsCode(err, apperror.CodeProductConfiguration))

	_, err = fx.svc.ApplyAdjustment(context.Background(), ApplyRequest{
		InventoryID:    fx.inv.ID,
		AdjustmentType: entity.Addition,
		Quantity:       1,
		ReasonID:       fx.reasonID,
		SerialHints:    &SerialHints{SerialNumbers: []string{"SN-1"}},
	})
	assert.True(t, apperror.IsCode(err, apperror.CodeProductConfiguration))
}
