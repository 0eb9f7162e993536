package lot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
	"stockledger/internal/core/tx"
	"stockledger/internal/domain/allocation"
	"stockledger/internal/domain/journal"
	"stockledger/internal/domain/ledger"
	"stockledger/internal/domain/product"
)

// --- In-memory fakes ---

type fakeInventoryRepo struct {
	records map[id.ID]*entity.InventoryRecord
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

func (f *fakeJournalRepo) ListByInventory(_ context.Context, _ id.ID, _ journal.ListFilter) ([]entity.AdjustmentRecord, error) {
	return f.entries, nil
}

func (f *fakeJournalRepo) ListByReason(_ context.Context, _ id.ID, _ journal.ListFilter) ([]entity.AdjustmentRecord, error) {
	return f.entries, nil
}

func (f *fakeJournalRepo) CountByReason(_ context.Context, _ id.ID) (int64, error) {
	return int64(len(f.entries)), nil
}

type fakeReasonRepo struct {
	reasonID id.ID
}

func (f *fakeReasonRepo) GetByID(_ context.Context, reasonID id.ID) (*entity.AdjustmentReason, error) {
	if reasonID != f.reasonID {
		return nil, apperror.NewNotFound("adjustment reason", reasonID)
	}
	return &entity.AdjustmentReason{ID: reasonID, Name: "receipt", IsActive: true}, nil
}

func (f *fakeReasonRepo) Delete(_ context.Context, _ id.ID) error { return nil }

type fakeLotRepo struct {
	lots map[id.ID]*entity.Lot
}

func newFakeLotRepo() *fakeLotRepo {
	return &fakeLotRepo{lots: make(map[id.ID]*entity.Lot)}
}

func (f *fakeLotRepo) put(l *entity.Lot) {
	cp := *l
	f.lots[l.ID] = &cp
}

func (f *fakeLotRepo) GetByID(_ context.Context, lotID id.ID) (*entity.Lot, error) {
	l, ok := f.lots[lotID]
	if !ok {
		return nil, apperror.NewNotFound("lot", lotID)
	}
	cp := *l
	return &cp, nil
}

func (f *fakeLotRepo) GetForUpdate(ctx context.Context, lotID id.ID) (*entity.Lot, error) {
	return f.GetByID(ctx, lotID)
}

func (f *fakeLotRepo) GetByNumber(_ context.Context, productID, locationID id.ID, lotNumber string) (*entity.Lot, error) {
	for _, l := range f.lots {
		if l.ProductID == productID && l.LocationID == locationID && l.LotNumber == lotNumber {
			cp := *l
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("lot", lotNumber)
}

func (f *fakeLotRepo) ListByInventory(_ context.Context, inventoryID id.ID) ([]entity.Lot, error) {
	var out []entity.Lot
	for _, l := range f.lots {
		if l.InventoryID == inventoryID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (f *fakeLotRepo) Create(_ context.Context, l *entity.Lot) error {
	f.put(l)
	return nil
}

func (f *fakeLotRepo) Update(_ context.Context, l *entity.Lot) error {
	if _, ok := f.lots[l.ID]; !ok {
		return apperror.NewNotFound("lot", l.ID)
	}
	f.put(l)
	return nil
}

// --- Fixture ---

type fixture struct {
	svc      *Service
	lotRepo  *fakeLotRepo
	invRepo  *fakeInventoryRepo
	journal  *fakeJournalRepo
	reasonID id.ID
	inv      *entity.InventoryRecord
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	invRepo := &fakeInventoryRepo{records: make(map[id.ID]*entity.InventoryRecord)}
	journalRepo := &fakeJournalRepo{}
	lotRepo := newFakeLotRepo()
	productID := id.New()
	reasonID := id.New()

	inv := entity.NewInventoryRecord(productID, id.New())
	invRepo.put(inv)

	ledgerSvc := ledger.NewService(
		invRepo,
		journal.NewService(journalRepo),
		product.StaticResolver{productID: {IsLotted: true}},
		&fakeReasonRepo{reasonID: reasonID},
		&tx.MockManager{},
		NewReconciler(lotRepo),
		nil,
	)

	return &fixture{
		svc:      NewService(lotRepo, ledgerSvc, &tx.MockManager{}),
		lotRepo:  lotRepo,
		invRepo:  invRepo,
		journal:  journalRepo,
		reasonID: reasonID,
		inv:      inv,
	}
}

func (fx *fixture) add(t *testing.T, lotNumber string, qty int64, expiry *time.Time) *entity.Lot {
	t.Helper()
	l, err := fx.svc.AddQuantity(context.Background(), AddRequest{
		InventoryID: fx.inv.ID,
		LotNumber:   lotNumber,
		Quantity:    qty,
		ExpiryDate:  expiry,
		ReasonID:    fx.reasonID,
	})
	require.NoError(t, err)
	return l
}

func (fx *fixture) stock(t *testing.T) *entity.InventoryRecord {
	t.Helper()
	r, err := fx.invRepo.GetByID(context.Background(), fx.inv.ID)
	require.NoError(t, err)
	return r
}

// assertConservation checks stock == sum of lot quantities over
// non-terminal lots.
func (fx *fixture) assertConservation(t *testing.T) {
	t.Helper()
	lots, err := fx.lotRepo.ListByInventory(context.Background(), fx.inv.ID)
	require.NoError(t, err)

	var sum int64
	for _, l := range lots {
		sum += l.Quantity
	}
	assert.Equal(t, fx.stock(t).StockQuantity, sum, "stock must equal sum of lot quantities")
}

// --- Tests ---

func TestAddQuantity(t *testing.T) {
	fx := newFixture(t)

	l := fx.add(t, "LOT-A", 10, nil)
	assert.Equal(t, int64(10), l.Quantity)
	assert.Equal(t, entity.LotAvailable, l.Status)
	assert.Equal(t, int64(10), fx.stock(t).StockQuantity)
	require.Len(t, fx.journal.entries, 1)

	// Same lot number increments the existing lot.
	l = fx.add(t, "LOT-A", 5, nil)
	assert.Equal(t, int64(15), l.Quantity)
	assert.Equal(t, int64(15), fx.stock(t).StockQuantity)
	fx.assertConservation(t)
}

func TestAddQuantity_ExpiredOnArrival(t *testing.T) {
	fx := newFixture(t)
	past := time.Now().UTC().Add(-24 * time.Hour)

	l := fx.add(t, "LOT-OLD", 10, &past)
	assert.Equal(t, entity.LotExpired, l.Status)
	// Quantity still lands in stock; write-off is a separate decision.
	assert.Equal(t, int64(10), fx.stock(t).StockQuantity)
}

func TestConsume_ToZeroMarksConsumed(t *testing.T) {
	fx := newFixture(t)
	l := fx.add(t, "LOT-A", 10, nil)

	consumed, err := fx.svc.Consume(context.Background(), MoveRequest{
		LotID:    l.ID,
		Quantity: 10,
		ReasonID: fx.reasonID,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(0), consumed.Quantity)
	assert.Equal(t, entity.LotConsumed, consumed.Status)
	assert.Equal(t, int64(0), fx.stock(t).StockQuantity)
	fx.assertConservation(t)
}

func TestConsume_BeyondLotQuantityFails(t *testing.T) {
	fx := newFixture(t)
	l := fx.add(t, "LOT-A", 5, nil)
	fx.add(t, "LOT-B", 10, nil)

	_, err := fx.svc.Consume(context.Background(), MoveRequest{
		LotID:    l.ID,
		Quantity: 8,
		ReasonID: fx.reasonID,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientLot))

	// Nothing moved.
	assert.Equal(t, int64(15), fx.stock(t).StockQuantity)
	stored, _ := fx.lotRepo.GetByID(context.Background(), l.ID)
	assert.Equal(t, int64(5), stored.Quantity)
}

func TestReserveAndRelease_LotCounters(t *testing.T) {
	fx := newFixture(t)
	l := fx.add(t, "LOT-A", 10, nil)

	reserved, err := fx.svc.Reserve(context.Background(), MoveRequest{
		LotID:    l.ID,
		Quantity: 4,
		ReasonID: fx.reasonID,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(6), reserved.Quantity)
	assert.Equal(t, int64(4), reserved.ReservedQuantity)
	assert.Equal(t, entity.LotPartiallyReserved, reserved.Status)

	stock := fx.stock(t)
	assert.Equal(t, int64(6), stock.StockQuantity)
	assert.Equal(t, int64(4), stock.ReservedQuantity)
	fx.assertConservation(t)

	released, err := fx.svc.ReleaseReservation(context.Background(), MoveRequest{
		LotID:    l.ID,
		Quantity: 4,
		ReasonID: fx.reasonID,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10), released.Quantity)
	assert.Equal(t, int64(0), released.ReservedQuantity)
	assert.Equal(t, entity.LotAvailable, released.Status)

	stock = fx.stock(t)
	assert.Equal(t, int64(10), stock.StockQuantity)
	assert.Equal(t, int64(0), stock.ReservedQuantity)
}

func TestConsumeFromInventory_FEFO(t *testing.T) {
	fx := newFixture(t)
	soon := time.Now().UTC().Add(24 * time.Hour)
	later := time.Now().UTC().Add(240 * time.Hour)

	fx.add(t, "LOT-LATER", 10, &later)
	early := fx.add(t, "LOT-SOON", 8, &soon)

	_, err := fx.svc.ConsumeFromInventory(context.Background(), DrawRequest{
		InventoryID: fx.inv.ID,
		Quantity:    12,
		ReasonID:    fx.reasonID,
	})
	require.NoError(t, err)

	// The soon-expiring lot drains first.
	stored, _ := fx.lotRepo.GetByID(context.Background(), early.ID)
	assert.Equal(t, int64(0), stored.Quantity)
	assert.Equal(t, entity.LotConsumed, stored.Status)

	assert.Equal(t, int64(6), fx.stock(t).StockQuantity)
	fx.assertConservation(t)
}

func TestConsumeFromInventory_ShortfallFailsWholeOperation(t *testing.T) {
	fx := newFixture(t)
	fx.add(t, "LOT-A", 3, nil)
	fx.add(t, "LOT-B", 2, nil)

	// Ten more units on hand, but locked away from allocation.
	quarantined := fx.add(t, "LOT-Q", 10, nil)
	stored, _ := fx.lotRepo.GetByID(context.Background(), quarantined.ID)
	stored.Status = entity.LotQuarantine
	fx.lotRepo.put(stored)

	_, err := fx.svc.ConsumeFromInventory(context.Background(), DrawRequest{
		InventoryID: fx.inv.ID,
		Quantity:    10,
		ReasonID:    fx.reasonID,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientLot))

	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, int64(10), appErr.Details["requested"])
	assert.Equal(t, int64(5), appErr.Details["available"])

	// No partial fill.
	assert.Equal(t, int64(15), fx.stock(t).StockQuantity)
	fx.assertConservation(t)
}

func TestConsume_BlockedLotRejected(t *testing.T) {
	fx := newFixture(t)
	l := fx.add(t, "LOT-A", 10, nil)

	stored, _ := fx.lotRepo.GetByID(context.Background(), l.ID)
	stored.Status = entity.LotQuarantine
	fx.lotRepo.put(stored)

	_, err := fx.svc.Consume(context.Background(), MoveRequest{
		LotID:    l.ID,
		Quantity: 1,
		ReasonID: fx.reasonID,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidLotState))
}

func TestConsume_DormantExpiredLotRejected(t *testing.T) {
	fx := newFixture(t)
	future := time.Now().UTC().Add(time.Hour)
	l := fx.add(t, "LOT-A", 10, &future)

	// The expiry passes while the row still carries AVAILABLE.
	stored, _ := fx.lotRepo.GetByID(context.Background(), l.ID)
	past := time.Now().UTC().Add(-time.Hour)
	stored.ExpiryDate = &past
	fx.lotRepo.put(stored)

	_, err := fx.svc.Consume(context.Background(), MoveRequest{
		LotID:    l.ID,
		Quantity: 1,
		ReasonID: fx.reasonID,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidLotState))

	_, err = fx.svc.Reserve(context.Background(), MoveRequest{
		LotID:    l.ID,
		Quantity: 1,
		ReasonID: fx.reasonID,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidLotState))

	// Nothing moved.
	stock := fx.stock(t)
	assert.Equal(t, int64(10), stock.StockQuantity)
	assert.Equal(t, int64(0), stock.ReservedQuantity)
}

func TestMarkExpired_StatusOnly(t *testing.T) {
	fx := newFixture(t)
	l := fx.add(t, "LOT-A", 10, nil)
	journalBefore := len(fx.journal.entries)

	expired, err := fx.svc.MarkExpired(context.Background(), l.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.LotExpired, expired.Status)
	assert.Equal(t, int64(10), expired.Quantity)

	// Buckets and journal untouched.
	assert.Equal(t, int64(10), fx.stock(t).StockQuantity)
	assert.Len(t, fx.journal.entries, journalBefore)
}

func TestFindForConsumption_PlansWithoutMutating(t *testing.T) {
	fx := newFixture(t)
	soon := time.Now().UTC().Add(24 * time.Hour)
	fx.add(t, "LOT-SOON", 8, &soon)
	fx.add(t, "LOT-NOEXP", 10, nil)

	picks, err := fx.svc.FindForConsumption(context.Background(), fx.inv.ID, 12, allocation.FEFO)
	require.NoError(t, err)

	require.Len(t, picks, 2)
	assert.Equal(t, "LOT-SOON", picks[0].Lot.LotNumber)
	assert.Equal(t, int64(8), picks[0].Quantity)
	assert.Equal(t, int64(4), picks[1].Quantity)

	// Planning never mutates.
	assert.Equal(t, int64(18), fx.stock(t).StockQuantity)
	fx.assertConservation(t)
}

func TestPlanAllocation_SkipsIneligibleLots(t *testing.T) {
	now := time.Now().UTC()
	past := now.Add(-time.Hour)

	inv := entity.NewInventoryRecord(id.New(), id.New())
	usable := *entity.NewLot(inv, "USABLE")
	usable.Quantity = 10

	expired := *entity.NewLot(inv, "EXPIRED")
	expired.Quantity = 10
	expired.ExpiryDate = &past

	blocked := *entity.NewLot(inv, "BLOCKED")
	blocked.Quantity = 10
	blocked.Status = entity.LotDamaged

	picks, err := planAllocation([]entity.Lot{expired, blocked, usable}, 10, allocation.FEFO, now)
	require.NoError(t, err)
	require.Len(t, picks, 1)
	assert.Equal(t, "USABLE", picks[0].Lot.LotNumber)

	// The ineligible quantity does not count as available.
	_, err = planAllocation([]entity.Lot{expired, blocked, usable}, 11, allocation.FEFO, now)
	require.Error(t, err)
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, int64(10), appErr.Details["available"])
}
