package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"reviewpromax/internal/cache"
	"reviewpromax/internal/client"
	"reviewpromax/internal/model"
	"reviewpromax/internal/repository"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(model.All()...))
	return db
}

// fakePaypal serves orders from an in-memory table and counts calls.
type fakePaypal struct {
	mu           sync.Mutex
	orders       map[string]*model.PaypalOrder
	captureTo    string
	createErr    error
	captureErr   error
	getErr       error
	verifyErr    error
	nextID       string
	creates      int
	captures     int
	descriptions []string
}

func newFakePaypal() *fakePaypal {
	return &fakePaypal{
		orders:    make(map[string]*model.PaypalOrder),
		captureTo: model.PaypalStatusCompleted,
		nextID:    "ORDER-1",
	}
}

func (f *fakePaypal) withRaw(o *model.PaypalOrder) *model.PaypalOrder {
	cp := *o
	cp.Raw, _ = json.Marshal(map[string]string{"id": o.ID, "status": o.Status})
	return &cp
}

func (f *fakePaypal) CreateOrder(_ context.Context, _ decimal.Decimal, description string) (*model.PaypalOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	f.descriptions = append(f.descriptions, description)
	if f.createErr != nil {
		return nil, f.createErr
	}
	o := &model.PaypalOrder{
		ID:     f.nextID,
		Status: model.PaypalStatusCreated,
		Links:  []model.PaypalLink{{Rel: "approve", Href: "https://paypal.test/approve/" + f.nextID}},
	}
	f.orders[o.ID] = o
	return f.withRaw(o), nil
}

func (f *fakePaypal) CaptureOrder(_ context.Context, orderID string) (*model.PaypalOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.captures++
	if f.captureErr != nil {
		return nil, f.captureErr
	}
	o, ok := f.orders[orderID]
	if !ok {
		return nil, &client.PaypalAPIError{Op: "capture order", StatusCode: http.StatusNotFound}
	}
	o.Status = f.captureTo
	o.Payer = model.Payer{PayerID: "PAYER-1"}
	return f.withRaw(o), nil
}

func (f *fakePaypal) GetOrder(_ context.Context, orderID string) (*model.PaypalOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	o, ok := f.orders[orderID]
	if !ok {
		return nil, &client.PaypalAPIError{Op: "get order", StatusCode: http.StatusNotFound}
	}
	return f.withRaw(o), nil
}

func (f *fakePaypal) VerifyWebhookSignature(context.Context, http.Header, []byte) error {
	return f.verifyErr
}

func (f *fakePaypal) status(orderID string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o, ok := f.orders[orderID]; ok {
		return o.Status
	}
	return ""
}

func (f *fakePaypal) setStatus(orderID, status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders[orderID] = &model.PaypalOrder{ID: orderID, Status: status}
}

type fakeBraintree struct {
	charge *client.BraintreeCharge
	err    error
}

func (f *fakeBraintree) Charge(context.Context, string, decimal.Decimal, string) (*client.BraintreeCharge, error) {
	return f.charge, f.err
}

type fakeChat struct {
	answer string
	err    error
	got    []client.ChatMessage
}

func (f *fakeChat) Complete(_ context.Context, messages []client.ChatMessage) (string, error) {
	f.got = messages
	return f.answer, f.err
}

type fakeAuthAdmin struct {
	deleted []string
	err     error
}

func (f *fakeAuthAdmin) DeleteUser(_ context.Context, userID string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, userID)
	return nil
}

type fixture struct {
	db       *gorm.DB
	paypal   *fakePaypal
	locker   cache.Locker
	payments repository.PaymentRepository
	plans    repository.PlanRepository
	svc      PaypalService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	pp := newFakePaypal()
	locker := cache.NewMemoryLocker()
	payments := repository.NewPaymentRepository(db)

	return &fixture{
		db:       db,
		paypal:   pp,
		locker:   locker,
		payments: payments,
		plans:    repository.NewPlanRepository(db),
		svc: NewPaypalService(
			pp,
			payments,
			repository.NewPlanCreditor(db, "app"),
			repository.NewWebhookEventRepository(db),
			locker,
			time.Minute,
			zap.NewNop(),
		),
	}
}

func (f *fixture) seedPending(t *testing.T, id, userID, orderID, planName string) *model.Payment {
	t.Helper()
	p := &model.Payment{
		ID:              id,
		UserID:          userID,
		PlanType:        model.PlanTypeVerified,
		PlanName:        planName,
		Amount:          decimal.NewFromInt(159),
		Provider:        model.ProviderPaypal,
		PaypalPaymentID: orderID,
		Status:          model.PaymentStatusPending,
	}
	require.NoError(t, f.payments.Create(context.Background(), p))
	return p
}

func (f *fixture) paymentStatus(t *testing.T, id string) model.PaymentStatus {
	t.Helper()
	var p model.Payment
	require.NoError(t, f.db.First(&p, "id = ?", id).Error)
	return p.Status
}

func (f *fixture) planCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&model.ReviewPlan{}).Count(&n).Error)
	return n
}

var errBoom = errors.New("boom")
