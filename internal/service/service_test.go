package service

import (
	"testing"
	"time"

	"github.com/canteenrush/canteenrush/internal/metrics"
	"github.com/canteenrush/canteenrush/internal/model"
	"github.com/canteenrush/canteenrush/internal/predict"
)

var testNow = time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC)

type testEnv struct {
	store    *fakeStore
	recorder *metrics.InMemoryRecorder
	orders   *OrderService
	accounts *AccountService
	menus    *MenuService
	admin    *AdminService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	clock := func() time.Time { return testNow }
	store := newFakeStore(clock)
	predictor := predict.New(store, predict.WithClock(clock), predict.WithLocation(time.UTC))
	recorder := metrics.NewInMemory()

	accounts := NewAccountService(store, store, time.Hour, recorder)
	accounts.now = clock

	return &testEnv{
		store:    store,
		recorder: recorder,
		orders:   NewOrderService(store, predictor, recorder),
		accounts: accounts,
		menus:    NewMenuService(store, predictor),
		admin:    NewAdminService(store),
	}
}

func studentSession(rollNo string) *model.Session {
	return &model.Session{ID: "s-" + rollNo, Role: model.RoleStudent, UserID: rollNo, Name: rollNo}
}

func vendorSession(vendorID int64) *model.Session {
	return &model.Session{ID: "v-session", Role: model.RoleVendor, VendorID: vendorID, Name: "stall"}
}

func adminSession() *model.Session {
	return &model.Session{ID: "a-session", Role: model.RoleAdmin, AdminID: 1, Name: "admin"}
}
