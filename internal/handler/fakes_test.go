package handler

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/canteenrush/canteenrush/internal/model"
	"github.com/canteenrush/canteenrush/internal/predict"
	"github.com/canteenrush/canteenrush/internal/service"
)

type fakeOrderService struct {
	mu sync.Mutex

	placeInput service.PlaceOrderInput
	placed     *service.PlaceOrderResult
	orders     []*model.Order
	board      []*model.BoardEntry
	byToken    *model.Order
	gotToken   string
	advanceID  string
	advanceTo  model.Status
	noShow     *service.NoShowResult
	err        error
}

func (f *fakeOrderService) PlaceOrder(_ context.Context, _ *model.Session, input service.PlaceOrderInput) (*service.PlaceOrderResult, error) {
	f.placeInput = input
	return f.placed, f.err
}

func (f *fakeOrderService) StudentOrders(context.Context, *model.Session) ([]*model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.orders, f.err
}

func (f *fakeOrderService) setOrders(orders ...*model.Order) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders = orders
}

func (f *fakeOrderService) VendorBoard(context.Context, *model.Session) ([]*model.BoardEntry, error) {
	return f.board, f.err
}

func (f *fakeOrderService) GetByToken(_ context.Context, _ *model.Session, token string) (*model.Order, error) {
	f.gotToken = token
	return f.byToken, f.err
}

func (f *fakeOrderService) AdvanceStatus(_ context.Context, _ *model.Session, orderID string, to model.Status) (*model.Order, error) {
	f.advanceID = orderID
	f.advanceTo = to
	if f.err != nil {
		return nil, f.err
	}
	return &model.Order{ID: orderID, VendorID: 1, Status: to}, nil
}

func (f *fakeOrderService) MarkNoShow(_ context.Context, _ *model.Session, orderID string) (*service.NoShowResult, error) {
	f.advanceID = orderID
	return f.noShow, f.err
}

type fakeStats struct {
	stats *predict.VendorStats
	err   error
}

func (f *fakeStats) VendorStats(context.Context, int64) (*predict.VendorStats, error) {
	return f.stats, f.err
}

// memorySeen keeps notification state in a map.
type memorySeen struct {
	mu      sync.Mutex
	state   map[string]map[string]model.Status
	loadErr error
}

func newMemorySeen() *memorySeen {
	return &memorySeen{state: make(map[string]map[string]model.Status)}
}

func (m *memorySeen) LastSeenStatuses(_ context.Context, sessionID string) (map[string]model.Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return maps.Clone(m.state[sessionID]), nil
}

func (m *memorySeen) SaveLastSeen(_ context.Context, sessionID string, statuses map[string]model.Status, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state[sessionID] = maps.Clone(statuses)
	return nil
}

type fakeAccountService struct {
	login     *service.LoginResult
	profile   *service.Profile
	loggedOut bool
	gotRollNo string
	gotSecret string
	err       error
}

func (f *fakeAccountService) Register(_ context.Context, rollNo, name, pin string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &model.User{RollNo: rollNo, Name: name, Points: model.DefaultKarma}, nil
}

func (f *fakeAccountService) LoginStudent(_ context.Context, rollNo, pin string) (*service.LoginResult, error) {
	f.gotRollNo, f.gotSecret = rollNo, pin
	return f.login, f.err
}

func (f *fakeAccountService) LoginVendor(_ context.Context, username, password string) (*service.LoginResult, error) {
	f.gotRollNo, f.gotSecret = username, password
	return f.login, f.err
}

func (f *fakeAccountService) LoginAdmin(_ context.Context, username, password string) (*service.LoginResult, error) {
	f.gotRollNo, f.gotSecret = username, password
	return f.login, f.err
}

func (f *fakeAccountService) Logout(context.Context, *model.Session) error {
	f.loggedOut = true
	return f.err
}

func (f *fakeAccountService) Profile(context.Context, *model.Session) (*service.Profile, error) {
	return f.profile, f.err
}

type fakeMenuService struct {
	vendors      []*model.Vendor
	menu         *service.VendorMenu
	gotSlot      string
	items        []*model.MenuItem
	availItemID  int64
	availability *bool
	err          error
}

func (f *fakeMenuService) ListVendors(context.Context) ([]*model.Vendor, error) {
	return f.vendors, f.err
}

func (f *fakeMenuService) MenuWithPredictions(_ context.Context, _ int64, slot string) (*service.VendorMenu, error) {
	f.gotSlot = slot
	return f.menu, f.err
}

func (f *fakeMenuService) VendorStats(context.Context, int64) (*predict.VendorStats, error) {
	if f.err != nil {
		return nil, f.err
	}
	stats := predict.Stats(3)
	return &stats, nil
}

func (f *fakeMenuService) VendorMenu(context.Context, *model.Session) ([]*model.MenuItem, error) {
	return f.items, f.err
}

func (f *fakeMenuService) SetAvailability(_ context.Context, _ *model.Session, itemID int64, available bool) error {
	if f.err != nil {
		return f.err
	}
	f.availItemID = itemID
	f.availability = &available
	return nil
}

func (f *fakeMenuService) Slots() []string {
	return predict.Slots
}

type fakeAdminService struct {
	users    []*model.User
	orders   []*model.Order
	events   []*model.OrderEvent
	gotLimit int
	gotOrder string
	err      error
}

func (f *fakeAdminService) Users(context.Context, *model.Session) ([]*model.User, error) {
	return f.users, f.err
}

func (f *fakeAdminService) RecentOrders(_ context.Context, _ *model.Session, limit int) ([]*model.Order, error) {
	f.gotLimit = limit
	return f.orders, f.err
}

func (f *fakeAdminService) OrderEvents(_ context.Context, _ *model.Session, orderID string) ([]*model.OrderEvent, error) {
	f.gotOrder = orderID
	return f.events, f.err
}
