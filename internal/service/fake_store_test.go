package service

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/canteenrush/canteenrush/internal/model"
	"github.com/canteenrush/canteenrush/internal/repository"
)

// fakeStore is an in-memory stand-in for the repository and session cache.
type fakeStore struct {
	mu       sync.Mutex
	now      func() time.Time
	users    map[string]*model.User
	vendors  map[int64]*model.Vendor
	admins   map[string]*model.Admin
	items    map[int64]*model.MenuItem
	orders   []*model.Order
	events   []*model.OrderEvent
	sessions map[string]*model.Session
	nextID   int
	counts   int // CountActiveOrders calls
}

func newFakeStore(now func() time.Time) *fakeStore {
	return &fakeStore{
		now:      now,
		users:    make(map[string]*model.User),
		vendors:  make(map[int64]*model.Vendor),
		admins:   make(map[string]*model.Admin),
		items:    make(map[int64]*model.MenuItem),
		sessions: make(map[string]*model.Session),
	}
}

func (f *fakeStore) addUser(rollNo, name string, points int) *model.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := &model.User{RollNo: rollNo, Name: name, Points: points, CreatedAt: f.now()}
	f.users[rollNo] = u
	return u
}

func (f *fakeStore) addVendor(id int64, name string) *model.Vendor {
	f.mu.Lock()
	defer f.mu.Unlock()
	v := &model.Vendor{ID: id, Name: name, Username: fmt.Sprintf("vendor%d", id)}
	f.vendors[id] = v
	return v
}

func (f *fakeStore) addItem(id, vendorID int64, name string, prep int, available bool) *model.MenuItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	item := &model.MenuItem{ID: id, VendorID: vendorID, Name: name, Price: 50, PrepMinutes: prep, Available: available}
	f.items[id] = item
	return item
}

// addOrder inserts an order directly, bypassing the lifecycle.
func (f *fakeStore) addOrder(vendorID int64, userID string, status model.Status, pickup string, createdAt time.Time) *model.Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	o := &model.Order{
		ID:                  fmt.Sprintf("ord-%03d", f.nextID),
		Token:               fmt.Sprintf("#VR-%d", 100+f.nextID),
		UserID:              userID,
		VendorID:            vendorID,
		ItemName:            "Filler",
		Status:              status,
		PredictedPickupTime: pickup,
		CreatedAt:           createdAt,
		UpdatedAt:           createdAt,
	}
	f.orders = append(f.orders, o)
	return o
}

func (f *fakeStore) points(rollNo string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[rollNo].Points
}

func (f *fakeStore) eventsFor(orderID string) []*model.OrderEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.OrderEvent
	for _, e := range f.events {
		if e.OrderID == orderID {
			out = append(out, e)
		}
	}
	return out
}

func clone(o *model.Order) *model.Order {
	c := *o
	return &c
}

// --- OrderStore / AccountStore / MenuStore / AdminStore ---

func (f *fakeStore) CreateUser(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.RollNo]; ok {
		return repository.ErrUserExists
	}
	c := *user
	f.users[user.RollNo] = &c
	return nil
}

func (f *fakeStore) GetUser(_ context.Context, rollNo string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[rollNo]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	c := *u
	return &c, nil
}

func (f *fakeStore) GetUserPoints(_ context.Context, rollNo string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[rollNo]; ok {
		return u.Points, nil
	}
	return 0, nil
}

func (f *fakeStore) ListUsers(context.Context) ([]*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.User
	for _, u := range f.users {
		c := *u
		out = append(out, &c)
	}
	return out, nil
}

func (f *fakeStore) GetVendor(_ context.Context, id int64) (*model.Vendor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.vendors[id]
	if !ok {
		return nil, repository.ErrVendorNotFound
	}
	return v, nil
}

func (f *fakeStore) GetVendorByUsername(_ context.Context, username string) (*model.Vendor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.vendors {
		if v.Username == username {
			return v, nil
		}
	}
	return nil, repository.ErrVendorNotFound
}

func (f *fakeStore) GetAdminByUsername(_ context.Context, username string) (*model.Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.admins[username]
	if !ok {
		return nil, repository.ErrAdminNotFound
	}
	return a, nil
}

func (f *fakeStore) ListVendors(context.Context) ([]*model.Vendor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Vendor
	for _, v := range f.vendors {
		out = append(out, v)
	}
	slices.SortFunc(out, func(a, b *model.Vendor) int { return int(a.ID - b.ID) })
	return out, nil
}

func (f *fakeStore) GetMenuItem(_ context.Context, id int64) (*model.MenuItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[id]
	if !ok {
		return nil, repository.ErrMenuItemNotFound
	}
	c := *item
	return &c, nil
}

func (f *fakeStore) ListMenu(_ context.Context, vendorID int64, activeOnly bool) ([]*model.MenuItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.MenuItem
	for _, item := range f.items {
		if item.VendorID == vendorID && (item.Available || !activeOnly) {
			c := *item
			out = append(out, &c)
		}
	}
	slices.SortFunc(out, func(a, b *model.MenuItem) int { return int(a.ID - b.ID) })
	return out, nil
}

func (f *fakeStore) SetMenuItemAvailability(_ context.Context, vendorID, itemID int64, available bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[itemID]
	if !ok || item.VendorID != vendorID {
		return repository.ErrMenuItemNotFound
	}
	item.Available = available
	return nil
}

func (f *fakeStore) GetPrepTimeByItemName(_ context.Context, vendorID int64, itemName string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, item := range f.items {
		if item.VendorID == vendorID && item.Name == itemName {
			return item.PrepMinutes, nil
		}
	}
	return model.DefaultPrepMinutes, nil
}

func (f *fakeStore) CountActiveOrders(_ context.Context, vendorID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts++
	n := 0
	for _, o := range f.orders {
		if o.VendorID == vendorID && o.IsActive() {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) CreateOrder(_ context.Context, userID string, vendorID int64, itemName, pickup string) (*model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return nil, repository.ErrForeignKey
	}
	v, ok := f.vendors[vendorID]
	if !ok {
		return nil, repository.ErrForeignKey
	}
	f.nextID++
	now := f.now()
	o := &model.Order{
		ID:                  fmt.Sprintf("ord-%03d", f.nextID),
		Token:               fmt.Sprintf("#VR-%d", 100+f.nextID),
		UserID:              userID,
		StudentName:         u.Name,
		VendorID:            vendorID,
		VendorName:          v.Name,
		ItemName:            itemName,
		Status:              model.StatusReceived,
		PredictedPickupTime: pickup,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	f.orders = append(f.orders, o)
	f.events = append(f.events, &model.OrderEvent{OrderID: o.ID, ToStatus: model.StatusReceived, ActorType: model.ActorStudent, ActorID: userID})
	return clone(o), nil
}

func (f *fakeStore) find(id string) *model.Order {
	for _, o := range f.orders {
		if o.ID == id {
			return o
		}
	}
	return nil
}

func (f *fakeStore) GetOrder(_ context.Context, id string) (*model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o := f.find(id)
	if o == nil {
		return nil, repository.ErrOrderNotFound
	}
	return clone(o), nil
}

func (f *fakeStore) GetOrderByToken(_ context.Context, vendorID int64, token string) (*model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.orders) - 1; i >= 0; i-- {
		o := f.orders[i]
		if o.VendorID == vendorID && o.Token == token {
			return clone(o), nil
		}
	}
	return nil, repository.ErrOrderNotFound
}

func (f *fakeStore) ListActiveOrdersForVendor(_ context.Context, vendorID int64) ([]*model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Order
	for _, o := range f.orders {
		if o.VendorID == vendorID && o.IsActive() {
			out = append(out, clone(o))
		}
	}
	return out, nil
}

func (f *fakeStore) ListActiveOrdersForUser(_ context.Context, userID string) ([]*model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Order
	for i := len(f.orders) - 1; i >= 0; i-- {
		o := f.orders[i]
		if o.UserID == userID && o.IsActive() {
			out = append(out, clone(o))
		}
	}
	return out, nil
}

func (f *fakeStore) ListRecentOrders(_ context.Context, limit int) ([]*model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Order
	for i := len(f.orders) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, clone(f.orders[i]))
	}
	return out, nil
}

func (f *fakeStore) ListOrderEvents(_ context.Context, orderID string) ([]*model.OrderEvent, error) {
	return f.eventsFor(orderID), nil
}

func (f *fakeStore) TransitionOrderStatus(_ context.Context, orderID string, from, to model.Status, actor model.Actor) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o := f.find(orderID)
	if o == nil {
		return repository.ErrOrderNotFound
	}
	if o.Status != from {
		return repository.ErrStatusConflict
	}
	o.Status = to
	f.events = append(f.events, &model.OrderEvent{OrderID: orderID, FromStatus: from, ToStatus: to, ActorType: actor.Type, ActorID: actor.ID})
	return nil
}

func (f *fakeStore) ExpireOrderWithPenalty(_ context.Context, orderID string, penalty int, actor model.Actor) (string, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o := f.find(orderID)
	if o == nil {
		return "", 0, repository.ErrOrderNotFound
	}
	if o.Status.IsTerminal() {
		return "", 0, repository.ErrOrderTerminal
	}
	from := o.Status
	o.Status = model.StatusExpired
	u := f.users[o.UserID]
	u.Points = max(0, u.Points-penalty)
	f.events = append(f.events, &model.OrderEvent{OrderID: orderID, FromStatus: from, ToStatus: model.StatusExpired, ActorType: actor.Type, ActorID: actor.ID, KarmaDelta: -penalty})
	return u.RollNo, u.Points, nil
}

// --- SessionStore ---

func (f *fakeStore) SetSession(_ context.Context, tokenHash string, sess *model.Session, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := *sess
	f.sessions[tokenHash] = &c
	return nil
}

func (f *fakeStore) GetSession(_ context.Context, tokenHash string) (*model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sess, ok := f.sessions[tokenHash]
	if !ok {
		return nil, nil
	}
	c := *sess
	return &c, nil
}

func (f *fakeStore) DeleteSession(_ context.Context, tokenHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, tokenHash)
	return nil
}
