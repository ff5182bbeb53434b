// Package memstore implements the store interfaces over process memory.
// Every method takes the collection lock, so concurrent callers observe the
// same atomicity the mongo single-document updates give.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/02priyeshraj/QR_Menu_Backend/models"
	"github.com/02priyeshraj/QR_Menu_Backend/store"
)

func New() store.Stores {
	return store.Stores{
		Users:     NewUsers(),
		QRCodes:   NewQRCodes(),
		Orders:    NewOrders(),
		MenuItems: NewMenuItems(),
		Push:      NewPushSubscriptions(),
		Inventory: NewInventory(),
	}
}

func ensureID(id *primitive.ObjectID) {
	if id.IsZero() {
		*id = primitive.NewObjectID()
	}
}

// Users

type Users struct {
	mu   sync.RWMutex
	docs map[primitive.ObjectID]models.User
}

func NewUsers() *Users {
	return &Users{docs: make(map[primitive.ObjectID]models.User)}
}

func cloneUser(u models.User) models.User {
	u.Permissions = append([]string(nil), u.Permissions...)
	return u
}

func (s *Users) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.Email != "" {
		for _, u := range s.docs {
			if strings.EqualFold(u.Email, user.Email) {
				return store.ErrDuplicate
			}
		}
	}
	ensureID(&user.ID)
	s.docs[user.ID] = cloneUser(*user)
	return nil
}

func (s *Users) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.docs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	u = cloneUser(u)
	return &u, nil
}

func (s *Users) findOne(match func(models.User) bool) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.docs {
		if match(u) {
			u = cloneUser(u)
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Users) FindByEmail(_ context.Context, email string) (*models.User, error) {
	return s.findOne(func(u models.User) bool { return email != "" && strings.EqualFold(u.Email, email) })
}

func (s *Users) FindByPhone(_ context.Context, phone string) (*models.User, error) {
	return s.findOne(func(u models.User) bool { return phone != "" && u.Phone == phone })
}

func (s *Users) FindByRestaurantName(_ context.Context, name string) (*models.User, error) {
	return s.findOne(func(u models.User) bool {
		return name != "" && u.Role != models.RoleStaff && strings.EqualFold(u.RestaurantName, name)
	})
}

func (s *Users) Update(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[user.ID]; !ok {
		return store.ErrNotFound
	}
	s.docs[user.ID] = cloneUser(*user)
	return nil
}

func (s *Users) ListStaff(_ context.Context, ownerID primitive.ObjectID) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.User
	for _, u := range s.docs {
		if u.Role == models.RoleStaff && u.OwnerID != nil && *u.OwnerID == ownerID {
			out = append(out, cloneUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Users) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.docs, id)
	return nil
}

// QR codes

type QRCodes struct {
	mu   sync.Mutex
	docs map[primitive.ObjectID]models.QRCode
}

func NewQRCodes() *QRCodes {
	return &QRCodes{docs: make(map[primitive.ObjectID]models.QRCode)}
}

func (s *QRCodes) Create(_ context.Context, qr *models.QRCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.docs {
		if existing.Token == qr.Token {
			return store.ErrDuplicate
		}
		if qr.Type == models.QRTypeTable && qr.IsActive && existing.Type == models.QRTypeTable &&
			existing.IsActive && existing.UserID == qr.UserID && existing.TableNumber == qr.TableNumber {
			return store.ErrDuplicate
		}
	}
	ensureID(&qr.ID)
	s.docs[qr.ID] = *qr
	return nil
}

func (s *QRCodes) FindByID(_ context.Context, id primitive.ObjectID) (*models.QRCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	qr, ok := s.docs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &qr, nil
}

func (s *QRCodes) FindActiveByToken(_ context.Context, token string) (*models.QRCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, qr := range s.docs {
		if qr.Token == token && qr.IsActive {
			return &qr, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *QRCodes) ExistsActiveTable(_ context.Context, userID primitive.ObjectID, tableNumber string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, qr := range s.docs {
		if qr.UserID == userID && qr.Type == models.QRTypeTable && qr.TableNumber == tableNumber && qr.IsActive {
			return true, nil
		}
	}
	return false, nil
}

func (s *QRCodes) IncrementScan(_ context.Context, token string, at time.Time) (*models.QRCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, qr := range s.docs {
		if qr.Token == token && qr.IsActive {
			qr.Scans++
			scannedAt := at
			qr.LastScannedAt = &scannedAt
			qr.UpdatedAt = at
			s.docs[id] = qr
			return &qr, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *QRCodes) ListByUser(_ context.Context, userID primitive.ObjectID, activeOnly bool) ([]models.QRCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.QRCode
	for _, qr := range s.docs {
		if qr.UserID == userID && (!activeOnly || qr.IsActive) {
			out = append(out, qr)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *QRCodes) RecentlyScanned(_ context.Context, userID primitive.ObjectID, limit int64) ([]models.QRCode, error) {
	s.mu.Lock()
	var all []models.QRCode
	for _, qr := range s.docs {
		if qr.UserID == userID && qr.LastScannedAt != nil {
			all = append(all, qr)
		}
	}
	s.mu.Unlock()
	sort.Slice(all, func(i, j int) bool { return all[i].LastScannedAt.After(*all[j].LastScannedAt) })
	if limit > 0 && int64(len(all)) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (s *QRCodes) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.docs, id)
	return nil
}

// Orders

type Orders struct {
	mu   sync.RWMutex
	docs map[primitive.ObjectID]models.Order
}

func NewOrders() *Orders {
	return &Orders{docs: make(map[primitive.ObjectID]models.Order)}
}

func cloneOrder(o models.Order) models.Order {
	o.Items = append([]models.OrderItem(nil), o.Items...)
	if o.CompletedAt != nil {
		at := *o.CompletedAt
		o.CompletedAt = &at
	}
	return o
}

func (s *Orders) Create(_ context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ensureID(&order.ID)
	s.docs[order.ID] = cloneOrder(*order)
	return nil
}

func (s *Orders) FindByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.docs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	o = cloneOrder(o)
	return &o, nil
}

func (s *Orders) Update(_ context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[order.ID]; !ok {
		return store.ErrNotFound
	}
	s.docs[order.ID] = cloneOrder(*order)
	return nil
}

func (s *Orders) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.docs, id)
	return nil
}

func matchOrder(o models.Order, f store.OrderFilter) bool {
	switch {
	case !f.UserID.IsZero() && o.UserID != f.UserID:
		return false
	case f.Status != "" && o.Status != f.Status:
		return false
	case f.ExcludeStatus != "" && o.Status == f.ExcludeStatus:
		return false
	case f.CustomerPhone != "" && o.CustomerPhone != f.CustomerPhone:
		return false
	case !f.CreatedFrom.IsZero() && o.CreatedAt.Before(f.CreatedFrom):
		return false
	case !f.CreatedTo.IsZero() && !o.CreatedAt.Before(f.CreatedTo):
		return false
	}
	return true
}

func (s *Orders) matching(f store.OrderFilter) []models.Order {
	var out []models.Order
	for _, o := range s.docs {
		if matchOrder(o, f) {
			out = append(out, cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.Hex() > out[j].ID.Hex()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (s *Orders) Find(_ context.Context, f store.OrderFilter) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.matching(f)
	if f.Skip > 0 {
		if f.Skip >= int64(len(out)) {
			return nil, nil
		}
		out = out[f.Skip:]
	}
	if f.Limit > 0 && int64(len(out)) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *Orders) Count(_ context.Context, f store.OrderFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.matching(f))), nil
}

// Menu items

type MenuItems struct {
	mu   sync.RWMutex
	docs map[primitive.ObjectID]models.MenuItem
}

func NewMenuItems() *MenuItems {
	return &MenuItems{docs: make(map[primitive.ObjectID]models.MenuItem)}
}

func (s *MenuItems) Create(_ context.Context, item *models.MenuItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ensureID(&item.ID)
	s.docs[item.ID] = *item
	return nil
}

func (s *MenuItems) FindByID(_ context.Context, id primitive.ObjectID) (*models.MenuItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.docs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &item, nil
}

func (s *MenuItems) Update(_ context.Context, item *models.MenuItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[item.ID]; !ok {
		return store.ErrNotFound
	}
	s.docs[item.ID] = *item
	return nil
}

func (s *MenuItems) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.docs, id)
	return nil
}

func (s *MenuItems) DeleteByUser(_ context.Context, userID primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, item := range s.docs {
		if item.UserID == userID {
			delete(s.docs, id)
			n++
		}
	}
	return n, nil
}

func (s *MenuItems) List(_ context.Context, f store.MenuFilter) ([]models.MenuItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.MenuItem
	for _, item := range s.docs {
		if item.UserID != f.UserID || (f.ActiveOnly && !item.IsActive) || (f.AvailableOnly && !item.IsAvailable) {
			continue
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// Push subscriptions

type PushSubscriptions struct {
	mu   sync.Mutex
	docs map[string]models.PushSubscription
}

func NewPushSubscriptions() *PushSubscriptions {
	return &PushSubscriptions{docs: make(map[string]models.PushSubscription)}
}

func (s *PushSubscriptions) Upsert(_ context.Context, sub *models.PushSubscription) (*models.PushSubscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.docs[sub.Endpoint]; ok {
		sub.ID = existing.ID
		sub.CreatedAt = existing.CreatedAt
	}
	ensureID(&sub.ID)
	s.docs[sub.Endpoint] = *sub
	out := *sub
	return &out, nil
}

func (s *PushSubscriptions) filter(match func(models.PushSubscription) bool) []models.PushSubscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.PushSubscription
	for _, sub := range s.docs {
		if match(sub) {
			out = append(out, sub)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Endpoint < out[j].Endpoint })
	return out
}

func (s *PushSubscriptions) FindByUser(_ context.Context, userID primitive.ObjectID) ([]models.PushSubscription, error) {
	return s.filter(func(sub models.PushSubscription) bool {
		return sub.UserID != nil && *sub.UserID == userID
	}), nil
}

func (s *PushSubscriptions) FindByPhone(_ context.Context, phone string) ([]models.PushSubscription, error) {
	return s.filter(func(sub models.PushSubscription) bool { return phone != "" && sub.Phone == phone }), nil
}

func (s *PushSubscriptions) Latest(_ context.Context) (*models.PushSubscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest *models.PushSubscription
	for _, sub := range s.docs {
		if latest == nil || sub.CreatedAt.After(latest.CreatedAt) {
			sub := sub
			latest = &sub
		}
	}
	if latest == nil {
		return nil, store.ErrNotFound
	}
	return latest, nil
}

func (s *PushSubscriptions) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for endpoint, sub := range s.docs {
		if sub.ID == id {
			delete(s.docs, endpoint)
			return nil
		}
	}
	return store.ErrNotFound
}

// Inventory

type Inventory struct {
	mu   sync.RWMutex
	docs map[primitive.ObjectID]models.InventoryItem
}

func NewInventory() *Inventory {
	return &Inventory{docs: make(map[primitive.ObjectID]models.InventoryItem)}
}

func (s *Inventory) Create(_ context.Context, item *models.InventoryItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ensureID(&item.ID)
	s.docs[item.ID] = *item
	return nil
}

func (s *Inventory) FindByID(_ context.Context, id, ownerID primitive.ObjectID) (*models.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.docs[id]
	if !ok || item.OwnerID != ownerID {
		return nil, store.ErrNotFound
	}
	return &item, nil
}

func (s *Inventory) FindByName(_ context.Context, ownerID primitive.ObjectID, name string) (*models.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.docs {
		if item.OwnerID == ownerID && strings.EqualFold(item.Name, name) {
			return &item, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Inventory) Update(_ context.Context, item *models.InventoryItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.docs[item.ID]
	if !ok || existing.OwnerID != item.OwnerID {
		return store.ErrNotFound
	}
	s.docs[item.ID] = *item
	return nil
}

func (s *Inventory) Delete(_ context.Context, id, ownerID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.docs[id]
	if !ok || item.OwnerID != ownerID {
		return store.ErrNotFound
	}
	delete(s.docs, id)
	return nil
}

func (s *Inventory) List(_ context.Context, ownerID primitive.ObjectID) ([]models.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.InventoryItem
	for _, item := range s.docs {
		if item.OwnerID == ownerID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
