package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"aerium/internal/domain"
)

// MemoryStore объединённое in-memory хранилище и простой генератор ID
type MemoryStore struct {
	mu          sync.RWMutex
	nextUserID  int64
	nextProdID  int64
	nextBoneID  int64
	nextColorID int64
	nextAromaID int64
	nextGroupID int64
	nextModID   int64
	nextCartID  int64
	nextOrderID int64

	usersByID    map[int64]domain.User
	productsByID map[int64]domain.Product
	bonesByID    map[int64]domain.Bone
	colorsByID   map[int64]domain.ProductColor
	aromasByID   map[int64]domain.Aroma
	groupsByID   map[int64]domain.ModifiedBoneGroup
	modBonesByID map[int64]domain.ModifiedBone
	cartByID     map[int64]domain.CartItem
	ordersByID   map[int64]domain.Order
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextUserID:  1,
		nextProdID:  1,
		nextBoneID:  1,
		nextColorID: 1,
		nextAromaID: 1,
		nextGroupID: 1,
		nextModID:   1,
		nextCartID:  1,
		nextOrderID: 1,

		usersByID:    make(map[int64]domain.User),
		productsByID: make(map[int64]domain.Product),
		bonesByID:    make(map[int64]domain.Bone),
		colorsByID:   make(map[int64]domain.ProductColor),
		aromasByID:   make(map[int64]domain.Aroma),
		groupsByID:   make(map[int64]domain.ModifiedBoneGroup),
		modBonesByID: make(map[int64]domain.ModifiedBone),
		cartByID:     make(map[int64]domain.CartItem),
		ordersByID:   make(map[int64]domain.Order),
	}
}

// transaction-aware locking helpers
type txKey struct{}

func isTx(ctx context.Context) bool {
	v := ctx.Value(txKey{})
	if v == nil {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

func (m *MemoryStore) rlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.RLock()
	}
}
func (m *MemoryStore) runlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.RUnlock()
	}
}
func (m *MemoryStore) wlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.Lock()
	}
}
func (m *MemoryStore) wunlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.Unlock()
	}
}

// Ensure interfaces
var _ ProductRepository = (*MemoryStore)(nil)

// ProductRepository implementation
func (m *MemoryStore) Create(ctx context.Context, p *domain.Product) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	p.ID = m.nextProdID
	m.nextProdID++
	cp := *p
	cp.Bones, cp.Colors = nil, nil
	m.productsByID[p.ID] = cp
	return nil
}

func (m *MemoryStore) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	p, ok := m.productsByID[id]
	if !ok || p.DeletedAt != nil {
		return nil, ErrNotFound
	}
	cp := p
	cp.Bones = m.bonesOf(id)
	cp.Colors = m.colorsOf(id)
	return &cp, nil
}

func (m *MemoryStore) List(ctx context.Context, f ProductFilter) ([]domain.Product, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	out := make([]domain.Product, 0)
	for _, p := range m.productsByID {
		if p.DeletedAt != nil {
			continue
		}
		if !containsIgnoreCase(p.Name, f.NameSubstring) {
			continue
		}
		if f.Type != nil && p.Type != *f.Type {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) AddBone(ctx context.Context, b *domain.Bone) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	if _, ok := m.productsByID[b.ProductID]; !ok {
		return ErrNotFound
	}
	b.ID = m.nextBoneID
	m.nextBoneID++
	m.bonesByID[b.ID] = *b
	return nil
}

func (m *MemoryStore) AddColor(ctx context.Context, c *domain.ProductColor) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	if _, ok := m.productsByID[c.ProductID]; !ok {
		return ErrNotFound
	}
	c.ID = m.nextColorID
	m.nextColorID++
	m.colorsByID[c.ID] = *c
	return nil
}

func (m *MemoryStore) GetBone(ctx context.Context, id int64) (*domain.Bone, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	b, ok := m.bonesByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := b
	return &cp, nil
}

func (m *MemoryStore) ListBones(ctx context.Context, productID int64) ([]domain.Bone, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	if p, ok := m.productsByID[productID]; !ok || p.DeletedAt != nil {
		return nil, ErrNotFound
	}
	return m.bonesOf(productID), nil
}

// callers hold the lock
func (m *MemoryStore) bonesOf(productID int64) []domain.Bone {
	out := make([]domain.Bone, 0)
	for _, b := range m.bonesByID {
		if b.ProductID == productID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *MemoryStore) colorsOf(productID int64) []domain.ProductColor {
	out := make([]domain.ProductColor, 0)
	for _, c := range m.colorsByID {
		if c.ProductID == productID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// UserRepository implementation on wrapper type
type MemoryUsers struct{ store *MemoryStore }

func NewMemoryUsers(store *MemoryStore) *MemoryUsers { return &MemoryUsers{store: store} }

var _ UserRepository = (*MemoryUsers)(nil)

func (mu *MemoryUsers) Create(ctx context.Context, u *domain.User) error {
	mu.store.wlock(ctx)
	defer mu.store.wunlock(ctx)
	u.ID = mu.store.nextUserID
	mu.store.nextUserID++
	mu.store.usersByID[u.ID] = *u
	return nil
}

func (mu *MemoryUsers) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	mu.store.rlock(ctx)
	defer mu.store.runlock(ctx)
	u, ok := mu.store.usersByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := u
	return &cp, nil
}

func (mu *MemoryUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	mu.store.rlock(ctx)
	defer mu.store.runlock(ctx)
	for _, u := range mu.store.usersByID {
		if u.Email == email {
			cp := u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

// AromaRepository implementation
type MemoryAromas struct{ store *MemoryStore }

func NewMemoryAromas(store *MemoryStore) *MemoryAromas { return &MemoryAromas{store: store} }

var _ AromaRepository = (*MemoryAromas)(nil)

func (ma *MemoryAromas) Create(ctx context.Context, a *domain.Aroma) error {
	ma.store.wlock(ctx)
	defer ma.store.wunlock(ctx)
	a.ID = ma.store.nextAromaID
	ma.store.nextAromaID++
	ma.store.aromasByID[a.ID] = *a
	return nil
}

func (ma *MemoryAromas) GetByID(ctx context.Context, id int64) (*domain.Aroma, error) {
	ma.store.rlock(ctx)
	defer ma.store.runlock(ctx)
	a, ok := ma.store.aromasByID[id]
	if !ok || a.DeletedAt != nil {
		return nil, ErrNotFound
	}
	cp := a
	return &cp, nil
}

func (ma *MemoryAromas) List(ctx context.Context) ([]domain.Aroma, error) {
	ma.store.rlock(ctx)
	defer ma.store.runlock(ctx)
	out := make([]domain.Aroma, 0)
	for _, a := range ma.store.aromasByID {
		if a.DeletedAt == nil {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GroupRepository implementation
type MemoryGroups struct{ store *MemoryStore }

func NewMemoryGroups(store *MemoryStore) *MemoryGroups { return &MemoryGroups{store: store} }

var _ GroupRepository = (*MemoryGroups)(nil)

func (mg *MemoryGroups) Create(ctx context.Context, g *domain.ModifiedBoneGroup, overrides []domain.ModifiedBone) error {
	mg.store.wlock(ctx)
	defer mg.store.wunlock(ctx)
	g.ID = mg.store.nextGroupID
	mg.store.nextGroupID++
	g.CreatedAt = time.Now().UTC()
	cp := *g
	cp.Bones = nil
	mg.store.groupsByID[g.ID] = cp
	g.Bones = mg.insertOverrides(g.ID, overrides)
	return nil
}

// callers hold the lock
func (mg *MemoryGroups) insertOverrides(groupID int64, overrides []domain.ModifiedBone) []domain.ModifiedBone {
	out := make([]domain.ModifiedBone, 0, len(overrides))
	for _, o := range overrides {
		o.ID = mg.store.nextModID
		mg.store.nextModID++
		o.GroupID = groupID
		mg.store.modBonesByID[o.ID] = o
		out = append(out, o)
	}
	return out
}

func (mg *MemoryGroups) overridesOf(groupID int64) []domain.ModifiedBone {
	out := make([]domain.ModifiedBone, 0)
	for _, o := range mg.store.modBonesByID {
		if o.GroupID == groupID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (mg *MemoryGroups) GetByID(ctx context.Context, id int64) (*domain.ModifiedBoneGroup, error) {
	mg.store.rlock(ctx)
	defer mg.store.runlock(ctx)
	g, ok := mg.store.groupsByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := g
	cp.Bones = mg.overridesOf(id)
	return &cp, nil
}

func (mg *MemoryGroups) ListByUser(ctx context.Context, userID int64) ([]domain.ModifiedBoneGroup, error) {
	mg.store.rlock(ctx)
	defer mg.store.runlock(ctx)
	out := make([]domain.ModifiedBoneGroup, 0)
	for _, g := range mg.store.groupsByID {
		if g.UserID != userID {
			continue
		}
		cp := g
		cp.Bones = mg.overridesOf(g.ID)
		out = append(out, cp)
	}
	// newest first
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (mg *MemoryGroups) UpdateShareStatus(ctx context.Context, id int64, share bool) error {
	mg.store.wlock(ctx)
	defer mg.store.wunlock(ctx)
	g, ok := mg.store.groupsByID[id]
	if !ok {
		return ErrNotFound
	}
	g.ShareStatus = share
	mg.store.groupsByID[id] = g
	return nil
}

func (mg *MemoryGroups) ReplaceOverrides(ctx context.Context, groupID int64, overrides []domain.ModifiedBone) error {
	mg.store.wlock(ctx)
	defer mg.store.wunlock(ctx)
	if _, ok := mg.store.groupsByID[groupID]; !ok {
		return ErrNotFound
	}
	for id, o := range mg.store.modBonesByID {
		if o.GroupID == groupID {
			delete(mg.store.modBonesByID, id)
		}
	}
	mg.insertOverrides(groupID, overrides)
	return nil
}

// CartRepository implementation
type MemoryCart struct{ store *MemoryStore }

func NewMemoryCart(store *MemoryStore) *MemoryCart { return &MemoryCart{store: store} }

var _ CartRepository = (*MemoryCart)(nil)

func (mc *MemoryCart) Create(ctx context.Context, c *domain.CartItem) error {
	mc.store.wlock(ctx)
	defer mc.store.wunlock(ctx)
	c.ID = mc.store.nextCartID
	mc.store.nextCartID++
	mc.store.cartByID[c.ID] = *c
	return nil
}

func (mc *MemoryCart) GetByID(ctx context.Context, id int64) (*domain.CartItem, error) {
	mc.store.rlock(ctx)
	defer mc.store.runlock(ctx)
	c, ok := mc.store.cartByID[id]
	if !ok || c.DeletedAt != nil {
		return nil, ErrNotFound
	}
	cp := c
	return &cp, nil
}

func (mc *MemoryCart) Update(ctx context.Context, c *domain.CartItem) error {
	mc.store.wlock(ctx)
	defer mc.store.wunlock(ctx)
	if _, ok := mc.store.cartByID[c.ID]; !ok {
		return ErrNotFound
	}
	mc.store.cartByID[c.ID] = *c
	return nil
}

func (mc *MemoryCart) SoftDelete(ctx context.Context, id int64) error {
	mc.store.wlock(ctx)
	defer mc.store.wunlock(ctx)
	c, ok := mc.store.cartByID[id]
	if !ok || c.DeletedAt != nil {
		return ErrNotFound
	}
	now := time.Now().UTC()
	c.DeletedAt = &now
	mc.store.cartByID[id] = c
	return nil
}

func (mc *MemoryCart) ListActiveByUser(ctx context.Context, userID int64) ([]domain.CartItem, error) {
	mc.store.rlock(ctx)
	defer mc.store.runlock(ctx)
	out := make([]domain.CartItem, 0)
	for _, c := range mc.store.cartByID {
		if c.UserID == userID && c.Active() {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (mc *MemoryCart) AttachToOrder(ctx context.Context, lineIDs []int64, orderID int64) error {
	mc.store.wlock(ctx)
	defer mc.store.wunlock(ctx)
	for _, id := range lineIDs {
		c, ok := mc.store.cartByID[id]
		if !ok {
			return ErrNotFound
		}
		c.OrderID = &orderID
		c.IsUsed = false
		mc.store.cartByID[id] = c
	}
	return nil
}

// OrderRepository implementation
type MemoryOrders struct{ store *MemoryStore }

func NewMemoryOrders(store *MemoryStore) *MemoryOrders { return &MemoryOrders{store: store} }

var _ OrderRepository = (*MemoryOrders)(nil)

func (mo *MemoryOrders) Create(ctx context.Context, o *domain.Order) error {
	mo.store.wlock(ctx)
	defer mo.store.wunlock(ctx)
	o.ID = mo.store.nextOrderID
	mo.store.nextOrderID++
	o.CreatedAt = time.Now().UTC()
	o.UpdatedAt = o.CreatedAt
	mo.store.ordersByID[o.ID] = *o
	return nil
}

func (mo *MemoryOrders) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	mo.store.rlock(ctx)
	defer mo.store.runlock(ctx)
	o, ok := mo.store.ordersByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := o
	return &cp, nil
}

func (mo *MemoryOrders) Update(ctx context.Context, o *domain.Order) error {
	mo.store.wlock(ctx)
	defer mo.store.wunlock(ctx)
	if _, ok := mo.store.ordersByID[o.ID]; !ok {
		return ErrNotFound
	}
	o.UpdatedAt = time.Now().UTC()
	mo.store.ordersByID[o.ID] = *o
	return nil
}

func (mo *MemoryOrders) Delete(ctx context.Context, id int64) error {
	mo.store.wlock(ctx)
	defer mo.store.wunlock(ctx)
	if _, ok := mo.store.ordersByID[id]; !ok {
		return ErrNotFound
	}
	delete(mo.store.ordersByID, id)
	return nil
}

func (mo *MemoryOrders) List(ctx context.Context, f OrderFilter, p Page) ([]domain.Order, int64, error) {
	mo.store.rlock(ctx)
	defer mo.store.runlock(ctx)
	all := make([]domain.Order, 0)
	for _, o := range mo.store.ordersByID {
		if f.UserID != nil && o.UserID != *f.UserID {
			continue
		}
		if f.Status != nil && o.Status != *f.Status {
			continue
		}
		all = append(all, o)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	total := int64(len(all))
	if p.Offset >= len(all) {
		return []domain.Order{}, total, nil
	}
	end := len(all)
	if p.Limit > 0 && p.Offset+p.Limit < end {
		end = p.Offset + p.Limit
	}
	return all[p.Offset:end], total, nil
}

func (mo *MemoryOrders) ListItems(ctx context.Context, orderID int64) ([]domain.CartItem, error) {
	mo.store.rlock(ctx)
	defer mo.store.runlock(ctx)
	out := make([]domain.CartItem, 0)
	for _, c := range mo.store.cartByID {
		if c.OrderID != nil && *c.OrderID == orderID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Tx manager using write lock to emulate transaction boundary
type MemoryTx struct{ store *MemoryStore }

func NewMemoryTx(store *MemoryStore) *MemoryTx { return &MemoryTx{store: store} }

var _ TxManager = (*MemoryTx)(nil)

func (tx *MemoryTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	// Для in-memory используем блокировку записи и помечаем контекст, чтобы репозитории пропускали внутренние локи
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	ctx = context.WithValue(ctx, txKey{}, true)
	return fn(ctx)
}
