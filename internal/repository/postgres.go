package repository

import (
	"context"
	_ "embed"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"aerium/internal/domain"
)

//go:embed schema.sql
var schemaDDL string

// PgStore хранилище на PostgreSQL (pgx). Реализует ProductRepository,
// остальные репозитории — обёртки поверх того же пула.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore подключается к базе и применяет схему
func NewPgStore(ctx context.Context, databaseURL string) (*PgStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "connect postgres")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "ping postgres")
	}
	if _, err := pool.Exec(ctx, schemaDDL); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "apply schema")
	}
	return &PgStore{pool: pool}, nil
}

func (s *PgStore) Close() { s.pool.Close() }

// transaction carried in context, see PgTx
type pgTxKey struct{}

type pgQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (s *PgStore) q(ctx context.Context) pgQuerier {
	if tx, ok := ctx.Value(pgTxKey{}).(pgx.Tx); ok {
		return tx
	}
	return s.pool
}

func pgErr(err error, msg string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return errors.Wrap(err, msg)
}

// Ensure interfaces
var _ ProductRepository = (*PgStore)(nil)

// ProductRepository implementation
func (s *PgStore) Create(ctx context.Context, p *domain.Product) error {
	err := s.q(ctx).QueryRow(ctx,
		`INSERT INTO products (name, price, type, status) VALUES ($1, $2, $3, $4) RETURNING id`,
		p.Name, p.Price, p.Type, p.Status).Scan(&p.ID)
	return pgErr(err, "insert product")
}

func (s *PgStore) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	err := s.q(ctx).QueryRow(ctx,
		`SELECT id, name, price, type, status, deleted_at FROM products WHERE id = $1 AND deleted_at IS NULL`,
		id).Scan(&p.ID, &p.Name, &p.Price, &p.Type, &p.Status, &p.DeletedAt)
	if err != nil {
		return nil, pgErr(err, "select product")
	}
	if p.Bones, err = s.ListBones(ctx, id); err != nil {
		return nil, err
	}
	if p.Colors, err = s.listColors(ctx, id); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PgStore) List(ctx context.Context, f ProductFilter) ([]domain.Product, error) {
	rows, err := s.q(ctx).Query(ctx,
		`SELECT id, name, price, type, status FROM products
		 WHERE deleted_at IS NULL
		   AND ($1 = '' OR name ILIKE '%' || $1 || '%')
		   AND ($2::text IS NULL OR type = $2)
		 ORDER BY id`,
		f.NameSubstring, f.Type)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	defer rows.Close()
	out := make([]domain.Product, 0)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Type, &p.Status); err != nil {
			return nil, errors.Wrap(err, "scan product")
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PgStore) AddBone(ctx context.Context, b *domain.Bone) error {
	err := s.q(ctx).QueryRow(ctx,
		`INSERT INTO bones (product_id, name, default_detail, default_style, is_configuration)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		b.ProductID, b.Name, b.DefaultDetail, b.DefaultStyle, b.IsConfiguration).Scan(&b.ID)
	return pgErr(err, "insert bone")
}

func (s *PgStore) AddColor(ctx context.Context, c *domain.ProductColor) error {
	err := s.q(ctx).QueryRow(ctx,
		`INSERT INTO product_colors (product_id, color_code, color_name) VALUES ($1, $2, $3) RETURNING id`,
		c.ProductID, c.ColorCode, c.ColorName).Scan(&c.ID)
	return pgErr(err, "insert color")
}

func (s *PgStore) GetBone(ctx context.Context, id int64) (*domain.Bone, error) {
	var b domain.Bone
	err := s.q(ctx).QueryRow(ctx,
		`SELECT id, product_id, name, default_detail, default_style, is_configuration FROM bones WHERE id = $1`,
		id).Scan(&b.ID, &b.ProductID, &b.Name, &b.DefaultDetail, &b.DefaultStyle, &b.IsConfiguration)
	if err != nil {
		return nil, pgErr(err, "select bone")
	}
	return &b, nil
}

func (s *PgStore) ListBones(ctx context.Context, productID int64) ([]domain.Bone, error) {
	rows, err := s.q(ctx).Query(ctx,
		`SELECT id, product_id, name, default_detail, default_style, is_configuration
		 FROM bones WHERE product_id = $1 ORDER BY id`, productID)
	if err != nil {
		return nil, errors.Wrap(err, "list bones")
	}
	defer rows.Close()
	out := make([]domain.Bone, 0)
	for rows.Next() {
		var b domain.Bone
		if err := rows.Scan(&b.ID, &b.ProductID, &b.Name, &b.DefaultDetail, &b.DefaultStyle, &b.IsConfiguration); err != nil {
			return nil, errors.Wrap(err, "scan bone")
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *PgStore) listColors(ctx context.Context, productID int64) ([]domain.ProductColor, error) {
	rows, err := s.q(ctx).Query(ctx,
		`SELECT id, product_id, color_code, color_name FROM product_colors WHERE product_id = $1 ORDER BY id`,
		productID)
	if err != nil {
		return nil, errors.Wrap(err, "list colors")
	}
	defer rows.Close()
	out := make([]domain.ProductColor, 0)
	for rows.Next() {
		var c domain.ProductColor
		if err := rows.Scan(&c.ID, &c.ProductID, &c.ColorCode, &c.ColorName); err != nil {
			return nil, errors.Wrap(err, "scan color")
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UserRepository implementation
type PgUsers struct{ store *PgStore }

func NewPgUsers(store *PgStore) *PgUsers { return &PgUsers{store: store} }

var _ UserRepository = (*PgUsers)(nil)

func (r *PgUsers) Create(ctx context.Context, u *domain.User) error {
	err := r.store.q(ctx).QueryRow(ctx,
		`INSERT INTO users (name, email, phone, password_hash, role) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		u.Name, u.Email, u.Phone, u.PasswordHash, u.Role).Scan(&u.ID)
	return pgErr(err, "insert user")
}

func (r *PgUsers) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	err := r.store.q(ctx).QueryRow(ctx,
		`SELECT id, name, email, phone, password_hash, role FROM users WHERE id = $1`,
		id).Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash, &u.Role)
	if err != nil {
		return nil, pgErr(err, "select user")
	}
	return &u, nil
}

func (r *PgUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.store.q(ctx).QueryRow(ctx,
		`SELECT id, name, email, phone, password_hash, role FROM users WHERE email = $1`,
		email).Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash, &u.Role)
	if err != nil {
		return nil, pgErr(err, "select user by email")
	}
	return &u, nil
}

// AromaRepository implementation
type PgAromas struct{ store *PgStore }

func NewPgAromas(store *PgStore) *PgAromas { return &PgAromas{store: store} }

var _ AromaRepository = (*PgAromas)(nil)

func (r *PgAromas) Create(ctx context.Context, a *domain.Aroma) error {
	err := r.store.q(ctx).QueryRow(ctx,
		`INSERT INTO aromas (name, price) VALUES ($1, $2) RETURNING id`,
		a.Name, a.Price).Scan(&a.ID)
	return pgErr(err, "insert aroma")
}

func (r *PgAromas) GetByID(ctx context.Context, id int64) (*domain.Aroma, error) {
	var a domain.Aroma
	err := r.store.q(ctx).QueryRow(ctx,
		`SELECT id, name, price, deleted_at FROM aromas WHERE id = $1 AND deleted_at IS NULL`,
		id).Scan(&a.ID, &a.Name, &a.Price, &a.DeletedAt)
	if err != nil {
		return nil, pgErr(err, "select aroma")
	}
	return &a, nil
}

func (r *PgAromas) List(ctx context.Context) ([]domain.Aroma, error) {
	rows, err := r.store.q(ctx).Query(ctx,
		`SELECT id, name, price FROM aromas WHERE deleted_at IS NULL ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "list aromas")
	}
	defer rows.Close()
	out := make([]domain.Aroma, 0)
	for rows.Next() {
		var a domain.Aroma
		if err := rows.Scan(&a.ID, &a.Name, &a.Price); err != nil {
			return nil, errors.Wrap(err, "scan aroma")
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// GroupRepository implementation
type PgGroups struct{ store *PgStore }

func NewPgGroups(store *PgStore) *PgGroups { return &PgGroups{store: store} }

var _ GroupRepository = (*PgGroups)(nil)

func (r *PgGroups) Create(ctx context.Context, g *domain.ModifiedBoneGroup, overrides []domain.ModifiedBone) error {
	err := r.store.q(ctx).QueryRow(ctx,
		`INSERT INTO modified_bone_groups (user_id, share_status) VALUES ($1, $2) RETURNING id, created_at`,
		g.UserID, g.ShareStatus).Scan(&g.ID, &g.CreatedAt)
	if err != nil {
		return pgErr(err, "insert group")
	}
	inserted, err := r.insertOverrides(ctx, g.ID, overrides)
	if err != nil {
		return err
	}
	g.Bones = inserted
	return nil
}

func (r *PgGroups) insertOverrides(ctx context.Context, groupID int64, overrides []domain.ModifiedBone) ([]domain.ModifiedBone, error) {
	out := make([]domain.ModifiedBone, 0, len(overrides))
	for _, o := range overrides {
		o.GroupID = groupID
		err := r.store.q(ctx).QueryRow(ctx,
			`INSERT INTO modified_bones (group_id, bone_id, mod_detail) VALUES ($1, $2, $3) RETURNING id`,
			o.GroupID, o.BoneID, o.ModDetail).Scan(&o.ID)
		if err != nil {
			return nil, pgErr(err, "insert override")
		}
		out = append(out, o)
	}
	return out, nil
}

func (r *PgGroups) overridesOf(ctx context.Context, groupID int64) ([]domain.ModifiedBone, error) {
	rows, err := r.store.q(ctx).Query(ctx,
		`SELECT id, group_id, bone_id, mod_detail FROM modified_bones WHERE group_id = $1 ORDER BY id`,
		groupID)
	if err != nil {
		return nil, errors.Wrap(err, "list overrides")
	}
	defer rows.Close()
	out := make([]domain.ModifiedBone, 0)
	for rows.Next() {
		var o domain.ModifiedBone
		if err := rows.Scan(&o.ID, &o.GroupID, &o.BoneID, &o.ModDetail); err != nil {
			return nil, errors.Wrap(err, "scan override")
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *PgGroups) GetByID(ctx context.Context, id int64) (*domain.ModifiedBoneGroup, error) {
	var g domain.ModifiedBoneGroup
	err := r.store.q(ctx).QueryRow(ctx,
		`SELECT id, user_id, share_status, created_at FROM modified_bone_groups WHERE id = $1`,
		id).Scan(&g.ID, &g.UserID, &g.ShareStatus, &g.CreatedAt)
	if err != nil {
		return nil, pgErr(err, "select group")
	}
	if g.Bones, err = r.overridesOf(ctx, id); err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *PgGroups) ListByUser(ctx context.Context, userID int64) ([]domain.ModifiedBoneGroup, error) {
	rows, err := r.store.q(ctx).Query(ctx,
		`SELECT id, user_id, share_status, created_at FROM modified_bone_groups
		 WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list groups")
	}
	defer rows.Close()
	out := make([]domain.ModifiedBoneGroup, 0)
	for rows.Next() {
		var g domain.ModifiedBoneGroup
		if err := rows.Scan(&g.ID, &g.UserID, &g.ShareStatus, &g.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan group")
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].Bones, err = r.overridesOf(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *PgGroups) UpdateShareStatus(ctx context.Context, id int64, share bool) error {
	tag, err := r.store.q(ctx).Exec(ctx,
		`UPDATE modified_bone_groups SET share_status = $2 WHERE id = $1`, id, share)
	if err != nil {
		return errors.Wrap(err, "update share status")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PgGroups) ReplaceOverrides(ctx context.Context, groupID int64, overrides []domain.ModifiedBone) error {
	var exists bool
	err := r.store.q(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM modified_bone_groups WHERE id = $1)`, groupID).Scan(&exists)
	if err != nil {
		return errors.Wrap(err, "check group")
	}
	if !exists {
		return ErrNotFound
	}
	if _, err := r.store.q(ctx).Exec(ctx,
		`DELETE FROM modified_bones WHERE group_id = $1`, groupID); err != nil {
		return errors.Wrap(err, "delete overrides")
	}
	_, err = r.insertOverrides(ctx, groupID, overrides)
	return err
}

// CartRepository implementation
type PgCart struct{ store *PgStore }

func NewPgCart(store *PgStore) *PgCart { return &PgCart{store: store} }

var _ CartRepository = (*PgCart)(nil)

const cartColumns = `id, user_id, product_id, aroma_id, product_color_id, modified_bone_group_id,
	quantity, price, order_id, is_used, deleted_at`

func scanCartItem(row pgx.Row, c *domain.CartItem) error {
	return row.Scan(&c.ID, &c.UserID, &c.ProductID, &c.AromaID, &c.ProductColorID,
		&c.ModifiedBoneGroupID, &c.Quantity, &c.Price, &c.OrderID, &c.IsUsed, &c.DeletedAt)
}

func (r *PgCart) Create(ctx context.Context, c *domain.CartItem) error {
	err := r.store.q(ctx).QueryRow(ctx,
		`INSERT INTO cart_items (user_id, product_id, aroma_id, product_color_id, modified_bone_group_id, quantity, price, order_id, is_used)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`,
		c.UserID, c.ProductID, c.AromaID, c.ProductColorID, c.ModifiedBoneGroupID,
		c.Quantity, c.Price, c.OrderID, c.IsUsed).Scan(&c.ID)
	return pgErr(err, "insert cart item")
}

func (r *PgCart) GetByID(ctx context.Context, id int64) (*domain.CartItem, error) {
	var c domain.CartItem
	err := scanCartItem(r.store.q(ctx).QueryRow(ctx,
		`SELECT `+cartColumns+` FROM cart_items WHERE id = $1 AND deleted_at IS NULL`, id), &c)
	if err != nil {
		return nil, pgErr(err, "select cart item")
	}
	return &c, nil
}

func (r *PgCart) Update(ctx context.Context, c *domain.CartItem) error {
	tag, err := r.store.q(ctx).Exec(ctx,
		`UPDATE cart_items SET aroma_id = $2, product_color_id = $3, modified_bone_group_id = $4,
		        quantity = $5, price = $6, order_id = $7, is_used = $8
		 WHERE id = $1`,
		c.ID, c.AromaID, c.ProductColorID, c.ModifiedBoneGroupID, c.Quantity, c.Price, c.OrderID, c.IsUsed)
	if err != nil {
		return errors.Wrap(err, "update cart item")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PgCart) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.store.q(ctx).Exec(ctx,
		`UPDATE cart_items SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return errors.Wrap(err, "soft delete cart item")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PgCart) ListActiveByUser(ctx context.Context, userID int64) ([]domain.CartItem, error) {
	rows, err := r.store.q(ctx).Query(ctx,
		`SELECT `+cartColumns+` FROM cart_items
		 WHERE user_id = $1 AND order_id IS NULL AND is_used AND deleted_at IS NULL
		 ORDER BY id`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list active cart items")
	}
	defer rows.Close()
	out := make([]domain.CartItem, 0)
	for rows.Next() {
		var c domain.CartItem
		if err := scanCartItem(rows, &c); err != nil {
			return nil, errors.Wrap(err, "scan cart item")
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PgCart) AttachToOrder(ctx context.Context, lineIDs []int64, orderID int64) error {
	tag, err := r.store.q(ctx).Exec(ctx,
		`UPDATE cart_items SET order_id = $2, is_used = FALSE WHERE id = ANY($1)`, lineIDs, orderID)
	if err != nil {
		return errors.Wrap(err, "attach cart items")
	}
	if tag.RowsAffected() != int64(len(lineIDs)) {
		return ErrNotFound
	}
	return nil
}

// OrderRepository implementation
type PgOrders struct{ store *PgStore }

func NewPgOrders(store *PgStore) *PgOrders { return &PgOrders{store: store} }

var _ OrderRepository = (*PgOrders)(nil)

func (r *PgOrders) Create(ctx context.Context, o *domain.Order) error {
	err := r.store.q(ctx).QueryRow(ctx,
		`INSERT INTO orders (user_id, status) VALUES ($1, $2) RETURNING id, created_at, updated_at`,
		o.UserID, o.Status).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	return pgErr(err, "insert order")
}

func (r *PgOrders) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	var o domain.Order
	err := r.store.q(ctx).QueryRow(ctx,
		`SELECT id, user_id, status, created_at, updated_at FROM orders WHERE id = $1`,
		id).Scan(&o.ID, &o.UserID, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, pgErr(err, "select order")
	}
	return &o, nil
}

func (r *PgOrders) Update(ctx context.Context, o *domain.Order) error {
	tag, err := r.store.q(ctx).Exec(ctx,
		`UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`, o.ID, o.Status)
	if err != nil {
		return errors.Wrap(err, "update order")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PgOrders) Delete(ctx context.Context, id int64) error {
	tag, err := r.store.q(ctx).Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "delete order")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PgOrders) List(ctx context.Context, f OrderFilter, p Page) ([]domain.Order, int64, error) {
	var total int64
	err := r.store.q(ctx).QueryRow(ctx,
		`SELECT count(*) FROM orders
		 WHERE ($1::bigint IS NULL OR user_id = $1) AND ($2::text IS NULL OR status = $2)`,
		f.UserID, f.Status).Scan(&total)
	if err != nil {
		return nil, 0, errors.Wrap(err, "count orders")
	}
	limit := p.Limit
	if limit <= 0 {
		limit = int(total)
	}
	rows, err := r.store.q(ctx).Query(ctx,
		`SELECT id, user_id, status, created_at, updated_at FROM orders
		 WHERE ($1::bigint IS NULL OR user_id = $1) AND ($2::text IS NULL OR status = $2)
		 ORDER BY created_at DESC, id DESC
		 OFFSET $3 LIMIT $4`,
		f.UserID, f.Status, p.Offset, limit)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list orders")
	}
	defer rows.Close()
	out := make([]domain.Order, 0)
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Status, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, 0, errors.Wrap(err, "scan order")
		}
		out = append(out, o)
	}
	return out, total, rows.Err()
}

func (r *PgOrders) ListItems(ctx context.Context, orderID int64) ([]domain.CartItem, error) {
	rows, err := r.store.q(ctx).Query(ctx,
		`SELECT `+cartColumns+` FROM cart_items WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, errors.Wrap(err, "list order items")
	}
	defer rows.Close()
	out := make([]domain.CartItem, 0)
	for rows.Next() {
		var c domain.CartItem
		if err := scanCartItem(rows, &c); err != nil {
			return nil, errors.Wrap(err, "scan order item")
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Tx manager on pgx transactions; serializable isolation so two concurrent
// order creations cannot consume the same cart lines twice.
type PgTx struct{ store *PgStore }

func NewPgTx(store *PgStore) *PgTx { return &PgTx{store: store} }

var _ TxManager = (*PgTx)(nil)

func (t *PgTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(pgTxKey{}).(pgx.Tx); ok {
		// already inside a transaction
		return fn(ctx)
	}
	tx, err := t.store.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()
	if err := fn(context.WithValue(ctx, pgTxKey{}, tx)); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(ctx), "commit tx")
}
