package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"wheats/internal/domain/model"
	repo "wheats/internal/repository"
)

// =====================
// in-memory TxRepos（部分一意制約とロールバックを再現する）
// =====================

var errUniqueViolation = errors.New("unique violation")

type memState struct {
	seq        int64
	users      map[int64]model.User
	stores     map[int64]model.Store
	menus      map[int64]model.Menu
	carts      map[int64]model.Cart
	lines      map[int64]model.CartLine
	orders     map[int64]model.Order
	orderLines map[int64]model.OrderLine
	balances   map[int64]int64
	journal    []model.AccountTransaction
	// 書き込み順の記録
	ops []string
}

func newMemState() *memState {
	return &memState{
		users:      map[int64]model.User{},
		stores:     map[int64]model.Store{},
		menus:      map[int64]model.Menu{},
		carts:      map[int64]model.Cart{},
		lines:      map[int64]model.CartLine{},
		orders:     map[int64]model.Order{},
		orderLines: map[int64]model.OrderLine{},
		balances:   map[int64]int64{},
	}
}

func (s *memState) clone() *memState {
	c := newMemState()
	c.seq = s.seq
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.stores {
		c.stores[k] = v
	}
	for k, v := range s.menus {
		c.menus[k] = v
	}
	for k, v := range s.carts {
		c.carts[k] = v
	}
	for k, v := range s.lines {
		c.lines[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.orderLines {
		c.orderLines[k] = v
	}
	for k, v := range s.balances {
		c.balances[k] = v
	}
	c.journal = append([]model.AccountTransaction(nil), s.journal...)
	c.ops = append([]string(nil), s.ops...)
	return c
}

func (s *memState) nextID() int64 {
	s.seq++
	return s.seq
}

// carts の部分一意インデックス
func (s *memState) checkCartUnique(c model.Cart) error {
	for _, o := range s.carts {
		if o.ID == c.ID || o.UserID != c.UserID {
			continue
		}
		if c.Status == model.CartStatusActive && o.Status == model.CartStatusActive {
			return fmt.Errorf("%w: uq_carts_active_user", errUniqueViolation)
		}
		if c.Status == model.CartStatusAbandoned && o.Status == model.CartStatusAbandoned && o.StoreID == c.StoreID {
			return fmt.Errorf("%w: uq_carts_abandoned_user_store", errUniqueViolation)
		}
	}
	return nil
}

func (s *memState) checkLineUnique(l model.CartLine) error {
	if l.Status != model.CartLineStatusActive {
		return nil
	}
	for _, o := range s.lines {
		if o.ID != l.ID && o.CartID == l.CartID && o.MenuID == l.MenuID && o.Status == model.CartLineStatusActive {
			return fmt.Errorf("%w: uq_cart_lines_active_menu", errUniqueViolation)
		}
	}
	return nil
}

// WithinTxはstateをコピーしてfnに渡し、成功したときだけ差し替える
type memTxManager struct {
	state *memState

	withinCalls   int
	readOnlyCalls int
	// ReadOnlyの先頭n回をこのエラーで失敗させる
	readFailures int
	readErr      error
}

func newMemTxManager(s *memState) *memTxManager {
	return &memTxManager{state: s}
}

func (m *memTxManager) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	m.withinCalls++
	work := m.state.clone()
	if err := fn(&memRepos{s: work}); err != nil {
		return err
	}
	*m.state = *work
	return nil
}

func (m *memTxManager) ReadOnly(ctx context.Context, fn func(r repo.TxRepos) error) error {
	m.readOnlyCalls++
	if m.readFailures > 0 {
		m.readFailures--
		return m.readErr
	}
	return fn(&memRepos{s: m.state.clone(), readOnly: true})
}

type memRepos struct {
	s        *memState
	readOnly bool
}

func (r *memRepos) Users() repo.UserRepository           { return memUsers{r} }
func (r *memRepos) Carts() repo.CartRepository           { return memCarts{r} }
func (r *memRepos) CartLines() repo.CartLineRepository   { return memLines{r} }
func (r *memRepos) Orders() repo.OrderRepository         { return memOrders{r} }
func (r *memRepos) OrderLines() repo.OrderLineRepository { return memOrderLines{r} }
func (r *memRepos) Catalog() repo.CatalogRepository      { return memCatalog{r} }
func (r *memRepos) Ledger() repo.LedgerRepository        { return memLedger{r} }

var errReadOnlyTx = errors.New("cannot write in a read-only transaction")

func (r *memRepos) write(op string) error {
	if r.readOnly {
		return errReadOnlyTx
	}
	r.s.ops = append(r.s.ops, op)
	return nil
}

// ---- users ----

type memUsers struct{ r *memRepos }

func (m memUsers) FindByID(ctx context.Context, userID int64) (model.User, error) {
	u, ok := m.r.s.users[userID]
	if !ok {
		return model.User{}, repo.ErrNotFound
	}
	return u, nil
}

func (m memUsers) LockByID(ctx context.Context, userID int64) error {
	if m.r.readOnly {
		return errReadOnlyTx
	}
	if _, ok := m.r.s.users[userID]; !ok {
		return repo.ErrNotFound
	}
	return nil
}

// ---- carts ----

type memCarts struct{ r *memRepos }

func (m memCarts) FindByID(ctx context.Context, cartID int64) (model.Cart, error) {
	c, ok := m.r.s.carts[cartID]
	if !ok {
		return model.Cart{}, repo.ErrNotFound
	}
	return c, nil
}

func (m memCarts) LockByID(ctx context.Context, cartID int64) (model.Cart, error) {
	if m.r.readOnly {
		return model.Cart{}, errReadOnlyTx
	}
	return m.FindByID(ctx, cartID)
}

func (m memCarts) FindActiveByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	for _, c := range m.r.s.carts {
		if c.UserID == userID && c.Status == model.CartStatusActive {
			return c, nil
		}
	}
	return model.Cart{}, repo.ErrNotFound
}

func (m memCarts) FindByUserStoreStatus(ctx context.Context, userID, storeID int64, status model.CartStatus) (model.Cart, error) {
	for _, c := range m.r.s.carts {
		if c.UserID == userID && c.StoreID == storeID && c.Status == status {
			return c, nil
		}
	}
	return model.Cart{}, repo.ErrNotFound
}

func (m memCarts) Create(ctx context.Context, cart model.Cart) (model.Cart, error) {
	if err := m.r.s.checkCartUnique(cart); err != nil {
		return model.Cart{}, err
	}
	cart.ID = m.r.s.nextID()
	if err := m.r.write(fmt.Sprintf("cart:%d:create:%s", cart.ID, cart.Status)); err != nil {
		return model.Cart{}, err
	}
	m.r.s.carts[cart.ID] = cart
	return cart, nil
}

func (m memCarts) UpdateStatus(ctx context.Context, cartID int64, status model.CartStatus) error {
	c, ok := m.r.s.carts[cartID]
	if !ok {
		return repo.ErrNotFound
	}
	c.Status = status
	if err := m.r.s.checkCartUnique(c); err != nil {
		return err
	}
	if err := m.r.write(fmt.Sprintf("cart:%d:%s", cartID, status)); err != nil {
		return err
	}
	m.r.s.carts[cartID] = c
	return nil
}

// ---- cart lines ----

type memLines struct{ r *memRepos }

func (m memLines) ListActiveByCartID(ctx context.Context, cartID int64) ([]model.CartLine, error) {
	out := []model.CartLine{}
	for _, l := range m.r.s.lines {
		if l.CartID == cartID && l.Status == model.CartLineStatusActive {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m memLines) LockByID(ctx context.Context, lineID int64) (model.CartLine, error) {
	if m.r.readOnly {
		return model.CartLine{}, errReadOnlyTx
	}
	l, ok := m.r.s.lines[lineID]
	if !ok {
		return model.CartLine{}, repo.ErrNotFound
	}
	return l, nil
}

func (m memLines) FindActiveByCartAndMenu(ctx context.Context, cartID, menuID int64) (model.CartLine, error) {
	for _, l := range m.r.s.lines {
		if l.CartID == cartID && l.MenuID == menuID && l.Status == model.CartLineStatusActive {
			return l, nil
		}
	}
	return model.CartLine{}, repo.ErrNotFound
}

func (m memLines) Create(ctx context.Context, line model.CartLine) (model.CartLine, error) {
	if err := m.r.s.checkLineUnique(line); err != nil {
		return model.CartLine{}, err
	}
	line.ID = m.r.s.nextID()
	if err := m.r.write(fmt.Sprintf("line:%d:create", line.ID)); err != nil {
		return model.CartLine{}, err
	}
	m.r.s.lines[line.ID] = line
	return line, nil
}

func (m memLines) UpdateQuantity(ctx context.Context, lineID int64, qty int64) error {
	l, ok := m.r.s.lines[lineID]
	if !ok {
		return repo.ErrNotFound
	}
	if qty <= 0 {
		return errors.New("invalid quantity")
	}
	if err := m.r.write(fmt.Sprintf("line:%d:qty=%d", lineID, qty)); err != nil {
		return err
	}
	l.Quantity = qty
	m.r.s.lines[lineID] = l
	return nil
}

func (m memLines) UpdateStatus(ctx context.Context, lineID int64, status model.CartLineStatus) error {
	l, ok := m.r.s.lines[lineID]
	if !ok {
		return repo.ErrNotFound
	}
	if err := m.r.write(fmt.Sprintf("line:%d:%s", lineID, status)); err != nil {
		return err
	}
	l.Status = status
	m.r.s.lines[lineID] = l
	return nil
}

func (m memLines) UpdateStatusByCartID(ctx context.Context, cartID int64, from, to model.CartLineStatus) error {
	if err := m.r.write(fmt.Sprintf("lines:cart=%d:%s->%s", cartID, from, to)); err != nil {
		return err
	}
	for id, l := range m.r.s.lines {
		if l.CartID == cartID && l.Status == from {
			l.Status = to
			m.r.s.lines[id] = l
		}
	}
	return nil
}

// ---- orders ----

type memOrders struct{ r *memRepos }

func (m memOrders) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	o, ok := m.r.s.orders[orderID]
	if !ok {
		return model.Order{}, repo.ErrNotFound
	}
	return o, nil
}

func (m memOrders) ListByUserID(ctx context.Context, userID int64, limit int) ([]model.Order, error) {
	out := []model.Order{}
	for _, o := range m.r.s.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m memOrders) Create(ctx context.Context, order model.Order) (model.Order, error) {
	for _, o := range m.r.s.orders {
		if o.CartID == order.CartID || o.OrderNumber == order.OrderNumber {
			return model.Order{}, fmt.Errorf("%w: orders", errUniqueViolation)
		}
	}
	order.ID = m.r.s.nextID()
	if err := m.r.write(fmt.Sprintf("order:%d:create", order.ID)); err != nil {
		return model.Order{}, err
	}
	m.r.s.orders[order.ID] = order
	return order, nil
}

func (m memOrders) ExistsByCartID(ctx context.Context, cartID int64) (bool, error) {
	for _, o := range m.r.s.orders {
		if o.CartID == cartID {
			return true, nil
		}
	}
	return false, nil
}

type memOrderLines struct{ r *memRepos }

func (m memOrderLines) CreateBulk(ctx context.Context, orderID int64, lines []model.OrderLine) error {
	if err := m.r.write(fmt.Sprintf("order_lines:%d:create", orderID)); err != nil {
		return err
	}
	for _, l := range lines {
		l.ID = m.r.s.nextID()
		l.OrderID = orderID
		m.r.s.orderLines[l.ID] = l
	}
	return nil
}

func (m memOrderLines) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderLine, error) {
	out := []model.OrderLine{}
	for _, l := range m.r.s.orderLines {
		if l.OrderID == orderID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ---- catalog / ledger ----

type memCatalog struct{ r *memRepos }

func (m memCatalog) ResolveMenu(ctx context.Context, menuID int64) (model.Menu, error) {
	mn, ok := m.r.s.menus[menuID]
	if !ok {
		return model.Menu{}, repo.ErrNotFound
	}
	return mn, nil
}

func (m memCatalog) ResolveStore(ctx context.Context, storeID int64) (model.Store, error) {
	s, ok := m.r.s.stores[storeID]
	if !ok {
		return model.Store{}, repo.ErrNotFound
	}
	return s, nil
}

type memLedger struct{ r *memRepos }

func (m memLedger) Debit(ctx context.Context, userID int64, amount int64, note string) (int64, error) {
	bal := m.r.s.balances[userID]
	if bal < amount {
		return bal, repo.ErrInsufficientBalance
	}
	if err := m.r.write(fmt.Sprintf("debit:%d:%d", userID, amount)); err != nil {
		return 0, err
	}
	m.r.s.balances[userID] = bal - amount
	m.r.s.journal = append(m.r.s.journal, model.AccountTransaction{
		UserID: userID,
		Amount: -amount,
		Type:   model.AccountTransactionOrder,
		Note:   note,
	})
	return bal - amount, nil
}

// =====================
// fixtures
// =====================

const (
	userA int64 = 1
	userB int64 = 2

	storeX int64 = 10
	storeY int64 = 20

	menuX1 int64 = 101 // storeX 1200円
	menuX2 int64 = 102 // storeX 1500円
	menuY1 int64 = 201 // storeY 1500円
)

// ID採番は1000から（fixtureのIDとぶつけない）
func seedState() *memState {
	s := newMemState()
	s.seq = 1000

	s.users[userA] = model.User{ID: userA, Name: "Alice", Email: "alice@example.com", Role: model.RoleUser}
	s.users[userB] = model.User{ID: userB, Name: "Bob", Email: "bob@example.com", Role: model.RoleUser}

	s.stores[storeX] = model.Store{ID: storeX, Name: "Store X", DeliveryFee: 3000, IsOpen: true}
	s.stores[storeY] = model.Store{ID: storeY, Name: "Store Y", DeliveryFee: 500, IsOpen: true}

	s.menus[menuX1] = model.Menu{ID: menuX1, StoreID: storeX, Name: "Karaage Bento", Price: 1200, IsAvailable: true}
	s.menus[menuX2] = model.Menu{ID: menuX2, StoreID: storeX, Name: "Gyoza", Price: 1500, IsAvailable: true}
	s.menus[menuY1] = model.Menu{ID: menuY1, StoreID: storeY, Name: "Pho", Price: 1500, IsAvailable: true}

	return s
}

func (s *memState) cartsOf(userID int64) []model.Cart {
	out := []model.Cart{}
	for _, c := range s.carts {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *memState) linesOf(cartID int64) []model.CartLine {
	out := []model.CartLine{}
	for _, l := range s.lines {
		if l.CartID == cartID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *memState) opIndex(op string) int {
	for i, o := range s.ops {
		if o == op {
			return i
		}
	}
	return -1
}
