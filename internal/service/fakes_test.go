package service_test

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/linemk/ecommerce-api/internal/domain/models"
	"github.com/linemk/ecommerce-api/internal/events"
	"github.com/linemk/ecommerce-api/internal/storage"
)

type fakeUserRepo struct {
	users map[string]*models.User // ключ - email
}

var _ storage.UserStorage = (*fakeUserRepo)(nil)

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (f *fakeUserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := f.users[email]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	if _, ok := f.users[user.Email]; ok {
		return nil, storage.ErrUserExists
	}
	user.ID = int64(len(f.users) + 1)
	f.users[user.Email] = user
	return user, nil
}

type fakeProductRepo struct {
	products map[int64]*models.Product
	nextID   int64
	gets     int // число обращений к GetProductByID
	lockErr  error
}

var _ storage.ProductStorage = (*fakeProductRepo)(nil)

func newFakeProductRepo(products ...*models.Product) *fakeProductRepo {
	f := &fakeProductRepo{products: make(map[int64]*models.Product)}
	for _, p := range products {
		f.products[p.ID] = p
		if p.ID > f.nextID {
			f.nextID = p.ID
		}
	}
	return f
}

func (f *fakeProductRepo) GetProducts(ctx context.Context) ([]*models.Product, error) {
	out := make([]*models.Product, 0, len(f.products))
	for _, p := range f.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeProductRepo) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	f.gets++
	p, ok := f.products[id]
	if !ok {
		return nil, storage.ErrProductNotFound
	}
	return p, nil
}

func (f *fakeProductRepo) LockProductByIDTx(ctx context.Context, tx *sql.Tx, id int64) error {
	if f.lockErr != nil {
		return f.lockErr
	}
	if _, ok := f.products[id]; !ok {
		return storage.ErrProductNotFound
	}
	return nil
}

func (f *fakeProductRepo) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	f.nextID++
	product.ID = f.nextID
	f.products[product.ID] = product
	return product, nil
}

func (f *fakeProductRepo) UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	existing, ok := f.products[product.ID]
	if !ok {
		return nil, storage.ErrProductNotFound
	}
	if product.Image == "" {
		product.Image = existing.Image
	}
	f.products[product.ID] = product
	return product, nil
}

func (f *fakeProductRepo) DeleteProduct(ctx context.Context, id int64) error {
	if _, ok := f.products[id]; !ok {
		return storage.ErrProductNotFound
	}
	delete(f.products, id)
	return nil
}

// fakeOrders хранит заказы и их позиции в памяти
type fakeOrders struct {
	products     *fakeProductRepo
	transactions map[int64]*models.Transaction
	items        map[int64][]*models.TransactionItem
	nextID       int64
	createCalls  int
	itemCalls    int
	itemErr      error
	queryErr     error
}

var (
	_ storage.TransactionStorage     = (*fakeOrders)(nil)
	_ storage.TransactionItemStorage = (*fakeOrders)(nil)
)

func newFakeOrders(products *fakeProductRepo) *fakeOrders {
	return &fakeOrders{
		products:     products,
		transactions: make(map[int64]*models.Transaction),
		items:        make(map[int64][]*models.TransactionItem),
	}
}

func (f *fakeOrders) CreateTransaction(ctx context.Context, tx *sql.Tx, userID int64, totalAmount decimal.Decimal) (int64, error) {
	f.createCalls++
	f.nextID++
	f.transactions[f.nextID] = &models.Transaction{
		ID:          f.nextID,
		UserID:      userID,
		TotalAmount: totalAmount,
		Status:      models.StatusOnProgress,
	}
	return f.nextID, nil
}

func (f *fakeOrders) GetTransactionByID(ctx context.Context, id int64) (*models.Transaction, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	t, ok := f.transactions[id]
	if !ok {
		return nil, storage.ErrTransactionNotFound
	}
	return t, nil
}

func (f *fakeOrders) GetTransactionsByUserID(ctx context.Context, userID int64) ([]*models.Transaction, error) {
	var out []*models.Transaction
	for _, t := range f.sorted() {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeOrders) GetAllTransactions(ctx context.Context) ([]*models.Transaction, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.sorted(), nil
}

func (f *fakeOrders) sorted() []*models.Transaction {
	out := make([]*models.Transaction, 0, len(f.transactions))
	for _, t := range f.transactions {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeOrders) CancelTransaction(ctx context.Context, id int64) error {
	t, ok := f.transactions[id]
	if !ok {
		return storage.ErrTransactionNotFound
	}
	t.Status = models.StatusCancelled
	t.Cancelled = true
	return nil
}

func (f *fakeOrders) UpdateTransactionStatus(ctx context.Context, id int64, status models.Status) error {
	t, ok := f.transactions[id]
	if !ok {
		return storage.ErrTransactionNotFound
	}
	t.Status = status
	return nil
}

func (f *fakeOrders) DeleteTransaction(ctx context.Context, tx *sql.Tx, id int64) error {
	delete(f.transactions, id)
	return nil
}

func (f *fakeOrders) CreateTransactionItem(ctx context.Context, tx *sql.Tx, transactionID int64, item models.CartItem) error {
	f.itemCalls++
	if f.itemErr != nil {
		return f.itemErr
	}
	f.items[transactionID] = append(f.items[transactionID], &models.TransactionItem{
		TransactionID: transactionID,
		ProductID:     item.ProductID,
		Quantity:      item.Quantity,
		Price:         item.Price,
	})
	return nil
}

func (f *fakeOrders) GetItemDetailsByTransactionID(ctx context.Context, transactionID int64) ([]*models.TransactionItemDetail, error) {
	out := make([]*models.TransactionItemDetail, 0)
	for _, item := range f.items[transactionID] {
		p, ok := f.products.products[item.ProductID]
		if !ok {
			continue
		}
		out = append(out, &models.TransactionItemDetail{ProductName: p.Name, Quantity: item.Quantity, Price: item.Price})
	}
	return out, nil
}

func (f *fakeOrders) DeleteItemsByTransactionID(ctx context.Context, tx *sql.Tx, transactionID int64) error {
	delete(f.items, transactionID)
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

var _ events.Publisher = (*fakePublisher)(nil)

func (p *fakePublisher) Publish(ctx context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fakeCache struct {
	data map[int64]*models.Product
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[int64]*models.Product)}
}

func (c *fakeCache) Get(ctx context.Context, id int64) (*models.Product, bool) {
	p, ok := c.data[id]
	return p, ok
}

func (c *fakeCache) Set(ctx context.Context, id int64, p *models.Product) { c.data[id] = p }

func (c *fakeCache) Delete(ctx context.Context, id int64) { delete(c.data, id) }

// newMockDB нужен сервисам, которые сами открывают транзакцию БД
func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var errDB = errors.New("db error")
