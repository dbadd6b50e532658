package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/keymint/storefront-system/internal/core/domain"
	"github.com/keymint/storefront-system/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubAccountRepo struct {
	accounts map[string]*domain.Account
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{accounts: make(map[string]*domain.Account)}
}

func cloneAccount(a *domain.Account) *domain.Account {
	if a == nil {
		return nil
	}
	clone := *a
	clone.Orders = append([]domain.Order(nil), a.Orders...)
	return &clone
}

func (r *stubAccountRepo) Create(_ context.Context, account *domain.Account) (*domain.Account, error) {
	if _, exists := r.accounts[account.Username]; exists {
		return nil, domain.ErrAccountExists
	}
	r.accounts[account.Username] = cloneAccount(account)
	return cloneAccount(account), nil
}

func (r *stubAccountRepo) FindByUsername(_ context.Context, username string) (*domain.Account, error) {
	a, ok := r.accounts[username]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return cloneAccount(a), nil
}

func (r *stubAccountRepo) List(_ context.Context) ([]*domain.Account, error) {
	var out []*domain.Account
	for _, a := range r.accounts {
		out = append(out, cloneAccount(a))
	}
	return out, nil
}

func (r *stubAccountRepo) Delete(_ context.Context, username string) error {
	if _, ok := r.accounts[username]; !ok {
		return domain.ErrAccountNotFound
	}
	delete(r.accounts, username)
	return nil
}

func (r *stubAccountRepo) SetBalance(_ context.Context, username string, balance float64) error {
	a, ok := r.accounts[username]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.Balance = balance
	return nil
}

func (r *stubAccountRepo) SetRole(_ context.Context, username string, role string) error {
	a, ok := r.accounts[username]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.Role = role
	return nil
}

// DebitBalance mirrors the guarded Mongo update: the stored balance must
// still cover the amount or nothing changes.
func (r *stubAccountRepo) DebitBalance(_ context.Context, username string, amount float64) error {
	a, ok := r.accounts[username]
	if !ok {
		return domain.ErrAccountNotFound
	}
	if a.Balance < amount {
		return domain.ErrInsufficientBalance
	}
	a.Balance -= amount
	return nil
}

func (r *stubAccountRepo) CreditBalance(_ context.Context, username string, amount float64) error {
	a, ok := r.accounts[username]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.Balance += amount
	return nil
}

func (r *stubAccountRepo) AppendOrders(_ context.Context, username string, orders []domain.Order) error {
	a, ok := r.accounts[username]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.Orders = append(a.Orders, orders...)
	return nil
}

type stubProductRepo struct {
	products map[string]*domain.Product
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[string]*domain.Product)}
}

func cloneProduct(p *domain.Product) *domain.Product {
	if p == nil {
		return nil
	}
	clone := *p
	clone.Offers = make(map[domain.DurationTier]domain.TierOffer, len(p.Offers))
	for tier, offer := range p.Offers {
		clone.Offers[tier] = offer
	}
	return &clone
}

func (r *stubProductRepo) Create(_ context.Context, p *domain.Product) error {
	if _, exists := r.products[p.Name]; exists {
		return domain.ErrProductExists
	}
	r.products[p.Name] = cloneProduct(p)
	return nil
}

func (r *stubProductRepo) FindByName(_ context.Context, name string) (*domain.Product, error) {
	p, ok := r.products[name]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return cloneProduct(p), nil
}

func (r *stubProductRepo) List(_ context.Context) ([]*domain.Product, error) {
	var out []*domain.Product
	for _, p := range r.products {
		out = append(out, cloneProduct(p))
	}
	return out, nil
}

func (r *stubProductRepo) Update(_ context.Context, p *domain.Product) error {
	if _, ok := r.products[p.Name]; !ok {
		return domain.ErrProductNotFound
	}
	r.products[p.Name] = cloneProduct(p)
	return nil
}

func (r *stubProductRepo) Delete(_ context.Context, name string) error {
	if _, ok := r.products[name]; !ok {
		return domain.ErrProductNotFound
	}
	delete(r.products, name)
	return nil
}

func (r *stubProductRepo) SetStock(_ context.Context, name string, stock int) error {
	p, ok := r.products[name]
	if !ok {
		return domain.ErrProductNotFound
	}
	p.Stock = stock
	return nil
}

func (r *stubProductRepo) AdjustStock(_ context.Context, name string, delta int) error {
	p, ok := r.products[name]
	if !ok {
		return domain.ErrProductNotFound
	}
	if p.Stock+delta < 0 {
		return domain.ErrInsufficientStock
	}
	p.Stock += delta
	return nil
}

// stubIssuer mints sequential keys and fails from failAt onward (0-based
// call index); failAt < 0 never fails.
type stubIssuer struct {
	calls  int
	failAt int
}

func newStubIssuer() *stubIssuer {
	return &stubIssuer{failAt: -1}
}

func (i *stubIssuer) Issue(_ context.Context, _, productName string, tier domain.DurationTier) (string, error) {
	idx := i.calls
	i.calls++
	if i.failAt >= 0 && idx >= i.failAt {
		return "", errors.New("issuer unavailable")
	}
	return fmt.Sprintf("KEY-%s-%s-%d", productName, tier, idx), nil
}

type stubDedup struct {
	seen map[string]bool
}

func newStubDedup() *stubDedup {
	return &stubDedup{seen: make(map[string]bool)}
}

func (d *stubDedup) IsDuplicate(_ context.Context, username, key string) (bool, error) {
	return d.seen[username+":"+key], nil
}

func (d *stubDedup) Mark(_ context.Context, username, key string) error {
	d.seen[username+":"+key] = true
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var discardLogger = zerolog.Nop()

func seedAccount(repo *stubAccountRepo, username string, balance float64) {
	repo.accounts[username] = &domain.Account{
		Username: username,
		Role:     domain.RoleReseller,
		Balance:  balance,
	}
}

func seedProduct(repo *stubProductRepo, name string, stock int, offers map[domain.DurationTier]domain.TierOffer) {
	repo.products[name] = &domain.Product{
		Name:   name,
		Stock:  stock,
		Offers: offers,
	}
}

func newPurchaseFixture() (*stubAccountRepo, *stubProductRepo, *stubIssuer, *stubDedup, *PurchaseService) {
	accounts := newStubAccountRepo()
	products := newStubProductRepo()
	iss := newStubIssuer()
	dedup := newStubDedup()
	svc := NewPurchaseService(accounts, products, iss, dedup, discardLogger)
	return accounts, products, iss, dedup, svc
}

// ---------------------------------------------------------------------------
// Purchase tests
// ---------------------------------------------------------------------------

func TestPurchase_SingleKey_Success(t *testing.T) {
	accounts, products, _, _, svc := newPurchaseFixture()
	seedAccount(accounts, "alice", 10.00)
	seedProduct(products, "vision", 5, map[domain.DurationTier]domain.TierOffer{
		domain.Tier1Day: {Price: 3.50},
	})

	result, err := svc.Purchase(context.Background(), ports.PurchaseInput{
		Username:    "alice",
		ProductName: "vision",
		Quantities:  map[domain.DurationTier]int{domain.Tier1Day: 1},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Keys) != 1 {
		t.Fatalf("expected 1 key, got %d", len(result.Keys))
	}
	if result.TotalCost != 3.50 {
		t.Errorf("expected total cost 3.50, got %v", result.TotalCost)
	}
	if result.NewBalance != 6.50 {
		t.Errorf("expected new balance 6.50, got %v", result.NewBalance)
	}

	stored := accounts.accounts["alice"]
	if stored.Balance != 6.50 {
		t.Errorf("expected stored balance 6.50, got %v", stored.Balance)
	}
	if len(stored.Orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(stored.Orders))
	}
	order := stored.Orders[0]
	if order.TotalCost != 3.50 {
		t.Errorf("expected order cost 3.50, got %v", order.TotalCost)
	}
	if order.Status != domain.StatusCompleted {
		t.Errorf("expected status %q, got %q", domain.StatusCompleted, order.Status)
	}
	if order.Key == "" {
		t.Error("order must carry the issued key")
	}
	if order.ID == "" {
		t.Error("order must carry a generated id")
	}

	if products.products["vision"].Stock != 4 {
		t.Errorf("expected stock 4, got %d", products.products["vision"].Stock)
	}
}

func TestPurchase_InsufficientBalance_NothingMutated(t *testing.T) {
	accounts, products, iss, _, svc := newPurchaseFixture()
	seedAccount(accounts, "bob", 2.00)
	seedProduct(products, "vision", 5, map[domain.DurationTier]domain.TierOffer{
		domain.Tier1Day: {Price: 3.50},
	})

	_, err := svc.Purchase(context.Background(), ports.PurchaseInput{
		Username:    "bob",
		ProductName: "vision",
		Quantities:  map[domain.DurationTier]int{domain.Tier1Day: 1},
	})
	if !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	if accounts.accounts["bob"].Balance != 2.00 {
		t.Errorf("balance must be unchanged, got %v", accounts.accounts["bob"].Balance)
	}
	if len(accounts.accounts["bob"].Orders) != 0 {
		t.Error("no order must be appended")
	}
	if iss.calls != 0 {
		t.Error("issuer must not be called")
	}
	if products.products["vision"].Stock != 5 {
		t.Error("stock must be unchanged")
	}
}

func TestPurchase_NothingSelected(t *testing.T) {
	accounts, products, _, _, svc := newPurchaseFixture()
	seedAccount(accounts, "alice", 10.00)
	seedProduct(products, "vision", 5, map[domain.DurationTier]domain.TierOffer{
		domain.Tier1Day: {Price: 3.50},
	})

	_, err := svc.Purchase(context.Background(), ports.PurchaseInput{
		Username:    "alice",
		ProductName: "vision",
		Quantities:  map[domain.DurationTier]int{domain.Tier1Day: 0},
	})
	if !errors.Is(err, domain.ErrNothingSelected) {
		t.Fatalf("expected ErrNothingSelected, got %v", err)
	}
	if accounts.accounts["alice"].Balance != 10.00 {
		t.Error("balance must be unchanged")
	}
}

func TestPurchase_NegativeQuantity(t *testing.T) {
	accounts, products, _, _, svc := newPurchaseFixture()
	seedAccount(accounts, "alice", 10.00)
	seedProduct(products, "vision", 5, map[domain.DurationTier]domain.TierOffer{
		domain.Tier1Day: {Price: 3.50},
	})

	_, err := svc.Purchase(context.Background(), ports.PurchaseInput{
		Username:    "alice",
		ProductName: "vision",
		Quantities:  map[domain.DurationTier]int{domain.Tier1Day: -1},
	})
	if !errors.Is(err, domain.ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
}

func TestPurchase_TierNotOffered(t *testing.T) {
	accounts, products, _, _, svc := newPurchaseFixture()
	seedAccount(accounts, "alice", 50.00)
	seedProduct(products, "vision", 5, map[domain.DurationTier]domain.TierOffer{
		domain.Tier1Day: {Price: 3.50},
	})

	_, err := svc.Purchase(context.Background(), ports.PurchaseInput{
		Username:    "alice",
		ProductName: "vision",
		Quantities:  map[domain.DurationTier]int{domain.Tier30Day: 1},
	})
	if !errors.Is(err, domain.ErrTierNotOffered) {
		t.Fatalf("expected ErrTierNotOffered, got %v", err)
	}
	if accounts.accounts["alice"].Balance != 50.00 {
		t.Error("balance must be unchanged")
	}
}

func TestPurchase_ProductWithoutOffers(t *testing.T) {
	accounts, products, _, _, svc := newPurchaseFixture()
	seedAccount(accounts, "alice", 50.00)
	seedProduct(products, "bare", 5, nil)

	_, err := svc.Purchase(context.Background(), ports.PurchaseInput{
		Username:    "alice",
		ProductName: "bare",
		Quantities:  map[domain.DurationTier]int{domain.Tier1Day: 1},
	})
	if !errors.Is(err, domain.ErrTierNotOffered) {
		t.Fatalf("expected ErrTierNotOffered, got %v", err)
	}
}

func TestPurchase_InsufficientStock(t *testing.T) {
	accounts, products, _, _, svc := newPurchaseFixture()
	seedAccount(accounts, "alice", 100.00)
	seedProduct(products, "vision", 1, map[domain.DurationTier]domain.TierOffer{
		domain.Tier1Day: {Price: 3.50},
	})

	_, err := svc.Purchase(context.Background(), ports.PurchaseInput{
		Username:    "alice",
		ProductName: "vision",
		Quantities:  map[domain.DurationTier]int{domain.Tier1Day: 2},
	})
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if accounts.accounts["alice"].Balance != 100.00 {
		t.Error("balance must be unchanged")
	}
}

func TestPurchase_MultipleTiers_OneOrderPerKey(t *testing.T) {
	accounts, products, _, _, svc := newPurchaseFixture()
	seedAccount(accounts, "alice", 100.00)
	seedProduct(products, "vision", 10, map[domain.DurationTier]domain.TierOffer{
		domain.Tier1Day:  {Price: 3.50},
		domain.Tier30Day: {Price: 10.00},
	})

	result, err := svc.Purchase(context.Background(), ports.PurchaseInput{
		Username:    "alice",
		ProductName: "vision",
		Quantities: map[domain.DurationTier]int{
			domain.Tier1Day:  1,
			domain.Tier30Day: 2,
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.TotalCost != 23.50 {
		t.Errorf("expected total 23.50, got %v", result.TotalCost)
	}
	if len(result.Keys) != 3 {
		t.Fatalf("expected 3 keys, got %d", len(result.Keys))
	}
	if len(result.Orders) != 3 {
		t.Fatalf("expected 3 orders, got %d", len(result.Orders))
	}

	// Committed orders' cost never exceeds the reserved total.
	var committed float64
	for _, o := range result.Orders {
		if o.Quantity != 1 {
			t.Errorf("each order records one key, got quantity %d", o.Quantity)
		}
		committed += o.TotalCost
	}
	if committed != result.TotalCost {
		t.Errorf("committed %v must equal reserved %v", committed, result.TotalCost)
	}

	if products.products["vision"].Stock != 7 {
		t.Errorf("expected stock 7, got %d", products.products["vision"].Stock)
	}
}

func TestPurchase_IssuerFailure_RefundsFullAmount(t *testing.T) {
	accounts, products, iss, _, svc := newPurchaseFixture()
	seedAccount(accounts, "alice", 10.00)
	seedProduct(products, "vision", 5, map[domain.DurationTier]domain.TierOffer{
		domain.Tier1Day: {Price: 3.50},
	})
	iss.failAt = 0

	_, err := svc.Purchase(context.Background(), ports.PurchaseInput{
		Username:    "alice",
		ProductName: "vision",
		Quantities:  map[domain.DurationTier]int{domain.Tier1Day: 1},
	})
	if !errors.Is(err, domain.ErrIssuanceFailed) {
		t.Fatalf("expected ErrIssuanceFailed, got %v", err)
	}

	if accounts.accounts["alice"].Balance != 10.00 {
		t.Errorf("balance must be refunded to 10.00, got %v", accounts.accounts["alice"].Balance)
	}
	if len(accounts.accounts["alice"].Orders) != 0 {
		t.Error("no order must be appended")
	}
	if products.products["vision"].Stock != 5 {
		t.Error("stock must be unchanged")
	}
}

// The full-refund policy also applies when earlier keys in the same
// attempt were already issued: the whole reserved amount comes back and
// the issued keys are discarded, never recorded as orders.
func TestPurchase_PartialIssuance_StillRefundsFullAmount(t *testing.T) {
	accounts, products, iss, _, svc := newPurchaseFixture()
	seedAccount(accounts, "alice", 20.00)
	seedProduct(products, "vision", 5, map[domain.DurationTier]domain.TierOffer{
		domain.Tier1Day: {Price: 3.50},
	})
	iss.failAt = 1 // first key succeeds, second fails

	_, err := svc.Purchase(context.Background(), ports.PurchaseInput{
		Username:    "alice",
		ProductName: "vision",
		Quantities:  map[domain.DurationTier]int{domain.Tier1Day: 2},
	})
	if !errors.Is(err, domain.ErrIssuanceFailed) {
		t.Fatalf("expected ErrIssuanceFailed, got %v", err)
	}

	if accounts.accounts["alice"].Balance != 20.00 {
		t.Errorf("full amount must be refunded, got balance %v", accounts.accounts["alice"].Balance)
	}
	if len(accounts.accounts["alice"].Orders) != 0 {
		t.Error("keys issued before the failure must not appear as orders")
	}
}

func TestPurchase_DuplicateIdempotencyKey(t *testing.T) {
	accounts, products, _, _, svc := newPurchaseFixture()
	seedAccount(accounts, "alice", 100.00)
	seedProduct(products, "vision", 5, map[domain.DurationTier]domain.TierOffer{
		domain.Tier1Day: {Price: 3.50},
	})

	input := ports.PurchaseInput{
		Username:       "alice",
		ProductName:    "vision",
		Quantities:     map[domain.DurationTier]int{domain.Tier1Day: 1},
		IdempotencyKey: "req-1",
	}

	if _, err := svc.Purchase(context.Background(), input); err != nil {
		t.Fatalf("first purchase failed: %v", err)
	}

	_, err := svc.Purchase(context.Background(), input)
	if !errors.Is(err, domain.ErrDuplicatePurchase) {
		t.Fatalf("expected ErrDuplicatePurchase, got %v", err)
	}

	if accounts.accounts["alice"].Balance != 96.50 {
		t.Errorf("replay must not charge again, got balance %v", accounts.accounts["alice"].Balance)
	}
	if len(accounts.accounts["alice"].Orders) != 1 {
		t.Errorf("replay must not append orders, got %d", len(accounts.accounts["alice"].Orders))
	}
}

func TestPurchase_UnknownAccount(t *testing.T) {
	_, products, _, _, svc := newPurchaseFixture()
	seedProduct(products, "vision", 5, map[domain.DurationTier]domain.TierOffer{
		domain.Tier1Day: {Price: 3.50},
	})

	_, err := svc.Purchase(context.Background(), ports.PurchaseInput{
		Username:    "ghost",
		ProductName: "vision",
		Quantities:  map[domain.DurationTier]int{domain.Tier1Day: 1},
	})
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestPurchase_UnknownProduct(t *testing.T) {
	accounts, _, _, _, svc := newPurchaseFixture()
	seedAccount(accounts, "alice", 10.00)

	_, err := svc.Purchase(context.Background(), ports.PurchaseInput{
		Username:    "alice",
		ProductName: "missing",
		Quantities:  map[domain.DurationTier]int{domain.Tier1Day: 1},
	})
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}
