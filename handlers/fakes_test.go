package handlers_test

import (
	"context"
	"sort"
	"strings"
	"sync"

	"shopledger/models"
	"shopledger/repository"
)

// memStore is an in-memory stand-in for the SQL repositories.
type memStore struct {
	mu           sync.Mutex
	shops        map[string]*models.Shop
	users        map[string]*models.User
	products     map[string]*models.Product
	transactions map[string]*models.Transaction
}

func newMemStore() *memStore {
	return &memStore{
		shops:        map[string]*models.Shop{},
		users:        map[string]*models.User{},
		products:     map[string]*models.Product{},
		transactions: map[string]*models.Transaction{},
	}
}

type memShops struct{ *memStore }
type memUsers struct{ *memStore }
type memProducts struct{ *memStore }
type memTransactions struct{ *memStore }

func (s memShops) CreateWithOwner(_ context.Context, shop *models.Shop, owner *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == strings.ToLower(owner.Email) {
			return repository.ErrDuplicateEmail
		}
	}
	for _, sh := range s.shops {
		if sh.Slug == shop.Slug {
			return repository.ErrDuplicateSlug
		}
	}
	owner.ShopID = shop.ID
	owner.Email = strings.ToLower(owner.Email)
	cs, cu := *shop, *owner
	s.shops[shop.ID] = &cs
	s.users[owner.ID] = &cu
	return nil
}

func (s memShops) FindByID(_ context.Context, id string) (*models.Shop, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sh, ok := s.shops[id]; ok {
		cp := *sh
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (s memShops) FindBySlug(_ context.Context, slug string) (*models.Shop, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sh := range s.shops {
		if sh.Slug == strings.ToLower(slug) {
			cp := *sh
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s memShops) SlugExists(ctx context.Context, slug string) (bool, error) {
	_, err := s.FindBySlug(ctx, slug)
	return err == nil, nil
}

func (s memShops) Update(_ context.Context, shop *models.Shop) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.shops[shop.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *shop
	s.shops[shop.ID] = &cp
	return nil
}

func (s memUsers) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user.Email = strings.ToLower(user.Email)
	for _, u := range s.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s memUsers) FindByID(_ context.Context, shopID, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok && u.ShopID == shopID {
		cp := *u
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (s memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == strings.ToLower(strings.TrimSpace(email)) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s memUsers) ListByShop(_ context.Context, shopID string, _, _ int) ([]models.User, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.User, 0)
	for _, u := range s.users {
		if u.ShopID == shopID {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, len(out), nil
}

func (s memUsers) Update(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.users[user.ID]
	if !ok || existing.ShopID != user.ShopID {
		return repository.ErrNotFound
	}
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s memUsers) SetActive(_ context.Context, shopID, id string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok || u.ShopID != shopID {
		return repository.ErrNotFound
	}
	u.IsActive = active
	return nil
}

func (s memUsers) Delete(_ context.Context, shopID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok || u.ShopID != shopID {
		return repository.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func (s memProducts) Create(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.products[p.ID] = &cp
	return nil
}

func (s memProducts) FindByID(_ context.Context, shopID, id string) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.products[id]; ok && p.ShopID == shopID {
		cp := *p
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (s memProducts) List(_ context.Context, f models.ProductFilter) ([]models.Product, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Product, 0)
	for _, p := range s.products {
		if p.ShopID != f.ShopID {
			continue
		}
		if f.Category != "" && (p.Category == nil || *p.Category != f.Category) {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, len(out), nil
}

func (s memProducts) Categories(_ context.Context, shopID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := map[string]bool{}
	out := make([]string, 0)
	for _, p := range s.products {
		if p.ShopID == shopID && p.Category != nil && *p.Category != "" && !seen[*p.Category] {
			seen[*p.Category] = true
			out = append(out, *p.Category)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s memProducts) Update(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.products[p.ID]
	if !ok || existing.ShopID != p.ShopID {
		return repository.ErrNotFound
	}
	cp := *p
	s.products[p.ID] = &cp
	return nil
}

func (s memProducts) Delete(_ context.Context, shopID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok || p.ShopID != shopID {
		return repository.ErrNotFound
	}
	delete(s.products, id)
	return nil
}

func (s memProducts) AdjustStock(_ context.Context, shopID, id string, delta int) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok || p.ShopID != shopID {
		return nil, repository.ErrNotFound
	}
	if p.Stock+delta < 0 {
		return nil, repository.ErrInsufficientStock
	}
	p.Stock += delta
	cp := *p
	return &cp, nil
}

func (s memTransactions) Create(_ context.Context, t *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.Kind == models.KindSale && t.ProductID != nil && t.Quantity != nil {
		p, ok := s.products[*t.ProductID]
		if !ok || p.ShopID != t.ShopID {
			return repository.ErrNotFound
		}
		if p.Stock < *t.Quantity {
			return repository.ErrInsufficientStock
		}
		p.Stock -= *t.Quantity
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = repository.Now()
	}
	cp := *t
	s.transactions[t.ID] = &cp
	return nil
}

func (s memTransactions) FindByID(_ context.Context, shopID, id string) (*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.transactions[id]; ok && t.ShopID == shopID {
		cp := *t
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (s memTransactions) List(_ context.Context, f models.TransactionFilter) ([]models.Transaction, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Transaction, 0)
	for _, t := range s.transactions {
		if t.ShopID != f.ShopID || (f.Kind != "" && t.Kind != f.Kind) {
			continue
		}
		if !f.From.IsZero() && t.CreatedAt.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && !t.CreatedAt.Before(f.To) {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, len(out), nil
}

func (s memTransactions) Update(_ context.Context, t *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.transactions[t.ID]
	if !ok || existing.ShopID != t.ShopID {
		return repository.ErrNotFound
	}
	existing.Amount = t.Amount
	existing.Comment = t.Comment
	return nil
}

func (s memTransactions) Delete(_ context.Context, shopID, id string) (*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok || t.ShopID != shopID {
		return nil, repository.ErrNotFound
	}
	if t.Kind == models.KindSale && t.ProductID != nil && t.Quantity != nil {
		if p, ok := s.products[*t.ProductID]; ok {
			p.Stock += *t.Quantity
		}
	}
	delete(s.transactions, id)
	return t, nil
}
