package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tu-usuario/stockmaster-api/internal/domain"
	"github.com/tu-usuario/stockmaster-api/internal/domain/entity"
	"github.com/tu-usuario/stockmaster-api/internal/domain/repository"
)

var (
	_ repository.ProductRepository   = (*ProductRepo)(nil)
	_ repository.WarehouseRepository = (*WarehouseRepo)(nil)
	_ repository.OperationRepository = (*OperationRepo)(nil)
	_ repository.UserRepository      = (*UserRepo)(nil)
)

// ProductRepo repositorio de productos en memoria.
type ProductRepo struct {
	mu    sync.RWMutex
	items map[string]*entity.Product
}

// NewProductRepository construye el repositorio vacío.
func NewProductRepository() *ProductRepo {
	return &ProductRepo{items: make(map[string]*entity.Product)}
}

func (r *ProductRepo) Create(_ context.Context, product *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.items {
		if p.SKU == product.SKU {
			return domain.ErrDuplicate
		}
	}
	cp := *product
	r.items[product.ID] = &cp
	return nil
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *ProductRepo) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.items {
		if p.SKU == sku {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *ProductRepo) List(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]*entity.Product, 0, len(r.items))
	for _, p := range r.items {
		cp := *p
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return page(all, limit, offset), nil
}

// WarehouseRepo repositorio de bodegas en memoria.
type WarehouseRepo struct {
	mu    sync.RWMutex
	items map[string]*entity.Warehouse
}

// NewWarehouseRepository construye el repositorio vacío.
func NewWarehouseRepository() *WarehouseRepo {
	return &WarehouseRepo{items: make(map[string]*entity.Warehouse)}
}

func (r *WarehouseRepo) Create(_ context.Context, warehouse *entity.Warehouse) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.items {
		if w.Name == warehouse.Name {
			return domain.ErrDuplicate
		}
	}
	cp := *warehouse
	r.items[warehouse.ID] = &cp
	return nil
}

func (r *WarehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (r *WarehouseRepo) List(_ context.Context, limit, offset int) ([]*entity.Warehouse, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]*entity.Warehouse, 0, len(r.items))
	for _, w := range r.items {
		cp := *w
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return page(all, limit, offset), nil
}

// OperationRepo repositorio de operaciones en memoria.
type OperationRepo struct {
	mu    sync.RWMutex
	items map[string]*entity.Operation
}

// NewOperationRepository construye el repositorio vacío.
func NewOperationRepository() *OperationRepo {
	return &OperationRepo{items: make(map[string]*entity.Operation)}
}

func (r *OperationRepo) Save(_ context.Context, op *entity.Operation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *op
	r.items[op.ID] = &cp
	return nil
}

func (r *OperationRepo) GetByID(_ context.Context, id string) (*entity.Operation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	op, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	cp := *op
	return &cp, nil
}

func (r *OperationRepo) UpdateStatus(_ context.Context, id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	op, ok := r.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	op.Status = status
	op.UpdatedAt = time.Now()
	return nil
}

// UserRepo repositorio de usuarios en memoria.
type UserRepo struct {
	mu    sync.RWMutex
	items map[string]*entity.User
}

// NewUserRepository construye el repositorio vacío.
func NewUserRepository() *UserRepo {
	return &UserRepo{items: make(map[string]*entity.User)}
}

func (r *UserRepo) Create(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.items {
		if u.Email == user.Email {
			return domain.ErrEmailAlreadyExists
		}
	}
	cp := *user
	r.items[user.ID] = &cp
	return nil
}

func (r *UserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.items {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func page[T any](all []T, limit, offset int) []T {
	if offset >= len(all) {
		return nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all
}
