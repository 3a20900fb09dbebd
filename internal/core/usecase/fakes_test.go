package usecase

import (
	"context"
	"fmt"
	"product-filter-service/internal/core/domain"
	"sync"
	"time"
)

type staticPageSize int

func (s staticPageSize) DefaultPerPage() int { return int(s) }

type fakeCatalog struct {
	page  *domain.CatalogPage
	err   error
	specs []domain.CatalogQuerySpec
}

func (f *fakeCatalog) Query(_ context.Context, spec domain.CatalogQuerySpec) (*domain.CatalogPage, error) {
	f.specs = append(f.specs, spec)
	if f.err != nil {
		return nil, f.err
	}
	return f.page, nil
}

type fakeRenderer struct {
	failOn   domain.ProductID
	rendered []domain.ProductID
}

func (f *fakeRenderer) RenderCard(_ context.Context, id domain.ProductID) (string, error) {
	if f.failOn != 0 && id == f.failOn {
		return "", fmt.Errorf("template exploded for %d", id)
	}
	f.rendered = append(f.rendered, id)
	return fmt.Sprintf("<li data-id=\"%d\"></li>", id), nil
}

type fakeAggregate struct {
	mu     sync.Mutex
	bounds domain.PriceRange
	found  bool
	err    error
	calls  int
	delay  time.Duration
}

// PriceBounds gives up on a cancelled context the way a database driver does.
func (f *fakeAggregate) PriceBounds(ctx context.Context) (domain.PriceRange, bool, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
		}
	}
	if err := ctx.Err(); err != nil {
		return domain.PriceRange{}, false, err
	}
	return f.bounds, f.found, f.err
}

func (f *fakeAggregate) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeCache struct {
	mu      sync.Mutex
	value   *domain.PriceRange
	ttl     time.Duration
	getErr  error
	setErr  error
	deleted int
}

func (f *fakeCache) Get(_ context.Context) (domain.PriceRange, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return domain.PriceRange{}, false, f.getErr
	}
	if f.value == nil {
		return domain.PriceRange{}, false, nil
	}
	return *f.value, true, nil
}

func (f *fakeCache) Set(_ context.Context, value domain.PriceRange, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.value = &value
	f.ttl = ttl
	return nil
}

func (f *fakeCache) Delete(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.value = nil
	f.deleted++
	return nil
}

type rejectAllValidator struct{}

func (rejectAllValidator) ValidateFilterInput(domain.RawFilterInput) error {
	return &domain.ValidationError{Reason: "schema mismatch"}
}
