package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optilog/procurement-api/internal/dto"
	"github.com/optilog/procurement-api/internal/models"
	appErrors "github.com/optilog/procurement-api/pkg/errors"
)

type mockProductRepo struct {
	products map[string]*models.Product
}

func (m *mockProductRepo) Create(ctx context.Context, product *models.Product) error {
	if m.products == nil {
		m.products = make(map[string]*models.Product)
	}
	if product.ID == "" {
		product.ID = "prod-1"
	}
	stored := *product
	m.products[product.ID] = &stored
	return nil
}

func (m *mockProductRepo) GetByID(ctx context.Context, id string) (*models.Product, error) {
	product, ok := m.products[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *product
	return &copied, nil
}

func (m *mockProductRepo) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	var result []models.Product
	for _, p := range m.products {
		if filter.Type != "" && filter.Type != p.Type {
			continue
		}
		if filter.SupplierID != "" && filter.SupplierID != p.SupplierID {
			continue
		}
		result = append(result, *p)
	}
	return result, nil
}

func (m *mockProductRepo) Update(ctx context.Context, product *models.Product) error {
	stored := *product
	m.products[product.ID] = &stored
	return nil
}

type mockSupplierProfiles struct {
	byUser map[string]*models.Supplier
}

func (m *mockSupplierProfiles) FindByUserID(ctx context.Context, userID string) (*models.Supplier, error) {
	supplier, ok := m.byUser[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return supplier, nil
}

func newProductFixture() (*ProductService, *mockProductRepo) {
	repo := &mockProductRepo{}
	profiles := &mockSupplierProfiles{byUser: map[string]*models.Supplier{
		"user-1": {ID: "sup-1", ProductType: "HARDWARE"},
		"user-2": {ID: "sup-2", ProductType: "CHEMICALS"},
	}}
	return NewProductService(repo, profiles, nil, nil), repo
}

func TestProductCreateInheritsSupplierType(t *testing.T) {
	svc, _ := newProductFixture()

	product, err := svc.Create(context.Background(), "user-1", dto.CreateProductRequest{
		Name:  "Bolts",
		Price: "10.50",
	})
	require.NoError(t, err)
	assert.Equal(t, "sup-1", product.SupplierID)
	assert.Equal(t, "HARDWARE", product.Type)
	assert.Equal(t, "10.5", product.Price.String())
}

func TestProductCreateRequiresProfile(t *testing.T) {
	svc, _ := newProductFixture()

	_, err := svc.Create(context.Background(), "user-404", dto.CreateProductRequest{Name: "Bolts", Price: "1"})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}

func TestProductCreateRejectsBadPrice(t *testing.T) {
	svc, _ := newProductFixture()

	for _, raw := range []string{"free", "-5"} {
		_, err := svc.Create(context.Background(), "user-1", dto.CreateProductRequest{Name: "Bolts", Price: raw})
		var appErr *appErrors.Error
		require.ErrorAs(t, err, &appErr, raw)
		assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code, raw)
	}
}

func TestProductUpdateOwnership(t *testing.T) {
	svc, repo := newProductFixture()
	product, err := svc.Create(context.Background(), "user-1", dto.CreateProductRequest{Name: "Bolts", Price: "10"})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), "user-2", product.ID, dto.UpdateProductRequest{Name: "Stolen"})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
	assert.Equal(t, "Bolts", repo.products[product.ID].Name)

	updated, err := svc.Update(context.Background(), "user-1", product.ID, dto.UpdateProductRequest{Name: "Hex bolts", Price: "12.75"})
	require.NoError(t, err)
	assert.Equal(t, "Hex bolts", updated.Name)
	assert.Equal(t, "12.75", updated.Price.String())
}

func TestProductListOwnScopesToSupplier(t *testing.T) {
	svc, _ := newProductFixture()
	_, err := svc.Create(context.Background(), "user-1", dto.CreateProductRequest{Name: "Bolts", Price: "10"})
	require.NoError(t, err)

	owned, err := svc.ListOwn(context.Background(), "user-2", models.ProductFilter{})
	require.NoError(t, err)
	assert.Empty(t, owned)

	owned, err = svc.ListOwn(context.Background(), "user-1", models.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, owned, 1)
}
