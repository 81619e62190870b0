package repository

import (
	"context"
	"fmt"
	"testing"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCategoryRow(t *testing.T, name string) *domain.Category {
	t.Helper()
	category := newTestCategory(name)
	require.NoError(t, NewCategoryRepository(testDB).Create(context.Background(), category))
	return category
}

func TestProductCreateAndFind(t *testing.T) {
	truncateAll(t)
	repo := NewProductRepository(testDB)
	ctx := context.Background()
	category := seedCategoryRow(t, "Electronics")

	product := newTestProduct("Webcam", category.ID)
	product.Price = decimal.RequireFromString("45.50")
	require.NoError(t, repo.Create(ctx, product))

	found, err := repo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Webcam", found.Name)
	assert.True(t, found.Price.Equal(decimal.RequireFromString("45.50")))
	require.NotNil(t, found.Category)
	assert.Equal(t, "Electronics", found.Category.Name)
}

func TestProperty_DuplicateProductNameRejected(t *testing.T) {
	truncateAll(t)
	repo := NewProductRepository(testDB)
	ctx := context.Background()
	category := seedCategoryRow(t, "PropCat")

	properties := gopter.NewProperties(nil)

	properties.Property("a second product with the same name is rejected and not stored", prop.ForAll(
		func(name string) bool {
			_, _ = testDB.Exec("DELETE FROM products WHERE name = $1", name)

			first := newTestProduct(name, category.ID)
			if err := repo.Create(ctx, first); err != nil {
				t.Logf("failed to create first product: %v", err)
				return false
			}

			second := newTestProduct(name, category.ID)
			if err := repo.Create(ctx, second); err != ErrProductAlreadyExists {
				t.Logf("expected ErrProductAlreadyExists, got: %v", err)
				return false
			}

			var count int
			if err := testDB.QueryRow("SELECT COUNT(*) FROM products WHERE name = $1", name).Scan(&count); err != nil {
				return false
			}

			_, _ = testDB.Exec("DELETE FROM products WHERE name = $1", name)
			return count == 1
		},
		gen.RegexMatch(`[A-Z][a-z]{4,12} [A-Z][a-z]{4,12}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProductListPagination(t *testing.T) {
	truncateAll(t)
	repo := NewProductRepository(testDB)
	ctx := context.Background()
	category := seedCategoryRow(t, "Paged")

	for i := 0; i < 25; i++ {
		require.NoError(t, repo.Create(ctx, newTestProduct(fmt.Sprintf("Item %02d", i), category.ID)))
	}

	page1, total, err := repo.List(ctx, ProductFilter{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 25, total)
	assert.Len(t, page1, 10)

	page3, total, err := repo.List(ctx, ProductFilter{Page: 3, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 25, total)
	assert.Len(t, page3, 5)

	// A page past the end is empty, not an error, and total is unchanged
	page4, total, err := repo.List(ctx, ProductFilter{Page: 4, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 25, total)
	assert.Empty(t, page4)

	// Out-of-range parameters fall back to defaults
	defaulted, _, err := repo.List(ctx, ProductFilter{Page: 0, PageSize: -5})
	require.NoError(t, err)
	assert.Len(t, defaulted, 10)
}

func TestProductListFilters(t *testing.T) {
	truncateAll(t)
	repo := NewProductRepository(testDB)
	ctx := context.Background()
	electronics := seedCategoryRow(t, "Gadgets")
	clothing := seedCategoryRow(t, "Apparel")

	camera := newTestProduct("Digital Camera", electronics.ID)
	require.NoError(t, repo.Create(ctx, camera))
	tripod := newTestProduct("Camera Tripod", electronics.ID)
	tripod.Description = "A sturdy aluminium stand"
	require.NoError(t, repo.Create(ctx, tripod))
	shirt := newTestProduct("Linen Shirt", clothing.ID)
	shirt.Description = "Summer shirt with camera print"
	require.NoError(t, repo.Create(ctx, shirt))

	// Category filter
	results, total, err := repo.List(ctx, ProductFilter{CategoryID: &electronics.ID, Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, results, 2)

	// Case-insensitive search over name and description
	results, total, err = repo.List(ctx, ProductFilter{Search: "CAMERA", Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, results, 3)

	// Combined filter narrows to the category
	results, total, err = repo.List(ctx, ProductFilter{CategoryID: &clothing.ID, Search: "camera", Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, results, 1)
	assert.Equal(t, "Linen Shirt", results[0].Name)
}

func TestProductUpdateAndDelete(t *testing.T) {
	truncateAll(t)
	repo := NewProductRepository(testDB)
	ctx := context.Background()
	category := seedCategoryRow(t, "Mutable")

	product := newTestProduct("Old Name", category.ID)
	require.NoError(t, repo.Create(ctx, product))

	product.Name = "New Name"
	product.Stock = 0
	require.NoError(t, repo.Update(ctx, product))

	updated, err := repo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)
	assert.Equal(t, 0, updated.Stock)

	require.NoError(t, repo.Delete(ctx, product.ID))
	_, err = repo.FindByID(ctx, product.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, uuid.New()), ErrProductNotFound)
}

func TestCategoryDeleteBlockedByProducts(t *testing.T) {
	truncateAll(t)
	categoryRepo := NewCategoryRepository(testDB)
	productRepo := NewProductRepository(testDB)
	ctx := context.Background()

	category := seedCategoryRow(t, "Referenced")
	require.NoError(t, productRepo.Create(ctx, newTestProduct("Anchor", category.ID)))

	// The FK RESTRICT keeps the row even if a caller skips the count check
	err := categoryRepo.Delete(ctx, category.ID)
	assert.Error(t, err)

	_, err = categoryRepo.FindByID(ctx, category.ID)
	assert.NoError(t, err)
}
