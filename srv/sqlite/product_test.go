package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"orderdesk/common"
	"orderdesk/domain"
)

func testProduct(id, code string) domain.Product {
	return domain.Product{
		Id:            id,
		Name:          "Product " + id,
		Code:          code,
		Irc:           "12345",
		NetWeight:     "2.5",
		GrossWeight:   "3",
		Description:   "a product",
		CurrencyPrice: "150.50",
		CurrencyType:  domain.CurrencyUSD,
		Manufacturer:  "Acme",
	}
}

func TestPersistAndGetProduct(t *testing.T) {
	storage := NewTestStorage(t, "product_test")
	ctx := context.Background()

	product := testProduct("prod_1", "PROD-001")

	err := storage.PersistProduct(ctx, product)
	assert.NoError(t, err)

	retrieved, err := storage.GetProduct(ctx, product.Id)
	assert.NoError(t, err)
	assert.Equal(t, product, retrieved)

	_, err = storage.GetProduct(ctx, "non-existent-id")
	assert.Equal(t, common.ErrNotFound, err)

	updated := product
	updated.CurrencyPrice = "199.99"
	updated.CurrencyType = domain.CurrencyEUR
	assert.NoError(t, storage.PersistProduct(ctx, updated))

	retrieved, err = storage.GetProduct(ctx, product.Id)
	assert.NoError(t, err)
	assert.Equal(t, updated, retrieved)
}

func TestGetAllProducts(t *testing.T) {
	storage := NewTestStorage(t, "product_test")
	ctx := context.Background()

	empty, err := storage.GetAllProducts(ctx)
	assert.NoError(t, err)
	assert.Equal(t, []domain.Product{}, empty)

	assert.NoError(t, storage.PersistProduct(ctx, testProduct("prod_1", "PROD-001")))
	assert.NoError(t, storage.PersistProduct(ctx, testProduct("prod_2", "PROD-002")))

	all, err := storage.GetAllProducts(ctx)
	assert.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, "prod_1", all[0].Id)
}

func TestDeleteProduct(t *testing.T) {
	storage := NewTestStorage(t, "product_test")
	ctx := context.Background()

	product := testProduct("prod_1", "PROD-001")
	assert.NoError(t, storage.PersistProduct(ctx, product))

	assert.NoError(t, storage.DeleteProduct(ctx, product.Id))

	_, err := storage.GetProduct(ctx, product.Id)
	assert.Equal(t, common.ErrNotFound, err)

	assert.Equal(t, common.ErrNotFound, storage.DeleteProduct(ctx, product.Id))
}

func TestReplaceAllProducts(t *testing.T) {
	storage := NewTestStorage(t, "product_test")
	ctx := context.Background()

	assert.NoError(t, storage.PersistProduct(ctx, testProduct("prod_old", "OLD-001")))

	replacement := []domain.Product{
		testProduct("prod_1", "PROD-001"),
		testProduct("prod_2", "PROD-002"),
	}
	assert.NoError(t, storage.ReplaceAllProducts(ctx, replacement))

	all, err := storage.GetAllProducts(ctx)
	assert.NoError(t, err)
	assert.Equal(t, replacement, all)
}
