package main

import (
	"context"
	"testing"

	"go-grocery/apps/store/model"
	"go-grocery/apps/store/repository"
	"go-grocery/apps/store/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestSeedCatalogIsIdempotent(t *testing.T) {
	db := storetest.OpenDB(t)
	ctx := context.Background()

	n, err := seedCatalog(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	_, err = seedCatalog(ctx, db)
	require.NoError(t, err)

	var products, images, categories int64
	require.NoError(t, db.Model(&model.Product{}).Count(&products).Error)
	require.NoError(t, db.Model(&model.ProductImage{}).Count(&images).Error)
	require.NoError(t, db.Model(&model.Category{}).Count(&categories).Error)
	assert.EqualValues(t, 5, products)
	assert.EqualValues(t, 7, images)
	assert.EqualValues(t, 2, categories)
}

func TestSeedUser(t *testing.T) {
	db := storetest.OpenDB(t)
	users := repository.NewUserRepository(db)
	ctx := context.Background()

	u, err := seedUser(ctx, users, "demo", "secret")
	require.NoError(t, err)
	require.NotZero(t, u.ID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("secret")))

	again, err := seedUser(ctx, users, "demo", "other")
	require.NoError(t, err)
	assert.Equal(t, u.ID, again.ID)

	active, err := users.FindActive(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "demo", active.Username)
}
