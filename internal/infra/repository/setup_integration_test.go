//go:build integration

package repository

import (
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"wheats/internal/domain/model"
	"wheats/internal/infra/db"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

// コンテナを起動してマイグレーション済みの*gorm.DBを返す
func setupPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:18-alpine",
		postgres.WithDatabase("wheats"),
		postgres.WithUsername("wheats"),
		postgres.WithPassword("wheats"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate postgres container: %v", err)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	m, err := migrate.New(migrationsPath(), connStr)
	require.NoError(t, err)
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		t.Fatalf("failed to run migrations: %v", err)
	}
	_, _ = m.Close()

	gormDB, err := db.Connect(connStr)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return gormDB
}

func migrationsPath() string {
	_, filename, _, _ := runtime.Caller(0)
	// internal/infra/repository -> ルート
	root := filepath.Join(filepath.Dir(filename), "..", "..", "..")
	return "file://" + filepath.Join(root, "migrations")
}

type seeded struct {
	alice  model.User
	bob    model.User
	storeX model.Store
	storeY model.Store
	bento  model.Menu
	gyoza  model.Menu
	pho    model.Menu
}

func seed(t *testing.T, gormDB *gorm.DB) seeded {
	t.Helper()
	var s seeded

	s.alice = model.User{Name: "Alice", Email: "alice@example.com", Role: model.RoleUser}
	s.bob = model.User{Name: "Bob", Email: "bob@example.com", Role: model.RoleUser}
	require.NoError(t, gormDB.Create(&s.alice).Error)
	require.NoError(t, gormDB.Create(&s.bob).Error)

	s.storeX = model.Store{Name: "Store X", DeliveryFee: 3000, IsOpen: true}
	s.storeY = model.Store{Name: "Store Y", DeliveryFee: 500, IsOpen: true}
	require.NoError(t, gormDB.Create(&s.storeX).Error)
	require.NoError(t, gormDB.Create(&s.storeY).Error)

	s.bento = model.Menu{StoreID: s.storeX.ID, Name: "Karaage Bento", Price: 1200, IsAvailable: true}
	s.gyoza = model.Menu{StoreID: s.storeX.ID, Name: "Gyoza", Price: 1500, IsAvailable: true}
	s.pho = model.Menu{StoreID: s.storeY.ID, Name: "Pho", Price: 1500, IsAvailable: true}
	require.NoError(t, gormDB.Create(&s.bento).Error)
	require.NoError(t, gormDB.Create(&s.gyoza).Error)
	require.NoError(t, gormDB.Create(&s.pho).Error)

	require.NoError(t, gormDB.Create(&model.Account{UserID: s.alice.ID, Balance: 12000}).Error)

	return s
}
