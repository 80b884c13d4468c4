package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atvirokodosprendimai/regintake/internal/adapters/sqlite/gormsqlite"
	"github.com/atvirokodosprendimai/regintake/internal/core/domain"
	"github.com/atvirokodosprendimai/regintake/migrations"
)

func setupTestDB(t *testing.T) *gormsqlite.DB {
	t.Helper()
	db, err := gormsqlite.Open(filepath.Join(t.TempDir(), "test.sqlite"))
	require.NoError(t, err, "open test database")
	t.Cleanup(func() { _ = db.Close() })

	sqlDB, err := db.WriteSQLDB()
	require.NoError(t, err)
	require.NoError(t, migrations.Up(context.Background(), sqlDB))
	return db
}

func testRecord(i int) domain.AuditRecord {
	return domain.AuditRecord{
		FirstName: fmt.Sprintf("First%d", i),
		LastName:  "Smith",
		Email:     fmt.Sprintf("user%d@example.com", i),
		Phone:     "5551234567",
		City:      "Springfield",
		Country:   "US",
		Timestamp: "2026-10-19 14:30:00",
	}
}

func TestAuditLogRepositoryAppendAndList(t *testing.T) {
	repo := NewAuditLogRepository(setupTestDB(t), 1_000_000)
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx, testRecord(1)))
	require.NoError(t, repo.Append(ctx, testRecord(2)))

	records, err := repo.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []domain.AuditRecord{testRecord(1), testRecord(2)}, records)
}

func TestAuditLogRepositoryResetsPastCap(t *testing.T) {
	line, err := testRecord(0).Line()
	require.NoError(t, err)
	repo := NewAuditLogRepository(setupTestDB(t), int64(len(line)*2))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Append(ctx, testRecord(i)))
	}
	records, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)

	require.NoError(t, repo.Append(ctx, testRecord(8)))
	records, err = repo.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []domain.AuditRecord{testRecord(8)}, records)
}

func TestAuditLogRepositoryConcurrentAppends(t *testing.T) {
	repo := NewAuditLogRepository(setupTestDB(t), 1_000_000)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, repo.Append(ctx, testRecord(i)))
		}(i)
	}
	wg.Wait()

	records, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 20)
}
