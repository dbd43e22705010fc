package postgres

import (
	"fmt"
	"testing"

	"github.com/furnishop/furniture-backend/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestMigration_CreatesCredentialTable(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	db := NewFromGorm(gdb)
	t.Cleanup(func() { db.Close() })

	m := NewMigration(db.GetDB())
	require.NoError(t, m.RunAutoMigrations())
	require.NoError(t, m.CreateIndexes())
	require.NoError(t, db.Health())

	assert.True(t, gdb.Migrator().HasTable(&user.Credential{}))
	assert.True(t, gdb.Migrator().HasIndex(&user.Credential{}, "idx_credentials_email"))

	creds := user.NewCredentialStore(gdb)
	require.NoError(t, creds.Create(&user.Credential{UserID: "u1", Email: "A@B.test", PasswordHash: "x"}))
	found, err := creds.FindByEmail("a@b.test")
	require.NoError(t, err)
	assert.Equal(t, "u1", found.UserID)
}
