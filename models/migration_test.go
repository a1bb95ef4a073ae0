package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// The schema has to migrate cleanly on sqlite, which rejects postgres
// column defaults in DDL. IDs come from the BeforeCreate hooks instead.
func TestAutoMigrateOnSqlite(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:models_migration?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&User{},
		&Student{},
		&Program{},
		&Registration{},
		&Payment{},
		&PaymentInstallment{},
		&PaymentHistory{},
		&DocumentCounter{},
	)
	require.NoError(t, err)

	student := Student{FullName: "Siti Rahma", Email: "siti@example.com"}
	require.NoError(t, db.Create(&student).Error)
	require.NotEqual(t, uuid.Nil, student.ID)

	var back Student
	require.NoError(t, db.First(&back, "id = ?", student.ID).Error)
	require.Equal(t, student.Email, back.Email)
}
