package ledger

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/prasetyadi/edu_registration/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB gives every test its own in-memory sqlite database. The
// shared cache keeps all of gorm's pooled connections on the same
// database; the unique name isolates tests from each other.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.Student{},
		&models.Program{},
		&models.Registration{},
		&models.Payment{},
		&models.PaymentInstallment{},
		&models.PaymentHistory{},
		&models.DocumentCounter{},
	)
	require.NoError(t, err)
	return db
}

// seedRegistration creates a student, a program with the given fee and
// plan, and a registration tying them together.
func seedRegistration(t *testing.T, db *gorm.DB, total int64, plan int) models.Registration {
	t.Helper()
	student := models.Student{
		FullName: "Budi Santoso",
		Email:    fmt.Sprintf("budi+%s@example.com", uuid.New().String()[:8]),
	}
	require.NoError(t, db.Create(&student).Error)

	program := models.Program{
		Name:            fmt.Sprintf("Program %s", uuid.New().String()[:8]),
		TrainingCost:    decimal.NewFromInt(total),
		InstallmentPlan: plan,
	}
	require.NoError(t, db.Create(&program).Error)

	reg := models.Registration{StudentID: student.ID, ProgramID: program.ID}
	require.NoError(t, db.Create(&reg).Error)
	reg.Student = student
	reg.Program = program
	return reg
}

// seedPayment creates a pending payment for the registration.
func seedPayment(t *testing.T, db *gorm.DB, reg models.Registration) models.Payment {
	t.Helper()
	p := models.Payment{
		RegistrationID: reg.ID,
		TotalAmount:    reg.Program.TrainingCost,
		AmountPaid:     decimal.Zero,
		Status:         models.Pending,
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}
