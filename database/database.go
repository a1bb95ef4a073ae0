package database

import (
	"fmt"
	"log"

	config "github.com/prasetyadi/edu_registration/configs"
	"github.com/prasetyadi/edu_registration/models"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB() {
	var err error
	dsn := config.Config("DATABASE_URL")

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		PrepareStmt:                              false,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		DisableNestedTransaction:                 true,
	})
	if err != nil {
		log.Fatalf("🔥 Failed to connect to database: %v", err)
	}

	fmt.Println("✅ Database connected successfully")
}

func Migrate() {
	err := DB.AutoMigrate(
		&models.User{},
		&models.Student{},
		&models.Program{},
		&models.Registration{},
		&models.Payment{},
		&models.PaymentInstallment{},
		&models.PaymentHistory{},
		&models.DocumentCounter{},
	)
	if err != nil {
		log.Fatalf("🔥 Failed to migrate database: %v", err)
	}
	fmt.Println("✅ Database migration successful")
}

func SeedAdmin() {
	adminEmail := config.Config("ADMIN_EMAIL")
	adminPassword := config.Config("ADMIN_PASSWORD")

	var count int64
	err := DB.Model(&models.User{}).Where("email = ?", adminEmail).Count(&count).Error
	if err != nil {
		log.Fatalf("🔥 Failed to check for admin user: %v", err)
		return
	}

	if count > 0 {
		log.Println("Admin user already exists.")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("🔥 Failed to hash admin password: %v", err)
		return
	}

	adminUser := models.User{
		FullName: config.Config("ADMIN_FULL_NAME"),
		Email:    adminEmail,
		Password: string(hashedPassword),
		Role:     "admin",
	}

	if err := DB.Create(&adminUser).Error; err != nil {
		log.Fatalf("🔥 Failed to seed admin user: %v", err)
		return
	}

	log.Println("✅ Admin user seeded successfully")
}

func SeedPrograms() {
	var count int64
	if err := DB.Model(&models.Program{}).Count(&count).Error; err != nil {
		log.Fatalf("🔥 Failed to check program catalog: %v", err)
		return
	}
	if count > 0 {
		return
	}

	programs := []models.Program{
		{Name: "Regular Class", TrainingCost: decimal.NewFromInt(4000000), InstallmentPlan: 4},
		{Name: "Intensive Class", TrainingCost: decimal.NewFromInt(6000000), InstallmentPlan: 6},
		{Name: "Short Course", TrainingCost: decimal.NewFromInt(1500000), InstallmentPlan: 1},
	}
	if err := DB.Create(&programs).Error; err != nil {
		log.Fatalf("🔥 Failed to seed program catalog: %v", err)
		return
	}
	log.Println("✅ Program catalog seeded successfully")
}
