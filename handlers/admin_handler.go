package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/prasetyadi/edu_registration/database"
	"github.com/prasetyadi/edu_registration/ledger"
	"github.com/prasetyadi/edu_registration/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProgramRequest struct {
	Name            string `json:"name" validate:"required,min=2"`
	TrainingCost    string `json:"training_cost" validate:"required"`
	InstallmentPlan int    `json:"installment_plan" validate:"required,oneof=1 4 6"`
}

func CreateProgram(c *fiber.Ctx) error {
	var req ProgramRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	cost := ledger.ParseAmount(req.TrainingCost, decimal.Zero)
	if !cost.IsPositive() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Training cost must be positive"})
	}

	program := models.Program{
		Name:            req.Name,
		TrainingCost:    cost,
		InstallmentPlan: req.InstallmentPlan,
	}
	if err := database.DB.Create(&program).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create program"})
	}
	return c.Status(fiber.StatusCreated).JSON(program)
}

func ListPrograms(c *fiber.Ctx) error {
	var programs []models.Program
	if err := database.DB.Where("is_active = ?", true).Order("name ASC").Find(&programs).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	return c.JSON(programs)
}

func UpdateProgram(c *fiber.Ctx) error {
	programID := c.Params("programId")
	if _, err := uuid.Parse(programID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid program ID format"})
	}

	var req ProgramRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var program models.Program
	if err := database.DB.First(&program, "id = ?", programID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Program not found"})
	}

	cost := ledger.ParseAmount(req.TrainingCost, decimal.Zero)
	if !cost.IsPositive() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Training cost must be positive"})
	}

	program.Name = req.Name
	program.TrainingCost = cost
	program.InstallmentPlan = req.InstallmentPlan
	if err := database.DB.Save(&program).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update program"})
	}
	return c.JSON(program)
}

// AdminGetPayments lists active payments with the derived overdue flag,
// for the billing dashboard.
func AdminGetPayments(c *fiber.Ctx) error {
	var payments []models.Payment
	query := database.DB.
		Preload("Registration.Student").
		Preload("Registration.Program").
		Preload("Installments", func(db *gorm.DB) *gorm.DB { return db.Order("ordinal ASC") }).
		Order("updated_at DESC")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	} else {
		query = query.Where("status <> ?", "cancelled")
	}
	if err := query.Find(&payments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	now := time.Now()
	type paymentRow struct {
		models.Payment
		Overdue bool `json:"overdue"`
	}
	rows := make([]paymentRow, 0, len(payments))
	for _, p := range payments {
		rows = append(rows, paymentRow{Payment: p, Overdue: ledger.IsOverdue(&p, now)})
	}
	return c.JSON(rows)
}
