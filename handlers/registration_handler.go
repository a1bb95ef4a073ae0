package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/prasetyadi/edu_registration/database"
	"github.com/prasetyadi/edu_registration/models"
	"gorm.io/gorm"
)

type CreateRegistrationRequest struct {
	FullName  string  `json:"full_name" validate:"required,min=3"`
	Email     string  `json:"email" validate:"required,email"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
	City      *string `json:"city"`
	ProgramID string  `json:"program_id" validate:"required,uuid4"`
}

func CreateRegistration(c *fiber.Ctx) error {
	var req CreateRegistrationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	programID, err := uuid.Parse(req.ProgramID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid program ID format"})
	}
	var program models.Program
	if err := database.DB.Where("id = ? AND is_active = ?", programID, true).First(&program).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Program not found"})
	}

	var registration models.Registration
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		var student models.Student
		err := tx.Where("email = ?", req.Email).First(&student).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			student = models.Student{
				FullName: req.FullName,
				Email:    req.Email,
				Phone:    req.Phone,
				Address:  req.Address,
				City:     req.City,
			}
			if err := tx.Create(&student).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		registration = models.Registration{
			StudentID: student.ID,
			ProgramID: program.ID,
		}
		if err := tx.Create(&registration).Error; err != nil {
			return err
		}
		registration.Student = student
		registration.Program = program
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create registration"})
	}

	return c.Status(fiber.StatusCreated).JSON(registration)
}

func ListRegistrations(c *fiber.Ctx) error {
	var registrations []models.Registration
	query := database.DB.Preload("Student").Preload("Program").Order("created_at DESC")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&registrations).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	return c.JSON(registrations)
}

func GetRegistration(c *fiber.Ctx) error {
	registrationID := c.Params("registrationId")
	if _, err := uuid.Parse(registrationID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid registration ID format"})
	}

	var registration models.Registration
	err := database.DB.Preload("Student").Preload("Program").
		First(&registration, "id = ?", registrationID).Error
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Registration not found"})
	}

	// The active payment, if one exists. Cancelled payments are excluded
	// from every active view.
	var payment models.Payment
	err = database.DB.Preload("Installments", func(db *gorm.DB) *gorm.DB { return db.Order("ordinal ASC") }).
		Where("registration_id = ? AND status <> ?", registration.ID, "cancelled").
		First(&payment).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	response := fiber.Map{"registration": registration}
	if err == nil {
		response["payment"] = payment
	}
	return c.JSON(response)
}
