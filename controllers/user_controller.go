package controllers

import (
	"errors"
	"strings"

	"foodbank-backend/models"
	"foodbank-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// UserController контроллер учетных записей
type UserController struct {
	db *gorm.DB
}

// NewUserController создает новый экземпляр UserController
func NewUserController(db *gorm.DB) *UserController {
	return &UserController{db: db}
}

// CreateUserRequest запрос администратора на создание пользователя
type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// GetAccount возвращает данные текущего пользователя
func (uc *UserController) GetAccount(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	var user models.User
	if err := uc.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{
				"error": "User not found",
			})
		}
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to get account",
		})
	}

	return c.JSON(fiber.Map{
		"user": userInfo(&user),
	})
}

// CreateUser создает пользователя с ролью user (только для администратора)
func (uc *UserController) CreateUser(c *fiber.Ctx) error {
	var req CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !isValidEmail(email) {
		return c.Status(400).JSON(fiber.Map{
			"error": "Invalid email format",
		})
	}
	if len(req.Password) < 6 {
		return c.Status(400).JSON(fiber.Map{
			"error": "Password should be at least 6 characters",
		})
	}

	var existing models.User
	err := uc.db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return c.Status(409).JSON(fiber.Map{
			"error": "The email address is already in use by another account",
		})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to create user",
		})
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to create user",
		})
	}

	user := models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleUser,
		IsActive:     true,
	}
	if err := uc.db.Create(&user).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to create user",
		})
	}

	return c.Status(201).JSON(fiber.Map{
		"user": userInfo(&user),
	})
}
