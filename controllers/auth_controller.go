package controllers

import (
	"errors"
	"regexp"
	"strings"

	"foodbank-backend/models"
	"foodbank-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// AuthController контроллер для аутентификации
type AuthController struct {
	DB *gorm.DB
}

// NewAuthController создает новый экземпляр AuthController
func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{DB: db}
}

// LoginRequest структура запроса входа
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RecoverRequest структура запроса восстановления пароля
type RecoverRequest struct {
	Email string `json:"email"`
}

// UserInfo публичные данные пользователя
type UserInfo struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// AuthResponse структура ответа аутентификации
type AuthResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Token   string    `json:"token,omitempty"`
	User    *UserInfo `json:"user,omitempty"`
}

func userInfo(u *models.User) *UserInfo {
	role := u.Role
	if role == "" {
		role = models.RoleUser
	}
	name := u.Name
	if name == "" {
		name = "No name available"
	}
	return &UserInfo{ID: u.ID, Name: name, Email: u.Email, Role: role}
}

// Login обрабатывает вход пользователя
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(AuthResponse{
			Success: false,
			Message: "Invalid request body",
		})
	}

	if !isValidEmail(req.Email) {
		return c.Status(400).JSON(AuthResponse{
			Success: false,
			Message: "Invalid email format",
		})
	}
	if req.Password == "" {
		return c.Status(400).JSON(AuthResponse{
			Success: false,
			Message: "Password is required",
		})
	}

	var user models.User
	if err := ac.DB.Where("email = ?", strings.ToLower(req.Email)).First(&user).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(500).JSON(AuthResponse{
				Success: false,
				Message: "Failed to sign in",
			})
		}
		return c.Status(401).JSON(AuthResponse{
			Success: false,
			Message: "Invalid email or password",
		})
	}

	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		return c.Status(401).JSON(AuthResponse{
			Success: false,
			Message: "Invalid email or password",
		})
	}

	if !user.IsActive {
		return c.Status(401).JSON(AuthResponse{
			Success: false,
			Message: "Account is disabled",
		})
	}

	token, err := utils.GenerateJWT(user.ID, user.Email, user.Role)
	if err != nil {
		return c.Status(500).JSON(AuthResponse{
			Success: false,
			Message: "Failed to create token",
		})
	}

	return c.JSON(AuthResponse{
		Success: true,
		Message: "Signed in",
		Token:   token,
		User:    userInfo(&user),
	})
}

// Recover обрабатывает запрос на восстановление пароля
func (ac *AuthController) Recover(c *fiber.Ctx) error {
	var req RecoverRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(AuthResponse{
			Success: false,
			Message: "Invalid request body",
		})
	}

	if !isValidEmail(req.Email) {
		return c.Status(400).JSON(AuthResponse{
			Success: false,
			Message: "Invalid email format",
		})
	}

	// Ответ не зависит от существования пользователя
	return c.JSON(AuthResponse{
		Success: true,
		Message: "If an account with that email exists, recovery instructions have been sent",
	})
}

// Logout подтверждает выход; токен удаляет клиент
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	return c.JSON(AuthResponse{
		Success: true,
		Message: "Signed out",
	})
}

func isValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}
