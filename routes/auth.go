package routes

import (
	"foodbank-backend/controllers"
	"foodbank-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// SetupAuthRoutes настраивает маршруты для аутентификации
func SetupAuthRoutes(app *fiber.App, authController *controllers.AuthController) {
	auth := app.Group("/auth")

	// POST /auth/login - вход пользователя
	auth.Post("/login", authController.Login)

	// POST /auth/recover - запрос на восстановление пароля
	auth.Post("/recover", authController.Recover)

	// POST /auth/logout - выход
	auth.Post("/logout", utils.AuthMiddleware, authController.Logout)
}
