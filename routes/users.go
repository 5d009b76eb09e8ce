package routes

import (
	"foodbank-backend/controllers"
	"foodbank-backend/models"
	"foodbank-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// SetupUserRoutes настраивает маршруты учетных записей
func SetupUserRoutes(app *fiber.App, userController *controllers.UserController) {
	api := app.Group("/api", utils.AuthMiddleware)

	api.Get("/account", userController.GetAccount) // GET /api/account - данные текущего пользователя

	admin := api.Group("/admin", utils.RequireRole(models.RoleAdmin))
	admin.Post("/users", userController.CreateUser) // POST /api/admin/users - создать пользователя
}
