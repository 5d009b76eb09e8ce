package routes

import (
	"foodbank-backend/controllers"
	"foodbank-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// SetupImageRoutes настраивает маршруты изображений
func SetupImageRoutes(app *fiber.App, imageController *controllers.ImageController) {
	// POST /api/images - загрузить изображение
	app.Post("/api/images", utils.AuthMiddleware, imageController.UploadImage)

	// GET /files/:token - скачать по подписанной ссылке
	app.Get("/files/:token", imageController.GetFile)
}
