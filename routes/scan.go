package routes

import (
	"foodbank-backend/controllers"
	"foodbank-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// SetupScanRoutes настраивает маршруты сканера штрихкодов
func SetupScanRoutes(app *fiber.App, scanController *controllers.ScanController) {
	// POST /api/scan - обработать отсканированный код
	app.Post("/api/scan", utils.AuthMiddleware, scanController.Scan)
}
