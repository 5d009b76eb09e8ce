package routes

import (
	"foodbank-backend/controllers"
	"foodbank-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// SetupInventoryRoutes настраивает маршруты инвентаря
func SetupInventoryRoutes(app *fiber.App, inventoryController *controllers.InventoryController) {
	inventory := app.Group("/api/inventory", utils.AuthMiddleware)

	// GET /api/inventory?q=&bucket= - список с фильтрами
	inventory.Get("/", inventoryController.ListInventory)

	// GET /api/inventory/export - выгрузка в xlsx
	inventory.Get("/export", inventoryController.ExportInventory)

	// POST /api/inventory - добавить продукт
	inventory.Post("/", inventoryController.CreateItem)

	// GET /api/inventory/:id - получить продукт
	inventory.Get("/:id", inventoryController.GetItem)

	// PUT /api/inventory/:id - обновить продукт
	inventory.Put("/:id", inventoryController.UpdateItem)

	// DELETE /api/inventory/:id - удалить продукт
	inventory.Delete("/:id", inventoryController.DeleteItem)
}
