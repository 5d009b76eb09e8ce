package controllers

import (
	"errors"

	"foodbank-backend/services"

	"github.com/gofiber/fiber/v2"
)

// ScanController обработка отсканированных штрихкодов
type ScanController struct {
	items *services.InventoryService
}

// NewScanController создает контроллер сканирования
func NewScanController(items *services.InventoryService) *ScanController {
	return &ScanController{items: items}
}

// ScanRequest данные, прочитанные сканером
type ScanRequest struct {
	Type string `json:"type"`
	Data string `json:"data"`
}

// Scan классифицирует код: для ссылок возвращает URL, для остальных ищет продукт
func (sc *ScanController) Scan(c *fiber.Ctx) error {
	var req ScanRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	result := services.ClassifyScan(req.Type, req.Data)
	if result.Data == "" {
		return c.Status(400).JSON(fiber.Map{
			"error": "Scanned data is empty",
		})
	}

	if result.Kind == services.ScanKindURL {
		return c.JSON(fiber.Map{
			"scan": result,
			"url":  result.Data,
		})
	}

	item, err := sc.items.FindByBarcode(c.UserContext(), result.Data)
	if err != nil {
		if errors.Is(err, services.ErrItemNotFound) {
			return c.JSON(fiber.Map{
				"scan":  result,
				"found": false,
			})
		}
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to look up product",
		})
	}

	return c.JSON(fiber.Map{
		"scan":  result,
		"found": true,
		"item":  item,
	})
}
