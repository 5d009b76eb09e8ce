package controllers

import (
	"bytes"
	"errors"
	"time"

	"foodbank-backend/services"

	"github.com/gofiber/fiber/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// InventoryController обрабатывает HTTP запросы для инвентаря
type InventoryController struct {
	items   *services.InventoryService
	newView services.ViewFactory
	blobs   services.BlobResolver
}

// NewInventoryController создает контроллер инвентаря
func NewInventoryController(items *services.InventoryService, newView services.ViewFactory, blobs services.BlobResolver) *InventoryController {
	return &InventoryController{items: items, newView: newView, blobs: blobs}
}

// loadView загружает список и применяет фильтры из query-параметров q и bucket
func (ic *InventoryController) loadView(c *fiber.Ctx) (*services.InventoryView, error) {
	bucket, err := services.ParseBucket(c.Query("bucket"))
	if err != nil {
		return nil, fiber.NewError(400, err.Error())
	}

	view := ic.newView()
	if err := view.Fetch(c.UserContext()); err != nil {
		return view, err
	}
	view.SelectBucket(bucket)
	view.Search(c.Query("q"))
	return view, nil
}

// ListInventory возвращает непросроченные продукты с учетом фильтров
func (ic *InventoryController) ListInventory(c *fiber.Ctx) error {
	view, err := ic.loadView(c)
	if err != nil {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{
				"error": fe.Message,
			})
		}
		return c.Status(500).JSON(view.Snapshot())
	}
	return c.JSON(view.Snapshot())
}

// ExportInventory выгружает текущий список в xlsx
func (ic *InventoryController) ExportInventory(c *fiber.Ctx) error {
	view, err := ic.loadView(c)
	if err != nil {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{
				"error": fe.Message,
			})
		}
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to load inventory",
		})
	}

	var buf bytes.Buffer
	if err := services.WriteInventoryWorkbook(&buf, view.Items(), time.Now()); err != nil {
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to build export",
		})
	}

	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Attachment("inventory-" + time.Now().Format("2006-01-02") + ".xlsx")
	return c.Send(buf.Bytes())
}

// GetItem возвращает продукт с временной ссылкой на изображение
func (ic *InventoryController) GetItem(c *fiber.Ctx) error {
	item, err := ic.items.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return serviceError(c, err)
	}

	resp := fiber.Map{"item": item}
	if item.ImageRef != "" {
		if url, err := ic.blobs.ResolveURL(c.UserContext(), item.ImageRef); err == nil {
			resp["image_url"] = url
		}
	}
	return c.JSON(resp)
}

// CreateItem добавляет продукт
func (ic *InventoryController) CreateItem(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	var req services.CreateProductInput
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	item, err := ic.items.Create(c.UserContext(), userID, req)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{
		"message": "Product added successfully",
		"item":    item,
	})
}

// UpdateItem обновляет продукт
func (ic *InventoryController) UpdateItem(c *fiber.Ctx) error {
	var req services.UpdateProductInput
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	item, err := ic.items.Update(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"item": item,
	})
}

// DeleteItem удаляет продукт
func (ic *InventoryController) DeleteItem(c *fiber.Ctx) error {
	if err := ic.items.Delete(c.UserContext(), c.Params("id")); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Product deleted",
	})
}

// serviceError переводит ошибку сервиса в HTTP ответ
func serviceError(c *fiber.Ctx, err error) error {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		return c.Status(400).JSON(fiber.Map{
			"error": ve.Message,
		})
	case errors.Is(err, services.ErrItemNotFound):
		return c.Status(404).JSON(fiber.Map{
			"error": "Product not found",
		})
	default:
		return c.Status(500).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
}
