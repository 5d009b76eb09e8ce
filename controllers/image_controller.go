package controllers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"foodbank-backend/models"
	"foodbank-backend/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const maxImageSize = 10 * 1024 * 1024

var (
	allowedImageTypes = map[string]bool{
		"image/jpeg": true,
		"image/png":  true,
		"image/gif":  true,
		"image/webp": true,
	}
	allowedImageExts = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}
)

// ImageController загрузка и выдача изображений продуктов
type ImageController struct {
	db    *gorm.DB
	blobs *services.BlobStore
}

// NewImageController создает контроллер изображений
func NewImageController(db *gorm.DB, blobs *services.BlobStore) *ImageController {
	return &ImageController{db: db, blobs: blobs}
}

// UploadImage сохраняет изображение и возвращает его ссылку для поля image_ref
func (ic *ImageController) UploadImage(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "No file provided",
		})
	}

	if err := validateImage(file); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	src, err := file.Open()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to read file",
		})
	}
	defer src.Close()

	ref, size, err := ic.blobs.Put(c.UserContext(), file.Filename, src)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to save file",
		})
	}

	image := models.Image{
		Ref:        ref,
		MimeType:   file.Header.Get("Content-Type"),
		Size:       size,
		UploadedBy: userID,
	}
	if err := ic.db.Create(&image).Error; err != nil {
		// Файл без записи не нужен
		_ = ic.blobs.Delete(c.UserContext(), ref)
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to save image record",
		})
	}

	resp := fiber.Map{"image": image, "image_ref": ref}
	if url, err := ic.blobs.ResolveURL(c.UserContext(), ref); err == nil {
		resp["image_url"] = url
	}
	return c.Status(201).JSON(resp)
}

// GetFile отдает файл по подписанной временной ссылке
func (ic *ImageController) GetFile(c *fiber.Ctx) error {
	path, ref, err := ic.blobs.Open(c.Params("token"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidBlobToken):
			return c.Status(403).JSON(fiber.Map{
				"error": "Link is invalid or expired",
			})
		case errors.Is(err, services.ErrBlobNotFound):
			return c.Status(404).JSON(fiber.Map{
				"error": "File not found",
			})
		default:
			return c.Status(500).JSON(fiber.Map{
				"error": "Failed to open file",
			})
		}
	}

	var image models.Image
	if err := ic.db.Where("ref = ?", ref).First(&image).Error; err == nil && image.MimeType != "" {
		c.Set(fiber.HeaderContentType, image.MimeType)
	}
	return c.SendFile(path)
}

// validateImage проверяет размер, тип и имя загружаемого файла
func validateImage(file *multipart.FileHeader) error {
	if file.Size > maxImageSize {
		return fmt.Errorf("file size exceeds 10MB limit")
	}

	if !allowedImageTypes[file.Header.Get("Content-Type")] {
		return fmt.Errorf("file type not allowed. Only images are supported")
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	allowed := false
	for _, allowedExt := range allowedImageExts {
		if ext == allowedExt {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("file extension not allowed")
	}

	if strings.Contains(file.Filename, "..") || strings.Contains(file.Filename, "/") {
		return fmt.Errorf("invalid file name")
	}

	return nil
}
