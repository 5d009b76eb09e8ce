package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"foodbank-backend/models"

	"gorm.io/gorm"
)

// События изменения инвентаря
const (
	EventInventoryCreated = "inventory.created"
	EventInventoryUpdated = "inventory.updated"
	EventInventoryDeleted = "inventory.deleted"
)

// ErrItemNotFound продукт не найден
var ErrItemNotFound = errors.New("inventory item not found")

// ValidationError ошибка входных данных, отображается пользователю как есть
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// EventPublisher получатель событий об изменениях
type EventPublisher interface {
	Publish(message WSMessage)
}

// CreateProductInput данные нового продукта
type CreateProductInput struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Quantity    *int       `json:"quantity"`
	Expiration  *time.Time `json:"expiration"`
	ImageRef    string     `json:"image_ref"`
	Barcode     string     `json:"barcode"`
}

// UpdateProductInput частичное обновление: nil-поля не меняются
type UpdateProductInput struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Quantity    *int       `json:"quantity"`
	Expiration  *time.Time `json:"expiration"`
	ImageRef    *string    `json:"image_ref"`
	Barcode     *string    `json:"barcode"`
}

// InventoryService операции над продуктами
type InventoryService struct {
	db     *gorm.DB
	events EventPublisher
	log    *slog.Logger
}

// NewInventoryService создает сервис; events может быть nil
func NewInventoryService(db *gorm.DB, events EventPublisher, log *slog.Logger) *InventoryService {
	if log == nil {
		log = slog.Default()
	}
	return &InventoryService{db: db, events: events, log: log}
}

// Create добавляет продукт
func (s *InventoryService) Create(ctx context.Context, userID uint, in CreateProductInput) (*models.InventoryItem, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || in.Quantity == nil {
		return nil, &ValidationError{Message: "Please fill all the fields"}
	}
	if *in.Quantity < 0 {
		return nil, &ValidationError{Message: "Quantity must not be negative"}
	}

	item := models.InventoryItem{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Quantity:    *in.Quantity,
		Expiration:  in.Expiration,
		ImageRef:    strings.TrimSpace(in.ImageRef),
		Barcode:     strings.TrimSpace(in.Barcode),
		CreatedBy:   userID,
	}
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, err
	}

	s.log.Info("inventory item created", "item_id", item.ID, "user_id", userID)
	s.publish(EventInventoryCreated, &item)
	return &item, nil
}

// Get возвращает продукт по ID
func (s *InventoryService) Get(ctx context.Context, id string) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindByBarcode ищет продукт по штрихкоду
func (s *InventoryService) FindByBarcode(ctx context.Context, barcode string) (*models.InventoryItem, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, ErrItemNotFound
	}
	var item models.InventoryItem
	err := s.db.WithContext(ctx).Where("barcode = ?", barcode).Order("created_at DESC").First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

// Update меняет переданные поля продукта
func (s *InventoryService) Update(ctx context.Context, id string, in UpdateProductInput) (*models.InventoryItem, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, &ValidationError{Message: "Name must not be empty"}
		}
		item.Name = name
	}
	if in.Description != nil {
		item.Description = strings.TrimSpace(*in.Description)
	}
	if in.Quantity != nil {
		if *in.Quantity < 0 {
			return nil, &ValidationError{Message: "Quantity must not be negative"}
		}
		item.Quantity = *in.Quantity
	}
	if in.Expiration != nil {
		item.Expiration = in.Expiration
	}
	if in.ImageRef != nil {
		item.ImageRef = strings.TrimSpace(*in.ImageRef)
	}
	if in.Barcode != nil {
		item.Barcode = strings.TrimSpace(*in.Barcode)
	}

	if err := s.db.WithContext(ctx).Save(item).Error; err != nil {
		return nil, err
	}

	s.publish(EventInventoryUpdated, item)
	return item, nil
}

// Delete удаляет продукт
func (s *InventoryService) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.InventoryItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrItemNotFound
	}

	s.log.Info("inventory item deleted", "item_id", id)
	s.publish(EventInventoryDeleted, deletedPayload{ID: id})
	return nil
}

type deletedPayload struct {
	ID string `json:"id"`
}

func (s *InventoryService) publish(eventType string, payload interface{}) {
	if s.events == nil {
		return
	}
	s.events.Publish(WSMessage{Type: eventType, Payload: payload})
}
