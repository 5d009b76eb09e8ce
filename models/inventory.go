package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InventoryCollection имя коллекции инвентаря для запросов к хранилищу документов
const InventoryCollection = "inventory"

// InventoryItem представляет продукт на складе продовольственного банка
type InventoryItem struct {
	ID          string     `json:"id" gorm:"primaryKey;size:36"`
	Name        string     `json:"name" gorm:"not null;size:255"`
	Description string     `json:"description" gorm:"type:text;default:''"`
	Quantity    int        `json:"quantity" gorm:"not null;default:0"`
	Expiration  *time.Time `json:"expiration" gorm:"index"` // у части старых записей отсутствует
	ImageRef    string     `json:"image_ref" gorm:"default:''"`
	Barcode     string     `json:"barcode" gorm:"index;default:''"`
	CreatedBy   uint       `json:"created_by" gorm:"default:0"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName фиксирует имя таблицы
func (InventoryItem) TableName() string {
	return "inventory_items"
}

// BeforeCreate хук для установки идентификатора и времени создания
func (i *InventoryItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	i.CreatedAt = time.Now()
	i.UpdatedAt = time.Now()
	return nil
}

// BeforeSave хранит срок годности в UTC, чтобы сравнения в SQLite были корректны
func (i *InventoryItem) BeforeSave(tx *gorm.DB) error {
	if i.Expiration != nil {
		utc := i.Expiration.UTC()
		i.Expiration = &utc
	}
	return nil
}

// BeforeUpdate хук для обновления времени изменения
func (i *InventoryItem) BeforeUpdate(tx *gorm.DB) error {
	i.UpdatedAt = time.Now()
	return nil
}
