package models

import (
	"path"
	"time"

	"gorm.io/gorm"
)

// Image запись о загруженном изображении продукта
type Image struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	Ref        string    `json:"ref" gorm:"uniqueIndex;not null"`
	MimeType   string    `json:"mime_type" gorm:"not null"`
	Size       int64     `json:"size" gorm:"not null"`
	UploadedBy uint      `json:"uploaded_by" gorm:"not null;index"`
	CreatedAt  time.Time `json:"created_at"`
}

// BeforeCreate хук для установки времени создания
func (i *Image) BeforeCreate(tx *gorm.DB) error {
	i.CreatedAt = time.Now()
	return nil
}

// IsImage проверяет MIME-тип
func (i *Image) IsImage() bool {
	switch i.MimeType {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	}
	return false
}

// GetFileName возвращает имя файла из ссылки
func (i *Image) GetFileName() string {
	return path.Base(i.Ref)
}
