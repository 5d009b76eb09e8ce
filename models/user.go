package models

import (
	"time"

	"gorm.io/gorm"
)

// Роли пользователей
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User представляет модель пользователя в системе
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"not null;default:''"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"` // Скрываем хэш пароля в JSON
	Role         string    `json:"role" gorm:"not null;default:'user'"`
	IsActive     bool      `json:"is_active" gorm:"default:true"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAdmin проверяет, является ли пользователь администратором
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// BeforeCreate хук для установки времени создания и роли по умолчанию
func (u *User) BeforeCreate(tx *gorm.DB) error {
	u.CreatedAt = time.Now()
	u.UpdatedAt = time.Now()
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

// BeforeUpdate хук для обновления времени изменения
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}
