package models

import "time"

// StaffAccount представляет учётную запись сотрудника панели.
// Пароль хранится bcrypt-хэшем; сессии выдаются JWT-токенами.
type StaffAccount struct {
	UID          string    // Уникальный идентификатор
	Username     string    // Имя для входа (уникальное)
	Email        string    // Электронная почта
	PasswordHash string    // bcrypt-хэш пароля
	Role         string    // Роль сотрудника, например admin
	CreatedAt    time.Time // Дата создания
}
