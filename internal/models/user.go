// Package models содержит доменные структуры админ-панели: пользователи,
// тарифные планы, записи истории подписок и вспомогательные типы
// для приёма данных из JSON-запросов.
package models

import "time"

// User представляет пользователя сервиса (документ коллекции users).
//
// Идентификатор документа — либо username заглавными буквами (для аккаунтов,
// созданных через панель), либо произвольный ключ у старых записей.
// Поля SubscriptionID, SubscriptionStartDate, SubscriptionEndDate и
// ExpirationDate — денормализованные указатели на текущую подписку;
// ExpirationDate всегда дублирует SubscriptionEndDate после назначения.
type User struct {
	ID           string `json:"id"`           // Ключ документа
	UID          string `json:"uid"`          // Идентификатор аккаунта у внешнего провайдера
	FullName     string `json:"fullName"`     // Полное имя
	Email        string `json:"email"`        // Электронная почта
	Username     string `json:"username"`     // Имя пользователя
	MobileNumber string `json:"mobileNumber"` // Номер мобильного телефона
	DeviceID     string `json:"deviceId"`     // Привязанное устройство (пустая строка — нет привязки)
	PasswordHash string `json:"-"`            // Легаси SHA-256 дайджест пароля
	CreatedAt    string `json:"createdAt"`    // Дата создания, только дата (2006-01-02)
	Status       string `json:"status"`       // Статус аккаунта: active или inactive

	SubscriptionID        string     `json:"subscriptionId,omitempty"`
	SubscriptionStartDate *time.Time `json:"subscriptionStartDate,omitempty"`
	SubscriptionEndDate   *time.Time `json:"subscriptionEndDate,omitempty"`
	ExpirationDate        *time.Time `json:"expirationDate,omitempty"`
	UpdatedAt             *time.Time `json:"updatedAt,omitempty"`
}

// Статусы аккаунта пользователя.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// DummyCreateUser используется для приёма данных формы создания пользователя
// из JSON-запроса до валидации.
type DummyCreateUser struct {
	FullName     string `json:"full_name" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Username     string `json:"username" validate:"required,alphanum"`
	Password     string `json:"password" validate:"required,min=6"`
	MobileNumber string `json:"mobile_number" validate:"omitempty,numeric,len=10"`
	DeviceID     string `json:"device_id" validate:"omitempty"`
}

// UserWithSubscription объединяет пользователя с его текущей подпиской,
// восстановленной join-движком на стороне чтения.
type UserWithSubscription struct {
	User         User              `json:"user"`
	Subscription *SubscriptionView `json:"subscription,omitempty"`
}
