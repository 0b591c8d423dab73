package models

import "time"

// HistoryRecord — неизменяемая запись о событии назначения подписки
// (документ коллекции subscription_history). Записи только добавляются:
// назначение новой подписки не обновляет прежние записи, поэтому у одного
// пользователя может быть несколько записей со статусом active.
//
// EndDate намеренно хранится усечённой до даты (2006-01-02), тогда как
// на пользователе дата окончания хранится полным timestamp.
type HistoryRecord struct {
	ID        string    `json:"id"`        // UUID записи
	UserID    string    `json:"userId"`    // Ключ документа пользователя
	PlanID    string    `json:"planId"`    // Идентификатор плана
	StartDate time.Time `json:"startDate"` // Начало подписки, полный timestamp
	EndDate   string    `json:"endDate"`   // Окончание, только дата
	Status    string    `json:"status"`    // active или иной статус
	CreatedAt time.Time `json:"createdAt"` // Момент создания записи
}

// SubscriptionView — текущая действующая подписка пользователя,
// восстановленная из истории и каталога планов на стороне чтения.
type SubscriptionView struct {
	RecordID  string  `json:"id"`        // Идентификатор записи истории
	PlanID    string  `json:"planId"`    // Идентификатор плана
	PlanName  string  `json:"planName"`  // Имя плана из каталога
	Price     float64 `json:"price"`     // Цена плана
	Status    string  `json:"status"`    // Статус записи истории
	StartDate string  `json:"startDate"` // Дата начала в человекочитаемом виде
}

// DummyAssign используется для приёма запроса на назначение подписки.
type DummyAssign struct {
	User   string `json:"user" validate:"required"`    // Username или ключ документа
	PlanID string `json:"plan_id" validate:"required"` // Идентификатор плана
}

// AssignmentResult возвращается воркфлоу назначения подписки.
type AssignmentResult struct {
	UserID    string    `json:"user_id"`
	PlanID    string    `json:"plan_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	RecordID  string    `json:"record_id"`
	Months    int       `json:"months"`
}
