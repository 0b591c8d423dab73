package models

import "time"

// ReconciliationFinding — расхождение между денормализованными полями
// подписки на пользователе и его записями истории, найденное фоновой
// сверкой. Публикуется в очередь и отправляется операторам на почту.
type ReconciliationFinding struct {
	UserID  string    `json:"userId"`  // Ключ документа пользователя
	Issue   string    `json:"issue"`   // Краткий код проблемы
	Detail  string    `json:"detail"`  // Описание для оператора
	FoundAt time.Time `json:"foundAt"` // Момент обнаружения
}
