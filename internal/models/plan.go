package models

// Plan представляет тарифный план подписки из каталога.
//
// Duration хранится строкой с числом месяцев — часть старых документов
// содержит нечисловые значения, поэтому длительность парсится с дефолтом
// в один месяц. Каталог планов здесь только читается, управление планами —
// отдельная поверхность.
type Plan struct {
	ID       string  `json:"id"`       // Идентификатор плана
	Name     string  `json:"planName"` // Отображаемое имя
	Duration string  `json:"duration"` // Число месяцев строкой
	Price    float64 `json:"price"`    // Цена, форматируется в валюту только при отображении
}
