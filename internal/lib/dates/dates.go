// Package dates реализует календарную арифметику месяцев для воркфлоу
// назначения подписки и форматирование дат записей истории.
package dates

import "time"

// DateOnly — формат даты без времени, используется в поле endDate записи
// истории и в createdAt пользователя.
const DateOnly = "2006-01-02"

// AddMonths прибавляет months календарных месяцев с прижатием к последнему
// дню месяца: 31 января + 1 месяц = 28/29 февраля, а не 2/3 марта.
// Контракт назначения фиксирует именно такую дату окончания, поэтому
// переполнение stdlib-овского AddDate здесь не годится.
func AddMonths(t time.Time, months int) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	shifted := first.AddDate(0, months, 0)

	day := t.Day()
	if last := lastDay(shifted.Year(), shifted.Month()); day > last {
		day = last
	}
	return time.Date(shifted.Year(), shifted.Month(), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// TruncateToDate возвращает дату без времени в формате 2006-01-02.
func TruncateToDate(t time.Time) string {
	return t.Format(DateOnly)
}

// FormatHuman возвращает дату в человекочитаемом виде для отображения
// начала подписки в списке пользователей.
func FormatHuman(t time.Time) string {
	return t.Format("02 Jan 2006")
}

func lastDay(year int, month time.Month) int {
	// Нулевой день следующего месяца — последний день текущего.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
