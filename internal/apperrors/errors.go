// Package apperrors определяет классы ошибок операций панели:
// ошибки валидации, отсутствия данных, удалённого чтения и записи,
// а также частичного выполнения пары зависимых записей.
package apperrors

import (
	"errors"
	"fmt"
)

// Сентинельные ошибки, по которым обработчики выбирают HTTP-статус
// и человекочитаемое сообщение.
var (
	// ErrValidation — обязательный идентификатор или поле отсутствуют;
	// возвращается до любого сетевого вызова.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound — запрошенная сущность отсутствует в хранилище.
	ErrNotFound = errors.New("not found")
	// ErrRemoteRead — чтение из хранилища не удалось, операция прервана
	// без частичного состояния.
	ErrRemoteRead = errors.New("remote read failed")
	// ErrRemoteWrite — запись в хранилище или внешний сервис не удалась.
	ErrRemoteWrite = errors.New("remote write failed")
)

// PartialCompletionError означает, что первая из пары зависимых записей
// выполнилась, а вторая — нет. Данные в этот момент рассогласованы,
// и оператору нужно знать, какой именно шаг не прошёл, чтобы выполнить
// ручную сверку.
type PartialCompletionError struct {
	Completed string // Шаг, который успел выполниться
	Failed    string // Шаг, который не выполнился
	Err       error  // Исходная ошибка шага
}

func (e *PartialCompletionError) Error() string {
	return fmt.Sprintf("partial completion: %q succeeded but %q failed: %v", e.Completed, e.Failed, e.Err)
}

func (e *PartialCompletionError) Unwrap() error {
	return e.Err
}

// Validation оборачивает сообщение в ErrValidation.
func Validation(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}
