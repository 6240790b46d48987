package apperr

import (
	"errors"
	"fmt"
)

// Kind классификация бизнес-ошибок. Обработчики HTTP отображают
// Kind в статус-код ровно в одном месте.
type Kind int

const (
	Unexpected Kind = iota
	NotFound
	Validation
	Conflict
	Unauthorized
)

// Error типизированный результат отказа бизнес-правила.
// Message предназначен для человека и уходит клиенту как есть.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NotFoundf сущность не найдена
func NotFoundf(format string, args ...interface{}) *Error {
	return &Error{Kind: NotFound, Message: fmt.Sprintf(format, args...)}
}

// Validationf нарушено бизнес-правило или передан некорректный ввод
func Validationf(format string, args ...interface{}) *Error {
	return &Error{Kind: Validation, Message: fmt.Sprintf(format, args...)}
}

// Conflictf повторное действие над уже обработанной сущностью
func Conflictf(format string, args ...interface{}) *Error {
	return &Error{Kind: Conflict, Message: fmt.Sprintf(format, args...)}
}

// Unauthorizedf действующий пользователь не владеет ресурсом
func Unauthorizedf(format string, args ...interface{}) *Error {
	return &Error{Kind: Unauthorized, Message: fmt.Sprintf(format, args...)}
}

// Internal оборачивает инфраструктурную ошибку в общий отказ
func Internal(err error) *Error {
	return &Error{Kind: Unexpected, Message: "internal error", Err: err}
}

// KindOf возвращает классификацию ошибки, Unexpected для посторонних
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unexpected
}

// MessageOf возвращает сообщение для клиента
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}
