package ds

import (
	"errors"
	"fmt"
)

// ErrorKind — классификация доменных ошибок жизненного цикла сессии.
// Обработчики транслируют kind в HTTP статус: GuardFailed и InvalidAmount
// в 400, NotFound в 404, ConflictingTransition и OverpaymentRejected в 409,
// Transient в 502.
type ErrorKind string

const (
	KindGuardFailed           ErrorKind = "GuardFailed"
	KindConflictingTransition ErrorKind = "ConflictingTransition"
	KindNotFound              ErrorKind = "NotFound"
	KindOverpaymentRejected   ErrorKind = "OverpaymentRejected"
	KindInvalidAmount         ErrorKind = "InvalidAmount"
	KindTransient             ErrorKind = "Transient"
)

// DomainError — ошибка с классификацией для wire-контракта.
type DomainError struct {
	Kind    ErrorKind
	Message string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// GuardFailed — невыполненное предусловие перехода. Сообщение называет
// конкретное недостающее поле или количество.
func GuardFailed(format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: KindGuardFailed, Message: fmt.Sprintf(format, args...)}
}

// ConflictingTransition — конкурирующая запись успела раньше.
func ConflictingTransition(format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: KindConflictingTransition, Message: fmt.Sprintf(format, args...)}
}

// NotFound — сессия или карточка не найдены.
func NotFound(format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// OverpaymentRejected — платёж превысил бы рассчитанную стоимость.
func OverpaymentRejected(format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: KindOverpaymentRejected, Message: fmt.Sprintf(format, args...)}
}

// InvalidAmount — недопустимая сумма платежа.
func InvalidAmount(format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: KindInvalidAmount, Message: fmt.Sprintf(format, args...)}
}

// Transient — сетевая/временная ошибка, повторяется только циклом опроса.
func Transient(format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: KindTransient, Message: fmt.Sprintf(format, args...)}
}

// KindOf возвращает классификацию ошибки или пустую строку.
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsKind проверяет классификацию ошибки.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
