package service

import (
	"errors"
	"fmt"
)

var (
	ErrNoTrainingData  = errors.New("no usable training data")
	ErrNoQueryData     = errors.New("no usable query rows")
	ErrEmptyDictionary = errors.New("dictionary is empty")
)

// ValidationError: ошибка входных данных оператора; состояние не меняется.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func validationErr(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// IsValidation сообщает, является ли err (или обёрнутая в нём) ошибкой валидации.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
