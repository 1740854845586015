// Package model содержит валидаторы для моделей.
//
// Группа: BASE - Базовые компоненты
// Содержит: ValidationError, ValidationErrors, валидаторы путей
package model

import (
	"fmt"
	"regexp"
	"strings"
)

// ValidationError представляет ошибку валидации
type ValidationError struct {
	Field   string
	Message string
}

func (ve ValidationError) Error() string {
	if ve.Field == "" {
		return ve.Message
	}
	return fmt.Sprintf("validation error for field '%s': %s", ve.Field, ve.Message)
}

// ValidationErrors представляет множество ошибок валидации
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}

	var messages []string
	for _, err := range ve {
		messages = append(messages, err.Error())
	}
	return strings.Join(messages, "; ")
}

// Messages возвращает тексты ошибок без имен полей
func (ve ValidationErrors) Messages() []string {
	messages := make([]string, 0, len(ve))
	for _, err := range ve {
		messages = append(messages, err.Message)
	}
	return messages
}

// Regex для абсолютных путей Windows: C:\ или C:/
var driveLetterRegex = regexp.MustCompile(`^[A-Za-z]:[\\/]`)

// HasControlChars проверяет наличие NUL, CR или LF
func HasControlChars(path string) bool {
	return strings.ContainsAny(path, "\x00\r\n")
}

// IsAbsolutePath проверяет, что путь абсолютный: /, ~/ или буква диска
func IsAbsolutePath(path string) bool {
	return strings.HasPrefix(path, "/") ||
		strings.HasPrefix(path, "~/") ||
		driveLetterRegex.MatchString(path)
}

// ValidateRequired проверяет, что поле не пустое
func ValidateRequired(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return ValidationError{Field: field, Message: "is required"}
	}
	return nil
}
