// Package model содержит общие ошибки хранилищ.
package model

import "errors"

var (
	// ErrNotFound возвращается хранилищем, если запись не найдена
	ErrNotFound = errors.New("not found")
	// ErrInvalidScanReport сканер вернул отчет, который нельзя разобрать
	ErrInvalidScanReport = errors.New("invalid scan report")
)
