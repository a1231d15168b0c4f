package repository

import "errors"

var (
	// ErrNotFound indica que el recurso solicitado no existe (o ya fue consumido).
	ErrNotFound = errors.New("not found")

	// ErrConflict indica un duplicado o violación de constraint.
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indica que los datos de entrada son inválidos.
	ErrInvalidInput = errors.New("invalid input")
)

// IsNotFound verifica si el error es ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsConflict verifica si el error es ErrConflict.
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }
