package models

import "errors"

var (
	// ErrInvalidQuery se devuelve antes de tocar el store o el caché
	ErrInvalidQuery = errors.New("invalid query")
	// ErrNotFound indica que el id pedido no existe
	ErrNotFound = errors.New("product not found")
	// ErrStoreUnavailable cubre fallos de conexión o timeout del store; el cliente puede reintentar
	ErrStoreUnavailable = errors.New("store unavailable")
)

// QueryError representa un error de validación sobre un parámetro concreto
type QueryError struct {
	Field   string
	Message string
}

func (e *QueryError) Error() string {
	return e.Field + ": " + e.Message
}

// Is permite errors.Is(err, ErrInvalidQuery)
func (e *QueryError) Is(target error) bool {
	return target == ErrInvalidQuery
}

func invalid(field, message string) error {
	return &QueryError{Field: field, Message: message}
}
