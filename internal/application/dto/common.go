package dto

// PageResponse ventana devuelta en el listado de movimientos; Total cuenta los ítems de la página.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total,omitempty"`
}

// ErrorResponse cuerpo de error HTTP. Code es estable (VALIDATION, NOT_FOUND,
// INVALID_TRANSITION, INSUFFICIENT_STOCK...); Message es para mostrar.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
