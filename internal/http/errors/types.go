package errors

import (
	"fmt"
	"net/http"
)

// AppError define la estructura estándar para errores de la aplicación.
// Los callers hacen pattern-match sobre Code, nunca sobre la forma del
// payload.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	HTTPStatus int    `json:"-"` // No se serializa, usado para el header
	Err        error  `json:"-"` // Error original (causa), útil para logs, no se expone al cliente
}

// Error implementa la interfaz error
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap permite acceder al error original
func (e *AppError) Unwrap() error {
	return e.Err
}

// FromError intenta convertir un error genérico en un AppError.
// Si no es un AppError, devuelve un error interno genérico conservando la causa.
func FromError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return ErrInternalServerError.WithCause(err)
}

// WithDetail agrega detalles adicionales al error.
// Devuelve una COPIA del error para no mutar las variables globales base.
func (e *AppError) WithDetail(detail string) *AppError {
	newErr := *e
	newErr.Detail = detail
	return &newErr
}

// WithCause agrega el error original (causa). Devuelve una COPIA del error.
func (e *AppError) WithCause(err error) *AppError {
	newErr := *e
	newErr.Err = err
	return &newErr
}

// =================================================================================
// LISTA DE ERRORES PREDEFINIDOS
// =================================================================================

// ---------------------------------------------------------------------------------
// Genéricos
// ---------------------------------------------------------------------------------

var (
	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "La solicitud contiene sintaxis inválida o parámetros faltantes.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrInvalidJSON = &AppError{
		Code:       "INVALID_JSON",
		Message:    "El cuerpo de la solicitud no es un JSON válido.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrUnauthorized = &AppError{
		Code:       "UNAUTHORIZED",
		Message:    "No autorizado. Se requiere autenticación.",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "El recurso solicitado no fue encontrado.",
		HTTPStatus: http.StatusNotFound,
	}

	ErrMethodNotAllowed = &AppError{
		Code:       "METHOD_NOT_ALLOWED",
		Message:    "El método HTTP no está permitido para este recurso.",
		HTTPStatus: http.StatusMethodNotAllowed,
	}

	ErrConflict = &AppError{
		Code:       "CONFLICT",
		Message:    "La solicitud entra en conflicto con el estado actual del servidor.",
		HTTPStatus: http.StatusConflict,
	}

	ErrRateLimitExceeded = &AppError{
		Code:       "RATE_LIMIT_EXCEEDED",
		Message:    "Ha excedido el límite de solicitudes. Intente más tarde.",
		HTTPStatus: http.StatusTooManyRequests,
	}

	ErrInternalServerError = &AppError{
		Code:       "INTERNAL_SERVER_ERROR",
		Message:    "Ocurrió un error interno en el servidor.",
		HTTPStatus: http.StatusInternalServerError,
	}

	ErrServiceUnavailable = &AppError{
		Code:       "SERVICE_UNAVAILABLE",
		Message:    "El servicio no está disponible temporalmente.",
		HTTPStatus: http.StatusServiceUnavailable,
	}
)

// ---------------------------------------------------------------------------------
// Taxonomía del bridge SSO
//
// El contrato capturado del endpoint expone 400 solo para parámetros
// faltantes; todo fallo posterior sale como 500 con el code que lo
// distingue. Los mensajes de MISSING_PARAMS / INVALID_ASSERTION /
// INVALID_PAYLOAD replican los textos del comportamiento original.
// ---------------------------------------------------------------------------------

var (
	ErrMissingParams = &AppError{
		Code:       "MISSING_PARAMS",
		Message:    "Missing redirect_to or jwt param",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrServerMisconfigured = &AppError{
		Code:       "SERVER_MISCONFIGURED",
		Message:    "El servidor no tiene la infraestructura de firma/sesión configurada.",
		HTTPStatus: http.StatusInternalServerError,
	}

	ErrTenantNotFound = &AppError{
		Code:       "TENANT_NOT_FOUND",
		Message:    "El tenant especificado no existe.",
		HTTPStatus: http.StatusInternalServerError,
	}

	ErrTenantMisconfigured = &AppError{
		Code:       "TENANT_MISCONFIGURED",
		Message:    "El tenant existe pero no tiene SSO configurado.",
		HTTPStatus: http.StatusInternalServerError,
	}

	ErrInvalidAssertion = &AppError{
		Code:       "INVALID_ASSERTION",
		Message:    "Invalid jwt",
		HTTPStatus: http.StatusInternalServerError,
	}

	ErrInvalidPayload = &AppError{
		Code:       "INVALID_PAYLOAD",
		Message:    "Invalid payload",
		HTTPStatus: http.StatusInternalServerError,
	}

	ErrProvisioningFailed = &AppError{
		Code:       "PROVISIONING_FAILED",
		Message:    "No se pudo aprovisionar la cuenta en el directorio de identidad.",
		HTTPStatus: http.StatusInternalServerError,
	}

	ErrAuthenticationFailed = &AppError{
		Code:       "AUTHENTICATION_FAILED",
		Message:    "El directorio de identidad rechazó el inicio de sesión.",
		HTTPStatus: http.StatusInternalServerError,
	}
)
