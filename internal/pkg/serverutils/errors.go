package serverutils

import "net/http"

// HttpError is a service-level error that carries the HTTP status it should
// surface as. The error middleware maps it onto the response.
type HttpError struct {
	Code    int
	Message string
}

func (e *HttpError) Error() string {
	return e.Message
}

func NewHttpError(code int, message string) *HttpError {
	return &HttpError{Code: code, Message: message}
}

func NewNotFoundError(message string) *HttpError {
	return NewHttpError(http.StatusNotFound, message)
}

func NewBadRequestError(message string) *HttpError {
	return NewHttpError(http.StatusBadRequest, message)
}

func NewBadGatewayError(message string) *HttpError {
	return NewHttpError(http.StatusBadGateway, message)
}
