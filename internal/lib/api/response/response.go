package response

import (
	"fmt"
	"net/http"

	"finlet/internal/lib/validate"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

const StatusOK = "ok"

type Response struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Message string            `json:"message"`
	Code    string            `json:"code,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func OK() Response {
	return Response{Status: StatusOK}
}

func Error(msg string) ErrorResponse {
	return ErrorResponse{Message: msg}
}

func ErrorWithCode(msg, code string) ErrorResponse {
	return ErrorResponse{Message: msg, Code: code}
}

// ValidationError reports every failed rule of a validator error.
func ValidationError(errs validator.ValidationErrors) ErrorResponse {
	return InvalidFields(validate.Fields(errs))
}

func InvalidFields(fields map[string]string) ErrorResponse {
	return ErrorResponse{
		Message: "Validation failed",
		Code:    "VALIDATION_ERROR",
		Fields:  fields,
	}
}

func JSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

func Unauthorized(w http.ResponseWriter, r *http.Request) {
	JSON(w, r, http.StatusUnauthorized, Error("Unauthorized"))
}

func NotFound(w http.ResponseWriter, r *http.Request) {
	JSON(w, r, http.StatusNotFound, Error(fmt.Sprintf("Not Found - %s", r.URL.Path)))
}

func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	JSON(w, r, http.StatusMethodNotAllowed, Error("Method Not Allowed"))
}

// Fault is the generic 500 body; the cause is only ever logged.
func Fault(w http.ResponseWriter, r *http.Request) {
	JSON(w, r, http.StatusInternalServerError, Error("Internal Server Error"))
}
