package handler

import (
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/shopfront/shopfront/internal/domain/auth"
	"github.com/shopfront/shopfront/internal/domain/landing"
	"github.com/shopfront/shopfront/internal/domain/order"
	"github.com/shopfront/shopfront/internal/domain/product"
)

// ValidationError carries one message per offending request field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "validation failed" }

// errorBody is the JSON error envelope for every failed request.
type errorBody struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// bindAndValidate decodes the request body into payload and checks its
// validate tags, converting violations into a field-keyed ValidationError.
func (h *Handler) bindAndValidate(c echo.Context, payload any) error {
	if err := c.Bind(payload); err != nil {
		return &ValidationError{Fields: map[string]string{"body": "malformed request body"}}
	}

	err := h.validate.Struct(payload)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fieldPath(fe)] = fieldMessage(fe)
	}
	return &ValidationError{Fields: fields}
}

// fieldPath strips the payload type name from the error namespace, leaving
// e.g. "customer.name".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "eqfield":
		return "does not match"
	case "gt":
		return "must be greater than " + fe.Param()
	case "min":
		switch fe.Kind() {
		case reflect.String:
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		case reflect.Slice:
			return fmt.Sprintf("must contain at least %s items", fe.Param())
		default:
			return "must be at least " + fe.Param()
		}
	case "max":
		switch fe.Kind() {
		case reflect.String:
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		case reflect.Slice:
			return fmt.Sprintf("must contain at most %s items", fe.Param())
		default:
			return "must be at most " + fe.Param()
		}
	default:
		return "is invalid"
	}
}

// respondError maps domain errors to HTTP responses. Anything unrecognized is
// logged and reported as a 500 without leaking internals.
func (h *Handler) respondError(c echo.Context, err error) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return c.JSON(http.StatusBadRequest, errorBody{Message: ve.Error(), Fields: ve.Fields})
	}

	var pnf *order.ProductNotFoundError
	if errors.As(err, &pnf) {
		return c.JSON(http.StatusUnprocessableEntity, errorBody{Message: pnf.Error()})
	}
	var iq *order.InvalidQuantityError
	if errors.As(err, &iq) {
		return c.JSON(http.StatusUnprocessableEntity, errorBody{Message: iq.Error()})
	}

	switch {
	case errors.Is(err, order.ErrEmptyLines),
		errors.Is(err, order.ErrNegativeShipping),
		errors.Is(err, order.ErrInvalidStatus):
		return c.JSON(http.StatusBadRequest, errorBody{Message: err.Error()})

	case errors.Is(err, product.ErrNotFound),
		errors.Is(err, order.ErrNotFound),
		errors.Is(err, landing.ErrNotFound):
		return c.JSON(http.StatusNotFound, errorBody{Message: err.Error()})

	case errors.Is(err, landing.ErrSlugTaken),
		errors.Is(err, auth.ErrEmailTaken):
		return c.JSON(http.StatusConflict, errorBody{Message: err.Error()})

	case errors.Is(err, auth.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, errorBody{Message: err.Error()})
	}

	zctx.From(c.Request().Context()).Error("request failed", zap.Error(err))
	return c.JSON(http.StatusInternalServerError, errorBody{Message: "internal server error"})
}

// idParam parses a positive integer path parameter.
func idParam(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		return 0, &ValidationError{Fields: map[string]string{name: "must be a positive integer"}}
	}
	return id, nil
}
