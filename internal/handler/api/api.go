// Package api serves the address validation JSON API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dukerupert/addressvalidation/internal/address"
	"github.com/dukerupert/addressvalidation/internal/client"
	"github.com/dukerupert/addressvalidation/internal/domain"
	"github.com/dukerupert/addressvalidation/internal/request"
	"github.com/dukerupert/addressvalidation/internal/validation"
)

// AddressService is the part of client.Client the handlers use.
type AddressService interface {
	Validate(ctx context.Context, addr address.Input, opts client.ValidateOptions) (*validation.Result, error)
	ProvideFeedback(ctx context.Context, responseID string, conclusion request.FeedbackConclusion) error
	ClearCache(ctx context.Context) error
}

// Handler serves the /api routes.
type Handler struct {
	service  AddressService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a handler.
func NewHandler(service AddressService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)

	return &Handler{
		service:  service,
		validate: v,
		logger:   logger,
	}
}

func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

// decode reads a JSON body into dst and runs struct validation.
func (h *Handler) decode(r *http.Request, op string, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return domain.Errorf(domain.ETOOLARGE, op, "Request body too large")
		case errors.Is(err, io.EOF):
			return domain.Invalid(op, "Request body is required")
		default:
			return domain.WrapError(err, domain.EINVALID, op, "Request body is not valid JSON: "+err.Error())
		}
	}

	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return domain.Internal(err, op, "request validation failed")
		}
		var out error = &domain.ValidationError{Op: op, Fields: map[string]string{}}
		for _, fe := range verrs {
			out = domain.AddFieldError(out, fe.Field(), fieldMessage(fe))
		}
		return out
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// upstreamError maps client failures to domain errors the HTTP layer can
// render. Upstream messages are only passed through for rejected input.
func upstreamError(err error, op string) error {
	switch client.KindOf(err) {
	case client.KindTransport:
		if errors.Is(err, context.DeadlineExceeded) {
			return &domain.Error{Code: domain.ETIMEOUT, Op: op, Message: "The address validation service timed out", Err: err}
		}
		return domain.Unavailable(err, op, "The address validation service could not be reached")
	case client.KindHTTPStatus, client.KindAPI:
		switch upstreamStatus(err) {
		case http.StatusBadRequest:
			return domain.WrapError(err, domain.EINVALID, op, "The address validation service rejected the request: "+upstreamMessage(err))
		case http.StatusTooManyRequests:
			return domain.WrapError(err, domain.ERATELIMIT, op, "The address validation quota is exhausted")
		default:
			return domain.Unavailable(err, op, "The address validation service returned an error")
		}
	case client.KindDecode:
		return domain.Unavailable(err, op, "The address validation service returned an unreadable response")
	case client.KindInvalid:
		return domain.WrapError(err, domain.EINVALID, op, err.Error())
	default:
		return domain.Internal(err, op, "address validation failed")
	}
}

func upstreamStatus(err error) int {
	var statusErr *client.HTTPStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}

func upstreamMessage(err error) string {
	var statusErr *client.HTTPStatusError
	if errors.As(err, &statusErr) && statusErr.Message != "" {
		return statusErr.Message
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return "no details"
}
