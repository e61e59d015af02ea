package api

import (
	"net/http"
	"strings"

	"github.com/dukerupert/addressvalidation/internal/address"
	"github.com/dukerupert/addressvalidation/internal/client"
	"github.com/dukerupert/addressvalidation/internal/domain"
	"github.com/dukerupert/addressvalidation/internal/middleware"
	"github.com/dukerupert/addressvalidation/internal/request"
)

type validateRequest struct {
	Address            *address.Input           `json:"address" validate:"required"`
	EnableUSPSCASS     *bool                    `json:"enableUspsCass"`
	LanguageOptions    *request.LanguageOptions `json:"languageOptions"`
	PreviousResponseID string                   `json:"previousResponseId" validate:"max=256"`
	SessionToken       string                   `json:"sessionToken" validate:"max=256"`
	SkipCache          bool                     `json:"skipCache"`
}

// Validate handles POST /api/validate and answers with the result summary.
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	const op = "address.validate"

	var req validateRequest
	if err := h.decode(r, op, &req); err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	if isBlank(*req.Address) {
		middleware.WriteError(w, r, domain.NewValidationError(op, "address", "must not be empty"))
		return
	}

	result, err := h.service.Validate(r.Context(), *req.Address, client.ValidateOptions{
		Options: request.Options{
			EnableUSPSCASS:  req.EnableUSPSCASS,
			LanguageOptions: req.LanguageOptions,
		},
		PreviousResponseID: req.PreviousResponseID,
		SessionToken:       req.SessionToken,
		SkipCache:          req.SkipCache,
	})
	if err != nil {
		middleware.WriteError(w, r, upstreamError(err, op))
		return
	}

	middleware.GetLogger(r.Context(), h.logger).Debug("validation served",
		"response_id", result.ResponseID(),
		"score", result.Score(),
	)
	middleware.WriteJSON(w, http.StatusOK, result.Summary())
}

func isBlank(in address.Input) bool {
	if !in.IsStructured() {
		return strings.TrimSpace(in.Text()) == ""
	}
	return in.Normalize().IsZero()
}

type feedbackRequest struct {
	ResponseID string                     `json:"responseId" validate:"required,max=256"`
	Conclusion request.FeedbackConclusion `json:"conclusion" validate:"required"`
}

// Feedback handles POST /api/feedback.
func (h *Handler) Feedback(w http.ResponseWriter, r *http.Request) {
	const op = "feedback.create"

	var req feedbackRequest
	if err := h.decode(r, op, &req); err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	if !req.Conclusion.Valid() {
		middleware.WriteError(w, r, domain.NewValidationError(op, "conclusion",
			"must be one of: VALIDATED_VERSION_USED USER_VERSION_USED UNVALIDATED_VERSION_USED UNUSED"))
		return
	}

	if err := h.service.ProvideFeedback(r.Context(), req.ResponseID, req.Conclusion); err != nil {
		middleware.WriteError(w, r, upstreamError(err, op))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearCache handles DELETE /api/cache.
func (h *Handler) ClearCache(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ClearCache(r.Context()); err != nil {
		middleware.WriteError(w, r, domain.Internal(err, "cache.clear", "failed to clear cache"))
		return
	}
	middleware.GetLogger(r.Context(), h.logger).Info("cache cleared via api")
	w.WriteHeader(http.StatusNoContent)
}
