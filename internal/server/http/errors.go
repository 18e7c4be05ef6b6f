package http

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/imagekeeper/internal/common"
)

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

type errorMapping struct {
	target  error
	status  int
	message string
}

// Order matters: the first match wins.
var errorMappings = []errorMapping{
	{common.ErrNoPendingRequest, http.StatusBadRequest, "No OTP request found for this email"},
	{common.ErrOTPExpired, http.StatusBadRequest, "OTP has expired. Please request a new one."},
	{common.ErrInvalidOTP, http.StatusBadRequest, "Invalid OTP"},
	{common.ErrInvalidCredentials, http.StatusBadRequest, "Invalid email or password"},
	{common.ErrPasswordMismatch, http.StatusBadRequest, "New password and confirm password do not match"},
	{common.ErrEmailNotVerified, http.StatusForbidden, "Please verify your email address before logging in. Check your email for the verification OTP."},
	{common.ErrTokenMalformed, http.StatusUnauthorized, "Invalid token format"},
	{common.ErrTokenExpired, http.StatusUnauthorized, "Invalid or expired token"},
	{common.ErrTokenBadSignature, http.StatusUnauthorized, "Invalid or expired token"},
	{common.ErrorUnauthorized, http.StatusUnauthorized, "Access denied. No token provided."},
	{common.ErrorNotFound, http.StatusNotFound, "Not found"},
	{common.ErrUpstream, http.StatusBadGateway, "Upload failed. Please try again."},
}

// statusFor maps a service error to a status code and a stable message.
func statusFor(err error) (int, string) {
	var ve *common.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, ve.Error()
	}

	var ce *common.ConflictError
	if errors.As(err, &ce) {
		return http.StatusBadRequest, ce.Reason
	}
	if errors.Is(err, common.ErrAlreadyExists) {
		return http.StatusBadRequest, "Already exists"
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status, m.message
		}
	}

	return http.StatusInternalServerError, "Server error"
}

func (h *handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)

	if status >= http.StatusInternalServerError {
		h.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err, "request_id", requestID(r))
	}

	resp := errorResponse{Message: msg}
	if h.dev {
		resp.Error = err.Error()
	}
	writeJSON(w, status, resp)
}
