package http

import (
	"net/http"
	"strings"

	"github.com/dmitrijs2005/imagekeeper/internal/server/models"
	"github.com/dmitrijs2005/imagekeeper/internal/server/services"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type otpResponse struct {
	Message string `json:"message"`
	Email   string `json:"email"`
	OTP     string `json:"otp,omitempty"`
}

type verifyRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type verifyResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message string            `json:"message"`
	Token   string            `json:"token"`
	User    models.PublicUser `json:"user"`
}

type userResponse struct {
	Message string             `json:"message,omitempty"`
	User    *models.PublicUser `json:"user"`
}

type resetPasswordRequest struct {
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

type profileRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

const avatarField = "profilePicture"

func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	res, err := h.users.Register(r.Context(), services.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, otpResponse{
		Message: "Registration successful. OTP sent to your email for verification.",
		Email:   res.Email,
		OTP:     res.EchoOTP,
	})
}

func (h *handler) verifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	id, err := h.users.VerifyOTP(r.Context(), req.Email, strings.TrimSpace(req.OTP))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, verifyResponse{Message: "Email verified successfully", UserID: id})
}

func (h *handler) sendOTP(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	res, err := h.users.ResendOTP(r.Context(), req.Email)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, otpResponse{
		Message: "OTP sent successfully to your email address",
		Email:   res.Email,
		OTP:     res.EchoOTP,
	})
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	res, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Message: "Login successful", Token: res.Token, User: res.User})
}

func (h *handler) me(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFrom(r.Context())

	u, err := h.users.GetProfile(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, userResponse{User: u})
}

func (h *handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFrom(r.Context())

	var req resetPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.users.ResetPassword(r.Context(), userID, req.NewPassword, req.ConfirmPassword); err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Password reset successfully"})
}

// updateProfile accepts either multipart/form-data (with an optional
// profilePicture file) or a JSON body.
func (h *handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFrom(r.Context())

	var in services.ProfileInput

	if isMultipart(r) {
		form, err := h.readMultipart(w, r, avatarField)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		in.Username = form.value("username")
		in.Email = form.value("email")
		in.Password = form.value("password")
		in.Avatar = form.file
	} else {
		var req profileRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.writeError(w, r, err)
			return
		}
		in.Username, in.Email, in.Password = req.Username, req.Email, req.Password
	}

	res, err := h.users.UpdateProfile(r.Context(), userID, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	msg := "Profile updated successfully"
	if res.NoChanges {
		msg = "No changes made"
	}
	writeJSON(w, http.StatusOK, userResponse{Message: msg, User: &res.User})
}

