package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"massage-booking/internal/delivery/dto"
	"massage-booking/internal/delivery/http/middleware"
	"massage-booking/internal/usecase"
	"massage-booking/pkg/response"
	"massage-booking/pkg/validator"
)

type AuthHandler struct {
	authUsecase usecase.AuthUsecase
	validator   *validator.CustomValidator
}

func NewAuthHandler(authUsecase usecase.AuthUsecase, validator *validator.CustomValidator) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		validator:   validator,
	}
}

// decodeValidated reads a JSON body into dst and runs struct validation on it.
// It writes the error response itself and reports whether the handler may continue.
func (h *AuthHandler) decodeValidated(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return false
	}
	if err := h.validator.Validate(dst); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return false
	}
	return true
}

func writeAuthError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, usecase.ErrEmailAlreadyExists):
		response.Error(w, http.StatusConflict, "Email already exists", nil)
	case errors.Is(err, usecase.ErrInvalidCredentials):
		response.Error(w, http.StatusUnauthorized, "Invalid email or password", nil)
	case errors.Is(err, usecase.ErrInvalidToken), errors.Is(err, usecase.ErrTokenRevoked):
		response.Error(w, http.StatusUnauthorized, err.Error(), nil)
	case errors.Is(err, usecase.ErrAuthenticationRequired):
		response.Unauthorized(w, "Invalid token")
	case errors.Is(err, usecase.ErrUserNotFound):
		response.NotFound(w, "User not found")
	default:
		response.InternalServerError(w, fallback)
	}
}

// Register creates a customer account
// @Summary Register a new customer
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Register Request"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !h.decodeValidated(w, r, &req) {
		return
	}

	user, err := h.authUsecase.Register(r.Context(), &req)
	if err != nil {
		writeAuthError(w, err, "Failed to register user")
		return
	}
	response.Success(w, http.StatusCreated, "User registered successfully", user)
}

// Login exchanges credentials for an access and refresh token pair
// @Summary Login user
// @Tags Auth
// @Param request body dto.LoginRequest true "Login Request"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !h.decodeValidated(w, r, &req) {
		return
	}

	tokens, err := h.authUsecase.Login(r.Context(), &req)
	if err != nil {
		writeAuthError(w, err, "Failed to login")
		return
	}
	response.Success(w, http.StatusOK, "Login successful", tokens)
}

// Logout revokes the presented access token and, when given, the refresh token
// @Summary Logout user
// @Tags Auth
// @Security BearerAuth
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, hasUser := middleware.GetUserIDFromContext(r.Context())
	tokenID, hasToken := middleware.GetTokenIDFromContext(r.Context())
	if !hasUser || !hasToken {
		response.Unauthorized(w, "Invalid token")
		return
	}

	// body is optional
	var req dto.LogoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	err := h.authUsecase.Logout(r.Context(), userID, tokenID, &req)
	switch {
	case err == nil:
		response.Success(w, http.StatusOK, "Logout successful", nil)
	case errors.Is(err, usecase.ErrInvalidToken):
		response.Error(w, http.StatusBadRequest, "Invalid refresh token", nil)
	default:
		response.InternalServerError(w, "Failed to logout")
	}
}

// RefreshToken rotates a refresh token into a new pair
// @Summary Refresh access token
// @Tags Auth
// @Router /auth/refresh-token [post]
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshTokenRequest
	if !h.decodeValidated(w, r, &req) {
		return
	}

	tokens, err := h.authUsecase.RefreshToken(r.Context(), &req)
	if err != nil {
		writeAuthError(w, err, "Failed to refresh token")
		return
	}
	response.Success(w, http.StatusOK, "Token refreshed successfully", tokens)
}

// GetCurrentUser returns the caller together with the role resolved for this request
// @Summary Get current user
// @Tags Auth
// @Security BearerAuth
// @Router /auth/me [get]
func (h *AuthHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.authUsecase.GetCurrentUser(r.Context(), middleware.GetPrincipalFromContext(r.Context()))
	if err != nil {
		writeAuthError(w, err, "Failed to get user info")
		return
	}
	response.Success(w, http.StatusOK, "User retrieved successfully", user)
}
