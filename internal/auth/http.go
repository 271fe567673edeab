// Copyright (c) 2026 Veribank. All rights reserved.
// Author: platform@veribank.io

package auth

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/veribank/veribank/internal/platform/constants"
	requestutil "github.com/veribank/veribank/internal/platform/request"
	"github.com/veribank/veribank/internal/platform/respond"
	"github.com/veribank/veribank/internal/platform/validate"
)

// Handler implements the HTTP layer for the credential lifecycle.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new auth [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with the auth domain's endpoints.
//
// Every route except logout is on the authentication allow-list; logout
// requires a valid access token.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Credential lifecycle
	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/refresh-token", handler.refreshToken)
	router.Post("/logout", handler.logout)

	// Password recovery
	router.Post("/forgot-password", handler.forgotPassword)
	router.Post("/reset-password", handler.resetPassword)

	// Introspection, consumed by downstream gateway checks
	router.Get("/revoked-token", handler.revokedToken)
	router.Get("/expired-token", handler.expiredToken)

	return router
}

// # Credential Lifecycle Endpoints

// registerRequest defines the expected JSON payload for account enrollment.
type registerRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	NationalID string `json:"national_id"`
	Phone      string `json:"phone"`
}

// registerResponse carries the created account id and its first credential pair.
type registerResponse struct {
	UserID       string `json:"user_id"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

/*
POST /api/v1/auth/register.

Description: Enrolls a new customer account and issues its first credential pair.

Request:
  - body: registerRequest

Response:
  - 201: registerResponse: Account id and credential pair
  - 400: ErrInvalidJSON/Validation: Invalid input data
  - 409: ErrConflict: Email already registered
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	v.Required("name", input.Name).MinLen("name", input.Name, 2).MaxLen("name", input.Name, 100).
		Required("email", input.Email).Email("email", input.Email).
		Required("password", input.Password).MinLen("password", input.Password, 8).MaxLen("password", input.Password, 72).
		MaxLen("national_id", input.NationalID, 32).
		MaxLen("phone", input.Phone, 32)

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, pair, err := handler.authService.Register(request.Context(), RegisterInput{
		Name:       input.Name,
		Email:      input.Email,
		Password:   input.Password,
		NationalID: input.NationalID,
		Phone:      input.Phone,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, registerResponse{
		UserID:       user.ID,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// loginRequest defines credentials for an authentication attempt.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

/*
POST /api/v1/auth/login.

Description: Validates credentials under the attempt guard and issues a fresh
credential pair, orphaning any prior sessions.

Request:
  - body: loginRequest

Response:
  - 200: TokenPair: Fresh credential pair
  - 400: ErrInvalidJSON/Validation: Invalid input data
  - 401: ErrUnauthorized: Bad credentials, or a lockout message
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	v.Required("email", input.Email).Email("email", input.Email).
		Required("password", input.Password)

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	pair, err := handler.authService.Login(request.Context(), input.Email, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, pair)
}

// refreshRequest defines the payload for credential rotation.
type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

/*
POST /api/v1/auth/refresh-token.

Description: Exchanges a valid refresh token for a rotated credential pair.
The previous pair is fully invalidated.

Request:
  - body: refreshRequest

Response:
  - 200: TokenPair: Rotated credential pair
  - 400: ErrInvalidJSON/Validation: Invalid input data
  - 401: ErrUnauthorized: Invalid or expired refresh token
*/
func (handler *Handler) refreshToken(writer http.ResponseWriter, request *http.Request) {
	var input refreshRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if input.RefreshToken == "" {
		respond.Error(writer, request, validate.RequiredError("refreshToken", "This field is required"))
		return
	}

	pair, err := handler.authService.Refresh(request.Context(), input.RefreshToken)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, pair)
}

/*
POST /api/v1/auth/logout.

Description: Revokes every valid credential the authenticated user holds.

Response:
  - 204: No Content: Credentials revoked
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.Logout(request.Context(), userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Password Recovery Endpoints

// forgotPasswordRequest defines the payload to initiate a password reset.
type forgotPasswordRequest struct {
	Email string `json:"email"`
}

/*
POST /api/v1/auth/forgot-password.

Description: Initiates the password reset flow. The response is identical
whether or not the email exists, to prevent account enumeration.

Request:
  - body: forgotPasswordRequest

Response:
  - 200: message: Generic acknowledgement
  - 400: ErrInvalidJSON/Validation: Invalid input data
*/
func (handler *Handler) forgotPassword(writer http.ResponseWriter, request *http.Request) {
	var input forgotPasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	v.Required("email", input.Email).Email("email", input.Email)

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// TODO: deliver the token through the notification service once it ships
	if _, err := handler.authService.RequestPasswordReset(request.Context(), input.Email); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		constants.FieldMessage: "If that email is registered, a reset link has been sent",
	})
}

// resetPasswordRequest defines the payload to complete a password reset.
type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

/*
POST /api/v1/auth/reset-password.

Description: Completes the password reset flow and revokes every active
credential for the account.

Request:
  - body: resetPasswordRequest

Response:
  - 200: message: Confirmation
  - 400: ErrInvalidJSON/Validation: Invalid input data
  - 404: ErrNotFound: Reset token invalid or expired
*/
func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	var input resetPasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	v.Required("token", input.Token).
		Required("new_password", input.NewPassword).MinLen("new_password", input.NewPassword, 8).MaxLen("new_password", input.NewPassword, 72)

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.ResetPassword(request.Context(), input.Token, input.NewPassword); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		constants.FieldMessage: "Password has been reset",
	})
}

// # Introspection Endpoints

/*
GET /api/v1/auth/revoked-token?token=...

Description: Reports whether a credential has been revoked server-side.
Unknown tokens report true (fail-closed). The response is a bare
{success: bool} without the standard envelope, as consumed by downstream
gateway checks.

Response:
  - 200: {success: bool}
  - 400: ErrValidation: Missing token parameter
*/
func (handler *Handler) revokedToken(writer http.ResponseWriter, request *http.Request) {
	handler.introspect(writer, request, handler.authService.IsRevoked)
}

/*
GET /api/v1/auth/expired-token?token=...

Description: Reports whether a credential has passed its lifetime, by stored
flag or embedded expiry. Unknown tokens report true (fail-closed). Bare
{success: bool} response, like the revocation probe.

Response:
  - 200: {success: bool}
  - 400: ErrValidation: Missing token parameter
*/
func (handler *Handler) expiredToken(writer http.ResponseWriter, request *http.Request) {
	handler.introspect(writer, request, handler.authService.IsExpired)
}

// introspect runs one token state probe and writes the bare boolean shape.
func (handler *Handler) introspect(
	writer http.ResponseWriter,
	request *http.Request,
	probe func(ctx context.Context, tokenValue string) (bool, error),
) {
	tokenValue := request.URL.Query().Get("token")
	if tokenValue == "" {
		respond.Error(writer, request, validate.RequiredError("token", "This query parameter is required"))
		return
	}

	result, err := probe(request.Context(), tokenValue)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.JSON(writer, http.StatusOK, map[string]bool{
		constants.FieldSuccess: result,
	})
}
