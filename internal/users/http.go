// Copyright (c) 2026 Veribank. All rights reserved.
// Author: platform@veribank.io

package users

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/veribank/veribank/internal/platform/request"
	"github.com/veribank/veribank/internal/platform/respond"
	"github.com/veribank/veribank/internal/platform/validate"
)

// Handler implements the HTTP layer for profile management.
type Handler struct {
	userService *Service
}

// NewHandler constructs a new users [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{userService: service}
}

// Routes returns a [chi.Router] configured with the users domain's endpoints.
//
// All routes require an authenticated caller.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/me", handler.getMe)
	router.Put("/me", handler.updateMe)

	return router
}

// profileResponse is the client-facing projection of a [User].
type profileResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	NationalID string `json:"national_id"`
	Phone      string `json:"phone"`
}

func newProfileResponse(user *User) profileResponse {
	return profileResponse{
		ID:         user.ID,
		Name:       user.Name,
		Email:      user.Email,
		Role:       string(user.Role),
		NationalID: user.NationalID,
		Phone:      user.Phone,
	}
}

/*
GET /api/v1/users/me.

Description: Retrieves the full profile of the authenticated user.

Response:
  - 200: profileResponse: Fully hydrated profile
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) getMe(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.userService.Get(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, newProfileResponse(user))
}

// updateMeRequest defines the expected JSON payload for profile updates.
type updateMeRequest struct {
	Name       string `json:"name"`
	NationalID string `json:"national_id"`
	Phone      string `json:"phone"`
}

// updateMeResponse carries the updated profile together with the reissued
// credential pair. Clients must swap to the new pair immediately since the
// old one is invalidated by the update.
type updateMeResponse struct {
	User         profileResponse `json:"user"`
	AccessToken  string          `json:"accessToken"`
	RefreshToken string          `json:"refreshToken"`
}

/*
PUT /api/v1/users/me.

Description: Overwrites the authenticated user's mutable profile fields and
reissues their credential pair.

Request:
  - body: updateMeRequest

Response:
  - 200: updateMeResponse: Updated profile and fresh credentials
  - 400: ErrInvalidJSON/Validation: Invalid input data
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) updateMe(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateMeRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	v.Required("name", input.Name).MinLen("name", input.Name, 2).MaxLen("name", input.Name, 100).
		MaxLen("national_id", input.NationalID, 32).
		MaxLen("phone", input.Phone, 32)

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, accessToken, refreshToken, err := handler.userService.UpdateProfile(request.Context(), userID, ProfileUpdate{
		Name:       input.Name,
		NationalID: input.NationalID,
		Phone:      input.Phone,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, updateMeResponse{
		User:         newProfileResponse(user),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}
