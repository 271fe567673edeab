// Copyright (c) 2026 Veribank. All rights reserved.
// Author: platform@veribank.io

/*
Package users implements the user directory: the durable record of account
holders consulted by the authentication core.

It defines the core domain entity (User) and profile lifecycle logic.

# Architecture

This layer is the "Truth" for identity data. The authentication core treats
it as an external collaborator reached through a narrow lookup interface;
nothing in this package depends on tokens or sessions.
*/
package users

import (
	"time"

	"github.com/veribank/veribank/internal/platform/sec"
)

// # Domain Entities

// User represents a registered Veribank account holder.
type User struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"` // Explicitly omitted from JSON for security.
	Role         sec.UserRole `json:"role"`
	NationalID   string       `json:"national_id,omitempty"`
	Phone        string       `json:"phone,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// Principal projects the identity claims embedded into issued credentials.
// The projection is immutable once signed into a token; profile edits only
// take effect through a fresh token pair.
func (u *User) Principal() sec.Principal {
	return sec.Principal{
		UserID:     u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		NationalID: u.NationalID,
		Phone:      u.Phone,
	}
}

// # Field Identifiers

// Global field names for validation and identity mapping in the users domain.
const (
	FieldName       = "name"
	FieldEmail      = "email"
	FieldPassword   = "password"
	FieldNationalID = "national_id"
	FieldPhone      = "phone"
)
