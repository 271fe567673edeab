// Copyright (c) 2026 Veribank. All rights reserved.
// Author: platform@veribank.io

package sec

// # User Roles

// UserRole represents the flat authorization level embedded in a credential.
type UserRole string

const (
	// Unrestricted back-office access
	RoleAdmin UserRole = "admin"

	// Can review flagged accounts and freeze suspicious activity
	RoleOfficer UserRole = "officer"

	// Default role for registered account holders
	RoleCustomer UserRole = "customer"
)

// # Role Hierarchy

// AtLeast checks if the current role meets or exceeds the required target role.
func (r UserRole) AtLeast(target UserRole) bool {
	return r.level() >= target.level()
}

// level maps a role to a numeric hierarchy level for comparison logic.
func (r UserRole) level() int {

	// Linear scale (10-30) allows for future intermediate roles
	switch r {
	case RoleAdmin:
		return 30
	case RoleOfficer:
		return 20
	case RoleCustomer:
		return 10
	default:
		return 0
	}
}
