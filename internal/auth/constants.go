// Copyright (c) 2026 Veribank. All rights reserved.
// Author: platform@veribank.io

package auth

import "time"

const (
	// Random bytes in a generated password reset token
	ResetTokenLength = 32

	// Lifetime of a password reset token in the cache
	ResetTokenTTL = 30 * time.Minute
)
