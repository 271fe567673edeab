// Copyright (c) 2026 Veribank. All rights reserved.
// Author: platform@veribank.io

package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veribank/veribank/internal/platform/apperr"
	"github.com/veribank/veribank/internal/platform/validate"
)

/*
TestValidator_ChainCollectsAllFailures verifies that every failed rule in a
chain is reported, not just the first.
*/
func TestValidator_ChainCollectsAllFailures(t *testing.T) {
	v := &validate.Validator{}
	v.Required("email", "").
		MinLen("password", "short", 8).
		Positive("amount", -100)

	err := v.Err()
	require.Error(t, err)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "VALIDATION_ERROR", appError.Code)
	assert.Len(t, appError.Details, 3)
}

/*
TestValidator_PassingChainReturnsNil verifies that a fully valid chain yields
no error.
*/
func TestValidator_PassingChainReturnsNil(t *testing.T) {
	v := &validate.Validator{}
	v.Required("email", "ada@example.com").
		Email("email", "ada@example.com").
		MinLen("password", "correct horse battery", 8).
		Positive("amount", 2500)

	assert.NoError(t, v.Err())
	assert.False(t, v.HasErrors())
}

/*
TestValidator_Email verifies RFC 5322 address parsing.
*/
func TestValidator_Email(t *testing.T) {
	valid := []string{"a@x.com", "Ada Lovelace <ada@example.com>"}
	invalid := []string{"", "not-an-email", "@missing.local"}

	for _, value := range valid {
		v := &validate.Validator{}
		assert.NoError(t, v.Email("email", value).Err(), "expected %q to be valid", value)
	}
	for _, value := range invalid {
		v := &validate.Validator{}
		assert.Error(t, v.Email("email", value).Err(), "expected %q to be invalid", value)
	}
}

/*
TestValidator_UUID verifies UUID format matching regardless of case.
*/
func TestValidator_UUID(t *testing.T) {
	v := &validate.Validator{}
	assert.NoError(t, v.UUID("id", "0195A2B4-7C1D-7E2F-8A3B-4C5D6E7F8A9B").Err())

	v = &validate.Validator{}
	assert.Error(t, v.UUID("id", "not-a-uuid").Err())
}

/*
TestValidator_OneOf verifies membership checks against an allowed set.
*/
func TestValidator_OneOf(t *testing.T) {
	v := &validate.Validator{}
	assert.NoError(t, v.OneOf("kind", "deposit", "deposit", "withdraw").Err())

	v = &validate.Validator{}
	assert.Error(t, v.OneOf("kind", "transfer", "deposit", "withdraw").Err())
}
