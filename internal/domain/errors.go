package domain

import "errors"

var (
	// ErrProductNotFound is returned when a product is absent from the
	// merged collection and every single-shop fallback collection.
	ErrProductNotFound = errors.New("product not found")

	// ErrAnalyticsNotFound is returned when no analytics document exists
	// for the requested category.
	ErrAnalyticsNotFound = errors.New("no analytics for category")

	// ErrQueryFailed wraps an underlying database failure.
	ErrQueryFailed = errors.New("query execution failed")

	// ErrInvalidCredentials is returned for a wrong email/password pair.
	ErrInvalidCredentials = errors.New("incorrect email or password")

	// ErrEmailTaken is returned when signing up with a registered email.
	ErrEmailTaken = errors.New("email already registered")

	// ErrEmailNotVerified is returned when signing in before verification.
	ErrEmailNotVerified = errors.New("email not verified")

	// ErrUserNotFound is returned when an account lookup misses.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidCode is returned for a wrong verification or reset code.
	ErrInvalidCode = errors.New("invalid verification code")

	// ErrCodeExpired is returned when a reset code has expired.
	ErrCodeExpired = errors.New("verification code has expired")

	// ErrInvalidToken is returned for an unparseable or unverifiable token.
	ErrInvalidToken = errors.New("invalid token")
)
