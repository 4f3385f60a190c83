// Package repository holds the MySQL and MongoDB persistence for dorms,
// reviews, users and refresh tokens.
package repository

import "errors"

// ErrEmailExists is returned when registering an email that is taken.
var ErrEmailExists = errors.New("email already exists")

// ErrInvalidRefresh covers unknown, revoked and expired refresh tokens.
var ErrInvalidRefresh = errors.New("invalid refresh token")
