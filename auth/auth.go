// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
)

// MinPasswordLength is the shortest password accepted at signup.
const MinPasswordLength = 8

// JoinCodeLength is the number of characters in a voting join code.
const JoinCodeLength = 6

const joinCodeChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// HashPassword hashes a password with bcrypt at the given cost.
func HashPassword(password string, cost int) (string, error) {
	if len(password) < MinPasswordLength {
		return "", ErrPasswordTooShort
	}
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword compares a password with its bcrypt hash.
func CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// GenerateSessionToken creates a random secure token for a login session
func GenerateSessionToken() (string, error) {
	b := make([]byte, 32) // 256 bits of entropy
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	// URL-safe base64 without padding
	return strings.TrimRight(base64.URLEncoding.EncodeToString(b), "="), nil
}

// GenerateJoinCode creates a short uppercase alphanumeric code voters type
// in to find a voting. Uniqueness is enforced by the database.
func GenerateJoinCode() (string, error) {
	b := make([]byte, JoinCodeLength)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate join code: %w", err)
	}

	code := make([]byte, JoinCodeLength)
	for i, v := range b {
		// 256 % 36 leaves a slight bias toward the first characters,
		// which is irrelevant for a lookup code
		code[i] = joinCodeChars[int(v)%len(joinCodeChars)]
	}
	return string(code), nil
}

// NormalizeCode makes a user-typed join code comparable with stored codes.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidRole reports whether role is one a profile can hold.
func ValidRole(role string) bool {
	return role == "admin" || role == "voter"
}
