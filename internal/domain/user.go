/**
 * @description
 * This file defines the user identity models and the authentication DTOs
 * exchanged with the SmartBank API. The User record is immutable from the
 * client's point of view: it is replaced wholesale on login and cleared on
 * logout.
 */

package domain

// User is the authenticated user's identity record as returned by the server.
type User struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	CountryCode string `json:"countryCode"`
	PhoneNumber string `json:"phoneNumber"`
	Address     string `json:"address"`
}

// LoginRequest is the credentials payload for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse pairs the issued credential token with the user it belongs to.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// SignupRequest is the registration payload for POST /auth/signup.
type SignupRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	CountryCode string `json:"countryCode"`
	PhoneNumber string `json:"phoneNumber"`
	Address     string `json:"address"`
}

// OTPRequest initiates the out-of-band one-time-code exchange.
type OTPRequest struct {
	Email string `json:"email"`
}

// PasswordResetRequest completes the OTP exchange with a new password.
type PasswordResetRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}
