package domain

import "errors"

var (
	ErrRateLimited      = errors.New("rate limit exceeded")
	ErrInvalidPrompt    = errors.New("prompt is empty")
	ErrUpstream         = errors.New("completion call failed")
	ErrStoreUnavailable = errors.New("key-value store unavailable")

	ErrMissingFields      = errors.New("required fields are missing")
	ErrInvalidEmail       = errors.New("email is malformed")
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWeakPassword       = errors.New("password too short")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrUserNotFound       = errors.New("user not found")
)

// Mensagens exibidas ao usuário. Fazem parte do contrato observável da API.
const (
	MsgChattingTooFast    = "You are chatting too fast."
	MsgInvalidPrompt      = "Please enter a valid prompt."
	MsgConnectionFailed   = "API connection failed. Check your API Key."
	MsgEmptyCompletion    = "Could not retrieve history."
	MsgTooManyRegisters   = "Too many accounts created from this network. Please try again later."
	MsgTooManyLogins      = "Too many login attempts. Please try again later."
	MsgAllFieldsRequired  = "All fields are required."
	MsgInvalidEmail       = "Please enter a valid email address."
	MsgEmailExists        = "Email exists."
	MsgRegistrationFailed = "Registration failed."
	MsgInvalidCredentials = "Invalid credentials."
	MsgLoginFailed        = "Login failed."
	MsgWeakPassword       = "Password must be at least 8 chars"
	MsgUnauthorized       = "Unauthorized"
	MsgUpdateFailed       = "Failed to update profile"
	MsgProfileUpdated     = "Profile updated successfully"
)

func IsRateLimitedError(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

func IsStoreUnavailableError(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}
