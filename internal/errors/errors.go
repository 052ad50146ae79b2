package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so the transport layer can pick a status without
// knowing about individual conditions.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindUnauthorized
	KindForbidden
	KindConflict
	KindInvalidInput
	KindUpstreamFailure
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	case KindInvalidInput:
		return "invalid_input"
	case KindUpstreamFailure:
		return "upstream_failure"
	default:
		return "internal"
	}
}

// Error is a classified failure. The message is safe to return to a client.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// New creates a classified error.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Invalid creates an InvalidInput error with a formatted message.
func Invalid(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidInput, Message: fmt.Sprintf(format, args...)}
}

var (
	// Identity
	ErrAccountNotFound           = New(KindNotFound, "A user with this email does not exist in the system.")
	ErrTenantNotFound            = New(KindNotFound, "Customer not found.")
	ErrNotSuperuser              = New(KindForbidden, "The user doesn't have enough privileges.")
	ErrSuperuserTierTooLow       = New(KindForbidden, "The superuser role is not allowed to perform this action.")
	ErrNoAccessToTenant          = New(KindForbidden, "The user has no access to this customer.")
	ErrAccountNotActiveForTenant = New(KindForbidden, "This user is not active.")
	ErrRoleNotAllowed            = New(KindForbidden, "The user is not allowed to perform this action.")

	// Access tokens
	ErrInvalidAccessToken = New(KindUnauthorized, "Could not validate credentials.")
	ErrNotSignedIn        = New(KindUnauthorized, "The user is not authenticated.")

	// Magic links
	ErrMagicLinkExpired          = New(KindUnauthorized, "The token has expired.")
	ErrMagicLinkInvalidSignature = New(KindInvalidInput, "The token is invalid.")
	ErrMagicLinkNotFound         = New(KindNotFound, "The token was not found.")
	ErrMagicLinkUsed             = New(KindUnauthorized, "The token has already been used.")
	ErrMagicLinkRevoked          = New(KindUnauthorized, "The token has been revoked.")

	// Refresh tokens
	ErrInvalidRefreshToken  = New(KindInvalidInput, "The refresh token is invalid.")
	ErrRefreshTokenNotFound = New(KindNotFound, "The refresh token was not found.")
	ErrRefreshTokenRevoked  = New(KindUnauthorized, "The refresh token has been revoked.")
	ErrRefreshTokenExpired  = New(KindUnauthorized, "The refresh token has expired.")

	// Providers
	ErrProviderAuthFailed  = New(KindUpstreamFailure, "Authentication with the identity provider failed.")
	ErrUnsupportedProvider = New(KindInvalidInput, "The login provider is not supported.")

	// Management
	ErrUserNotFound           = New(KindNotFound, "User not found.")
	ErrInvalidUserName        = New(KindInvalidInput, "Invalid user name.")
	ErrInvalidUserEmail       = New(KindInvalidInput, "Invalid user email.")
	ErrInvalidRole            = New(KindInvalidInput, "Invalid user role requirements.")
	ErrBindingExists          = New(KindConflict, "A user with this email already exists for that customer.")
	ErrBindingNotFound        = New(KindNotFound, "This user has no access to this customer.")
	ErrInvalidCampaignName    = New(KindInvalidInput, "Invalid campaign name.")
	ErrCampaignExists         = New(KindConflict, "A campaign with this name already exists for that customer.")
	ErrCampaignNotFound       = New(KindNotFound, "Campaign not found.")
	ErrCampaignNotAssociated  = New(KindNotFound, "Campaign not associated with the customer.")
	ErrInvalidCampaignEndDate = New(KindInvalidInput, "Invalid campaign end date.")
	ErrInvalidCampaignInput   = New(KindInvalidInput, "Invalid campaign targeting.")

	ErrInternal = New(KindInternal, "Internal server error.")
)

// KindOf returns the kind of the first classified error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the client-safe message for err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return ErrInternal.Message
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
