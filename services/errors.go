package services

import "errors"

// Shared errors surfaced by the service layer and mapped to HTTP in handlers.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Lifecycle admission failures. User-facing and recoverable; surfaced as
	// an inline message, never retried automatically.
	ErrCapacityExceeded = errors.New("game is already full")
	ErrAlreadyJoined    = errors.New("player is already on this game's roster")
	ErrEventClosed      = errors.New("game is completed or cancelled")

	// ErrStoreConflict marks a concurrent-write rejection. The caller that
	// issued the join retries; it is never silently swallowed.
	ErrStoreConflict = errors.New("conflicting concurrent update, retry the request")

	// Validation of game parameters against policy.
	ErrGameInvalidPlayerBounds = errors.New("min players must be at least 2 and not exceed max players")
	ErrGameInvalidSkillRange   = errors.New("invalid skill range")
	ErrGameInvalidTimeType     = errors.New("invalid time type")
	ErrGameScheduleRequired    = errors.New("scheduled time is required")

	// Notification pipeline. Neither is ever surfaced to an end user: the
	// push channel is best-effort by design.
	ErrInvalidDestination  = errors.New("push destination token is missing or malformed")
	ErrProviderUnavailable = errors.New("push provider unavailable")

	// Chat.
	ErrChatNotMember    = errors.New("sender is not on this game's roster")
	ErrChatBodyRequired = errors.New("message body is required")

	// Auth and profile.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrPasswordTooShort   = errors.New("password is too short")
	ErrNameRequired       = errors.New("name is required")
	ErrEmailRequired      = errors.New("email is required")
	ErrUserEmailConflict  = errors.New("email address is already in use")
	ErrInvalidSkillLevel  = errors.New("unknown skill level")
	ErrSportNameRequired  = errors.New("sport name is required")
	ErrSportNameConflict  = errors.New("sport name is already in use")

	// Entity-specific lookups.
	ErrGameNotFound  = errors.New("game not found")
	ErrUserNotFound  = errors.New("user not found")
	ErrSportNotFound = errors.New("sport not found")
)
