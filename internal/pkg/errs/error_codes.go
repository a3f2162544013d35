/*
Package errs provides the application error type and its code constants.

Codes identify business and system failures both inside the server and on the
wire, where clients branch on them instead of on HTTP status.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRequestEntityTooLarge indicates that the request body size exceeded the server limit.
	ErrRequestEntityTooLarge = 1006

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1007
)

// 2xxx: Event, Chat and Place Business Logic Errors
const (
	// ErrEventNotFound indicates that the referenced event does not exist.
	ErrEventNotFound = 2101

	// ErrEventInvalid indicates that an event draft failed validation. The message carries the reason.
	ErrEventInvalid = 2102

	// ErrEventFull indicates that the event has reached its capacity.
	ErrEventFull = 2103

	// ErrAlreadyJoined indicates that the viewer is already a participant.
	ErrAlreadyJoined = 2104

	// ErrNotParticipant indicates that the viewer is not a participant of the event.
	ErrNotParticipant = 2105

	// ErrCreatorCannotJoin indicates that the creator attempted to join their own event.
	ErrCreatorCannotJoin = 2106

	// ErrCreatorCannotLeave indicates that the creator attempted to leave their own event.
	ErrCreatorCannotLeave = 2107

	// ErrNotEventCreator indicates that only the creator may perform the action.
	ErrNotEventCreator = 2108

	// ErrEventNotActive indicates that the event is completed or cancelled.
	ErrEventNotActive = 2109

	// ErrMessageContentTooLong indicates that the chat message exceeded the maximum length.
	ErrMessageContentTooLong = 2201

	// ErrMessageEmpty indicates that the chat message has no content.
	ErrMessageEmpty = 2202

	// ErrChatAccessDenied indicates that the viewer is neither creator nor participant.
	ErrChatAccessDenied = 2203

	// ErrPlaceQueryTooShort indicates that a place search query is shorter than two characters.
	ErrPlaceQueryTooShort = 2301

	// ErrGeocodeMiss indicates that no coordinates could be found for an address.
	ErrGeocodeMiss = 2302
)

// 3xxx: User, Session, and Security Errors
const (
	// ErrPowChallengeRequired indicates the client must complete a Proof-of-Work challenge first.
	ErrPowChallengeRequired = 3001

	// ErrPowChallengeInvalid indicates that the PoW proof provided by the client is invalid.
	ErrPowChallengeInvalid = 3002

	// ErrSessionKicked indicates that the push connection was replaced by a newer one.
	ErrSessionKicked = 3004

	// ErrAlreadyLoggedIn indicates that an authenticated user attempted to log in or register again.
	ErrAlreadyLoggedIn = 3005

	// ErrInvalidEmail indicates that the email address is malformed.
	ErrInvalidEmail = 3006

	// ErrInvalidPassword indicates that the password does not meet length requirements.
	ErrInvalidPassword = 3007

	// ErrUserAlreadyExists indicates that the email address is already registered.
	ErrUserAlreadyExists = 3008

	// ErrInvalidCredentials indicates an email/password mismatch.
	ErrInvalidCredentials = 3009

	// ErrUserNotFound indicates that the account no longer exists.
	ErrUserNotFound = 3010

	// ErrUnauthorized indicates a missing or invalid session token.
	ErrUnauthorized = 3011

	// ErrInvalidName indicates that the display name is empty or too long.
	ErrInvalidName = 3012

	// ErrDemoLoginDisabled indicates that demo sessions are turned off.
	ErrDemoLoginDisabled = 3013
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000

	// ErrFileStorageFailed indicates the object storage could not serve the request.
	ErrFileStorageFailed = 5001

	// ErrGeocodeUnavailable indicates the geocoding service and its fallbacks failed.
	ErrGeocodeUnavailable = 5002
)
