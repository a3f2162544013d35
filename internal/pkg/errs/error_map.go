/*
Package errs provides the application error type and its code constants.

This file maps every code to its user-facing message and HTTP status.
*/
package errs

import "net/http"

// errorMap stores the CustomError template for every application error code.
// A zero Status is reported as 200 with the code in the envelope.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:         {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrUnsupportedMediaType:  {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:     {Code: ErrInvalidJSONFormat, Message: "Unsupported request format.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:    {Code: ErrExtraContentInBody, Message: "Request contains unexpected data.", Status: http.StatusBadRequest},
	ErrRequestEntityTooLarge: {Code: ErrRequestEntityTooLarge, Message: "Request size is too large.", Status: http.StatusRequestEntityTooLarge},
	ErrRateLimitExceeded:     {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: Event, Chat and Place Business Logic Errors
	ErrEventNotFound:      {Code: ErrEventNotFound, Message: "Event not found.", Status: http.StatusNotFound},
	ErrEventInvalid:       {Code: ErrEventInvalid, Message: "%s", Status: http.StatusBadRequest},
	ErrEventFull:          {Code: ErrEventFull, Message: "Event is full."},
	ErrAlreadyJoined:      {Code: ErrAlreadyJoined, Message: "Already joined this event."},
	ErrNotParticipant:     {Code: ErrNotParticipant, Message: "You have not joined this event."},
	ErrCreatorCannotJoin:  {Code: ErrCreatorCannotJoin, Message: "You created this event."},
	ErrCreatorCannotLeave: {Code: ErrCreatorCannotLeave, Message: "Creators cannot leave their own event. Delete it instead."},
	ErrNotEventCreator:    {Code: ErrNotEventCreator, Message: "Only the event creator can do that.", Status: http.StatusForbidden},
	ErrEventNotActive:     {Code: ErrEventNotActive, Message: "This event is no longer active."},

	ErrMessageContentTooLong: {Code: ErrMessageContentTooLong, Message: "Message is too long."},
	ErrMessageEmpty:          {Code: ErrMessageEmpty, Message: "Message cannot be empty."},
	ErrChatAccessDenied:      {Code: ErrChatAccessDenied, Message: "Join this event to use its chat.", Status: http.StatusForbidden},

	ErrPlaceQueryTooShort: {Code: ErrPlaceQueryTooShort, Message: "Type at least 2 characters to search."},
	ErrGeocodeMiss:        {Code: ErrGeocodeMiss, Message: "Location not found. Please select from the dropdown suggestions."},

	// 3xxx: User, Session, and Security Errors
	ErrPowChallengeRequired: {Code: ErrPowChallengeRequired, Message: "Verification required. Please try again."},
	ErrPowChallengeInvalid:  {Code: ErrPowChallengeInvalid, Message: "Verification failed. Please try again."},
	ErrSessionKicked:        {Code: ErrSessionKicked, Message: "This chat was opened somewhere else."},
	ErrAlreadyLoggedIn:      {Code: ErrAlreadyLoggedIn, Message: "You are already signed in."},
	ErrInvalidEmail:         {Code: ErrInvalidEmail, Message: "Invalid email address."},
	ErrInvalidPassword:      {Code: ErrInvalidPassword, Message: "Password must be 6 to 50 characters."},
	ErrUserAlreadyExists:    {Code: ErrUserAlreadyExists, Message: "Email is already registered."},
	ErrInvalidCredentials:   {Code: ErrInvalidCredentials, Message: "Incorrect email or password."},
	ErrUserNotFound:         {Code: ErrUserNotFound, Message: "Account not found."},
	ErrInvalidName:          {Code: ErrInvalidName, Message: "Name must be 1 to 80 characters."},
	ErrDemoLoginDisabled:    {Code: ErrDemoLoginDisabled, Message: "Demo sign-in is disabled.", Status: http.StatusForbidden},

	ErrUnauthorized: {Code: ErrUnauthorized, Message: "Please sign in to continue.", Status: http.StatusUnauthorized},

	// 5xxx: Internal System Errors
	ErrUnknown:            {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
	ErrFileStorageFailed:  {Code: ErrFileStorageFailed, Message: "File upload failed. Please try again.", Status: http.StatusBadGateway},
	ErrGeocodeUnavailable: {Code: ErrGeocodeUnavailable, Message: "Unable to process location. Please select from the dropdown suggestions.", Status: http.StatusBadGateway},
}
