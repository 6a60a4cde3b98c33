package services

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced to handlers; each maps onto one HTTP status.
var (
	ErrEventNotFound        = errors.New("event not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrAnnouncementNotFound = errors.New("announcement not found")

	ErrEventFull              = errors.New("event is full")
	ErrAlreadyRegistered      = errors.New("already registered for this event")
	ErrWinnersAlreadyDeclared = errors.New("winners already declared for this event")
	ErrNotAttended            = errors.New("attendance not confirmed for this registration")
	ErrEventNotLive           = errors.New("event is not live")
)

// PermissionError is returned when the acting user's role or ownership does
// not allow the operation.
type PermissionError struct {
	UserID   string
	Action   string
	Resource string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %s is not allowed to %s %s", e.UserID, e.Action, e.Resource)
}

func NewPermissionError(userID, action, resource string) *PermissionError {
	return &PermissionError{UserID: userID, Action: action, Resource: resource}
}

func IsPermissionError(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}

// BusinessRuleError is a domain constraint violation that is not a
// permission problem, e.g. declaring winners among non-attendees.
type BusinessRuleError struct {
	Rule    string
	Message string
}

func (e *BusinessRuleError) Error() string {
	return e.Message
}

func NewBusinessRuleError(rule, message string) *BusinessRuleError {
	return &BusinessRuleError{Rule: rule, Message: message}
}

func IsBusinessRuleError(err error) bool {
	var be *BusinessRuleError
	return errors.As(err, &be)
}
