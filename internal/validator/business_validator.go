package validator

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/spk-college/techfest-service/internal/models"
)

// BusinessValidator handles struct and business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

// Validate validates struct tags for any request
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	err := bv.validate.Struct(s)
	if err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateEventCreate validates event creation business rules
func (bv *BusinessValidator) ValidateEventCreate(req *EventCreateRequest) ValidationErrors {
	return bv.Validate(req)
}

// ValidateEventUpdate validates event update business rules against the
// existing row: capacity can never drop below the seats already claimed.
func (bv *BusinessValidator) ValidateEventUpdate(req *EventUpdateRequest, existing *models.Event) ValidationErrors {
	errors := bv.Validate(req)

	if req.MaxParticipants != nil && existing != nil && *req.MaxParticipants < existing.CurrentParticipants {
		errors = append(errors, ValidationError{
			Field:   "max_participants",
			Message: "cannot be reduced below current registrations",
			Value:   *req.MaxParticipants,
			Rule:    "business_logic",
		})
	}

	return errors
}

// ValidateWinnerDeclaration validates a podium declaration: three distinct
// participants filling positions 1, 2 and 3 exactly once each.
func (bv *BusinessValidator) ValidateWinnerDeclaration(req *DeclareWinnersRequest) ValidationErrors {
	errors := bv.Validate(req)
	if errors.HasErrors() {
		return errors
	}

	seenUsers := make(map[string]bool, len(req.Winners))
	seenPositions := make(map[int]bool, len(req.Winners))

	for _, entry := range req.Winners {
		if seenUsers[entry.UserID] {
			errors = append(errors, ValidationError{
				Field:   "winners",
				Message: "the same participant cannot hold two positions",
				Value:   entry.UserID,
				Rule:    "business_logic",
			})
		}
		seenUsers[entry.UserID] = true

		if seenPositions[entry.Position] {
			errors = append(errors, ValidationError{
				Field:   "winners",
				Message: "each position can be awarded only once",
				Value:   entry.Position,
				Rule:    "business_logic",
			})
		}
		seenPositions[entry.Position] = true
	}

	return errors
}

// registerBusinessRules registers custom rule validators
func (bv *BusinessValidator) registerBusinessRules() {
	_ = bv.validate.RegisterValidation("department", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case models.DepartmentIT, models.DepartmentCS, models.DepartmentDS, models.DepartmentGeneral:
			return true
		}
		return false
	})

	_ = bv.validate.RegisterValidation("user_role", func(fl validator.FieldLevel) bool {
		return models.UserRole(fl.Field().String()).Valid()
	})

	_ = bv.validate.RegisterValidation("future_date", func(fl validator.FieldLevel) bool {
		date, ok := fl.Field().Interface().(time.Time)
		if !ok {
			return false
		}
		return date.After(time.Now())
	})
}
