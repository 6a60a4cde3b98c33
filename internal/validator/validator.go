package validator

// Validator bundles the validators the service layer needs.
type Validator struct {
	business *BusinessValidator
}

func New() *Validator {
	return &Validator{
		business: NewBusinessValidator(),
	}
}

func (v *Validator) GetBusinessValidator() *BusinessValidator {
	return v.business
}

// Validate runs struct-tag validation on any request.
func (v *Validator) Validate(s interface{}) ValidationErrors {
	return v.business.Validate(s)
}
