// Package validation checks configuration values.
//
// Struct tags are checked with the validator library; field names in the
// resulting errors are the mapstructure keys used in config files.
//
//	type Config struct {
//	    MaxConcurrent int `mapstructure:"max_concurrent" validate:"gte=0"`
//	}
//	err := validation.Validate(&cfg)
//
// Checks that tags cannot express use a Validator:
//
//	v := validation.New()
//	v.ExitCode("regular_exit_codes", code)
//	err := v.Validate()
//
// Both return an *errors.AppError with code INVALID_INPUT and the failing
// fields under the "fields" detail.
package validation
