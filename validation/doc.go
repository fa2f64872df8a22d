// Package validation checks configuration values.
//
// Struct tag validation uses go-playground/validator and reports fields by
// their mapstructure names:
//
//	type Binding struct {
//	    Key  string `mapstructure:"key" validate:"required"`
//	    Kind string `mapstructure:"kind" validate:"oneof=object env"`
//	}
//	err := validation.Struct(b)
//
// Rules that tags cannot express go through the programmatic Validator:
//
//	v := validation.New()
//	v.Unique("bindings", keys)
//	err := v.Err()
//
// Both return an INVALID_INPUT AppError whose "fields" detail lists every
// failing field.
package validation
