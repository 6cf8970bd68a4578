// Package validation checks configuration sections and request inputs.
//
// Struct tags are evaluated with go-playground/validator:
//
//	type Config struct {
//	    Backend string `mapstructure:"backend" validate:"oneof=memory database redis"`
//	}
//	err := validation.Struct("usage", cfg)
//
// Checks that tags cannot express are collected programmatically:
//
//	v := validation.New("transcode")
//	v.Custom(cfg.Timeout > 0, "timeout", "must be positive")
//	err := v.Err()
package validation
