package configloader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/yaklabco/ritobin-lsp/pkg/config"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Field is the YAML name of the invalid field (e.g., "max_workers").
	Field string

	// Value is the invalid value.
	Value any

	// Message describes the validation error.
	Message string

	// FilePath is the config file containing the error (if known).
	FilePath string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var parts []string

	if e.FilePath != "" {
		parts = append(parts, e.FilePath)
	}

	if e.Field != "" {
		parts = append(parts, e.Field)
	}

	parts = append(parts, e.Message)

	return strings.Join(parts, ": ")
}

// ValidationResult contains all validation findings.
type ValidationResult struct {
	// Errors are validation failures that prevent loading.
	Errors []ValidationError

	// Warnings are non-fatal issues (e.g., a missing metadata dump).
	Warnings []ValidationError
}

// Valid returns true if there are no errors.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// HasWarnings returns true if there are any warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// AllMessages returns all error and warning messages combined.
func (r *ValidationResult) AllMessages() []string {
	messages := make([]string, 0, len(r.Errors)+len(r.Warnings))
	for _, e := range r.Errors {
		messages = append(messages, "error: "+e.Error())
	}
	for _, w := range r.Warnings {
		messages = append(messages, "warning: "+w.Error())
	}
	return messages
}

//nolint:gochecknoglobals // Validators cache struct metadata and are safe for concurrent use.
var (
	configValidate     *validator.Validate
	configValidateOnce sync.Once
)

func getValidator() *validator.Validate {
	configValidateOnce.Do(func() {
		configValidate = validator.New(validator.WithRequiredStructEnabled())
		configValidate.RegisterTagNameFunc(yamlFieldName)
	})
	return configValidate
}

// yamlFieldName reports fields by their YAML key so messages match what
// users write in config files.
func yamlFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
	if name == "" || name == "-" {
		return strings.ToLower(fld.Name)
	}
	return name
}

// Validate checks a configuration for errors and warnings.
func Validate(cfg *config.Config) *ValidationResult {
	result := &ValidationResult{}
	if cfg == nil {
		return result
	}

	if err := getValidator().Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			result.Errors = append(result.Errors, ValidationError{Message: err.Error()})
			return result
		}
		for _, fe := range fieldErrs {
			result.Errors = append(result.Errors, ValidationError{
				Field:   fe.Field(),
				Value:   fe.Value(),
				Message: describeFieldError(fe),
			})
		}
	}

	if cfg.MetaPath != "" && !fileExists(cfg.MetaPath) {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:   "meta_path",
			Value:   cfg.MetaPath,
			Message: fmt.Sprintf("metadata dump %q not found; hover is unavailable until it exists", cfg.MetaPath),
		})
	}

	if cfg.LogFile != "" {
		if _, err := os.Stat(filepath.Dir(cfg.LogFile)); err != nil {
			result.Warnings = append(result.Warnings, ValidationError{
				Field:   "log_file",
				Value:   cfg.LogFile,
				Message: "log file directory does not exist",
			})
		}
	}

	return result
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("invalid value %q; must be one of: %s",
			fmt.Sprint(fe.Value()), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gte":
		return fmt.Sprintf("must be >= %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be <= %s", fe.Param())
	case "hostname_port":
		return fmt.Sprintf("invalid address %q; expected host:port", fmt.Sprint(fe.Value()))
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}

// ValidateWithFile validates configuration and includes file path in errors.
func ValidateWithFile(cfg *config.Config, filePath string) *ValidationResult {
	result := Validate(cfg)

	for i := range result.Errors {
		result.Errors[i].FilePath = filePath
	}
	for i := range result.Warnings {
		result.Warnings[i].FilePath = filePath
	}

	return result
}
