package logging

// Field name constants for structured logging.
// Using constants prevents typos and enables IDE autocomplete.
const (
	// Common fields.
	FieldError    = "error"
	FieldPath     = "path"
	FieldPaths    = "paths"
	FieldDuration = "duration"

	// Protocol fields.
	FieldMethod    = "method"
	FieldRequestID = "id"
	FieldURI       = "uri"
	FieldClient    = "client"
	FieldWorkers   = "workers"

	// Analysis fields.
	FieldDiagnostics = "diagnostics"
	FieldTokens      = "tokens"
	FieldFiles       = "files"

	// Metadata fields.
	FieldClass   = "class"
	FieldClasses = "classes"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
