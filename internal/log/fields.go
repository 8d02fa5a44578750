package log

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
	FieldClientIP      = "client_ip"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration_ms"
	FieldSuccess       = "success"
	FieldError         = "error"
	FieldErrorType     = "error_type"
	FieldOperation     = "operation"
	FieldTransactionID = "transaction_id"
	FieldDate          = "date"
	FieldDescription   = "description"
	FieldAmount        = "amount"
	FieldType          = "type"
	FieldCount         = "count"
	FieldDBPath        = "db_path"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentAPI     = "api"
	ComponentCLI     = "cli"
	ComponentLedger  = "ledger"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentEvents  = "events"
	ComponentBackend = "backend"
)

// Operations defines standard operation names
const (
	OpInitialize = "initialize"
	OpInsert     = "insert"
	OpList       = "list"
	OpDelete     = "delete"
	OpSummarize  = "summarize"
	OpPublish    = "publish"
	OpConsume    = "consume"
	OpRender     = "render"
	OpStartup    = "startup"
	OpShutdown   = "shutdown"
)

// ErrorTypes defines standard error type categories
const (
	ErrorTypeValidation    = "validation_error"
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeDatabase      = "database_error"
	ErrorTypeNetwork       = "network_error"
	ErrorTypeInternal      = "internal_error"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithError adds the error message and its category
func (f LogFields) WithError(err error, errorType string) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
		f[FieldErrorType] = errorType
	}
	return f
}

// WithTransactionID adds the ledger row id
func (f LogFields) WithTransactionID(id int64) LogFields {
	f[FieldTransactionID] = id
	return f
}

// WithEntry adds the caller-visible fields of a ledger entry
func (f LogFields) WithEntry(date, description, amount, typ string) LogFields {
	f[FieldDate] = date
	f[FieldDescription] = description
	f[FieldAmount] = amount
	f[FieldType] = typ
	return f
}

// With adds an arbitrary field
func (f LogFields) With(key string, value any) LogFields {
	f[key] = value
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
