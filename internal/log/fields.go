package log

// Common field names for structured logging
const (
	FieldComponent    = "component"
	FieldRequestID    = "request_id"
	FieldClientIP     = "client_ip"
	FieldMethod       = "method"
	FieldPath         = "path"
	FieldQuery        = "query"
	FieldStatusCode   = "status_code"
	FieldDuration     = "duration_ms"
	FieldUserAgent    = "user_agent"
	FieldSuccess      = "success"
	FieldError        = "error"
	FieldOperation    = "operation"
	FieldStudent      = "student"
	FieldPackageSize  = "weekly_package_size"
	FieldPriceCents   = "price_cents"
	FieldSessionDate  = "session_date"
	FieldSessionTime  = "session_time"
	FieldMonth        = "month"
	FieldFormat       = "format"
	FieldStudents     = "students"
	FieldSessions     = "sessions"
	FieldRevision     = "revision"
	FieldSizeBytes    = "size_bytes"
	FieldCacheHit     = "cache_hit"
	FieldEventType    = "event_type"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentLedger   = "ledger"
	ComponentRoster   = "roster"
	ComponentSchedule = "schedule"
	ComponentReport   = "report"
	ComponentStorage  = "storage"
	ComponentAMQP     = "amqp"
	ComponentCache    = "cache"
	ComponentBackend  = "backend"
)

// Operations defines standard operation names
const (
	OpRegister = "register"
	OpBook     = "book"
	OpList     = "list"
	OpReset    = "reset"
	OpLoad     = "load"
	OpSave     = "save"
	OpRender   = "render"
	OpPublish  = "publish"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithRequestID adds request ID field
func (f LogFields) WithRequestID(requestID string) LogFields {
	f[FieldRequestID] = requestID
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithStudent adds the registration fields of a student.
func (f LogFields) WithStudent(name string, packageSize int, priceCents int64) LogFields {
	f[FieldStudent] = name
	f[FieldPackageSize] = packageSize
	f[FieldPriceCents] = priceCents
	return f
}

// WithSession adds the booking fields of a session.
func (f LogFields) WithSession(student, date, time string) LogFields {
	f[FieldStudent] = student
	f[FieldSessionDate] = date
	f[FieldSessionTime] = time
	return f
}

// WithHTTPRequest adds HTTP request fields
func (f LogFields) WithHTTPRequest(method, path, query, userAgent string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldQuery] = query
	f[FieldUserAgent] = userAgent
	return f
}

// WithHTTPResponse adds HTTP response fields
func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	f[FieldSuccess] = statusCode < 400
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
