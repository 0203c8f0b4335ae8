package logging

const (
	// FieldEvent is the message field every record carries.
	FieldEvent = "event"
	// FieldLevel is the normalized severity token.
	FieldLevel = "level"
	// FieldTimestamp is the ISO-8601 UTC render instant.
	FieldTimestamp = "timestamp"
	// FieldLogger is the originating logger name.
	FieldLogger = "logger"
	// FieldProcessID is the OS process identifier.
	FieldProcessID = "process_id"
	// FieldFilename, FieldFuncName and FieldLineno describe the call site.
	FieldFilename = "filename"
	FieldFuncName = "func_name"
	FieldLineno   = "lineno"
	// FieldStack carries rendered stack text; FieldStackInfo is the
	// boolean request flag it is derived from.
	FieldStack     = "stack"
	FieldStackInfo = "stack_info"
	// FieldException and FieldExceptionType describe a captured failure.
	FieldException     = "exception"
	FieldExceptionType = "exception_type"
	// FieldColorMessage is a human-only rendering hint that must never
	// reach machine-readable output.
	FieldColorMessage = "color_message"
	// FieldPositionalArgs holds printf-style arguments folded into the
	// event by the processor chain.
	FieldPositionalArgs = "positional_args"
)

// Field is one key/value pair carried by a Record.
type Field struct {
	Key   string
	Value any
}

// Record is one log occurrence in flight through the processor chain.
// Fields keep insertion order so rendered output is deterministic; a
// repeated Set replaces the value in place. Records are mutable only
// inside the chain and treated as read-only by renderers.
type Record struct {
	fields []Field
	pc     uintptr
}

// NewRecord builds a record whose first field is the event message.
func NewRecord(event string, fields ...Field) *Record {
	r := &Record{fields: make([]Field, 0, len(fields)+1)}
	r.fields = append(r.fields, Field{Key: FieldEvent, Value: event})
	for _, f := range fields {
		r.Set(f.Key, f.Value)
	}
	return r
}

// Event returns the message field.
func (r *Record) Event() string {
	if v, ok := r.Get(FieldEvent); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Set replaces the value for key in place, or appends a new field.
func (r *Record) Set(key string, value any) {
	for i := range r.fields {
		if r.fields[i].Key == key {
			r.fields[i].Value = value
			return
		}
	}
	r.fields = append(r.fields, Field{Key: key, Value: value})
}

// Get returns the value for key.
func (r *Record) Get(key string) (any, bool) {
	for i := range r.fields {
		if r.fields[i].Key == key {
			return r.fields[i].Value, true
		}
	}
	return nil, false
}

// Has reports whether key is present.
func (r *Record) Has(key string) bool {
	_, ok := r.Get(key)
	return ok
}

// Delete removes key and reports whether it was present.
func (r *Record) Delete(key string) bool {
	for i := range r.fields {
		if r.fields[i].Key == key {
			r.fields = append(r.fields[:i], r.fields[i+1:]...)
			return true
		}
	}
	return false
}

// prependMissing inserts the given fields at the front of the record,
// skipping keys that are already present, so that explicit per-call
// fields override ambient context fields.
func (r *Record) prependMissing(fields []Field) {
	if len(fields) == 0 {
		return
	}
	fresh := make([]Field, 0, len(fields))
	for _, f := range fields {
		if !r.Has(f.Key) {
			fresh = append(fresh, f)
		}
	}
	if len(fresh) == 0 {
		return
	}
	r.fields = append(fresh, r.fields...)
}

// Fields returns the ordered field slice. Callers must not mutate it.
func (r *Record) Fields() []Field {
	return r.fields
}

// Len returns the number of fields.
func (r *Record) Len() int {
	return len(r.fields)
}

// SetPC records the call-site program counter captured at ingestion.
func (r *Record) SetPC(pc uintptr) {
	r.pc = pc
}

// PC returns the call-site program counter, or zero when unknown.
func (r *Record) PC() uintptr {
	return r.pc
}
