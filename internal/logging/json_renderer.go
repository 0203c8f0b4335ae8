package logging

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Renderer serializes a fully enriched Record into output bytes. The
// buffer holds exactly one complete line (or multi-line block in the
// console case) per record when Render returns.
type Renderer interface {
	Render(buf *bytes.Buffer, rec *Record) error
}

// jsonRenderer emits one self-contained JSON object per record, keys
// in record order so output is stable and independently parseable.
type jsonRenderer struct{}

// NewJSONRenderer returns the machine-readable renderer.
func NewJSONRenderer() Renderer {
	return jsonRenderer{}
}

func (jsonRenderer) Render(buf *bytes.Buffer, rec *Record) error {
	buf.WriteByte('{')
	for i, field := range rec.Fields() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(field.Key)
		if err != nil {
			return fmt.Errorf("encode field key %q: %w", field.Key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := json.Marshal(field.Value)
		if err != nil {
			// Unmarshalable values degrade to their string form rather
			// than losing the whole record.
			value, _ = json.Marshal(fmt.Sprint(field.Value))
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	buf.WriteByte('\n')
	return nil
}
