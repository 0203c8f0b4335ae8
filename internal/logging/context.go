package logging

import "context"

type contextFieldsKey struct{}

// BindFields returns a context carrying the given fields. The chain's
// first stage merges them into every record logged under that context;
// explicit per-call fields win over bound ones. Contexts are immutable
// values, so concurrent tasks never observe each other's fields.
func BindFields(ctx context.Context, fields ...Field) context.Context {
	if len(fields) == 0 {
		return ctx
	}
	existing := ContextFields(ctx)
	merged := make([]Field, 0, len(existing)+len(fields))
	merged = append(merged, existing...)
	for _, f := range fields {
		merged = replaceOrAppend(merged, f)
	}
	return context.WithValue(ctx, contextFieldsKey{}, merged)
}

// ContextFields extracts the fields bound to the context, if any.
func ContextFields(ctx context.Context) []Field {
	if ctx == nil {
		return nil
	}
	fields, _ := ctx.Value(contextFieldsKey{}).([]Field)
	return fields
}

func replaceOrAppend(fields []Field, f Field) []Field {
	for i := range fields {
		if fields[i].Key == f.Key {
			fields[i].Value = f.Value
			return fields
		}
	}
	return append(fields, f)
}
