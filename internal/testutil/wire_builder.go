package testutil

import (
	"encoding/json"
	"fmt"
)

// Frame builds a legacy-form frame: the event kind inlined next to the
// payload fields.
func Frame(kind string, fields map[string]any) string {
	m := map[string]any{"event": kind}
	for k, v := range fields {
		m[k] = v
	}
	b, err := json.Marshal(m)
	if err != nil {
		panic(fmt.Sprintf("testutil: marshal frame: %v", err))
	}
	return string(b)
}

// Enveloped builds an enveloped-form frame {event, data} with a structured
// data object.
func Enveloped(kind string, data map[string]any) string {
	b, err := json.Marshal(map[string]any{"event": kind, "data": data})
	if err != nil {
		panic(fmt.Sprintf("testutil: marshal frame: %v", err))
	}
	return string(b)
}

// EnvelopedString builds an enveloped-form frame whose data field is a JSON
// string requiring a nested parse.
func EnvelopedString(kind string, data map[string]any) string {
	inner, err := json.Marshal(data)
	if err != nil {
		panic(fmt.Sprintf("testutil: marshal frame: %v", err))
	}
	b, err := json.Marshal(map[string]any{"event": kind, "data": string(inner)})
	if err != nil {
		panic(fmt.Sprintf("testutil: marshal frame: %v", err))
	}
	return string(b)
}
