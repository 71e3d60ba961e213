package pongo

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/flosch/pongo2/v6"

	"github.com/Kendogar/viewkit/pkg/render"
)

// sessionContext builds the pongo2 execution context for one render call:
// the converted model fields at the top level, plus the session's scratch
// values, validation errors, and lookup facility under reserved keys. Model
// keys win over the reserved keys.
func sessionContext(session *render.Session) (pongo2.Context, error) {
	var model any
	if session != nil {
		model = session.Model
	}

	viewCtx, err := convertToContext(model)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return viewCtx, nil
	}

	if _, taken := viewCtx["values"]; !taken && len(session.Values) > 0 {
		viewCtx["values"] = session.Values
	}
	if _, taken := viewCtx["errors"]; !taken && session.Validation != nil && !session.Validation.Valid() {
		viewCtx["errors"] = session.Validation.Errors()
	}
	if _, taken := viewCtx["lookup"]; !taken {
		viewCtx["lookup"] = func(name string) any {
			value, _ := session.Lookup(name)
			return value
		}
	}
	return viewCtx, nil
}

func convertToContext(data any) (pongo2.Context, error) {
	switch v := data.(type) {
	case nil:
		return pongo2.Context{}, nil
	case pongo2.Context:
		return convertMapToContext(map[string]any(v))
	case map[string]any:
		return convertMapToContext(v)
	default:
		m, err := jsonToMap(v)
		if err != nil {
			return nil, err
		}
		return convertMapToContext(m)
	}
}

func convertMapToContext(in map[string]any) (pongo2.Context, error) {
	out := make(pongo2.Context, len(in))
	for key, value := range in {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		converted, err := convertValue(value)
		if err != nil {
			return nil, err
		}
		out[key] = converted
	}
	return out, nil
}

func convertValue(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	if isCallable(value) {
		return value, nil
	}

	switch v := value.(type) {
	case pongo2.Context:
		return convertMap(map[string]any(v))
	case map[string]any:
		return convertMap(v)
	case []any:
		return convertSlice(v)
	default:
		raw, err := jsonToAny(v)
		if err != nil {
			return nil, err
		}
		switch decoded := raw.(type) {
		case map[string]any:
			return convertMap(decoded)
		case []any:
			return convertSlice(decoded)
		default:
			return decoded, nil
		}
	}
}

func convertMap(in map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(in))
	for key, value := range in {
		converted, err := convertValue(value)
		if err != nil {
			return nil, err
		}
		out[key] = converted
	}
	return out, nil
}

func convertSlice(in []any) ([]any, error) {
	out := make([]any, 0, len(in))
	for _, value := range in {
		converted, err := convertValue(value)
		if err != nil {
			return nil, err
		}
		out = append(out, converted)
	}
	return out, nil
}

func jsonToMap(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func jsonToAny(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func isCallable(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	return rv.IsValid() && rv.Kind() == reflect.Func
}
