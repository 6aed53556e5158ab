package mcputils

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// ArgumentGetter is an interface for getting arguments from a request
type ArgumentGetter interface {
	GetArguments() map[string]interface{}
}

// ArgumentError is a caller mistake in tool arguments. Tool handlers turn it
// into an error result instead of a protocol error.
type ArgumentError struct {
	Field  string
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// CoerceBindArguments binds MCP request arguments to a target struct with
// type coercion. Some clients send every parameter as a string, including
// numbers, booleans and JSON-encoded arrays.
//
// Fields tagged `mcp:"required"` must be present in the arguments; a
// missing one yields an *ArgumentError. Presence is checked on the raw map,
// so a required string may still be empty.
func CoerceBindArguments[T any](request ArgumentGetter, target *T) error {
	rawArgs := request.GetArguments()
	if rawArgs == nil {
		rawArgs = map[string]interface{}{}
	}

	if err := checkRequired(rawArgs, target); err != nil {
		return err
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			jsonStringHook,
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		Result:  target,
		TagName: "json",
	})
	if err != nil {
		return err
	}

	if err := decoder.Decode(rawArgs); err != nil {
		return &ArgumentError{Field: "arguments", Reason: err.Error()}
	}
	return nil
}

// jsonStringHook decodes JSON-looking strings into slices, maps, booleans
// and numbers.
func jsonStringHook(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
	if f.Kind() != reflect.String {
		return data, nil
	}

	raw := data.(string)
	if raw == "" {
		return data, nil
	}
	trimmed := strings.TrimSpace(raw)

	switch {
	case t.Kind() == reflect.Slice || t.Kind() == reflect.Map || t.Kind() == reflect.Struct:
		looksJSON := (strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]")) ||
			(strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}"))
		if !looksJSON {
			return data, nil
		}
		if t.Kind() == reflect.Slice {
			slicePtr := reflect.New(t)
			if err := json.Unmarshal([]byte(trimmed), slicePtr.Interface()); err == nil {
				return slicePtr.Elem().Interface(), nil
			}
			return data, nil
		}
		var result interface{}
		if err := json.Unmarshal([]byte(trimmed), &result); err == nil {
			return result, nil
		}

	case t.Kind() == reflect.Bool:
		if trimmed == "true" || trimmed == "false" {
			return trimmed == "true", nil
		}

	case t.Kind() >= reflect.Int && t.Kind() <= reflect.Float64:
		var result json.Number
		if err := json.Unmarshal([]byte(trimmed), &result); err == nil {
			return result, nil
		}
	}

	return data, nil
}

func checkRequired(args map[string]interface{}, target interface{}) error {
	t := reflect.TypeOf(target)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Tag.Get("mcp") != "required" {
			continue
		}
		name := strings.Split(field.Tag.Get("json"), ",")[0]
		if name == "" {
			name = field.Name
		}
		if v, ok := args[name]; !ok || v == nil {
			return &ArgumentError{Field: name, Reason: "parameter is required"}
		}
	}
	return nil
}
