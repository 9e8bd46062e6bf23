package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// LoadFromEnv overlays environment variables onto cfg, which must be a pointer
// to a struct. Fields opt in with an `env` struct tag; nested and embedded
// structs are walked recursively. Unset or empty variables leave fields alone.
func LoadFromEnv(cfg interface{}) error {
	return loadFromEnv(reflect.ValueOf(cfg))
}

// loadFromEnv recursively loads environment variables into a config struct.
func loadFromEnv(v reflect.Value) error {
	// Dereference pointer
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}

	// Only process structs
	if v.Kind() != reflect.Struct {
		return nil
	}

	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		// Skip unexported fields
		if !field.CanSet() {
			continue
		}

		// Handle nested and embedded structs
		if field.Kind() == reflect.Struct {
			if err := loadFromEnv(field); err != nil {
				return err
			}
			continue
		}

		// Skip if no env tag
		envTag := fieldType.Tag.Get("env")
		if envTag == "" {
			continue
		}

		// Unset and empty variables keep the current value
		envValue := os.Getenv(envTag)
		if envValue == "" {
			continue
		}

		// Set the field value based on its type
		if err := setFieldValue(field, envValue, fieldType.Name, envTag); err != nil {
			return err
		}
	}

	return nil
}

// setFieldValue sets a field value from a string environment variable.
func setFieldValue(field reflect.Value, value string, fieldName string, envVar string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		// Check if it's a time.Duration
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			duration, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid duration for %s (%s): %w", fieldName, envVar, err)
			}
			field.SetInt(int64(duration))
			return nil
		}
		intVal, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer for %s (%s): %w", fieldName, envVar, err)
		}
		field.SetInt(intVal)

	case reflect.Bool:
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for %s (%s): %w", fieldName, envVar, err)
		}
		field.SetBool(boolVal)

	case reflect.Ptr:
		// Optional scalars such as the *bool toggles: allocate, then set the pointee.
		elem := reflect.New(field.Type().Elem())
		if err := setFieldValue(elem.Elem(), value, fieldName, envVar); err != nil {
			return err
		}
		field.Set(elem)

	case reflect.Slice:
		// String lists are comma-separated.
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type for %s (%s)", fieldName, envVar)
		}
		values := strings.Split(value, ",")
		// MakeSlice keeps named slice types such as Patterns
		list := reflect.MakeSlice(field.Type(), 0, len(values))
		for _, v := range values {
			// Trim whitespace and drop empty entries
			if v = strings.TrimSpace(v); v != "" {
				list = reflect.Append(list, reflect.ValueOf(v))
			}
		}
		field.Set(list)

	default:
		return fmt.Errorf("unsupported type %s for %s (%s)", field.Kind(), fieldName, envVar)
	}

	return nil
}
