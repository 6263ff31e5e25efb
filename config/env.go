// Package config loads configuration structs from environment variables and
// dotenv files.
//
// Variable names follow the pattern:
//
//	{Prefix}_{STAGE}_{FIELD}
//
// Named nested structs add their field name as a path segment; anonymous
// (embedded) structs are flattened. Go field names are converted from
// CamelCase to UPPER_SNAKE_CASE:
//
//	FizzInterval  → FIZZ_INTERVAL
//	PrefetchCount → PREFETCH_COUNT
//
// Supported field types: string, bool, int*, uint*, float*, time.Duration.
// Other fields (functions, interfaces, channels, pointers) are skipped.
//
// Example with fizzbuzz.Config and stage "producer":
//
//	FIZZBUZZ_PRODUCER_FIZZ_INTERVAL=3s
//	FIZZBUZZ_PRODUCER_RUN_FOR=50s
//
// Values from the process environment take precedence over values read
// from the dotenv files listed in [Loader.Files].
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/joho/godotenv"
)

// DefaultPrefix is used when Loader.Prefix is empty.
const DefaultPrefix = "FIZZBUZZ"

var durationType = reflect.TypeOf(time.Duration(0))

// Loader reads environment variables into configuration structs.
type Loader struct {
	// Prefix for variable names. Default: DefaultPrefix.
	Prefix string

	// Files are dotenv files consulted for variables missing from the
	// environment. Missing files are ignored.
	Files []string

	// lookup overrides os.LookupEnv for testing.
	lookup func(string) (string, bool)
}

func (l Loader) prefix() string {
	if l.Prefix == "" {
		return DefaultPrefix
	}
	return l.Prefix
}

// source returns the lookup function combining the environment and the
// dotenv files.
func (l Loader) source() (func(string) (string, bool), error) {
	env := l.lookup
	if env == nil {
		env = os.LookupEnv
	}
	if len(l.Files) == 0 {
		return env, nil
	}

	file := make(map[string]string)
	for _, path := range l.Files {
		vals, err := godotenv.Read(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
		for k, v := range vals {
			if _, seen := file[k]; !seen {
				file[k] = v
			}
		}
	}
	return func(key string) (string, bool) {
		if v, ok := env(key); ok {
			return v, true
		}
		v, ok := file[key]
		return v, ok
	}, nil
}

// Load populates the struct pointed to by dst. Only fields with a set
// variable are modified, so Load overlays overrides on programmatic
// defaults.
func (l Loader) Load(stage string, dst any) error {
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("config: dst must be a pointer to a struct, got %T", dst)
	}
	lookup, err := l.source()
	if err != nil {
		return err
	}
	return walk(l.key(stage), v.Elem().Type(), func(key string, index []int) error {
		raw, ok := lookup(key)
		if !ok {
			return nil
		}
		return setField(v.Elem().FieldByIndex(index), raw, key)
	})
}

// Keys returns the variable names Load would consult for dst, which may
// be a struct or a pointer to one.
func (l Loader) Keys(stage string, dst any) []string {
	t := reflect.TypeOf(dst)
	if t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	var keys []string
	_ = walk(l.key(stage), t, func(key string, _ []int) error {
		keys = append(keys, key)
		return nil
	})
	return keys
}

func (l Loader) key(stage string) string {
	return l.prefix() + "_" + normalizeStage(stage)
}

// Load populates dst using a Loader with the default prefix.
func Load(stage string, dst any) error {
	return Loader{}.Load(stage, dst)
}

// Keys returns variable names using a Loader with the default prefix.
func Keys(stage string, dst any) []string {
	return Loader{}.Keys(stage, dst)
}

// walk visits every supported leaf field of t with its variable name and
// field index path.
func walk(prefix string, t reflect.Type, visit func(key string, index []int) error) error {
	for i := range t.NumField() {
		field := t.Field(i)
		embeddedStruct := field.Anonymous && field.Type.Kind() == reflect.Struct
		if !field.IsExported() && !embeddedStruct {
			continue
		}

		key := prefix
		if !field.Anonymous {
			key = prefix + "_" + toUpperSnake(field.Name)
		}

		var err error
		switch {
		case field.Type == durationType || isSupportedKind(field.Type.Kind()):
			err = visit(key, field.Index)
		case field.Type.Kind() == reflect.Struct:
			err = walk(key, field.Type, func(k string, index []int) error {
				return visit(k, append([]int{i}, index...))
			})
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func isSupportedKind(k reflect.Kind) bool {
	switch k {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func setField(v reflect.Value, raw, key string) error {
	if v.Type() == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		v.SetInt(int64(d))
		return nil
	}

	var err error
	switch v.Kind() {
	case reflect.String:
		v.SetString(raw)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		var n int64
		if n, err = strconv.ParseInt(raw, 10, v.Type().Bits()); err == nil {
			v.SetInt(n)
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		var n uint64
		if n, err = strconv.ParseUint(raw, 10, v.Type().Bits()); err == nil {
			v.SetUint(n)
		}
	case reflect.Float32, reflect.Float64:
		var f float64
		if f, err = strconv.ParseFloat(raw, v.Type().Bits()); err == nil {
			v.SetFloat(f)
		}
	case reflect.Bool:
		var b bool
		if b, err = strconv.ParseBool(raw); err == nil {
			v.SetBool(b)
		}
	}
	if err != nil {
		return fmt.Errorf("config: %s: %w", key, err)
	}
	return nil
}

// normalizeStage converts a stage name to a valid variable segment.
// Letters are uppercased, hyphens, spaces and underscores become
// underscores, other characters are dropped.
func normalizeStage(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(unicode.ToUpper(r))
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == ' ' || r == '_':
			b.WriteRune('_')
		}
	}
	return b.String()
}

// toUpperSnake converts a Go CamelCase field name to UPPER_SNAKE_CASE.
//
//	BufferSize     → BUFFER_SIZE
//	URLPath        → URL_PATH
func toUpperSnake(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			if unicode.IsLower(prev) || unicode.IsDigit(prev) {
				b.WriteRune('_')
			} else if unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
				b.WriteRune('_')
			}
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}
