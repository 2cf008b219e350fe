package primitive

import (
	"encoding"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// ErrUnsupported is returned when a type has no textual representation.
var ErrUnsupported = errors.New("type has no textual representation")

// Parse coerces attribute text into a value of rtype.
// The returned value is addressable-free and directly assignable to rtype.
func Parse(rtype reflect.Type, text string, allowed CategoryEnum) (reflect.Value, error) {
	kind := FromReflectType(rtype)
	if kind == 0 {
		return reflect.Value{}, fmt.Errorf("%s: %w", rtype, ErrUnsupported)
	}

	if kind == KindText {
		ptr := reflect.New(rtype)
		if err := ptr.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(text)); err != nil {
			return reflect.Value{}, err
		}

		return ptr.Elem(), nil
	}

	if kind == KindPrimitiveEnum {
		kind = FromReflectKind(rtype.Kind())
	}

	if kind != KindString && allowed.Has(CategoryTrimSpace) {
		text = strings.TrimSpace(text)
	}

	out := reflect.New(rtype).Elem()

	switch {
	case kind == KindString:
		out.SetString(text)

	case kind == KindBool:
		b, err := parseBool(text, allowed)
		if err != nil {
			return reflect.Value{}, err
		}

		out.SetBool(b)

	case kind == KindDuration:
		d, err := parseDuration(text, allowed)
		if err != nil {
			return reflect.Value{}, err
		}

		out.SetInt(int64(d))

	case kind == KindTime:
		t, err := parseTime(text, allowed)
		if err != nil {
			return reflect.Value{}, err
		}

		out.Set(reflect.ValueOf(t))

	case kind.IsSigned():
		n, err := strconv.ParseInt(text, numberBase(allowed), kind.Bits())
		if err != nil {
			return reflect.Value{}, unwrapNumError(err)
		}

		out.SetInt(n)

	case kind.IsUnsigned():
		n, err := strconv.ParseUint(text, numberBase(allowed), kind.Bits())
		if err != nil {
			return reflect.Value{}, unwrapNumError(err)
		}

		out.SetUint(n)

	case kind.IsFloat():
		f, err := strconv.ParseFloat(text, kind.Bits())
		if err != nil {
			return reflect.Value{}, unwrapNumError(err)
		}

		out.SetFloat(f)

	default:
		return reflect.Value{}, fmt.Errorf("%s: %w", rtype, ErrUnsupported)
	}

	return out, nil
}

// Format renders a value in the canonical textual form understood by Parse.
func Format(v reflect.Value) (string, error) {
	if !v.IsValid() {
		return "", fmt.Errorf("invalid value: %w", ErrUnsupported)
	}

	kind := FromReflectType(v.Type())
	switch kind {
	case 0:
		return "", fmt.Errorf("%s: %w", v.Type(), ErrUnsupported)

	case KindText:
		// MarshalText may be declared on the pointer receiver
		ptr := reflect.New(v.Type())
		ptr.Elem().Set(v)

		b, err := ptr.Interface().(encoding.TextMarshaler).MarshalText()
		if err != nil {
			return "", err
		}

		return string(b), nil

	case KindTime:
		return v.Interface().(time.Time).Format(time.RFC3339Nano), nil

	case KindDuration:
		return time.Duration(v.Int()).String(), nil

	case KindPrimitiveEnum:
		kind = FromReflectKind(v.Kind())
	}

	switch {
	case kind == KindString:
		return v.String(), nil
	case kind == KindBool:
		return strconv.FormatBool(v.Bool()), nil
	case kind.IsSigned():
		return strconv.FormatInt(v.Int(), 10), nil
	case kind.IsUnsigned():
		return strconv.FormatUint(v.Uint(), 10), nil
	case kind.IsFloat():
		return formatFloat(v.Float(), kind.Bits()), nil
	}

	return "", fmt.Errorf("%s: %w", v.Type(), ErrUnsupported)
}

func formatFloat(f float64, bits int) string {
	switch {
	case math.IsInf(f, 1):
		return "INF"
	case math.IsInf(f, -1):
		return "-INF"
	case math.IsNaN(f):
		return "NaN"
	}

	return strconv.FormatFloat(f, 'g', -1, bits)
}

func numberBase(allowed CategoryEnum) int {
	if allowed.Has(CategoryHexNumber) {
		return 0
	}

	return 10
}

func parseBool(text string, allowed CategoryEnum) (bool, error) {
	switch text {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	}

	if allowed.Has(CategoryTextualBool) {
		switch strings.ToLower(text) {
		case "true", "yes", "on":
			return true, nil
		case "false", "no", "off":
			return false, nil
		}
	}

	if allowed.Has(CategoryNumericBool) {
		if n, err := strconv.ParseInt(text, 10, 64); err == nil {
			return n != 0, nil
		}
	}

	return false, fmt.Errorf("invalid boolean %q", text)
}

func parseDuration(text string, allowed CategoryEnum) (time.Duration, error) {
	d, err := time.ParseDuration(text)
	if err == nil {
		return d, nil
	}

	if allowed.Has(CategorySeconds) {
		if f, ferr := strconv.ParseFloat(text, 64); ferr == nil {
			return time.Duration(f * float64(time.Second)), nil
		}
	}

	return 0, err
}

func parseTime(text string, allowed CategoryEnum) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, text)
	if err == nil {
		return t, nil
	}

	if allowed.Has(CategoryTimestamp) {
		if n, nerr := strconv.ParseInt(text, 10, 64); nerr == nil {
			return time.Unix(n, 0).UTC(), nil
		}
	}

	return time.Time{}, err
}

// unwrapNumError drops the strconv function name, which means nothing to a document author.
func unwrapNumError(err error) error {
	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		return fmt.Errorf("%q: %w", numErr.Num, numErr.Err)
	}

	return err
}
