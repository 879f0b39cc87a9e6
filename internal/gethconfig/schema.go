package gethconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"slices"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	gethmath "github.com/ethereum/go-ethereum/common/math"
	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
)

var (
	errNull = errors.New("value must not be null")

	bigIntType    = reflect.TypeOf(big.Int{})
	bigIntPtrType = reflect.TypeOf((*big.Int)(nil))
	bytesOrString = reflect.TypeOf(BytesOrString(""))

	validate = newValidator()
)

// keySet is the closed set of keys a mapping may contain.
type keySet []string

// keysOf returns the mapstructure names of the fields of a struct, sorted.
func keysOf(v any) keySet {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	keys := make(keySet, 0, t.NumField())
	for i := range t.NumField() {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("mapstructure"), ",")
		if name == "" || name == "-" {
			continue
		}
		keys = append(keys, name)
	}
	slices.Sort(keys)
	return keys
}

func (s keySet) has(key string) bool {
	_, found := slices.BinarySearch(s, key)
	return found
}

// unknown returns the first key of m, in sorted order, that the set does not declare.
func (s keySet) unknown(m map[string]any) (string, bool) {
	var unknown []string
	for k := range m {
		if !s.has(k) {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) == 0 {
		return "", false
	}
	slices.Sort(unknown)
	return unknown[0], true
}

// nullKey returns the first key of m, in sorted order, whose value is nil.
func nullKey(m map[string]any) (string, bool) {
	var nulls []string
	for k, v := range m {
		if v == nil {
			nulls = append(nulls, k)
		}
	}
	if len(nulls) == 0 {
		return "", false
	}
	slices.Sort(nulls)
	return nulls[0], true
}

// AsMapping interprets v as a mapping with string keys. Anything else is
// reported as an ErrStructural ValidationError for the given stage.
func AsMapping(stage string, v any) (map[string]any, error) {
	m, err := asStringMap(v)
	if err != nil {
		return nil, structural(stage, "", err)
	}
	return m, nil
}

func asStringMap(v any) (map[string]any, error) {
	switch m := v.(type) {
	case map[string]any:
		return m, nil
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("mapping key %v is %T, not a string", k, k)
			}
			out[ks] = val
		}
		return out, nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map {
		return nil, fmt.Errorf("expected a mapping, got %T", v)
	}
	if rv.Type().Key().Kind() != reflect.String {
		return nil, fmt.Errorf("mapping keys must be strings, got %s", rv.Type().Key())
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, nil
}

func isEmptyMapping(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Map && rv.Len() == 0
}

// decodeInto copies input onto out. Fields already set on out are kept
// unless input names them.
func decodeInto(input map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			bytesOrStringHook,
			bigIntHook,
			integerHook,
		),
		ErrorUnused: true,
		TagName:     "mapstructure",
		Result:      out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

func bytesOrStringHook(_ reflect.Type, t reflect.Type, data any) (any, error) {
	if t != bytesOrString {
		return data, nil
	}
	if b, ok := data.([]byte); ok {
		return string(b), nil
	}
	return data, nil
}

// integerHook accepts integral floats and json.Number for integer fields,
// which is how JSON and some YAML decoders hand numbers over.
func integerHook(_ reflect.Type, t reflect.Type, data any) (any, error) {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
	default:
		return data, nil
	}
	switch v := data.(type) {
	case float64:
		return integralFloat(v)
	case float32:
		return integralFloat(float64(v))
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return nil, fmt.Errorf("%s is not an integer", v)
		}
		return i, nil
	}
	return data, nil
}

func integralFloat(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("%v is not an integer", f)
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("%v is out of range", f)
	}
	return int64(f), nil
}

// bigIntHook converts any integer-valued number to *big.Int. Strings are
// rejected so that typing stays strict.
func bigIntHook(_ reflect.Type, t reflect.Type, data any) (any, error) {
	if t != bigIntPtrType && t != bigIntType {
		return data, nil
	}
	var out *big.Int
	switch v := data.(type) {
	case *big.Int:
		return v, nil
	case big.Int:
		return &v, nil
	case float64, float32:
		f := reflect.ValueOf(v).Float()
		if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
			return nil, fmt.Errorf("%v is not an integer", f)
		}
		out, _ = new(big.Float).SetFloat64(f).Int(nil)
	case json.Number:
		var ok bool
		if out, ok = new(big.Int).SetString(v.String(), 10); !ok {
			return nil, fmt.Errorf("%s is not an integer", v)
		}
	default:
		rv := reflect.ValueOf(data)
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			out = big.NewInt(rv.Int())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			out = new(big.Int).SetUint64(rv.Uint())
		default:
			return nil, fmt.Errorf("expected an integer, got %T", data)
		}
	}
	if out.Sign() < 0 {
		return nil, fmt.Errorf("%s must not be negative", out)
	}
	return out, nil
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	for tag, fn := range map[string]validator.Func{
		"hexquantity": isHexQuantity,
		"hexbytes":    isHexBytes,
		"hash32":      isHash32,
	} {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("registering %s validation: %v", tag, err))
		}
	}
	return v
}

// isHexQuantity accepts 0x-prefixed hex numbers up to 256 bits, leading zeros allowed.
func isHexQuantity(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) < 3 || (s[:2] != "0x" && s[:2] != "0X") {
		return false
	}
	_, ok := gethmath.ParseBig256(s)
	return ok
}

func isHexBytes(fl validator.FieldLevel) bool {
	_, err := hexutil.Decode(fl.Field().String())
	return err == nil
}

func isHash32(fl validator.FieldLevel) bool {
	b, err := hexutil.Decode(fl.Field().String())
	return err == nil && len(b) == common.HashLength
}

// constraintMismatch turns the first validator failure into a ValidationError.
func constraintMismatch(stage string, err error) *ValidationError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return typeMismatch(stage, "", err)
	}
	fe := verrs[0]
	constraint := fe.Tag()
	if fe.Param() != "" {
		constraint += "=" + fe.Param()
	}
	return typeMismatch(stage, fe.Field(), fmt.Errorf("value %v does not satisfy %q", fe.Value(), constraint))
}
