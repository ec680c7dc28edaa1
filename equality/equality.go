// Package equality decides whether a live request value satisfies a registered pattern value.
package equality

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"
)

type (
	// TypeClass is the runtime category a value is compared under
	TypeClass int

	comparator func(expected, actual reflect.Value) bool
)

const (
	Other TypeClass = iota
	Boolean
	String
	Number
	RegExp
	Date
	Error
	Function
	Array
	PlainObject
)

var (
	classNames = [...]string{"Other", "Boolean", "String", "Number", "RegExp", "Date", "Error", "Function", "Array", "PlainObject"}

	regexpType = reflect.TypeOf(&regexp.Regexp{})
	timeType   = reflect.TypeOf(time.Time{})
	numberType = reflect.TypeOf(json.Number(""))
	errorType  = reflect.TypeOf((*error)(nil)).Elem()

	comparators map[TypeClass]comparator
)

func init() {
	comparators = map[TypeClass]comparator{
		Boolean:     samePrimitive,
		String:      samePrimitive,
		Number:      samePrimitive,
		RegExp:      sameString,
		Date:        sameString,
		Error:       sameString,
		Function:    sameFunction,
		Array:       sameArray,
		PlainObject: sameObject,
	}
}

func (c TypeClass) String() string {
	if c < 0 || int(c) >= len(classNames) {
		return "Unknown"
	}

	return classNames[c]
}

// Equals reports whether actual is structurally equivalent to expected.
//
// Maps and structs are equal when they expose the same set of keys with equal values, regardless of order.
// Slices and arrays compare by index. When exactly one side is a *regexp.Regexp it is used as a pattern
// and the other side is stringified and searched with it, so a pattern can stand in for any value.
func Equals(expected, actual interface{}) bool {
	if same(expected, actual) {
		return true
	}

	ev, av := reflect.ValueOf(expected), reflect.ValueOf(actual)
	ec, ac := classOf(ev), classOf(av)

	if ec == Number && ac == Number && math.IsNaN(number(ev)) && math.IsNaN(number(av)) {
		return true
	}

	if ec != ac {
		switch {
		case ec == RegExp:
			return pattern(ev).MatchString(Stringify(actual))
		case ac == RegExp:
			return pattern(av).MatchString(Stringify(expected))
		}

		return false
	}

	compare, ok := comparators[ec]
	if !ok {
		return false
	}

	return compare(ev, av)
}

// Classify returns the TypeClass v is compared under.
func Classify(v interface{}) TypeClass {
	return classOf(reflect.ValueOf(v))
}

func classOf(v reflect.Value) TypeClass {
	if !v.IsValid() {
		return Other
	}

	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func:
		if v.IsNil() && v.Kind() != reflect.Map && v.Kind() != reflect.Slice {
			return Other
		}
	}

	t := v.Type()
	switch {
	case t == regexpType:
		return RegExp
	case t == timeType:
		return Date
	case t == numberType:
		return Number
	case t.Implements(errorType):
		return Error
	}

	switch t.Kind() {
	case reflect.Bool:
		return Boolean
	case reflect.String:
		return String
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return Number
	case reflect.Func:
		return Function
	case reflect.Slice, reflect.Array:
		return Array
	case reflect.Map, reflect.Struct:
		return PlainObject
	case reflect.Ptr, reflect.Interface:
		return classOf(v.Elem())
	}

	return Other
}

// same covers identical primitives and identical references.
func same(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	av, bv := reflect.ValueOf(a), reflect.ValueOf(b)
	if av.Type() != bv.Type() {
		return false
	}

	switch av.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return a == b
	case reflect.Ptr, reflect.Map, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return av.Pointer() == bv.Pointer()
	case reflect.Slice:
		return av.Pointer() == bv.Pointer() && av.Len() == bv.Len()
	}

	return false
}

// boxed reports whether a primitive is held behind a pointer.
func boxed(v reflect.Value) bool {
	for v.Kind() == reflect.Interface {
		v = v.Elem()
	}

	return v.Kind() == reflect.Ptr
}

func indirect(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		v = v.Elem()
	}

	return v
}

// unwrap dereferences v until it has type t.
func unwrap(v reflect.Value, t reflect.Type) reflect.Value {
	for v.Type() != t && (v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface) {
		v = v.Elem()
	}

	return v
}

func samePrimitive(a, b reflect.Value) bool {
	if boxed(a) != boxed(b) {
		return false
	}

	switch classOf(a) {
	case Boolean:
		return indirect(a).Bool() == indirect(b).Bool()
	case String:
		return indirect(a).String() == indirect(b).String()
	case Number:
		return number(a) == number(b)
	}

	return false
}

func sameString(a, b reflect.Value) bool {
	return canonical(a) == canonical(b)
}

func sameFunction(a, b reflect.Value) bool {
	return indirect(a).Pointer() == indirect(b).Pointer()
}

func sameArray(a, b reflect.Value) bool {
	a, b = indirect(a), indirect(b)
	if a.Len() != b.Len() {
		return false
	}

	for i := 0; i < a.Len(); i++ {
		if !Equals(a.Index(i).Interface(), b.Index(i).Interface()) {
			return false
		}
	}

	return true
}

func sameObject(a, b reflect.Value) bool {
	aProps, bProps := properties(a), properties(b)
	if len(aProps) != len(bProps) {
		return false
	}

	for name, aValue := range aProps {
		bValue, ok := bProps[name]
		if !ok || !Equals(aValue, bValue) {
			return false
		}
	}

	return true
}

// properties lists the own keys of a map or the exported fields of a struct.
func properties(v reflect.Value) map[string]interface{} {
	v = indirect(v)
	props := map[string]interface{}{}

	switch v.Kind() {
	case reflect.Map:
		iter := v.MapRange()
		for iter.Next() {
			props[fmt.Sprint(iter.Key().Interface())] = iter.Value().Interface()
		}
	case reflect.Struct:
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if field.PkgPath != "" {
				continue
			}

			if name := fieldName(field); name != "" {
				props[name] = v.Field(i).Interface()
			}
		}
	}

	return props
}

func fieldName(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return ""
	}

	if name := strings.Split(tag, ",")[0]; name != "" {
		return name
	}

	return field.Name
}

func number(v reflect.Value) float64 {
	v = unwrap(v, numberType)
	if v.Type() == numberType {
		f, err := strconv.ParseFloat(v.String(), 64)
		if err != nil {
			return math.NaN()
		}

		return f
	}

	v = indirect(v)
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(v.Uint())
	case reflect.Float32, reflect.Float64:
		return v.Float()
	}

	return math.NaN()
}

func pattern(v reflect.Value) *regexp.Regexp {
	return unwrap(v, regexpType).Interface().(*regexp.Regexp)
}

// canonical renders RegExp, Date and Error values in their comparable string form.
func canonical(v reflect.Value) string {
	switch classOf(v) {
	case RegExp:
		return pattern(v).String()
	case Date:
		return unwrap(v, timeType).Interface().(time.Time).UTC().Format(time.RFC3339Nano)
	case Error:
		for !v.Type().Implements(errorType) {
			v = v.Elem()
		}

		return v.Interface().(error).Error()
	}

	return ""
}

// Stringify renders v the way a regular expression pattern sees it.
// nil becomes "null", slices, arrays, maps and structs become compact JSON.
func Stringify(v interface{}) string {
	rv := reflect.ValueOf(v)

	switch classOf(rv) {
	case Boolean:
		return strconv.FormatBool(indirect(rv).Bool())
	case String:
		return indirect(rv).String()
	case Number:
		if n := unwrap(rv, numberType); n.Type() == numberType {
			return n.String()
		}

		return strconv.FormatFloat(number(rv), 'f', -1, 64)
	case RegExp, Date, Error:
		return canonical(rv)
	case Array, PlainObject:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}

		return string(b)
	case Other:
		if !rv.IsValid() || isNil(rv) {
			return "null"
		}
	}

	return fmt.Sprint(v)
}

func isNil(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}

	return false
}
