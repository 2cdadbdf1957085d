// Package validate checks request payloads against `validate` struct tags.
//
// Rules are comma separated; the first failing rule per field wins:
//
//	required          not zero or blank (a nil pointer is blank, a pointer to 0 is not)
//	nullable          blank values skip the remaining rules
//	alpha_dash        letters, digits, '-' and '_'
//	min=N, max=N      numeric bound, or rune length for strings
//	gte=N, lte=N      numeric bound
//	between=lo,hi     inclusive; numeric or rune length
//	in=a,b,c          one of the listed values
//
//	type SetQuantityInput struct {
//	    Quantity *int `json:"quantity" validate:"required,gte=0,lte=999"`
//	}
package validate

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"unicode"
)

type rule struct {
	name  string
	param string
}

type fieldRules struct {
	index    int
	name     string
	nullable bool
	rules    []rule
}

// checks maps a rule name to its check. A check sees the dereferenced value
// and returns a message, or "" when the value passes.
var checks = map[string]func(field, param string, v reflect.Value) string{
	"alpha_dash": checkAlphaDash,
	"min":        checkMin,
	"max":        checkMax,
	"gte":        checkGte,
	"lte":        checkLte,
	"between":    checkBetween,
	"in":         checkIn,
}

var cache sync.Map // reflect.Type → []fieldRules

// Struct validates the exported fields of v that carry a `validate` tag and
// returns field name → message. Non-struct values always pass.
func Struct(v any) map[string]string {
	errs := make(map[string]string)

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr && !rv.IsNil() {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return errs
	}

	for _, f := range rulesFor(rv.Type()) {
		if msg := f.check(rv.Field(f.index)); msg != "" {
			errs[f.name] = msg
		}
	}
	return errs
}

// HasErrors reports whether errs holds any failure.
func HasErrors(errs map[string]string) bool { return len(errs) > 0 }

func (f fieldRules) check(v reflect.Value) string {
	blank := isBlank(v)
	if f.nullable && blank {
		return ""
	}
	for _, r := range f.rules {
		if r.name == "required" {
			if blank {
				return fmt.Sprintf("The %s field is required.", f.name)
			}
			continue
		}
		if v.Kind() == reflect.Ptr {
			if v.IsNil() {
				return ""
			}
			v = v.Elem()
		}
		if c, ok := checks[r.name]; ok {
			if msg := c(f.name, r.param, v); msg != "" {
				return msg
			}
		}
	}
	return ""
}

func rulesFor(t reflect.Type) []fieldRules {
	if cached, ok := cache.Load(t); ok {
		return cached.([]fieldRules)
	}
	var out []fieldRules
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag, ok := sf.Tag.Lookup("validate")
		if !ok || tag == "" || !sf.IsExported() {
			continue
		}
		f := fieldRules{index: i, name: jsonName(sf)}
		for _, r := range parseTag(tag) {
			if r.name == "nullable" {
				f.nullable = true
				continue
			}
			f.rules = append(f.rules, r)
		}
		out = append(out, f)
	}
	cache.Store(t, out)
	return out
}

// parseTag splits on commas, folding a token that does not start a known
// rule into the previous rule's parameter, so "in=tool,material" and
// "between=0,5" survive intact.
func parseTag(tag string) []rule {
	var rules []rule
	for _, tok := range strings.Split(tag, ",") {
		tok = strings.TrimSpace(tok)
		name, param, _ := strings.Cut(tok, "=")
		if !knownRule(name) && len(rules) > 0 {
			last := &rules[len(rules)-1]
			last.param += "," + tok
			continue
		}
		rules = append(rules, rule{name: name, param: param})
	}
	return rules
}

func knownRule(name string) bool {
	if name == "required" || name == "nullable" {
		return true
	}
	_, ok := checks[name]
	return ok
}

func checkAlphaDash(field, _ string, v reflect.Value) string {
	for _, c := range text(v) {
		if !unicode.IsLetter(c) && !unicode.IsDigit(c) && c != '-' && c != '_' {
			return fmt.Sprintf("The %s field may only contain letters, numbers, dashes, and underscores.", field)
		}
	}
	return ""
}

func checkMin(field, param string, v reflect.Value) string {
	n := number(param)
	if isNumber(v) {
		if toFloat(v) < n {
			return fmt.Sprintf("The %s must be at least %s.", field, param)
		}
	} else if runes(v) < n {
		return fmt.Sprintf("The %s must be at least %s characters.", field, param)
	}
	return ""
}

func checkMax(field, param string, v reflect.Value) string {
	n := number(param)
	if isNumber(v) {
		if toFloat(v) > n {
			return fmt.Sprintf("The %s must not be greater than %s.", field, param)
		}
	} else if runes(v) > n {
		return fmt.Sprintf("The %s must not exceed %s characters.", field, param)
	}
	return ""
}

func checkGte(field, param string, v reflect.Value) string {
	if toFloat(v) < number(param) {
		return fmt.Sprintf("The %s must be greater than or equal to %s.", field, param)
	}
	return ""
}

func checkLte(field, param string, v reflect.Value) string {
	if toFloat(v) > number(param) {
		return fmt.Sprintf("The %s must be less than or equal to %s.", field, param)
	}
	return ""
}

func checkBetween(field, param string, v reflect.Value) string {
	lo, hi, ok := strings.Cut(param, ",")
	if !ok {
		return ""
	}
	if isNumber(v) {
		if f := toFloat(v); f < number(lo) || f > number(hi) {
			return fmt.Sprintf("The %s must be between %s and %s.", field, lo, hi)
		}
		return ""
	}
	if l := runes(v); l < number(lo) || l > number(hi) {
		return fmt.Sprintf("The %s must be between %s and %s characters.", field, lo, hi)
	}
	return ""
}

func checkIn(field, param string, v reflect.Value) string {
	s := text(v)
	for _, allowed := range strings.Split(param, ",") {
		if s == strings.TrimSpace(allowed) {
			return ""
		}
	}
	return fmt.Sprintf("The selected %s is invalid.", field)
}

func isBlank(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	case reflect.Bool:
		return false
	}
	return isNumber(v) && toFloat(v) == 0
}

func isNumber(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func toFloat(v reflect.Value) float64 {
	switch {
	case v.CanInt():
		return float64(v.Int())
	case v.CanUint():
		return float64(v.Uint())
	case v.CanFloat():
		return v.Float()
	}
	return number(text(v))
}

func text(v reflect.Value) string {
	if v.Kind() == reflect.String {
		return v.String()
	}
	return fmt.Sprint(v.Interface())
}

func runes(v reflect.Value) float64 { return float64(len([]rune(text(v)))) }

func number(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return strings.ToLower(f.Name)
	}
	return name
}
