package dto

import (
	"html"
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Order ids look like TOPUP-1a2b3c4d-1718000000000; user ids are BaaS UUIDs.
var safeStringRe = regexp.MustCompile(`^[a-zA-Z0-9_\-\.]+$`)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("safe_id", validateSafeID)
	}
}

// validateSafeID allows alphanumeric, underscore, dash, and dot.
func validateSafeID(fl validator.FieldLevel) bool {
	return safeStringRe.MatchString(fl.Field().String())
}

// SanitizeStruct trims whitespace on every exported string field of a struct
// pointer and HTML-escapes the fields tagged sanitize:"html". Identity fields
// are never escaped. Customer names end up in gateway e-mails.
func SanitizeStruct(v interface{}) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return
	}
	rv = rv.Elem()
	rt := rv.Type()
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if f.Kind() != reflect.String || !f.CanSet() {
			continue
		}
		s := strings.TrimSpace(f.String())
		if rt.Field(i).Tag.Get("sanitize") == "html" {
			s = html.EscapeString(s)
		}
		f.SetString(s)
	}
}
