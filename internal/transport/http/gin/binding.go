package httpgin

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/kirinyoku/railgo/internal/validate"
)

var registerTagNames sync.Once

// useJSONFieldNames makes validator report fields by their json names, so tag
// errors share keys with validate.Errors ("passengers[1].age").
func useJSONFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	})
}

// rangeMessages holds the min/max messages for range-tagged fields.
var rangeMessages = map[string]string{
	"age":        "Age must be between 1 and 120",
	"passengers": "Passengers must be between 1 and 6",
}

// tagErrors turns binding tag violations into field messages. The request
// struct name leading each namespace is dropped.
func tagErrors(verrs validator.ValidationErrors) validate.Errors {
	errs := validate.Errors{}
	for _, fe := range verrs {
		key := fe.Namespace()
		if i := strings.IndexByte(key, '.'); i >= 0 {
			key = key[i+1:]
		}

		switch msg, ok := rangeMessages[fe.Field()]; {
		case ok && (fe.Tag() == "min" || fe.Tag() == "max"):
			errs[key] = msg
		case fe.Tag() == "required":
			errs[key] = fe.Field() + " is required"
		default:
			errs[key] = fe.Field() + " is invalid"
		}
	}
	return errs
}

// bind decodes the request with b. Tag violations come back as field
// messages; any other failure is returned as err.
func bind(c *gin.Context, b binding.Binding, req any) (validate.Errors, error) {
	err := c.ShouldBindWith(req, b)

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return tagErrors(verrs), nil
	}
	return validate.Errors{}, err
}

// merge copies src into dst without overwriting messages already in dst.
func merge(dst, src validate.Errors) validate.Errors {
	for k, v := range src {
		if _, ok := dst[k]; !ok {
			dst[k] = v
		}
	}
	return dst
}
