package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"dymm/internal/auth"
	"dymm/internal/http/respond"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	return v
}

// decode reads a JSON body into dst and validates it. On failure it writes
// a 400 and returns false.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		respond.BadRequest(w, "Bad request, invalid json")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		respond.BadRequest(w, "Bad request, "+validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	e := verrs[0]
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "notblank":
		return e.Field() + " must not be blank"
	case "email":
		return e.Field() + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s", e.Field(), e.Param())
	case "max":
		return fmt.Sprintf("%s must not exceed %s", e.Field(), e.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", e.Field(), e.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", e.Field(), e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", e.Field(), e.Param())
	case "datetime":
		return fmt.Sprintf("%s must be a date like %s", e.Field(), e.Param())
	default:
		return e.Field() + " is invalid"
	}
}

// urlUint parses a positive integer URL parameter, writing a 400 when it
// is missing or malformed.
func urlUint(w http.ResponseWriter, r *http.Request, name string) (uint64, bool) {
	v, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil || v == 0 {
		respond.BadRequest(w, "Bad request, invalid "+name)
		return 0, false
	}
	return v, true
}

func urlInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || v < 0 {
		respond.BadRequest(w, "Bad request, invalid "+name)
		return 0, false
	}
	return v, true
}

// caller returns the authenticated avatar id. A non-zero claimed id from a
// request body must match it.
func caller(w http.ResponseWriter, r *http.Request, claimed uint64) (uint64, bool) {
	id, ok := auth.AvatarIDFromContext(r.Context())
	if !ok {
		respond.Unauthorized(w, "Unauthorized, missing token", 0)
		return 0, false
	}
	if claimed != 0 && claimed != id {
		respond.Forbidden(w, "Forbidden, avatar mismatch", 0)
		return 0, false
	}
	return id, true
}
