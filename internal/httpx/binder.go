package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/mold/v4"
	"github.com/go-playground/mold/v4/modifiers"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
)

// RequestError is a client error produced while binding a request.
type RequestError struct {
	Status  int
	Code    string
	Message string
	Details []ErrorDetail
}

func (e *RequestError) Error() string { return e.Message }

func badRequest(msg string) *RequestError {
	return &RequestError{Status: http.StatusBadRequest, Code: "BAD_REQUEST", Message: msg}
}

func validationError(msg string, details []ErrorDetail) *RequestError {
	return &RequestError{Status: http.StatusUnprocessableEntity, Code: "VALIDATION_ERROR", Message: msg, Details: details}
}

// WriteBindError writes err using its status when it is a *RequestError and
// as a 500 otherwise.
func WriteBindError(w http.ResponseWriter, r *http.Request, err error) {
	var re *RequestError
	if errors.As(err, &re) {
		JSONError(w, r, re.Status, re.Code, re.Message, re.Details)
		return
	}
	JSONInternalError(w, r)
}

// Binder decodes JSON bodies, forms and query strings into structs, cleans
// them up with mold and validates them.
type Binder struct {
	queryDecoder *schema.Decoder
	formDecoder  *schema.Decoder
	conform      *mold.Transformer
	validate     *validator.Validate
}

func NewBinder() *Binder {
	queryDecoder := schema.NewDecoder()
	queryDecoder.SetAliasTag("query")
	queryDecoder.IgnoreUnknownKeys(true)

	formDecoder := schema.NewDecoder()
	formDecoder.SetAliasTag("form")
	formDecoder.IgnoreUnknownKeys(true)

	validate := validator.New()
	validate.RegisterTagNameFunc(fieldName)
	if err := validate.RegisterValidation("maxbytes", maxBytes); err != nil {
		panic(err)
	}

	return &Binder{
		queryDecoder: queryDecoder,
		formDecoder:  formDecoder,
		conform:      modifiers.New(),
		validate:     validate,
	}
}

// maxBytes limits the encoded length of a string, unlike max which counts
// runes. bcrypt rejects passwords over 72 bytes.
func maxBytes(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= n
}

func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "query", "form"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

func (b *Binder) BindJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return validationError(fmt.Sprintf("%s must be a %s", typeErr.Field, typeErr.Type.String()), nil)
		}
		return badRequest("Invalid request body")
	}
	return b.finish(r, dst)
}

func (b *Binder) BindForm(r *http.Request, dst any) error {
	if err := r.ParseForm(); err != nil {
		return badRequest("Invalid form body")
	}
	if err := decodeValues(b.formDecoder, dst, r.PostForm); err != nil {
		return err
	}
	return b.finish(r, dst)
}

// BindQuery treats parameters given with an empty value as absent.
func (b *Binder) BindQuery(r *http.Request, dst any) error {
	values := make(map[string][]string)
	for key, vals := range r.URL.Query() {
		for _, v := range vals {
			if v != "" {
				values[key] = append(values[key], v)
			}
		}
	}
	if err := decodeValues(b.queryDecoder, dst, values); err != nil {
		return err
	}
	return b.finish(r, dst)
}

func decodeValues(d *schema.Decoder, dst any, values map[string][]string) error {
	err := d.Decode(dst, values)
	if err == nil {
		return nil
	}
	var multi schema.MultiError
	if errors.As(err, &multi) {
		var details []ErrorDetail
		for key, fieldErr := range multi {
			var conv schema.ConversionError
			if errors.As(fieldErr, &conv) {
				details = append(details, ErrorDetail{Field: key, Message: fmt.Sprintf("%s must be a valid %s", key, conv.Type)})
				continue
			}
			details = append(details, ErrorDetail{Field: key, Message: fieldErr.Error()})
		}
		return validationError("Invalid input", details)
	}
	return badRequest("Invalid parameters")
}

func (b *Binder) finish(r *http.Request, dst any) error {
	if err := b.conform.Struct(r.Context(), dst); err != nil {
		return err
	}
	if details := b.Validate(dst); len(details) > 0 {
		return validationError("Invalid input", details)
	}
	return nil
}

// Validate returns one detail per failed field, or nil.
func (b *Binder) Validate(s any) []ErrorDetail {
	err := b.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []ErrorDetail{{Message: err.Error()}}
	}

	details := make([]ErrorDetail, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		param := fe.Param()

		var message string
		switch fe.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", field)
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", field)
		case "min":
			message = fmt.Sprintf("%s must be at least %s", field, param)
		case "max":
			message = fmt.Sprintf("%s must be at most %s", field, param)
		case "maxbytes":
			message = fmt.Sprintf("%s must be at most %s bytes long", field, param)
		case "gte":
			message = fmt.Sprintf("%s must be greater than or equal to %s", field, param)
		case "lte":
			message = fmt.Sprintf("%s must be less than or equal to %s", field, param)
		case "numeric":
			message = fmt.Sprintf("%s must contain only digits", field)
		case "len":
			message = fmt.Sprintf("%s must be exactly %s characters long", field, param)
		default:
			message = fmt.Sprintf("%s is invalid", field)
		}
		details = append(details, ErrorDetail{Field: field, Message: message})
	}
	return details
}
