package core

import (
	"fmt"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// Kind classifies errors returned by the data layer so callers can render a message
// without inspecting concrete types.
type Kind string

const (
	KindUnknown      Kind = "unknown"
	KindConnectivity Kind = "connectivity"
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindEnrollment   Kind = "enrollment"
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

// NewFieldsValidationError converts validator.ValidationErrors into a ValidationError
// holding one translated message per field. Other errors are returned unchanged.
func NewFieldsValidationError(err error, translator ut.Translator) error {
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		return err
	}
	flds := make([]FieldError, 0, len(vErrs))
	for _, fe := range vErrs {
		msg := fe.Error()
		if translator != nil {
			msg = fe.Translate(translator)
		}
		flds = append(flds, FieldError{Field: fe.Namespace(), Error: msg})
	}
	return &ValidationError{Err: errors.New("invalid data"), Fields: flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		if len(err.Fields) == 0 {
			return ""
		}
		msgs := make([]string, 0, len(err.Fields))
		for _, f := range err.Fields {
			msgs = append(msgs, f.Field+": "+f.Error)
		}
		return strings.Join(msgs, "; ")
	}
	return err.Err.Error()
}

// FieldMap returns {field: message}, with the struct name stripped from namespaced fields.
func (err ValidationError) FieldMap() map[string]string {
	m := make(map[string]string, len(err.Fields))
	for _, f := range err.Fields {
		name := f.Field
		if i := strings.Index(name, "."); i >= 0 {
			name = name[i+1:]
		}
		m[name] = f.Error
	}
	return m
}

// ConnectivityError reports that the gateway could not be reached or did not answer properly.
type ConnectivityError struct {
	Op  string
	Err error
}

func NewConnectivityError(op string, err error) error {
	return &ConnectivityError{Op: op, Err: err}
}

func (err ConnectivityError) Error() string {
	if err.Err == nil {
		return err.Op + ": gateway unreachable"
	}
	return fmt.Sprintf("%s: gateway unreachable: %v", err.Op, err.Err)
}

func (err ConnectivityError) Unwrap() error { return err.Err }

type NotFoundError struct {
	Resource string
	ID       string
}

func NewNotFoundError(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

func (err NotFoundError) Error() string {
	if err.ID == "" {
		return err.Resource + " not found"
	}
	return fmt.Sprintf("%s %q not found", err.Resource, err.ID)
}

// EnrollmentError is returned when an enrollment cannot be granted, e.g. the course does not exist.
type EnrollmentError struct {
	CourseID  string
	StudentID string
	Reason    string
}

func NewEnrollmentError(courseID, studentID, reason string) error {
	return &EnrollmentError{CourseID: courseID, StudentID: studentID, Reason: reason}
}

func (err EnrollmentError) Error() string {
	return fmt.Sprintf("cannot enroll student %q in course %q: %s", err.StudentID, err.CourseID, err.Reason)
}

// KindOf returns the Kind of err, looking through wrapped errors.
func KindOf(err error) Kind {
	var (
		vErr   *ValidationError
		cErr   *ConnectivityError
		nfErr  *NotFoundError
		enrErr *EnrollmentError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &vErr):
		return KindValidation
	case errors.As(err, &enrErr):
		return KindEnrollment
	case errors.As(err, &nfErr):
		return KindNotFound
	case errors.As(err, &cErr):
		return KindConnectivity
	default:
		return KindUnknown
	}
}

func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}
