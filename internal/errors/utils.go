package errors

import (
	"errors"
)

// Wrap wraps an error with additional context, creating a FolioError if the input is not already one
func Wrap(err error, errType ErrorType, code, message string) *FolioError {
	if err == nil {
		return nil
	}

	// Keep the inner error's location and context when re-wrapping
	var fe *FolioError
	if errors.As(err, &fe) {
		return &FolioError{
			Type:    errType,
			Code:    code,
			Message: message,
			Cause:   fe,
			Path:    fe.Path,
			Context: fe.Context,
		}
	}

	return &FolioError{
		Type:    errType,
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// WrapValidation wraps an error as a validation error
func WrapValidation(err error, code, message string) *FolioError {
	return Wrap(err, ErrorTypeValidation, code, message)
}

// WrapIO wraps an error as an I/O error
func WrapIO(err error, code, message string) *FolioError {
	return Wrap(err, ErrorTypeIO, code, message)
}

// WrapConfig wraps an error as a configuration error
func WrapConfig(err error, code, message string) *FolioError {
	return Wrap(err, ErrorTypeConfig, code, message)
}

// Join is errors.Join re-exported so callers importing this package under
// its default name keep access to it.
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// As is errors.As re-exported for the same reason as Join.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Is is errors.Is re-exported for the same reason as Join.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
