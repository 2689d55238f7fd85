package errors

import (
	stderrors "errors"
	"fmt"

	goerrors "github.com/go-errors/errors"
)

type ErrorType string

const (
	ErrTypeBrowserLaunch   ErrorType = "BROWSER_LAUNCH"
	ErrTypeNavigation      ErrorType = "NAVIGATION"
	ErrTypeSelectorTimeout ErrorType = "SELECTOR_TIMEOUT"
	ErrTypeAuthentication  ErrorType = "AUTHENTICATION"
	ErrTypeInvalidSession  ErrorType = "INVALID_SESSION"
	ErrTypeParse           ErrorType = "PARSE"
	ErrTypeInvalidInput    ErrorType = "INVALID_INPUT"
	ErrTypeStorage         ErrorType = "STORAGE"
	ErrTypeInternal        ErrorType = "INTERNAL"
)

type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Stack   []byte
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func (e *DomainError) StackTrace() []byte {
	return e.Stack
}

func New(errType ErrorType, message string, err error) *DomainError {
	var stack []byte
	if err != nil {
		if stackErr, ok := err.(*goerrors.Error); ok {
			stack = stackErr.Stack()
		} else {
			stack = goerrors.Wrap(err, 2).Stack()
		}
	} else {
		stack = goerrors.New(message).Stack()
	}

	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
		Stack:   stack,
	}
}

func BrowserLaunch(message string, err error) *DomainError {
	return New(ErrTypeBrowserLaunch, message, err)
}

func Navigation(message string, err error) *DomainError {
	return New(ErrTypeNavigation, message, err)
}

func SelectorTimeout(message string, err error) *DomainError {
	return New(ErrTypeSelectorTimeout, message, err)
}

func Authentication(message string, err error) *DomainError {
	return New(ErrTypeAuthentication, message, err)
}

func InvalidSession(message string, err error) *DomainError {
	return New(ErrTypeInvalidSession, message, err)
}

func Parse(message string, err error) *DomainError {
	return New(ErrTypeParse, message, err)
}

func InvalidInput(message string, err error) *DomainError {
	return New(ErrTypeInvalidInput, message, err)
}

func Storage(message string, err error) *DomainError {
	return New(ErrTypeStorage, message, err)
}

func Internal(message string, err error) *DomainError {
	return New(ErrTypeInternal, message, err)
}

// TypeOf returns the type of the outermost DomainError in err's chain,
// or ErrTypeInternal when there is none.
func TypeOf(err error) ErrorType {
	var de *DomainError
	if stderrors.As(err, &de) {
		return de.Type
	}
	return ErrTypeInternal
}

func Is(err error, errType ErrorType) bool {
	for err != nil {
		var de *DomainError
		if !stderrors.As(err, &de) {
			return false
		}
		if de.Type == errType {
			return true
		}
		err = de.Err
	}
	return false
}
