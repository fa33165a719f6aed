package parser

import (
	"errors"
	"fmt"
)

// ErrEncrypted is returned by a Loader when the document needs a password to open.
var ErrEncrypted = errors.New("document is password protected")

// Sentinels matched by *ParseError through errors.Is.
var (
	ErrPasswordRequired  = errors.New("statement password required")
	ErrWrongPassword     = errors.New("statement password incorrect")
	ErrMalformedDocument = errors.New("statement document unreadable")
)

// ErrorKind classifies a failed parse.
type ErrorKind int

const (
	KindMalformedDocument ErrorKind = iota
	KindEncryptionRequired
	KindWrongPassword
)

func (k ErrorKind) String() string {
	switch k {
	case KindEncryptionRequired:
		return "encryption_required"
	case KindWrongPassword:
		return "wrong_password"
	default:
		return "malformed_document"
	}
}

// ParseError is the only failure Parse returns.
type ParseError struct {
	Kind    ErrorKind
	Message string
	Err     error // underlying diagnostic, may be nil
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is lets callers match the error kind with the package sentinels.
func (e *ParseError) Is(target error) bool {
	switch target {
	case ErrPasswordRequired:
		return e.Kind == KindEncryptionRequired
	case ErrWrongPassword:
		return e.Kind == KindWrongPassword
	case ErrMalformedDocument:
		return e.Kind == KindMalformedDocument
	}
	return false
}

// Encrypted reports whether the document requires a password.
func (e *ParseError) Encrypted() bool {
	return e.Kind == KindEncryptionRequired || e.Kind == KindWrongPassword
}

// WrongPassword reports whether a supplied password failed to decrypt the document.
func (e *ParseError) WrongPassword() bool {
	return e.Kind == KindWrongPassword
}

func errPasswordRequired() *ParseError {
	return &ParseError{
		Kind:    KindEncryptionRequired,
		Message: "this statement is password protected, please provide the password",
	}
}

func errWrongPassword(cause error) *ParseError {
	return &ParseError{
		Kind:    KindWrongPassword,
		Message: "incorrect password for this statement",
		Err:     cause,
	}
}

func errMalformed(message string, cause error) *ParseError {
	return &ParseError{
		Kind:    KindMalformedDocument,
		Message: message,
		Err:     cause,
	}
}
