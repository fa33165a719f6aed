package parser

import (
	"errors"
	"fmt"
	"strings"
)

// Document is an opened, readable statement.
type Document interface {
	NumPage() int
	Text(page int) (string, error)
	Close() error
}

// Loader opens raw statement bytes. Load must return ErrEncrypted (possibly wrapped)
// when the document needs a password; Decrypt returns the document bytes with the
// protection removed, or an error when the password does not open it.
type Loader interface {
	Load(data []byte) (Document, error)
	Decrypt(data []byte, password string) ([]byte, error)
}

// openDocument runs the decryption stage. The bool reports whether the document
// was password protected.
func openDocument(loader Loader, data []byte, password string) (Document, bool, *ParseError) {
	doc, err := loader.Load(data)
	if err == nil {
		return doc, false, nil
	}
	if !errors.Is(err, ErrEncrypted) {
		return nil, false, errMalformed("could not read statement", err)
	}
	if password == "" {
		return nil, true, errPasswordRequired()
	}

	plain, err := loader.Decrypt(data, password)
	if err != nil {
		return nil, true, errWrongPassword(err)
	}

	doc, err = loader.Load(plain)
	if err != nil {
		if errors.Is(err, ErrEncrypted) {
			return nil, true, errWrongPassword(err)
		}
		return nil, true, errMalformed("could not read decrypted statement", err)
	}
	return doc, true, nil
}

// extractText concatenates page text in order without adding separators.
func extractText(doc Document) (string, error) {
	var sb strings.Builder
	for i := 0; i < doc.NumPage(); i++ {
		text, err := doc.Text(i)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i+1, err)
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}
