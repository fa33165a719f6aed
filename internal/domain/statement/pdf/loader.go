// Package pdf opens M-Pesa statements for the parser with go-fitz and pdfcpu.
package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/gen2brain/go-fitz"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/FACorreiaa/pesa-insights/internal/domain/statement/parser"
)

var disableConfigDir sync.Once

// Loader implements parser.Loader. It is stateless and safe for concurrent use.
type Loader struct{}

// NewLoader creates a Loader.
func NewLoader() *Loader {
	// pdfcpu writes a config directory under $HOME on first use unless told not to.
	disableConfigDir.Do(api.DisableConfigDir)
	return &Loader{}
}

// Load opens a document from memory. Password protected documents yield parser.ErrEncrypted.
func (l *Loader) Load(data []byte) (parser.Document, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		if errors.Is(err, fitz.ErrNeedsPassword) {
			return nil, fmt.Errorf("failed to open PDF: %w", parser.ErrEncrypted)
		}
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	return &document{doc: doc}, nil
}

// Decrypt removes the protection from data using password as both user and owner password.
func (l *Loader) Decrypt(data []byte, password string) ([]byte, error) {
	conf := model.NewDefaultConfiguration()
	conf.UserPW = password
	conf.OwnerPW = password

	var out bytes.Buffer
	if err := api.Decrypt(bytes.NewReader(data), &out, conf); err != nil {
		return nil, fmt.Errorf("failed to decrypt PDF: %w", err)
	}
	return out.Bytes(), nil
}

type document struct {
	doc *fitz.Document
}

func (d *document) NumPage() int {
	return d.doc.NumPage()
}

func (d *document) Text(page int) (string, error) {
	return d.doc.Text(page)
}

func (d *document) Close() error {
	d.doc.Close()
	return nil
}
