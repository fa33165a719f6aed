package parser

import (
	"fmt"
	"strings"
)

// Source is what a HintDecoder reads. Path is set when the statement is already
// backed by a file on disk; Data always holds the document bytes.
type Source struct {
	Path string
	Data []byte
}

// HintDecoder renders the first page and decodes a machine-readable code on it.
type HintDecoder interface {
	DecodeFirstPage(src Source) (string, error)
}

// structuredHint runs the advisory hint stage. Failures never reach the caller.
func (p *Parser) structuredHint(src Source) (*Hint, bool) {
	if p.hints == nil {
		return nil, false
	}

	payload, err := p.safeDecode(src)
	if err != nil {
		p.logger.Debug("structured hint unavailable", "error", err)
		return nil, false
	}
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, false
	}
	return &Hint{Payload: payload}, true
}

// safeDecode converts a decoder panic into an error; native renderers can fault
// on unusual documents.
func (p *Parser) safeDecode(src Source) (payload string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &hintPanic{value: r}
		}
	}()
	return p.hints.DecodeFirstPage(src)
}

type hintPanic struct {
	value any
}

func (h *hintPanic) Error() string {
	return fmt.Sprintf("hint decoder panicked: %v", h.value)
}
