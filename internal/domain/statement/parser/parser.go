package parser

import (
	"io"
	"log/slog"
)

// Parser is the statement parsing core. It holds no per-call state and is safe for
// concurrent use.
type Parser struct {
	loader     Loader
	hints      HintDecoder // nil when rasterizing or decoding is not supported
	classifier *Classifier
	logger     *slog.Logger
}

// New creates a parser that opens documents with loader.
func New(loader Loader, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{
		loader:     loader,
		classifier: NewClassifier(),
		logger:     logger,
	}
}

// WithHintDecoder enables the structured-hint stage. Pass nil to disable it.
func (p *Parser) WithHintDecoder(decoder HintDecoder) *Parser {
	p.hints = decoder
	return p
}

// HintsEnabled reports whether the structured-hint stage will run for unencrypted documents.
func (p *Parser) HintsEnabled() bool {
	return p.hints != nil
}

// Parse reads a statement from r, which is rewound first. An empty password means
// none was supplied. Every failure is a *ParseError.
func (p *Parser) Parse(r io.ReadSeeker, password string) (*ParsedStatement, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, errMalformed("could not read statement", err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errMalformed("could not read statement", err)
	}

	src := Source{Data: data}
	if named, ok := r.(interface{ Name() string }); ok {
		src.Path = named.Name()
	}

	return p.parse(src, password)
}

func (p *Parser) parse(src Source, password string) (*ParsedStatement, error) {
	doc, wasEncrypted, perr := openDocument(p.loader, src.Data, password)
	if perr != nil {
		return nil, perr
	}
	defer doc.Close()

	text, err := extractText(doc)
	if err != nil {
		return nil, errMalformed("could not extract statement text", err)
	}

	stmt := &ParsedStatement{}

	// Rasterizing encrypted documents is unreliable, so the hint stage is skipped for them.
	if !wasEncrypted {
		stmt.Hint, _ = p.structuredHint(src)
	}

	stmt.Period = extractPeriod(text)
	stmt.Transactions = segment(text)
	stmt.Categorized = p.classifier.Categorize(stmt.Transactions)
	stmt.TotalIncoming = stmt.Categorized.Get(CategoryIncoming)
	stmt.TotalOutgoing = stmt.Categorized.Outgoing()

	p.logger.Debug("statement parsed",
		slog.Int("transactions", len(stmt.Transactions)),
		slog.Bool("encrypted", wasEncrypted),
		slog.Bool("period_found", stmt.Period != nil),
		slog.Bool("hint_found", stmt.Hint != nil),
	)

	return stmt, nil
}
