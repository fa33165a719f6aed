package pdf

import (
	"fmt"
	"log/slog"

	"github.com/gen2brain/go-fitz"
	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"

	"github.com/FACorreiaa/pesa-insights/internal/domain/statement/parser"
)

// QRDecoder rasterizes the first page of a statement and decodes a QR code on it.
type QRDecoder struct {
	logger *slog.Logger
}

// NewHintDecoder returns the decoder for the parser's structured-hint stage, or nil
// when the stage is disabled.
func NewHintDecoder(enabled bool, logger *slog.Logger) parser.HintDecoder {
	if !enabled {
		return nil
	}
	return NewQRDecoder(logger)
}

// NewQRDecoder creates a QRDecoder.
func NewQRDecoder(logger *slog.Logger) *QRDecoder {
	if logger == nil {
		logger = slog.Default()
	}
	return &QRDecoder{logger: logger}
}

// DecodeFirstPage returns the raw text of the first QR code found on page one.
func (q *QRDecoder) DecodeFirstPage(src parser.Source) (string, error) {
	var payload string
	err := withLocalPath(src, func(path string) error {
		doc, err := fitz.New(path)
		if err != nil {
			return fmt.Errorf("failed to open PDF: %w", err)
		}
		defer doc.Close()

		if doc.NumPage() == 0 {
			return fmt.Errorf("document has no pages")
		}

		img, err := doc.Image(0)
		if err != nil {
			return fmt.Errorf("failed to render first page: %w", err)
		}

		bmp, err := gozxing.NewBinaryBitmapFromImage(img)
		if err != nil {
			return fmt.Errorf("failed to binarize first page: %w", err)
		}

		result, err := qrcode.NewQRCodeReader().Decode(bmp, nil)
		if err != nil {
			return fmt.Errorf("no QR code on first page: %w", err)
		}
		payload = result.GetText()
		return nil
	})
	if err != nil {
		return "", err
	}

	q.logger.Debug("decoded statement QR code", slog.Int("payload_length", len(payload)))
	return payload, nil
}
