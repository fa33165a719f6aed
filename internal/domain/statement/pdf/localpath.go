package pdf

import (
	"fmt"
	"os"

	"github.com/FACorreiaa/pesa-insights/internal/domain/statement/parser"
)

// withLocalPath calls fn with a filesystem path holding the statement. When the
// source is not file backed the bytes are written to a temporary file that is
// removed once fn returns. A caller supplied path is never removed.
func withLocalPath(src parser.Source, fn func(path string) error) error {
	if src.Path != "" {
		if _, err := os.Stat(src.Path); err == nil {
			return fn(src.Path)
		}
	}

	tmpFile, err := os.CreateTemp("", "statement-*.pdf")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(src.Data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	return fn(tmpFile.Name())
}
