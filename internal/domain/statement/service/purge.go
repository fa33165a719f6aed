package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// PurgeExpiredFiles deletes stored PDFs uploaded before the cutoff. Parsed
// records are kept. It returns the number of files removed.
func (s *StatementService) PurgeExpiredFiles(ctx context.Context, before time.Time) (int, error) {
	purged := 0
	for {
		expired, err := s.repo.ListFilesUploadedBefore(ctx, before, purgeBatchSize)
		if err != nil {
			return purged, fmt.Errorf("failed to list expired files: %w", err)
		}
		if len(expired) == 0 {
			break
		}

		progress := 0
		for _, st := range expired {
			if err := ctx.Err(); err != nil {
				return purged, err
			}
			if err := s.files.Delete(ctx, st.UserID, st.FileID); err != nil {
				s.logger.Warn("failed to purge statement file",
					slog.String("statement_id", st.ID.String()),
					slog.Any("error", err),
				)
				continue
			}
			if err := s.repo.MarkFilePurged(ctx, st.ID, s.now().UTC()); err != nil {
				s.logger.Warn("failed to mark statement file purged",
					slog.String("statement_id", st.ID.String()),
					slog.Any("error", err),
				)
				continue
			}
			progress++
		}

		purged += progress
		if progress == 0 || len(expired) < purgeBatchSize {
			break
		}
	}

	if s.observer != nil && purged > 0 {
		s.observer.FilesPurged(purged)
	}
	s.logger.Info("statement file retention completed",
		slog.Int("files_purged", purged),
		slog.Time("before", before),
	)
	return purged, nil
}
