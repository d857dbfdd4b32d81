package store

import (
	"context"
	"fmt"

	"call-insights-go/internal/types"
)

// CallUpdate carries the columns one pipeline stage produced for one
// call, keyed by whichever call column that stage knows the call by
// (the transcription stage only knows the audio file, the analysis
// stage only knows the anonymized file, and so on).
type CallUpdate struct {
	Key    string
	Fields map[string]interface{}
}

// Columns a stage may key its updates on.
var updateKeyColumns = map[string]bool{
	"call_id":            true,
	"audio_file":         true,
	"transcription_file": true,
	"anonymized_file":    true,
}

// UpdateCalls applies one stage's output to the matching call rows and
// advances their status, all in a single transaction.
func (s *Store) UpdateCalls(ctx context.Context, status types.CallStatus, keyColumn string, updates []CallUpdate) error {
	if !updateKeyColumns[keyColumn] {
		return fmt.Errorf("update calls: %q is not an updatable key column", keyColumn)
	}
	if len(updates) == 0 {
		return nil
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("update calls: begin: %w", tx.Error)
	}
	for _, u := range updates {
		fields := make(map[string]interface{}, len(u.Fields)+1)
		for k, v := range u.Fields {
			fields[k] = v
		}
		fields["status"] = status

		res := tx.Model(&types.Call{}).Where(keyColumn+" = ?", u.Key).Updates(fields)
		if res.Error != nil {
			tx.Rollback()
			return wrapWriteErr("update calls", res.Error)
		}
		if res.RowsAffected == 0 {
			s.log.WithField(keyColumn, u.Key).Warn("stage update matched no call row")
		}
	}
	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("update calls: commit: %w", err)
	}

	s.log.WithField("count", len(updates)).WithField("status", string(status)).Info("calls updated")
	return nil
}
