package adapters

import (
	"time"

	"github.com/de-tools/zombie-exorcist/pkg/models/domain"
	"github.com/de-tools/zombie-exorcist/pkg/models/store"
)

func MapLedgerDomainToStore(l *domain.ExecutionLedger) store.LedgerFile {
	file := store.LedgerFile{
		Mode:             string(l.Mode),
		StartedAt:        l.StartedAt.UTC().Format(time.RFC3339),
		RealizedSavings:  l.RealizedSavings(),
		PotentialSavings: l.PotentialSavings(),
		CountByState:     map[string]int{},
		Entries:          make([]store.LedgerEntry, 0, len(l.Records)),
	}
	for state, count := range l.CountByState() {
		file.CountByState[string(state)] = count
	}
	for _, rec := range l.Records {
		entry := store.LedgerEntry{
			Kind:           string(rec.Action.Kind),
			ResourceType:   string(rec.Action.ResourceType),
			ResourceID:     rec.Action.ResourceID,
			Platform:       rec.Action.Platform,
			RiskTier:       rec.Action.RiskTier.String(),
			State:          string(rec.State),
			Reason:         rec.Reason,
			Error:          rec.Error,
			SavingsApplied: rec.SavingsApplied,
		}
		if rec.Backup != nil {
			entry.BackupID = rec.Backup.ID
			entry.BackupKind = rec.Backup.Kind
		}
		if !rec.BackedUpAt.IsZero() {
			entry.BackedUpAt = rec.BackedUpAt.UTC().Format(time.RFC3339Nano)
		}
		if !rec.AppliedAt.IsZero() {
			entry.AppliedAt = rec.AppliedAt.UTC().Format(time.RFC3339Nano)
		}
		file.Entries = append(file.Entries, entry)
	}
	return file
}
