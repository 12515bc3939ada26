package mapping

import (
	"github.com/sacco-suite/coop_core_app/internal/core/domain"
	"github.com/sacco-suite/coop_core_app/internal/models"
)

// ToModelLedgerEntry converts a domain LedgerEntry to a model LedgerEntry
func ToModelLedgerEntry(d domain.LedgerEntry) models.LedgerEntry {
	return models.LedgerEntry{
		EntryID:          d.EntryID,
		AccountID:        d.AccountID,
		AccountKind:      string(d.AccountKind),
		Sequence:         d.Sequence,
		EntryType:        string(d.EntryType),
		Amount:           d.Amount,
		EntryDate:        d.EntryDate,
		Reference:        d.Reference,
		ResultingBalance: d.ResultingBalance,
		AdminOverride:    d.AdminOverride,
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainLedgerEntry converts a model LedgerEntry to a domain LedgerEntry
func ToDomainLedgerEntry(m models.LedgerEntry) domain.LedgerEntry {
	return domain.LedgerEntry{
		EntryID:          m.EntryID,
		AccountID:        m.AccountID,
		AccountKind:      domain.AccountKind(m.AccountKind),
		Sequence:         m.Sequence,
		EntryType:        domain.EntryType(m.EntryType),
		Amount:           m.Amount,
		EntryDate:        m.EntryDate,
		Reference:        m.Reference,
		ResultingBalance: m.ResultingBalance,
		AdminOverride:    m.AdminOverride,
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainLedgerEntrySlice converts a slice of model LedgerEntries to domain LedgerEntries
func ToDomainLedgerEntrySlice(ms []models.LedgerEntry) []domain.LedgerEntry {
	ds := make([]domain.LedgerEntry, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainLedgerEntry(m)
	}
	return ds
}
