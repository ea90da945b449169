// Package dedupe flags incoming transactions that already exist for a user.
// Identity is content-based: two transactions with the same date, amount, and
// normalized merchant are the same transaction no matter how the bank spelled
// the rest of the row.
package dedupe

import (
	"fmt"
	"strings"

	"github.com/dkruglov/pennyflow/internal/domain"
	"github.com/dkruglov/pennyflow/internal/normalize"
)

// Hash derives the duplicate-identity key for a transaction. The date is
// truncated to its day portion so a time-of-day suffix never splits identity.
// Pure and deterministic; the hash is compared in-memory, never persisted.
func Hash(tx domain.ParsedTransaction) string {
	return hashParts(tx.Date, tx.AmountCents, tx.Merchant)
}

// HashRecord computes the same key for an already-persisted transaction.
func HashRecord(rec domain.TransactionRecord) string {
	return hashParts(rec.Date, rec.AmountCents, rec.Merchant)
}

func hashParts(date string, cents int64, merchant string) string {
	if i := strings.IndexAny(date, "T "); i != -1 {
		date = date[:i]
	}
	return fmt.Sprintf("%s|%d|%s", date, cents, normalize.Merchant(merchant))
}

// Filter applies duplicate handling to a batch. With skipDuplicates true,
// every transaction whose hash is in the set is removed and survivors carry
// IsDuplicate=false. With skipDuplicates false, all transactions are kept and
// each one's IsDuplicate flag reflects set membership (import-but-flag).
func Filter(txs []domain.ParsedTransaction, duplicateHashes map[string]bool, skipDuplicates bool) []domain.ParsedTransaction {
	out := make([]domain.ParsedTransaction, 0, len(txs))
	for _, tx := range txs {
		isDup := duplicateHashes[Hash(tx)]
		if skipDuplicates && isDup {
			continue
		}
		if skipDuplicates {
			tx.IsDuplicate = false
		} else {
			tx.IsDuplicate = isDup
		}
		out = append(out, tx)
	}
	return out
}
