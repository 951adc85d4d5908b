package contenthash

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/shopspring/decimal"
)

// RowKey carries the semantically meaningful fields of a weigh transaction.
// Two rows with the same key are the same logical transaction regardless of
// which export file they arrived in.
type RowKey struct {
	DateStr       string
	TxType        string
	Product       string
	ProductDetail string
	QuantityTons  decimal.Decimal
	ProjectCode   string
	WeighNumber   string
	AliasID       string
	AliasName     string
}

// Digest returns the sha256 hex digest used as the dedup key for a weigh
// transaction. Quantity is fixed to 4 decimal places so the digest does not
// depend on how the source cell happened to be formatted.
func (k RowKey) Digest() string {
	parts := []string{
		k.DateStr,
		k.TxType,
		k.Product,
		k.ProductDetail,
		k.QuantityTons.StringFixed(4),
		k.ProjectCode,
		k.WeighNumber,
		k.AliasID,
		k.AliasName,
	}
	h := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(h[:])
}

// FileDigest hashes raw upload bytes for file-level idempotency checks.
func FileDigest(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
