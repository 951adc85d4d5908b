package ingest

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"WeighBridgeSaas/internal/contenthash"
)

// Transaction types and directions as persisted.
const (
	TxBuy  = "BUY"
	TxSell = "SELL"

	DirectionIn  = "IN"
	DirectionOut = "OUT"
)

// NormalizedRow is one weighbridge transaction after calendar, unit and
// project-code normalization. Rows live only inside a single import call;
// the importer persists them keyed by ContentHash.
type NormalizedRow struct {
	DateStr       string
	TxType        string
	Product       string
	ProductDetail string
	QuantityTons  decimal.Decimal
	Unit          string
	MixName       string
	ProjectCode   string
	ProjectName   string
	Customer      string
	Note          string
	AliasID       string
	AliasName     string
	WeighNumber   string
	Direction     string
	ContentHash   string
}

var (
	inboundTokens  = []string{"buy", "in", "ซื้อ", "รับเข้า", "ขาเข้า", "เข้า"}
	outboundTokens = []string{"sell", "out", "ขาย", "จ่ายออก", "ขาออก", "ออก"}

	kilogramTokens = []string{"kg", "kgs", "กก", "กิโลกรัม", "กิโล", "kilogram"}
	tonneTokens    = []string{"ton", "tons", "tonne", "ตัน"}
	tonneExact     = []string{"t", "mt"}

	notePattern    = regexp.MustCompile(`(?i)code\s*=\s*([A-Za-z0-9\-]+)`)
	projectPattern = regexp.MustCompile(`[A-Za-z]{3}\d{3,}`)
	thousandsSep   = strings.NewReplacer(",", "", " ", "")
)

// NormalizeRows converts the data rows of a resolved transaction sheet into
// normalized rows, consulting the mix reference for project resolution. Rows
// with an unparseable date or a non-positive tonnage are dropped.
func NormalizeRows(t *SheetTable, mix *MixReference) []NormalizedRow {
	if mix == nil {
		mix = BuildMixReference(nil)
	}
	var out []NormalizedRow
	for _, row := range t.DataRows {
		r, ok := normalizeRow(t, mix, row)
		if !ok {
			continue
		}
		out = append(out, r)
	}
	return out
}

func normalizeRow(t *SheetTable, mix *MixReference, row []string) (NormalizedRow, bool) {
	dateStr, ok := NormalizeDate(t.Cell(row, FieldDate))
	if !ok {
		return NormalizedRow{}, false
	}

	mixName := t.Cell(row, FieldMixName)
	txType, direction := resolveTxType(t.Cell(row, FieldType), mixName)

	qty, ok := convertQuantity(t.Cell(row, FieldWeight), t.Cell(row, FieldUnit))
	if !ok {
		return NormalizedRow{}, false
	}

	r := NormalizedRow{
		DateStr:       dateStr,
		TxType:        txType,
		Product:       t.Cell(row, FieldProduct),
		ProductDetail: t.Cell(row, FieldDetail),
		QuantityTons:  qty,
		Unit:          t.Cell(row, FieldUnit),
		MixName:       mixName,
		Customer:      t.Cell(row, FieldCustomer),
		Note:          t.Cell(row, FieldNote),
		AliasID:       t.Cell(row, FieldAliasID),
		AliasName:     t.Cell(row, FieldAliasName),
		WeighNumber:   t.Cell(row, FieldWeighNumber),
		Direction:     direction,
	}
	if r.Product == "" && mixName != "" {
		r.Product = mixName
	}

	r.ProjectCode, r.ProjectName = resolveProject(t, mix, row, r, mixName)

	r.ContentHash = contenthash.RowKey{
		DateStr:       r.DateStr,
		TxType:        r.TxType,
		Product:       r.Product,
		ProductDetail: r.ProductDetail,
		QuantityTons:  r.QuantityTons,
		ProjectCode:   r.ProjectCode,
		WeighNumber:   r.WeighNumber,
		AliasID:       r.AliasID,
		AliasName:     r.AliasName,
	}.Digest()
	return r, true
}

// resolveTxType classifies a row as BUY or SELL from the type/direction cell.
// An ambiguous cell falls back to SELL when the mix/job field is filled
// (mixed concrete always leaves the plant) and BUY otherwise.
func resolveTxType(typeCell, mixName string) (txType, direction string) {
	c := strings.ToLower(strings.TrimSpace(typeCell))
	for _, tok := range outboundTokens {
		if c != "" && strings.Contains(c, tok) {
			return TxSell, DirectionOut
		}
	}
	for _, tok := range inboundTokens {
		if c != "" && strings.Contains(c, tok) {
			return TxBuy, DirectionIn
		}
	}
	if strings.TrimSpace(mixName) != "" {
		return TxSell, ""
	}
	return TxBuy, ""
}

// convertQuantity parses the weight cell and converts to tonnes. Kilogram
// unit tokens divide by 1000; tonne tokens pass through; a missing or
// unrecognized unit is assumed to be kilograms, which is what the weighbridge
// terminals emit when the unit column is blank. Non-positive results drop
// the row.
func convertQuantity(weightCell, unitCell string) (decimal.Decimal, bool) {
	raw := thousandsSep.Replace(strings.TrimSpace(weightCell))
	if raw == "" {
		return decimal.Zero, false
	}
	qty, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	if !isTonneUnit(unitCell) {
		qty = qty.Div(decimal.NewFromInt(1000))
	}
	if qty.Sign() <= 0 {
		return decimal.Zero, false
	}
	return qty, true
}

func isTonneUnit(unitCell string) bool {
	u := strings.ToLower(strings.TrimSpace(unitCell))
	if u == "" {
		return false
	}
	for _, tok := range kilogramTokens {
		if strings.Contains(u, tok) {
			return false
		}
	}
	for _, tok := range tonneExact {
		if u == tok {
			return true
		}
	}
	for _, tok := range tonneTokens {
		if strings.Contains(u, tok) {
			return true
		}
	}
	return false
}

// resolveProject applies the project-code precedence: explicit code column,
// "code=XXXX" in the note, a generic site-code pattern in the note, the same
// pattern in the customer cell, and finally the mix-name lookup table. The
// display name comes from the mix reference when the row itself has none.
func resolveProject(t *SheetTable, mix *MixReference, row []string, r NormalizedRow, mixName string) (code, name string) {
	name = t.Cell(row, FieldProjectName)

	code = strings.ToUpper(t.Cell(row, FieldProjectCode))
	if code == "" {
		if m := notePattern.FindStringSubmatch(r.Note); m != nil {
			code = strings.ToUpper(m[1])
		}
	}
	if code == "" {
		code = strings.ToUpper(projectPattern.FindString(r.Note))
	}
	if code == "" {
		code = strings.ToUpper(projectPattern.FindString(r.Customer))
	}
	if code == "" && mixName != "" {
		if entry, ok := mix.ByMixName(r.AliasID, r.AliasName, mixName); ok {
			code = entry.Code
			if name == "" {
				name = entry.ProjectName
			}
		}
	}
	if code != "" && name == "" {
		name = mix.ProjectName(r.AliasID, r.AliasName, code)
	}
	return code, name
}
