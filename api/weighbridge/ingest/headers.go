package ingest

import (
	"strings"

	"WeighBridgeSaas/internal/config"
)

// Canonical field names used across the pipeline. Column lookup goes through
// the vocabulary below so new export formats only need new synonyms, not code.
const (
	FieldDate        = "date"
	FieldType        = "type"
	FieldProduct     = "product"
	FieldDetail      = "product_detail"
	FieldWeight      = "weight"
	FieldUnit        = "unit"
	FieldMixName     = "mix_name"
	FieldProjectCode = "project_code"
	FieldProjectName = "project_name"
	FieldCustomer    = "customer"
	FieldNote        = "note"
	FieldWeighNumber = "weigh_number"
	FieldAliasID     = "alias_id"
	FieldAliasName   = "alias_name"
)

// fieldSynonyms is the locale-aware scoring table: canonical field → accepted
// header labels (Thai and English) → weight toward header-row detection.
// Only weighted fields count toward the header score; the rest are lookup-only.
type fieldSynonyms struct {
	Field    string
	Synonyms []string
	Weight   int
}

var headerVocabulary = []fieldSynonyms{
	{FieldDate, []string{"วันที่", "วัน/เดือน/ปี", "date"}, 1},
	{FieldType, []string{"ประเภท", "ซื้อ/ขาย", "รับ/จ่าย", "type"}, 1},
	{FieldProduct, []string{"สินค้า", "วัสดุ", "product", "material"}, 1},
	{FieldWeight, []string{"น้ำหนัก", "นน.สุทธิ", "จำนวน", "weight", "qty", "quantity", "net"}, 1},
	{FieldUnit, []string{"หน่วย", "unit", "uom"}, 1},
	{FieldMixName, []string{"สูตร", "จ๊อบ", "mix", "job mix", "design"}, 1},
	{FieldDetail, []string{"รายละเอียด", "detail", "spec", "ชนิด"}, 0},
	{FieldProjectCode, []string{"รหัสโครงการ", "รหัสงาน", "project code", "site code", "code"}, 0},
	{FieldProjectName, []string{"โครงการ", "หน้างาน", "project", "site"}, 0},
	{FieldCustomer, []string{"ลูกค้า", "customer", "ผู้ซื้อ", "ผู้ขาย"}, 0},
	{FieldNote, []string{"หมายเหตุ", "note", "remark"}, 0},
	{FieldWeighNumber, []string{"เลขที่ชั่ง", "เลขที่บัตรชั่ง", "ticket", "weigh no", "เลขที่"}, 0},
	{FieldAliasID, []string{"รหัสบริษัท", "company id", "tenant id", "branch id"}, 0},
	{FieldAliasName, []string{"บริษัท", "company", "สาขา", "branch"}, 0},
}

// SheetTable is one sheet resolved to a header row plus data rows. Columns
// maps canonical fields to column indexes; -1 means the field is absent.
type SheetTable struct {
	SheetName string
	HeaderRow int
	Labels    []string
	DataRows  [][]string
	columns   map[string]int
}

// ResolveSheet locates the header row inside raw sheet rows and maps every
// vocabulary field to its column. It reports ok=false when no row in the
// first config.HeaderScanRows rows looks like a header; the caller treats
// that sheet as contributing nothing.
func ResolveSheet(sheetName string, rows [][]string) (*SheetTable, bool) {
	headerRow := detectHeaderRow(rows)
	if headerRow < 0 {
		return nil, false
	}
	t := &SheetTable{
		SheetName: sheetName,
		HeaderRow: headerRow,
		Labels:    rows[headerRow],
		DataRows:  rows[headerRow+1:],
		columns:   make(map[string]int),
	}
	for _, fs := range headerVocabulary {
		t.columns[fs.Field] = lookupColumn(t.Labels, fs.Synonyms)
	}
	if t.columns[FieldDate] < 0 {
		col, ok := t.guessDateColumn()
		if !ok {
			return nil, false
		}
		t.columns[FieldDate] = col
	}
	return t, true
}

// referenceFields are the columns that identify a mix/project reference
// sheet. Reference sheets carry no date or weight columns, so they get their
// own header detection instead of going through ResolveSheet.
var referenceFields = []string{FieldMixName, FieldProjectCode, FieldProjectName}

// ResolveReferenceSheet resolves a mix/project reference sheet. The header
// must carry at least two of the reference fields, and no date column is
// required.
func ResolveReferenceSheet(sheetName string, rows [][]string) (*SheetTable, bool) {
	headerRow := -1
	limit := len(rows)
	if limit > config.HeaderScanRows {
		limit = config.HeaderScanRows
	}
	for rowIdx := 0; rowIdx < limit; rowIdx++ {
		score := 0
		for _, fs := range headerVocabulary {
			for _, want := range referenceFields {
				if fs.Field == want && rowContainsAny(rows[rowIdx], fs.Synonyms) {
					score++
				}
			}
		}
		if score >= 2 {
			headerRow = rowIdx
			break
		}
	}
	if headerRow < 0 {
		return nil, false
	}
	t := &SheetTable{
		SheetName: sheetName,
		HeaderRow: headerRow,
		Labels:    rows[headerRow],
		DataRows:  rows[headerRow+1:],
		columns:   make(map[string]int),
	}
	for _, fs := range headerVocabulary {
		t.columns[fs.Field] = lookupColumn(t.Labels, fs.Synonyms)
	}
	return t, true
}

// detectHeaderRow scores each of the first config.HeaderScanRows rows by how
// many distinct weighted vocabulary fields appear in it, and returns the first
// row with at least 2 distinct hits.
func detectHeaderRow(rows [][]string) int {
	limit := len(rows)
	if limit > config.HeaderScanRows {
		limit = config.HeaderScanRows
	}
	for rowIdx := 0; rowIdx < limit; rowIdx++ {
		score := 0
		for _, fs := range headerVocabulary {
			if fs.Weight == 0 {
				continue
			}
			if rowContainsAny(rows[rowIdx], fs.Synonyms) {
				score += fs.Weight
			}
		}
		if score >= 2 {
			return rowIdx
		}
	}
	return -1
}

func rowContainsAny(row []string, synonyms []string) bool {
	for _, cell := range row {
		c := strings.ToLower(strings.TrimSpace(cell))
		if c == "" {
			continue
		}
		for _, syn := range synonyms {
			if strings.Contains(c, syn) {
				return true
			}
		}
	}
	return false
}

// lookupColumn prefers an exact label match over substring containment so
// that e.g. a "code" synonym does not steal the "project code" column.
func lookupColumn(labels []string, synonyms []string) int {
	for _, syn := range synonyms {
		for colIdx, label := range labels {
			if strings.EqualFold(strings.TrimSpace(label), syn) {
				return colIdx
			}
		}
	}
	for _, syn := range synonyms {
		for colIdx, label := range labels {
			if strings.Contains(strings.ToLower(strings.TrimSpace(label)), syn) {
				return colIdx
			}
		}
	}
	return -1
}

// Column returns the column index for a canonical field, or -1.
func (t *SheetTable) Column(field string) int {
	col, ok := t.columns[field]
	if !ok {
		return -1
	}
	return col
}

// Cell returns the trimmed cell value of a canonical field in a data row.
func (t *SheetTable) Cell(row []string, field string) string {
	col := t.Column(field)
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// guessDateColumn samples up to config.DateGuessSamples data rows for every
// column not already claimed by a field, and picks the column whose values
// date-normalize most often, provided the success ratio clears
// config.DateGuessMinRatio.
func (t *SheetTable) guessDateColumn() (int, bool) {
	claimed := make(map[int]bool)
	for _, col := range t.columns {
		if col >= 0 {
			claimed[col] = true
		}
	}

	width := 0
	for _, row := range t.DataRows {
		if len(row) > width {
			width = len(row)
		}
	}

	bestCol, bestRatio := -1, 0.0
	for col := 0; col < width; col++ {
		if claimed[col] {
			continue
		}
		sampled, hits := 0, 0
		for _, row := range t.DataRows {
			if sampled >= config.DateGuessSamples {
				break
			}
			if col >= len(row) || strings.TrimSpace(row[col]) == "" {
				continue
			}
			sampled++
			if _, ok := NormalizeDate(row[col]); ok {
				hits++
			}
		}
		if sampled == 0 {
			continue
		}
		ratio := float64(hits) / float64(sampled)
		if ratio > bestRatio {
			bestCol, bestRatio = col, ratio
		}
	}
	if bestRatio > config.DateGuessMinRatio {
		return bestCol, true
	}
	return -1, false
}
