package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"os"
	"strings"

	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"
)

// Workbook is a loaded spreadsheet reduced to named sheets of string cells.
type Workbook struct {
	Sheets []Sheet
}

type Sheet struct {
	Name string
	Rows [][]string
}

// transactionSheetTokens are name fragments that mark the "all transactions"
// sheet in weighbridge exports.
var transactionSheetTokens = []string{
	"ทั้งหมด", "รายการชั่ง", "ชั่ง", "transaction", "all", "data",
}

// mixSheetTokens are name fragments that mark the mix/project reference sheet.
var mixSheetTokens = []string{
	"สูตร", "โครงการ", "mix", "ref", "master",
}

// LoadWorkbook opens a spreadsheet byte buffer. It tries xlsx first, then
// legacy xls, then CSV as a single synthetic sheet.
func LoadWorkbook(data []byte) (*Workbook, error) {
	if wb, err := loadXLSX(data); err == nil {
		return wb, nil
	}
	if wb, err := loadXLS(data); err == nil {
		return wb, nil
	}
	if wb, err := loadCSV(data); err == nil {
		return wb, nil
	}
	return nil, errors.New("unsupported or corrupted spreadsheet file")
}

func loadXLSX(data []byte) (*Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	wb := &Workbook{}
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			continue
		}
		wb.Sheets = append(wb.Sheets, Sheet{Name: name, Rows: rows})
	}
	if len(wb.Sheets) == 0 {
		return nil, errors.New("workbook has no readable sheets")
	}
	return wb, nil
}

// loadXLS goes through a temp file because the xls library wants a file path.
func loadXLS(data []byte) (*Workbook, error) {
	tmp, err := os.CreateTemp("", "weigh-upload-*.xls")
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, err
	}
	tmp.Close()

	book, err := xls.OpenFile(tmp.Name())
	if err != nil {
		return nil, err
	}

	wb := &Workbook{}
	for i := 0; i < book.GetNumberSheets(); i++ {
		sheet, err := book.GetSheet(i)
		if err != nil || sheet == nil {
			continue
		}
		var rows [][]string
		for _, xlsRow := range sheet.GetRows() {
			var cells []string
			for _, col := range xlsRow.GetCols() {
				cells = append(cells, col.GetString())
			}
			rows = append(rows, cells)
		}
		wb.Sheets = append(wb.Sheets, Sheet{Name: sheet.GetName(), Rows: rows})
	}
	if len(wb.Sheets) == 0 {
		return nil, errors.New("xls workbook has no sheets")
	}
	return wb, nil
}

func loadCSV(data []byte) (*Workbook, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.New("empty csv")
	}
	return &Workbook{Sheets: []Sheet{{Name: "csv", Rows: rows}}}, nil
}

// PickTransactionSheet selects the "all transactions" sheet: first by name
// token, otherwise the sheet with the most non-empty rows.
func (wb *Workbook) PickTransactionSheet() *Sheet {
	for i := range wb.Sheets {
		name := strings.ToLower(wb.Sheets[i].Name)
		for _, tok := range transactionSheetTokens {
			if strings.Contains(name, tok) {
				return &wb.Sheets[i]
			}
		}
	}
	best, bestRows := -1, 0
	for i := range wb.Sheets {
		n := countNonEmptyRows(wb.Sheets[i].Rows)
		if n > bestRows {
			best, bestRows = i, n
		}
	}
	if best < 0 {
		return nil
	}
	return &wb.Sheets[best]
}

// PickMixSheet selects the optional mix/reference sheet by name pattern. The
// transaction sheet is excluded so a lone-sheet workbook never doubles up.
func (wb *Workbook) PickMixSheet(txSheet *Sheet) *Sheet {
	for i := range wb.Sheets {
		if txSheet != nil && wb.Sheets[i].Name == txSheet.Name {
			continue
		}
		name := strings.ToLower(wb.Sheets[i].Name)
		for _, tok := range mixSheetTokens {
			if strings.Contains(name, tok) {
				return &wb.Sheets[i]
			}
		}
	}
	return nil
}

func countNonEmptyRows(rows [][]string) int {
	n := 0
	for _, row := range rows {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				n++
				break
			}
		}
	}
	return n
}
