package ingest

import "testing"

func TestResolveSheetFindsHeaderAfterPreamble(t *testing.T) {
	rows := [][]string{
		{"บริษัท ตัวอย่าง จำกัด"},
		{"รายงานการชั่ง ประจำเดือน มีนาคม"},
		{"วันที่", "ประเภท", "สินค้า", "น้ำหนัก", "หน่วย"},
		{"15/03/2568", "ซื้อ", "หิน", "500", "kg"},
	}
	table, ok := ResolveSheet("all", rows)
	if !ok {
		t.Fatal("expected header to be detected")
	}
	if table.HeaderRow != 2 {
		t.Fatalf("header row = %d, want 2", table.HeaderRow)
	}
	if got := table.Column(FieldDate); got != 0 {
		t.Fatalf("date column = %d, want 0", got)
	}
	if got := table.Column(FieldWeight); got != 3 {
		t.Fatalf("weight column = %d, want 3", got)
	}
	if len(table.DataRows) != 1 {
		t.Fatalf("data rows = %d, want 1", len(table.DataRows))
	}
}

func TestResolveSheetRejectsHeaderless(t *testing.T) {
	rows := [][]string{
		{"1", "2", "3"},
		{"4", "5", "6"},
	}
	if _, ok := ResolveSheet("junk", rows); ok {
		t.Fatal("expected headerless sheet to be rejected")
	}
}

func TestLookupColumnPrefersExactMatch(t *testing.T) {
	rows := [][]string{
		{"วันที่", "ประเภท", "น้ำหนัก", "code", "project code"},
		{"15/03/2568", "ซื้อ", "500", "X1", "ABC123"},
	}
	table, ok := ResolveSheet("all", rows)
	if !ok {
		t.Fatal("expected header to be detected")
	}
	// "project code" must win over the generic "code" column.
	if got := table.Column(FieldProjectCode); got != 4 {
		t.Fatalf("project code column = %d, want 4", got)
	}
}

func TestResolveSheetGuessesUnlabeledDateColumn(t *testing.T) {
	rows := [][]string{
		{"รายการ", "ประเภท", "สินค้า", "น้ำหนัก"},
		{"15/03/2568", "ซื้อ", "หิน", "500"},
		{"16/03/2568", "ขาย", "ทราย", "1200"},
		{"17/03/2568", "ซื้อ", "หิน", "800"},
	}
	table, ok := ResolveSheet("all", rows)
	if !ok {
		t.Fatal("expected sheet to resolve via date-column guessing")
	}
	if got := table.Column(FieldDate); got != 0 {
		t.Fatalf("guessed date column = %d, want 0", got)
	}
}

func TestResolveSheetRejectsWhenNoDateColumnFound(t *testing.T) {
	rows := [][]string{
		{"ประเภท", "สินค้า", "น้ำหนัก"},
		{"ซื้อ", "หิน", "500"},
		{"ขาย", "ทราย", "1200"},
	}
	if _, ok := ResolveSheet("all", rows); ok {
		t.Fatal("expected sheet without any date-like column to be rejected")
	}
}

func TestResolveReferenceSheet(t *testing.T) {
	rows := [][]string{
		{"เอกสารอ้างอิง ประจำปี 2568"},
		{"รหัสโครงการ", "โครงการ", "สูตร"},
		{"ABC123", "อาคาร เอ", "240 KSC (A)"},
	}
	table, ok := ResolveReferenceSheet("mix ref", rows)
	if !ok {
		t.Fatal("expected reference header to be detected")
	}
	if table.HeaderRow != 1 {
		t.Fatalf("header row = %d, want 1", table.HeaderRow)
	}
	if got := table.Cell(table.DataRows[0], FieldMixName); got != "240 KSC (A)" {
		t.Fatalf("mix name cell = %q", got)
	}
}

func TestResolveReferenceSheetRejectsTransactionLayout(t *testing.T) {
	rows := [][]string{
		{"วันที่", "ประเภท", "น้ำหนัก", "หน่วย"},
		{"15/03/2568", "ซื้อ", "500", "kg"},
	}
	if _, ok := ResolveReferenceSheet("sheet2", rows); ok {
		t.Fatal("expected transaction-shaped sheet to be rejected as reference")
	}
}
