package ingest

import "testing"

func TestNormalizeMixName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"240 KSC (A)", "240 KSC A"},
		{"240-ksc_a", "240 KSC A"},
		{"  240   ksc   a  ", "240 KSC A"},
		{"job.mix:B#1", "JOBMIXB1"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeMixName(tc.in); got != tc.want {
			t.Fatalf("NormalizeMixName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func refFixture(t *testing.T, dataRows ...[]string) *MixReference {
	t.Helper()
	rows := [][]string{{"รหัสโครงการ", "โครงการ", "สูตร", "บริษัท"}}
	rows = append(rows, dataRows...)
	table, ok := ResolveReferenceSheet("ref", rows)
	if !ok {
		t.Fatal("reference fixture did not resolve")
	}
	return BuildMixReference(table)
}

func TestMixReferenceFirstWriteWins(t *testing.T) {
	ref := refFixture(t,
		[]string{"ABC123", "อาคาร เอ", "240 KSC", ""},
		[]string{"ABC123", "อาคาร ซ้ำ", "240 KSC", ""},
	)
	if got := ref.ProjectName("", "", "abc123"); got != "อาคาร เอ" {
		t.Fatalf("ProjectName = %q, want first entry to win", got)
	}
	entry, ok := ref.ByMixName("", "", "240 ksc")
	if !ok {
		t.Fatal("mix name lookup failed")
	}
	if entry.ProjectName != "อาคาร เอ" {
		t.Fatalf("entry project name = %q, want first entry to win", entry.ProjectName)
	}
}

func TestMixReferenceAliasScoping(t *testing.T) {
	ref := refFixture(t,
		[]string{"ABC123", "อาคาร เอ", "240 KSC", "สาขา ก"},
		[]string{"DEF456", "อาคาร บี", "240 KSC", "สาขา ข"},
	)
	// Each branch resolves the shared mix name inside its own scope.
	a, ok := ref.ByMixName("", "สาขา ก", "240 KSC")
	if !ok || a.Code != "ABC123" {
		t.Fatalf("scope ก resolved %+v, want ABC123", a)
	}
	b, ok := ref.ByMixName("", "สาขา ข", "240 KSC")
	if !ok || b.Code != "DEF456" {
		t.Fatalf("scope ข resolved %+v, want DEF456", b)
	}
	// An unknown scope has no unscoped fallback entry to land on here.
	if _, ok := ref.ByMixName("", "สาขา ค", "240 KSC"); ok {
		t.Fatal("unknown scope should not resolve a scoped-only mix name")
	}
}

func TestMixReferenceUnscopedFallback(t *testing.T) {
	ref := refFixture(t,
		[]string{"ABC123", "อาคาร เอ", "240 KSC", ""},
	)
	// Rows carrying an alias still find reference entries written without one.
	entry, ok := ref.ByMixName("BR-01", "สาขา ก", "240 KSC")
	if !ok || entry.Code != "ABC123" {
		t.Fatalf("fallback lookup resolved %+v, want ABC123", entry)
	}
	if got := ref.ProjectName("BR-01", "", "ABC123"); got != "อาคาร เอ" {
		t.Fatalf("fallback ProjectName = %q", got)
	}
}

func TestBuildMixReferenceNil(t *testing.T) {
	ref := BuildMixReference(nil)
	if _, ok := ref.ByMixName("", "", "anything"); ok {
		t.Fatal("empty reference must not resolve")
	}
	if got := ref.ProjectName("", "", "ABC123"); got != "" {
		t.Fatalf("empty reference ProjectName = %q, want empty", got)
	}
}
