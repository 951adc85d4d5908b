package ingest

import "testing"

func TestNormalizeDate(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"buddhist slash", "15/03/2568", "2025-03-15", true},
		{"buddhist dash", "15-03-2568", "2025-03-15", true},
		{"gregorian slash", "15/03/2025", "2025-03-15", true},
		{"two digit year", "15/03/25", "2025-03-15", true},
		{"excel serial", "45000", "2023-03-15", true},
		{"excel serial with time", "45000.75", "2023-03-15", true},
		{"thai month short year", "15 มี.ค. 68", "2025-03-15", true},
		{"thai month full", "15 ธันวาคม 2568", "2025-12-15", true},
		{"english month", "15 March 2025", "2025-03-15", true},
		{"iso passthrough", "2025-03-15", "2025-03-15", true},
		{"iso buddhist", "2568-03-15", "2025-03-15", true},
		{"padded", "  15/03/2568  ", "2025-03-15", true},
		{"empty", "", "", false},
		{"garbage", "not a date", "", false},
		{"impossible day", "32/03/2568", "", false},
		{"impossible month", "15/13/2568", "", false},
		{"small number is not a serial", "500", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := NormalizeDate(tc.in)
			if ok != tc.ok {
				t.Fatalf("NormalizeDate(%q) ok = %v, want %v", tc.in, ok, tc.ok)
			}
			if got != tc.want {
				t.Fatalf("NormalizeDate(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestBuddhistDateStr(t *testing.T) {
	if got := BuddhistDateStr("2025-03-15"); got != "2568-03-15" {
		t.Fatalf("BuddhistDateStr = %q, want 2568-03-15", got)
	}
	// Unparseable input passes through unchanged.
	if got := BuddhistDateStr("nonsense"); got != "nonsense" {
		t.Fatalf("BuddhistDateStr passthrough = %q", got)
	}
}
