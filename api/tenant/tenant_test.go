package tenant

import "testing"

func TestTenantMatches(t *testing.T) {
	tn := Tenant{
		ID:          "tn-1",
		DisplayName: "ABC Concrete Co., Ltd.",
		AliasIDs:    []string{"BR-01", "BR-02"},
		AliasNames:  []string{"ABC Co", "เอบีซี คอนกรีต"},
	}
	cases := []struct {
		name      string
		aliasID   string
		aliasName string
		want      bool
	}{
		{"alias id exact", "BR-01", "", true},
		{"alias id case", "br-01", "", true},
		{"alias id padded", "  BR-02  ", "", true},
		{"alias name case", "", "abc co", true},
		{"alias name whitespace", "", "ABC   Co", true},
		{"thai alias name", "", "เอบีซี คอนกรีต", true},
		{"display name fallback", "", "abc concrete co., ltd.", true},
		{"unknown id", "BR-99", "", false},
		{"unknown name", "", "XYZ Co", false},
		{"both empty", "", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tn.Matches(tc.aliasID, tc.aliasName); got != tc.want {
				t.Fatalf("Matches(%q, %q) = %v, want %v", tc.aliasID, tc.aliasName, got, tc.want)
			}
		})
	}
}

func TestResolvePrefersAliasID(t *testing.T) {
	tenants := []Tenant{
		{ID: "tn-1", DisplayName: "First", AliasIDs: []string{"BR-01"}, AliasNames: []string{"Shared Name"}},
		{ID: "tn-2", DisplayName: "Second", AliasIDs: []string{"BR-02"}, AliasNames: []string{"Shared Name"}},
	}
	// An id match wins even when the name would point at a different tenant.
	got := Resolve(tenants, "BR-02", "Shared Name")
	if got == nil || got.ID != "tn-2" {
		t.Fatalf("Resolve = %v, want tn-2 via alias id", got)
	}
	// Name-only rows fall back to the first name match.
	got = Resolve(tenants, "", "shared name")
	if got == nil || got.ID != "tn-1" {
		t.Fatalf("Resolve = %v, want tn-1 via alias name", got)
	}
	if Resolve(tenants, "BR-99", "Nobody") != nil {
		t.Fatal("unknown aliases must resolve to nil")
	}
}
