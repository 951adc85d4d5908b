package summary

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"

	"WeighBridgeSaas/api/weighbridge/ingest"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestBuildDailySummaryTotals(t *testing.T) {
	rows := []TxRow{
		{TxType: ingest.TxBuy, Product: "หิน", QuantityTons: dec("5")},
		{TxType: ingest.TxBuy, Product: "หิน", QuantityTons: dec("10")},
		{TxType: ingest.TxBuy, Product: "ทราย", QuantityTons: dec("15")},
		{TxType: ingest.TxSell, Product: "คอนกรีต", QuantityTons: dec("7.25"), MixName: "240 KSC", ProjectCode: "ABC123", ProjectName: "อาคาร เอ"},
		{TxType: ingest.TxSell, Product: "คอนกรีต", QuantityTons: dec("2.75"), MixName: "240 KSC", ProjectCode: "ABC123"},
		{TxType: ingest.TxSell, Product: "มอร์ต้า", QuantityTons: dec("4"), ProjectCode: "DEF456", ProjectName: "อาคาร บี"},
	}
	s := BuildDailySummary("tn-1", "2025-03-15", rows)

	if s.TenantID != "tn-1" || s.DateStr != "2025-03-15" {
		t.Fatalf("identity fields = %s/%s", s.TenantID, s.DateStr)
	}
	if s.Inbound.TotalTons != 30 {
		t.Fatalf("inbound total = %v, want 30", s.Inbound.TotalTons)
	}
	if s.Outbound.TotalTons != 14 {
		t.Fatalf("outbound total = %v, want 14", s.Outbound.TotalTons)
	}

	// Product items are sorted and sum back to the flow total.
	var inboundSum float64
	for _, item := range s.Inbound.Items {
		inboundSum += item.Tons
	}
	if math.Abs(inboundSum-s.Inbound.TotalTons) > 0.01 {
		t.Fatalf("inbound items sum %v != total %v", inboundSum, s.Inbound.TotalTons)
	}

	if len(s.Outbound.Sites) != 2 {
		t.Fatalf("sites = %d, want 2", len(s.Outbound.Sites))
	}
	abc := s.Outbound.Sites[0]
	if abc.Code != "ABC123" || abc.TotalTons != 10 {
		t.Fatalf("site 0 = %+v, want ABC123 with 10 tons", abc)
	}
	// The name comes from whichever row carried one.
	if abc.Name != "อาคาร เอ" {
		t.Fatalf("site 0 name = %q", abc.Name)
	}
	if len(abc.MixNames) != 1 || abc.MixNames[0] != "240 KSC" {
		t.Fatalf("site 0 mix names = %v, want one distinct 240 KSC", abc.MixNames)
	}
	var siteSum float64
	for _, site := range s.Outbound.Sites {
		siteSum += site.TotalTons
	}
	if math.Abs(siteSum-s.Outbound.TotalTons) > 0.01 {
		t.Fatalf("site totals %v != outbound total %v", siteSum, s.Outbound.TotalTons)
	}
	if len(s.Outbound.Projects) != 2 || s.Outbound.Projects[1].Code != "DEF456" {
		t.Fatalf("projects = %+v", s.Outbound.Projects)
	}
}

func TestBuildDailySummaryEmpty(t *testing.T) {
	s := BuildDailySummary("tn-1", "2025-03-15", nil)
	if s.Inbound.TotalTons != 0 || s.Outbound.TotalTons != 0 {
		t.Fatalf("empty summary totals = %v/%v", s.Inbound.TotalTons, s.Outbound.TotalTons)
	}
	if len(s.Inbound.Items) != 0 || len(s.Outbound.Sites) != 0 {
		t.Fatal("empty summary must have no items")
	}
}

func TestBuildDailySummaryBlankProductAndProject(t *testing.T) {
	rows := []TxRow{
		{TxType: ingest.TxSell, Product: "", QuantityTons: dec("3")},
	}
	s := BuildDailySummary("tn-1", "2025-03-15", rows)
	if len(s.Outbound.Items) != 1 || s.Outbound.Items[0].Product != "-" {
		t.Fatalf("blank product items = %+v, want placeholder dash", s.Outbound.Items)
	}
	// No project code means the tonnage counts in the flow but not per site.
	if len(s.Outbound.Sites) != 0 {
		t.Fatalf("sites = %+v, want none", s.Outbound.Sites)
	}
	if s.Outbound.TotalTons != 3 {
		t.Fatalf("outbound total = %v, want 3", s.Outbound.TotalTons)
	}
}

func TestBuildDailySummaryRounding(t *testing.T) {
	rows := []TxRow{
		{TxType: ingest.TxBuy, Product: "หิน", QuantityTons: dec("0.3333")},
		{TxType: ingest.TxBuy, Product: "หิน", QuantityTons: dec("0.3333")},
		{TxType: ingest.TxBuy, Product: "หิน", QuantityTons: dec("0.3334")},
	}
	s := BuildDailySummary("tn-1", "2025-03-15", rows)
	// Accumulation happens in decimal before rounding, so three thirds of a
	// tonne come out as exactly 1.
	if s.Inbound.TotalTons != 1 {
		t.Fatalf("inbound total = %v, want 1", s.Inbound.TotalTons)
	}
	if s.Inbound.Items[0].Tons != 1 {
		t.Fatalf("item tons = %v, want 1", s.Inbound.Items[0].Tons)
	}
}
