package summary

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"WeighBridgeSaas/api/tenant"
	"WeighBridgeSaas/api/weighbridge/ingest"
)

// ErrTenantNotFound distinguishes "unknown tenant" from the perfectly valid
// "tenant has no rows on this date", which yields a zero summary.
var ErrTenantNotFound = errors.New("tenant not found")

// TxRow is the slice of a persisted weigh transaction the aggregation needs.
type TxRow struct {
	TxType       string
	Product      string
	QuantityTons decimal.Decimal
	MixName      string
	ProjectCode  string
	ProjectName  string
}

// ProductTons is one product's total inside a flow.
type ProductTons struct {
	Product string  `json:"product"`
	Tons    float64 `json:"tons"`
}

// SiteTons is one project/site's outbound total with its product breakdown
// and the distinct mix names delivered there.
type SiteTons struct {
	Code      string        `json:"code"`
	Name      string        `json:"name"`
	TotalTons float64       `json:"total_tons"`
	Items     []ProductTons `json:"items"`
	MixNames  []string      `json:"mix_names,omitempty"`
}

// ProjectTons is one project's plain outbound total.
type ProjectTons struct {
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	TotalTons float64 `json:"total_tons"`
}

type Flow struct {
	TotalTons float64       `json:"total_tons"`
	Items     []ProductTons `json:"items"`
}

type OutboundFlow struct {
	TotalTons float64       `json:"total_tons"`
	Items     []ProductTons `json:"items"`
	Sites     []SiteTons    `json:"sites"`
	Projects  []ProjectTons `json:"projects"`
}

// DailySummary is the per-tenant, per-day rollup. It is recomputed on every
// query and never persisted.
type DailySummary struct {
	TenantID string       `json:"tenant_id"`
	DateStr  string       `json:"date_str"`
	Inbound  Flow         `json:"inbound"`
	Outbound OutboundFlow `json:"outbound"`
}

func round2(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

// BuildDailySummary groups rows into inbound/outbound totals by product, and
// outbound totals by project/site. Accumulation stays in decimal; rounding to
// 2 places happens only at output.
func BuildDailySummary(tenantID, dateStr string, rows []TxRow) DailySummary {
	inboundByProduct := make(map[string]decimal.Decimal)
	outboundByProduct := make(map[string]decimal.Decimal)
	type siteAcc struct {
		name     string
		total    decimal.Decimal
		products map[string]decimal.Decimal
		mixes    map[string]bool
	}
	sites := make(map[string]*siteAcc)
	inboundTotal, outboundTotal := decimal.Zero, decimal.Zero

	for _, r := range rows {
		product := r.Product
		if product == "" {
			product = "-"
		}
		if r.TxType == ingest.TxBuy {
			inboundTotal = inboundTotal.Add(r.QuantityTons)
			inboundByProduct[product] = inboundByProduct[product].Add(r.QuantityTons)
			continue
		}
		outboundTotal = outboundTotal.Add(r.QuantityTons)
		outboundByProduct[product] = outboundByProduct[product].Add(r.QuantityTons)

		code := r.ProjectCode
		if code == "" {
			continue
		}
		acc, ok := sites[code]
		if !ok {
			acc = &siteAcc{name: r.ProjectName, products: make(map[string]decimal.Decimal), mixes: make(map[string]bool)}
			sites[code] = acc
		}
		if acc.name == "" {
			acc.name = r.ProjectName
		}
		acc.total = acc.total.Add(r.QuantityTons)
		acc.products[product] = acc.products[product].Add(r.QuantityTons)
		if r.MixName != "" {
			acc.mixes[r.MixName] = true
		}
	}

	s := DailySummary{TenantID: tenantID, DateStr: dateStr}
	s.Inbound.TotalTons = round2(inboundTotal)
	s.Inbound.Items = productItems(inboundByProduct)
	s.Outbound.TotalTons = round2(outboundTotal)
	s.Outbound.Items = productItems(outboundByProduct)

	codes := make([]string, 0, len(sites))
	for code := range sites {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		acc := sites[code]
		mixNames := make([]string, 0, len(acc.mixes))
		for m := range acc.mixes {
			mixNames = append(mixNames, m)
		}
		sort.Strings(mixNames)
		s.Outbound.Sites = append(s.Outbound.Sites, SiteTons{
			Code:      code,
			Name:      acc.name,
			TotalTons: round2(acc.total),
			Items:     productItems(acc.products),
			MixNames:  mixNames,
		})
		s.Outbound.Projects = append(s.Outbound.Projects, ProjectTons{
			Code:      code,
			Name:      acc.name,
			TotalTons: round2(acc.total),
		})
	}
	return s
}

func productItems(byProduct map[string]decimal.Decimal) []ProductTons {
	names := make([]string, 0, len(byProduct))
	for name := range byProduct {
		names = append(names, name)
	}
	sort.Strings(names)
	items := make([]ProductTons, 0, len(names))
	for _, name := range names {
		items = append(items, ProductTons{Product: name, Tons: round2(byProduct[name])})
	}
	return items
}

func foldAlias(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// Summarize is the summarize entry point: it accepts a business date in any
// supported calendar form, queries the tenant's full alias scope under both
// the Gregorian and Buddhist-era renderings of that date, and rolls the rows
// up. Unknown tenants return ErrTenantNotFound; a known tenant with no rows
// returns a zero summary.
func Summarize(ctx context.Context, db *sql.DB, tenantID, dateInput string) (DailySummary, error) {
	ce, ok := ingest.NormalizeDate(dateInput)
	if !ok {
		return DailySummary{}, fmt.Errorf("unrecognized date: %q", dateInput)
	}
	be := ingest.BuddhistDateStr(ce)

	t, err := tenant.GetTenant(ctx, db, tenantID)
	if err == sql.ErrNoRows {
		return DailySummary{}, ErrTenantNotFound
	}
	if err != nil {
		return DailySummary{}, err
	}

	aliasIDs := make([]string, 0, len(t.AliasIDs))
	for _, id := range t.AliasIDs {
		aliasIDs = append(aliasIDs, strings.ToLower(strings.TrimSpace(id)))
	}
	aliasNames := make([]string, 0, len(t.AliasNames)+1)
	for _, name := range t.AliasNames {
		aliasNames = append(aliasNames, foldAlias(name))
	}
	aliasNames = append(aliasNames, foldAlias(t.DisplayName))

	rows, err := db.QueryContext(ctx, `
		SELECT tx_type, product, quantity_tons, mix_name, project_code, project_name
		FROM weigh_transactions
		WHERE date_str IN ($1, $2)
		  AND (
			tenant_id = $3
			OR lower(trim(alias_id)) = ANY($4)
			OR lower(regexp_replace(trim(alias_name), '\s+', ' ', 'g')) = ANY($5)
		  )
	`, ce, be, t.ID, pq.Array(aliasIDs), pq.Array(aliasNames))
	if err != nil {
		return DailySummary{}, fmt.Errorf("failed to query weigh transactions: %w", err)
	}
	defer rows.Close()

	var txRows []TxRow
	for rows.Next() {
		var r TxRow
		var qty string
		if err := rows.Scan(&r.TxType, &r.Product, &qty, &r.MixName, &r.ProjectCode, &r.ProjectName); err != nil {
			return DailySummary{}, fmt.Errorf("failed to scan weigh transaction: %w", err)
		}
		d, derr := decimal.NewFromString(qty)
		if derr != nil {
			continue
		}
		r.QuantityTons = d
		txRows = append(txRows, r)
	}
	if err := rows.Err(); err != nil {
		return DailySummary{}, err
	}

	return BuildDailySummary(t.ID, ce, txRows), nil
}
