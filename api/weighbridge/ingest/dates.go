package ingest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Weighbridge terminals in Thailand export dates in whatever form the
// operator's spreadsheet happened to use: Excel serial numbers, dd/mm/yyyy
// with Buddhist-era years, Thai month-name strings, or already-ISO text.
// NormalizeDate folds all of them into a canonical Gregorian YYYY-MM-DD.

const buddhistEraOffset = 543

// Years above this are treated as Buddhist era and reduced by 543.
const buddhistEraThreshold = 2400

var (
	dmyPattern   = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{2,4})$`)
	isoPattern   = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
	trailingYear = regexp.MustCompile(`(\d{4})\s*$`)
	numberToken  = regexp.MustCompile(`\d+`)
)

// monthNames maps Thai full names, Thai abbreviations and English names to
// month numbers. Thai abbreviations appear both with and without the final dot
// in the wild.
var monthNames = map[string]int{
	"มกราคม": 1, "ม.ค": 1, "กุมภาพันธ์": 2, "ก.พ": 2,
	"มีนาคม": 3, "มี.ค": 3, "เมษายน": 4, "เม.ย": 4,
	"พฤษภาคม": 5, "พ.ค": 5, "มิถุนายน": 6, "มิ.ย": 6,
	"กรกฎาคม": 7, "ก.ค": 7, "สิงหาคม": 8, "ส.ค": 8,
	"กันยายน": 9, "ก.ย": 9, "ตุลาคม": 10, "ต.ค": 10,
	"พฤศจิกายน": 11, "พ.ย": 11, "ธันวาคม": 12, "ธ.ค": 12,
	"january": 1, "jan": 1, "february": 2, "feb": 2,
	"march": 3, "mar": 3, "april": 4, "apr": 4,
	"may": 5, "june": 6, "jun": 6, "july": 7, "jul": 7,
	"august": 8, "aug": 8, "september": 9, "sep": 9,
	"october": 10, "oct": 10, "november": 11, "nov": 11,
	"december": 12, "dec": 12,
}

// NormalizeDate converts an arbitrary cell value into a canonical Gregorian
// YYYY-MM-DD string. It is total: any unrecognized input reports ok=false and
// the caller drops the row.
func NormalizeDate(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}

	if d, ok := fromExcelSerial(s); ok {
		return d, true
	}
	if d, ok := fromDayMonthYear(s); ok {
		return d, true
	}
	if d, ok := fromISO(s); ok {
		return d, true
	}
	if d, ok := fromMonthName(s); ok {
		return d, true
	}
	return fromFlexible(s)
}

// fromExcelSerial converts a numeric spreadsheet serial (serial 1 =
// 1900-01-01, with the fake 1900-02-29 that Excel carries) to a UTC date.
// Serials below 10000 (~1927) are rejected so that quantity-like numeric
// columns do not masquerade as dates during date-column guessing.
func fromExcelSerial(s string) (string, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return "", false
	}
	days := int(f)
	if days < 10000 || days > 200000 {
		return "", false
	}
	base := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
	d := base.AddDate(0, 0, days)
	return d.Format("2006-01-02"), true
}

// fromDayMonthYear handles dd/mm/yyyy and dd-mm-yy style strings, expanding
// 2-digit years with a 20 prefix and reducing Buddhist-era years by 543.
func fromDayMonthYear(s string) (string, bool) {
	m := dmyPattern.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if len(m[3]) == 2 {
		year += 2000
	}
	year = gregorianYear(year)
	return formatIfValid(year, month, day)
}

// fromISO handles yyyy-mm-dd, still applying the Buddhist-era correction to
// the year (legacy exports write 2568-03-15).
func fromISO(s string) (string, bool) {
	m := isoPattern.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	return formatIfValid(gregorianYear(year), month, day)
}

// fromMonthName handles strings like "15 มี.ค. 68" or "15 March 2025": a
// recognized month name adjacent to day and year numerals.
func fromMonthName(s string) (string, bool) {
	lower := strings.ToLower(s)
	month := 0
	thai := false
	matched := ""
	for name, num := range monthNames {
		if strings.Contains(lower, name) && len(name) > len(matched) {
			month = num
			matched = name
			thai = name[0] >= 0x80
		}
	}
	if month == 0 {
		return "", false
	}

	nums := numberToken.FindAllString(lower, -1)
	day, year := 0, 0
	for _, n := range nums {
		v, _ := strconv.Atoi(n)
		switch {
		case v >= 1 && v <= 31 && day == 0:
			day = v
		case year == 0:
			year = v
		}
	}
	if day == 0 || year == 0 {
		return "", false
	}
	if year < 100 {
		// Short years beside a Thai month name are short Buddhist-era
		// years (68 means 2568); beside an English name they are 20xx.
		if thai {
			year += 2500
		} else {
			year += 2000
		}
	}
	return formatIfValid(gregorianYear(year), month, day)
}

// flexibleLayouts is the fallback parse ladder for date strings that escaped
// the structured matchers. dd/mm layouts come before mm/dd on purpose.
var flexibleLayouts = []string{
	"2006-01-02", "2006/01/02", "2006.01.02",
	"02/01/2006", "2/1/2006", "02-01-2006",
	"02 January 2006", "2 January 2006", "02 Jan 2006", "2 Jan 2006",
	"2-Jan-2006", "02-Jan-2006", "02-Jan-06",
	"January 2, 2006", "Jan 2, 2006",
	time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05",
}

// fromFlexible is the last resort: correct a trailing Buddhist-era year
// segment in place, then walk the layout ladder.
func fromFlexible(s string) (string, bool) {
	if m := trailingYear.FindStringSubmatch(s); m != nil {
		if y, err := strconv.Atoi(m[1]); err == nil && y > buddhistEraThreshold {
			fixed := fmt.Sprintf("%d", y-buddhistEraOffset)
			s = s[:len(s)-len(m[0])] + strings.Replace(m[0], m[1], fixed, 1)
		}
	}
	for _, layout := range flexibleLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}

func gregorianYear(year int) int {
	if year > buddhistEraThreshold {
		return year - buddhistEraOffset
	}
	return year
}

// formatIfValid rejects impossible calendar dates (time.Date would silently
// normalize 32/13 into the next month otherwise).
func formatIfValid(year, month, day int) (string, bool) {
	if year < 1900 || year > 2200 || month < 1 || month > 12 || day < 1 || day > 31 {
		return "", false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return "", false
	}
	return t.Format("2006-01-02"), true
}

// BuddhistDateStr returns the Buddhist-era ISO rendering of a Gregorian
// YYYY-MM-DD string, used when querying rows persisted by legacy imports.
func BuddhistDateStr(ce string) string {
	t, err := time.Parse("2006-01-02", ce)
	if err != nil {
		return ce
	}
	return fmt.Sprintf("%04d-%02d-%02d", t.Year()+buddhistEraOffset, int(t.Month()), t.Day())
}
