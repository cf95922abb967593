package weinfusesync

import (
	"strings"
	"time"
)

// Report timestamps come in one of two wire shapes regardless of the
// company date format setting.
var reportTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// CompanyDateLayout converts a company date format such as "MM/DD/YYYY"
// or "DD.MM.YY" into a Go time layout. Longer tokens are matched first so
// "YYYY" never decays into two "YY" replacements.
func CompanyDateLayout(format string) string {
	format = strings.TrimSpace(format)
	if format == "" {
		format = "MM/DD/YYYY"
	}
	replacer := strings.NewReplacer(
		"YYYY", "2006",
		"YY", "06",
		"MM", "01",
		"DD", "02",
		"M", "1",
		"D", "2",
	)
	return replacer.Replace(format)
}

// ParseReportTime parses a report timestamp, trying the wire layouts
// first and the company layout last. Returns nil for empty or
// unparseable values; a bad date is not worth failing the line over.
func ParseReportTime(value string, companyLayout string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	layouts := reportTimeLayouts
	if companyLayout != "" {
		layouts = append(append([]string{}, reportTimeLayouts...), companyLayout)
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}

// ParseReportDate parses like ParseReportTime but keeps only the
// calendar date. Line dates are day-granular; the time of day on the
// wire is noise.
func ParseReportDate(value string, companyLayout string) *time.Time {
	t := ParseReportTime(value, companyLayout)
	if t == nil {
		return nil
	}
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}
