package search

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/filesift/filesift/internal/index"
)

// filterTerm matches one structured filter item. Anything else in the
// query is a free-text term.
var filterTerm = regexp.MustCompile(`^@(type|ext|size|date):(\S+)$`)

// sizeValue captures operator, magnitude, and optional unit of a @size
// value, e.g. ">=1.5mb". The operator is required; the unit defaults to
// bytes.
var sizeValue = regexp.MustCompile(`^(>=|<=|>|<|=)(\d+(?:\.\d+)?)(b|kb|mb|gb)?$`)

// dateValue captures operator and date of a @date value. The date is an
// ISO calendar date or one of the relative keywords today and yesterday.
var dateValue = regexp.MustCompile(`^(>=|<=|>|<|=)(\d{4}-\d{2}-\d{2}|today|yesterday)$`)

var sizeUnits = map[string]int64{
	"":   1,
	"b":  1,
	"kb": 1024,
	"mb": 1024 * 1024,
	"gb": 1024 * 1024 * 1024,
}

// Parser splits raw query strings into free-text terms and structured
// filters. A malformed filter item never fails the parse; it degrades into
// a literal free-text term and the query is marked accordingly.
type Parser struct {
	now func() time.Time
}

// NewParser builds a Parser. A nil clock selects time.Now; tests inject a
// fixed clock to pin the today and yesterday keywords.
func NewParser(now func() time.Time) *Parser {
	if now == nil {
		now = time.Now
	}
	return &Parser{now: now}
}

// Parse splits raw on whitespace and classifies each item. Matching is
// case-insensitive; free terms come back lower-cased in input order.
func (p *Parser) Parse(raw string) Query {
	q := Query{Raw: raw}

	for _, item := range strings.Fields(raw) {
		item = strings.ToLower(item)

		m := filterTerm.FindStringSubmatch(item)
		if m == nil {
			q.FreeTerms = append(q.FreeTerms, item)
			continue
		}

		if !p.applyFilter(&q.Filters, m[1], m[2]) {
			// Malformed filter: keep the whole item searchable instead
			// of erroring.
			q.FreeTerms = append(q.FreeTerms, item)
			q.Degraded = true
		}
	}

	return q
}

// applyFilter parses one name:value pair into the filter set, reporting
// whether the value was well formed. Repeated filters overwrite earlier
// ones.
func (p *Parser) applyFilter(f *Filters, name, value string) bool {
	switch name {
	case "type":
		cat, ok := index.ParseTypeCategory(value)
		if !ok {
			return false
		}
		f.Type = &cat
		return true

	case "ext":
		ext := index.NormalizeExtension(value)
		if ext == "" {
			return false
		}
		f.Ext = &ext
		return true

	case "size":
		return p.applySize(f, value)

	case "date":
		return p.applyDate(f, value)
	}
	return false
}

func (p *Parser) applySize(f *Filters, value string) bool {
	m := sizeValue.FindStringSubmatch(value)
	if m == nil {
		return false
	}

	magnitude, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return false
	}
	bytes := int64(magnitude * float64(sizeUnits[m[3]]))

	switch m[1] {
	case ">":
		min := bytes + 1
		f.SizeMin = &min
	case ">=":
		f.SizeMin = &bytes
	case "<":
		max := bytes - 1
		f.SizeMax = &max
	case "<=":
		f.SizeMax = &bytes
	case "=":
		min, max := bytes, bytes
		f.SizeMin = &min
		f.SizeMax = &max
	}
	return true
}

func (p *Parser) applyDate(f *Filters, value string) bool {
	m := dateValue.FindStringSubmatch(value)
	if m == nil {
		return false
	}

	day, ok := p.resolveDay(m[2])
	if !ok {
		return false
	}
	dayEnd := day.AddDate(0, 0, 1).Add(-time.Nanosecond)

	switch m[1] {
	case ">":
		from := day.AddDate(0, 0, 1)
		f.DateFrom = &from
	case ">=":
		f.DateFrom = &day
	case "<":
		to := day.Add(-time.Nanosecond)
		f.DateTo = &to
	case "<=":
		f.DateTo = &dayEnd
	case "=":
		f.DateFrom = &day
		f.DateTo = &dayEnd
	}
	return true
}

// resolveDay turns a date keyword or ISO date into local midnight of that
// day. Relative keywords resolve against the parser's clock.
func (p *Parser) resolveDay(value string) (time.Time, bool) {
	switch value {
	case "today":
		return startOfDay(p.now()), true
	case "yesterday":
		return startOfDay(p.now()).AddDate(0, 0, -1), true
	}

	parsed, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
