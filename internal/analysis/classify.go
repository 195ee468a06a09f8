package analysis

import (
	"strings"

	"github.com/KaramelBytes/reviewlens/internal/table"
	"golang.org/x/text/cases"
)

// Role is the semantic meaning bound to a column.
type Role int

const (
	RoleOther Role = iota
	RoleDate
	RoleRating
	RoleProduct
	RoleRegion
	RoleReviewText
)

func (r Role) String() string {
	switch r {
	case RoleDate:
		return "date"
	case RoleRating:
		return "rating"
	case RoleProduct:
		return "product"
	case RoleRegion:
		return "region"
	case RoleReviewText:
		return "review_text"
	default:
		return "other"
	}
}

// MarshalText renders the role by name in JSON and YAML output.
func (r Role) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// Matcher decides whether a column can play a role.
type Matcher interface {
	Matches(name string, kind table.Kind) bool
}

// NameMatcher matches when the folded column name contains any pattern and,
// if Kinds is set, the column's inferred kind is one of them.
type NameMatcher struct {
	Patterns []string
	Kinds    []table.Kind
}

func (m NameMatcher) Matches(name string, kind table.Kind) bool {
	if len(m.Kinds) > 0 {
		ok := false
		for _, k := range m.Kinds {
			if k == kind {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return containsAny(fold(name), m.Patterns)
}

// RoleRule pairs a role with the matcher that recognizes it.
type RoleRule struct {
	Role    Role
	Matcher Matcher
}

var (
	datePatterns    = []string{"date", "time", "日期", "时间"}
	ratingPatterns  = []string{"rating", "star", "score", "评分", "星"}
	productPatterns = []string{"product", "item", "sku", "产品"}
	regionPatterns  = []string{"region", "country", "location", "地区", "国家", "区域"}
	reviewPatterns  = []string{"comment", "review", "评论", "内容"}
)

// DefaultRules returns the role rules in evaluation priority order: Date,
// Rating, Product, Region, ReviewText. A column named "rating_date" is
// therefore a date when it holds timestamps. The order is a fixed convention,
// not something derived from data.
func DefaultRules() []RoleRule {
	return []RoleRule{
		{Role: RoleDate, Matcher: NameMatcher{Patterns: datePatterns, Kinds: []table.Kind{table.KindTime}}},
		{Role: RoleRating, Matcher: NameMatcher{Patterns: ratingPatterns, Kinds: []table.Kind{table.KindNumber}}},
		{Role: RoleProduct, Matcher: NameMatcher{Patterns: productPatterns}},
		{Role: RoleRegion, Matcher: NameMatcher{Patterns: regionPatterns}},
		{Role: RoleReviewText, Matcher: NameMatcher{Patterns: reviewPatterns}},
	}
}

// RoleMap binds at most one column per role. Empty means unresolved.
type RoleMap struct {
	Date       string `json:"date,omitempty"`
	Rating     string `json:"rating,omitempty"`
	Product    string `json:"product,omitempty"`
	Region     string `json:"region,omitempty"`
	ReviewText string `json:"review_text,omitempty"`
}

// Column returns the column bound to r.
func (m RoleMap) Column(r Role) (string, bool) {
	var c string
	switch r {
	case RoleDate:
		c = m.Date
	case RoleRating:
		c = m.Rating
	case RoleProduct:
		c = m.Product
	case RoleRegion:
		c = m.Region
	case RoleReviewText:
		c = m.ReviewText
	}
	return c, c != ""
}

// RoleOf returns the role bound to column, or RoleOther.
func (m RoleMap) RoleOf(column string) Role {
	for _, r := range []Role{RoleDate, RoleRating, RoleProduct, RoleRegion, RoleReviewText} {
		if c, ok := m.Column(r); ok && c == column {
			return r
		}
	}
	return RoleOther
}

// Unresolved lists roles with no bound column, in priority order.
func (m RoleMap) Unresolved() []Role {
	var out []Role
	for _, r := range []Role{RoleDate, RoleRating, RoleProduct, RoleRegion, RoleReviewText} {
		if _, ok := m.Column(r); !ok {
			out = append(out, r)
		}
	}
	return out
}

func (m *RoleMap) set(r Role, column string) {
	switch r {
	case RoleDate:
		m.Date = column
	case RoleRating:
		m.Rating = column
	case RoleProduct:
		m.Product = column
	case RoleRegion:
		m.Region = column
	case RoleReviewText:
		m.ReviewText = column
	}
}

// ClassifyColumns binds columns to roles using DefaultRules.
func ClassifyColumns(schema table.Schema) RoleMap {
	return ClassifyWith(schema, DefaultRules())
}

// ClassifyWith evaluates rules in order. For each rule the first column in
// schema order that matches and is not already bound wins.
func ClassifyWith(schema table.Schema, rules []RoleRule) RoleMap {
	var m RoleMap
	taken := make(map[string]bool, len(schema))
	for _, rule := range rules {
		if _, done := m.Column(rule.Role); done {
			continue
		}
		for _, col := range schema {
			if taken[col.Name] {
				continue
			}
			if rule.Matcher.Matches(col.Name, col.Kind) {
				m.set(rule.Role, col.Name)
				taken[col.Name] = true
				break
			}
		}
	}
	return m
}

// PrepareDates coerces every date-named column whose non-null values all
// parse as timestamps. It returns the names of coerced columns.
func PrepareDates(rows *table.RowSet) []string {
	if rows == nil {
		return nil
	}
	var out []string
	for _, col := range rows.Columns() {
		if !containsAny(fold(col), datePatterns) {
			continue
		}
		if rows.CoerceTime(col) {
			out = append(out, col)
		}
	}
	return out
}

func fold(s string) string {
	return cases.Fold().String(s)
}

func containsAny(folded string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(folded, fold(p)) {
			return true
		}
	}
	return false
}
