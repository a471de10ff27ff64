package core

import (
	"regexp"
	"strings"
)

var rankingPattern = regexp.MustCompile(`(?i)(?:level\s*)?(\d+)`)

// normalizeRanking reduces "Level 3", "level 3" and "3" to "3".
func normalizeRanking(s string) string {
	if m := rankingPattern.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}

func text(header, key string) FieldSpec { return FieldSpec{Header: header, Key: key, Type: FieldText} }
func number(header, key string) FieldSpec {
	return FieldSpec{Header: header, Key: key, Type: FieldNumeric}
}
func flag(header, key string) FieldSpec    { return FieldSpec{Header: header, Key: key, Type: FieldBool} }
func percent(header, key string) FieldSpec { return number(header, key) }

// showFields is the import/export column table in template order.
var showFields = []FieldSpec{
	text("Show Name", "title"),
	{Header: "Show Type", Key: "show_type", Type: FieldEnum,
		EnumValues: []string{"Original", "Branded", "Partner"}},
	{Header: "Media Type", Key: "media_type", Type: FieldEnum,
		EnumValues: []string{"video", "audio", "both"}},
	{Header: "Ranking Category", Key: "ranking_category", Type: FieldEnum,
		EnumValues: []string{"1", "2", "3", "4", "5"}, Normalizer: normalizeRanking,
		Invalid: "Must be 1-5"},
	{Header: "Relationship Level", Key: "relationship_level", Type: FieldEnum,
		EnumValues: []string{"Strong", "Medium", "Weak"}},
	{Header: "Start Date", Key: "start_date", Type: FieldDate},
	number("Minimum Guarantee", "minimum_guarantee"),
	percent("Ownership by Evergreen (%)", "evergreen_ownership_pct"),
	{Header: "Cadence", Key: "cadence", Type: FieldEnum,
		EnumValues: []string{"Daily", "Weekly", "Biweekly", "Monthly", "Ad Hoc"},
		Aliases:    map[string]string{"adhoc": "Ad Hoc", "ad-hoc": "Ad Hoc"}},

	text("Genre", "genre_name"),
	text("Age Demographic", "age_demographic"),
	text("Gender (MM/FF)", "gender"),
	{Header: "Region", Key: "region", Type: FieldEnum,
		EnumValues: []string{"Urban", "Rural", "Both"}},
	number("Avg Show Length (mins)", "avg_show_length_mins"),
	number("Ad Slots", "ad_slots"),
	number("Avg Monthly Downloads", "avg_monthly_downloads"),
	text("Description", "description"),

	number("Latest CPM (USD)", "latest_cpm_usd"),
	number("Revenue 2023", "revenue_2023"),
	number("Revenue 2024", "revenue_2024"),
	number("Revenue 2025", "revenue_2025"),

	percent("Side Bonus (%)", "side_bonus_percent"),
	percent("YouTube Ads (%)", "youtube_ads_percent"),
	percent("Subscriptions (%)", "subscriptions_percent"),
	percent("Standard Ads (%)", "standard_ads_percent"),
	percent("Sponsorship Ad FP Lead (%)", "sponsorship_ad_fp_lead_percent"),
	percent("Sponsorship Ad Partner Lead (%)", "sponsorship_ad_partner_lead_percent"),
	percent("Sponsorship Ad Partner Sold (%)", "sponsorship_ad_partner_sold_percent"),
	percent("Programmatic Ads Span (%)", "programmatic_ads_span_percent"),
	percent("Merchandise (%)", "merchandise_percent"),
	percent("Branded Revenue (%)", "branded_revenue_percent"),
	percent("Marketing Services Revenue (%)", "marketing_services_revenue_percent"),
	percent("Direct Customer Hands Off (%)", "direct_customer_hands_off_percent"),
	percent("YouTube Hands Off (%)", "youtube_hands_off_percent"),
	percent("Subscription Hands Off (%)", "subscription_hands_off_percent"),

	text("Show Host", "show_host"),
	text("Contact Name", "contact_name"),
	text("Contact Email", "contact_email"),
	text("Contact Phone", "contact_phone"),
	text("Contact Address", "contact_address"),
	text("Website", "website"),
	text("Payment Method", "payment_method"),
	text("Tax Form on File", "tax_form_on_file"),

	{Header: "Active", Key: "is_active", Type: FieldBool, DefaultOn: true},
	flag("Undersized", "is_undersized"),
	flag("Rate Card", "rate_card"),
	flag("Is Original", "is_original"),
	flag("Has Sponsorship Revenue", "has_sponsorship_revenue"),
	flag("Has Non-Evergreen Revenue", "has_non_evergreen_revenue"),
	flag("Has Partner Ad Revenue", "has_partner_ad_revenue"),
	flag("Has Branded Revenue", "has_branded_revenue"),
	flag("Has Marketing Revenue", "has_marketing_revenue"),
	flag("Has Web Management Revenue", "has_web_mgmt_revenue"),

	text("QBO Show ID", "qbo_show_id"),
	text("QBO Show Name", "qbo_show_name"),
}

// MapRow translates header -> cell into canonical field -> cell.
// Headers not in the table are dropped; fields whose header is absent stay absent.
func MapRow(raw map[string]string) map[string]string {
	mapped := make(map[string]string, len(raw))
	for header, cell := range raw {
		if spec, ok := byHeader[header]; ok {
			mapped[spec.Key] = cell
		}
	}
	return mapped
}

// HeaderFor returns the CSV header for a canonical field, or the field name
// itself when it has no column.
func HeaderFor(key string) string {
	if spec, ok := byKey[key]; ok {
		return spec.Header
	}
	return key
}

// IsKnownHeader reports whether header maps to a ShowRecord field.
func IsKnownHeader(header string) bool {
	_, ok := byHeader[header]
	return ok
}

// TemplateHeaders returns the fixed ordered import/export header row.
func TemplateHeaders() []string {
	out := make([]string, len(showFields))
	for i, spec := range showFields {
		out[i] = spec.Header
	}
	return out
}

// SpecForHeader finds a column by header, ignoring case.
func SpecForHeader(header string) (FieldSpec, bool) {
	if spec, ok := byHeader[header]; ok {
		return spec, true
	}
	for _, spec := range showFields {
		if strings.EqualFold(spec.Header, header) {
			return spec, true
		}
	}
	return FieldSpec{}, false
}
