package core

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// ShowRecord is a single show as exchanged with the show API.
// Only Title is required; numeric fields are pointers so that an
// absent value is distinguishable from zero.
type ShowRecord struct {
	ID        string     `json:"id,omitempty"`
	Archived  bool       `json:"archived,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`

	Title           string `json:"title"`
	ShowType        string `json:"show_type,omitempty"`
	MediaType       string `json:"media_type,omitempty"`
	RankingCategory string `json:"ranking_category,omitempty"`

	RelationshipLevel     string   `json:"relationship_level,omitempty"`
	StartDate             string   `json:"start_date,omitempty"`
	MinimumGuarantee      *float64 `json:"minimum_guarantee,omitempty"`
	EvergreenOwnershipPct *float64 `json:"evergreen_ownership_pct,omitempty"`
	Cadence               string   `json:"cadence,omitempty"`

	GenreName           string   `json:"genre_name,omitempty"`
	AgeDemographic      string   `json:"age_demographic,omitempty"`
	Gender              string   `json:"gender,omitempty"`
	Region              string   `json:"region,omitempty"`
	AvgShowLengthMins   *float64 `json:"avg_show_length_mins,omitempty"`
	AdSlots             *float64 `json:"ad_slots,omitempty"`
	AvgMonthlyDownloads *float64 `json:"avg_monthly_downloads,omitempty"`
	Description         string   `json:"description,omitempty"`

	LatestCPMUSD *float64 `json:"latest_cpm_usd,omitempty"`
	Revenue2023  *float64 `json:"revenue_2023,omitempty"`
	Revenue2024  *float64 `json:"revenue_2024,omitempty"`
	Revenue2025  *float64 `json:"revenue_2025,omitempty"`

	SideBonusPercent                *float64 `json:"side_bonus_percent,omitempty"`
	YoutubeAdsPercent               *float64 `json:"youtube_ads_percent,omitempty"`
	SubscriptionsPercent            *float64 `json:"subscriptions_percent,omitempty"`
	StandardAdsPercent              *float64 `json:"standard_ads_percent,omitempty"`
	SponsorshipAdFPLeadPercent      *float64 `json:"sponsorship_ad_fp_lead_percent,omitempty"`
	SponsorshipAdPartnerLeadPercent *float64 `json:"sponsorship_ad_partner_lead_percent,omitempty"`
	SponsorshipAdPartnerSoldPercent *float64 `json:"sponsorship_ad_partner_sold_percent,omitempty"`
	ProgrammaticAdsSpanPercent      *float64 `json:"programmatic_ads_span_percent,omitempty"`
	MerchandisePercent              *float64 `json:"merchandise_percent,omitempty"`
	BrandedRevenuePercent           *float64 `json:"branded_revenue_percent,omitempty"`
	MarketingServicesRevenuePercent *float64 `json:"marketing_services_revenue_percent,omitempty"`
	DirectCustomerHandsOffPercent   *float64 `json:"direct_customer_hands_off_percent,omitempty"`
	YoutubeHandsOffPercent          *float64 `json:"youtube_hands_off_percent,omitempty"`
	SubscriptionHandsOffPercent     *float64 `json:"subscription_hands_off_percent,omitempty"`

	ShowHost       string `json:"show_host,omitempty"`
	ContactName    string `json:"contact_name,omitempty"`
	ContactEmail   string `json:"contact_email,omitempty"`
	ContactPhone   string `json:"contact_phone,omitempty"`
	ContactAddress string `json:"contact_address,omitempty"`
	Website        string `json:"website,omitempty"`
	PaymentMethod  string `json:"payment_method,omitempty"`
	TaxFormOnFile  string `json:"tax_form_on_file,omitempty"`

	IsActive               bool `json:"is_active"`
	IsUndersized           bool `json:"is_undersized"`
	RateCard               bool `json:"rate_card"`
	IsOriginal             bool `json:"is_original"`
	HasSponsorshipRevenue  bool `json:"has_sponsorship_revenue"`
	HasNonEvergreenRevenue bool `json:"has_non_evergreen_revenue"`
	HasPartnerAdRevenue    bool `json:"has_partner_ad_revenue"`
	HasBrandedRevenue      bool `json:"has_branded_revenue"`
	HasMarketingRevenue    bool `json:"has_marketing_revenue"`
	HasWebMgmtRevenue      bool `json:"has_web_mgmt_revenue"`

	QBOShowID   string `json:"qbo_show_id,omitempty"`
	QBOShowName string `json:"qbo_show_name,omitempty"`
}

// UnmarshalJSON starts from the column defaults, so a body that leaves out
// is_active describes an active show, the same as a missing Active cell.
func (r *ShowRecord) UnmarshalJSON(data []byte) error {
	type plain ShowRecord
	var rec ShowRecord
	for _, spec := range showFields {
		if spec.Type == FieldBool && spec.DefaultOn {
			rec.setBool(spec.Key, true)
		}
	}
	p := plain(rec)
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = ShowRecord(p)
	return nil
}

// recordFields maps a canonical field name (the json tag) to its struct index.
var recordFields = indexRecordFields()

func indexRecordFields() map[string][]int {
	t := reflect.TypeOf(ShowRecord{})
	idx := make(map[string][]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		idx[name] = f.Index
	}
	return idx
}

func (r *ShowRecord) field(key string) (reflect.Value, bool) {
	idx, ok := recordFields[key]
	if !ok {
		return reflect.Value{}, false
	}
	return reflect.ValueOf(r).Elem().FieldByIndex(idx), true
}

func (r *ShowRecord) setText(key, v string) {
	if f, ok := r.field(key); ok {
		f.SetString(v)
	}
}

func (r *ShowRecord) setNumber(key string, v float64) {
	if f, ok := r.field(key); ok {
		f.Set(reflect.ValueOf(&v))
	}
}

func (r *ShowRecord) setBool(key string, v bool) {
	if f, ok := r.field(key); ok {
		f.SetBool(v)
	}
}

// Number returns the numeric field named key, or false when it is absent.
func (r ShowRecord) Number(key string) (float64, bool) {
	f, ok := r.field(key)
	if !ok || f.Kind() != reflect.Ptr || f.IsNil() {
		return 0, false
	}
	return f.Elem().Float(), true
}

// CellValue renders the field named key the way it appears in a CSV export.
// Booleans render as "Yes"/"No" and absent values as "".
func (r ShowRecord) CellValue(key string) string {
	f, ok := r.field(key)
	if !ok {
		return ""
	}
	switch f.Kind() {
	case reflect.String:
		return f.String()
	case reflect.Bool:
		if f.Bool() {
			return "Yes"
		}
		return "No"
	case reflect.Ptr:
		if f.IsNil() {
			return ""
		}
		return FormatNumber(f.Elem().Float())
	default:
		return fmt.Sprint(f.Interface())
	}
}

// Row renders every mapped field as canonical-field -> cell string.
func (r ShowRecord) Row() map[string]string {
	row := make(map[string]string, len(showFields))
	for _, spec := range showFields {
		row[spec.Key] = r.CellValue(spec.Key)
	}
	return row
}

// CSVRow renders the record in TemplateHeaders order.
func (r ShowRecord) CSVRow() []string {
	out := make([]string, len(showFields))
	for i, spec := range showFields {
		out[i] = r.CellValue(spec.Key)
	}
	return out
}

// FormatNumber renders a float without a trailing ".0" or exponent.
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
