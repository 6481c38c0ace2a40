package scoring

import "strings"

// FieldKey names one input field of the content form
type FieldKey string

const (
	FieldTitle              FieldKey = "title"
	FieldMetaTitle          FieldKey = "metaTitle"
	FieldMetaDescription    FieldKey = "metaDescription"
	FieldURLSlug            FieldKey = "urlSlug"
	FieldContent            FieldKey = "content"
	FieldPrimaryKeyword     FieldKey = "primaryKeyword"
	FieldSecondaryKeywords  FieldKey = "secondaryKeywords"
	FieldContentDescription FieldKey = "contentDescription"
	FieldLanguage           FieldKey = "language"
	FieldTargetCountry      FieldKey = "targetCountry"
)

// AllFields lists every field in a stable order
var AllFields = []FieldKey{
	FieldTitle,
	FieldMetaTitle,
	FieldMetaDescription,
	FieldURLSlug,
	FieldContent,
	FieldPrimaryKeyword,
	FieldSecondaryKeywords,
	FieldContentDescription,
	FieldLanguage,
	FieldTargetCountry,
}

var fieldLabels = map[FieldKey]string{
	FieldTitle:              "Title",
	FieldMetaTitle:          "Meta Title",
	FieldMetaDescription:    "Meta Description",
	FieldURLSlug:            "URL Slug",
	FieldContent:            "Content",
	FieldPrimaryKeyword:     "Primary Keyword",
	FieldSecondaryKeywords:  "Secondary Keywords",
	FieldContentDescription: "Content Description",
	FieldLanguage:           "Language",
	FieldTargetCountry:      "Target Country",
}

// Valid reports whether k is one of the known form fields
func (k FieldKey) Valid() bool {
	_, ok := fieldLabels[k]
	return ok
}

// Label returns the human readable name used in tooltips
func (k FieldKey) Label() string {
	if label, ok := fieldLabels[k]; ok {
		return label
	}
	return string(k)
}

// FormFieldValues is a snapshot of the content form as seen by the engine.
// The engine only reads it; missing values are valid input.
type FormFieldValues struct {
	Title              string   `json:"title"`
	MetaTitle          string   `json:"metaTitle"`
	MetaDescription    string   `json:"metaDescription"`
	URLSlug            string   `json:"urlSlug"`
	Content            string   `json:"content"`
	PrimaryKeyword     string   `json:"primaryKeyword"`
	SecondaryKeywords  []string `json:"secondaryKeywords"`
	ContentDescription string   `json:"contentDescription"`
	Language           string   `json:"language"`
	TargetCountry      string   `json:"targetCountry"`
}

// Get returns the string value of a field. Secondary keywords are joined
// with ", ".
func (v FormFieldValues) Get(k FieldKey) string {
	switch k {
	case FieldTitle:
		return v.Title
	case FieldMetaTitle:
		return v.MetaTitle
	case FieldMetaDescription:
		return v.MetaDescription
	case FieldURLSlug:
		return v.URLSlug
	case FieldContent:
		return v.Content
	case FieldPrimaryKeyword:
		return v.PrimaryKeyword
	case FieldSecondaryKeywords:
		return strings.Join(v.SecondaryKeywords, ", ")
	case FieldContentDescription:
		return v.ContentDescription
	case FieldLanguage:
		return v.Language
	case FieldTargetCountry:
		return v.TargetCountry
	}
	return ""
}

// With returns a copy of v with one field replaced. For secondaryKeywords the
// value is split on commas. Unknown keys return an unmodified copy.
func (v FormFieldValues) With(k FieldKey, value string) FormFieldValues {
	out := v
	out.SecondaryKeywords = append([]string(nil), v.SecondaryKeywords...)
	switch k {
	case FieldTitle:
		out.Title = value
	case FieldMetaTitle:
		out.MetaTitle = value
	case FieldMetaDescription:
		out.MetaDescription = value
	case FieldURLSlug:
		out.URLSlug = value
	case FieldContent:
		out.Content = value
	case FieldPrimaryKeyword:
		out.PrimaryKeyword = value
	case FieldSecondaryKeywords:
		out.SecondaryKeywords = SplitKeywords(value)
	case FieldContentDescription:
		out.ContentDescription = value
	case FieldLanguage:
		out.Language = value
	case FieldTargetCountry:
		out.TargetCountry = value
	}
	return out
}

// IsEmpty reports whether a field counts as missing: empty or whitespace for
// strings, no non-blank entry for secondary keywords.
func (v FormFieldValues) IsEmpty(k FieldKey) bool {
	if k == FieldSecondaryKeywords {
		return len(v.Keywords()) == 0
	}
	return strings.TrimSpace(v.Get(k)) == ""
}

// Keywords returns the trimmed, non-empty secondary keywords
func (v FormFieldValues) Keywords() []string {
	out := make([]string, 0, len(v.SecondaryKeywords))
	for _, kw := range v.SecondaryKeywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

// SplitKeywords splits a comma separated keyword list, dropping blanks
func SplitKeywords(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Status classifies a criterion or a section
type Status string

const (
	StatusPending  Status = "pending"
	StatusSuccess  Status = "success"
	StatusWarning  Status = "warning"
	StatusError    Status = "error"
	StatusInactive Status = "inactive"
)

// CriterionResult is the outcome of one rule for one snapshot
type CriterionResult struct {
	RuleID      int     `json:"id"`
	Description string  `json:"description"`
	Status      Status  `json:"status"`
	EarnedScore float64 `json:"earnedScore"`
	MaxScore    float64 `json:"maxScore"`
	Tier        string  `json:"tier,omitempty"`
	ActionLabel string  `json:"actionLabel,omitempty"`
	Tooltip     string  `json:"tooltip"`
}

// SectionResult is one weighted group of criteria
type SectionResult struct {
	ID              SectionID         `json:"id"`
	Title           string            `json:"title"`
	WeightPercent   int               `json:"weightPercent"`
	ProgressPercent int               `json:"progressPercent"`
	EarnedPoints    float64           `json:"earnedPoints"`
	MaxPoints       float64           `json:"maxPoints"`
	Type            Status            `json:"type"`
	Items           []CriterionResult `json:"items"`
}

// OverallScore is the reduced 0-100 score
type OverallScore struct {
	Score               int   `json:"score"`
	MaxScore            int   `json:"maxScore"`
	ChangedCriterionIDs []int `json:"changedCriterionIds"`
}

// Result is the full output of one evaluation
type Result struct {
	Sections []SectionResult `json:"sections"`
	Overall  OverallScore    `json:"overallScore"`
}

// Criterion finds a criterion result by rule id
func (r *Result) Criterion(id int) (CriterionResult, bool) {
	if r == nil {
		return CriterionResult{}, false
	}
	for _, s := range r.Sections {
		for _, item := range s.Items {
			if item.RuleID == id {
				return item, true
			}
		}
	}
	return CriterionResult{}, false
}

// Criteria returns all criterion results in catalog order
func (r *Result) Criteria() []CriterionResult {
	if r == nil {
		return nil
	}
	var out []CriterionResult
	for _, s := range r.Sections {
		out = append(out, s.Items...)
	}
	return out
}
