package scoring

import (
	_ "embed"
	"fmt"
	"math"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// SectionID identifies one of the fixed scoring sections
type SectionID string

const (
	SectionPrimary    SectionID = "primary-seo"
	SectionTitle      SectionID = "title-optimization"
	SectionContent    SectionID = "content-presentation"
	SectionAdditional SectionID = "additional-factors"
)

// Tier is one discrete outcome of a rule
type Tier struct {
	Key   string  `yaml:"key" json:"key"`
	Score float64 `yaml:"score" json:"score"`
	Text  string  `yaml:"text" json:"text"`
}

// Actions are the default action labels of a rule
type Actions struct {
	Error   string `yaml:"error" json:"error,omitempty"`
	Warning string `yaml:"warning" json:"warning,omitempty"`
}

// Rule is one scoring criterion. Rules are loaded once and never modified.
type Rule struct {
	ID          int        `yaml:"id" json:"id"`
	Section     SectionID  `yaml:"section" json:"section"`
	Description string     `yaml:"description" json:"description"`
	MaxScore    float64    `yaml:"max_score" json:"maxScore"`
	InputField  FieldKey   `yaml:"input_field" json:"inputField"`
	Fields      []FieldKey `yaml:"fields" json:"fields"`
	Actions     Actions    `yaml:"actions" json:"actions"`
	Inactive    bool       `yaml:"inactive" json:"inactive,omitempty"`
	Tiers       []Tier     `yaml:"tiers" json:"tiers"`
}

// tier looks up a tier by key
func (r Rule) tier(key string) (Tier, bool) {
	for _, t := range r.Tiers {
		if t.Key == key {
			return t, true
		}
	}
	return Tier{}, false
}

func (r Rule) clone() Rule {
	r.Fields = append([]FieldKey(nil), r.Fields...)
	r.Tiers = append([]Tier(nil), r.Tiers...)
	return r
}

// Section describes a scoring section and its derived weight
type Section struct {
	ID            SectionID `yaml:"id" json:"id"`
	Title         string    `yaml:"title" json:"title"`
	WeightPercent int       `yaml:"-" json:"weightPercent"`
	MaxPoints     float64   `yaml:"-" json:"maxPoints"`
	RuleIDs       []int     `yaml:"-" json:"ruleIds"`
}

type catalogFile struct {
	Sections []Section `yaml:"sections"`
	Rules    []Rule    `yaml:"rules"`
}

// Catalog is the validated, immutable rule table
type Catalog struct {
	sections    []Section
	rules       []Rule
	byID        map[int]int
	totalPoints float64
}

var defaultCatalog = sync.OnceValues(func() (*Catalog, error) {
	return LoadCatalog(catalogYAML)
})

// DefaultCatalog returns the built-in rule table
func DefaultCatalog() (*Catalog, error) {
	return defaultCatalog()
}

// MustDefaultCatalog is DefaultCatalog for program initialisation; an
// invalid built-in table is a programming error.
func MustDefaultCatalog() *Catalog {
	c, err := DefaultCatalog()
	if err != nil {
		panic(fmt.Sprintf("scoring: invalid built-in catalog: %v", err))
	}
	return c
}

// LoadCatalog parses and validates a YAML rule table
func LoadCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return NewCatalog(file.Sections, file.Rules)
}

// NewCatalog validates sections and rules and derives section weights
func NewCatalog(sections []Section, rules []Rule) (*Catalog, error) {
	if len(sections) == 0 {
		return nil, fmt.Errorf("catalog has no sections")
	}
	c := &Catalog{
		byID: make(map[int]int, len(rules)),
	}
	sectionIdx := make(map[SectionID]int, len(sections))
	for _, s := range sections {
		if _, dup := sectionIdx[s.ID]; dup {
			return nil, fmt.Errorf("duplicate section %q", s.ID)
		}
		sectionIdx[s.ID] = len(c.sections)
		c.sections = append(c.sections, Section{ID: s.ID, Title: s.Title})
	}

	for _, r := range rules {
		if err := validateRule(r); err != nil {
			return nil, fmt.Errorf("rule %d: %w", r.ID, err)
		}
		if _, dup := c.byID[r.ID]; dup {
			return nil, fmt.Errorf("duplicate rule id %d", r.ID)
		}
		si, ok := sectionIdx[r.Section]
		if !ok {
			return nil, fmt.Errorf("rule %d: unknown section %q", r.ID, r.Section)
		}
		c.byID[r.ID] = len(c.rules)
		c.rules = append(c.rules, r.clone())
		c.sections[si].RuleIDs = append(c.sections[si].RuleIDs, r.ID)
		if !r.Inactive {
			c.sections[si].MaxPoints += r.MaxScore
			c.totalPoints += r.MaxScore
		}
	}

	if c.totalPoints <= 0 {
		return nil, fmt.Errorf("catalog has no active points")
	}
	c.assignWeights()

	sum := 0
	for _, s := range c.sections {
		sum += s.WeightPercent
	}
	if sum != 100 {
		return nil, fmt.Errorf("section weights sum to %d, want 100", sum)
	}
	return c, nil
}

func validateRule(r Rule) error {
	if r.ID <= 0 {
		return fmt.Errorf("id must be positive")
	}
	if r.MaxScore <= 0 {
		return fmt.Errorf("max_score must be positive")
	}
	if !r.InputField.Valid() {
		return fmt.Errorf("unknown input field %q", r.InputField)
	}
	hasInput := false
	for _, f := range r.Fields {
		if !f.Valid() {
			return fmt.Errorf("unknown field %q", f)
		}
		if f == r.InputField {
			hasInput = true
		}
	}
	if !hasInput {
		return fmt.Errorf("fields must include input field %q", r.InputField)
	}
	if len(r.Tiers) < 2 {
		return fmt.Errorf("needs at least two tiers")
	}
	if r.Tiers[0].Score != r.MaxScore {
		return fmt.Errorf("top tier scores %.2f, want max_score %.2f", r.Tiers[0].Score, r.MaxScore)
	}
	if last := r.Tiers[len(r.Tiers)-1]; last.Score != 0 {
		return fmt.Errorf("bottom tier %q must score 0", last.Key)
	}
	seen := make(map[string]bool, len(r.Tiers))
	for i, t := range r.Tiers {
		if t.Key == "" || seen[t.Key] {
			return fmt.Errorf("tier %d has an empty or duplicate key", i)
		}
		seen[t.Key] = true
		if i > 0 && t.Score >= r.Tiers[i-1].Score {
			return fmt.Errorf("tier %q does not score below the tier before it", t.Key)
		}
	}
	if !r.Inactive {
		if _, ok := checks[r.ID]; !ok {
			return fmt.Errorf("no check registered")
		}
	}
	return nil
}

// assignWeights gives each section its rounded share of the total points.
// The largest section absorbs the rounding remainder.
func (c *Catalog) assignWeights() {
	sum := 0
	largest := 0
	for i := range c.sections {
		w := int(math.Round(c.sections[i].MaxPoints / c.totalPoints * 100))
		c.sections[i].WeightPercent = w
		sum += w
		if c.sections[i].MaxPoints > c.sections[largest].MaxPoints {
			largest = i
		}
	}
	c.sections[largest].WeightPercent += 100 - sum
}

// Rules returns a copy of every rule in catalog order
func (c *Catalog) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	for i, r := range c.rules {
		out[i] = r.clone()
	}
	return out
}

// Rule returns the rule with the given id
func (c *Catalog) Rule(id int) (Rule, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Rule{}, false
	}
	return c.rules[i].clone(), true
}

// Sections returns the sections in display order with their weights
func (c *Catalog) Sections() []Section {
	out := make([]Section, len(c.sections))
	for i, s := range c.sections {
		s.RuleIDs = append([]int(nil), s.RuleIDs...)
		out[i] = s
	}
	return out
}

// TotalPoints is the sum of max scores over active rules
func (c *Catalog) TotalPoints() float64 {
	return c.totalPoints
}
