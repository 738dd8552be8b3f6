package forms

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Attribute names one CandidateProfileView field a control maps to.
// AttrNone means the control is left untouched.
type Attribute string

const (
	AttrNone      Attribute = ""
	AttrFullName  Attribute = "fullName"
	AttrFirstName Attribute = "firstName"
	AttrLastName  Attribute = "lastName"
	AttrEmail     Attribute = "email"
	AttrPhone     Attribute = "phone"
	AttrLocation  Attribute = "location"
	AttrLinkedIn  Attribute = "linkedin"
	AttrGitHub    Attribute = "github"
	AttrPortfolio Attribute = "portfolio"
	AttrCollege   Attribute = "college"
	AttrDegree    Attribute = "degree"
	AttrBranch    Attribute = "branch"
	AttrEndYear   Attribute = "endYear"
	AttrSkills    Attribute = "skills"
	AttrSummary   Attribute = "summary"
)

// signatureSources lists the element attributes mixed into a signature,
// in order, after the resolved label. Vendors scatter cues across all of
// them, so classification reads the whole concatenation.
var signatureSources = []string{
	"aria-label",
	"data-testid",
	"data-qa",
	"placeholder",
	"autocomplete",
	"name",
	"id",
}

// Signature builds the classification input for one control: resolved
// label plus attribute cues, lowercased. Ephemeral; never persisted.
func Signature(doc *goquery.Document, sel *goquery.Selection) string {
	parts := []string{ResolveLabel(doc, sel)}
	for _, attr := range signatureSources {
		if value, ok := sel.Attr(attr); ok && strings.TrimSpace(value) != "" {
			parts = append(parts, strings.TrimSpace(value))
		}
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// rule is one ordered classification entry. A rule matches when pattern
// matches the signature and exclude (if set) does not.
type rule struct {
	pattern *regexp.Regexp
	exclude *regexp.Regexp
	attr    Attribute
}

// rules are evaluated top to bottom, first match wins. Order carries the
// specificity contract: "first name" must shadow bare "name", "current
// location" must shadow "location", and so on. The generic name catch-all
// sits last with a company/account exclusion.
var rules = []rule{
	{pattern: regexp.MustCompile(`first[\s_-]?name|fname|given[\s_-]?name|forename`), attr: AttrFirstName},
	{pattern: regexp.MustCompile(`last[\s_-]?name|lname|surname|family[\s_-]?name`), attr: AttrLastName},
	{pattern: regexp.MustCompile(`full[\s_-]?name|your[\s_-]?name|legal[\s_-]?name`), attr: AttrFullName},
	{pattern: regexp.MustCompile(`e-?mail`), attr: AttrEmail},
	{pattern: regexp.MustCompile(`phone|mobile|\btel\b|contact[\s_-]?number`), attr: AttrPhone},
	{pattern: regexp.MustCompile(`current[\s_-]?(location|city)|where.{0,20}(located|based)`), attr: AttrLocation},
	{pattern: regexp.MustCompile(`location`), attr: AttrLocation},
	{pattern: regexp.MustCompile(`\baddress\b|\bcity\b|\bzip\b|postal|\bstate\b|country`), attr: AttrLocation},
	{pattern: regexp.MustCompile(`linked[\s_-]?in`), attr: AttrLinkedIn},
	{pattern: regexp.MustCompile(`git[\s_-]?hub`), attr: AttrGitHub},
	{pattern: regexp.MustCompile(`portfolio|personal[\s_-]?(web)?site|\bwebsite\b|\burl\b`), attr: AttrPortfolio},
	{pattern: regexp.MustCompile(`college|university|institute|\bschool\b|alma[\s_-]?mater`), attr: AttrCollege},
	{pattern: regexp.MustCompile(`degree|qualification`), attr: AttrDegree},
	{pattern: regexp.MustCompile(`branch|major|department|field[\s_-]?of[\s_-]?study|speciali[sz]ation|stream`), attr: AttrBranch},
	{pattern: regexp.MustCompile(`graduat|grad[\s_-]?year|\bbatch\b|passing[\s_-]?year|end[\s_-]?year|year[\s_-]?of[\s_-]?(passing|completion)`), attr: AttrEndYear},
	{pattern: regexp.MustCompile(`skills|tech[\s_-]?stack|technologies|competencies`), attr: AttrSkills},
	{pattern: regexp.MustCompile(`summary|about[\s_-]?(you|yourself|me)|cover[\s_-]?letter|why[\s_-]?(do[\s_-]?you|us|join)|tell[\s_-]?us|objective`), attr: AttrSummary},
	// Generic name catch-all. Suppressed when company or account context is
	// present: "company name" and "username" are not the candidate's name.
	{
		pattern: regexp.MustCompile(`\bname\b`),
		exclude: regexp.MustCompile(`company|employer|organi[sz]ation|business|user[\s_-]?name|middle|school|college|university|referen|file`),
		attr:    AttrFullName,
	},
}

// Classify maps a signature to a profile attribute, or AttrNone.
func Classify(signature string) Attribute {
	signature = strings.ToLower(signature)
	if strings.TrimSpace(signature) == "" {
		return AttrNone
	}

	for _, r := range rules {
		if !r.pattern.MatchString(signature) {
			continue
		}
		if r.exclude != nil && r.exclude.MatchString(signature) {
			continue
		}
		return r.attr
	}
	return AttrNone
}
