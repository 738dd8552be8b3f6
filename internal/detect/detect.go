// Package detect decides whether a page is a job posting and extracts
// structured job fields from it. Detection is pure over a parsed HTML
// snapshot: no network, no DOM mutation, no stored state.
package detect

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const (
	// bigFormControls is the control count at which a form counts as an
	// application form.
	bigFormControls = 6
	// minDescriptionChars is the minimum text length for a container to be
	// accepted as the job description.
	minDescriptionChars = 200
	// maxJDTextChars caps extracted description text; very large pages are
	// truncated rather than rejected.
	maxJDTextChars = 50000
)

// applyKeywords are checked against visible page text (lowercased).
var applyKeywords = []string{
	"apply",
	"resume",
	"cover letter",
	"curriculum vitae",
	"submit application",
}

// JobInfo holds best-effort extracted job fields. Every field is
// independently optional: source pages vary too much for any
// required-field invariant.
type JobInfo struct {
	Title    string `json:"title"`
	Company  string `json:"company"`
	Location string `json:"location"`
	JDText   string `json:"jd_text"`
	ApplyURL string `json:"apply_url"`
	PageURL  string `json:"page_url"`
}

// Result is the outcome of one detection pass.
type Result struct {
	IsJob     bool     `json:"is_job"`
	Info      *JobInfo `json:"info,omitempty"`
	LastError string   `json:"last_error,omitempty"`
}

// Run classifies the document and extracts JobInfo. It never panics
// outward: an unexpected failure is recorded in LastError and IsJob falls
// back to the cheap URL heuristic alone.
func Run(doc *goquery.Document, pageURL string) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = Result{
				IsJob:     MatchesKnownBoard(pageURL),
				LastError: fmt.Sprintf("detection panicked: %v", r),
			}
		}
	}()

	record := FindJobPosting(doc)
	signals := scanHeuristics(doc)

	// Disjunctive classification, tuned for low false negatives: downstream
	// actions are opt-in user clicks, not automatic.
	isJob := MatchesKnownBoard(pageURL) ||
		record != nil ||
		((signals.bigForm || signals.fileUpload) && signals.contactField && signals.keyword)

	info := extractInfo(doc, pageURL, record)

	return Result{IsJob: isJob, Info: info}
}

// heuristicSignals are the raw page signals feeding the disjunctive rule.
type heuristicSignals struct {
	bigForm      bool
	fileUpload   bool
	contactField bool
	keyword      bool
}

func scanHeuristics(doc *goquery.Document) heuristicSignals {
	var signals heuristicSignals

	doc.Find("form").EachWithBreak(func(_ int, form *goquery.Selection) bool {
		controls := form.Find("input, select, textarea").FilterFunction(func(_ int, sel *goquery.Selection) bool {
			inputType, _ := sel.Attr("type")
			switch strings.ToLower(inputType) {
			case "hidden", "submit", "button":
				return false
			}
			return true
		})
		if controls.Length() >= bigFormControls {
			signals.bigForm = true
			return false
		}
		return true
	})

	signals.fileUpload = doc.Find(`input[type="file"]`).Length() > 0

	doc.Find("input").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		inputType, _ := sel.Attr("type")
		name, _ := sel.Attr("name")
		id, _ := sel.Attr("id")
		hint := strings.ToLower(inputType + " " + name + " " + id)
		if strings.Contains(hint, "email") || strings.Contains(hint, "tel") || strings.Contains(hint, "phone") {
			signals.contactField = true
			return false
		}
		return true
	})

	bodyText := strings.ToLower(doc.Find("body").Text())
	for _, keyword := range applyKeywords {
		if strings.Contains(bodyText, keyword) {
			signals.keyword = true
			break
		}
	}

	return signals
}

// extractInfo resolves each JobInfo field through its ordered fallback
// chain. First non-empty source wins; ambiguity is never an error.
func extractInfo(doc *goquery.Document, pageURL string, record *JobPostingRecord) *JobInfo {
	platform := DetectPlatform(pageURL)

	info := &JobInfo{
		PageURL:  pageURL,
		ApplyURL: pageURL,
	}
	if record != nil && record.ApplyURL != "" {
		info.ApplyURL = record.ApplyURL
	}

	info.Title = resolveTitle(doc, platform, record)
	info.Company = resolveCompany(doc, pageURL, record)
	if record != nil {
		info.Location = record.Location
	}
	info.JDText = resolveDescription(doc, platform, record)

	return info
}

func resolveTitle(doc *goquery.Document, platform Platform, record *JobPostingRecord) string {
	if record != nil && record.Title != "" {
		return record.Title
	}

	for _, selector := range TitleSelectors(platform) {
		if text := normalizeWhitespace(doc.Find(selector).First().Text()); text != "" {
			return text
		}
	}

	if text := normalizeWhitespace(doc.Find("h1").First().Text()); text != "" {
		return text
	}

	if content, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
		if text := normalizeWhitespace(content); text != "" {
			return text
		}
	}

	return normalizeWhitespace(doc.Find("title").First().Text())
}

func resolveCompany(doc *goquery.Document, pageURL string, record *JobPostingRecord) string {
	if record != nil && record.Company != "" {
		return record.Company
	}

	if content, ok := doc.Find(`meta[property="og:site_name"]`).Attr("content"); ok {
		if text := normalizeWhitespace(content); text != "" {
			return text
		}
	}

	return CompanySlug(pageURL)
}

func resolveDescription(doc *goquery.Document, platform Platform, record *JobPostingRecord) string {
	if record != nil && record.Description != "" {
		return truncate(record.Description, maxJDTextChars)
	}

	for _, selector := range DescriptionSelectors(platform) {
		text := normalizeWhitespace(doc.Find(selector).First().Text())
		if len(text) > minDescriptionChars {
			return truncate(text, maxJDTextChars)
		}
	}

	return truncate(normalizeWhitespace(doc.Find("body").Text()), maxJDTextChars)
}

// truncate caps text at limit bytes without splitting a multi-byte rune.
func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	for limit > 0 && !utf8.RuneStart(text[limit]) {
		limit--
	}
	return text[:limit]
}

// normalizeWhitespace collapses runs of whitespace into single spaces and
// trims the result, keeping line structure out of extracted fields.
func normalizeWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
