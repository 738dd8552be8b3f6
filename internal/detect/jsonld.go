// Package detect - jsonld.go parses embedded schema.org JobPosting records.
package detect

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// JobPostingRecord is the subset of a schema.org JobPosting record the
// detector cares about. When present it outranks every other signal.
type JobPostingRecord struct {
	Title       string
	Company     string
	Location    string
	Description string
	ApplyURL    string
}

// FindJobPosting scans ld+json script tags for a JobPosting record.
// Returns nil if none is present or none parses. Malformed blocks are
// skipped, not fatal; pages routinely ship several ld+json blocks and
// only one (if any) is the posting.
func FindJobPosting(doc *goquery.Document) *JobPostingRecord {
	var record *JobPostingRecord

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		raw := strings.TrimSpace(sel.Text())
		if raw == "" {
			return true
		}

		var node any
		if err := json.Unmarshal([]byte(raw), &node); err != nil {
			return true
		}

		if found := jobPostingFromNode(node); found != nil {
			record = found
			return false
		}
		return true
	})

	return record
}

// jobPostingFromNode walks a decoded ld+json value looking for a
// JobPosting object. Handles top-level arrays and @graph containers.
func jobPostingFromNode(node any) *JobPostingRecord {
	switch v := node.(type) {
	case []any:
		for _, item := range v {
			if found := jobPostingFromNode(item); found != nil {
				return found
			}
		}
	case map[string]any:
		if isJobPostingType(v["@type"]) {
			return recordFromObject(v)
		}
		if graph, ok := v["@graph"]; ok {
			return jobPostingFromNode(graph)
		}
	}
	return nil
}

func isJobPostingType(typeField any) bool {
	switch t := typeField.(type) {
	case string:
		return strings.EqualFold(t, "JobPosting")
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && strings.EqualFold(s, "JobPosting") {
				return true
			}
		}
	}
	return false
}

func recordFromObject(obj map[string]any) *JobPostingRecord {
	record := &JobPostingRecord{
		Title:       stringField(obj, "title"),
		Description: htmlToText(stringField(obj, "description")),
		ApplyURL:    stringField(obj, "url"),
	}

	if org, ok := obj["hiringOrganization"].(map[string]any); ok {
		record.Company = stringField(org, "name")
	}

	record.Location = locationFromField(obj["jobLocation"])

	return record
}

// locationFromField digs addressLocality out of jobLocation, which vendors
// emit as either a single Place or an array of them.
func locationFromField(field any) string {
	switch v := field.(type) {
	case []any:
		for _, item := range v {
			if loc := locationFromField(item); loc != "" {
				return loc
			}
		}
	case map[string]any:
		if addr, ok := v["address"].(map[string]any); ok {
			locality := stringField(addr, "addressLocality")
			region := stringField(addr, "addressRegion")
			switch {
			case locality != "" && region != "":
				return locality + ", " + region
			case locality != "":
				return locality
			case region != "":
				return region
			}
		}
		if name := stringField(v, "name"); name != "" {
			return name
		}
	}
	return ""
}

func stringField(obj map[string]any, key string) string {
	if s, ok := obj[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// htmlToText strips markup from a description field. Record descriptions
// are usually HTML; plain text passes through unchanged.
func htmlToText(html string) string {
	if html == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.TrimSpace(html)
	}
	return normalizeWhitespace(doc.Text())
}
