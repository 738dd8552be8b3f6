// Package detect - platform.go provides ATS platform detection and
// platform-specific selectors used during extraction.
package detect

import (
	"net/url"
	"strings"
)

// Platform represents a known job board platform.
type Platform string

const (
	// PlatformGreenhouse is the Greenhouse ATS platform
	PlatformGreenhouse Platform = "greenhouse"
	// PlatformLever is the Lever ATS platform
	PlatformLever Platform = "lever"
	// PlatformWorkday is the Workday ATS platform
	PlatformWorkday Platform = "workday"
	// PlatformAshby is the Ashby ATS platform
	PlatformAshby Platform = "ashby"
	// PlatformSmartRecruiters is the SmartRecruiters ATS platform
	PlatformSmartRecruiters Platform = "smartrecruiters"
	// PlatformWorkable is the Workable ATS platform
	PlatformWorkable Platform = "workable"
	// PlatformICIMS is the iCIMS ATS platform
	PlatformICIMS Platform = "icims"
	// PlatformBreezy is the Breezy HR ATS platform
	PlatformBreezy Platform = "breezy"
	// PlatformJobvite is the Jobvite ATS platform
	PlatformJobvite Platform = "jobvite"
	// PlatformBambooHR is the BambooHR ATS platform
	PlatformBambooHR Platform = "bamboohr"
	// PlatformUnknown is an unrecognized platform
	PlatformUnknown Platform = "unknown"
)

// hostPatterns maps host substrings to their platform.
// Checked in declaration order; more specific hosts first.
var hostPatterns = []struct {
	fragment string
	platform Platform
}{
	{"boards.greenhouse.io", PlatformGreenhouse},
	{"greenhouse.io", PlatformGreenhouse},
	{"jobs.lever.co", PlatformLever},
	{"lever.co", PlatformLever},
	{"myworkdayjobs.com", PlatformWorkday},
	{"workday.com", PlatformWorkday},
	{"jobs.ashbyhq.com", PlatformAshby},
	{"ashbyhq.com", PlatformAshby},
	{"jobs.smartrecruiters.com", PlatformSmartRecruiters},
	{"smartrecruiters.com", PlatformSmartRecruiters},
	{"apply.workable.com", PlatformWorkable},
	{"workable.com", PlatformWorkable},
	{"icims.com", PlatformICIMS},
	{"breezy.hr", PlatformBreezy},
	{"jobvite.com", PlatformJobvite},
	{"bamboohr.com", PlatformBambooHR},
}

// jobPathFragments are URL path fragments that mark a page as job-related
// even on an unrecognized host. False positives are tolerated here since
// every downstream action is an explicit user command.
var jobPathFragments = []string{
	"/jobs/",
	"/job/",
	"/careers/",
	"/career/",
	"/positions/",
	"/openings/",
	"/apply",
}

// DetectPlatform identifies the job board platform from a URL.
func DetectPlatform(urlStr string) Platform {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return PlatformUnknown
	}

	host := strings.ToLower(parsed.Host)
	for _, p := range hostPatterns {
		if strings.Contains(host, p.fragment) {
			return p.platform
		}
	}
	return PlatformUnknown
}

// MatchesKnownBoard reports whether the URL points at a known ATS host or
// carries a job-ish path fragment. This is the cheap heuristic that still
// runs when everything else about a page is broken.
func MatchesKnownBoard(urlStr string) bool {
	if DetectPlatform(urlStr) != PlatformUnknown {
		return true
	}

	parsed, err := url.Parse(urlStr)
	if err != nil {
		return false
	}

	host := strings.ToLower(parsed.Host)
	if strings.HasPrefix(host, "jobs.") || strings.HasPrefix(host, "careers.") {
		return true
	}

	path := strings.ToLower(parsed.Path)
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	for _, fragment := range jobPathFragments {
		if strings.Contains(path, fragment) {
			return true
		}
	}
	return false
}

// TitleSelectors returns DOM selectors for the job title on a specific platform.
func TitleSelectors(platform Platform) []string {
	switch platform {
	case PlatformGreenhouse:
		return []string{".app-title", ".job__title h1", "h1.section-header"}
	case PlatformLever:
		return []string{".posting-headline h2", ".posting-header h2"}
	case PlatformWorkday:
		return []string{"[data-automation-id='jobPostingHeader']"}
	case PlatformAshby:
		return []string{"h1._title", "h1"}
	case PlatformSmartRecruiters:
		return []string{"h1.job-title", "[itemprop='title']"}
	case PlatformWorkable:
		return []string{"h1[data-ui='job-title']"}
	default:
		return nil
	}
}

// DescriptionSelectors returns likely job description containers, most
// specific first. Shared across platforms; platform-specific containers
// lead the list.
func DescriptionSelectors(platform Platform) []string {
	common := []string{
		".job-description",
		".job__description",
		".posting-description",
		"#job-description",
		"#content .job-details",
		"[data-testid='job-description']",
		"[data-automation-id='jobDescription']",
		".description",
		"main",
		"article",
	}

	switch platform {
	case PlatformGreenhouse:
		return append([]string{".job__description.body", "#content"}, common...)
	case PlatformLever:
		return append([]string{".posting-page .section-wrapper"}, common...)
	case PlatformWorkday:
		return append([]string{"[data-automation-id='jobPostingDescription']"}, common...)
	default:
		return common
	}
}

// CompanySlug derives a company name from an ATS vanity URL segment,
// e.g. https://jobs.lever.co/acme/... yields "Acme". Returns "" when the
// platform does not carry the company in its path.
func CompanySlug(urlStr string) string {
	platform := DetectPlatform(urlStr)
	switch platform {
	case PlatformGreenhouse, PlatformLever, PlatformAshby, PlatformSmartRecruiters, PlatformWorkable, PlatformBreezy:
	default:
		return ""
	}

	parsed, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}

	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(segments) == 0 || segments[0] == "" {
		return ""
	}

	return titleizeSlug(segments[0])
}

// titleizeSlug turns "acme-labs" into "Acme Labs".
func titleizeSlug(slug string) string {
	words := strings.FieldsFunc(slug, func(r rune) bool {
		return r == '-' || r == '_'
	})
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
