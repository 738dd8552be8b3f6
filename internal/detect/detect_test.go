package detect

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

const structuredRecordPage = `<html><head>
<title>Careers at Acme</title>
<script type="application/ld+json">
{
  "@context": "https://schema.org",
  "@type": "JobPosting",
  "title": "Backend Engineer",
  "hiringOrganization": {"@type": "Organization", "name": "Acme"},
  "jobLocation": {"@type": "Place", "address": {"addressLocality": "Remote"}},
  "description": "<p>Build APIs</p>"
}
</script>
</head><body><h1>Join us</h1></body></html>`

func TestRun_StructuredRecord(t *testing.T) {
	doc := parseHTML(t, structuredRecordPage)

	result := Run(doc, "https://acme.example.com/some/page")

	require.True(t, result.IsJob)
	require.NotNil(t, result.Info)
	assert.Equal(t, "Backend Engineer", result.Info.Title)
	assert.Equal(t, "Acme", result.Info.Company)
	assert.Equal(t, "Remote", result.Info.Location)
	assert.Equal(t, "Build APIs", result.Info.JDText)
	assert.Empty(t, result.LastError)
}

func TestRun_KnownATSURLAlone(t *testing.T) {
	// Sparse page: a client-rendered ATS shell before any content mounts.
	doc := parseHTML(t, `<html><head></head><body><div id="app"></div></body></html>`)

	result := Run(doc, "https://jobs.lever.co/acme/abcd-1234")

	assert.True(t, result.IsJob)
}

func TestRun_PlainPageIsNotJob(t *testing.T) {
	doc := parseHTML(t, `<html><head><title>Weather</title></head>
<body><h1>Forecast</h1><p>Sunny tomorrow.</p></body></html>`)

	result := Run(doc, "https://weather.example.com/today")

	assert.False(t, result.IsJob)
}

func TestRun_HeuristicConjunction(t *testing.T) {
	bigFormPage := `<html><body>
<p>Apply now with your resume.</p>
<form>
  <input name="first_name"><input name="last_name">
  <input type="email" name="email"><input type="tel" name="phone">
  <input name="linkedin"><textarea name="cover_letter"></textarea>
</form></body></html>`

	result := Run(parseHTML(t, bigFormPage), "https://example.com/x")
	assert.True(t, result.IsJob, "big form + contact field + keyword")

	// Same form but no apply/resume keywords anywhere.
	noKeywordPage := strings.Replace(bigFormPage, "<p>Apply now with your resume.</p>", "", 1)
	noKeywordPage = strings.Replace(noKeywordPage, `name="cover_letter"`, `name="notes"`, 1)
	result = Run(parseHTML(t, noKeywordPage), "https://example.com/x")
	assert.False(t, result.IsJob, "missing keyword signal must fail the conjunction")
}

func TestRun_FileUploadCountsAsFormSignal(t *testing.T) {
	page := `<html><body>
<p>Upload your resume to apply.</p>
<form><input type="email" name="email"><input type="file" name="cv"></form>
</body></html>`

	result := Run(parseHTML(t, page), "https://example.com/x")
	assert.True(t, result.IsJob)
}

func TestRun_Deterministic(t *testing.T) {
	doc := parseHTML(t, structuredRecordPage)

	first := Run(doc, "https://acme.example.com/some/page")
	second := Run(doc, "https://acme.example.com/some/page")

	assert.Equal(t, first, second)
}

func TestRun_TitleFallbackChain(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "first heading",
			html: `<html><head><title>doc title</title></head><body><h1>Staff Engineer</h1></body></html>`,
			want: "Staff Engineer",
		},
		{
			name: "og title when no heading",
			html: `<html><head><title>doc title</title><meta property="og:title" content="Platform Engineer"></head><body></body></html>`,
			want: "Platform Engineer",
		},
		{
			name: "document title last",
			html: `<html><head><title>Data Engineer - Acme</title></head><body></body></html>`,
			want: "Data Engineer - Acme",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Run(parseHTML(t, tt.html), "https://example.com/jobs/1")
			require.NotNil(t, result.Info)
			assert.Equal(t, tt.want, result.Info.Title)
		})
	}
}

func TestRun_CompanyFromVanityPath(t *testing.T) {
	doc := parseHTML(t, `<html><body><h1>Engineer</h1></body></html>`)

	result := Run(doc, "https://jobs.lever.co/acme-labs/abcd-1234")

	require.NotNil(t, result.Info)
	assert.Equal(t, "Acme Labs", result.Info.Company)
}

func TestRun_CompanySiteNameBeatsSlug(t *testing.T) {
	doc := parseHTML(t, `<html><head><meta property="og:site_name" content="Acme Careers"></head><body></body></html>`)

	result := Run(doc, "https://jobs.lever.co/acme/abcd")

	require.NotNil(t, result.Info)
	assert.Equal(t, "Acme Careers", result.Info.Company)
}

func TestRun_DescriptionContainerMinimumLength(t *testing.T) {
	long := strings.Repeat("Responsibilities include building APIs. ", 10)
	page := `<html><body>
<div class="job-description">` + long + `</div>
</body></html>`

	result := Run(parseHTML(t, page), "https://example.com/jobs/1")

	require.NotNil(t, result.Info)
	assert.Contains(t, result.Info.JDText, "Responsibilities include building APIs.")
}

func TestRun_DescriptionTruncated(t *testing.T) {
	huge := strings.Repeat("x", maxJDTextChars+5000)
	page := `<html><body><div class="job-description">` + huge + `</div></body></html>`

	result := Run(parseHTML(t, page), "https://example.com/jobs/1")

	require.NotNil(t, result.Info)
	assert.Len(t, result.Info.JDText, maxJDTextChars)
}

func TestFindJobPosting_GraphAndArrays(t *testing.T) {
	page := `<html><head><script type="application/ld+json">
{"@graph": [
  {"@type": "WebSite", "name": "Acme"},
  {"@type": ["JobPosting"], "title": "SRE",
   "hiringOrganization": {"name": "Acme"},
   "jobLocation": [{"address": {"addressLocality": "Berlin", "addressRegion": "BE"}}]}
]}
</script></head><body></body></html>`

	record := FindJobPosting(parseHTML(t, page))

	require.NotNil(t, record)
	assert.Equal(t, "SRE", record.Title)
	assert.Equal(t, "Acme", record.Company)
	assert.Equal(t, "Berlin, BE", record.Location)
}

func TestFindJobPosting_MalformedBlockSkipped(t *testing.T) {
	page := `<html><head>
<script type="application/ld+json">{not json</script>
<script type="application/ld+json">{"@type":"JobPosting","title":"QA"}</script>
</head><body></body></html>`

	record := FindJobPosting(parseHTML(t, page))

	require.NotNil(t, record)
	assert.Equal(t, "QA", record.Title)
}

func TestDetectPlatform(t *testing.T) {
	tests := []struct {
		url  string
		want Platform
	}{
		{"https://boards.greenhouse.io/acme/jobs/123", PlatformGreenhouse},
		{"https://jobs.lever.co/acme/abcd", PlatformLever},
		{"https://acme.wd1.myworkdayjobs.com/en-US/careers", PlatformWorkday},
		{"https://jobs.ashbyhq.com/acme/xyz", PlatformAshby},
		{"https://apply.workable.com/acme/j/1", PlatformWorkable},
		{"https://example.com/about", PlatformUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectPlatform(tt.url), tt.url)
	}
}

func TestMatchesKnownBoard(t *testing.T) {
	assert.True(t, MatchesKnownBoard("https://jobs.lever.co/acme/abcd-1234"))
	assert.True(t, MatchesKnownBoard("https://careers.example.com/listings"))
	assert.True(t, MatchesKnownBoard("https://example.com/careers/123"))
	assert.False(t, MatchesKnownBoard("https://example.com/blog/post"))
}

func TestTruncate_NeverSplitsRunes(t *testing.T) {
	text := "résumé" // the accented characters are two bytes each

	assert.Equal(t, text, truncate(text, len(text)))
	assert.Equal(t, "r", truncate(text, 2), "cut inside a rune backs up to the previous boundary")

	for limit := 1; limit <= len(text); limit++ {
		assert.True(t, utf8.ValidString(truncate(text, limit)), "limit %d", limit)
	}
}
