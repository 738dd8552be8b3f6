// Package resume - score.go implements the match-scoring call: job text
// plus candidate view in, a validated score/reasons tuple out.
package resume

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/jonathan/job-agent/internal/profile"
	"github.com/xeipuuv/gojsonschema"
)

// matchSchema constrains the model's JSON so a malformed tuple never
// reaches the store or the UI.
const matchSchema = `{
	"type": "object",
	"required": ["score", "reasons"],
	"properties": {
		"score": {"type": "integer", "minimum": 0, "maximum": 100},
		"reasons": {
			"type": "array",
			"items": {"type": "string"},
			"maxItems": 10
		}
	},
	"additionalProperties": false
}`

// Match is the scoring result.
type Match struct {
	Score   int      `json:"score"`
	Reasons []string `json:"reasons"`
}

// Score rates how well the candidate fits the job description.
func (c *Client) Score(ctx context.Context, jdText string, view *profile.View) (*Match, error) {
	if strings.TrimSpace(jdText) == "" {
		return nil, fmt.Errorf("job description text is required")
	}

	model := c.genai.GenerativeModel(scoringModel)
	model.SetTemperature(0.1)

	resp, err := model.GenerateContent(ctx, genai.Text(buildScorePrompt(jdText, view)))
	if err != nil {
		return nil, fmt.Errorf("failed to score match: %w", err)
	}

	text, err := extractText(resp)
	if err != nil {
		return nil, err
	}

	return parseMatch(cleanJSONBlock(text))
}

func parseMatch(raw string) (*Match, error) {
	validation, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(matchSchema),
		gojsonschema.NewStringLoader(raw),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to validate match response: %w", err)
	}
	if !validation.Valid() {
		var problems []string
		for _, desc := range validation.Errors() {
			problems = append(problems, desc.String())
		}
		return nil, fmt.Errorf("match response failed schema validation: %s", strings.Join(problems, "; "))
	}

	var match Match
	if err := json.Unmarshal([]byte(raw), &match); err != nil {
		return nil, fmt.Errorf("failed to unmarshal match response: %w", err)
	}
	return &match, nil
}

// cleanJSONBlock removes a markdown code fence the model may wrap JSON
// in even when instructed not to.
func cleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
	} else {
		return text
	}
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

func buildScorePrompt(jdText string, view *profile.View) string {
	var sb strings.Builder
	sb.WriteString("Rate how well this candidate matches the job on a 0-100 scale.\n")
	sb.WriteString(`Respond with JSON only: {"score": <int>, "reasons": [<up to 10 short strings>]}`)
	sb.WriteString("\n\nJob description:\n")
	sb.WriteString(jdText)
	sb.WriteString("\n\nCandidate:\n")
	writeProfile(&sb, view)
	return sb.String()
}
