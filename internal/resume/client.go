// Package resume is the client for the AI resume-generation and
// match-scoring collaborator. The detection core never imports it; the
// control surface hands it a job's text and gets back LaTeX or a
// score/reasons tuple.
package resume

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"github.com/jonathan/job-agent/internal/profile"
	"google.golang.org/api/option"
)

// Model tiers mirror the tasks: scoring is a lite classification call,
// generation needs the standard model.
const (
	scoringModel    = "gemini-2.5-flash-lite"
	generationModel = "gemini-2.5-flash"
)

// Client wraps the Gemini API for resume generation and match scoring.
type Client struct {
	genai *genai.Client
}

// NewClient creates a client. apiKey is required.
func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Client{genai: client}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.genai.Close()
}

// GenerateRequest carries everything the generation call needs.
type GenerateRequest struct {
	JobID        string
	Title        string
	Company      string
	JDText       string
	Profile      *profile.View
	MatchScore   *int
	MatchReasons []string
}

// GenerateResult is the generation outcome: a fresh generation id and
// the LaTeX source to hand to the compile service.
type GenerateResult struct {
	GenID uuid.UUID
	LaTeX string
}

// Generate produces a tailored LaTeX resume for one job.
func (c *Client) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResult, error) {
	if req == nil || req.Profile == nil {
		return nil, fmt.Errorf("generation requires a profile")
	}

	model := c.genai.GenerativeModel(generationModel)
	model.SetTemperature(0.2)

	resp, err := model.GenerateContent(ctx, genai.Text(buildGeneratePrompt(req)))
	if err != nil {
		return nil, fmt.Errorf("failed to generate resume: %w", err)
	}

	text, err := extractText(resp)
	if err != nil {
		return nil, err
	}

	latex := cleanLatexBlock(text)
	if !strings.Contains(latex, `\documentclass`) {
		return nil, fmt.Errorf("generation did not return a LaTeX document")
	}

	return &GenerateResult{GenID: uuid.New(), LaTeX: latex}, nil
}

func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response from model")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no text parts in model response")
	}
	return sb.String(), nil
}

// cleanLatexBlock strips a markdown fence the model may wrap the
// document in.
func cleanLatexBlock(text string) string {
	text = strings.TrimSpace(text)
	for _, fence := range []string{"```latex", "```tex", "```"} {
		if strings.HasPrefix(text, fence) {
			text = strings.TrimPrefix(text, fence)
			if idx := strings.LastIndex(text, "```"); idx >= 0 {
				text = text[:idx]
			}
			return strings.TrimSpace(text)
		}
	}
	return text
}

func buildGeneratePrompt(req *GenerateRequest) string {
	var sb strings.Builder
	sb.WriteString("Generate a one-page LaTeX resume tailored to this job posting.\n")
	sb.WriteString("Return only the LaTeX document, no commentary.\n\n")

	fmt.Fprintf(&sb, "Role: %s\nCompany: %s\n\n", req.Title, req.Company)
	if req.MatchScore != nil {
		fmt.Fprintf(&sb, "Match score: %d\n", *req.MatchScore)
	}
	for _, reason := range req.MatchReasons {
		sb.WriteString("- " + reason + "\n")
	}

	sb.WriteString("\nJob description:\n")
	sb.WriteString(req.JDText)
	sb.WriteString("\n\nCandidate:\n")
	writeProfile(&sb, req.Profile)

	return sb.String()
}

func writeProfile(sb *strings.Builder, view *profile.View) {
	fmt.Fprintf(sb, "Name: %s\nEmail: %s\nPhone: %s\nLocation: %s\n",
		view.FullName, view.Email, view.Phone, view.Location)
	if view.LinkedIn != "" {
		fmt.Fprintf(sb, "LinkedIn: %s\n", view.LinkedIn)
	}
	if view.GitHub != "" {
		fmt.Fprintf(sb, "GitHub: %s\n", view.GitHub)
	}
	if view.College != "" {
		fmt.Fprintf(sb, "Education: %s, %s in %s (%s)\n",
			view.College, view.Degree, view.Branch, view.EndYear)
	}
	if view.Skills != "" {
		fmt.Fprintf(sb, "Skills: %s\n", view.Skills)
	}
	if view.Summary != "" {
		fmt.Fprintf(sb, "Summary: %s\n", view.Summary)
	}
}
