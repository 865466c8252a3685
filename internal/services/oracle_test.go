package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/findajob/jobboard/internal/models"
)

func TestDisabledOracleNeverCallsOut(t *testing.T) {
	o := newStubOracle(nil)
	ctx := context.Background()

	if o.Enabled() {
		t.Fatalf("expected disabled oracle")
	}
	if got := o.MatchCategories(ctx, "python developer", nil); got != nil {
		t.Fatalf("expected no categories, got %v", got)
	}
	if _, err := o.AnalyzeCV(ctx, "cv", nil); !errors.Is(err, ErrOracleUnavailable) {
		t.Fatalf("expected ErrOracleUnavailable, got %v", err)
	}
	if _, err := o.ExtractListing(ctx, "text", nil, nil); !errors.Is(err, ErrOracleUnavailable) {
		t.Fatalf("expected ErrOracleUnavailable, got %v", err)
	}
}

func TestOracleFailuresAreUnavailable(t *testing.T) {
	tests := []struct {
		name string
		gen  *stubGenerator
	}{
		{name: "transport error", gen: &stubGenerator{err: errors.New("connection reset")}},
		{name: "malformed json", gen: &stubGenerator{response: "I cannot score this CV."}},
		{name: "truncated json", gen: &stubGenerator{response: `{"total_score": 50,`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := newStubOracle(tt.gen)
			if _, err := o.AnalyzeCV(context.Background(), "cv text", nil); !errors.Is(err, ErrOracleUnavailable) {
				t.Fatalf("expected ErrOracleUnavailable, got %v", err)
			}
			if got := o.MatchCategories(context.Background(), "nurse", nil); len(got) != 0 {
				t.Fatalf("expected empty category set, got %v", got)
			}
		})
	}
}

func TestOracleTimeout(t *testing.T) {
	gen := &stubGenerator{respond: func(req GenerationRequest) (string, error) {
		time.Sleep(200 * time.Millisecond)
		return `{"matched_categories": ["ICT"]}`, nil
	}}
	slow := &deadlineGenerator{stubGenerator: gen}
	o := NewOracle(slow, OracleConfig{Timeout: 20 * time.Millisecond}, nil)

	started := time.Now()
	_, err := o.AnalyzeCoverLetter(context.Background(), "letter")
	if !errors.Is(err, ErrOracleUnavailable) {
		t.Fatalf("expected ErrOracleUnavailable, got %v", err)
	}
	if elapsed := time.Since(started); elapsed > 150*time.Millisecond {
		t.Fatalf("expected the call to be cut off by the timeout, took %v", elapsed)
	}
}

// deadlineGenerator honours the context deadline the way real clients do.
type deadlineGenerator struct {
	*stubGenerator
}

func (g *deadlineGenerator) GenerateJSON(ctx context.Context, req GenerationRequest) (string, error) {
	type answer struct {
		text string
		err  error
	}
	done := make(chan answer, 1)
	go func() {
		text, err := g.stubGenerator.GenerateJSON(ctx, req)
		done <- answer{text, err}
	}()
	select {
	case a := <-done:
		return a.text, a.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestAnalyzeCVClampsAndRecomputesTotal(t *testing.T) {
	gen := &stubGenerator{response: "```json\n" + `{
		"total_score": 99,
		"professionalism_score": 25,
		"relevance_score": 35,
		"experience_score": -3,
		"education_score": 9.6,
		"missing_sections": ["Referees"],
		"suggested_categories": ["ICT"]
	}` + "\n```"}

	got, err := newStubOracle(gen).AnalyzeCV(context.Background(), "cv", nil)
	if err != nil {
		t.Fatalf("AnalyzeCV: %v", err)
	}

	if got.ProfessionalismScore != 20 || got.RelevanceScore != 35 || got.ExperienceScore != 0 || got.EducationScore != 10 {
		t.Fatalf("unexpected sub-scores: %+v", got)
	}
	if got.TotalScore != 65 {
		t.Fatalf("expected total 65, got %d", got.TotalScore)
	}
	if len(got.ImprovementSuggestions) != 0 || got.ImprovementSuggestions == nil {
		t.Fatalf("expected empty non-nil suggestions, got %#v", got.ImprovementSuggestions)
	}
	if len(got.SuggestedCategories) != 1 || got.SuggestedCategories[0] != "ICT" {
		t.Fatalf("unexpected suggested categories: %v", got.SuggestedCategories)
	}
}

func TestAnalyzeCoverLetterScores(t *testing.T) {
	gen := &stubGenerator{response: `{"professionalism_score": 18, "content_score": 30, "tone_score": 15, "impact_score": 12, "missing_elements": []}`}

	got, err := newStubOracle(gen).AnalyzeCoverLetter(context.Background(), "Dear hiring manager")
	if err != nil {
		t.Fatalf("AnalyzeCoverLetter: %v", err)
	}
	if got.TotalScore != 75 {
		t.Fatalf("expected total 75, got %d", got.TotalScore)
	}
}

func TestMatchCategories(t *testing.T) {
	gen := &stubGenerator{response: `{"matched_categories": ["ICT", "Engineering"]}`}

	got := newStubOracle(gen).MatchCategories(context.Background(), "python developer", []CategoryTerm{{Name: "ICT"}})
	if len(got) != 2 || got[0] != "ICT" || got[1] != "Engineering" {
		t.Fatalf("unexpected categories: %v", got)
	}
	if gen.calls() != 1 {
		t.Fatalf("expected one call, got %d", gen.calls())
	}
}

func TestExtractListingNormalizesEnums(t *testing.T) {
	gen := &stubGenerator{response: `{
		"company": {"name": " Safaricom PLC "},
		"job_listing": {
			"title": "Data Analyst",
			"description": "Analyse data",
			"location": "Nairobi",
			"category": "",
			"terms": "full time",
			"education_level_required": "PhD",
			"application_method": ""
		},
		"requirements": [
			{"description": "SQL"},
			{"description": "   "},
			{"description": "Python", "is_mandatory": false}
		]
	}`}

	got, err := newStubOracle(gen).ExtractListing(context.Background(), "posting", []string{"ICT"}, nil)
	if err != nil {
		t.Fatalf("ExtractListing: %v", err)
	}

	if got.Company.Name != "Safaricom PLC" {
		t.Fatalf("expected trimmed company name, got %q", got.Company.Name)
	}
	l := got.JobListing
	if l.Category != "General" {
		t.Fatalf("expected General category, got %q", l.Category)
	}
	if l.Terms != string(models.TermsFullTime) {
		t.Fatalf("expected Full Time, got %q", l.Terms)
	}
	if l.EducationLevelRequired != string(models.EducationNone) {
		t.Fatalf("expected None education, got %q", l.EducationLevelRequired)
	}
	if l.ApplicationMethod != string(models.MethodEmail) {
		t.Fatalf("expected email method, got %q", l.ApplicationMethod)
	}
	if len(got.Requirements) != 2 {
		t.Fatalf("expected blank requirement dropped, got %d", len(got.Requirements))
	}
	if !got.Requirements[0].Mandatory() || got.Requirements[1].Mandatory() {
		t.Fatalf("unexpected mandatory flags: %+v", got.Requirements)
	}

	if len(gen.requests) != 1 || gen.requests[0].Function == nil {
		t.Fatalf("expected a function-call request")
	}
}

func TestExtractListingRejectsIncompletePayload(t *testing.T) {
	gen := &stubGenerator{response: `{"company": {"name": "Acme"}, "job_listing": {"title": "", "description": "d", "location": "x"}}`}

	if _, err := newStubOracle(gen).ExtractListing(context.Background(), "posting", nil, nil); !errors.Is(err, ErrOracleUnavailable) {
		t.Fatalf("expected ErrOracleUnavailable, got %v", err)
	}
}

func TestExtractionModelOnlyOverridesOpenAI(t *testing.T) {
	listing := `{"company": {"name": "Acme"}, "job_listing": {"title": "Dev", "description": "d", "location": "Nairobi"}, "requirements": []}`
	letter := `{"content": "Dear hiring manager"}`

	tests := []struct {
		provider string
		want     string
	}{
		{provider: "openai", want: "gpt-4o"},
		{provider: "gemini", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			gen := &stubGenerator{provider: tt.provider, respond: func(req GenerationRequest) (string, error) {
				if req.Function != nil {
					return listing, nil
				}
				return letter, nil
			}}
			o := NewOracle(gen, OracleConfig{ExtractionModel: "gpt-4o"}, nil)

			if _, err := o.ExtractListing(context.Background(), "posting", nil, nil); err != nil {
				t.Fatalf("ExtractListing: %v", err)
			}
			if _, err := o.GenerateCoverLetter(context.Background(), CoverLetterInput{CandidateName: "Jane"}); err != nil {
				t.Fatalf("GenerateCoverLetter: %v", err)
			}
			for i, req := range gen.requests {
				if req.Model != tt.want {
					t.Fatalf("request %d: expected model %q, got %q", i, tt.want, req.Model)
				}
			}
		})
	}
}

func TestChat(t *testing.T) {
	user := &models.User{Email: "jane@example.com", Role: models.RoleJobSeeker}
	history := []models.ChatMessage{
		{Role: models.ChatRoleUser, Content: "Hi"},
		{Role: models.ChatRoleAssistant, Content: "Hello! How can I help?"},
	}

	tests := []struct {
		name string
		gen  *stubGenerator
		want string
	}{
		{name: "disabled", gen: nil, want: ChatUnavailableReply},
		{name: "reply", gen: &stubGenerator{response: `{"reply": " Try the ICT category. "}`}, want: "Try the ICT category."},
		{name: "transport error", gen: &stubGenerator{err: errors.New("connection reset")}, want: ChatFailureReply},
		{name: "malformed", gen: &stubGenerator{response: "sure thing"}, want: ChatFailureReply},
		{name: "empty reply", gen: &stubGenerator{response: `{"reply": ""}`}, want: ChatFailureReply},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newStubOracle(tt.gen).Chat(context.Background(), user, history, "Which jobs suit a Go developer?")
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}

	gen := &stubGenerator{response: `{"reply": "ok"}`}
	newStubOracle(gen).Chat(context.Background(), user, history, "Which jobs suit a Go developer?")
	req := gen.requests[0]
	if !strings.Contains(req.System, "jane@example.com") {
		t.Fatalf("expected the user in the system prompt, got %q", req.System)
	}
	if !strings.Contains(req.Prompt, "assistant: Hello! How can I help?") || !strings.HasSuffix(req.Prompt, "Which jobs suit a Go developer?") {
		t.Fatalf("unexpected chat prompt %q", req.Prompt)
	}
	if req.Temperature != 0.7 || req.MaxTokens != 300 {
		t.Fatalf("unexpected sampling settings %+v", req)
	}
}
