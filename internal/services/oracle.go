package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/findajob/jobboard/internal/logger"
	"github.com/findajob/jobboard/internal/models"
)

// Oracle is the AI collaborator behind search, scoring and extraction. Every
// call is single-attempt and bounded by a timeout; a timeout, transport error
// or malformed answer is reported as ErrOracleUnavailable.
type Oracle interface {
	Enabled() bool
	MatchCategories(ctx context.Context, query string, vocab []CategoryTerm) []string
	AnalyzeCV(ctx context.Context, text string, vocab []CategoryTerm) (*CVAssessment, error)
	AnalyzeCoverLetter(ctx context.Context, text string) (*CoverLetterAssessment, error)
	ExtractListing(ctx context.Context, text string, categoryNames, companyNames []string) (*models.ExtractedPayload, error)
	GenerateCoverLetter(ctx context.Context, in CoverLetterInput) (*GeneratedCoverLetter, error)
	Embed(ctx context.Context, text string) ([]float32, error)
	// Chat always produces a reply; failures become a canned apology.
	Chat(ctx context.Context, user *models.User, history []models.ChatMessage, message string) string
}

const (
	ChatUnavailableReply = "AI Service is currently unavailable."
	ChatFailureReply     = "I'm having trouble connecting right now. Please try again later."
)

type CVAssessment struct {
	TotalScore             int
	ProfessionalismScore   int
	RelevanceScore         int
	ExperienceScore        int
	EducationScore         int
	MissingSections        []string
	ImprovementSuggestions []string
	SuggestedCategories    []string
	Raw                    json.RawMessage
}

type CoverLetterAssessment struct {
	TotalScore             int
	ProfessionalismScore   int
	ContentScore           int
	ToneScore              int
	ImpactScore            int
	MissingElements        []string
	ImprovementSuggestions []string
	Raw                    json.RawMessage
}

type GeneratedCoverLetter struct {
	Content  string
	Analysis *CoverLetterAssessment
}

type OracleConfig struct {
	Timeout         time.Duration
	ExtractionModel string
	MaxLogLength    int
}

type oracle struct {
	gen     Generator
	prompts *PromptBuilder
	cfg     OracleConfig
	logger  *zap.Logger
}

// NewOracle wraps gen. A nil generator produces a disabled oracle that never
// touches the network.
func NewOracle(gen Generator, cfg OracleConfig, log *zap.Logger) Oracle {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxLogLength <= 0 {
		cfg.MaxLogLength = 200
	}
	return &oracle{
		gen:     gen,
		prompts: NewPromptBuilder(),
		cfg:     cfg,
		logger:  logger.OrNop(log),
	}
}

// Enabled implements Oracle.
func (o *oracle) Enabled() bool {
	return o.gen != nil
}

func (o *oracle) generate(ctx context.Context, op string, req GenerationRequest) (string, error) {
	if o.gen == nil {
		return "", ErrOracleUnavailable
	}

	model := o.gen.Model()
	if req.Model != "" {
		model = req.Model
	}
	log := logger.WithOracleFields(o.logger, o.gen.Provider(), model, op)

	ctx, cancel := context.WithTimeout(ctx, o.cfg.Timeout)
	defer cancel()

	log.Debug("oracle request", zap.String("prompt", logger.TruncateForLog(req.Prompt, o.cfg.MaxLogLength)))
	started := time.Now()

	text, err := o.gen.GenerateJSON(ctx, req)
	if err != nil {
		log.Warn("oracle call failed", zap.Error(err), zap.Duration("elapsed", time.Since(started)))
		return "", fmt.Errorf("%w: %s: %w", ErrOracleUnavailable, op, err)
	}

	log.Debug("oracle response",
		zap.Duration("elapsed", time.Since(started)),
		zap.String("response", logger.TruncateForLog(text, o.cfg.MaxLogLength)))
	return text, nil
}

func (o *oracle) decode(op, text string, target any) error {
	if err := json.Unmarshal([]byte(extractJSON(text)), target); err != nil {
		o.logger.Warn("oracle returned malformed json",
			zap.String(logger.FieldOperation, op),
			zap.Error(err),
			zap.String("response", logger.TruncateForLog(text, o.cfg.MaxLogLength)))
		return fmt.Errorf("%w: %s: malformed response: %w", ErrOracleUnavailable, op, err)
	}
	return nil
}

// MatchCategories implements Oracle. Failures yield an empty set.
func (o *oracle) MatchCategories(ctx context.Context, query string, vocab []CategoryTerm) []string {
	if o.gen == nil || strings.TrimSpace(query) == "" {
		return nil
	}

	text, err := o.generate(ctx, "match_categories", GenerationRequest{
		System:      "You are a job search assistant. You map queries to job categories and return ONLY a JSON object.",
		Prompt:      o.prompts.BuildCategoryMatchPrompt(query, vocab),
		Temperature: 0.3,
		MaxTokens:   500,
	})
	if err != nil {
		return nil
	}

	var result struct {
		MatchedCategories []string `json:"matched_categories"`
	}
	if err := o.decode("match_categories", text, &result); err != nil {
		return nil
	}
	return result.MatchedCategories
}

type rawCVAssessment struct {
	TotalScore             float64  `json:"total_score"`
	ProfessionalismScore   float64  `json:"professionalism_score"`
	RelevanceScore         float64  `json:"relevance_score"`
	ExperienceScore        float64  `json:"experience_score"`
	EducationScore         float64  `json:"education_score"`
	MissingSections        []string `json:"missing_sections"`
	ImprovementSuggestions []string `json:"improvement_suggestions"`
	SuggestedCategories    []string `json:"suggested_categories"`
}

type rawCoverLetterAssessment struct {
	TotalScore             float64  `json:"total_score"`
	ProfessionalismScore   float64  `json:"professionalism_score"`
	ContentScore           float64  `json:"content_score"`
	ToneScore              float64  `json:"tone_score"`
	ImpactScore            float64  `json:"impact_score"`
	MissingElements        []string `json:"missing_elements"`
	ImprovementSuggestions []string `json:"improvement_suggestions"`
}

// clampScore rounds v and bounds it to [0, max].
func clampScore(v float64, max int) int {
	n := int(math.Round(v))
	if n < 0 {
		return 0
	}
	if n > max {
		return max
	}
	return n
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

// toCVAssessment bounds every sub-score and recomputes the total as their sum.
func toCVAssessment(raw rawCVAssessment, text string) *CVAssessment {
	a := &CVAssessment{
		ProfessionalismScore:   clampScore(raw.ProfessionalismScore, models.MaxCVProfessionalism),
		RelevanceScore:         clampScore(raw.RelevanceScore, models.MaxCVRelevance),
		ExperienceScore:        clampScore(raw.ExperienceScore, models.MaxCVExperience),
		EducationScore:         clampScore(raw.EducationScore, models.MaxCVEducation),
		MissingSections:        nonNil(raw.MissingSections),
		ImprovementSuggestions: nonNil(raw.ImprovementSuggestions),
		SuggestedCategories:    nonNil(raw.SuggestedCategories),
		Raw:                    json.RawMessage(text),
	}
	a.TotalScore = a.ProfessionalismScore + a.RelevanceScore + a.ExperienceScore + a.EducationScore
	return a
}

func toCoverLetterAssessment(raw rawCoverLetterAssessment, text string) *CoverLetterAssessment {
	a := &CoverLetterAssessment{
		ProfessionalismScore:   clampScore(raw.ProfessionalismScore, models.MaxCLProfessionalism),
		ContentScore:           clampScore(raw.ContentScore, models.MaxCLContent),
		ToneScore:              clampScore(raw.ToneScore, models.MaxCLTone),
		ImpactScore:            clampScore(raw.ImpactScore, models.MaxCLImpact),
		MissingElements:        nonNil(raw.MissingElements),
		ImprovementSuggestions: nonNil(raw.ImprovementSuggestions),
		Raw:                    json.RawMessage(text),
	}
	a.TotalScore = a.ProfessionalismScore + a.ContentScore + a.ToneScore + a.ImpactScore
	return a
}

// AnalyzeCV implements Oracle.
func (o *oracle) AnalyzeCV(ctx context.Context, text string, vocab []CategoryTerm) (*CVAssessment, error) {
	resp, err := o.generate(ctx, "analyze_cv", GenerationRequest{
		System:      "You are a helpful assistant that evaluates CVs and returns ONLY valid JSON.",
		Prompt:      o.prompts.BuildCVAnalysisPrompt(text, vocab),
		Temperature: 0.7,
		MaxTokens:   1000,
	})
	if err != nil {
		return nil, err
	}

	var raw rawCVAssessment
	if err := o.decode("analyze_cv", resp, &raw); err != nil {
		return nil, err
	}
	return toCVAssessment(raw, extractJSON(resp)), nil
}

// AnalyzeCoverLetter implements Oracle.
func (o *oracle) AnalyzeCoverLetter(ctx context.Context, text string) (*CoverLetterAssessment, error) {
	resp, err := o.generate(ctx, "analyze_cover_letter", GenerationRequest{
		System:      "You are a professional recruiting assistant that evaluates cover letters and returns ONLY valid JSON.",
		Prompt:      o.prompts.BuildCoverLetterAnalysisPrompt(text),
		Temperature: 0.7,
		MaxTokens:   1000,
	})
	if err != nil {
		return nil, err
	}

	var raw rawCoverLetterAssessment
	if err := o.decode("analyze_cover_letter", resp, &raw); err != nil {
		return nil, err
	}
	return toCoverLetterAssessment(raw, extractJSON(resp)), nil
}

// extractionModel is the override for extraction-grade calls. The configured
// name is an OpenAI model, so other providers keep their default.
func (o *oracle) extractionModel() string {
	if o.gen == nil || o.gen.Provider() != "openai" {
		return ""
	}
	return o.cfg.ExtractionModel
}

// ExtractListing implements Oracle.
func (o *oracle) ExtractListing(ctx context.Context, text string, categoryNames, companyNames []string) (*models.ExtractedPayload, error) {
	resp, err := o.generate(ctx, "extract_listing", GenerationRequest{
		System:      o.prompts.BuildExtractionSystemPrompt(categoryNames, companyNames),
		Prompt:      o.prompts.BuildExtractionPrompt(text),
		Temperature: 0.3,
		MaxTokens:   2000,
		Model:       o.extractionModel(),
		Function:    ListingExtractionSchema(categoryNames),
	})
	if err != nil {
		return nil, err
	}

	var payload models.ExtractedPayload
	if err := o.decode("extract_listing", resp, &payload); err != nil {
		return nil, err
	}
	if err := normalizeExtraction(&payload); err != nil {
		o.logger.Warn("oracle extraction incomplete", zap.Error(err))
		return nil, fmt.Errorf("%w: extract_listing: %w", ErrOracleUnavailable, err)
	}
	return &payload, nil
}

func oneOf[T ~string](value string, allowed []T, fallback T) string {
	for _, a := range allowed {
		if strings.EqualFold(value, string(a)) {
			return string(a)
		}
	}
	return string(fallback)
}

// normalizeExtraction checks required fields and snaps enumerations onto
// their allowed values.
func normalizeExtraction(p *models.ExtractedPayload) error {
	p.Company.Name = strings.TrimSpace(p.Company.Name)
	listing := &p.JobListing
	listing.Title = strings.TrimSpace(listing.Title)
	listing.Description = strings.TrimSpace(listing.Description)
	listing.Location = strings.TrimSpace(listing.Location)

	switch {
	case p.Company.Name == "":
		return fmt.Errorf("company name is missing")
	case listing.Title == "":
		return fmt.Errorf("job title is missing")
	case listing.Description == "":
		return fmt.Errorf("job description is missing")
	case listing.Location == "":
		return fmt.Errorf("job location is missing")
	}

	listing.Category = strings.TrimSpace(listing.Category)
	if listing.Category == "" {
		listing.Category = "General"
	}
	listing.Terms = oneOf(listing.Terms, models.AllJobTerms, models.TermsNone)
	listing.EducationLevelRequired = oneOf(listing.EducationLevelRequired, models.AllEducationLevels, models.EducationNone)
	listing.ApplicationMethod = oneOf(listing.ApplicationMethod, models.AllApplicationMethods, models.MethodEmail)

	requirements := p.Requirements[:0]
	for _, r := range p.Requirements {
		r.Description = strings.TrimSpace(r.Description)
		if r.Description != "" {
			requirements = append(requirements, r)
		}
	}
	p.Requirements = requirements
	if p.Requirements == nil {
		p.Requirements = []models.ExtractedRequirement{}
	}
	return nil
}

// GenerateCoverLetter implements Oracle.
func (o *oracle) GenerateCoverLetter(ctx context.Context, in CoverLetterInput) (*GeneratedCoverLetter, error) {
	if in.CurrentDate == "" {
		in.CurrentDate = time.Now().Format("January 02, 2006")
	}

	resp, err := o.generate(ctx, "generate_cover_letter", GenerationRequest{
		System:      "You are a professional cover letter writer who outputs JSON.",
		Prompt:      o.prompts.BuildCoverLetterPrompt(in),
		Temperature: 0.7,
		MaxTokens:   1500,
		Model:       o.extractionModel(),
	})
	if err != nil {
		return nil, err
	}

	var raw struct {
		Content  string                    `json:"content"`
		Analysis *rawCoverLetterAssessment `json:"analysis"`
	}
	if err := o.decode("generate_cover_letter", resp, &raw); err != nil {
		return nil, err
	}
	if strings.TrimSpace(raw.Content) == "" {
		return nil, fmt.Errorf("%w: generate_cover_letter: empty letter", ErrOracleUnavailable)
	}

	letter := &GeneratedCoverLetter{Content: strings.TrimSpace(raw.Content)}
	if raw.Analysis != nil {
		analysis, _ := json.Marshal(raw.Analysis)
		letter.Analysis = toCoverLetterAssessment(*raw.Analysis, string(analysis))
	}
	return letter, nil
}

// Embed implements Oracle.
func (o *oracle) Embed(ctx context.Context, text string) ([]float32, error) {
	if o.gen == nil {
		return nil, ErrOracleUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, o.cfg.Timeout)
	defer cancel()

	vector, err := o.gen.GenerateEmbedding(ctx, text)
	if err != nil {
		logger.WithOracleFields(o.logger, o.gen.Provider(), o.gen.Model(), "embed").
			Warn("embedding failed", zap.Error(err))
		return nil, fmt.Errorf("%w: embed: %w", ErrOracleUnavailable, err)
	}
	return vector, nil
}

// Chat implements Oracle.
func (o *oracle) Chat(ctx context.Context, user *models.User, history []models.ChatMessage, message string) string {
	if o.gen == nil {
		return ChatUnavailableReply
	}

	resp, err := o.generate(ctx, "chat", GenerationRequest{
		System:      o.prompts.BuildChatSystemPrompt(user),
		Prompt:      o.prompts.BuildChatPrompt(history, message),
		Temperature: 0.7,
		MaxTokens:   300,
	})
	if err != nil {
		return ChatFailureReply
	}

	var result struct {
		Reply string `json:"reply"`
	}
	if err := o.decode("chat", resp, &result); err != nil || strings.TrimSpace(result.Reply) == "" {
		return ChatFailureReply
	}
	return strings.TrimSpace(result.Reply)
}
