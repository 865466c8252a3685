package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/findajob/jobboard/internal/models"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

func vocabularyJSON(vocab []CategoryTerm) string {
	data, err := json.Marshal(vocab)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// BuildCVAnalysisPrompt creates the rubric prompt for CV scoring
func (pb *PromptBuilder) BuildCVAnalysisPrompt(cvText string, vocab []CategoryTerm) string {
	categories := ""
	if len(vocab) > 0 {
		categories = fmt.Sprintf(`
Also identify the most relevant job categories for this candidate from the following list:
%s
Include them in the "suggested_categories" field using the exact category names.
`, vocabularyJSON(vocab))
	}

	return fmt.Sprintf(`You are a professional technical recruiter. Analyze the following CV text and provide a detailed assessment.

Return your response ONLY as a valid JSON object with the following structure:
{
  "total_score": <0-100>,
  "professionalism_score": <0-20>,
  "relevance_score": <0-40>,
  "experience_score": <0-30>,
  "education_score": <0-10>,
  "missing_sections": ["missing crucial information"],
  "improvement_suggestions": ["specific ways to improve"],
  "suggested_categories": ["Category Name"]
}
%s
Evaluation criteria (must sum to total_score):
1. Professionalism and formatting (max 20)
2. Relevance of skills for the applicant's roles (max 40)
3. Clarity and impact of work experience (max 30)
4. Education and certifications (max 10)

CV TEXT:
%s`, categories, cvText)
}

// BuildCoverLetterAnalysisPrompt creates the rubric prompt for cover letter scoring
func (pb *PromptBuilder) BuildCoverLetterAnalysisPrompt(text string) string {
	return fmt.Sprintf(`You are a professional HR manager. Analyze the following cover letter and provide a detailed assessment.

Return your response ONLY as a valid JSON object with the following structure:
{
  "total_score": <0-100>,
  "professionalism_score": <0-20>,
  "content_score": <0-40>,
  "tone_score": <0-20>,
  "impact_score": <0-20>,
  "missing_elements": ["missing important parts"],
  "improvement_suggestions": ["specific ways to improve"]
}

Evaluation criteria (must sum to total_score):
1. Professionalism and formatting (max 20)
2. Content and alignment with industry standards (max 40)
3. Tone and engagement (max 20)
4. Overall impact and persuasiveness (max 20)

COVER LETTER TEXT:
%s`, text)
}

// BuildCategoryMatchPrompt maps a free-text search query onto the taxonomy
func (pb *PromptBuilder) BuildCategoryMatchPrompt(query string, vocab []CategoryTerm) string {
	return fmt.Sprintf(`Given the following search query from a job seeker, identify the most relevant job categories from the provided list.
A query might match multiple categories.

Return your response ONLY as a JSON object with a key "matched_categories" containing a list of category names:
{"matched_categories": ["Category 1", "Category 2"]}

If no categories match, return {"matched_categories": []}.

SEARCH QUERY: %s

AVAILABLE CATEGORIES:
%s`, query, vocabularyJSON(vocab))
}

func listOrFallback(items []string, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	return strings.Join(items, ", ")
}

// BuildExtractionSystemPrompt primes the parser with the taxonomy and known companies
func (pb *PromptBuilder) BuildExtractionSystemPrompt(categoryNames, companyNames []string) string {
	return fmt.Sprintf(`You are a job listing parser. Extract structured information from job posting text.

Available job categories: %s
Existing companies in database: %s

Extract all relevant information accurately. If the company name is very similar to an existing one, use the existing spelling.
Dates must use the YYYY-MM-DD format.`,
		listOrFallback(categoryNames, "Any relevant category"),
		listOrFallback(companyNames, "None"))
}

func (pb *PromptBuilder) BuildExtractionPrompt(text string) string {
	return fmt.Sprintf("Parse the following job listing text and extract company information, job listing details, and requirements:\n\n%s", text)
}

// BuildChatSystemPrompt introduces the assistant and who it is talking to
func (pb *PromptBuilder) BuildChatSystemPrompt(user *models.User) string {
	who := "an anonymous visitor"
	if user != nil {
		who = fmt.Sprintf("%s (%s)", user.Email, user.Role)
	}
	return fmt.Sprintf(`You are 'FindAJob Assistant', an AI helper for the FindAJob job board.
You help job seekers find jobs, improve their CVs and cover letters, and understand the application process.
You help employers post listings and review candidates.
You are talking to %s.
Keep answers concise, helpful and friendly.
Respond ONLY with a JSON object of the form {"reply": "<your answer>"}.`, who)
}

// BuildChatPrompt renders the recent conversation followed by the new message
func (pb *PromptBuilder) BuildChatPrompt(history []models.ChatMessage, message string) string {
	var b strings.Builder
	if len(history) > 0 {
		b.WriteString("CONVERSATION SO FAR:\n")
		for _, m := range history {
			fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "USER MESSAGE:\n%s", message)
	return b.String()
}

// CoverLetterInput is what the oracle knows about the candidate and the job.
type CoverLetterInput struct {
	CandidateName  string
	CandidateEmail string
	CandidatePhone string
	CurrentDate    string
	Background     string
	Job            models.JobListing
}

// BuildCoverLetterPrompt asks for a tailored letter plus a self-assessment
func (pb *PromptBuilder) BuildCoverLetterPrompt(in CoverLetterInput) string {
	var candidate strings.Builder
	fmt.Fprintf(&candidate, "Name: %s\nEmail: %s\n", in.CandidateName, in.CandidateEmail)
	if in.CandidatePhone != "" {
		fmt.Fprintf(&candidate, "Phone: %s\n", in.CandidatePhone)
	}
	fmt.Fprintf(&candidate, "Current Date: %s\n", in.CurrentDate)

	description := in.Job.Description
	if runes := []rune(description); len(runes) > 1000 {
		description = string(runes[:1000]) + "..."
	}

	var requirements []string
	for _, r := range in.Job.Requirements {
		requirements = append(requirements, "- "+r.Description)
	}

	background := strings.TrimSpace(in.Background)
	if background == "" {
		background = "No CV provided."
	}

	return fmt.Sprintf(`You are a professional career coach and expert cover letter writer.
Write a highly professional, persuasive and tailored cover letter for a job application.

CANDIDATE INFORMATION:
%s
CANDIDATE CV:
%s

JOB LISTING:
Title: %s
Company: %s
Location: %s
Description: %s
Requirements:
%s

INSTRUCTIONS:
1. Write the cover letter in a formal business letter layout, about 350 words, matching the strongest skills to the job requirements.
2. Score the letter you wrote: professionalism (0-20), content and alignment (0-40), tone and engagement (0-20), overall impact (0-20).
3. Return ONLY a JSON object with this structure:
{
  "content": "Full text of the cover letter",
  "analysis": {
    "total_score": <0-100>,
    "professionalism_score": <0-20>,
    "content_score": <0-40>,
    "tone_score": <0-20>,
    "impact_score": <0-20>,
    "missing_elements": [],
    "improvement_suggestions": []
  }
}`,
		candidate.String(), background,
		in.Job.Title, in.Job.DisplayCompany(), in.Job.Location, description,
		strings.Join(requirements, "\n"))
}

func stringEnum[T ~string](values []T) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, string(v))
	}
	return out
}

// ListingExtractionSchema is the function signature the extraction oracle must fill.
func ListingExtractionSchema(categoryNames []string) *FunctionSchema {
	str := func(desc string) map[string]any { return map[string]any{"type": "string", "description": desc} }
	integer := func(desc string) map[string]any { return map[string]any{"type": "integer", "description": desc} }

	category := str("Job category name from: " + listOrFallback(categoryNames, "any relevant category"))
	if len(categoryNames) > 0 {
		category["enum"] = categoryNames
	}

	terms := str("Job terms")
	terms["enum"] = stringEnum(models.AllJobTerms)
	education := str("Required education level")
	education["enum"] = stringEnum(models.AllEducationLevels)
	method := str("How to apply")
	method["enum"] = stringEnum(models.AllApplicationMethods)

	return &FunctionSchema{
		Name:        "extract_job_listing_data",
		Description: "Extract company and job listing information from the provided text",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"company": map[string]any{
					"type":        "object",
					"description": "Company information extracted from the text",
					"properties": map[string]any{
						"name":            str("Company name"),
						"description":     str("Company description"),
						"website":         str("Company website URL"),
						"location":        str("Company location or headquarters"),
						"primary_phone":   str("Primary phone number"),
						"secondary_phone": str("Secondary phone number"),
						"primary_email":   str("Primary email address"),
						"secondary_email": str("Secondary email address"),
						"founded_in":      integer("Year the company was founded"),
					},
					"required": []string{"name"},
				},
				"job_listing": map[string]any{
					"type":        "object",
					"description": "Job listing information",
					"properties": map[string]any{
						"title":                     str("Job title"),
						"category":                  category,
						"description":               str("Full job description"),
						"location":                  str("Job location"),
						"url":                       str("Job posting URL"),
						"terms":                     terms,
						"education_level_required":  education,
						"experience_required_years": integer("Years of experience required"),
						"application_method":        method,
						"employer_email":            str("Email for applications"),
						"application_url":           str("Application URL"),
						"application_instructions":  str("Special application instructions"),
						"expiry_date":               str("Job expiry date in YYYY-MM-DD format"),
					},
					"required": []string{"title", "description", "location"},
				},
				"requirements": map[string]any{
					"type":        "array",
					"description": "List of job requirements",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"description":  str("Requirement description"),
							"is_mandatory": map[string]any{"type": "boolean", "description": "Whether this requirement is mandatory"},
						},
						"required": []string{"description"},
					},
				},
			},
			"required": []string{"company", "job_listing", "requirements"},
		},
	}
}
