package models

// ExtractedCompany mirrors the company object returned by the extraction oracle.
type ExtractedCompany struct {
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	Website        string `json:"website,omitempty"`
	Location       string `json:"location,omitempty"`
	PrimaryPhone   string `json:"primary_phone,omitempty"`
	SecondaryPhone string `json:"secondary_phone,omitempty"`
	PrimaryEmail   string `json:"primary_email,omitempty"`
	SecondaryEmail string `json:"secondary_email,omitempty"`
	FoundedIn      *int   `json:"founded_in,omitempty"`
}

type ExtractedListing struct {
	Title                   string `json:"title"`
	Description             string `json:"description"`
	Location                string `json:"location"`
	Category                string `json:"category"`
	Terms                   string `json:"terms,omitempty"`
	EducationLevelRequired  string `json:"education_level_required,omitempty"`
	ExperienceRequiredYears *int   `json:"experience_required_years,omitempty"`
	ApplicationMethod       string `json:"application_method,omitempty"`
	EmployerEmail           string `json:"employer_email,omitempty"`
	ApplicationURL          string `json:"application_url,omitempty"`
	ApplicationInstructions string `json:"application_instructions,omitempty"`
	ExpiryDate              string `json:"expiry_date,omitempty"`
	URL                     string `json:"url,omitempty"`
}

type ExtractedRequirement struct {
	Description string `json:"description"`
	IsMandatory *bool  `json:"is_mandatory,omitempty"`
}

// Mandatory defaults to true when the oracle omits the flag.
func (r ExtractedRequirement) Mandatory() bool {
	return r.IsMandatory == nil || *r.IsMandatory
}

type ExtractedPayload struct {
	Company      ExtractedCompany       `json:"company"`
	JobListing   ExtractedListing       `json:"job_listing"`
	Requirements []ExtractedRequirement `json:"requirements"`
}

type SimilarCompany struct {
	ID         uint    `json:"id"`
	Name       string  `json:"name"`
	Similarity float64 `json:"similarity"`
}

// ListingPreview is the unpersisted result of the first extraction phase.
type ListingPreview struct {
	Token            string           `json:"token"`
	Payload          ExtractedPayload `json:"payload"`
	SimilarCompanies []SimilarCompany `json:"similar_companies"`
}
