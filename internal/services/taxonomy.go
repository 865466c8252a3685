package services

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/findajob/jobboard/internal/logger"
	"github.com/findajob/jobboard/internal/models"
	"github.com/findajob/jobboard/internal/repositories"
)

// CategoryTerm is the oracle-facing view of a category.
type CategoryTerm struct {
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
}

func Vocabulary(categories []models.JobCategory) []CategoryTerm {
	terms := make([]CategoryTerm, 0, len(categories))
	for _, c := range categories {
		keywords := []string(c.Keywords)
		if keywords == nil {
			keywords = []string{}
		}
		terms = append(terms, CategoryTerm{Name: c.Name, Keywords: keywords})
	}
	return terms
}

func CategoryNames(categories []models.JobCategory) []string {
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}
	return names
}

// HasKeyword reports whether any of the category keywords contains word,
// case-insensitively.
func HasKeyword(category models.JobCategory, word string) bool {
	word = strings.ToLower(word)
	for _, kw := range category.Keywords {
		if strings.Contains(strings.ToLower(kw), word) {
			return true
		}
	}
	return false
}

type TaxonomyService interface {
	List() ([]models.JobCategory, error)
	Seed() (int, error)
}

type taxonomyService struct {
	repo   repositories.CategoryRepository
	logger *zap.Logger
}

func NewTaxonomyService(repo repositories.CategoryRepository, log *zap.Logger) TaxonomyService {
	return &taxonomyService{repo: repo, logger: logger.OrNop(log)}
}

// List implements TaxonomyService.
func (s *taxonomyService) List() ([]models.JobCategory, error) {
	return s.repo.List()
}

// Seed implements TaxonomyService. Existing categories are left untouched.
func (s *taxonomyService) Seed() (int, error) {
	created := 0
	for _, def := range DefaultCategories() {
		category := def
		isNew, err := s.repo.FirstOrCreate(&category)
		if err != nil {
			return created, fmt.Errorf("failed to seed category %q: %w", def.Name, err)
		}
		if isNew {
			created++
			s.logger.Debug("category created", zap.String("category", def.Name))
		}
	}
	s.logger.Info("categories seeded", zap.Int("created", created), zap.Int("total", len(DefaultCategories())))
	return created, nil
}

func category(name string, kind models.CategoryType, keywords ...string) models.JobCategory {
	return models.JobCategory{Name: name, CategoryType: kind, Keywords: keywords}
}

// DefaultCategories is the platform's default taxonomy.
func DefaultCategories() []models.JobCategory {
	w, b, m := models.CategoryWhiteCollar, models.CategoryBlueCollar, models.CategoryMixed
	return []models.JobCategory{
		category("Administration / Secretarial", w, "admin", "secretary", "receptionist", "office assistant", "clerk", "personal assistant"),
		category("Agriculture / Agro-Allied", m, "agriculture", "farm", "agronomist", "livestock", "horticulture", "veterinary"),
		category("Art / Crafts / Languages", m, "artist", "designer", "translator", "interpreter", "craft", "illustrator"),
		category("Aviation / Airline", m, "aviation", "pilot", "cabin crew", "airline", "aircraft", "airport"),
		category("Banking", w, "bank", "teller", "relationship manager", "credit", "loan officer"),
		category("Building and Construction", b, "construction", "mason", "carpenter", "plumber", "electrician", "site engineer", "foreman"),
		category("Bursary and Scholarships", w, "scholarship", "bursary", "fellowship", "grant"),
		category("Catering / Confectionery", b, "chef", "cook", "baker", "catering", "pastry", "kitchen"),
		category("Consultancy", w, "consultant", "advisory", "consultancy"),
		category("Customer Care", w, "customer service", "customer care", "call center", "support agent", "front desk"),
		category("Data, Business Analysis and AI", w, "data", "analyst", "machine learning", "ai", "business intelligence", "statistics"),
		category("Driving", b, "driver", "chauffeur", "delivery", "rider", "truck"),
		category("Education / Teaching", w, "teacher", "lecturer", "tutor", "education", "trainer", "instructor"),
		category("Engineering / Technical", m, "engineer", "technician", "mechanical", "civil", "electrical", "maintenance"),
		category("Expatriate", w, "expatriate", "international", "relocation"),
		category("Finance / Accounting / Audit", w, "accountant", "finance", "audit", "bookkeeper", "tax", "cpa"),
		category("General", m, "general", "casual", "helper"),
		category("Graduate Jobs", w, "graduate", "trainee", "entry level", "management trainee"),
		category("Hospitality / Hotel / Restaurant", m, "hotel", "waiter", "waitress", "housekeeping", "hospitality", "bartender"),
		category("Human Resources / HR", w, "human resources", "hr", "recruiter", "talent", "payroll"),
		category("ICT / Computer", w, "developer", "software", "programmer", "python", "java", "it support", "network", "devops"),
		category("Insurance", w, "insurance", "underwriter", "claims", "actuary"),
		category("Internships / Volunteering", m, "intern", "internship", "volunteer", "attachment"),
		category("Janitorial Services", b, "cleaner", "janitor", "cleaning", "housekeeper"),
		category("Law / Legal", w, "lawyer", "advocate", "legal", "paralegal", "compliance"),
		category("Logistics", m, "logistics", "warehouse", "dispatch", "fleet", "shipping"),
		category("Manufacturing", b, "manufacturing", "production", "machine operator", "factory", "quality control"),
		category("Maritime", b, "maritime", "seaman", "port", "vessel", "marine"),
		category("Media / Advertising / Branding", w, "media", "journalist", "advertising", "content creator", "branding", "communications"),
		category("Medical / Healthcare", m, "nurse", "doctor", "clinical", "medical", "healthcare", "pharmacist", "lab technician"),
		category("NGO / Non-Profit", w, "ngo", "non-profit", "humanitarian", "program officer", "monitoring and evaluation"),
		category("Oil and Gas / Energy", m, "oil", "gas", "energy", "solar", "petroleum", "renewable"),
		category("Pharmaceutical", w, "pharmaceutical", "medical representative", "pharmacy", "drug"),
		category("Procurement / Store-keeping / Supply Chain", m, "procurement", "storekeeper", "supply chain", "purchasing", "inventory"),
		category("Product Management", w, "product manager", "product owner", "product"),
		category("Project Management", w, "project manager", "project coordinator", "scrum master", "pmp"),
		category("Real Estate", w, "real estate", "property", "valuer", "estate agent"),
		category("Research", w, "research", "researcher", "scientist", "enumerator"),
		category("RFP / RFQ / EOI", w, "tender", "rfp", "rfq", "eoi", "bid"),
		category("Safety and Environment / HSE", m, "safety", "hse", "environment", "health and safety"),
		category("Sales / Marketing / Retail / Business Development", w, "sales", "marketing", "retail", "business development", "brand ambassador"),
		category("Science", w, "science", "laboratory", "chemist", "biologist", "physicist"),
		category("Security / Intelligence", b, "security", "guard", "intelligence", "cybersecurity"),
		category("Travels & Tours", m, "travel", "tour", "tourism", "ticketing"),
	}
}
