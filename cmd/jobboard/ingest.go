package main

import (
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/findajob/jobboard/internal/models"
	"github.com/findajob/jobboard/internal/repositories"
	"github.com/findajob/jobboard/internal/services"
)

const (
	promptNewCompany = "Create a new company"
	promptCommit     = "Commit listing"
	promptDiscard    = "Discard"
)

var ingestListingCmd = &cobra.Command{
	Use:   "ingest-listing <file>",
	Short: "Extract a job listing from a PDF, DOCX or TXT posting",
	Long: `ingest-listing sends the posting text to the AI extraction model and
shows the structured preview. Nothing is written until the preview is
confirmed, so a discarded preview leaves the database untouched.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		email, _ := cmd.Flags().GetString("as")
		yes, _ := cmd.Flags().GetBool("yes")

		text, err := services.NewTextExtractor().ExtractText(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}

		userRepo := repositories.NewUserRepository(rt.db)
		actor, err := userRepo.FindByEmail(email)
		if err != nil {
			return fmt.Errorf("failed to load operator %q: %w", email, err)
		}

		oracle, err := newOracle(ctx)
		if err != nil {
			return err
		}
		extraction := services.NewExtractionService(
			rt.db,
			repositories.NewListingRepository(rt.db),
			repositories.NewCategoryRepository(rt.db),
			repositories.NewCompanyRepository(rt.db),
			oracle,
			services.NewPreviewStore(rt.cfg.Preview.TTL),
			nil,
			rt.log,
		)

		fmt.Println(warnStyle.Render("Extracting listing, this can take a while..."))
		preview, err := extraction.Preview(ctx, actor, text)
		if err != nil {
			return err
		}
		printPreview(preview)

		req := models.ConfirmExtractionRequest{CompanyChoice: services.CompanyChoiceNew}
		if !yes {
			if req, err = chooseCompany(preview); err != nil {
				return err
			}
			confirm := promptui.Select{
				Label: "Proceed?",
				Items: []string{promptCommit, promptDiscard},
			}
			if _, choice, err := confirm.Run(); err != nil {
				return err
			} else if choice == promptDiscard {
				fmt.Println(warnStyle.Render("Preview discarded, nothing was saved"))
				return nil
			}
		}

		listing, err := extraction.Confirm(ctx, actor, preview.Token, req)
		if err != nil {
			return err
		}

		fmt.Println(titleStyle.Render("Listing Created"))
		fmt.Printf("  %s %s\n", labelStyle.Render("ID:"), valueStyle.Render(fmt.Sprint(listing.ID)))
		fmt.Printf("  %s %s\n", labelStyle.Render("Company:"), valueStyle.Render(listing.DisplayCompany()))
		fmt.Printf("  %s %s\n", labelStyle.Render("Category:"), valueStyle.Render(listing.Category.Name))
		fmt.Println(valueStyle.Render("Subscribers are notified once the API worker picks the listing up."))
		return nil
	},
}

func chooseCompany(preview *models.ListingPreview) (models.ConfirmExtractionRequest, error) {
	req := models.ConfirmExtractionRequest{CompanyChoice: services.CompanyChoiceNew}
	if len(preview.SimilarCompanies) == 0 {
		return req, nil
	}

	items := make([]string, 0, len(preview.SimilarCompanies)+1)
	for _, c := range preview.SimilarCompanies {
		items = append(items, fmt.Sprintf("%d %s (%.0f%% similar)", c.ID, c.Name, c.Similarity*100))
	}
	items = append(items, promptNewCompany)

	companyPrompt := promptui.Select{
		Label: fmt.Sprintf("Companies similar to %q already exist", preview.Payload.Company.Name),
		Items: items,
	}
	idx, _, err := companyPrompt.Run()
	if err != nil {
		return req, err
	}
	if idx < len(preview.SimilarCompanies) {
		id := preview.SimilarCompanies[idx].ID
		req.CompanyChoice = services.CompanyChoiceExisting
		req.CompanyID = &id
	}
	return req, nil
}

func printPreview(p *models.ListingPreview) {
	l := p.Payload.JobListing
	fmt.Println(titleStyle.Render("Extracted Listing"))
	field := func(label, value string) {
		if strings.TrimSpace(value) == "" {
			value = "-"
		}
		fmt.Printf("  %s %s\n", labelStyle.Render(label), valueStyle.Render(value))
	}
	field("Title:", l.Title)
	field("Company:", p.Payload.Company.Name)
	field("Category:", l.Category)
	field("Location:", l.Location)
	field("Terms:", l.Terms)
	field("Education:", l.EducationLevelRequired)
	field("Apply via:", l.ApplicationMethod)
	field("Expires:", l.ExpiryDate)

	if len(p.Payload.Requirements) > 0 {
		fmt.Printf("\n%s\n", labelStyle.Render("Requirements"))
		for _, r := range p.Payload.Requirements {
			marker := "optional"
			if r.Mandatory() {
				marker = "required"
			}
			fmt.Printf("  - %s (%s)\n", r.Description, marker)
		}
	}
	fmt.Println()
}

func init() {
	rootCmd.AddCommand(ingestListingCmd)

	ingestListingCmd.Flags().String("as", "", "email of the admin or employer the listing is created for (required)")
	ingestListingCmd.Flags().BoolP("yes", "y", false, "commit without prompting, creating a new company")
	ingestListingCmd.MarkFlagRequired("as")
}
