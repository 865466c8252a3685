package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/findajob/jobboard/internal/models"
	"github.com/findajob/jobboard/internal/repositories"
	"github.com/findajob/jobboard/internal/services"
)

var rowStyle = lipgloss.NewStyle().PaddingLeft(2)

var statsCmd = &cobra.Command{
	Use:   "stats <job-id>",
	Short: "Show applicant statistics and the top ranked applicants of a listing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid job id %q", args[0])
		}
		top, _ := cmd.Flags().GetInt("top")
		sortKey, _ := cmd.Flags().GetString("sort")

		job, err := repositories.NewListingRepository(rt.db).FindByID(uint(id))
		if err != nil {
			return err
		}
		apps, err := repositories.NewApplicationRepository(rt.db).ListByJob(job.ID)
		if err != nil {
			return err
		}

		stats := services.ComputeStats(apps)
		services.SortApplications(apps, sortKey)

		fmt.Println(titleStyle.Render(fmt.Sprintf("%s at %s", job.Title, job.DisplayCompany())))
		fmt.Printf("%s\n", labelStyle.Render("Overview"))
		fmt.Printf("  Total Applications: %d\n", stats.Total)
		fmt.Printf("  Average CV Score: %s\n", formatAverage(stats.AverageCVScore))
		fmt.Printf("  Average Cover Letter Score: %s\n", formatAverage(stats.AverageCoverLetterScore))

		if stats.Total == 0 {
			fmt.Println(warnStyle.Render("\nNo applications yet."))
			return nil
		}

		fmt.Printf("\n%s\n", labelStyle.Render("Status Breakdown"))
		for _, s := range stats.ByStatus {
			fmt.Printf("  %-14s %3d (%.1f%%)\n", s.Status, s.Count, s.Percentage)
		}

		if top > len(apps) || top <= 0 {
			top = len(apps)
		}
		fmt.Printf("\n%s\n", labelStyle.Render(fmt.Sprintf("Top %d Applicants", top)))
		for i, app := range apps[:top] {
			fmt.Println(rowStyle.Render(fmt.Sprintf("%d. %s  CV %s  Letter %s  %s",
				i+1, applicantLabel(&app), formatScore(app.CVScore()), formatScore(app.CoverLetterScore()), valueStyle.Render(string(app.Status)))))
		}
		return nil
	},
}

func applicantLabel(app *models.Application) string {
	if name := app.User.DisplayName(); name != "" {
		return name
	}
	return fmt.Sprintf("user #%d", app.UserID)
}

func formatScore(score *int) string {
	if score == nil {
		return "-"
	}
	return strconv.Itoa(*score)
}

func formatAverage(avg *float64) string {
	if avg == nil {
		return "-"
	}
	return strconv.FormatFloat(*avg, 'f', 2, 64)
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().Int("top", 10, "number of ranked applicants to list")
	statsCmd.Flags().String("sort", services.SortByCVScore, "cv_score, cover_letter_score, newest or oldest")
}
