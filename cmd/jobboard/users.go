package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/findajob/jobboard/internal/models"
	"github.com/findajob/jobboard/internal/repositories"
	"github.com/findajob/jobboard/internal/services"
)

var createUserCmd = &cobra.Command{
	Use:   "create-user",
	Short: "Create a user account",
	Example: `  jobboard create-user --email hr@acme.com --role Employer --company-id 3
  jobboard create-user --email jane@example.com --name "Jane Doe"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		email, _ := flags.GetString("email")
		role, _ := flags.GetString("role")
		name, _ := flags.GetString("name")
		phone, _ := flags.GetString("phone")
		companyID, _ := flags.GetUint("company-id")
		noEmail, _ := flags.GetBool("no-email-notifications")

		in := services.NewUser{
			Email: email,
			Role:  models.Role(role),
		}
		if name = strings.TrimSpace(name); name != "" {
			in.FullName = &name
		}
		if phone = strings.TrimSpace(phone); phone != "" {
			in.Phone = &phone
		}
		if flags.Changed("company-id") {
			in.CompanyID = &companyID
		}
		if noEmail {
			enabled := false
			in.EmailNotifications = &enabled
		}

		users := services.NewUserService(rt.db, repositories.NewUserRepository(rt.db), repositories.NewCategoryRepository(rt.db), rt.log)
		user, err := users.CreateUser(cmd.Context(), in)
		if err != nil {
			return err
		}

		fmt.Println(titleStyle.Render("User Created"))
		fmt.Printf("  %s %s\n", labelStyle.Render("ID:"), valueStyle.Render(fmt.Sprint(user.ID)))
		fmt.Printf("  %s %s\n", labelStyle.Render("Email:"), valueStyle.Render(user.Email))
		fmt.Printf("  %s %s\n", labelStyle.Render("Role:"), valueStyle.Render(string(user.Role)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(createUserCmd)

	createUserCmd.Flags().String("email", "", "account email (required)")
	createUserCmd.Flags().String("role", string(models.RoleJobSeeker), "one of Admin, Job Seeker, Employer, Attachment")
	createUserCmd.Flags().String("name", "", "full name")
	createUserCmd.Flags().String("phone", "", "phone number")
	createUserCmd.Flags().Uint("company-id", 0, "company the account belongs to (employers)")
	createUserCmd.Flags().Bool("no-email-notifications", false, "opt the user out of job alert emails")
	createUserCmd.MarkFlagRequired("email")
}
