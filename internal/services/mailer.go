package services

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/findajob/jobboard/internal/logger"
	"github.com/findajob/jobboard/internal/models"
)

// MailResult is the (ok, message) outcome surfaced to the user.
type MailResult struct {
	OK      bool
	Message string
}

type MailAttachment struct {
	Name string
	Path string
}

type OutgoingMail struct {
	To          string
	Subject     string
	Body        string
	Attachments []MailAttachment
}

type Mailer interface {
	Send(ctx context.Context, msg OutgoingMail) MailResult
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type smtpMailer struct {
	cfg    SMTPConfig
	logger *zap.Logger
}

// NewMailer returns an SMTP mailer. Without a host every send reports
// "mail not configured".
func NewMailer(cfg SMTPConfig, log *zap.Logger) Mailer {
	return &smtpMailer{cfg: cfg, logger: logger.OrNop(log)}
}

// Send implements Mailer.
func (m *smtpMailer) Send(ctx context.Context, out OutgoingMail) MailResult {
	if m.cfg.Host == "" {
		return MailResult{OK: false, Message: "mail not configured"}
	}

	msg, err := m.buildMessage(out)
	if err != nil {
		m.logger.Warn("failed to build mail", zap.String("to", out.To), zap.Error(err))
		return MailResult{OK: false, Message: err.Error()}
	}

	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}

	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		m.logger.Warn("failed to create mail client", zap.Error(err))
		return MailResult{OK: false, Message: fmt.Sprintf("failed to create mail client: %v", err)}
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		m.logger.Warn("failed to send mail", zap.String("to", out.To), zap.Error(err))
		return MailResult{OK: false, Message: fmt.Sprintf("failed to send mail: %v", err)}
	}

	m.logger.Info("mail sent", zap.String("to", out.To), zap.String("subject", out.Subject))
	return MailResult{OK: true, Message: "email sent"}
}

func (m *smtpMailer) buildMessage(out OutgoingMail) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return nil, fmt.Errorf("invalid sender: %w", err)
	}
	if err := msg.To(out.To); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	msg.Subject(out.Subject)
	msg.SetBodyString(mail.TypeTextPlain, out.Body)

	for _, a := range out.Attachments {
		data, err := os.ReadFile(a.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to read attachment %s: %w", a.Name, err)
		}
		if err := msg.AttachReader(a.Name, bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("failed to attach %s: %w", a.Name, err)
		}
	}
	return msg, nil
}

// ApplicationMaterialsMail builds the message that sends the applicant their
// CV and cover letter with instructions for the listing's application method.
func ApplicationMaterialsMail(user *models.User, job *models.JobListing, cv, coverLetter *models.UserDocument) OutgoingMail {
	var actionTitle, nextSteps, targetLabel string
	pageURL := job.ApplicationURL
	if pageURL == "" {
		pageURL = job.URL
	}

	switch job.ApplicationMethod {
	case models.MethodEmail:
		actionTitle = "FORWARD This Email to the Employer"
		nextSteps = fmt.Sprintf(`1. Forward this email (with all attachments) to the employer's email address: %s
2. You can add a personal message before forwarding.
3. Make sure both attachments (Cover Letter and CV) are included.`, job.EmployerEmail)
		targetLabel = "EMPLOYER EMAIL"
	case models.MethodGoogleForm:
		actionTitle = "UPLOAD These Documents to the Google Form"
		nextSteps = fmt.Sprintf(`1. Open the Google Form:
   %s
2. Fill in your details on the form.
3. When prompted, upload the documents attached to this email (Cover Letter and CV).`, job.ApplicationURL)
		targetLabel = "GOOGLE FORM LINK"
	case models.MethodWebsite:
		actionTitle = "UPLOAD These Documents to the Company Website"
		nextSteps = fmt.Sprintf(`1. Visit the application page:
   %s
2. Complete the online application.
3. Upload the documents attached to this email (Cover Letter and CV) during submission.`, pageURL)
		targetLabel = "APPLICATION URL"
	default:
		actionTitle = "Complete Your Application"
		nextSteps = fmt.Sprintf(`1. Use the attached documents (Cover Letter and CV) to complete your application.
2. Follow the instructions on the application page:
   %s`, pageURL)
		targetLabel = "APPLICATION PAGE"
	}

	name := "Applicant"
	if user.Profile != nil && user.Profile.FullName != nil && *user.Profile.FullName != "" {
		name = *user.Profile.FullName
	}
	company := job.DisplayCompany()
	if company == "" {
		company = "the company"
	}

	var attachments []MailAttachment
	var listed []string
	if coverLetter != nil {
		attachments = append(attachments, MailAttachment{Name: "Cover_Letter" + filepath.Ext(coverLetter.FileName), Path: coverLetter.FilePath})
		listed = append(listed, fmt.Sprintf("%d. Cover Letter", len(listed)+1))
	}
	if cv != nil {
		attachments = append(attachments, MailAttachment{Name: "CV" + filepath.Ext(cv.FileName), Path: cv.FilePath})
		listed = append(listed, fmt.Sprintf("%d. CV", len(listed)+1))
	}
	if len(listed) == 0 {
		listed = append(listed, "(none)")
	}

	body := fmt.Sprintf(`Hello %s,

Your application materials for "%s" at %s are ready.

*** THIS EMAIL WAS SENT TO YOU (THE APPLICANT) ***

To complete your application, follow the instructions for this listing's application method.

### INSTRUCTIONS: %s ###

%s

%s: %s

--------------------------------------------------
ATTACHMENTS INCLUDED:
%s
--------------------------------------------------

Good luck!
FindAJob.ai Team`,
		name, job.Title, company, actionTitle, nextSteps, targetLabel, job.ApplicationTarget(), strings.Join(listed, "\n"))

	return OutgoingMail{
		To:          user.Email,
		Subject:     fmt.Sprintf("Application Materials for %s - Submission Required", job.Title),
		Body:        body,
		Attachments: attachments,
	}
}

// JobMatchMail announces a new listing in one of the user's preferred categories.
func JobMatchMail(user *models.User, job *models.JobListing, categoryName, siteURL string) OutgoingMail {
	body := fmt.Sprintf(`Hello %s,

A new job matching your preferred category "%s" has been posted:

%s at %s
Location: %s

View the listing: %s/jobs/%d

You can change your notification preferences at %s/profile.

FindAJob.ai Team`,
		user.DisplayName(), categoryName, job.Title, job.DisplayCompany(), job.Location, siteURL, job.ID, siteURL)

	return OutgoingMail{
		To:      user.Email,
		Subject: fmt.Sprintf("New Job Match: %s at %s", job.Title, job.DisplayCompany()),
		Body:    body,
	}
}
