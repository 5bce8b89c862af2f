package service

import (
	"context"
	"fmt"
	"html"
	"log"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"schooltimetable/internal/models"
	"schooltimetable/internal/validation"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format: %q", email)
	}
	return nil
}

// emailSender is the part of the SES client the service uses
type emailSender interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailService sends validation reports via Amazon SES
type EmailService struct {
	client    emailSender
	fromEmail string
	fromName  string
	enabled   bool
	debug     bool
}

// NewEmailService creates a new email service. An empty fromEmail gives a
// disabled service that skips every send.
func NewEmailService(ctx context.Context, awsRegion, fromEmail, fromName string, debug bool) (*EmailService, error) {
	if fromEmail == "" {
		log.Println("Email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false, debug: debug}, nil
	}

	if debug {
		log.Printf("[DEBUG] Initializing email service with AWS SES")
		log.Printf("[DEBUG] AWS Region: %s", awsRegion)
		log.Printf("[DEBUG] From: %s <%s>", fromName, fromEmail)
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Printf("Email service enabled: from=%s, region=%s", fromEmail, awsRegion)
	return newEmailServiceWithClient(sesv2.NewFromConfig(cfg), fromEmail, fromName, debug), nil
}

func newEmailServiceWithClient(client emailSender, fromEmail, fromName string, debug bool) *EmailService {
	return &EmailService{
		client:    client,
		fromEmail: fromEmail,
		fromName:  fromName,
		enabled:   true,
		debug:     debug,
	}
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendValidationReport mails the result of a validation run
func (s *EmailService) SendValidationReport(ctx context.Context, toEmail, schoolName string, results validation.Results, summary string) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): validation report to %s", toEmail)
		return nil
	}
	if err := ValidateEmail(toEmail); err != nil {
		return err
	}

	subject := fmt.Sprintf("Timetable check for %s: %s", schoolName, summary)
	htmlBody := renderReportHTML(schoolName, results, summary)
	textBody := renderReportText(schoolName, results, summary)

	if s.debug {
		log.Printf("[DEBUG] Sending validation report: subject=%s, to=%s", subject, toEmail)
		log.Printf("[DEBUG] HTML body length: %d bytes", len(htmlBody))
	}

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

type reportSection struct {
	title  string
	issues []models.ValidationIssue
}

func reportSections(results validation.Results) []reportSection {
	return []reportSection{
		{title: "Errors", issues: results.Errors},
		{title: "Warnings", issues: results.Warnings},
		{title: "Info", issues: results.Info},
	}
}

func renderReportText(schoolName string, results validation.Results, summary string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Timetable validation for %s\n\n%s\n", schoolName, summary)

	for _, section := range reportSections(results) {
		if len(section.issues) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s (%d)\n", section.title, len(section.issues))
		for _, issue := range section.issues {
			fmt.Fprintf(&b, "- [%s] %s\n", issue.RuleName, issue.Message)
		}
	}

	b.WriteString("\n---\nThis is an automated email. Please do not reply.\n")
	return b.String()
}

func renderReportHTML(schoolName string, results validation.Results, summary string) string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.rule { color: #666; font-size: 12px; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
`)
	fmt.Fprintf(&b, "\t\t<h1>Timetable validation for %s</h1>\n", html.EscapeString(schoolName))
	fmt.Fprintf(&b, "\t\t<p><strong>%s</strong></p>\n", html.EscapeString(summary))

	for _, section := range reportSections(results) {
		if len(section.issues) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\t\t<h2>%s (%d)</h2>\n\t\t<ul>\n", section.title, len(section.issues))
		for _, issue := range section.issues {
			fmt.Fprintf(&b, "\t\t\t<li>%s <span class=\"rule\">%s</span></li>\n",
				html.EscapeString(issue.Message), html.EscapeString(issue.RuleName))
		}
		b.WriteString("\t\t</ul>\n")
	}

	b.WriteString(`		<div class="footer">
			<p>This is an automated email. Please do not reply.</p>
		</div>
	</div>
</body>
</html>
`)
	return b.String()
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		if s.debug {
			log.Printf("[DEBUG] SES SendEmail failed: %v", err)
		}
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	if s.debug && result.MessageId != nil {
		log.Printf("[DEBUG] Message ID: %s", *result.MessageId)
	}

	log.Printf("Email sent successfully: to=%s, subject=%s", toEmail, subject)
	return nil
}
