package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"pawnshop-service/configs"
	"pawnshop-service/internal/models"
	"pawnshop-service/internal/repository"
)

// EmailSvc is an implementation of the service.EmailService interface
type EmailSvc struct {
	repos  *repository.Repository
	logger *logrus.Logger
	config *configs.Config
}

// NewEmailService creates a new EmailSvc
func NewEmailService(deps Dependencies) *EmailSvc {
	return &EmailSvc{
		repos:  deps.Repos,
		logger: deps.Logger,
		config: deps.Config,
	}
}

// SendPaymentReceipt sends a receipt email after a payment is applied
func (s *EmailSvc) SendPaymentReceipt(ctx context.Context, loan *models.Loan, payment *models.Payment) error {
	customer, err := s.repos.Customer.GetByID(ctx, loan.CustomerID)
	if err != nil {
		return fmt.Errorf("failed to get customer: %w", err)
	}

	// Skip if email is empty
	if customer.Email == "" {
		return nil
	}

	subject := fmt.Sprintf("Payment Receipt: %s RUB for Loan #%d", payment.Amount.StringFixed(2), loan.ID)

	body := fmt.Sprintf(`
	<h2>Payment Receipt</h2>
	<p>Dear %s %s,</p>

	<p>We have received your payment. Here are the details:</p>

	<table style="border-collapse: collapse; width: 100%%;">
		<tr>
			<td style="padding: 8px; border: 1px solid #ddd;"><strong>Loan ID:</strong></td>
			<td style="padding: 8px; border: 1px solid #ddd;">%d</td>
		</tr>
		<tr>
			<td style="padding: 8px; border: 1px solid #ddd;"><strong>Payment Amount:</strong></td>
			<td style="padding: 8px; border: 1px solid #ddd;">%s RUB</td>
		</tr>
		<tr>
			<td style="padding: 8px; border: 1px solid #ddd;"><strong>Payment Date:</strong></td>
			<td style="padding: 8px; border: 1px solid #ddd;">%s</td>
		</tr>
		<tr>
			<td style="padding: 8px; border: 1px solid #ddd;"><strong>Payment Method:</strong></td>
			<td style="padding: 8px; border: 1px solid #ddd;">%s</td>
		</tr>
		<tr>
			<td style="padding: 8px; border: 1px solid #ddd;"><strong>Reference:</strong></td>
			<td style="padding: 8px; border: 1px solid #ddd;">%s</td>
		</tr>
		<tr>
			<td style="padding: 8px; border: 1px solid #ddd;"><strong>Remaining Balance:</strong></td>
			<td style="padding: 8px; border: 1px solid #ddd;">%s RUB</td>
		</tr>
	</table>

	<p>%s</p>

	<p>Thank you for using our services.</p>

	<p>
	Best regards,<br>
	Pawnshop Service Team
	</p>
	`,
		customer.FirstName, customer.LastName,
		loan.ID,
		payment.Amount.StringFixed(2),
		payment.PaymentDate.Format("2006-01-02 15:04:05"),
		payment.Method,
		payment.Reference,
		loan.BalanceRemaining.StringFixed(2),
		paymentClosingLine(loan),
	)

	err = s.sendEmail(customer.Email, subject, body)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Payment receipt email sent to %s for loan %d", customer.Email, loan.ID)

	return nil
}

// SendAtRiskAlert notifies a customer that their loan is at risk of
// forfeiture after repeated missed minimum payments
func (s *EmailSvc) SendAtRiskAlert(ctx context.Context, loan *models.Loan) error {
	customer, err := s.repos.Customer.GetByID(ctx, loan.CustomerID)
	if err != nil {
		return fmt.Errorf("failed to get customer: %w", err)
	}

	if customer.Email == "" {
		return nil
	}

	item, err := s.repos.Item.GetByID(ctx, loan.ItemID)
	if err != nil {
		return fmt.Errorf("failed to get item: %w", err)
	}

	subject := fmt.Sprintf("URGENT: Loan #%d at Risk of Forfeiture", loan.ID)

	missed := 0
	minimum := "0.00"
	if loan.MinimumPayment != nil {
		missed = loan.MinimumPayment.ConsecutiveMissed
		minimum = loan.MinimumPayment.MinimumMonthlyPayment.StringFixed(2)
	}

	body := fmt.Sprintf(`
	<h2>Loan at Risk of Forfeiture</h2>
	<p>Dear %s %s,</p>

	<p style="color: red; font-weight: bold;">
		You have missed %d consecutive minimum payment(s) on your loan. If payments
		are not resumed, your pledged item may be forfeited.
	</p>

	<table style="border-collapse: collapse; width: 100%%;">
		<tr>
			<td style="padding: 8px; border: 1px solid #ddd;"><strong>Loan ID:</strong></td>
			<td style="padding: 8px; border: 1px solid #ddd;">%d</td>
		</tr>
		<tr>
			<td style="padding: 8px; border: 1px solid #ddd;"><strong>Pledged Item:</strong></td>
			<td style="padding: 8px; border: 1px solid #ddd;">%s</td>
		</tr>
		<tr>
			<td style="padding: 8px; border: 1px solid #ddd;"><strong>Minimum Monthly Payment:</strong></td>
			<td style="padding: 8px; border: 1px solid #ddd;">%s RUB</td>
		</tr>
		<tr>
			<td style="padding: 8px; border: 1px solid #ddd;"><strong>Outstanding Balance:</strong></td>
			<td style="padding: 8px; border: 1px solid #ddd;">%s RUB</td>
		</tr>
	</table>

	<p>Please visit our office or make a payment as soon as possible to keep your item.</p>

	<p>
	Best regards,<br>
	Pawnshop Service Team
	</p>
	`,
		customer.FirstName, customer.LastName,
		missed,
		loan.ID,
		item.Name,
		minimum,
		loan.BalanceRemaining.StringFixed(2),
	)

	err = s.sendEmail(customer.Email, subject, body)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("At-risk alert email sent to %s for loan %d", customer.Email, loan.ID)

	return nil
}

// SendRenewalConfirmation confirms a processed loan renewal
func (s *EmailSvc) SendRenewalConfirmation(ctx context.Context, loan *models.Loan, renewal *models.LoanRenewal) error {
	customer, err := s.repos.Customer.GetByID(ctx, loan.CustomerID)
	if err != nil {
		return fmt.Errorf("failed to get customer: %w", err)
	}

	if customer.Email == "" {
		return nil
	}

	subject := fmt.Sprintf("Loan #%d Renewed Until %s", loan.ID, renewal.NewDueDate.Format("2006-01-02"))

	body := fmt.Sprintf(`
	<h2>Loan Renewal Confirmation</h2>
	<p>Dear %s %s,</p>

	<p>Your loan has been renewed. Here are the details:</p>

	<table style="border-collapse: collapse; width: 100%%;">
		<tr>
			<td style="padding: 8px; border: 1px solid #ddd;"><strong>Loan ID:</strong></td>
			<td style="padding: 8px; border: 1px solid #ddd;">%d</td>
		</tr>
		<tr>
			<td style="padding: 8px; border: 1px solid #ddd;"><strong>Previous Due Date:</strong></td>
			<td style="padding: 8px; border: 1px solid #ddd;">%s</td>
		</tr>
		<tr>
			<td style="padding: 8px; border: 1px solid #ddd;"><strong>New Due Date:</strong></td>
			<td style="padding: 8px; border: 1px solid #ddd;">%s</td>
		</tr>
		<tr>
			<td style="padding: 8px; border: 1px solid #ddd;"><strong>Renewal Interest:</strong></td>
			<td style="padding: 8px; border: 1px solid #ddd;">%s RUB</td>
		</tr>
		<tr>
			<td style="padding: 8px; border: 1px solid #ddd;"><strong>Renewal Fee:</strong></td>
			<td style="padding: 8px; border: 1px solid #ddd;">%s RUB</td>
		</tr>
		<tr>
			<td style="padding: 8px; border: 1px solid #ddd;"><strong>New Balance:</strong></td>
			<td style="padding: 8px; border: 1px solid #ddd;">%s RUB</td>
		</tr>
	</table>

	<p>Thank you for using our services.</p>

	<p>
	Best regards,<br>
	Pawnshop Service Team
	</p>
	`,
		customer.FirstName, customer.LastName,
		loan.ID,
		renewal.PreviousDueDate.Format("2006-01-02"),
		renewal.NewDueDate.Format("2006-01-02"),
		renewal.InterestAmount.StringFixed(2),
		renewal.RenewalFee.StringFixed(2),
		loan.BalanceRemaining.StringFixed(2),
	)

	err = s.sendEmail(customer.Email, subject, body)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Renewal confirmation email sent to %s for loan %d", customer.Email, loan.ID)

	return nil
}

func paymentClosingLine(loan *models.Loan) string {
	if loan.Status == models.LoanStatusPaid {
		return "Your loan is now fully paid. You may collect your pledged item at our office."
	}
	return loan.NextPaymentDescription()
}

// sendEmail sends an email using the SMTP server
func (s *EmailSvc) sendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.config.Email.SenderEmail)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(
		s.config.Email.SMTPHost,
		s.config.Email.SMTPPort,
		s.config.Email.SMTPUser,
		s.config.Email.SMTPPassword,
	)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
