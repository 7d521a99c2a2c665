package notifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	config "github.com/Keoroanthony/farmmarket/configs"
	"github.com/Keoroanthony/farmmarket/internal/models"
)

// SESAPI is the subset of the SES client used here.
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type EmailNotifier struct {
	client SESAPI
	sender string
}

// NewEmailNotifier builds an SES client from cfg. Static credentials are
// used when set, otherwise the default AWS credential chain applies.
func NewEmailNotifier(ctx context.Context, cfg config.EmailConfig) (*EmailNotifier, error) {
	if cfg.SenderEmail == "" {
		return nil, fmt.Errorf("sender email address is not configured")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.AWSRegion)}
	if cfg.AWSAccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config: %w", err)
	}
	return NewEmailNotifierWithClient(ses.NewFromConfig(awsCfg), cfg.SenderEmail), nil
}

func NewEmailNotifierWithClient(client SESAPI, sender string) *EmailNotifier {
	return &EmailNotifier{client: client, sender: sender}
}

func (e *EmailNotifier) Name() string { return "email" }

func (e *EmailNotifier) Notify(ctx context.Context, user models.User, order models.Order) error {
	if user.Email == "" {
		return ErrNoRecipient
	}

	subject := fmt.Sprintf("Order #%d Confirmation - Thank You for Your Purchase!", order.ID)
	total := order.TotalAmount.StringFixed(2)

	var rows strings.Builder
	for _, item := range order.Items {
		fmt.Fprintf(&rows, "<li>Product %d: %d x KES %s</li>", item.ProductID, item.Quantity, item.Price.StringFixed(2))
	}

	bodyHTML := fmt.Sprintf(`
        <html>
        <body>
            <p>Dear %s,</p>
            <p>Thank you for your order! Your order #%d has been successfully placed.</p>
            <p><strong>Order Details:</strong></p>
            <ul>%s</ul>
            <p>Total Amount: KES %s</p>
            <p>Shipping to: %s</p>
            <p>Best regards,</p>
            <p>Your Farm Market Team</p>
        </body>
        </html>`, user.Name, order.ID, rows.String(), total, order.ShippingAddress)

	bodyText := fmt.Sprintf(
		"Dear %s,\n\nThank you for your order! Your order #%d has been successfully placed.\n\n"+
			"Total Amount: KES %s\nShipping to: %s\n\nBest regards,\nYour Farm Market Team",
		user.Name, order.ID, total, order.ShippingAddress)

	input := &ses.SendEmailInput{
		Source: aws.String(e.sender),
		Destination: &types.Destination{
			ToAddresses: []string{user.Email},
		},
		Message: &types.Message{
			Subject: &types.Content{Charset: aws.String("UTF-8"), Data: aws.String(subject)},
			Body: &types.Body{
				Html: &types.Content{Charset: aws.String("UTF-8"), Data: aws.String(bodyHTML)},
				Text: &types.Content{Charset: aws.String("UTF-8"), Data: aws.String(bodyText)},
			},
		},
	}

	if _, err := e.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
