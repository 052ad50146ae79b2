package notifier

import (
	"context"
	"net/http"
	"net/mail"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	sestypes "github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const charsetUTF8 = "UTF-8"

// SendEmailAPI is the subset of the SES v2 client used to send mail.
type SendEmailAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESConfig describes the sender and the AWS account used for delivery.
type SESConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	FromEmail       string
	FromName        string
	Timeout         time.Duration
}

// SESNotifier delivers mail through Amazon SES.
type SESNotifier struct {
	api  SendEmailAPI
	from string
}

var _ Notifier = (*SESNotifier)(nil)

// NewSES builds an SES client from the default AWS credential chain, or from
// static credentials when both keys are set.
func NewSES(ctx context.Context, cfg SESConfig) (*SESNotifier, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	options := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		options = append(options, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, options...)
	if err != nil {
		return nil, errors.Wrap(err, "[notifier.NewSES] load aws config")
	}
	return NewSESWithAPI(sesv2.NewFromConfig(awsCfg), cfg.FromEmail, cfg.FromName), nil
}

func NewSESWithAPI(api SendEmailAPI, fromEmail, fromName string) *SESNotifier {
	from := fromEmail
	if fromName != "" {
		from = (&mail.Address{Name: fromName, Address: fromEmail}).String()
	}
	return &SESNotifier{api: api, from: from}
}

func (n *SESNotifier) Send(ctx context.Context, to, subject, htmlBody string) error {
	out, err := n.api.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(n.from),
		Destination:      &sestypes.Destination{ToAddresses: []string{to}},
		Content: &sestypes.EmailContent{
			Simple: &sestypes.Message{
				Subject: &sestypes.Content{Data: aws.String(subject), Charset: aws.String(charsetUTF8)},
				Body: &sestypes.Body{
					Html: &sestypes.Content{Data: aws.String(htmlBody), Charset: aws.String(charsetUTF8)},
				},
			},
		},
	})
	if err != nil {
		return errors.Wrap(err, "[SESNotifier.Send] SendEmail")
	}
	log.Info().Str("to", to).Str("message_id", aws.ToString(out.MessageId)).Msg("email sent")
	return nil
}
