package config

type EmailConfig interface {
	GetEmailTransport() string
	GetEmailFrom() string
	GetEmailFromName() string
	GetEmailTestUser() string
	GetAWSRegion() string
	GetAWSStaticCredentials() (accessKeyID, secretAccessKey string)
}

type Email struct {
	Transport          string `env:"EMAIL_TRANSPORT,default=log"`
	FromEmail          string `env:"EMAILS_FROM_EMAIL,default=no-reply@localhost"`
	FromName           string `env:"EMAILS_FROM_NAME,default=From Name"`
	TestUser           string `env:"EMAIL_TEST_USER,default=test@test.com"`
	AWSRegion          string `env:"AWS_REGION,default=us-east-1"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
}

var _ EmailConfig = Email{}

// GetEmailTransport is "ses" to deliver through Amazon SES or "log" to only log messages.
func (e Email) GetEmailTransport() string {
	return e.Transport
}

func (e Email) GetEmailFrom() string {
	return e.FromEmail
}

func (e Email) GetEmailFromName() string {
	return e.FromName
}

// GetEmailTestUser is an address that never receives mail.
func (e Email) GetEmailTestUser() string {
	return e.TestUser
}

func (e Email) GetAWSRegion() string {
	return e.AWSRegion
}

func (e Email) GetAWSStaticCredentials() (string, string) {
	return e.AWSAccessKeyID, e.AWSSecretAccessKey
}
