package mailer

// EmailJob is the JSON payload put on the RabbitMQ queue for sending
// email. Raw Text/HTML bodies and named templates are both supported;
// the worker renders Template with Data when one is set.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // e.g. "verify_email"
	Data     map[string]any `json:"data,omitempty"`
}
