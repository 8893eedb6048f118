package sender

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/shandysiswandi/gotp/internal/notification/entity"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"github.com/shandysiswandi/gotp/internal/pkg/mail"
)

const emailTemplate = `<!DOCTYPE html>
<html lang="{{.Lang}}">
<body>
<p>Hello {{.FirstName}} {{.LastName}},</p>
<p>Your verification code is <strong>{{.Code}}</strong>.</p>
<p>It expires shortly. If you did not request it, you can ignore this email.</p>
</body>
</html>`

var tplEmail = template.Must(template.New("otp_email").Option("missingkey=zero").Parse(emailTemplate))

// SMTP delivers EMAIL envelopes through a mail server. SMS envelopes are
// refused.
type SMTP struct {
	client  mail.Mail
	subject string
	ins     instrument.Instrumentation
}

func NewSMTP(client mail.Mail, subject string, ins instrument.Instrumentation) *SMTP {
	if subject == "" {
		subject = "Your verification code"
	}
	return &SMTP{client: client, subject: subject, ins: ins}
}

func (*SMTP) Name() string {
	return NameSMTP
}

func (s *SMTP) Send(ctx context.Context, env entity.Envelope) (err error) {
	ctx, span := startSpan(ctx, s.ins, env)
	defer func() { endSpan(span, err) }()

	if env.Channel != entity.ChannelEmail {
		return fmt.Errorf("%w: smtp cannot deliver %s", entity.ErrUnsupportedChannel, env.Channel)
	}

	lang := env.Locale
	if len(lang) >= 2 {
		lang = lang[:2]
	}

	var body bytes.Buffer
	if err := tplEmail.Execute(&body, map[string]string{
		"Lang":      lang,
		"FirstName": env.FirstName,
		"LastName":  env.LastName,
		"Code":      env.Code,
	}); err != nil {
		return fmt.Errorf("smtp: render: %w", err)
	}

	return s.client.Send(ctx, mail.Message{
		To:       []string{env.Identifier},
		Subject:  s.subject,
		TextBody: fmt.Sprintf("Your verification code is %s.", env.Code),
		HTMLBody: body.String(),
		Headers:  map[string]string{"X-Correlation-ID": env.CorrelationID},
	})
}
