package mailer

import (
	"bytes"
	"fmt"
	htmltpl "html/template"
	texttpl "text/template"
)

type emailTemplate struct {
	Subject string
	Text    string
	HTML    string
}

var templates = map[string]emailTemplate{
	"verify_email": {
		Subject: "Verify your NexShop account",
		Text: `Hi {{.Name}},

Welcome to NexShop! Enter this code to verify your email address:

    {{.Token}}

Or open this link: {{.Link}}

If you did not create an account, you can ignore this message.`,
		HTML: `<p>Hi {{.Name}},</p>
<p>Welcome to NexShop! Enter this code to verify your email address:</p>
<p style="font-size:24px;letter-spacing:4px"><strong>{{.Token}}</strong></p>
<p>Or <a href="{{.Link}}">click here to verify</a>.</p>
<p>If you did not create an account, you can ignore this message.</p>`,
	},
	"order_placed": {
		Subject: "Your NexShop order is confirmed",
		Text: `Hi {{.Name}},

Your order {{.OrderID}} for {{.Total}} has been placed. We'll let you know when it ships.`,
		HTML: `<p>Hi {{.Name}},</p>
<p>Your order <strong>{{.OrderID}}</strong> for <strong>{{.Total}}</strong> has been placed. We'll let you know when it ships.</p>`,
	},
}

// Render fills a named template with data and returns subject, text,
// and HTML bodies.
func Render(name string, data map[string]any) (subject, text, html string, err error) {
	tpl, ok := templates[name]
	if !ok {
		return "", "", "", fmt.Errorf("unknown email template %q", name)
	}

	var tbuf bytes.Buffer
	tt, err := texttpl.New(name).Parse(tpl.Text)
	if err != nil {
		return "", "", "", err
	}
	if err := tt.Execute(&tbuf, data); err != nil {
		return "", "", "", err
	}

	var hbuf bytes.Buffer
	ht, err := htmltpl.New(name).Parse(tpl.HTML)
	if err != nil {
		return "", "", "", err
	}
	if err := ht.Execute(&hbuf, data); err != nil {
		return "", "", "", err
	}

	return tpl.Subject, tbuf.String(), hbuf.String(), nil
}
