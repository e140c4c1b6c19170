package emails

import (
	"fmt"
	"strings"
	"text/template"
)

// Rendered is the subject and plain-text body produced for one message.
type Rendered struct {
	Subject string
	Body    string
}

// Each template's first line is the subject; the rest is the body.
var templateSources = map[string]string{
	TemplateWelcome: `Welcome to {{.Store}}
Hi {{.Name}},

Thanks for creating an account with {{.Store}}. You can browse the catalog
and track your orders from your account page.

{{.Store}}`,

	TemplateOrderConfirmation: `Your order {{.OrderID}} is confirmed
Hi {{.Name}},

We received your payment of {{.Total}} and your order {{.OrderID}} is now
being processed. We will let you know when it ships.

{{.Store}}`,

	TemplateOrderRefunded: `Your order {{.OrderID}} was refunded
Hi {{.Name}},

Your order {{.OrderID}} has been refunded. The amount of {{.Total}} should
reach your original payment method within a few business days.

{{.Store}}`,

	TemplatePasswordReset: `Reset your {{.Store}} password
Hi {{.Name}},

Your password was reset. Your temporary password is:

    {{.Password}}

Sign in with it and change it right away.

{{.Store}}`,
}

var templates = func() *template.Template {
	root := template.New("emails").Option("missingkey=error")
	for name, src := range templateSources {
		template.Must(root.New(name).Parse(src))
	}
	return root
}()

// Render produces the subject and body for a message. Unknown template
// names and missing data keys are errors, not silent blanks.
func Render(m Message) (Rendered, error) {
	t := templates.Lookup(m.Template)
	if t == nil {
		return Rendered{}, fmt.Errorf("unknown email template %q", m.Template)
	}

	var buf strings.Builder
	if err := t.Execute(&buf, m.Data); err != nil {
		return Rendered{}, fmt.Errorf("render %s: %w", m.Template, err)
	}

	subject, body, found := strings.Cut(buf.String(), "\n")
	if !found {
		return Rendered{}, fmt.Errorf("template %s has no body", m.Template)
	}
	return Rendered{
		Subject: strings.TrimSpace(subject),
		Body:    strings.TrimSpace(body) + "\n",
	}, nil
}
