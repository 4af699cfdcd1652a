package impl

import (
	"bytes"
	"html/template"
	"strings"

	"accounts/internal/domain/entity"
	"accounts/internal/domain/service"

	"github.com/pkg/errors"
)

var codeEmailTemplate = template.Must(template.New("code_email").Parse(
	`<h1>Hello {{.FirstName}} {{.LastName}}</h1>
{{- if .Reset}}
<p><b>Use the following link and code to update your password.</b></p>
{{- end}}
<p><a href="{{.Link}}">{{.Link}}</a></p>
<p><b>Code:</b> {{.Code}}</p>
<p><b>Thanks for signing up to user app.</b></p>
`))

type codeEmailData struct {
	FirstName string
	LastName  string
	Link      string
	Code      string
	Reset     bool
}

// codeLink appends the code as the last path segment of the client page.
func codeLink(frontBaseURL, code string) string {
	return strings.TrimRight(frontBaseURL, "/") + "/" + code
}

// composeCodeEmail renders the verification or reset email. Subject and request ID are left to the caller.
func composeCodeEmail(user *entity.User, code, frontBaseURL string, purpose entity.CodePurpose) (*service.MailMessage, error) {
	link := codeLink(frontBaseURL, code)

	var body bytes.Buffer
	if err := codeEmailTemplate.Execute(&body, codeEmailData{
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Link:      link,
		Code:      code,
		Reset:     purpose == entity.CodePurposeResetPassword,
	}); err != nil {
		return nil, errors.Wrap(err, "failed to render email")
	}

	return &service.MailMessage{
		To:      user.Email,
		HTML:    body.String(),
		Link:    link,
		Purpose: purpose.String(),
	}, nil
}
