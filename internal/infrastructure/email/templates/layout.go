// Package templates provides email template layout
package templates

import (
	"bytes"
	"html/template"
	"log"
)

type EmailLayoutProps struct {
	Preheader  string
	Content    string
	FooterText string
}

// Internal template data structure with safe HTML typing
type emailTemplateData struct {
	Preheader  string
	Content    template.HTML // Mark as safe HTML to prevent escaping
	FooterText string
}

// emailLayoutTemplate is the compiled template for email layout
var emailLayoutTemplate = template.Must(template.New("emailLayout").Parse(`
<!doctype html>
<html lang="en">
  <head>
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <meta http-equiv="Content-Type" content="text/html; charset=UTF-8">
    <title>Email from Pulse</title>
    <style media="all" type="text/css">
      body {
        font-family: Helvetica, sans-serif;
        -webkit-font-smoothing: antialiased;
        font-size: 16px;
        line-height: 1.3;
        margin: 0;
        padding: 0;
        background-color: #f4f5f6;
      }
      .container {
        margin: 0 auto !important;
        max-width: 600px;
        padding: 24px;
      }
      .main {
        background: #ffffff;
        border-radius: 4px;
        width: 100%;
        padding: 24px;
      }
      .footer {
        padding-top: 24px;
        text-align: center;
        color: #9a9ea6;
        font-size: 14px;
      }
    </style>
  </head>
  <body>
    <span style="display:none">{{.Preheader}}</span>
    <div class="container">
      <div class="main">{{.Content}}</div>
      <div class="footer">{{.FooterText}}</div>
    </div>
  </body>
</html>`))

// GetEmailLayout renders content into the shared email shell
func GetEmailLayout(props EmailLayoutProps) string {
	footer := props.FooterText
	if footer == "" {
		footer = "You are receiving this because activity tracking is enabled for your account."
	}

	data := emailTemplateData{
		Preheader:  props.Preheader,
		Content:    template.HTML(props.Content),
		FooterText: footer,
	}

	var buf bytes.Buffer
	if err := emailLayoutTemplate.Execute(&buf, data); err != nil {
		log.Printf("ERROR: failed to render email layout: %v", err)
		return props.Content
	}
	return buf.String()
}
