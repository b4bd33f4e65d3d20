// Package templates provides reusable email content components
package templates

import (
	"bytes"
	"html/template"
	"log"
)

// ReengagementEmailProps carries the values rendered into the
// re-engagement email body.
type ReengagementEmailProps struct {
	Name         string
	Score        int
	Trend        string
	HighlightURL string
}

var reengagementTemplate = template.Must(template.New("reengagement").Parse(`
<h1 style="font-size:22px;margin:0 0 16px">We miss you{{if .Name}}, {{.Name}}{{end}}</h1>
<p>It has been a while since your last visit. Here is what changed since
you were last here.</p>
{{if .HighlightURL}}
<p style="margin:24px 0">
  <a href="{{.HighlightURL}}"
     style="background:#0867ec;color:#ffffff;border-radius:4px;padding:12px 24px;text-decoration:none">
    See what's new
  </a>
</p>
{{end}}
<p style="color:#9a9ea6;font-size:13px">Engagement score {{.Score}}, trend {{.Trend}}.</p>`))

// GetReengagementEmailContent renders the re-engagement email body
func GetReengagementEmailContent(props ReengagementEmailProps) string {
	var buf bytes.Buffer
	if err := reengagementTemplate.Execute(&buf, props); err != nil {
		log.Printf("ERROR: failed to render re-engagement email: %v", err)
		return "<p>It has been a while since your last visit.</p>"
	}
	return buf.String()
}
