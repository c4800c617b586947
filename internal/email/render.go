package email

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/ikiguide/ikiguide/internal/ikigai"
)

const resultsTemplate = `<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h1 style="color: #2c5f2d;">Your Ikigai Career Paths</h1>
  <p>Based on your reflections, here are the career directions we identified for you.</p>
  {{range .Paths}}
  <div style="margin-bottom: 16px;">
    <h3 style="margin-bottom: 4px;">{{.Title}}</h3>
    <p style="margin-top: 0;">{{.Description}}</p>
  </div>
  {{end}}
  {{if .Summary}}
  <div style="border-top: 1px solid #ccc; padding-top: 12px;">
    <h3>Summary</h3>
    <p>{{.Summary}}</p>
  </div>
  {{end}}
  {{if .Note}}
  <p><strong>Additional Message:</strong> {{.Note}}</p>
  {{end}}
  <p style="font-size: 12px; color: #888;">Sent by Ikiguide.</p>
</body>
</html>`

var resultsTmpl = template.Must(template.New("results").Parse(resultsTemplate))

type resultsView struct {
	Paths   []ikigai.Entry
	Summary string
	Note    string
}

// RenderResults produces the HTML body for a results email from the parsed
// entries. A non-empty note is appended as an "Additional Message" block.
func RenderResults(entries []ikigai.Entry, note string) (string, error) {
	view := resultsView{Note: note}
	for _, e := range entries {
		if e.Kind == ikigai.KindSummary {
			view.Summary = e.Description
			continue
		}
		view.Paths = append(view.Paths, e)
	}

	var buf bytes.Buffer
	if err := resultsTmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("error rendering results email: %w", err)
	}
	return buf.String(), nil
}
