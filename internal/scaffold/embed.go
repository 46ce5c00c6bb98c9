package scaffold

import (
	"bytes"
	"embed"
	"fmt"
	"path"
	"text/template"
)

// TemplateFS holds the docs and release boilerplate.
//
//go:embed templates
var TemplateFS embed.FS

// Data is the template context.
type Data struct {
	Service string
	Version string
}

// render executes the embedded template at name (relative to templates/).
func render(name string, data Data) ([]byte, error) {
	content, err := TemplateFS.ReadFile(path.Join("templates", name))
	if err != nil {
		return nil, fmt.Errorf("reading template %s: %w", name, err)
	}

	tmpl, err := template.New(name).Option("missingkey=error").Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("parsing template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
