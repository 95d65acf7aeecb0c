package export

import (
	"bytes"
	"fmt"
	"html"

	"github.com/yuin/goldmark"
)

// HTMLExporter renders journal entries as a standalone HTML page. The
// entries are rendered to markdown first, then converted with goldmark.
type HTMLExporter struct{}

const htmlShell = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s</title>
<style>
body { max-width: 42rem; margin: 2rem auto; padding: 0 1rem; font-family: Georgia, serif; line-height: 1.6; color: #222; }
h1 { border-bottom: 2px solid #222; padding-bottom: 0.3rem; }
h2 { margin-top: 2.5rem; }
blockquote { margin: 0; padding-left: 1rem; border-left: 3px solid #ccc; color: #555; }
</style>
</head>
<body>
%s</body>
</html>
`

func (e *HTMLExporter) Export(data ExportData) (string, error) {
	md := &MarkdownExporter{}
	source, err := md.Export(data)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("export html: %w", err)
	}

	title := data.Title
	if title == "" {
		title = "Journal"
	}
	return fmt.Sprintf(htmlShell, html.EscapeString(title), buf.String()), nil
}
