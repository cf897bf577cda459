package report

import (
	"bytes"
	"embed"
	"io/fs"
	"net/http"

	"github.com/gofiber/template/html/v3"
)

//go:embed templates/*.html
var templateFS embed.FS

type htmlRenderer struct {
	engine *html.Engine
}

func newHTMLRenderer() (*htmlRenderer, error) {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, err
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	if err := engine.Load(); err != nil {
		return nil, err
	}
	return &htmlRenderer{engine: engine}, nil
}

func (h *htmlRenderer) render(v view) ([]byte, error) {
	var buf bytes.Buffer
	if err := h.engine.Render(&buf, "report", v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
