package printing

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer turns HTML templates into PDF documents through headless chrome
type Renderer struct {
	tmpl    *template.Template
	timeout time.Duration
	enabled bool
}

// NewRenderer parses the embedded templates
func NewRenderer(enabled bool, timeout time.Duration) (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse print templates: %w", err)
	}
	return &Renderer{tmpl: tmpl, timeout: timeout, enabled: enabled}, nil
}

// Enabled reports whether PDF rendering is available
func (r *Renderer) Enabled() bool {
	return r.enabled
}

// Render executes the named template and prints it to PDF
func (r *Renderer) Render(ctx context.Context, templateName string, data interface{}) ([]byte, error) {
	if !r.enabled {
		return nil, fmt.Errorf("pdf rendering is disabled")
	}
	var html bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&html, templateName, data); err != nil {
		return nil, fmt.Errorf("failed to execute template %s: %w", templateName, err)
	}
	return r.htmlToPDF(ctx, html.String())
}

func (r *Renderer) htmlToPDF(ctx context.Context, html string) ([]byte, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:], chromedp.NoSandbox)...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	runCtx, cancelRun := context.WithTimeout(browserCtx, r.timeout)
	defer cancelRun()

	var pdf []byte
	err := chromedp.Run(runCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return pdf, nil
}
