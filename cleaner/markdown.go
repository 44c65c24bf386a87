// Package cleaner renders fetched markup as markdown text.
package cleaner

import (
	"fmt"
	"net/url"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
)

// Renderer converts HTML to markdown. It is safe for concurrent use.
type Renderer struct {
	conv *converter.Converter
}

// NewRenderer builds a Renderer:
//
//   - base plugin: drops script, style, iframe, noscript, head and comments;
//   - commonmark plugin: headings, lists, links, emphasis;
//   - table plugin: schedule tables stay tabular, with minimal padding.
func NewRenderer() *Renderer {
	return &Renderer{
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(
					table.WithCellPaddingBehavior(table.CellPaddingBehaviorMinimal),
				),
			),
		),
	}
}

// Markdown converts htmlContent. Relative links and images are resolved
// against the scheme and host of pageURL.
func (r *Renderer) Markdown(htmlContent, pageURL string) (string, error) {
	md, err := r.conv.ConvertString(htmlContent, converter.WithDomain(origin(pageURL)))
	if err != nil {
		return "", fmt.Errorf("cleaner: markdown: %w", err)
	}
	return md, nil
}

func origin(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
