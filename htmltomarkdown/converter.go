// Package htmltomarkdown renders extracted documentation blocks as Markdown.
package htmltomarkdown

import (
	"fmt"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/fwojciec/doxindex"
)

var _ doxindex.Converter = (*Converter)(nil)

// Converter turns member documentation HTML into CommonMark with tables.
type Converter struct {
	conv    *converter.Converter
	baseURL string
}

// Option configures a Converter.
type Option func(*Converter)

// WithBaseURL resolves relative links and images against the URL of the
// page the HTML was extracted from.
func WithBaseURL(pageURL string) Option {
	return func(c *Converter) {
		c.baseURL = pageURL
	}
}

func NewConverter(opts ...Option) *Converter {
	c := &Converter{
		conv: converter.NewConverter(converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert returns the Markdown for html with surrounding blank lines
// trimmed. Blank input returns EINVALID.
func (c *Converter) Convert(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", doxindex.Errorf(doxindex.EINVALID, "empty HTML input")
	}

	var opts []converter.ConvertOptionFunc
	if c.baseURL != "" {
		opts = append(opts, converter.WithDomain(c.baseURL))
	}

	md, err := c.conv.ConvertString(html, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML: %w", err)
	}
	return strings.TrimSpace(md), nil
}
