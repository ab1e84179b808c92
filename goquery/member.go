// Package goquery extracts member documentation from generated HTML pages.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/doxindex"
)

// Ensure MemberExtractor implements doxindex.Extractor at compile time.
var _ doxindex.Extractor = (*MemberExtractor)(nil)

// MemberExtractor extracts the documentation block an anchor points at.
//
// Generated pages mark each member with an empty anchor element followed by
// a title heading and a "memitem" block:
//
//	<a id="a9118"></a>
//	<h2 class="memtitle"><span class="permalink">...</span>fi()</h2>
//	<div class="memitem">...</div>
type MemberExtractor struct{}

// NewMemberExtractor creates a new MemberExtractor.
func NewMemberExtractor() *MemberExtractor {
	return &MemberExtractor{}
}

// Extract returns the documentation block identified by anchor.
// An empty anchor selects the page contents.
func (e *MemberExtractor) Extract(html, anchor string) (*doxindex.ExtractResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, doxindex.Errorf(doxindex.EINVALID, "failed to parse HTML: %v", err)
	}

	if anchor == "" {
		return pageContents(doc)
	}

	target := findAnchor(doc, anchor)
	if target.Length() == 0 {
		return nil, doxindex.Errorf(doxindex.ENOTFOUND, "anchor %q not found", anchor)
	}

	if result, ok := memberBlock(target); ok {
		return result, nil
	}
	return elementBlock(target, anchor)
}

// findAnchor returns the first element whose id or name equals anchor.
// Attribute values are compared directly so anchors need no CSS escaping.
func findAnchor(doc *goquery.Document, anchor string) *goquery.Selection {
	byID := doc.Find("[id]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.AttrOr("id", "") == anchor
	})
	if byID.Length() > 0 {
		return byID.First()
	}
	return doc.Find("a[name]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.AttrOr("name", "") == anchor
	}).First()
}

// memberBlock returns the memitem that follows target, stopping at the
// anchor of the next member.
func memberBlock(target *goquery.Selection) (*doxindex.ExtractResult, bool) {
	var title string
	var block *goquery.Selection

	target.NextAll().EachWithBreak(func(_ int, s *goquery.Selection) bool {
		switch {
		case s.Is(".memitem"):
			block = s
			return false
		case s.Is("h2.memtitle"):
			title = headingText(s)
		case s.Is("a[id], a[name]"):
			return false
		}
		return true
	})
	if block == nil {
		return nil, false
	}

	if title == "" {
		title = collapseSpace(block.Find("td.memname").First().Text())
	}

	content, err := goquery.OuterHtml(block)
	if err != nil {
		return nil, false
	}
	return &doxindex.ExtractResult{Title: title, ContentHTML: content}, true
}

// elementBlock returns the element an anchor names when no memitem follows
// it, or the enclosing element when the anchor itself is empty. Anchors
// placed directly in the page contents have no block of their own.
func elementBlock(target *goquery.Selection, anchor string) (*doxindex.ExtractResult, error) {
	block := target
	if collapseSpace(block.Text()) == "" {
		block = target.Parent()
	}
	if block.Length() == 0 || block.Is("body, div.contents") || collapseSpace(block.Text()) == "" {
		return nil, doxindex.Errorf(doxindex.ENOTFOUND, "no documentation found for anchor %q", anchor)
	}

	content, err := goquery.OuterHtml(block)
	if err != nil {
		return nil, doxindex.Errorf(doxindex.EINTERNAL, "failed to render anchor %q: %v", anchor, err)
	}
	return &doxindex.ExtractResult{Title: headingText(block), ContentHTML: content}, nil
}

// pageContents returns the main contents of a page with its title.
func pageContents(doc *goquery.Document) (*doxindex.ExtractResult, error) {
	title := collapseSpace(doc.Find(".headertitle .title").First().Text())
	if title == "" {
		title = collapseSpace(doc.Find("title").First().Text())
	}

	contents := doc.Find("div.contents").First()
	if contents.Length() == 0 {
		contents = doc.Find("body").First()
	}

	html, err := contents.Html()
	if err != nil {
		return nil, doxindex.Errorf(doxindex.EINTERNAL, "failed to render page contents: %v", err)
	}
	if strings.TrimSpace(html) == "" {
		return nil, doxindex.Errorf(doxindex.ENOTFOUND, "page has no contents")
	}
	return &doxindex.ExtractResult{Title: title, ContentHTML: html}, nil
}

// headingText returns the text of s without permalink markers.
func headingText(s *goquery.Selection) string {
	heading := s.Clone()
	heading.Find(".permalink").Remove()
	return collapseSpace(heading.Text())
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
