package summary

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var htmlTagRegex = regexp.MustCompile(`(?i)</?(p|h[1-6]|ul|ol|li|dl|dt|dd|table|tr|td|th|div|section|article|strong|em|b|i|br)\b[^<>]*>`)

// HTMLMarkup renders summaries that were returned as HTML fragments.
type HTMLMarkup struct{}

func (HTMLMarkup) Format() Format {
	return FormatHTML
}

func (HTMLMarkup) Detect(text string) bool {
	return htmlTagRegex.MatchString(text)
}

func (HTMLMarkup) Render(text string) (Node, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return Node{}, fmt.Errorf("parse html summary: %w", err)
	}

	doc.Find("script, style, noscript").Remove()

	return document(htmlBlocks(doc.Find("body"))), nil
}

func htmlBlocks(parent *goquery.Selection) []Node {
	var nodes []Node

	// inline content between block elements is collected into one paragraph
	var inline []string

	flush := func() {
		if text := collapseSpace(strings.Join(inline, " ")); text != "" {
			nodes = append(nodes, Node{Kind: KindParagraph, Text: text})
		}

		inline = nil
	}

	parent.Contents().Each(func(_ int, s *goquery.Selection) {
		name := goquery.NodeName(s)

		switch name {
		case "h1", "h2", "h3", "h4", "h5", "h6":
			flush()
			if text := collapseSpace(s.Text()); text != "" {
				nodes = append(nodes, Node{Kind: KindHeading, Text: text})
			}
		case "p":
			flush()
			if text := collapseSpace(s.Text()); text != "" {
				nodes = append(nodes, Node{Kind: KindParagraph, Text: text})
			}
		case "ul", "ol":
			flush()
			if list := htmlList(s); len(list.Children) > 0 {
				nodes = append(nodes, list)
			}
		case "dl":
			flush()
			nodes = append(nodes, htmlDefinitions(s)...)
		case "table":
			flush()
			nodes = append(nodes, htmlTable(s)...)
		case "div", "section", "article", "main", "header", "footer":
			flush()
			nodes = append(nodes, htmlBlocks(s)...)
		case "br":
			flush()
		case "#comment":
		default:
			inline = append(inline, s.Text())
		}
	})

	flush()

	return nodes
}

func htmlList(s *goquery.Selection) Node {
	list := Node{Kind: KindList}

	s.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
		if text := collapseSpace(li.Text()); text != "" {
			list.Children = append(list.Children, Node{Kind: KindItem, Text: text})
		}
	})

	return list
}

func htmlDefinitions(s *goquery.Selection) []Node {
	var (
		nodes []Node
		key   string
	)

	s.Children().Each(func(_ int, c *goquery.Selection) {
		text := collapseSpace(c.Text())

		switch goquery.NodeName(c) {
		case "dt":
			key = text
		case "dd":
			nodes = append(nodes, Node{Kind: KindField, Key: key, Text: text})
		}
	})

	return nodes
}

func htmlTable(s *goquery.Selection) []Node {
	var nodes []Node

	s.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var cells []string

		tr.Find("td, th").Each(func(_ int, td *goquery.Selection) {
			cells = append(cells, collapseSpace(td.Text()))
		})

		switch len(cells) {
		case 0:
		case 1:
			nodes = append(nodes, Node{Kind: KindParagraph, Text: cells[0]})
		default:
			nodes = append(nodes, Node{Kind: KindField, Key: cells[0], Text: strings.Join(cells[1:], " ")})
		}
	})

	return nodes
}
