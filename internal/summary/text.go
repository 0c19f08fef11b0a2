package summary

import (
	"regexp"
	"strings"
)

var (
	numberedLineRegex = regexp.MustCompile(`^\s*(?:#+\s*)?\**\d{1,2}[.)]\**\s+(.+)$`)
	keyValueLineRegex = regexp.MustCompile(`^\s*(?:[-*•]\s+)?([^:]{1,40}?):\s+(\S.*)$`)
	headingLineRegex  = regexp.MustCompile(`^\s*(?:#+\s+(.+?)|\*\*([^*:]+):?\*\*|([^:]{1,60}):)\s*$`)
	bulletLineRegex   = regexp.MustCompile(`^\s*[-*•]\s+(.+)$`)
	paragraphRegex    = regexp.MustCompile(`\n\s*\n`)
)

// NumberedSections renders texts structured as "1. Title" sections.
type NumberedSections struct{}

func (NumberedSections) Format() Format {
	return FormatNumberedSections
}

func (NumberedSections) Detect(text string) bool {
	return countLines(text, numberedLineRegex) >= 2
}

func (NumberedSections) Render(text string) (Node, error) {
	var (
		nodes   []Node
		section *Node
	)

	closeSection := func() {
		if section != nil {
			nodes = append(nodes, *section)
			section = nil
		}
	}

	for _, line := range strings.Split(text, "\n") {
		if m := numberedLineRegex.FindStringSubmatch(line); m != nil {
			closeSection()

			section = &Node{Kind: KindSection}
			title, rest := splitTitle(m[1])
			section.Children = append(section.Children, Node{Kind: KindHeading, Text: title})

			if rest != "" {
				section.Children = append(section.Children, Node{Kind: KindParagraph, Text: rest})
			}

			continue
		}

		if section == nil {
			nodes = appendLine(nodes, line)
		} else {
			section.Children = appendLine(section.Children, line)
		}
	}

	closeSection()

	return document(nodes), nil
}

// SectionedKeyValue renders texts made of "Key: value" lines,
// optionally grouped below headings.
type SectionedKeyValue struct{}

func (SectionedKeyValue) Format() Format {
	return FormatSectionedKeyValue
}

func (SectionedKeyValue) Detect(text string) bool {
	return countLines(text, keyValueLineRegex) >= 2
}

func (SectionedKeyValue) Render(text string) (Node, error) {
	var (
		nodes   []Node
		section *Node
	)

	closeSection := func() {
		if section != nil {
			nodes = append(nodes, *section)
			section = nil
		}
	}

	for _, line := range strings.Split(text, "\n") {
		if m := headingLineRegex.FindStringSubmatch(line); m != nil {
			closeSection()

			section = &Node{Kind: KindSection}
			section.Children = append(section.Children, Node{Kind: KindHeading, Text: stripEmphasis(m[1] + m[2] + m[3])})

			continue
		}

		var node *Node

		if m := keyValueLineRegex.FindStringSubmatch(line); m != nil {
			node = &Node{Kind: KindField, Key: stripEmphasis(m[1]), Text: stripEmphasis(m[2])}
		}

		switch {
		case node != nil && section != nil:
			section.Children = append(section.Children, *node)
		case node != nil:
			nodes = append(nodes, *node)
		case section != nil:
			section.Children = appendLine(section.Children, line)
		default:
			nodes = appendLine(nodes, line)
		}
	}

	closeSection()

	return document(nodes), nil
}

// PlainText renders blank line separated paragraphs.
type PlainText struct{}

func (PlainText) Format() Format {
	return FormatPlainText
}

func (PlainText) Detect(string) bool {
	return true
}

func (PlainText) Render(text string) (Node, error) {
	var nodes []Node

	for _, p := range paragraphRegex.Split(text, -1) {
		if p = collapseSpace(p); p != "" {
			nodes = append(nodes, Node{Kind: KindParagraph, Text: p})
		}
	}

	return document(nodes), nil
}

// appendLine appends a bullet line as list item or any other non-blank line as paragraph.
func appendLine(nodes []Node, line string) []Node {
	line = strings.TrimSpace(line)
	if line == "" {
		return nodes
	}

	m := bulletLineRegex.FindStringSubmatch(line)
	if m == nil {
		return append(nodes, Node{Kind: KindParagraph, Text: stripEmphasis(line)})
	}

	item := Node{Kind: KindItem, Text: stripEmphasis(m[1])}

	if len(nodes) > 0 && nodes[len(nodes)-1].Kind == KindList {
		last := &nodes[len(nodes)-1]
		last.Children = append(last.Children, item)

		return nodes
	}

	return append(nodes, Node{Kind: KindList, Children: []Node{item}})
}

// splitTitle splits "Title: rest" into its parts.
func splitTitle(s string) (string, string) {
	title, rest, found := strings.Cut(s, ":")
	if !found {
		return stripEmphasis(s), ""
	}

	return stripEmphasis(title), stripEmphasis(rest)
}

func countLines(text string, re *regexp.Regexp) int {
	n := 0

	for _, line := range strings.Split(text, "\n") {
		if re.MatchString(line) {
			n++
		}
	}

	return n
}
