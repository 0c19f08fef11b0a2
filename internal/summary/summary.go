package summary

import (
	"fmt"
	"log/slog"
	"strings"
)

// Format names the layout a summary text was detected to have.
type Format string

const (
	FormatHTML              Format = "html"
	FormatNumberedSections  Format = "numbered-sections"
	FormatSectionedKeyValue Format = "sectioned-key-value"
	FormatPlainText         Format = "plain-text"
)

type NodeKind string

const (
	KindDocument  NodeKind = "document"
	KindSection   NodeKind = "section"
	KindHeading   NodeKind = "heading"
	KindParagraph NodeKind = "paragraph"
	KindList      NodeKind = "list"
	KindItem      NodeKind = "item"
	KindField     NodeKind = "field"
)

// Node is an element of a render tree.
// Fields carry a Key in addition to their Text.
type Node struct {
	Kind     NodeKind `json:"kind"`
	Key      string   `json:"key,omitempty"`
	Text     string   `json:"text,omitempty"`
	Children []Node   `json:"children,omitempty"`
}

type Document struct {
	Format Format `json:"format"`
	Root   Node   `json:"root"`
}

// Formatter detects a summary layout and renders texts of that layout.
type Formatter interface {
	Format() Format
	Detect(text string) bool
	Render(text string) (Node, error)
}

// DefaultFormatters are tried in order, plain text matches anything.
var DefaultFormatters = []Formatter{
	HTMLMarkup{},
	NumberedSections{},
	SectionedKeyValue{},
	PlainText{},
}

// Render renders text using the first of the DefaultFormatters that detects it.
func Render(text string) Document {
	return RenderWith(DefaultFormatters, text)
}

// RenderWith renders text using the first formatter that detects it.
// When a formatter fails, the text is rendered as plain text.
func RenderWith(formatters []Formatter, text string) Document {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	for _, f := range formatters {
		if !f.Detect(text) {
			continue
		}

		root, err := f.Render(text)
		if err != nil {
			slog.Warn(fmt.Sprintf("failed to render %s summary, falling back to plain text: %s", f.Format(), err))
			break
		}

		return Document{Format: f.Format(), Root: root}
	}

	root, _ := PlainText{}.Render(text)

	return Document{Format: FormatPlainText, Root: root}
}

func document(children []Node) Node {
	return Node{Kind: KindDocument, Children: children}
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// stripEmphasis removes markdown bold and italic markers around s.
func stripEmphasis(s string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(s), "*_"))
}
