package model

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type dialogueDocument struct {
	Dialogues []DialogueTurn `yaml:"dialogues"`
}

// LoadDialogues reads dialogue turns from a YAML or JSON file.
func LoadDialogues(path string) ([]DialogueTurn, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dialogues: %w", err)
	}

	turns, err := ParseDialogues(b)
	if err != nil {
		return nil, fmt.Errorf("read dialogues at %s: %w", path, err)
	}

	return turns, nil
}

// ParseDialogues accepts either a plain list of turns or a document with a
// top-level "dialogues" list. JSON is parsed as YAML.
func ParseDialogues(b []byte) ([]DialogueTurn, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return []DialogueTurn{}, nil
	}

	var node yaml.Node

	err := yaml.Unmarshal(b, &node)
	if err != nil {
		return nil, fmt.Errorf("parse dialogues: %w", err)
	}

	if len(node.Content) == 0 {
		return []DialogueTurn{}, nil
	}

	switch node.Content[0].Kind {
	case yaml.SequenceNode:
		turns := []DialogueTurn{}

		err = node.Content[0].Decode(&turns)
		if err != nil {
			return nil, fmt.Errorf("decode dialogue list: %w", err)
		}

		return turns, nil
	case yaml.MappingNode:
		doc := dialogueDocument{}

		err = node.Content[0].Decode(&doc)
		if err != nil {
			return nil, fmt.Errorf("decode dialogue document: %w", err)
		}

		if doc.Dialogues == nil {
			return []DialogueTurn{}, nil
		}

		return doc.Dialogues, nil
	default:
		return nil, fmt.Errorf("parse dialogues: expected a list of turns or a mapping with a dialogues key")
	}
}
