package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrUnrecognizedContent = errors.New("unrecognized inference content shape")

// InferenceClient submits a stored document reference plus a structured
// instruction and returns the backend's completion.
type InferenceClient interface {
	Feedback(ctx context.Context, documentRef string, inst Instruction) (*Completion, error)
}

type Completion struct {
	Message Message `json:"message"`
}

type Message struct {
	Content Content `json:"content"`
}

type ContentPart struct {
	Text string `json:"text"`
}

type contentShape int

const (
	shapeEmpty contentShape = iota
	shapePlain
	shapeParts
	shapeUnrecognized
)

// Content is the completion payload as a tagged variant: a plain string,
// a sequence of content parts, or an unrecognized shape. Backends differ
// on which one they return, so the distinction is explicit instead of an
// untyped value.
type Content struct {
	shape contentShape
	text  string
	parts []ContentPart
}

func PlainContent(text string) Content {
	return Content{shape: shapePlain, text: text}
}

func PartsContent(parts ...ContentPart) Content {
	return Content{shape: shapeParts, parts: parts}
}

// FirstText extracts the textual payload: the string itself for plain
// content, the first part's text for part sequences. Anything else is a
// shape error rather than a fault escaping to the caller.
func (c Content) FirstText() (string, error) {
	switch c.shape {
	case shapePlain:
		return c.text, nil
	case shapeParts:
		if len(c.parts) == 0 {
			return "", fmt.Errorf("empty content parts: %w", ErrUnrecognizedContent)
		}
		return c.parts[0].Text, nil
	default:
		return "", ErrUnrecognizedContent
	}
}

func (c Content) MarshalJSON() ([]byte, error) {
	switch c.shape {
	case shapeParts:
		return json.Marshal(c.parts)
	default:
		return json.Marshal(c.text)
	}
}

func (c *Content) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*c = PlainContent(text)
		return nil
	}

	var parts []ContentPart
	if err := json.Unmarshal(data, &parts); err == nil {
		*c = PartsContent(parts...)
		return nil
	}

	*c = Content{shape: shapeUnrecognized}
	return nil
}
