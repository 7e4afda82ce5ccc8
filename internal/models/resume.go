package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ResumeRecord is the durable unit of work: the submitted job context,
// the storage references produced by the pipeline, and the eventual
// structured feedback. It is persisted as a JSON string in the record
// store under `resume:<id>`.
type ResumeRecord struct {
	ID             string   `json:"id"`
	ResumePath     string   `json:"resumePath"`
	ImagePath      string   `json:"imagePath"`
	CompanyName    string   `json:"companyName"`
	JobTitle       string   `json:"jobTitle"`
	JobDescription string   `json:"jobDescription"`
	Feedback       Feedback `json:"feedback"`
}

func (r *ResumeRecord) Marshal() (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("failed to marshal resume record: %w", err)
	}
	return string(data), nil
}

func UnmarshalResumeRecord(value string) (*ResumeRecord, error) {
	var record ResumeRecord
	if err := json.Unmarshal([]byte(value), &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal resume record: %w", err)
	}
	return &record, nil
}

// Feedback holds the inference output. The exact schema is owned by the
// response-format contract, so the payload stays opaque here; the record
// only cares whether it is populated. An unset Feedback marshals as ""
// (the incomplete placeholder) and a populated one as the raw structured
// value.
type Feedback struct {
	raw json.RawMessage
}

func NewFeedback(raw json.RawMessage) (Feedback, error) {
	if !json.Valid(raw) {
		return Feedback{}, fmt.Errorf("feedback is not valid JSON")
	}
	return Feedback{raw: append(json.RawMessage(nil), raw...)}, nil
}

func (f Feedback) IsEmpty() bool {
	return len(f.raw) == 0
}

func (f Feedback) Raw() json.RawMessage {
	return f.raw
}

func (f Feedback) MarshalJSON() ([]byte, error) {
	if f.IsEmpty() {
		return []byte(`""`), nil
	}
	return f.raw, nil
}

func (f *Feedback) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte(`""`)) || bytes.Equal(trimmed, []byte("null")) {
		f.raw = nil
		return nil
	}
	f.raw = append(json.RawMessage(nil), trimmed...)
	return nil
}
