package services

import (
	"context"
	"fmt"
	"log"

	"github.com/TopengDev/ai-resume-analyzer/internal/models"
	"github.com/TopengDev/ai-resume-analyzer/internal/repositories"
)

// ResumeProjection is the read path over stored records. Submissions
// that never got their feedback are invisible here, which is how the
// two-phase write keeps half-finished work off the list.
type ResumeProjection interface {
	List(ctx context.Context) ([]models.ResumeRecord, error)
	Get(ctx context.Context, id string) (*models.ResumeRecord, error)
}

type resumeProjection struct {
	records repositories.RecordStore
}

func NewResumeProjection(records repositories.RecordStore) ResumeProjection {
	return &resumeProjection{records: records}
}

// List implements ResumeProjection. Ordering is whatever the store
// returns; an empty store yields an empty slice, not an error.
func (p *resumeProjection) List(ctx context.Context) ([]models.ResumeRecord, error) {
	items, err := p.records.List(ctx, repositories.KeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	resumes := make([]models.ResumeRecord, 0, len(items))
	for _, item := range items {
		record, err := models.UnmarshalResumeRecord(item.Value)
		if err != nil {
			log.Printf("⚠️  Skipping undecodable record %q: %v", item.Key, err)
			continue
		}
		if record.Feedback.IsEmpty() {
			continue
		}
		resumes = append(resumes, *record)
	}

	return resumes, nil
}

// Get implements ResumeProjection. Unlike List, it returns records
// whether or not feedback has landed yet.
func (p *resumeProjection) Get(ctx context.Context, id string) (*models.ResumeRecord, error) {
	value, err := p.records.Get(ctx, repositories.RecordKey(id))
	if err != nil {
		return nil, err
	}
	return models.UnmarshalResumeRecord(value)
}
