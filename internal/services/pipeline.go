package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/TopengDev/ai-resume-analyzer/internal/models"
	"github.com/TopengDev/ai-resume-analyzer/internal/repositories"
)

var (
	// ErrSubmissionInFlight is returned when Submit is called while a
	// prior submission has not reached a terminal state.
	ErrSubmissionInFlight = errors.New("a submission is already in flight")

	// ErrInferenceUnavailable marks a failed or empty inference result.
	// The partial record written before the inference call stays in the
	// store; it is a terminal outcome, not rolled back.
	ErrInferenceUnavailable = errors.New("inference backend returned no result")

	// ErrUsageLimited marks the quota-limited condition. The pipeline
	// resets to idle so the user can retry later.
	ErrUsageLimited = errors.New("usage limit reached")
)

// usageLimitMarker is the substring the inference backend embeds in
// quota-limited failures.
const usageLimitMarker = "usage-limited-chat"

// FeedbackParseError reports feedback text that did not parse against
// the response-format contract. Kept distinct from
// ErrInferenceUnavailable so callers can tell a backend outage from a
// contract violation.
type FeedbackParseError struct {
	Cause error
}

func (e *FeedbackParseError) Error() string {
	return fmt.Sprintf("failed to parse feedback: %v", e.Cause)
}

func (e *FeedbackParseError) Unwrap() error {
	return e.Cause
}

type PipelineState int

const (
	StateIdle PipelineState = iota
	StateUploadingSource
	StateConverting
	StateUploadingImage
	StatePreparingRecord
	StateAnalyzing
	StateComplete
	StateFailed
)

func (s PipelineState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateUploadingSource:
		return "uploading_source"
	case StateConverting:
		return "converting"
	case StateUploadingImage:
		return "uploading_image"
	case StatePreparingRecord:
		return "preparing_record"
	case StateAnalyzing:
		return "analyzing"
	case StateComplete:
		return "complete"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Status is the user-visible snapshot of the pipeline: the state, a
// single human-readable status line, and a coarse progress fraction.
type Status struct {
	State      PipelineState
	StatusText string
	Progress   float64
}

var stepStatus = map[PipelineState]Status{
	StateIdle:            {StateIdle, "", 0},
	StateUploadingSource: {StateUploadingSource, "Uploading and analyzing your resume...", 0.1},
	StateConverting:      {StateConverting, "Converting resume to image...", 0.3},
	StateUploadingImage:  {StateUploadingImage, "Uploading the image...", 0.5},
	StatePreparingRecord: {StatePreparingRecord, "Preparing data...", 0.65},
	StateAnalyzing:       {StateAnalyzing, "Analyzing your resume...", 0.85},
	StateComplete:        {StateComplete, "Analysis complete!", 1},
}

// SubmissionRequest is the pipeline's entry contract. All four fields
// are required; the document itself is only validated by the converter.
type SubmissionRequest struct {
	CompanyName    string
	JobTitle       string
	JobDescription string
	FileName       string
	Resume         []byte
}

func (r *SubmissionRequest) Validate() error {
	if strings.TrimSpace(r.CompanyName) == "" {
		return fmt.Errorf("company name is required")
	}
	if strings.TrimSpace(r.JobTitle) == "" {
		return fmt.Errorf("job title is required")
	}
	if strings.TrimSpace(r.JobDescription) == "" {
		return fmt.Errorf("job description is required")
	}
	if len(r.Resume) == 0 {
		return fmt.Errorf("resume file is required")
	}
	return nil
}

// SubmissionPipeline drives a submission through upload, conversion,
// persistence and inference. A single instance runs one submission at a
// time; re-entrant submits are rejected while one is in flight.
type SubmissionPipeline struct {
	ids          IDGenerator
	contentStore ContentStore
	converter    DocumentConverter
	records      repositories.RecordStore
	inference    InferenceClient

	inFlight atomic.Bool
	mu       sync.Mutex
	status   Status
}

func NewSubmissionPipeline(
	ids IDGenerator,
	contentStore ContentStore,
	converter DocumentConverter,
	records repositories.RecordStore,
	inference InferenceClient,
) *SubmissionPipeline {
	return &SubmissionPipeline{
		ids:          ids,
		contentStore: contentStore,
		converter:    converter,
		records:      records,
		inference:    inference,
		status:       stepStatus[StateIdle],
	}
}

// Status returns the current pipeline snapshot.
func (p *SubmissionPipeline) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *SubmissionPipeline) enter(state PipelineState) {
	p.mu.Lock()
	p.status = stepStatus[state]
	p.mu.Unlock()
}

func (p *SubmissionPipeline) setStatus(status Status) {
	p.mu.Lock()
	p.status = status
	p.mu.Unlock()
}

// fail moves the pipeline into the absorbing failed state and returns
// the error the caller should surface. cause may be nil when a step
// produced no output instead of an error.
func (p *SubmissionPipeline) fail(message string, cause error) error {
	p.mu.Lock()
	progress := p.status.Progress
	p.status = Status{State: StateFailed, StatusText: "Error: " + message, Progress: progress}
	p.mu.Unlock()

	log.Printf("❌ Submission failed: %s (%v)", message, cause)

	if cause == nil {
		return errors.New(message)
	}
	return fmt.Errorf("%s: %w", message, cause)
}

// Submit runs a submission to completion or failure and returns the
// record id on success. Only one submission runs at a time; the
// in-flight flag is cleared on every terminal transition, including the
// usage-limit reset.
func (p *SubmissionPipeline) Submit(ctx context.Context, req SubmissionRequest) (id string, err error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	if !p.inFlight.CompareAndSwap(false, true) {
		return "", ErrSubmissionInFlight
	}
	defer p.inFlight.Store(false)

	defer func() {
		if r := recover(); r != nil {
			id = ""
			err = p.fail("Unexpected failure", fmt.Errorf("panic: %v", r))
		}
	}()

	// Step 1: upload the source document.
	p.enter(StateUploadingSource)
	resumePath, uploadErr := p.contentStore.Upload(ctx, req.FileName, req.Resume)
	if uploadErr != nil || resumePath == "" {
		return "", p.fail("Failed to upload file", uploadErr)
	}

	// Step 2: render the first page.
	p.enter(StateConverting)
	artifact, convErr := p.converter.Convert(ctx, req.Resume)
	if convErr != nil || artifact == nil {
		return "", p.fail("Failed to convert resume to image", convErr)
	}
	if len(artifact.File) == 0 {
		return "", p.fail("Image file handling error", nil)
	}

	// Step 3: upload the rendered image. The source reference is kept in
	// memory only; the content store is append-only from here, so a
	// failure leaves an orphan blob rather than needing a compensating
	// delete.
	p.enter(StateUploadingImage)
	imageName := strings.TrimSuffix(req.FileName, fileExt(req.FileName)) + ".png"
	imagePath, imgErr := p.contentStore.Upload(ctx, imageName, artifact.File)
	if imgErr != nil || imagePath == "" {
		return "", p.fail("Failed to upload image", imgErr)
	}

	// Step 4: first persistence write, feedback still empty. This must
	// land before inference so the record is discoverable even if the
	// analysis never completes.
	p.enter(StatePreparingRecord)
	id = p.ids.Generate()
	record := &models.ResumeRecord{
		ID:             id,
		ResumePath:     resumePath,
		ImagePath:      imagePath,
		CompanyName:    req.CompanyName,
		JobTitle:       req.JobTitle,
		JobDescription: req.JobDescription,
	}
	value, marshalErr := record.Marshal()
	if marshalErr != nil {
		return "", p.fail("Failed to prepare data", marshalErr)
	}
	if setErr := p.records.Set(ctx, repositories.RecordKey(id), value); setErr != nil {
		return "", p.fail("Failed to prepare data", setErr)
	}

	// Step 5: inference.
	p.enter(StateAnalyzing)
	inst := PrepareInstruction(req.JobTitle, req.JobDescription)
	completion, infErr := p.inference.Feedback(ctx, resumePath, inst)
	if infErr != nil {
		if strings.Contains(infErr.Error(), usageLimitMarker) {
			p.setStatus(Status{
				State:      StateIdle,
				StatusText: "Sorry, you have reached your usage limit for today. Please try again later.",
			})
			log.Printf("⚠️  Usage limit reached: %v", infErr)
			return "", fmt.Errorf("%w: %v", ErrUsageLimited, infErr)
		}
		p.fail("Failed to analyze your resume", infErr)
		return "", fmt.Errorf("%w: %v", ErrInferenceUnavailable, infErr)
	}
	if completion == nil {
		p.fail("Failed to analyze your resume", nil)
		return "", ErrInferenceUnavailable
	}

	feedbackText, shapeErr := completion.Message.Content.FirstText()
	if shapeErr != nil {
		return "", p.fail("Failed to analyze your resume", shapeErr)
	}

	feedback, parseErr := parseFeedback(feedbackText)
	if parseErr != nil {
		p.fail("Failed to analyze your resume", parseErr)
		return "", &FeedbackParseError{Cause: parseErr}
	}

	// Step 6: attach the feedback and overwrite the same key.
	record.Feedback = feedback
	value, marshalErr = record.Marshal()
	if marshalErr != nil {
		return "", p.fail("Failed to save analysis", marshalErr)
	}
	if setErr := p.records.Set(ctx, repositories.RecordKey(id), value); setErr != nil {
		return "", p.fail("Failed to save analysis", setErr)
	}

	p.enter(StateComplete)
	log.Printf("✅ Submission %s completed", id)
	return id, nil
}

func parseFeedback(text string) (models.Feedback, error) {
	return models.NewFeedback([]byte(extractJSON(text)))
}

// extractJSON strips markdown fences and surrounding prose from model
// output that should be a bare JSON value.
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	startObj := strings.Index(text, "{")
	startArr := strings.Index(text, "[")
	endObj := strings.LastIndex(text, "}")
	endArr := strings.LastIndex(text, "]")

	if startObj != -1 && endObj != -1 && endObj > startObj {
		return text[startObj : endObj+1]
	} else if startArr != -1 && endArr != -1 && endArr > startArr {
		return text[startArr : endArr+1]
	}

	return text
}

func fileExt(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i:]
	}
	return ""
}
