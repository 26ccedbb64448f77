package analytics

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/insighthub/insight-platform/internal/common"
)

// Service is the operation surface of the inquiry lifecycle: session
// registry, inquiry submission (fire-and-forget into the pipeline) and the
// post-completion answer stream.
type Service struct {
	repo        *Repo
	pipeline    *Pipeline
	streamDelay time.Duration
}

func NewService(repo *Repo, pipeline *Pipeline, streamDelay time.Duration) *Service {
	return &Service{repo: repo, pipeline: pipeline, streamDelay: streamDelay}
}

func (s *Service) CreateSession(ctx context.Context) (*Session, error) {
	session := &Session{
		SessionID:  uuid.NewString(),
		InquiryIDs: []string{},
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *Service) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	return s.repo.GetSessionBySessionID(ctx, sessionID)
}

// CreateInquiry validates the request, stores the record in its initial
// stage and enqueues it for background processing. The returned inquiry is
// the pre-processing snapshot; callers observe progress via polling or the
// broadcast feed.
func (s *Service) CreateInquiry(ctx context.Context, sessionID, question string) (*Inquiry, error) {
	if strings.TrimSpace(question) == "" {
		return nil, ErrInvalidInput
	}
	if _, err := s.repo.GetSessionBySessionID(ctx, sessionID); err != nil {
		return nil, err
	}

	id, err := common.NewULID()
	if err != nil {
		return nil, err
	}

	inq := &Inquiry{
		ID:        id,
		SessionID: sessionID,
		Question:  question,
		Stage:     StageCreated,
	}
	if err := s.repo.CreateInquiry(ctx, inq); err != nil {
		return nil, err
	}

	s.pipeline.Enqueue(inq.ID)
	return inq, nil
}

func (s *Service) GetInquiry(ctx context.Context, id string) (*Inquiry, error) {
	return s.repo.GetInquiry(ctx, id)
}

// StreamAnswer opens a character stream of a completed inquiry's narrative.
// It fails synchronously with ErrNotFound for unknown inquiries and
// ErrNotReady while the stage is anything but done.
func (s *Service) StreamAnswer(ctx context.Context, id string) (<-chan string, error) {
	inq, err := s.repo.GetInquiry(ctx, id)
	if err != nil {
		return nil, err
	}
	if inq.Stage != StageDone {
		return nil, ErrNotReady
	}
	return StreamText(ctx, inq.TextualAnswer, s.streamDelay), nil
}
