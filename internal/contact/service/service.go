package service

import (
	"context"

	"mixhouse_backend/internal/contact/repository"
	"mixhouse_backend/internal/notify"
	"mixhouse_backend/platform/apperr"
	"mixhouse_backend/platform/logger"
)

// Enqueuer pushes notification jobs onto the async queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, job notify.Job) error
}

// Service stores public enquiries and forwards them to the studio mailbox
// via the notification queue.
type Service struct {
	repo  repository.Repository
	queue Enqueuer
	log   *logger.Logger
}

// New creates a new contact service.
func New(repo repository.Repository, queue Enqueuer, log *logger.Logger) *Service {
	return &Service{repo: repo, queue: queue, log: log}
}

// SubmitEnquiry persists the enquiry and queues its email. The dispatcher
// routes it to the studio mailbox; the sender's address travels in the
// payload so staff can reply directly.
func (s *Service) SubmitEnquiry(ctx context.Context, name, email, message string) error {
	enquiry, err := s.repo.Create(ctx, name, email, message)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to store enquiry", err)
	}

	job := notify.Job{
		Type:     notify.TriggerContactEnquiry,
		Email:    enquiry.Email,
		Customer: enquiry.Name,
		Notes:    enquiry.Message,
	}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to queue enquiry", err)
	}
	s.log.QueueEvent("enquiry_queued", string(notify.TriggerContactEnquiry), enquiry.Email)
	return nil
}
