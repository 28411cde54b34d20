package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	eventqueue "github.com/slamweb/slam/internal/adapters/mq/queue"
	workerpool "github.com/slamweb/slam/internal/adapters/mq/worker"
	"github.com/slamweb/slam/internal/adapters/remote/sportapi"
	"github.com/slamweb/slam/internal/domain/dedupe"
	"github.com/slamweb/slam/internal/domain/model"
	"github.com/slamweb/slam/internal/domain/recognition"
	"github.com/slamweb/slam/internal/domain/types"
	"github.com/slamweb/slam/internal/i18n"
	"github.com/slamweb/slam/pkg/logger"
	"github.com/slamweb/slam/pkg/metrics"
)

// SubmitRecognition queues images for recognition and returns the pending
// job. Submitting the same images while an earlier job for them is pending
// or running returns that job with Duplicate set.
func (s *Service) SubmitRecognition(ctx context.Context, images []recognition.Image, lang i18n.Lang) (types.Job, error) {
	if err := s.checkStarted(); err != nil {
		return types.Job{}, err
	}
	if err := s.guard.Check(images); err != nil {
		return types.Job{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	parts := make([][]byte, 0, len(images))
	for _, img := range images {
		parts = append(parts, img.Data)
	}
	fp := dedupe.Fingerprint(parts...)
	id := uuid.NewString()

	owner, dup := s.deduper.Claim(ctx, fp, id)
	if dup {
		st, err := s.jobs.Get(ctx, owner)
		if err == nil && !st.Status.Terminal() {
			metrics.RecordRecognitionDuplicate()
			s.logger.Debug(ctx, "duplicate recognition upload",
				logger.String("job_id", owner),
				logger.String("status", string(st.Status)),
			)
			v := jobView(st)
			v.Duplicate = true
			return v, nil
		}
		// The owning job finished or was forgotten; take the fingerprint over.
		s.deduper.Release(ctx, fp)
		if owner, dup = s.deduper.Claim(ctx, fp, id); dup {
			return types.Job{}, fmt.Errorf("%w: upload claimed by %s", ErrBackpressure, owner)
		}
	}

	st, err := s.jobs.Put(ctx, id)
	if err != nil {
		s.deduper.Release(ctx, fp)
		return types.Job{}, fmt.Errorf("register recognition job: %w", err)
	}

	job := model.RecognitionJob{
		ID:          id,
		Fingerprint: fp,
		Images:      images,
		Lang:        string(lang),
		SubmittedAt: s.now(),
	}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		s.deduper.Release(ctx, fp)
		_ = s.jobs.SetError(ctx, id, "", err.Error())
		metrics.RecordRecognitionResult("rejected")
		if errors.Is(err, eventqueue.ErrFull) || errors.Is(err, eventqueue.ErrClosed) {
			return types.Job{}, fmt.Errorf("%w: %w", ErrBackpressure, err)
		}
		return types.Job{}, err
	}
	metrics.RecordRecognitionEnqueued()

	s.logger.Info(ctx, "recognition job queued",
		logger.String("job_id", id),
		logger.Int("images", len(images)),
	)
	return jobView(st), nil
}

// GetJob returns the current state of a recognition job.
func (s *Service) GetJob(ctx context.Context, id string) (types.Job, error) {
	if err := s.checkStarted(); err != nil {
		return types.Job{}, err
	}
	st, err := s.jobs.Get(ctx, id)
	if err != nil {
		return types.Job{}, err
	}
	return jobView(st), nil
}

// handleRecognition runs on a worker. It never takes s.mu: Stop holds it
// while waiting for the workers to drain.
func (s *Service) handleRecognition(ctx context.Context, j workerpool.Job) error {
	lang := s.Lang(j.Lang)
	if err := s.jobs.SetRunning(ctx, j.ID); err != nil {
		s.deduper.Release(ctx, j.Fingerprint)
		return fmt.Errorf("start job %s: %w", j.ID, err)
	}

	res, err := s.guard.Recognize(ctx, j.Images)
	if err != nil {
		s.failJob(ctx, j, lang, res.RequestID, err)
		return err
	}

	d, err := s.drafts.Create(ctx, &model.Draft{Origin: model.OriginRecognition, Sport: res.Sport})
	if err != nil {
		s.failJob(ctx, j, lang, res.RequestID, err)
		return err
	}
	// Released before the job reads as done, so a poller that saw done can
	// upload the same images again.
	s.deduper.Release(ctx, j.Fingerprint)
	if err := s.jobs.SetResult(ctx, j.ID, d.ID, res.RequestID); err != nil {
		return fmt.Errorf("finish job %s: %w", j.ID, err)
	}
	metrics.RecordRecognitionResult(string(model.JobDone))
	s.logger.Info(ctx, "recognition job done",
		logger.String("job_id", j.ID),
		logger.String("draft_id", d.ID),
		logger.String("request_id", res.RequestID),
	)
	return nil
}

// failJob records a failed job and frees its fingerprint so the user can retry.
func (s *Service) failJob(ctx context.Context, j workerpool.Job, lang i18n.Lang, requestID string, err error) {
	msg := recognitionMessage(lang, err)
	if requestID == "" {
		var re *sportapi.RemoteError
		if errors.As(err, &re) {
			requestID = re.RequestID
		}
	}
	s.deduper.Release(ctx, j.Fingerprint)
	s.notifier.Emit(msg)
	if serr := s.jobs.SetError(ctx, j.ID, requestID, msg); serr != nil {
		s.logger.Warn(ctx, "failed to record job error", logger.String("job_id", j.ID), logger.Error(serr))
	}
	metrics.RecordRecognitionResult(string(model.JobFailed))
	s.logger.Warn(ctx, "recognition job failed",
		logger.String("job_id", j.ID),
		logger.String("request_id", requestID),
		logger.Error(err),
	)
}

func recognitionMessage(lang i18n.Lang, err error) string {
	switch {
	case errors.Is(err, recognition.ErrEmptyResult),
		errors.Is(err, recognition.ErrNoImages),
		errors.Is(err, recognition.ErrNotImage),
		errors.Is(err, recognition.ErrTooManyImages),
		errors.Is(err, recognition.ErrImageTooLarge):
		return i18n.Label(lang, "errors.recognizeFailed")
	}
	if msg := sportapi.UserMessage(lang, err); msg != "" {
		return msg
	}
	return i18n.Label(lang, "errors.recognizeFailed")
}

func jobView(st model.JobState) types.Job {
	return types.Job{
		ID:        st.ID,
		Status:    string(st.Status),
		DraftID:   st.DraftID,
		RequestID: st.RequestID,
		Error:     st.Error,
		CreatedAt: st.CreatedAt,
		UpdatedAt: st.UpdatedAt,
	}
}
