package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/cld-events/bidsim-api/internal/metrics"
	"github.com/cld-events/bidsim-api/internal/middleware"
	"github.com/cld-events/bidsim-api/internal/models"
	"github.com/cld-events/bidsim-api/internal/store"
	apperrors "github.com/cld-events/bidsim-api/pkg/errors"
)

// listLimit caps GET /submissions; there is no pagination beyond it.
const listLimit = 100

// SubmissionHandler accepts scored payloads and serves recent submissions.
type SubmissionHandler struct {
	submissions store.SubmissionStore
	logger      *logrus.Logger
}

// NewSubmissionHandler creates a new submission handler
func NewSubmissionHandler(submissions store.SubmissionStore, logger *logrus.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		submissions: submissions,
		logger:      logger,
	}
}

// Submit handles POST /submit. The payload is stored as sent — the client is
// trusted for shape — but created_at and user_id are always server-stamped.
// Anonymous submissions are permitted and stored without an owner.
func (h *SubmissionHandler) Submit(c *fiber.Ctx) error {
	payload := map[string]interface{}{}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			return respondError(c, apperrors.New(apperrors.CodeValidation, "Invalid request body", err))
		}
	}

	// Never trust client-supplied ownership or timestamps.
	delete(payload, "user_id")
	payload["created_at"] = time.Now().UnixMilli()

	owner := "anonymous"
	if identity := middleware.Identity(c); identity != nil {
		payload["user_id"] = identity.SubjectID
		owner = "authenticated"
	}

	start := time.Now()
	id, err := h.submissions.Put(c.Context(), payload)
	if err != nil {
		metrics.RecordStoreOperation("put_submission", "failure", time.Since(start))
		return respondError(c, apperrors.New(apperrors.CodeStore, "Failed to store submission", err))
	}
	metrics.RecordStoreOperation("put_submission", "success", time.Since(start))
	metrics.RecordSubmission(owner)

	h.logger.WithFields(logrus.Fields{
		"submission_id": id,
		"owner":         owner,
	}).Info("Submission stored")

	return c.JSON(models.SubmitResponse{OK: true, ID: id})
}

// List handles GET /submissions: the 100 most recent submissions, newest
// first. With ?user=me and a verified caller, only that caller's own.
// The filter is silently ignored for anonymous callers.
func (h *SubmissionHandler) List(c *fiber.Ctx) error {
	owner := ""
	if c.Query("user") == "me" {
		if identity := middleware.Identity(c); identity != nil {
			owner = identity.SubjectID
		}
	}

	start := time.Now()
	items, err := h.submissions.ListRecent(c.Context(), owner, listLimit)
	if err != nil {
		metrics.RecordStoreOperation("list_submissions", "failure", time.Since(start))
		return respondError(c, apperrors.New(apperrors.CodeStore, "Failed to list submissions", err))
	}
	metrics.RecordStoreOperation("list_submissions", "success", time.Since(start))

	return c.JSON(models.SubmissionsResponse{OK: true, Submissions: items})
}
