// Package submission orchestrates the new-bill form: attachment staging,
// bill assembly and hand-off to the persistence service.
package submission

import (
	"context"
	"errors"
	"sync"

	"github.com/billedhq/expense-client/internal/attachment"
	"github.com/billedhq/expense-client/internal/domain/entity"
	"github.com/billedhq/expense-client/internal/domain/workflow"
	"github.com/billedhq/expense-client/internal/form"
	"github.com/billedhq/expense-client/internal/router"
	"github.com/billedhq/expense-client/internal/session"
	"github.com/billedhq/expense-client/internal/store"
	"go.uber.org/zap"
)

var (
	// ErrUploadInFlight is returned when the form is submitted while the
	// attachment upload has not settled yet. A bill is never persisted
	// without its fileUrl/key pair.
	ErrUploadInFlight = errors.New("attachment upload still in flight")

	// ErrNoAttachment is returned when the form is submitted without an
	// accepted attachment
	ErrNoAttachment = errors.New("no accepted attachment")
)

// ValidationError carries the fixed user-facing message shown when a
// selected attachment is rejected.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Controller drives a single new-bill form session.
//
// Attachment selection starts an asynchronous upload; field editing is never
// blocked by it. A later selection supersedes the staged candidate, but a
// prior upload's eventual resolution still overwrites the staged
// fileUrl/key pair (last-resolved-wins, a documented property of the form).
// Only the most recent selection's upload may move the draft state: a
// superseded upload's outcome never fires a machine trigger.
type Controller struct {
	store     store.Store
	validator *attachment.Validator
	navigator router.Navigator
	session   session.Context
	logger    *zap.Logger

	mu         sync.Mutex
	machine    workflow.StateMachine
	staged     entity.UploadResult
	generation uint64

	uploads sync.WaitGroup
}

// NewController creates a controller for one new-bill form session.
// The session identity is read-only and is the only source of the
// bill owner's email.
func NewController(st store.Store, validator *attachment.Validator, navigator router.Navigator, sess session.Context, logger *zap.Logger) *Controller {
	return &Controller{
		store:     st,
		validator: validator,
		navigator: navigator,
		session:   sess,
		logger:    logger,
		machine:   workflow.NewDraftMachine(),
	}
}

// State returns the current draft state
func (c *Controller) State() workflow.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.State()
}

// HandleFileSelected validates the picked file and, when acceptable, stages
// it by starting its upload. On rejection the draft returns to idle and a
// ValidationError with the fixed message is returned; the caller is expected
// to reset the file input and present the message.
func (c *Controller) HandleFileSelected(ctx context.Context, candidate entity.AttachmentCandidate) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.validator.IsAcceptable(candidate) {
		if err := c.machine.Fire(ctx, workflow.TriggerRejectFile); err != nil {
			return err
		}
		c.staged = entity.UploadResult{}
		c.logger.Info("Attachment rejected",
			zap.String("file_name", candidate.FileName))
		return &ValidationError{Message: attachment.RejectionMessage}
	}

	if err := c.machine.Fire(ctx, workflow.TriggerSelectFile); err != nil {
		return err
	}
	c.generation++
	c.uploads.Add(1)
	go c.upload(ctx, candidate, c.generation)
	return nil
}

// upload performs the asynchronous attachment create call and resolves the
// staged fileUrl/key pair. gen identifies the selection that started this
// upload; only the latest selection's upload drives the draft machine.
func (c *Controller) upload(ctx context.Context, candidate entity.AttachmentCandidate, gen uint64) {
	defer c.uploads.Done()

	result, err := c.store.Bills().Create(ctx, store.CreateInput{
		FileName:    candidate.FileName,
		ContentType: candidate.ContentType,
		Content:     candidate.Content,
		Email:       c.session.Email,
		Headers:     map[string]string{"noContentType": "true"},
	})

	c.mu.Lock()
	defer c.mu.Unlock()

	current := gen == c.generation

	if err != nil {
		// Transport rejection: logged, the draft drops back to idle so the
		// user can pick the file again. A superseded upload's failure is
		// logged only; it must not disturb the newer selection's draft.
		c.logger.Error("Attachment upload failed",
			zap.String("file_name", candidate.FileName),
			zap.Error(err))
		if current {
			_ = c.machine.Fire(ctx, workflow.TriggerRejectFile)
		}
		return
	}

	// Last-resolved-wins: whichever upload settles last owns the pair
	result.FileName = candidate.FileName
	c.staged = result

	if current && c.machine.State() == workflow.StateUploading {
		_ = c.machine.Fire(ctx, workflow.TriggerResolveUpload)
	}

	c.logger.Debug("Attachment staged",
		zap.String("file_url", result.FileURL),
		zap.String("key", result.Key))
}

// WaitForUpload blocks until every started upload has settled.
// Intended for callers that need a settled draft before submitting.
func (c *Controller) WaitForUpload() {
	c.uploads.Wait()
}

// StagedUpload returns the currently staged upload result
func (c *Controller) StagedUpload() entity.UploadResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.staged
}

// HandleSubmit assembles the bill from the form fields and hands it to the
// persistence service, then navigates to the bill list.
//
// A submit while the upload is in flight fails with ErrUploadInFlight; a
// submit without an accepted attachment fails with ErrNoAttachment and
// performs no persistence call. An update rejection is logged and returned
// to the caller, but navigation to the bill list still fires.
func (c *Controller) HandleSubmit(ctx context.Context, fields form.FieldAccessor) error {
	c.mu.Lock()

	switch c.machine.State() {
	case workflow.StateUploading:
		c.mu.Unlock()
		return ErrUploadInFlight
	case workflow.StateIdle:
		c.mu.Unlock()
		return ErrNoAttachment
	}

	if err := c.machine.Fire(ctx, workflow.TriggerSubmit); err != nil {
		c.mu.Unlock()
		return err
	}

	staged := c.staged
	c.mu.Unlock()

	bill := form.BuildBill(fields, c.session.Email, staged)
	bill.ID = staged.Key

	_, err := c.store.Bills().Update(ctx, store.UpdateInput{
		Bill:     bill,
		Selector: staged.Key,
	})
	if err != nil {
		c.logger.Error("Failed to update bill",
			zap.String("selector", staged.Key),
			zap.Error(err))
	}

	c.navigator.OnNavigate(router.PathBills)
	return err
}
