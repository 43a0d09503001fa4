package submission

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/billedhq/expense-client/internal/attachment"
	"github.com/billedhq/expense-client/internal/domain/entity"
	"github.com/billedhq/expense-client/internal/domain/workflow"
	"github.com/billedhq/expense-client/internal/form"
	"github.com/billedhq/expense-client/internal/router"
	"github.com/billedhq/expense-client/internal/session"
	"github.com/billedhq/expense-client/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// recordingStore implements store.Store and records every persistence call
type recordingStore struct {
	mu sync.Mutex

	createCalls []store.CreateInput
	updateCalls []store.UpdateInput

	createResult entity.UploadResult
	createErr    error
	updateErr    error

	// optional gate blocking Create until released, to hold an upload in flight
	createGate chan struct{}
}

func (s *recordingStore) Bills() store.BillsClient { return &recordingBills{store: s} }

type recordingBills struct {
	store *recordingStore
}

func (b *recordingBills) List(ctx context.Context) ([]entity.Bill, error) {
	return nil, nil
}

func (b *recordingBills) Create(ctx context.Context, input store.CreateInput) (entity.UploadResult, error) {
	if b.store.createGate != nil {
		<-b.store.createGate
	}
	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	b.store.createCalls = append(b.store.createCalls, input)
	if b.store.createErr != nil {
		return entity.UploadResult{}, b.store.createErr
	}
	return b.store.createResult, nil
}

func (b *recordingBills) Update(ctx context.Context, input store.UpdateInput) (entity.Bill, error) {
	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	b.store.updateCalls = append(b.store.updateCalls, input)
	if b.store.updateErr != nil {
		return entity.Bill{}, b.store.updateErr
	}
	return input.Bill, nil
}

func (s *recordingStore) creates() []store.CreateInput {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]store.CreateInput(nil), s.createCalls...)
}

func (s *recordingStore) updates() []store.UpdateInput {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]store.UpdateInput(nil), s.updateCalls...)
}

// scriptedCreate is one planned Create outcome; a non-nil gate holds the
// call in flight until released.
type scriptedCreate struct {
	gate   chan struct{}
	result entity.UploadResult
	err    error
}

// scriptedStore serves Create outcomes keyed by uploaded file name so
// tests can settle concurrent uploads in a chosen order.
type scriptedStore struct {
	mu          sync.Mutex
	scripts     map[string]scriptedCreate
	updateCalls []store.UpdateInput
}

func (s *scriptedStore) Bills() store.BillsClient { return &scriptedBills{store: s} }

type scriptedBills struct {
	store *scriptedStore
}

func (b *scriptedBills) List(ctx context.Context) ([]entity.Bill, error) {
	return nil, nil
}

func (b *scriptedBills) Create(ctx context.Context, input store.CreateInput) (entity.UploadResult, error) {
	b.store.mu.Lock()
	script := b.store.scripts[input.FileName]
	b.store.mu.Unlock()

	if script.gate != nil {
		<-script.gate
	}
	return script.result, script.err
}

func (b *scriptedBills) Update(ctx context.Context, input store.UpdateInput) (entity.Bill, error) {
	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	b.store.updateCalls = append(b.store.updateCalls, input)
	return input.Bill, nil
}

func (s *scriptedStore) updates() []store.UpdateInput {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]store.UpdateInput(nil), s.updateCalls...)
}

type recordingNavigator struct {
	mu    sync.Mutex
	paths []string
}

func (n *recordingNavigator) OnNavigate(pathname string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paths = append(n.paths, pathname)
}

func (n *recordingNavigator) navigated() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.paths...)
}

func newTestController(st store.Store, nav *recordingNavigator) *Controller {
	return NewController(
		st,
		attachment.NewValidator(),
		nav,
		session.Context{Email: "employee@company.test", Type: "Employee"},
		zap.NewNop(),
	)
}

func imageCandidate() entity.AttachmentCandidate {
	return entity.AttachmentCandidate{
		FileName:    "test.png",
		Extension:   "png",
		ContentType: "image/png",
		Content:     []byte("test"),
	}
}

func validFields() form.Values {
	return form.Values{
		ExpenseType: "Équipement et matériel",
		ExpenseName: "PC Asus ROG Strix",
		ExpenseDate: "2022-07-31",
		AmountRaw:   "1700",
		VATRaw:      "170",
		PctRaw:      "",
		Comment:     "Ryzen 7 5800X",
	}
}

func TestHandleFileSelected_RejectsBadExtension(t *testing.T) {
	st := &recordingStore{}
	controller := newTestController(st, &recordingNavigator{})

	err := controller.HandleFileSelected(context.Background(), entity.AttachmentCandidate{
		FileName:    "test.pdf",
		Extension:   "pdf",
		ContentType: "application/pdf",
	})

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, attachment.RejectionMessage, validationErr.Message)
	assert.Equal(t, workflow.StateIdle, controller.State())
	assert.Empty(t, st.creates(), "a rejected file must not be uploaded")
}

func TestHandleFileSelected_StagesUpload(t *testing.T) {
	st := &recordingStore{createResult: entity.UploadResult{
		FileURL: "https://localhost:3456/images/test.jpg",
		Key:     "1234",
	}}
	controller := newTestController(st, &recordingNavigator{})

	err := controller.HandleFileSelected(context.Background(), imageCandidate())
	require.NoError(t, err)

	controller.WaitForUpload()

	assert.Equal(t, workflow.StateStaged, controller.State())
	staged := controller.StagedUpload()
	assert.Equal(t, "https://localhost:3456/images/test.jpg", staged.FileURL)
	assert.Equal(t, "1234", staged.Key)
	assert.Equal(t, "test.png", staged.FileName)

	creates := st.creates()
	require.Len(t, creates, 1)
	assert.Equal(t, "employee@company.test", creates[0].Email)
	assert.Equal(t, "test.png", creates[0].FileName)
}

func TestHandleSubmit_ValidFormInvokesUpdateAndNavigates(t *testing.T) {
	ctx := context.Background()
	st := &recordingStore{createResult: entity.UploadResult{
		FileURL: "https://localhost:3456/images/test.jpg",
		Key:     "1234",
	}}
	nav := &recordingNavigator{}
	controller := newTestController(st, nav)

	require.NoError(t, controller.HandleFileSelected(ctx, imageCandidate()))
	controller.WaitForUpload()

	require.NoError(t, controller.HandleSubmit(ctx, validFields()))

	updates := st.updates()
	require.Len(t, updates, 1)
	bill := updates[0].Bill
	assert.Equal(t, entity.StatusPending, bill.Status)
	assert.Equal(t, 20, bill.Pct, "blank pct defaults to 20")
	assert.Equal(t, "employee@company.test", bill.Email)
	assert.Equal(t, "https://localhost:3456/images/test.jpg", bill.FileURL)
	assert.Equal(t, "test.png", bill.FileName)
	assert.Equal(t, "1234", updates[0].Selector)

	assert.Equal(t, []string{router.PathBills}, nav.navigated())
	assert.Equal(t, workflow.StateSubmitted, controller.State())
}

func TestHandleSubmit_AfterRejectedFilePerformsNoPersistenceCall(t *testing.T) {
	ctx := context.Background()
	st := &recordingStore{}
	nav := &recordingNavigator{}
	controller := newTestController(st, nav)

	err := controller.HandleFileSelected(ctx, entity.AttachmentCandidate{
		FileName: "receipt.pdf",
	})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)

	err = controller.HandleSubmit(ctx, validFields())
	assert.ErrorIs(t, err, ErrNoAttachment)

	assert.Empty(t, st.creates())
	assert.Empty(t, st.updates())
	assert.Empty(t, nav.navigated())
}

func TestHandleSubmit_WhileUploadInFlightIsRejected(t *testing.T) {
	ctx := context.Background()
	gate := make(chan struct{})
	st := &recordingStore{
		createResult: entity.UploadResult{FileURL: "u", Key: "k"},
		createGate:   gate,
	}
	nav := &recordingNavigator{}
	controller := newTestController(st, nav)

	require.NoError(t, controller.HandleFileSelected(ctx, imageCandidate()))

	err := controller.HandleSubmit(ctx, validFields())
	assert.ErrorIs(t, err, ErrUploadInFlight)
	assert.Empty(t, st.updates())
	assert.Empty(t, nav.navigated())

	close(gate)
	controller.WaitForUpload()

	// Once the upload settles the same submit succeeds
	require.NoError(t, controller.HandleSubmit(ctx, validFields()))
	assert.Equal(t, []string{router.PathBills}, nav.navigated())
}

func TestHandleSubmit_UpdateRejectionIsReturnedButStillNavigates(t *testing.T) {
	ctx := context.Background()
	st := &recordingStore{
		createResult: entity.UploadResult{FileURL: "u", Key: "k"},
		updateErr:    store.NewTransportError(500),
	}
	nav := &recordingNavigator{}
	controller := newTestController(st, nav)

	require.NoError(t, controller.HandleFileSelected(ctx, imageCandidate()))
	controller.WaitForUpload()

	err := controller.HandleSubmit(ctx, validFields())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Erreur 500")

	// Navigate-away-on-submit holds even when the write failed
	assert.Equal(t, []string{router.PathBills}, nav.navigated())
}

func TestReselection_LastResolvedUploadWins(t *testing.T) {
	ctx := context.Background()
	st := &recordingStore{createResult: entity.UploadResult{FileURL: "first", Key: "1"}}
	controller := newTestController(st, &recordingNavigator{})

	require.NoError(t, controller.HandleFileSelected(ctx, imageCandidate()))
	controller.WaitForUpload()

	st.mu.Lock()
	st.createResult = entity.UploadResult{FileURL: "second", Key: "2"}
	st.mu.Unlock()

	second := imageCandidate()
	second.FileName = "other.jpg"
	require.NoError(t, controller.HandleFileSelected(ctx, second))
	controller.WaitForUpload()

	staged := controller.StagedUpload()
	assert.Equal(t, "second", staged.FileURL)
	assert.Equal(t, "2", staged.Key)
	assert.Equal(t, "other.jpg", staged.FileName)
	assert.Equal(t, workflow.StateStaged, controller.State())
}

func TestReselection_StaleUploadFailureDoesNotDropCurrentDraft(t *testing.T) {
	ctx := context.Background()
	firstGate := make(chan struct{})
	secondGate := make(chan struct{})
	st := &scriptedStore{scripts: map[string]scriptedCreate{
		"test.png":  {gate: firstGate, err: store.NewTransportError(500)},
		"other.jpg": {gate: secondGate, result: entity.UploadResult{FileURL: "second", Key: "2"}},
	}}
	nav := &recordingNavigator{}
	controller := newTestController(st, nav)

	require.NoError(t, controller.HandleFileSelected(ctx, imageCandidate()))

	second := imageCandidate()
	second.FileName = "other.jpg"
	require.NoError(t, controller.HandleFileSelected(ctx, second))

	// The re-selected file's upload settles first and stages the draft
	close(secondGate)
	require.Eventually(t, func() bool {
		return controller.State() == workflow.StateStaged
	}, time.Second, time.Millisecond)

	// The superseded upload's late failure must not reset the draft
	close(firstGate)
	controller.WaitForUpload()
	assert.Equal(t, workflow.StateStaged, controller.State())
	assert.Equal(t, "2", controller.StagedUpload().Key)

	require.NoError(t, controller.HandleSubmit(ctx, validFields()))
	updates := st.updates()
	require.Len(t, updates, 1)
	assert.Equal(t, "2", updates[0].Selector)
	assert.Equal(t, []string{router.PathBills}, nav.navigated())
}

func TestReselection_StaleUploadSuccessDoesNotUnblockSubmit(t *testing.T) {
	ctx := context.Background()
	firstGate := make(chan struct{})
	secondGate := make(chan struct{})
	st := &scriptedStore{scripts: map[string]scriptedCreate{
		"test.png":  {gate: firstGate, result: entity.UploadResult{FileURL: "first", Key: "1"}},
		"other.jpg": {gate: secondGate, result: entity.UploadResult{FileURL: "second", Key: "2"}},
	}}
	nav := &recordingNavigator{}
	controller := newTestController(st, nav)

	require.NoError(t, controller.HandleFileSelected(ctx, imageCandidate()))

	second := imageCandidate()
	second.FileName = "other.jpg"
	require.NoError(t, controller.HandleFileSelected(ctx, second))

	// The superseded upload resolves while the current one is still in
	// flight; its pair is staged (last-resolved-wins) but the draft stays
	// in the uploading state.
	close(firstGate)
	require.Eventually(t, func() bool {
		return controller.StagedUpload().Key == "1"
	}, time.Second, time.Millisecond)
	assert.Equal(t, workflow.StateUploading, controller.State())

	err := controller.HandleSubmit(ctx, validFields())
	assert.ErrorIs(t, err, ErrUploadInFlight)
	assert.Empty(t, st.updates())

	close(secondGate)
	controller.WaitForUpload()
	assert.Equal(t, workflow.StateStaged, controller.State())
	assert.Equal(t, "2", controller.StagedUpload().Key)

	require.NoError(t, controller.HandleSubmit(ctx, validFields()))
	updates := st.updates()
	require.Len(t, updates, 1)
	assert.Equal(t, "2", updates[0].Selector)
}

func TestUploadFailure_IsLoggedAndDraftReturnsToIdle(t *testing.T) {
	ctx := context.Background()
	st := &recordingStore{createErr: store.NewTransportError(500)}
	controller := newTestController(st, &recordingNavigator{})

	require.NoError(t, controller.HandleFileSelected(ctx, imageCandidate()))
	controller.WaitForUpload()

	assert.Equal(t, workflow.StateIdle, controller.State())
	assert.Empty(t, controller.StagedUpload().FileURL)
}
