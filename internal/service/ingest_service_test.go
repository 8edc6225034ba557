package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	config "github.com/pra2107tham/Reeva/configs"
	"github.com/pra2107tham/Reeva/internal/models"
	"github.com/pra2107tham/Reeva/internal/transfer"
)

type stubProfileRepo struct {
	profiles  map[string]*models.InstagramProfile
	upsertErr error
}

func newStubProfileRepo() *stubProfileRepo {
	return &stubProfileRepo{profiles: make(map[string]*models.InstagramProfile)}
}

func (r *stubProfileRepo) Upsert(ctx context.Context, p *models.InstagramProfile) (*models.InstagramProfile, error) {
	if r.upsertErr != nil {
		return nil, r.upsertErr
	}
	existing, ok := r.profiles[p.IGID]
	if !ok {
		cp := *p
		cp.CreatedAt = time.Now()
		cp.UpdatedAt = cp.CreatedAt
		r.profiles[p.IGID] = &cp
		existing = &cp
	}
	out := *existing
	return &out, nil
}

func (r *stubProfileRepo) GetByIGID(ctx context.Context, igID string) (*models.InstagramProfile, bool, error) {
	p, ok := r.profiles[igID]
	return p, ok, nil
}

func (r *stubProfileRepo) Link(ctx context.Context, igID string, userID int64) error {
	p, ok := r.profiles[igID]
	if !ok || p.ConnectedUserID.Valid {
		return errors.New("profile is missing or already linked")
	}
	p.ConnectedUserID = sql.NullInt64{Int64: userID, Valid: true}
	return nil
}

type stubMessageRepo struct {
	messages  map[string]*models.Message
	insertErr error
	markErr   error
}

func newStubMessageRepo() *stubMessageRepo {
	return &stubMessageRepo{messages: make(map[string]*models.Message)}
}

func (r *stubMessageRepo) InsertIfAbsent(ctx context.Context, m *models.Message) (*models.Message, bool, error) {
	if r.insertErr != nil {
		return nil, false, r.insertErr
	}
	if existing, ok := r.messages[m.MID]; ok {
		cp := *existing
		return &cp, false, nil
	}
	cp := *m
	r.messages[m.MID] = &cp
	out := cp
	return &out, true, nil
}

func (r *stubMessageRepo) GetByMID(ctx context.Context, mid string) (*models.Message, bool, error) {
	m, ok := r.messages[mid]
	return m, ok, nil
}

func (r *stubMessageRepo) MarkProcessed(ctx context.Context, mid string) error {
	if r.markErr != nil {
		return r.markErr
	}
	r.messages[mid].Processed = true
	return nil
}

type stubTokenService struct {
	created   int
	createErr error
}

func (s *stubTokenService) Create(ctx context.Context, igID, messageID string) (*CreatedToken, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created++
	return &CreatedToken{
		Plain:     "plain-secret",
		Hash:      "hash",
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil
}

func (s *stubTokenService) Consume(ctx context.Context, plain, igID string) error {
	return nil
}

type sentDM struct {
	igID string
	text string
	kind string
}

type stubDeliveryService struct {
	sent    []sentDM
	sendErr error
}

func (s *stubDeliveryService) SendWithRetry(ctx context.Context, igID, text, kind string) (*SendResult, error) {
	if s.sendErr != nil {
		return nil, s.sendErr
	}
	s.sent = append(s.sent, sentDM{igID: igID, text: text, kind: kind})
	return &SendResult{RemoteMessageID: "rm", OutboundMessageID: "om"}, nil
}

type stubSubmitter struct {
	calls int
	ok    bool
}

func (s *stubSubmitter) Submit(ctx context.Context, msg *models.Message, profile *models.InstagramProfile) bool {
	s.calls++
	return s.ok
}

type ingestFixture struct {
	profiles  *stubProfileRepo
	messages  *stubMessageRepo
	tokens    *stubTokenService
	delivery  *stubDeliveryService
	media     *stubMediaRepo
	submitter *stubSubmitter
	svc       IngestService
}

func newIngestFixture() *ingestFixture {
	f := &ingestFixture{
		profiles:  newStubProfileRepo(),
		messages:  newStubMessageRepo(),
		tokens:    &stubTokenService{},
		delivery:  &stubDeliveryService{},
		media:     newStubMediaRepo(),
		submitter: &stubSubmitter{ok: true},
	}
	cfg := config.Config{FrontendURL: "https://app.example"}
	f.svc = NewIngestService(cfg, f.profiles, f.messages, f.tokens,
		f.delivery, NewMediaService(f.media), nil, f.submitter)
	return f
}

func sampleEvent() transfer.MessagingEvent {
	return transfer.MessagingEvent{
		MID:           "M1",
		SenderIGID:    "U1",
		RecipientIGID: "P1",
		Timestamp:     "1700000000000",
		MessageText:   "hi",
	}
}

func TestHandleEvent_UnverifiedBranch(t *testing.T) {
	f := newIngestFixture()

	if err := f.svc.HandleEvent(context.Background(), sampleEvent()); err != nil {
		t.Fatalf("handle: %v", err)
	}

	msg, ok := f.messages.messages["M1"]
	if !ok {
		t.Fatal("message not persisted")
	}
	if msg.Processed {
		t.Error("unverified branch must not mark the message processed")
	}
	if f.tokens.created != 1 {
		t.Errorf("tokens created = %d, want 1", f.tokens.created)
	}
	if len(f.delivery.sent) != 1 || f.delivery.sent[0].kind != models.OutboundKindVerification {
		t.Fatalf("sent = %+v, want one verification DM", f.delivery.sent)
	}
	if f.submitter.calls != 0 {
		t.Error("unverified branch must not hand off downstream")
	}
	if f.media.creates != 0 {
		t.Error("unverified branch must not store media")
	}
}

func TestHandleEvent_IdempotentRedelivery(t *testing.T) {
	f := newIngestFixture()
	event := sampleEvent()

	if err := f.svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("first handle: %v", err)
	}
	if err := f.svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("second handle: %v", err)
	}

	if len(f.messages.messages) != 1 {
		t.Fatalf("message rows = %d, want 1", len(f.messages.messages))
	}
	if f.tokens.created != 1 {
		t.Errorf("tokens created = %d, want 1 (no re-mint on redelivery)", f.tokens.created)
	}
	if len(f.delivery.sent) != 1 {
		t.Errorf("DMs sent = %d, want 1", len(f.delivery.sent))
	}
}

func TestHandleEvent_VerifiedBranchProcessed(t *testing.T) {
	f := newIngestFixture()
	f.profiles.profiles["U1"] = &models.InstagramProfile{
		IGID:            "U1",
		ConnectedUserID: sql.NullInt64{Int64: 42, Valid: true},
	}

	event := sampleEvent()
	event.Attachments = []any{reelAttachment("R1", "https://ig.example/reel/R1")}

	if err := f.svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle: %v", err)
	}

	if !f.messages.messages["M1"].Processed {
		t.Error("expected message marked processed after accepted hand-off")
	}
	if len(f.delivery.sent) != 1 || f.delivery.sent[0].kind != models.OutboundKindAcknowledgement {
		t.Fatalf("sent = %+v, want one acknowledgement DM", f.delivery.sent)
	}
	if f.submitter.calls != 1 {
		t.Errorf("submitter calls = %d, want 1", f.submitter.calls)
	}
	row, ok := f.media.rows["R1"]
	if !ok {
		t.Fatal("expected reel stored for connected user")
	}
	if row.UserID != 42 {
		t.Errorf("media owner = %d, want 42", row.UserID)
	}
}

func TestHandleEvent_RejectedHandOffLeavesUnprocessed(t *testing.T) {
	f := newIngestFixture()
	f.submitter.ok = false
	f.profiles.profiles["U1"] = &models.InstagramProfile{
		IGID:            "U1",
		ConnectedUserID: sql.NullInt64{Int64: 42, Valid: true},
	}

	if err := f.svc.HandleEvent(context.Background(), sampleEvent()); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if f.messages.messages["M1"].Processed {
		t.Error("rejected hand-off must leave the message unprocessed")
	}

	// Redelivery retries the hand-off without re-sending the ack.
	f.submitter.ok = true
	if err := f.svc.HandleEvent(context.Background(), sampleEvent()); err != nil {
		t.Fatalf("redelivery: %v", err)
	}
	if !f.messages.messages["M1"].Processed {
		t.Error("expected redelivery to complete the hand-off")
	}
	if len(f.delivery.sent) != 1 {
		t.Errorf("DMs sent = %d, want 1 (no second ack)", len(f.delivery.sent))
	}
	if f.submitter.calls != 2 {
		t.Errorf("submitter calls = %d, want 2", f.submitter.calls)
	}
}

func TestHandleEvent_SendFailureIsSwallowed(t *testing.T) {
	f := newIngestFixture()
	f.delivery.sendErr = errors.New("platform down")

	if err := f.svc.HandleEvent(context.Background(), sampleEvent()); err != nil {
		t.Fatalf("send failure must not fail ingestion: %v", err)
	}
	if _, ok := f.messages.messages["M1"]; !ok {
		t.Fatal("message must be persisted despite the send failure")
	}
}

func TestHandleEvent_PersistenceErrorsPropagate(t *testing.T) {
	f := newIngestFixture()
	f.profiles.upsertErr = errors.New("db unavailable")
	if err := f.svc.HandleEvent(context.Background(), sampleEvent()); err == nil {
		t.Fatal("expected profile upsert error to propagate")
	}

	f = newIngestFixture()
	f.messages.insertErr = errors.New("db unavailable")
	if err := f.svc.HandleEvent(context.Background(), sampleEvent()); err == nil {
		t.Fatal("expected message insert error to propagate")
	}
}
