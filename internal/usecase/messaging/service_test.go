package messaging

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/salescribe-team/salescribe/internal/domain/entities"
	"github.com/salescribe-team/salescribe/internal/infrastructure/cache"
	"github.com/salescribe-team/salescribe/internal/infrastructure/external/whatsapp"
)

// --- fakes ---

type fakeTranscriptRepo struct {
	transcripts []*entities.VoiceTranscript
}

func (r *fakeTranscriptRepo) Create(_ context.Context, t *entities.VoiceTranscript) error {
	r.transcripts = append(r.transcripts, t)
	return nil
}

func (r *fakeTranscriptRepo) FindByID(_ context.Context, id uuid.UUID) (*entities.VoiceTranscript, error) {
	for _, t := range r.transcripts {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, nil
}

func (r *fakeTranscriptRepo) FindLatestPendingByPhone(_ context.Context, phone string) (*entities.VoiceTranscript, error) {
	var latest *entities.VoiceTranscript
	for _, t := range r.transcripts {
		if t.PhoneNumber == phone && t.IsPending() {
			if latest == nil || t.CreatedAt.After(latest.CreatedAt) {
				latest = t
			}
		}
	}
	return latest, nil
}

func (r *fakeTranscriptRepo) Update(_ context.Context, _ *entities.VoiceTranscript) error {
	return nil
}

func (r *fakeTranscriptRepo) ListByUserIDs(_ context.Context, userIDs []uuid.UUID, _, _ int) ([]*entities.VoiceTranscript, error) {
	var out []*entities.VoiceTranscript
	for _, t := range r.transcripts {
		for _, id := range userIDs {
			if t.UserID != nil && *t.UserID == id {
				out = append(out, t)
			}
		}
	}
	return out, nil
}

type fakeTemplateRepo struct {
	defaultTemplate *entities.UserTemplate
}

func (r *fakeTemplateRepo) Create(_ context.Context, _ *entities.UserTemplate) error { return nil }
func (r *fakeTemplateRepo) FindByID(_ context.Context, _ uuid.UUID) (*entities.UserTemplate, error) {
	return nil, nil
}
func (r *fakeTemplateRepo) ListByUserID(_ context.Context, _ uuid.UUID) ([]*entities.UserTemplate, error) {
	return nil, nil
}
func (r *fakeTemplateRepo) FindDefaultByUserID(_ context.Context, _ uuid.UUID) (*entities.UserTemplate, error) {
	return r.defaultTemplate, nil
}
func (r *fakeTemplateRepo) Update(_ context.Context, _ *entities.UserTemplate) error { return nil }
func (r *fakeTemplateRepo) Delete(_ context.Context, _ uuid.UUID) error              { return nil }
func (r *fakeTemplateRepo) ClearDefault(_ context.Context, _ uuid.UUID) error        { return nil }

type fakeProfileRepo struct{}

func (r *fakeProfileRepo) FindByID(_ context.Context, _ uuid.UUID) (*entities.Profile, error) {
	return nil, nil
}
func (r *fakeProfileRepo) FindByEmail(_ context.Context, _ string) (*entities.Profile, error) {
	return nil, nil
}
func (r *fakeProfileRepo) ListRepIDsByManagerID(_ context.Context, _ uuid.UUID) ([]uuid.UUID, error) {
	return nil, nil
}

type fakePhoneRepo struct {
	mappings map[string]uuid.UUID
}

func (r *fakePhoneRepo) FindByPhoneNumber(_ context.Context, phone string) (*entities.PhoneNumberMapping, error) {
	if userID, ok := r.mappings[phone]; ok {
		return &entities.PhoneNumberMapping{PhoneNumber: phone, UserID: userID}, nil
	}
	return nil, nil
}

type fakeMessenger struct {
	texts        []string
	templates    []string
	interactives []struct {
		body    string
		buttons []whatsapp.Button
	}
	interactiveErr error
}

func (m *fakeMessenger) FetchMedia(_ context.Context, _ string) ([]byte, string, error) {
	return []byte("audio-bytes"), "audio/ogg", nil
}

func (m *fakeMessenger) SendText(_ context.Context, _, body string) error {
	m.texts = append(m.texts, body)
	return nil
}

func (m *fakeMessenger) SendTemplate(_ context.Context, _, bodyParam string) error {
	m.templates = append(m.templates, bodyParam)
	return nil
}

func (m *fakeMessenger) SendInteractive(_ context.Context, _, body string, buttons []whatsapp.Button) error {
	if m.interactiveErr != nil {
		return m.interactiveErr
	}
	m.interactives = append(m.interactives, struct {
		body    string
		buttons []whatsapp.Button
	}{body, buttons})
	return nil
}

type fakeTranscriber struct {
	text string
}

func (t *fakeTranscriber) Transcribe(_ context.Context, _ []byte, _ string) (string, error) {
	return t.text, nil
}

type fakeExtractor struct {
	data map[string]interface{}
	err  error
}

func (e *fakeExtractor) Extract(_ context.Context, _ string, _ *entities.UserTemplate) (map[string]interface{}, error) {
	return e.data, e.err
}

func newTestService(tr *fakeTranscriptRepo, tpl *fakeTemplateRepo, phones *fakePhoneRepo, m *fakeMessenger, ext *fakeExtractor) Service {
	return NewService(
		tr, tpl, &fakeProfileRepo{}, phones,
		m, &fakeTranscriber{text: "Met with Acme about the Q3 renewal."},
		nil, cache.NewMemoryStore(), ext, nil, zap.NewNop(),
	)
}

// --- tests ---

func TestProcessVoiceMessage_CreatesPendingWithResolvedUser(t *testing.T) {
	userID := uuid.New()
	tr := &fakeTranscriptRepo{}
	m := &fakeMessenger{}
	svc := newTestService(tr, &fakeTemplateRepo{}, &fakePhoneRepo{mappings: map[string]uuid.UUID{"+14155550100": userID}}, m, &fakeExtractor{})

	if err := svc.ProcessVoiceMessage(context.Background(), "wamid.1", "+14155550100", "media-1"); err != nil {
		t.Fatalf("ProcessVoiceMessage failed: %v", err)
	}

	if len(tr.transcripts) != 1 {
		t.Fatalf("expected 1 transcript got %d", len(tr.transcripts))
	}
	transcript := tr.transcripts[0]
	if !transcript.IsPending() {
		t.Fatalf("expected pending status got %s", transcript.Status)
	}
	if transcript.UserID == nil || *transcript.UserID != userID {
		t.Fatal("expected user resolved from phone mapping")
	}

	if len(m.interactives) != 1 {
		t.Fatalf("expected 1 interactive message got %d", len(m.interactives))
	}
	buttons := m.interactives[0].buttons
	if buttons[0].ID != "confirm:"+transcript.ID.String() {
		t.Fatalf("confirm button must carry transcript id, got %s", buttons[0].ID)
	}
	if buttons[1].ID != "retake:"+transcript.ID.String() {
		t.Fatalf("retake button must carry transcript id, got %s", buttons[1].ID)
	}
}

func TestProcessVoiceMessage_SkipsRedelivery(t *testing.T) {
	tr := &fakeTranscriptRepo{}
	m := &fakeMessenger{}
	svc := newTestService(tr, &fakeTemplateRepo{}, &fakePhoneRepo{}, m, &fakeExtractor{})

	svc.ProcessVoiceMessage(context.Background(), "wamid.dup", "+14155550100", "media-1")
	svc.ProcessVoiceMessage(context.Background(), "wamid.dup", "+14155550100", "media-1")

	if len(tr.transcripts) != 1 {
		t.Fatalf("redelivered message must not create a second transcript, got %d", len(tr.transcripts))
	}
}

func TestProcessVoiceMessage_FallsBackToTemplateWhenInteractiveFails(t *testing.T) {
	tr := &fakeTranscriptRepo{}
	m := &fakeMessenger{interactiveErr: context.DeadlineExceeded}
	svc := newTestService(tr, &fakeTemplateRepo{}, &fakePhoneRepo{}, m, &fakeExtractor{})

	if err := svc.ProcessVoiceMessage(context.Background(), "wamid.2", "+14155550100", "media-1"); err != nil {
		t.Fatalf("expected template fallback, got error: %v", err)
	}
	if len(m.templates) != 1 {
		t.Fatalf("expected fallback template message, got %d", len(m.templates))
	}
	if !strings.Contains(m.templates[0], "Met with Acme") {
		t.Fatalf("fallback must carry the transcript echo, got %q", m.templates[0])
	}
}

func TestTruncate_KeepsRuneBoundary(t *testing.T) {
	text := strings.Repeat("a", 10) + "é" // 'é' starts at byte 10, two bytes long
	got := truncate(text, 11)
	if !utf8.ValidString(got) {
		t.Fatalf("truncate produced invalid UTF-8: %q", got)
	}
	if got != strings.Repeat("a", 10)+"…" {
		t.Fatalf("unexpected truncation %q", got)
	}

	if got := truncate("short", 900); got != "short" {
		t.Fatalf("text under the limit must pass through, got %q", got)
	}
}

func TestHandleButtonReply_ConfirmStoresExtraction(t *testing.T) {
	userID := uuid.New()
	template := &entities.UserTemplate{
		ID:     uuid.New(),
		UserID: userID,
		Name:   "Daily report",
		Fields: []entities.TemplateField{{Name: "client_name", Type: entities.FieldTypeText, Required: true}},
	}
	transcript := entities.NewVoiceTranscript("+14155550100", "Met with Acme.")
	transcript.UserID = &userID

	tr := &fakeTranscriptRepo{transcripts: []*entities.VoiceTranscript{transcript}}
	ext := &fakeExtractor{data: map[string]interface{}{"client_name": "Acme"}}
	m := &fakeMessenger{}
	svc := newTestService(tr, &fakeTemplateRepo{defaultTemplate: template}, &fakePhoneRepo{}, m, ext)

	err := svc.HandleButtonReply(context.Background(), "wamid.3", "+14155550100", "confirm:"+transcript.ID.String(), "Confirm")
	if err != nil {
		t.Fatalf("HandleButtonReply failed: %v", err)
	}

	if transcript.Status != entities.TranscriptStatusConfirmed {
		t.Fatalf("expected confirmed got %s", transcript.Status)
	}
	if !transcript.HasExtraction {
		t.Fatal("expected extraction data stored")
	}
	if transcript.TemplateID == nil || *transcript.TemplateID != template.ID {
		t.Fatal("expected template id recorded")
	}
}

func TestHandleButtonReply_ConfirmWithoutTemplate(t *testing.T) {
	transcript := entities.NewVoiceTranscript("+14155550100", "Met with Acme.")
	tr := &fakeTranscriptRepo{transcripts: []*entities.VoiceTranscript{transcript}}
	m := &fakeMessenger{}
	svc := newTestService(tr, &fakeTemplateRepo{}, &fakePhoneRepo{}, m, &fakeExtractor{})

	err := svc.HandleButtonReply(context.Background(), "wamid.4", "+14155550100", "confirm:"+transcript.ID.String(), "Confirm")
	if err != nil {
		t.Fatalf("HandleButtonReply failed: %v", err)
	}

	if transcript.Status != entities.TranscriptStatusConfirmed {
		t.Fatalf("expected confirmed got %s", transcript.Status)
	}
	if transcript.HasExtraction {
		t.Fatal("expected null extraction data without a template")
	}
	if len(m.texts) != 1 || !strings.Contains(m.texts[0], "template") {
		t.Fatalf("expected configure-a-template notice, got %v", m.texts)
	}
}

func TestHandleButtonReply_LabelFallbackTargetsNewestPending(t *testing.T) {
	older := entities.NewVoiceTranscript("+14155550100", "first try")
	newer := entities.NewVoiceTranscript("+14155550100", "second try")
	newer.CreatedAt = older.CreatedAt.Add(1)

	tr := &fakeTranscriptRepo{transcripts: []*entities.VoiceTranscript{older, newer}}
	m := &fakeMessenger{}
	svc := newTestService(tr, &fakeTemplateRepo{}, &fakePhoneRepo{}, m, &fakeExtractor{})

	err := svc.HandleButtonReply(context.Background(), "wamid.5", "+14155550100", "some-opaque-id", "RETAKE please")
	if err != nil {
		t.Fatalf("HandleButtonReply failed: %v", err)
	}

	if newer.Status != entities.TranscriptStatusRetaken {
		t.Fatalf("expected newest pending retaken, got %s", newer.Status)
	}
	if older.Status != entities.TranscriptStatusPending {
		t.Fatalf("older transcript must stay pending, got %s", older.Status)
	}
}

func TestHandleButtonReply_TerminalStateNeverReverts(t *testing.T) {
	transcript := entities.NewVoiceTranscript("+14155550100", "done deal")
	if err := transcript.Confirm(nil, nil); err != nil {
		t.Fatalf("setup confirm failed: %v", err)
	}

	tr := &fakeTranscriptRepo{transcripts: []*entities.VoiceTranscript{transcript}}
	m := &fakeMessenger{}
	svc := newTestService(tr, &fakeTemplateRepo{}, &fakePhoneRepo{}, m, &fakeExtractor{})

	err := svc.HandleButtonReply(context.Background(), "wamid.6", "+14155550100", "retake:"+transcript.ID.String(), "Retake")
	if err != nil {
		t.Fatalf("HandleButtonReply failed: %v", err)
	}
	if transcript.Status != entities.TranscriptStatusConfirmed {
		t.Fatalf("confirmed transcript must not revert, got %s", transcript.Status)
	}
}

func TestHandleText_SendsUsageHint(t *testing.T) {
	m := &fakeMessenger{}
	svc := newTestService(&fakeTranscriptRepo{}, &fakeTemplateRepo{}, &fakePhoneRepo{}, m, &fakeExtractor{})

	if err := svc.HandleText(context.Background(), "wamid.7", "+14155550100", "hello?"); err != nil {
		t.Fatalf("HandleText failed: %v", err)
	}
	if len(m.texts) != 1 || !strings.Contains(m.texts[0], "voice note") {
		t.Fatalf("expected usage hint, got %v", m.texts)
	}
}
