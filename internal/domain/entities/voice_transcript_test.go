package entities

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestVoiceTranscript_Confirm(t *testing.T) {
	templateID := uuid.New()
	tr := NewVoiceTranscript("+14155550100", "closed the acme deal")

	data := map[string]interface{}{"client_name": "Acme", "deal_value": nil}
	if err := tr.Confirm(&templateID, data); err != nil {
		t.Fatalf("Confirm returned error: %v", err)
	}

	if tr.Status != TranscriptStatusConfirmed {
		t.Errorf("status = %s, want confirmed", tr.Status)
	}
	if !tr.HasExtraction {
		t.Error("expected HasExtraction to be set when data present")
	}
	if tr.TemplateID == nil || *tr.TemplateID != templateID {
		t.Error("expected template id to be attached")
	}
}

func TestVoiceTranscript_ConfirmWithoutData(t *testing.T) {
	tr := NewVoiceTranscript("+14155550100", "hello")

	if err := tr.Confirm(nil, nil); err != nil {
		t.Fatalf("Confirm returned error: %v", err)
	}
	if tr.HasExtraction {
		t.Error("expected HasExtraction to stay false without data")
	}
	if tr.Status != TranscriptStatusConfirmed {
		t.Errorf("status = %s, want confirmed", tr.Status)
	}
}

func TestVoiceTranscript_Retake(t *testing.T) {
	tr := NewVoiceTranscript("+14155550100", "too noisy")

	if err := tr.Retake(); err != nil {
		t.Fatalf("Retake returned error: %v", err)
	}
	if tr.Status != TranscriptStatusRetaken {
		t.Errorf("status = %s, want retaken", tr.Status)
	}
}

func TestVoiceTranscript_TerminalStatesRejectTransitions(t *testing.T) {
	confirmed := NewVoiceTranscript("+14155550100", "done")
	if err := confirmed.Confirm(nil, nil); err != nil {
		t.Fatalf("setup confirm failed: %v", err)
	}

	if err := confirmed.Retake(); !errors.Is(err, ErrTranscriptResolved) {
		t.Errorf("Retake on confirmed = %v, want ErrTranscriptResolved", err)
	}
	if err := confirmed.Confirm(nil, nil); !errors.Is(err, ErrTranscriptResolved) {
		t.Errorf("double Confirm = %v, want ErrTranscriptResolved", err)
	}

	retaken := NewVoiceTranscript("+14155550100", "again")
	if err := retaken.Retake(); err != nil {
		t.Fatalf("setup retake failed: %v", err)
	}
	if err := retaken.Confirm(nil, nil); !errors.Is(err, ErrTranscriptResolved) {
		t.Errorf("Confirm on retaken = %v, want ErrTranscriptResolved", err)
	}
}
