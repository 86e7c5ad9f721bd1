package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/quitbet/internal/db"
)

func setupEmergencyTest(t *testing.T) (*EmergencyService, *stubMailer, db.User, func()) {
	t.Helper()
	cleanup := setupTestDB(t, &db.User{}, &db.EmergencyContact{})
	user := createTestUser(t, "emergency@example.com")
	mailer := &stubMailer{}
	return NewEmergencyService(db.DB, mailer), mailer, user, cleanup
}

func TestEmergencyContactLifecycle(t *testing.T) {
	svc, _, user, cleanup := setupEmergencyTest(t)
	defer cleanup()

	if _, err := svc.AddContact(user.ID, "", "mom@example.com"); err == nil {
		t.Fatal("expected error for empty name")
	}

	contact, err := svc.AddContact(user.ID, "妈妈", "mom@example.com")
	if err != nil {
		t.Fatalf("add contact failed: %v", err)
	}

	contacts, err := svc.ListContacts(user.ID)
	if err != nil {
		t.Fatalf("list contacts failed: %v", err)
	}
	if len(contacts) != 1 {
		t.Fatalf("expected 1 contact, got %d", len(contacts))
	}

	other := createTestUser(t, "emergency-other@example.com")
	if err := svc.DeleteContact(other.ID, contact.ID); !errors.Is(err, ErrContactNotFound) {
		t.Fatalf("expected ErrContactNotFound for other user, got %v", err)
	}

	if err := svc.DeleteContact(user.ID, contact.ID); err != nil {
		t.Fatalf("delete contact failed: %v", err)
	}
}

func TestEmergencyAlertWithoutContacts(t *testing.T) {
	svc, mailer, user, cleanup := setupEmergencyTest(t)
	defer cleanup()

	result, err := svc.TriggerAlert(context.Background(), &user)
	if err != nil {
		t.Fatalf("trigger alert failed: %v", err)
	}
	if len(result.Recipients) != 0 {
		t.Fatalf("expected no recipients, got %v", result.Recipients)
	}
	if result.Message != "尚未登记紧急联系人。" {
		t.Fatalf("unexpected message: %q", result.Message)
	}
	if mailer.emergencyCount() != 0 {
		t.Fatal("expected no email sent without contacts")
	}
}

func TestEmergencyAlertNotifiesAllContacts(t *testing.T) {
	svc, mailer, user, cleanup := setupEmergencyTest(t)
	defer cleanup()

	for _, email := range []string{"mom@example.com", "friend@example.com"} {
		if _, err := svc.AddContact(user.ID, "联系人", email); err != nil {
			t.Fatalf("add contact failed: %v", err)
		}
	}

	result, err := svc.TriggerAlert(context.Background(), &user)
	if err != nil {
		t.Fatalf("trigger alert failed: %v", err)
	}
	if len(result.Recipients) != 2 {
		t.Fatalf("expected 2 recipients, got %v", result.Recipients)
	}

	// 发送是异步的，轮询等待落到 stub
	deadline := time.Now().Add(2 * time.Second)
	for mailer.emergencyCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if mailer.emergencyCount() != 1 {
		t.Fatalf("expected 1 alert batch, got %d", mailer.emergencyCount())
	}
}
