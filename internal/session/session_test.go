package session

import "testing"

func TestNewID_Shape(t *testing.T) {
	for i := 0; i < 100; i++ {
		id := NewID()
		if len(id) != 4 {
			t.Fatalf("expected 4-character id, got %q", id)
		}
		for j := 0; j < 3; j++ {
			if id[j] < 'a' || id[j] > 'z' {
				t.Fatalf("expected lowercase letter at position %d in %q", j, id)
			}
		}
		if id[3] < '0' || id[3] > '9' {
			t.Fatalf("expected digit at position 3 in %q", id)
		}
	}
}

func TestNew_StartsDisconnected(t *testing.T) {
	sess := New()
	if sess.ID == "" {
		t.Error("expected generated id")
	}
	if sess.Status != StatusDisconnected {
		t.Errorf("expected %s, got %s", StatusDisconnected, sess.Status)
	}
}
