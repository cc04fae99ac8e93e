package models

import "testing"

func TestConversationOther(t *testing.T) {
	c := Conversation{User1ID: 1, User2ID: 2}
	if got := c.Other(1); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
	if got := c.Other(2); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
}

func TestConversationHasParticipant(t *testing.T) {
	c := Conversation{User1ID: 1, User2ID: 2}
	if !c.HasParticipant(1) || !c.HasParticipant(2) {
		t.Fatal("both users must be participants")
	}
	if c.HasParticipant(3) {
		t.Fatal("user 3 is not a participant")
	}
}
