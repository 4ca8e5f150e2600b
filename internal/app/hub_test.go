package app

import (
	"log/slog"
	"strings"
	"testing"

	"decoy/internal/domain"
)

func newTestHub(t *testing.T) *RoomHub {
	t.Helper()

	hub := NewRoomHub(testGameConfig(), &fakeGenerator{answer: "something"}, slog.Default())
	t.Cleanup(hub.Close)
	return hub
}

func TestCreateRoom_CodeShape(t *testing.T) {
	hub := newTestHub(t)

	session, err := hub.CreateRoom("host-conn")
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}

	code := session.Code()
	if len(code) != RoomCodeLength {
		t.Fatalf("code %q has length %d, want %d", code, len(code), RoomCodeLength)
	}
	for _, c := range code {
		if !strings.ContainsRune(RoomCodeChars, c) {
			t.Fatalf("code %q contains %q outside the alphabet", code, c)
		}
	}
}

func TestCreateRoom_UniqueCodes(t *testing.T) {
	hub := newTestHub(t)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		session, err := hub.CreateRoom("host-conn")
		if err != nil {
			t.Fatalf("CreateRoom: %v", err)
		}
		if seen[session.Code()] {
			t.Fatalf("duplicate room code %q", session.Code())
		}
		seen[session.Code()] = true
	}

	if hub.RoomCount() != 50 {
		t.Fatalf("expected 50 rooms, got %d", hub.RoomCount())
	}
}

func TestGenerateRoomCode(t *testing.T) {
	for i := 0; i < 100; i++ {
		code, err := generateRoomCode()
		if err != nil {
			t.Fatalf("generateRoomCode: %v", err)
		}
		if len(code) != RoomCodeLength {
			t.Fatalf("code %q has length %d, want %d", code, len(code), RoomCodeLength)
		}
		for _, c := range code {
			if !strings.ContainsRune(RoomCodeChars, c) {
				t.Fatalf("code %q contains %q outside the alphabet", code, c)
			}
		}
	}
}

func TestGetRoom_NotFound(t *testing.T) {
	hub := newTestHub(t)

	if _, err := hub.GetRoom("ZZZZ"); err != domain.ErrRoomNotFound {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
}

func TestRemoveRoom(t *testing.T) {
	hub := newTestHub(t)

	session, err := hub.CreateRoom("host-conn")
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}

	hub.RemoveRoom(session.Code())

	if _, err := hub.GetRoom(session.Code()); err != domain.ErrRoomNotFound {
		t.Fatalf("room should be gone, got %v", err)
	}
	if hub.RoomCount() != 0 {
		t.Fatalf("expected 0 rooms, got %d", hub.RoomCount())
	}

	// Removing twice is a no-op
	hub.RemoveRoom(session.Code())
}

func TestPlayerCount_AcrossRooms(t *testing.T) {
	hub := newTestHub(t)

	a, _ := hub.CreateRoom("conn-a")
	a.JoinOrReconnect("conn-a", "ana")
	a.JoinOrReconnect("conn-b", "bo")

	b, _ := hub.CreateRoom("conn-c")
	b.JoinOrReconnect("conn-c", "carl")

	if got := hub.PlayerCount(); got != 3 {
		t.Fatalf("expected 3 players, got %d", got)
	}
}
