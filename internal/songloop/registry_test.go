package songloop

import (
	"strings"
	"testing"

	"github.com/songloop-games/songloop/internal/songloop/room"
)

func testRegistry() *Registry {
	return NewRegistry(RegistryConfig{})
}

func TestCreateAndJoin(t *testing.T) {
	t.Parallel()

	rg := testRegistry()

	r, err := rg.CreateRoom("a", "Alice", CreateParams{Settings: room.DefaultSettings()})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	code := r.ID()
	if code == "" || code != strings.ToUpper(code) {
		t.Fatalf("expected an uppercase join code, got %q", code)
	}

	if _, err := rg.CreateRoom("a", "Alice", CreateParams{Settings: room.DefaultSettings()}); err == nil {
		t.Fatal("expected ALREADY_IN_ROOM for a seated creator")
	} else if room.Reason(err) != room.CodeAlreadyInRoom {
		t.Fatalf("unexpected code %s", room.Reason(err))
	}

	joined, err := rg.JoinRoom("b", strings.ToLower(code), "Bob", "")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if joined != r {
		t.Fatal("join must land in the created room")
	}
	if got, ok := rg.Lookup("b"); !ok || got != r {
		t.Fatal("lookup must resolve the joined connection")
	}

	if _, err := rg.JoinRoom("c", "NOPE42", "Carol", ""); err == nil {
		t.Fatal("expected ROOM_NOT_FOUND")
	} else if room.Reason(err) != room.CodeRoomNotFound {
		t.Fatalf("unexpected code %s", room.Reason(err))
	}
}

func TestLeaveUnseatsAndDissolves(t *testing.T) {
	t.Parallel()

	rg := testRegistry()

	r, err := rg.CreateRoom("a", "Alice", CreateParams{Settings: room.DefaultSettings()})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := rg.JoinRoom("b", r.ID(), "Bob", ""); err != nil {
		t.Fatalf("join: %v", err)
	}

	code, res, err := rg.LeaveCurrent("b")
	if err != nil {
		t.Fatalf("leave: %v", err)
	}
	if code != r.ID() || res.Dissolved {
		t.Fatalf("unexpected leave result %q %+v", code, res)
	}
	if _, ok := rg.Lookup("b"); ok {
		t.Fatal("b must be unseated after leaving")
	}

	// b can immediately join another room
	if _, err := rg.CreateRoom("b", "Bob", CreateParams{Settings: room.DefaultSettings()}); err != nil {
		t.Fatalf("create after leave: %v", err)
	}

	_, res, err = rg.LeaveCurrent("a")
	if err != nil {
		t.Fatalf("leave: %v", err)
	}
	if !res.Dissolved {
		t.Fatal("last leave must dissolve the room")
	}
	if _, ok := rg.Get(r.ID()); ok {
		t.Fatal("a dissolved room must drop out of the registry")
	}

	if _, _, err := rg.LeaveCurrent("a"); err == nil {
		t.Fatal("expected NOT_IN_ROOM")
	}
}

func TestKickUnseatsTarget(t *testing.T) {
	t.Parallel()

	rg := testRegistry()

	r, err := rg.CreateRoom("a", "Alice", CreateParams{Settings: room.DefaultSettings()})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := rg.JoinRoom("b", r.ID(), "Bob", ""); err != nil {
		t.Fatalf("join: %v", err)
	}

	kickedID, _, err := rg.Kick("a", "bob")
	if err != nil {
		t.Fatalf("kick: %v", err)
	}
	if kickedID != "b" {
		t.Fatalf("expected kicked id b, got %q", kickedID)
	}
	if _, ok := rg.Lookup("b"); ok {
		t.Fatal("the kicked connection must be unseated")
	}
}

func TestListPublicSkipsPrivate(t *testing.T) {
	t.Parallel()

	rg := testRegistry()

	pub, err := rg.CreateRoom("a", "Alice", CreateParams{Name: "open mic", Settings: room.DefaultSettings()})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := rg.CreateRoom("b", "Bob", CreateParams{
		Private:  true,
		Password: "hush",
		Settings: room.DefaultSettings(),
	}); err != nil {
		t.Fatalf("create private: %v", err)
	}

	listings := rg.ListPublic()
	if len(listings) != 1 {
		t.Fatalf("expected one public listing, got %d", len(listings))
	}
	if listings[0].Code != pub.ID() || listings[0].Name != "open mic" {
		t.Fatalf("unexpected listing %+v", listings[0])
	}
	if listings[0].PlayerCount != 1 {
		t.Fatalf("expected one seated player, got %d", listings[0].PlayerCount)
	}

	if rg.RoomCount() != 2 {
		t.Fatalf("expected 2 rooms tracked, got %d", rg.RoomCount())
	}
}
