package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/dalemusser/quickmatch/internal/app/store/storage"
	"github.com/dalemusser/quickmatch/internal/domain/models"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "quickmatch.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close(context.Background()) })
	return store
}

func newMeeting(t *testing.T, title, location string) models.Meeting {
	t.Helper()
	m, err := models.NewMeeting(models.MeetingParams{
		OrganizerID: "org-1",
		Title:       title,
		Location:    location,
	}, time.Now())
	if err != nil {
		t.Fatalf("NewMeeting: %v", err)
	}
	return m
}

func insert(t *testing.T, store *Store, m models.Meeting) {
	t.Helper()
	err := store.WithTx(context.Background(), func(ctx context.Context, tx storage.Tx) error {
		return tx.InsertMeeting(ctx, m)
	})
	if err != nil {
		t.Fatalf("insert meeting: %v", err)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "quickmatch.db")
	first, err := Open(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	_ = first.Close(context.Background())

	second, err := Open(path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	_ = second.Close(context.Background())
}

func TestMeetingRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	m := newMeeting(t, "Sunday Futsal", "Riverside Park")
	insert(t, store, m)

	got, err := store.GetMeeting(context.Background(), m.ID)
	if err != nil {
		t.Fatalf("GetMeeting: %v", err)
	}
	if got.Title != m.Title || got.TitleCI != m.TitleCI || got.Location != m.Location {
		t.Errorf("got %+v, want %+v", got, m)
	}
	if got.Category != models.CategoryDefault || got.Status != models.StatusDefault {
		t.Errorf("enums = %q/%q", got.Category, got.Status)
	}
	if !got.CanEvaluate {
		t.Error("CanEvaluate should round-trip true")
	}
	if !got.CreatedAt.Equal(m.CreatedAt.Truncate(time.Millisecond)) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, m.CreatedAt)
	}
}

func TestGetMeetingNotFound(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	_, err := store.GetMeeting(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestInsertMemberDuplicate(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	m := newMeeting(t, "Run club", "Harbor")
	insert(t, store, m)

	ctx := context.Background()
	add := func() error {
		return store.WithTx(ctx, func(ctx context.Context, tx storage.Tx) error {
			return tx.InsertMember(ctx, models.MeetingMember{MeetingID: m.ID, UserID: "u1"})
		})
	}
	if err := add(); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if err := add(); !errors.Is(err, storage.ErrDuplicate) {
		t.Fatalf("second add err = %v, want ErrDuplicate", err)
	}

	n, err := store.CountMembers(ctx, m.ID)
	if err != nil {
		t.Fatalf("CountMembers: %v", err)
	}
	if n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
	ok, err := store.IsMember(ctx, m.ID, "u1")
	if err != nil || !ok {
		t.Errorf("IsMember = %v, %v; want true", ok, err)
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	m := newMeeting(t, "Bouldering", "Gym")
	boom := errors.New("boom")

	err := store.WithTx(context.Background(), func(ctx context.Context, tx storage.Tx) error {
		if err := tx.InsertMeeting(ctx, m); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if _, err := store.GetMeeting(context.Background(), m.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("meeting survived rollback: err = %v", err)
	}
}

func TestRoomUsersAreIdempotent(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	m := newMeeting(t, "Tennis doubles", "Court 4")
	insert(t, store, m)
	ctx := context.Background()

	err := store.WithTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		return tx.InsertRoom(ctx, models.ChatRoom{MeetingID: m.ID, Name: m.RoomName(), HostID: m.OrganizerID})
	})
	if err != nil {
		t.Fatalf("InsertRoom: %v", err)
	}

	var changes []bool
	err = store.WithTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		for _, user := range []string{"a", "a", "b"} {
			changed, err := tx.AddRoomUser(ctx, m.ID, user)
			if err != nil {
				return err
			}
			changes = append(changes, changed)
		}
		changed, err := tx.RemoveRoomUser(ctx, m.ID, "zzz")
		changes = append(changes, changed)
		return err
	})
	if err != nil {
		t.Fatalf("roster updates: %v", err)
	}
	want := []bool{true, false, true, false}
	for i := range want {
		if changes[i] != want[i] {
			t.Errorf("change[%d] = %v, want %v", i, changes[i], want[i])
		}
	}

	room, err := store.GetRoom(ctx, m.ID)
	if err != nil {
		t.Fatalf("GetRoom: %v", err)
	}
	if room.Name != "Tennis doubles_chatroom" {
		t.Errorf("name = %q", room.Name)
	}
	if len(room.CurrentUsers) != 2 || room.CurrentUsers[0] != "a" || room.CurrentUsers[1] != "b" {
		t.Errorf("users = %v, want [a b]", room.CurrentUsers)
	}
}

func TestAddRoomUserWithoutRoom(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	m := newMeeting(t, "Hike", "North trail")
	insert(t, store, m)

	err := store.WithTx(context.Background(), func(ctx context.Context, tx storage.Tx) error {
		_, err := tx.AddRoomUser(ctx, m.ID, "a")
		return err
	})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSearchMeetings(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	a := newMeeting(t, "Morning Futsal", "Seoul Forest")
	b := newMeeting(t, "Evening Run", "Han River")
	c := newMeeting(t, "100%_fun", "Gym")
	c.Category = models.CategoryClimbing
	c.TitleCI = "100%_fun"
	for _, m := range []models.Meeting{a, b, c} {
		insert(t, store, m)
	}

	tests := []struct {
		name   string
		filter storage.SearchFilter
		want   []string
	}{
		{"no filter", storage.SearchFilter{}, []string{a.ID, b.ID, c.ID}},
		{"title term", storage.SearchFilter{Terms: []string{"futsal"}}, []string{a.ID}},
		{"location term", storage.SearchFilter{Terms: []string{"river"}}, []string{b.ID}},
		{"terms are OR'd", storage.SearchFilter{Terms: []string{"futsal", "river"}}, []string{a.ID, b.ID}},
		{"category", storage.SearchFilter{Category: models.CategoryClimbing}, []string{c.ID}},
		{"wildcards are literal", storage.SearchFilter{Terms: []string{"%_"}}, []string{c.ID}},
		{"no match", storage.SearchFilter{Terms: []string{"chess"}}, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := store.SearchMeetings(context.Background(), tc.filter)
			if err != nil {
				t.Fatalf("SearchMeetings: %v", err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("got %d meetings, want %d", len(got), len(tc.want))
			}
			want := make(map[string]bool, len(tc.want))
			for _, id := range tc.want {
				want[id] = true
			}
			for _, m := range got {
				if !want[m.ID] {
					t.Errorf("unexpected meeting %q", m.Title)
				}
			}
		})
	}
}

func TestUsersAndActivityPoints(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()

	err := store.WithTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		if err := tx.EnsureUser(ctx, models.User{ID: "u1", Name: "Kim"}); err != nil {
			return err
		}
		if err := tx.AddActivityPoints(ctx, "u1", 3); err != nil {
			return err
		}
		// Existing profiles are left untouched.
		return tx.EnsureUser(ctx, models.User{ID: "u1", Name: "Someone else"})
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}

	u, err := store.GetUser(ctx, "u1")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if u.Name != "Kim" || u.ActivityPoint != 3 {
		t.Errorf("user = %+v", u)
	}

	err = store.WithTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		return tx.AddActivityPoints(ctx, "ghost", 3)
	})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
