// Copyright 2026 The Quill Authors
// SPDX-License-Identifier: Apache-2.0

package postui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/quill-blog/quill/lib/api"
	"github.com/quill-blog/quill/lib/clock"
	"github.com/quill-blog/quill/lib/notify"
	"github.com/quill-blog/quill/lib/session"
)

// fakeBackend records calls and serves canned responses.
type fakeBackend struct {
	posts      []api.Post
	tagPosts   map[string][]api.Post
	users      []api.User
	deleteErr  error
	promoteErr error

	deletedIDs  []int64
	promotedIDs []int64
	demotedIDs  []int64
	tagQueries  []string
}

func (f *fakeBackend) ListPosts(ctx context.Context) ([]api.Post, error) {
	return f.posts, nil
}

func (f *fakeBackend) ListPostsByTag(ctx context.Context, name string) ([]api.Post, error) {
	f.tagQueries = append(f.tagQueries, name)
	return f.tagPosts[name], nil
}

func (f *fakeBackend) DeletePost(ctx context.Context, id int64) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedIDs = append(f.deletedIDs, id)
	return nil
}

func (f *fakeBackend) ListUsers(ctx context.Context) ([]api.User, error) {
	return f.users, nil
}

func (f *fakeBackend) PromoteUser(ctx context.Context, id int64) (*api.User, error) {
	if f.promoteErr != nil {
		return nil, f.promoteErr
	}
	f.promotedIDs = append(f.promotedIDs, id)
	for _, user := range f.users {
		if user.ID == id {
			promoted := user
			promoted.Role = session.RoleAdmin
			return &promoted, nil
		}
	}
	return nil, errors.New("no such user")
}

func (f *fakeBackend) DemoteUser(ctx context.Context, id int64) (*api.User, error) {
	f.demotedIDs = append(f.demotedIDs, id)
	for _, user := range f.users {
		if user.ID == id {
			demoted := user
			demoted.Role = session.RoleUser
			return &demoted, nil
		}
	}
	return nil, errors.New("no such user")
}

func testModel(t *testing.T, backend *fakeBackend, identity session.Identity) *Model {
	t.Helper()
	broadcaster := notify.NewBroadcaster(clock.Fake(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))
	model := NewModel(Config{
		Backend:  backend,
		Identity: identity,
		Notices:  broadcaster,
	})
	t.Cleanup(model.Close)
	model.width = 100
	model.height = 30
	return model
}

// run executes a command synchronously and feeds the resulting message
// back into Update, the way the bubbletea loop would.
func run(t *testing.T, model *Model, command tea.Cmd) {
	t.Helper()
	if command == nil {
		t.Fatal("expected a command, got nil")
	}
	message := command()
	if message == nil {
		return
	}
	model.Update(message)
}

func press(model *Model, r rune) tea.Cmd {
	_, command := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	return command
}

func pressKey(model *Model, keyType tea.KeyType) tea.Cmd {
	_, command := model.Update(tea.KeyMsg{Type: keyType})
	return command
}

func fourPosts() []api.Post {
	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	return []api.Post{
		{ID: 1, UserID: 7, Title: "A", Author: "alice", CreatedAt: base},
		{ID: 2, UserID: 7, Title: "B", Author: "alice", CreatedAt: base.Add(time.Hour)},
		{ID: 3, UserID: 7, Title: "X", Author: "alice", CreatedAt: base.Add(2 * time.Hour)},
		{ID: 4, UserID: 7, Title: "C", Author: "alice", CreatedAt: base.Add(3 * time.Hour)},
	}
}

func owner() session.Identity {
	return session.Identity{ID: 7, Username: "alice", Role: session.RoleUser}
}

func TestPostsLoadPopulatesProjection(t *testing.T) {
	backend := &fakeBackend{posts: fourPosts()}
	model := testModel(t, backend, owner())

	model.Update(postsLoadedMsg{posts: backend.posts})

	expectIDs(t, model.visible, 1, 2, 3, 4)
	if model.loading {
		t.Fatal("loading flag should clear after the posts arrive")
	}
}

func TestDeleteRemovesAcknowledgedPostOnly(t *testing.T) {
	backend := &fakeBackend{posts: fourPosts()}
	model := testModel(t, backend, owner())
	model.Update(postsLoadedMsg{posts: backend.posts})

	// Select X (index 2) and request deletion.
	model.selected = 2
	if command := press(model, 'd'); command != nil {
		t.Fatal("delete must wait for confirmation, not dispatch immediately")
	}
	if model.focus != FocusConfirm {
		t.Fatal("delete should open the confirmation modal")
	}

	run(t, model, press(model, 'y'))

	expectIDs(t, model.posts, 1, 2, 4)
	expectIDs(t, model.visible, 1, 2, 4)
	if len(backend.deletedIDs) != 1 || backend.deletedIDs[0] != 3 {
		t.Fatalf("backend saw deletes %v, want [3]", backend.deletedIDs)
	}

	messages := model.notices.Messages()
	if len(messages) == 0 || messages[0].Severity != notify.SeveritySuccess {
		t.Fatalf("expected a success notice, got %v", messages)
	}
}

func TestDeleteDeclinedLeavesEverything(t *testing.T) {
	backend := &fakeBackend{posts: fourPosts()}
	model := testModel(t, backend, owner())
	model.Update(postsLoadedMsg{posts: backend.posts})

	model.selected = 2
	press(model, 'd')
	if command := press(model, 'n'); command != nil {
		t.Fatal("declining must not dispatch anything")
	}

	expectIDs(t, model.posts, 1, 2, 3, 4)
	if model.focus != FocusList {
		t.Fatal("declining should return focus to the list")
	}
	if len(backend.deletedIDs) != 0 {
		t.Fatalf("backend saw deletes %v, want none", backend.deletedIDs)
	}
}

func TestDeleteFailureKeepsCollectionIntact(t *testing.T) {
	backend := &fakeBackend{posts: fourPosts(), deleteErr: errors.New("boom")}
	model := testModel(t, backend, owner())
	model.Update(postsLoadedMsg{posts: backend.posts})

	model.selected = 2
	press(model, 'd')
	run(t, model, press(model, 'y'))

	// The server still has the post, so the local copy keeps it too.
	expectIDs(t, model.posts, 1, 2, 3, 4)
	expectIDs(t, model.visible, 1, 2, 3, 4)

	messages := model.notices.Messages()
	if len(messages) == 0 || messages[0].Severity != notify.SeverityError {
		t.Fatalf("expected an error notice, got %v", messages)
	}
	if !strings.Contains(messages[0].Text, "boom") {
		t.Fatalf("error notice should carry the cause, got %q", messages[0].Text)
	}
	if model.busy {
		t.Fatal("busy flag should clear after the failure")
	}
}

func TestDeleteGatedForOtherUsersPosts(t *testing.T) {
	backend := &fakeBackend{posts: fourPosts()}
	stranger := session.Identity{ID: 99, Username: "mallory", Role: session.RoleUser}
	model := testModel(t, backend, stranger)
	model.Update(postsLoadedMsg{posts: backend.posts})

	press(model, 'd')

	if model.focus == FocusConfirm {
		t.Fatal("non-owner must not reach the confirmation modal")
	}
	messages := model.notices.Messages()
	if len(messages) == 0 || messages[0].Severity != notify.SeverityInfo {
		t.Fatalf("expected an info notice, got %v", messages)
	}
}

func TestSortCycleReordersProjectionNotCollection(t *testing.T) {
	backend := &fakeBackend{posts: fourPosts()}
	model := testModel(t, backend, owner())
	model.Update(postsLoadedMsg{posts: backend.posts})

	press(model, 's') // newest
	expectIDs(t, model.visible, 4, 3, 2, 1)
	expectIDs(t, model.posts, 1, 2, 3, 4)

	press(model, 's') // oldest
	expectIDs(t, model.visible, 1, 2, 3, 4)

	press(model, 's') // back to server order, no refetch
	expectIDs(t, model.visible, 1, 2, 3, 4)
	if model.sortKey != SortDefault {
		t.Fatalf("sort key = %q, want default", model.sortKey)
	}
}

func TestTagFilterFetchesAndMarksHeader(t *testing.T) {
	tagged := []api.Post{{ID: 9, UserID: 7, Title: "tagged", Author: "alice"}}
	backend := &fakeBackend{
		posts:    fourPosts(),
		tagPosts: map[string][]api.Post{"go": tagged},
	}
	model := testModel(t, backend, owner())
	model.Update(postsLoadedMsg{posts: backend.posts})

	press(model, 't')
	if model.focus != FocusTagInput {
		t.Fatal("t should focus the tag prompt")
	}
	press(model, 'g')
	press(model, 'o')
	run(t, model, pressKey(model, tea.KeyEnter))

	if len(backend.tagQueries) != 1 || backend.tagQueries[0] != "go" {
		t.Fatalf("backend saw tag queries %v, want [go]", backend.tagQueries)
	}
	expectIDs(t, model.visible, 9)
	if model.tagFilter != "go" {
		t.Fatalf("tag filter = %q, want go", model.tagFilter)
	}

	// Escape clears the filter and reloads the full list.
	run(t, model, pressKey(model, tea.KeyEscape))
	expectIDs(t, model.visible, 1, 2, 3, 4)
	if model.tagFilter != "" {
		t.Fatalf("tag filter = %q, want empty", model.tagFilter)
	}
}

func TestPromoteReplacesRosterRow(t *testing.T) {
	backend := &fakeBackend{
		users: []api.User{
			{ID: 1, Username: "root", Role: session.RoleAdmin},
			{ID: 5, Username: "bob", Role: session.RoleUser},
		},
	}
	admin := session.Identity{ID: 1, Username: "root", Role: session.RoleAdmin}
	model := testModel(t, backend, admin)
	model.Update(usersLoadedMsg{users: backend.users})
	model.tab = TabUsers

	model.userSelected = 1
	press(model, 'p')
	if model.focus != FocusConfirm {
		t.Fatal("promote should open the confirmation modal")
	}
	run(t, model, press(model, 'y'))

	if model.users[1].Role != session.RoleAdmin {
		t.Fatalf("roster row role = %q, want admin", model.users[1].Role)
	}
	if len(backend.promotedIDs) != 1 || backend.promotedIDs[0] != 5 {
		t.Fatalf("backend saw promotions %v, want [5]", backend.promotedIDs)
	}
}

func TestDemoteOnlyBySuperadmin(t *testing.T) {
	backend := &fakeBackend{
		users: []api.User{
			{ID: 1, Username: "root", Role: session.RoleAdmin},
			{ID: 2, Username: "carol", Role: session.RoleAdmin},
		},
	}
	otherAdmin := session.Identity{ID: 2, Username: "carol", Role: session.RoleAdmin}
	model := testModel(t, backend, otherAdmin)
	model.Update(usersLoadedMsg{users: backend.users})
	model.tab = TabUsers

	model.userSelected = 0
	press(model, 'm')

	if model.focus == FocusConfirm {
		t.Fatal("a non-superadmin must not reach the demote confirmation")
	}
	if len(backend.demotedIDs) != 0 {
		t.Fatalf("backend saw demotions %v, want none", backend.demotedIDs)
	}
}

func TestMutationsAreSerialized(t *testing.T) {
	backend := &fakeBackend{posts: fourPosts()}
	model := testModel(t, backend, owner())
	model.Update(postsLoadedMsg{posts: backend.posts})

	model.selected = 0
	press(model, 'd')
	command := press(model, 'y')
	if command == nil {
		t.Fatal("confirming should dispatch the delete")
	}

	// A second delete while the first is in flight is ignored.
	press(model, 'd')
	if model.focus == FocusConfirm {
		t.Fatal("a mutation in flight must block new confirmations")
	}

	run(t, model, command)
	expectIDs(t, model.posts, 2, 3, 4)
}

func TestNoticeBridgeDeliversSnapshots(t *testing.T) {
	backend := &fakeBackend{posts: fourPosts()}
	model := testModel(t, backend, owner())

	listen := model.listenForNotices()
	model.notices.Success("saved")

	message := listen()
	snapshot, ok := message.(noticesChangedMsg)
	if !ok {
		t.Fatalf("listener produced %T, want noticesChangedMsg", message)
	}
	if len(snapshot) != 1 || snapshot[0].Text != "saved" {
		t.Fatalf("snapshot = %v, want the saved notice", snapshot)
	}

	model.Update(message)
	if len(model.liveNotices) != 1 {
		t.Fatalf("model holds %d notices, want 1", len(model.liveNotices))
	}
}

func TestDismissRemovesNewestNotice(t *testing.T) {
	backend := &fakeBackend{posts: fourPosts()}
	model := testModel(t, backend, owner())

	model.notices.Info("older")
	model.notices.Info("newer")
	model.liveNotices = model.notices.Messages()

	press(model, 'x')

	messages := model.notices.Messages()
	if len(messages) != 1 || messages[0].Text != "older" {
		t.Fatalf("messages = %v, want only the older notice", messages)
	}
}
