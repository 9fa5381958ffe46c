// Copyright 2026 The Quill Authors
// SPDX-License-Identifier: Apache-2.0

// Package postui implements the interactive browse view: a bubbletea
// model over the blog's post list and, for admins, the user roster.
// The model keeps a local copy of the server's collections and patches
// it in place after the server acknowledges a mutation; it never
// invents state the server has not confirmed.
package postui

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/quill-blog/quill/lib/api"
	"github.com/quill-blog/quill/lib/notify"
	"github.com/quill-blog/quill/lib/session"
	"github.com/quill-blog/quill/lib/tui"
)

// requestTimeout bounds every backend call issued from the view.
const requestTimeout = 15 * time.Second

// Backend is the slice of the blog API the browse view needs. The live
// implementation wraps api.Client and api.Session; tests substitute a
// fake.
type Backend interface {
	ListPosts(ctx context.Context) ([]api.Post, error)
	ListPostsByTag(ctx context.Context, name string) ([]api.Post, error)
	DeletePost(ctx context.Context, id int64) error
	ListUsers(ctx context.Context) ([]api.User, error)
	PromoteUser(ctx context.Context, id int64) (*api.User, error)
	DemoteUser(ctx context.Context, id int64) (*api.User, error)
}

// liveBackend adapts the API client pair to the Backend interface.
type liveBackend struct {
	client  *api.Client
	session *api.Session
}

// NewBackend builds the live Backend over an anonymous client and an
// authenticated session.
func NewBackend(client *api.Client, apiSession *api.Session) Backend {
	return &liveBackend{client: client, session: apiSession}
}

func (b *liveBackend) ListPosts(ctx context.Context) ([]api.Post, error) {
	return b.client.ListPosts(ctx)
}

func (b *liveBackend) ListPostsByTag(ctx context.Context, name string) ([]api.Post, error) {
	return b.client.ListPostsByTag(ctx, name)
}

func (b *liveBackend) DeletePost(ctx context.Context, id int64) error {
	return b.session.DeletePost(ctx, id)
}

func (b *liveBackend) ListUsers(ctx context.Context) ([]api.User, error) {
	return b.session.ListUsers(ctx)
}

func (b *liveBackend) PromoteUser(ctx context.Context, id int64) (*api.User, error) {
	return b.session.PromoteUser(ctx, id)
}

func (b *liveBackend) DemoteUser(ctx context.Context, id int64) (*api.User, error) {
	return b.session.DemoteUser(ctx, id)
}

// Tab selects which collection the view shows.
type Tab int

const (
	TabPosts Tab = iota
	TabUsers
)

// FocusRegion identifies which part of the view consumes key input.
type FocusRegion int

const (
	// FocusList is the default region: the post list or user roster.
	FocusList FocusRegion = iota
	// FocusDetail is the full-screen reading view of one post.
	FocusDetail
	// FocusTagInput is the tag filter prompt at the footer.
	FocusTagInput
	// FocusConfirm routes all keys to the pending confirmation modal.
	FocusConfirm
)

// actionKind names the mutation a confirmation modal is guarding.
type actionKind int

const (
	actionNone actionKind = iota
	actionDelete
	actionPromote
	actionDemote
)

// Config carries the dependencies for a browse Model.
type Config struct {
	// Backend performs the API calls.
	Backend Backend

	// Identity is the signed-in user, or the zero Identity when
	// browsing anonymously.
	Identity session.Identity

	// Notices receives operation outcomes and feeds the notice
	// overlay. Required.
	Notices *notify.Broadcaster

	// Theme controls colors. Zero value falls back to DefaultTheme.
	Theme tui.Theme

	// Keys controls bindings. Zero value falls back to
	// DefaultKeyMap.
	Keys KeyMap

	// Logger receives debug output. Defaults to slog.Default().
	Logger *slog.Logger
}

// Model is the bubbletea model for the browse view.
type Model struct {
	backend  Backend
	identity session.Identity
	notices  *notify.Broadcaster
	theme    tui.Theme
	keys     KeyMap
	logger   *slog.Logger

	width  int
	height int

	tab   Tab
	focus FocusRegion

	// posts holds the server's order; visible is the sorted
	// projection the list renders. Sorting never touches posts, so
	// cycling back to the default order needs no refetch.
	posts    []api.Post
	visible  []api.Post
	sortKey  SortKey
	selected int

	// tagFilter is the active filter ("" = all posts); tagInput is
	// the in-progress prompt text while FocusTagInput.
	tagFilter string
	tagInput  string

	users        []api.User
	userSelected int

	// detailScroll is the line offset into the rendered post body.
	detailScroll int

	// Live notices, newest first, mirrored from the broadcaster.
	liveNotices []notify.Message
	noticeCh    chan []notify.Message
	unsubscribe func()

	// loading marks a fetch in flight; busy marks a mutation in
	// flight. Mutations are serialized: while busy, the keys that
	// start one are ignored.
	loading bool
	busy    bool

	confirm       tui.ConfirmModal
	pendingAction actionKind
	pendingPostID int64
	pendingUserID int64

	showHelp bool
}

// NewModel builds the browse model and subscribes it to the notice
// broadcaster. Call Close when the program exits to release the
// subscription.
func NewModel(config Config) *Model {
	if config.Theme == (tui.Theme{}) {
		config.Theme = tui.DefaultTheme
	}
	if len(config.Keys.Quit.Keys()) == 0 {
		config.Keys = DefaultKeyMap()
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	model := &Model{
		backend:  config.Backend,
		identity: config.Identity,
		notices:  config.Notices,
		theme:    config.Theme,
		keys:     config.Keys,
		logger:   config.Logger,
		sortKey:  SortDefault,
		noticeCh: make(chan []notify.Message, 16),
	}

	// The listener runs on whatever goroutine mutated the
	// broadcaster (a command goroutine or an expiry timer). It hands
	// the snapshot to the bubbletea loop through the channel; if the
	// buffer is full the oldest pending snapshot is superseded
	// anyway, so dropping is safe.
	model.unsubscribe = config.Notices.Subscribe(func(messages []notify.Message) {
		select {
		case model.noticeCh <- messages:
		default:
		}
	})

	return model
}

// Close releases the broadcaster subscription.
func (m *Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

// --- Messages ---

type postsLoadedMsg struct {
	posts []api.Post
	tag   string
	err   error
}

type usersLoadedMsg struct {
	users []api.User
	err   error
}

type deleteDoneMsg struct {
	id  int64
	err error
}

type userActionDoneMsg struct {
	action string
	id     int64
	user   *api.User
	err    error
}

type noticesChangedMsg []notify.Message

// --- Commands ---

func (m *Model) loadPostsCmd(tag string) tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		var posts []api.Post
		var err error
		if tag == "" {
			posts, err = backend.ListPosts(ctx)
		} else {
			posts, err = backend.ListPostsByTag(ctx, tag)
		}
		return postsLoadedMsg{posts: posts, tag: tag, err: err}
	}
}

func (m *Model) loadUsersCmd() tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		users, err := backend.ListUsers(ctx)
		return usersLoadedMsg{users: users, err: err}
	}
}

func (m *Model) deletePostCmd(id int64) tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return deleteDoneMsg{id: id, err: backend.DeletePost(ctx, id)}
	}
}

func (m *Model) userActionCmd(kind actionKind, id int64) tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		if kind == actionPromote {
			user, err := backend.PromoteUser(ctx, id)
			return userActionDoneMsg{action: "promote", id: id, user: user, err: err}
		}
		user, err := backend.DemoteUser(ctx, id)
		return userActionDoneMsg{action: "demote", id: id, user: user, err: err}
	}
}

// listenForNotices blocks on the notice channel and re-arms itself
// after every delivery, bridging broadcaster callbacks into the
// bubbletea message loop.
func (m *Model) listenForNotices() tea.Cmd {
	ch := m.noticeCh
	return func() tea.Msg {
		return noticesChangedMsg(<-ch)
	}
}

// Init starts the initial fetches and the notice listener.
func (m *Model) Init() tea.Cmd {
	m.loading = true
	commands := []tea.Cmd{m.loadPostsCmd(""), m.listenForNotices()}
	if m.identity.IsAdmin() {
		commands = append(commands, m.loadUsersCmd())
	}
	return tea.Batch(commands...)
}

// Update handles one message.
func (m *Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {

	case tea.WindowSizeMsg:
		m.width = message.Width
		m.height = message.Height
		return m, nil

	case noticesChangedMsg:
		m.liveNotices = []notify.Message(message)
		return m, m.listenForNotices()

	case postsLoadedMsg:
		m.loading = false
		if message.err != nil {
			m.notices.Error("loading posts: " + message.err.Error())
			return m, nil
		}
		m.posts = message.posts
		m.tagFilter = message.tag
		m.rebuildVisible()
		return m, nil

	case usersLoadedMsg:
		if message.err != nil {
			m.notices.Error("loading users: " + message.err.Error())
			return m, nil
		}
		m.users = message.users
		if m.userSelected >= len(m.users) {
			m.userSelected = max(0, len(m.users)-1)
		}
		return m, nil

	case deleteDoneMsg:
		m.busy = false
		if message.err != nil {
			// The local collection stays as it was: the post is
			// still on the server.
			m.notices.Error("delete failed: " + message.err.Error())
			return m, nil
		}
		m.removePostLocally(message.id)
		m.notices.Success("post deleted")
		return m, nil

	case userActionDoneMsg:
		m.busy = false
		if message.err != nil {
			m.notices.Error(message.action + " failed: " + message.err.Error())
			return m, nil
		}
		m.replaceUserLocally(*message.user)
		m.notices.Success(fmt.Sprintf("%s is now %s", message.user.Username, message.user.Role))
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(message)
	}

	return m, nil
}

func (m *Model) handleKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The confirm modal swallows every key until resolved.
	if m.focus == FocusConfirm {
		return m.handleConfirmKey(message)
	}

	if m.focus == FocusTagInput {
		return m.handleTagInputKey(message)
	}

	switch {
	case key.Matches(message, m.keys.Quit):
		m.Close()
		return m, tea.Quit

	case key.Matches(message, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil

	case key.Matches(message, m.keys.DismissMsg):
		if len(m.liveNotices) > 0 {
			m.notices.Remove(m.liveNotices[0].ID)
		}
		return m, nil

	case key.Matches(message, m.keys.NextTab):
		if m.identity.IsAdmin() {
			if m.tab == TabPosts {
				m.tab = TabUsers
			} else {
				m.tab = TabPosts
			}
			m.focus = FocusList
		}
		return m, nil
	}

	if m.focus == FocusDetail {
		return m.handleDetailKey(message)
	}
	if m.tab == TabUsers {
		return m.handleUsersKey(message)
	}
	return m.handlePostsKey(message)
}

func (m *Model) handlePostsKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, m.keys.Up):
		if m.selected > 0 {
			m.selected--
		}

	case key.Matches(message, m.keys.Down):
		if m.selected < len(m.visible)-1 {
			m.selected++
		}

	case key.Matches(message, m.keys.Top):
		m.selected = 0

	case key.Matches(message, m.keys.Bottom):
		m.selected = max(0, len(m.visible)-1)

	case key.Matches(message, m.keys.Open):
		if len(m.visible) > 0 {
			m.focus = FocusDetail
			m.detailScroll = 0
		}

	case key.Matches(message, m.keys.Refresh):
		m.loading = true
		return m, m.loadPostsCmd(m.tagFilter)

	case key.Matches(message, m.keys.CycleSort):
		m.sortKey = m.sortKey.Next()
		m.rebuildVisible()

	case key.Matches(message, m.keys.FilterTag):
		m.focus = FocusTagInput
		m.tagInput = m.tagFilter

	case key.Matches(message, m.keys.Back):
		if m.tagFilter != "" {
			m.loading = true
			return m, m.loadPostsCmd("")
		}

	case key.Matches(message, m.keys.Delete):
		return m.requestDelete()
	}
	return m, nil
}

func (m *Model) handleDetailKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, m.keys.Back):
		m.focus = FocusList
	case key.Matches(message, m.keys.Up):
		if m.detailScroll > 0 {
			m.detailScroll--
		}
	case key.Matches(message, m.keys.Down):
		m.detailScroll++
	case key.Matches(message, m.keys.Top):
		m.detailScroll = 0
	case key.Matches(message, m.keys.Delete):
		return m.requestDelete()
	}
	return m, nil
}

func (m *Model) handleUsersKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, m.keys.Up):
		if m.userSelected > 0 {
			m.userSelected--
		}

	case key.Matches(message, m.keys.Down):
		if m.userSelected < len(m.users)-1 {
			m.userSelected++
		}

	case key.Matches(message, m.keys.Refresh):
		return m, m.loadUsersCmd()

	case key.Matches(message, m.keys.Promote):
		if m.busy || m.userSelected >= len(m.users) {
			return m, nil
		}
		target := m.users[m.userSelected]
		if !CanPromote(m.identity, target) {
			m.notices.Info("cannot promote " + target.Username)
			return m, nil
		}
		m.pendingAction = actionPromote
		m.pendingUserID = target.ID
		m.confirm = tui.NewConfirmModal(
			fmt.Sprintf("Promote %s to admin?", target.Username), m.theme)
		m.focus = FocusConfirm

	case key.Matches(message, m.keys.Demote):
		if m.busy || m.userSelected >= len(m.users) {
			return m, nil
		}
		target := m.users[m.userSelected]
		if !CanDemote(m.identity, target) {
			m.notices.Info("cannot demote " + target.Username)
			return m, nil
		}
		m.pendingAction = actionDemote
		m.pendingUserID = target.ID
		m.confirm = tui.NewConfirmModal(
			fmt.Sprintf("Remove admin role from %s?", target.Username), m.theme)
		m.focus = FocusConfirm
	}
	return m, nil
}

func (m *Model) handleTagInputKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch message.Type {
	case tea.KeyEnter:
		m.focus = FocusList
		tag := m.tagInput
		m.tagInput = ""
		m.loading = true
		m.selected = 0
		return m, m.loadPostsCmd(tag)

	case tea.KeyEscape:
		m.focus = FocusList
		m.tagInput = ""

	case tea.KeyBackspace:
		if len(m.tagInput) > 0 {
			runes := []rune(m.tagInput)
			m.tagInput = string(runes[:len(runes)-1])
		}

	case tea.KeySpace:
		m.tagInput += " "

	case tea.KeyRunes:
		for _, r := range message.Runes {
			if unicode.IsPrint(r) {
				m.tagInput += string(r)
			}
		}
	}
	return m, nil
}

func (m *Model) handleConfirmKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.confirm.Update(message) {
	case tui.ConfirmPending:
		return m, nil

	case tui.ConfirmNo:
		m.focus = FocusList
		m.pendingAction = actionNone
		return m, nil
	}

	// Confirmed: dispatch the pending mutation.
	action := m.pendingAction
	m.pendingAction = actionNone
	m.focus = FocusList
	m.busy = true

	switch action {
	case actionDelete:
		return m, m.deletePostCmd(m.pendingPostID)
	case actionPromote, actionDemote:
		return m, m.userActionCmd(action, m.pendingUserID)
	}
	m.busy = false
	return m, nil
}

// requestDelete opens the confirmation modal for the selected post, if
// the signed-in user may delete it.
func (m *Model) requestDelete() (tea.Model, tea.Cmd) {
	if m.busy || m.selected >= len(m.visible) {
		return m, nil
	}
	post := m.visible[m.selected]
	if !CanModify(m.identity, post) {
		m.notices.Info("you can only delete your own posts")
		return m, nil
	}
	m.pendingAction = actionDelete
	m.pendingPostID = post.ID
	m.confirm = tui.NewConfirmModal(
		fmt.Sprintf("Delete %q?", tui.TruncateWithEllipsis(post.Title, 40)), m.theme)
	m.focus = FocusConfirm
	return m, nil
}

// rebuildVisible recomputes the sorted projection and clamps the
// selection.
func (m *Model) rebuildVisible() {
	m.visible = SortPosts(m.posts, m.sortKey)
	if m.selected >= len(m.visible) {
		m.selected = max(0, len(m.visible)-1)
	}
}

// removePostLocally drops the acknowledged post from the local
// collection by identity, not by position: the projection may have
// reordered since the delete was requested.
func (m *Model) removePostLocally(id int64) {
	filtered := m.posts[:0:0]
	for _, post := range m.posts {
		if post.ID != id {
			filtered = append(filtered, post)
		}
	}
	m.posts = filtered
	m.rebuildVisible()
	if m.focus == FocusDetail && len(m.visible) == 0 {
		m.focus = FocusList
	}
}

// replaceUserLocally swaps the server's updated user object into the
// roster.
func (m *Model) replaceUserLocally(updated api.User) {
	for index, user := range m.users {
		if user.ID == updated.ID {
			m.users[index] = updated
			return
		}
	}
}

// SelectedPost returns the post under the cursor, if any.
func (m *Model) SelectedPost() (api.Post, bool) {
	if m.selected < len(m.visible) {
		return m.visible[m.selected], true
	}
	return api.Post{}, false
}
