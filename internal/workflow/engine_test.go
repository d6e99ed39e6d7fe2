package workflow

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/smakfood/smakbot/internal/nav"
	"github.com/smakfood/smakbot/internal/session"

	tele "gopkg.in/telebot.v4"
)

// fakeTeleCtx implements the slice of tele.Context the engine touches.
// Unimplemented methods panic via the embedded nil interface, which is
// exactly what a test should do if the engine starts calling them.
type fakeTeleCtx struct {
	tele.Context

	text   string
	photo  *tele.Photo
	sender *tele.User
	store  map[string]interface{}

	sent      []string
	edited    []string
	responses []*tele.CallbackResponse
}

func newFakeCtx(userID int64, text string) *fakeTeleCtx {
	return &fakeTeleCtx{
		text:   text,
		sender: &tele.User{ID: userID},
		store:  map[string]interface{}{},
	}
}

func (f *fakeTeleCtx) Sender() *tele.User       { return f.sender }
func (f *fakeTeleCtx) Chat() *tele.Chat         { return &tele.Chat{ID: f.sender.ID} }
func (f *fakeTeleCtx) Update() tele.Update      { return tele.Update{ID: 100} }
func (f *fakeTeleCtx) Callback() *tele.Callback { return nil }
func (f *fakeTeleCtx) Text() string             { return f.text }
func (f *fakeTeleCtx) Message() *tele.Message   { return &tele.Message{Photo: f.photo} }

func (f *fakeTeleCtx) Get(key string) interface{}    { return f.store[key] }
func (f *fakeTeleCtx) Set(key string, v interface{}) { f.store[key] = v }

func (f *fakeTeleCtx) Send(what interface{}, opts ...interface{}) error {
	if s, ok := what.(string); ok {
		f.sent = append(f.sent, s)
	}
	return nil
}

func (f *fakeTeleCtx) Edit(what interface{}, opts ...interface{}) error {
	if s, ok := what.(string); ok {
		f.edited = append(f.edited, s)
	}
	return nil
}

func (f *fakeTeleCtx) Respond(resp ...*tele.CallbackResponse) error {
	if len(resp) == 0 {
		f.responses = append(f.responses, &tele.CallbackResponse{})
	} else {
		f.responses = append(f.responses, resp...)
	}
	return nil
}

type fakeCapability struct {
	createErr error
	updateErr error
	deleteErr error

	created []map[string]string
	updated []map[string]string
	deleted []string
}

func (f *fakeCapability) Create(_ context.Context, _ int64, fields map[string]string) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, fields)
	return nil
}

func (f *fakeCapability) Update(_ context.Context, id string, fields map[string]string, _ int64) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updated = append(f.updated, fields)
	return nil
}

func (f *fakeCapability) Delete(_ context.Context, id string, _ int64) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func testEngine(t *testing.T, cap *fakeCapability) (*Engine, *session.MemoryStore) {
	t.Helper()

	reg := nav.NewRegistry()
	reg.Register("admin-country", func(ctx context.Context, page int, lang, extra string) (nav.View, error) {
		return nav.View{Caption: "country list", TotalPages: 2}, nil
	})
	ctl := nav.NewController(reg, nav.ControllerOptions{})

	store := session.NewMemoryStore(0)
	eng := New(Options{Store: store, Nav: ctl})
	eng.Register(&Definition{
		Content:    "admin-country",
		Capability: cap,
		AddSchema:  productTitleSchema,
		EditSchema: productTitleSchema,
	})
	return eng, store
}

func TestAddWorkflowHappyPath(t *testing.T) {
	cap := &fakeCapability{}
	eng, store := testEngine(t, cap)
	ctx := context.Background()

	c := newFakeCtx(42, "")
	tok := nav.Token{Content: "admin-country", Action: nav.ActionAdd, Page: 2}
	if err := eng.HandleCallback(c, tok); err != nil {
		t.Fatalf("HandleCallback(add): %v", err)
	}

	sess, ok, _ := store.Get(ctx, 42)
	if !ok || sess.State != StateAwaitingAddInput {
		t.Fatalf("session after add start: ok=%v state=%q", ok, sess.State)
	}
	if len(c.sent) != 1 || !strings.Contains(c.sent[0], "Title ua:") {
		t.Fatalf("prompt not sent: %+v", c.sent)
	}
	if !eng.InProgress(c) {
		t.Fatalf("InProgress should be true while awaiting input")
	}

	c2 := newFakeCtx(42, "Title ua: Україна; Title en: Ukraine")
	if err := eng.HandleText(c2); err != nil {
		t.Fatalf("HandleText: %v", err)
	}
	if len(cap.created) != 1 || cap.created[0]["title_en"] != "Ukraine" {
		t.Fatalf("create not invoked with parsed fields: %+v", cap.created)
	}
	if _, ok, _ := store.Get(ctx, 42); ok {
		t.Fatalf("session should be cleared after commit")
	}
	// completed workflows re-render the list as a fresh message
	if len(c2.sent) != 1 || c2.sent[0] != "country list" {
		t.Fatalf("list not re-rendered: %+v", c2.sent)
	}
}

func TestAddWorkflowParseFailureKeepsState(t *testing.T) {
	cap := &fakeCapability{}
	eng, store := testEngine(t, cap)
	ctx := context.Background()

	c := newFakeCtx(42, "")
	_ = eng.HandleCallback(c, nav.Token{Content: "admin-country", Action: nav.ActionAdd, Page: 1})

	bad := newFakeCtx(42, "Title ua: Україна")
	if err := eng.HandleText(bad); err != nil {
		t.Fatalf("HandleText: %v", err)
	}
	if len(cap.created) != 0 {
		t.Fatalf("create must not run on parse failure")
	}
	sess, ok, _ := store.Get(ctx, 42)
	if !ok || sess.State != StateAwaitingAddInput {
		t.Fatalf("state should survive a parse failure: ok=%v state=%q", ok, sess.State)
	}

	retry := newFakeCtx(42, "Title ua: Україна; Title en: Ukraine")
	if err := eng.HandleText(retry); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if len(cap.created) != 1 {
		t.Fatalf("retry after re-prompt should commit")
	}
}

func TestEditWorkflowRemoteFailureClearsSession(t *testing.T) {
	cap := &fakeCapability{updateErr: errors.New("catalog: 503")}
	eng, store := testEngine(t, cap)
	ctx := context.Background()

	c := newFakeCtx(42, "")
	_ = eng.HandleCallback(c, nav.Token{Content: "admin-country", Action: nav.ActionEdit, Page: 1, EntityID: "7"})

	input := newFakeCtx(42, "Title en: Ukraine")
	if err := eng.HandleText(input); err != nil {
		t.Fatalf("HandleText: %v", err)
	}
	if _, ok, _ := store.Get(ctx, 42); ok {
		t.Fatalf("remote failure must clear the session")
	}
	if len(input.sent) != 1 || input.sent[0] != "wf.error.generic" {
		t.Fatalf("generic error not sent: %+v", input.sent)
	}
	if eng.InProgress(input) {
		t.Fatalf("no workflow should remain in progress")
	}
}

func TestDeleteConfirmAlreadyDeleted(t *testing.T) {
	cap := &fakeCapability{deleteErr: errors.New("catalog: delete: status 404: catalog: not found")}
	eng, store := testEngine(t, cap)
	ctx := context.Background()

	c := newFakeCtx(42, "")
	_ = eng.HandleCallback(c, nav.Token{Content: "admin-country", Action: nav.ActionDelete, Page: 3, EntityID: "9"})
	if sess, ok, _ := store.Get(ctx, 42); !ok || sess.State != StateAwaitingDeleteConfirm {
		t.Fatalf("confirm state not entered")
	}
	if len(c.edited) != 1 {
		t.Fatalf("confirmation keyboard not shown: %+v", c.edited)
	}

	confirm := newFakeCtx(42, "")
	err := eng.HandleCallback(confirm, nav.Token{Content: "admin-country", Action: nav.ActionConfirm, Page: 3, EntityID: "9"})
	if err != nil {
		t.Fatalf("HandleCallback(confirm): %v", err)
	}
	if len(confirm.responses) != 1 || !confirm.responses[0].ShowAlert {
		t.Fatalf("remote failure should surface as an alert: %+v", confirm.responses)
	}
	if _, ok, _ := store.Get(ctx, 42); ok {
		t.Fatalf("session must be cleared after the failed confirm")
	}
	if eng.InProgress(confirm) {
		t.Fatalf("a subsequent action should start from idle")
	}
}

func TestDeleteConfirmSuccessRerendersList(t *testing.T) {
	cap := &fakeCapability{}
	eng, store := testEngine(t, cap)
	ctx := context.Background()

	c := newFakeCtx(42, "")
	_ = eng.HandleCallback(c, nav.Token{Content: "admin-country", Action: nav.ActionDelete, Page: 1, EntityID: "5"})

	confirm := newFakeCtx(42, "")
	if err := eng.HandleCallback(confirm, nav.Token{Content: "admin-country", Action: nav.ActionConfirm, Page: 1, EntityID: "5"}); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if len(cap.deleted) != 1 || cap.deleted[0] != "5" {
		t.Fatalf("delete not invoked: %+v", cap.deleted)
	}
	if _, ok, _ := store.Get(ctx, 42); ok {
		t.Fatalf("session should be cleared")
	}
	if len(confirm.edited) != 1 || confirm.edited[0] != "country list" {
		t.Fatalf("list not re-rendered in place: %+v", confirm.edited)
	}
}

func TestCancelReturnsToList(t *testing.T) {
	cap := &fakeCapability{}
	eng, store := testEngine(t, cap)
	ctx := context.Background()

	c := newFakeCtx(42, "")
	_ = eng.HandleCallback(c, nav.Token{Content: "admin-country", Action: nav.ActionDelete, Page: 2, EntityID: "5"})

	cancel := newFakeCtx(42, "")
	if err := eng.HandleCallback(cancel, nav.Token{Content: "admin-country", Action: nav.ActionCancel, Page: 2}); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if len(cap.deleted) != 0 {
		t.Fatalf("cancel must not mutate")
	}
	if _, ok, _ := store.Get(ctx, 42); ok {
		t.Fatalf("cancel should clear the session")
	}
	if len(cancel.edited) != 1 || cancel.edited[0] != "country list" {
		t.Fatalf("list not restored: %+v", cancel.edited)
	}
}

func TestNewWorkflowOverwritesOldSession(t *testing.T) {
	cap := &fakeCapability{}
	eng, store := testEngine(t, cap)
	ctx := context.Background()

	c := newFakeCtx(42, "")
	_ = eng.HandleCallback(c, nav.Token{Content: "admin-country", Action: nav.ActionEdit, Page: 1, EntityID: "7"})
	_ = eng.HandleCallback(c, nav.Token{Content: "admin-country", Action: nav.ActionAdd, Page: 1})

	sess, ok, _ := store.Get(ctx, 42)
	if !ok || sess.State != StateAwaitingAddInput {
		t.Fatalf("new workflow did not overwrite: %+v", sess)
	}
	if _, stale := sess.Data[keyEntityID]; stale {
		t.Fatalf("stale edit data survived: %+v", sess.Data)
	}
}

func TestCompanyEditMenuFlow(t *testing.T) {
	cap := &fakeCapability{}
	reg := nav.NewRegistry()
	reg.Register("admin-company", func(ctx context.Context, page int, lang, extra string) (nav.View, error) {
		return nav.View{Caption: "company list", TotalPages: 1}, nil
	})
	store := session.NewMemoryStore(0)
	eng := New(Options{Store: store, Nav: nav.NewController(reg, nav.ControllerOptions{})})
	eng.Register(&Definition{
		Content:    "admin-company",
		Capability: cap,
		AddSchema:  productTitleSchema,
		EditSchema: productTitleSchema,
		EditMenu: &EditMenu{
			TextSchema: Schema{
				Labels: map[string]string{"Title:": "title", "Phone:": "phone"},
			},
			RelationSchema: Schema{
				Labels: map[string]string{"Kitchen:": "kitchen_id"},
			},
			AllowPhoto: true,
		},
	})
	ctx := context.Background()

	c := newFakeCtx(42, "")
	if err := eng.HandleCallback(c, nav.Token{Content: "admin-company", Action: nav.ActionEdit, Page: 1, EntityID: "3"}); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if sess, _, _ := store.Get(ctx, 42); sess.State != StateEditMenu {
		t.Fatalf("expected edit menu state, got %q", sess.State)
	}
	if len(c.sent) != 1 {
		t.Fatalf("menu not sent: %+v", c.sent)
	}

	// pick the relation sub-edit, then commit through the common step
	_ = eng.HandleCallback(c, nav.Token{Content: "admin-company", Action: ActionEditRelation, Page: 1, EntityID: "3"})
	if sess, _, _ := store.Get(ctx, 42); sess.State != StateAwaitingEditInput || sess.Data[keyMode] != modeRelation {
		t.Fatalf("relation sub-edit state wrong: %+v", sess)
	}

	input := newFakeCtx(42, "Kitchen: 8")
	if err := eng.HandleText(input); err != nil {
		t.Fatalf("HandleText: %v", err)
	}
	if len(cap.updated) != 1 || cap.updated[0]["kitchen_id"] != "8" {
		t.Fatalf("relation update not committed: %+v", cap.updated)
	}

	// photo sub-edit
	_ = eng.HandleCallback(c, nav.Token{Content: "admin-company", Action: ActionEditPhoto, Page: 1, EntityID: "3"})
	photoCtx := newFakeCtx(42, "")
	photoCtx.photo = &tele.Photo{File: tele.File{FileID: "photo-file-1"}}
	if err := eng.HandlePhoto(photoCtx); err != nil {
		t.Fatalf("HandlePhoto: %v", err)
	}
	if len(cap.updated) != 2 || cap.updated[1]["photo"] != "photo-file-1" {
		t.Fatalf("photo update not committed: %+v", cap.updated)
	}
	if _, ok, _ := store.Get(ctx, 42); ok {
		t.Fatalf("session should be cleared after photo commit")
	}
}
