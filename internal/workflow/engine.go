package workflow

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/smakfood/smakbot/core/logger"
	tghelpers "github.com/smakfood/smakbot/core/telegram/helpers"
	"github.com/smakfood/smakbot/core/telegram/keyboard"
	"github.com/smakfood/smakbot/internal/catalog"
	"github.com/smakfood/smakbot/internal/metrics"
	"github.com/smakfood/smakbot/internal/nav"
	"github.com/smakfood/smakbot/internal/session"

	tele "gopkg.in/telebot.v4"
)

// Workflow states. A user is in at most one of them at a time; the session
// store enforces last-writer-wins on workflow starts.
const (
	StateAwaitingAddInput      = "awaiting_add_input"
	StateAwaitingEditInput     = "awaiting_edit_input"
	StateAwaitingDeleteConfirm = "awaiting_delete_confirm"
	StateEditMenu              = "edit_menu"
	StateAwaitingPhoto         = "awaiting_photo"
)

// Session data keys. Every state-entry transition stores the keys its state
// handler reads back on the next turn.
const (
	keyContent  = "content"
	keyPage     = "page"
	keyExtra    = "extra"
	keyEntityID = "entity_id"
	keyMode     = "mode"
)

// Sub-edit modes selecting the schema applied to the next text message.
const (
	modeText     = "text"
	modeRelation = "relation"
)

// Edit menu callback actions (companies extend edit with a field-group menu).
const (
	ActionEditText     = "edit-text"
	ActionEditRelation = "edit-rel"
	ActionEditPhoto    = "edit-photo"
)

// Capability is the write side a workflow needs from an entity's backing
// service. All calls are remote and fallible.
type Capability interface {
	Create(ctx context.Context, telegramID int64, fields map[string]string) error
	Update(ctx context.Context, id string, fields map[string]string, telegramID int64) error
	Delete(ctx context.Context, id string, telegramID int64) error
}

type serviceCapability[T any] struct {
	svc *catalog.Service[T]
}

func (a serviceCapability[T]) Create(ctx context.Context, telegramID int64, fields map[string]string) error {
	_, err := a.svc.Create(ctx, telegramID, fields)
	return err
}

func (a serviceCapability[T]) Update(ctx context.Context, id string, fields map[string]string, telegramID int64) error {
	_, err := a.svc.Update(ctx, id, fields, telegramID)
	return err
}

func (a serviceCapability[T]) Delete(ctx context.Context, id string, telegramID int64) error {
	return a.svc.Delete(ctx, id, telegramID)
}

// CapabilityFor adapts a catalog service to the engine's write interface.
func CapabilityFor[T any](svc *catalog.Service[T]) Capability {
	return serviceCapability[T]{svc: svc}
}

// EditMenu extends the edit flow with field-group sub-edits before the
// common commit step.
type EditMenu struct {
	TextSchema     Schema
	RelationSchema Schema
	AllowPhoto     bool
}

// Definition declares one entity type's workflows. Content ties the
// definition to its navigation tokens and content resolver.
type Definition struct {
	Content    string
	Capability Capability
	AddSchema  Schema
	EditSchema Schema
	// EditMenu is optional; when set, action=edit opens the menu instead of
	// prompting directly.
	EditMenu *EditMenu
}

// Options wires the engine's collaborators.
type Options struct {
	Store    session.Store
	Nav      *nav.Controller
	Language func(c tele.Context) string
	// Text resolves a localized string by key.
	Text func(lang, key string) string
}

// Engine drives add/edit/delete workflows for all registered entity types.
type Engine struct {
	store    session.Store
	nav      *nav.Controller
	language func(c tele.Context) string
	text     func(lang, key string) string
	defs     map[string]*Definition
}

// New creates an engine with no registered workflows.
func New(opts Options) *Engine {
	lang := opts.Language
	if lang == nil {
		lang = func(tele.Context) string { return "" }
	}
	text := opts.Text
	if text == nil {
		text = func(_, key string) string { return key }
	}
	return &Engine{
		store:    opts.Store,
		nav:      opts.Nav,
		language: lang,
		text:     text,
		defs:     make(map[string]*Definition),
	}
}

// Register adds an entity workflow definition.
func (e *Engine) Register(def *Definition) {
	if def == nil || def.Content == "" || def.Capability == nil {
		logger.Warn(logger.Background(), "workflow", "register.skip",
			slog.String("reason", "invalid"),
		)
		return
	}
	if _, exists := e.defs[def.Content]; exists {
		logger.Warn(logger.Background(), "workflow", "register.duplicate",
			slog.String("content_type", def.Content),
		)
		return
	}
	e.defs[def.Content] = def
}

// Bind registers the engine's callback routes for every definition.
func (e *Engine) Bind(r *nav.Router) {
	for content := range e.defs {
		actions := []string{
			nav.ActionAdd, nav.ActionEdit, nav.ActionDelete,
			nav.ActionConfirm, nav.ActionCancel,
			ActionEditText, ActionEditRelation, ActionEditPhoto,
		}
		r.Handle(content+".workflow", nav.Match(content, actions...), e.HandleCallback)
	}
}

// HandleCallback advances a workflow from a button press.
func (e *Engine) HandleCallback(c tele.Context, tok nav.Token) error {
	def, ok := e.defs[tok.Content]
	if !ok {
		return c.Respond()
	}

	switch tok.Action {
	case nav.ActionAdd:
		return e.startAdd(c, def, tok)
	case nav.ActionEdit:
		return e.startEdit(c, def, tok)
	case nav.ActionDelete:
		return e.startDelete(c, def, tok)
	case nav.ActionConfirm:
		return e.confirmDelete(c, def, tok)
	case nav.ActionCancel:
		return e.cancel(c, tok)
	case ActionEditText:
		return e.startSubEdit(c, def, tok, modeText)
	case ActionEditRelation:
		return e.startSubEdit(c, def, tok, modeRelation)
	case ActionEditPhoto:
		return e.startPhotoEdit(c, def, tok)
	}
	return c.Respond()
}

func (e *Engine) startAdd(c tele.Context, def *Definition, tok nav.Token) error {
	ctx := tghelpers.BuildContext(c)
	data := tokenData(tok)
	if err := e.store.Set(ctx, c.Sender().ID, StateAwaitingAddInput, data); err != nil {
		return e.failRemote(c, tok, err)
	}

	lang := e.language(c)
	prompt := e.text(lang, "wf.prompt.add") + "\n\n" + def.AddSchema.Prompt()
	if err := e.prompt(c, prompt); err != nil {
		return err
	}
	return c.Respond()
}

// prompt asks for free-text input and forces a reply so the request stays
// visible above the user's keyboard.
func (e *Engine) prompt(c tele.Context, text string) error {
	return tghelpers.SendText(c, text, &tele.SendOptions{ReplyMarkup: keyboard.ForceReply()})
}

func (e *Engine) startEdit(c tele.Context, def *Definition, tok nav.Token) error {
	ctx := tghelpers.BuildContext(c)
	lang := e.language(c)

	if def.EditMenu != nil {
		data := tokenData(tok)
		if err := e.store.Set(ctx, c.Sender().ID, StateEditMenu, data); err != nil {
			return e.failRemote(c, tok, err)
		}
		rows := e.editMenuRows(def, tok, lang)
		if err := c.Send(e.text(lang, "wf.edit.menu"), nav.Markup(rows)); err != nil {
			return err
		}
		return c.Respond()
	}

	data := tokenData(tok)
	if err := e.store.Set(ctx, c.Sender().ID, StateAwaitingEditInput, data); err != nil {
		return e.failRemote(c, tok, err)
	}
	prompt := e.text(lang, "wf.prompt.edit") + "\n\n" + def.EditSchema.Prompt()
	if err := e.prompt(c, prompt); err != nil {
		return err
	}
	return c.Respond()
}

func (e *Engine) editMenuRows(def *Definition, tok nav.Token, lang string) [][]nav.Button {
	base := nav.Token{Content: tok.Content, Page: tok.Page, EntityID: tok.EntityID, Extra: tok.Extra}

	var rows [][]nav.Button
	textTok := base
	textTok.Action = ActionEditText
	rows = append(rows, []nav.Button{{Label: e.text(lang, "wf.edit.menu.text"), Token: textTok}})

	relTok := base
	relTok.Action = ActionEditRelation
	rows = append(rows, []nav.Button{{Label: e.text(lang, "wf.edit.menu.relation"), Token: relTok}})

	if def.EditMenu.AllowPhoto {
		photoTok := base
		photoTok.Action = ActionEditPhoto
		rows = append(rows, []nav.Button{{Label: e.text(lang, "wf.edit.menu.photo"), Token: photoTok}})
	}

	cancelTok := base
	cancelTok.Action = nav.ActionCancel
	rows = append(rows, []nav.Button{{Label: e.text(lang, "wf.cancel"), Token: cancelTok}})
	return rows
}

func (e *Engine) startSubEdit(c tele.Context, def *Definition, tok nav.Token, mode string) error {
	if def.EditMenu == nil {
		return c.Respond()
	}
	ctx := tghelpers.BuildContext(c)
	data := tokenData(tok)
	data[keyMode] = mode
	if err := e.store.Set(ctx, c.Sender().ID, StateAwaitingEditInput, data); err != nil {
		return e.failRemote(c, tok, err)
	}

	lang := e.language(c)
	schema := def.EditMenu.TextSchema
	if mode == modeRelation {
		schema = def.EditMenu.RelationSchema
	}
	prompt := e.text(lang, "wf.prompt.edit") + "\n\n" + schema.Prompt()
	if err := e.prompt(c, prompt); err != nil {
		return err
	}
	return c.Respond()
}

func (e *Engine) startPhotoEdit(c tele.Context, def *Definition, tok nav.Token) error {
	if def.EditMenu == nil || !def.EditMenu.AllowPhoto {
		return c.Respond()
	}
	ctx := tghelpers.BuildContext(c)
	if err := e.store.Set(ctx, c.Sender().ID, StateAwaitingPhoto, tokenData(tok)); err != nil {
		return e.failRemote(c, tok, err)
	}
	if err := e.prompt(c, e.text(e.language(c), "wf.prompt.photo")); err != nil {
		return err
	}
	return c.Respond()
}

func (e *Engine) startDelete(c tele.Context, def *Definition, tok nav.Token) error {
	ctx := tghelpers.BuildContext(c)
	if err := e.store.Set(ctx, c.Sender().ID, StateAwaitingDeleteConfirm, tokenData(tok)); err != nil {
		return e.failRemote(c, tok, err)
	}

	lang := e.language(c)
	confirmTok := nav.Token{Content: tok.Content, Action: nav.ActionConfirm, Page: tok.Page, EntityID: tok.EntityID, Extra: tok.Extra}
	cancelTok := nav.Token{Content: tok.Content, Action: nav.ActionCancel, Page: tok.Page, Extra: tok.Extra}
	rows := [][]nav.Button{{
		{Label: e.text(lang, "wf.confirm.yes"), Token: confirmTok},
		{Label: e.text(lang, "wf.confirm.no"), Token: cancelTok},
	}}
	if err := c.Edit(e.text(lang, "wf.confirm.delete"), nav.Markup(rows)); err != nil {
		if sendErr := c.Send(e.text(lang, "wf.confirm.delete"), nav.Markup(rows)); sendErr != nil {
			return sendErr
		}
	}
	return c.Respond()
}

func (e *Engine) confirmDelete(c tele.Context, def *Definition, tok nav.Token) error {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID

	err := def.Capability.Delete(ctx, tok.EntityID, userID)
	if clearErr := e.store.Clear(ctx, userID); clearErr != nil {
		logger.Warn(ctx, "workflow", "session.clear.fail",
			slog.String("err", clearErr.Error()),
		)
	}
	if err != nil {
		metrics.CountWorkflow(tok.Content, nav.ActionDelete, metrics.OutcomeRemoteErr)
		logger.Warn(ctx, "workflow", "delete.fail",
			slog.String("content_type", tok.Content),
			slog.String("entity_id", tok.EntityID),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
		return c.Respond(&tele.CallbackResponse{
			Text:      e.text(e.language(c), "wf.error.generic"),
			ShowAlert: true,
		})
	}

	metrics.CountWorkflow(tok.Content, nav.ActionDelete, metrics.OutcomeCommitted)
	logger.Info(ctx, "workflow", "delete.ok",
		slog.String("content_type", tok.Content),
		slog.String("entity_id", tok.EntityID),
	)
	return e.rerenderList(c, tok, false)
}

func (e *Engine) cancel(c tele.Context, tok nav.Token) error {
	ctx := tghelpers.BuildContext(c)
	if err := e.store.Clear(ctx, c.Sender().ID); err != nil {
		logger.Warn(ctx, "workflow", "session.clear.fail",
			slog.String("err", err.Error()),
		)
	}
	metrics.CountWorkflow(tok.Content, nav.ActionCancel, metrics.OutcomeCancelled)
	return e.rerenderList(c, tok, false)
}

// InProgress reports whether the sender has an active workflow session.
// Consulted by the message router on every inbound text.
func (e *Engine) InProgress(c tele.Context) bool {
	sender := c.Sender()
	if sender == nil {
		return false
	}
	sess, ok, err := e.store.Get(tghelpers.BuildContext(c), sender.ID)
	return err == nil && ok && sess.State != ""
}

// HandleText advances the active workflow with the user's free-text message.
func (e *Engine) HandleText(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID

	sess, ok, err := e.store.Get(ctx, userID)
	if err != nil || !ok {
		return nil
	}
	def, okDef := e.defs[sess.Data[keyContent]]
	if !okDef {
		return e.store.Clear(ctx, userID)
	}

	lang := e.language(c)
	switch sess.State {
	case StateAwaitingAddInput:
		return e.commitText(c, def, sess, def.AddSchema, false)
	case StateAwaitingEditInput:
		schema, allowEmpty := e.editSchema(def, sess)
		return e.commitText(c, def, sess, schema, allowEmpty)
	case StateAwaitingPhoto:
		return e.prompt(c, e.text(lang, "wf.prompt.photo"))
	case StateEditMenu, StateAwaitingDeleteConfirm:
		// waiting on a button press, not text
		return tghelpers.SendText(c, e.text(lang, "wf.use.buttons"))
	}
	return nil
}

func (e *Engine) editSchema(def *Definition, sess session.Session) (Schema, bool) {
	if def.EditMenu != nil {
		switch sess.Data[keyMode] {
		case modeRelation:
			return def.EditMenu.RelationSchema, true
		case modeText:
			return def.EditMenu.TextSchema, true
		}
	}
	return def.EditSchema, true
}

func (e *Engine) commitText(c tele.Context, def *Definition, sess session.Session, schema Schema, allowEmpty bool) error {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID
	lang := e.language(c)
	action := stateAction(sess.State)

	fields, err := ParseFields(c.Text(), schema, allowEmpty)
	if err != nil {
		// state survives so the user can retry
		metrics.CountWorkflow(def.Content, action, metrics.OutcomeParseFail)
		logger.Debug(ctx, "workflow", "input.parse.fail",
			slog.String("content_type", def.Content),
			slog.String("state", sess.State),
			slog.String("err", err.Error()),
		)
		return e.prompt(c, e.text(lang, "wf.error.parse")+"\n\n"+schema.Prompt())
	}

	if sess.State == StateAwaitingAddInput {
		err = def.Capability.Create(ctx, userID, fields)
	} else {
		err = def.Capability.Update(ctx, sess.Data[keyEntityID], fields, userID)
	}

	if clearErr := e.store.Clear(ctx, userID); clearErr != nil {
		logger.Warn(ctx, "workflow", "session.clear.fail",
			slog.String("err", clearErr.Error()),
		)
	}
	if err != nil {
		metrics.CountWorkflow(def.Content, action, metrics.OutcomeRemoteErr)
		logger.Warn(ctx, "workflow", "commit.fail",
			slog.String("content_type", def.Content),
			slog.String("state", sess.State),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
		return tghelpers.SendText(c, e.text(lang, "wf.error.generic"))
	}

	metrics.CountWorkflow(def.Content, action, metrics.OutcomeCommitted)
	logger.Info(ctx, "workflow", "commit.ok",
		slog.String("content_type", def.Content),
		slog.String("state", sess.State),
	)
	return e.rerenderList(c, sessionToken(sess), true)
}

// HandlePhoto commits a photo upload for workflows awaiting one.
func (e *Engine) HandlePhoto(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID

	sess, ok, err := e.store.Get(ctx, userID)
	if err != nil || !ok || sess.State != StateAwaitingPhoto {
		return nil
	}
	def, okDef := e.defs[sess.Data[keyContent]]
	if !okDef {
		return e.store.Clear(ctx, userID)
	}

	lang := e.language(c)
	photo := c.Message().Photo
	if photo == nil || photo.FileID == "" {
		return e.prompt(c, e.text(lang, "wf.prompt.photo"))
	}

	err = def.Capability.Update(ctx, sess.Data[keyEntityID], map[string]string{"photo": photo.FileID}, userID)
	if clearErr := e.store.Clear(ctx, userID); clearErr != nil {
		logger.Warn(ctx, "workflow", "session.clear.fail",
			slog.String("err", clearErr.Error()),
		)
	}
	if err != nil {
		metrics.CountWorkflow(def.Content, nav.ActionEdit, metrics.OutcomeRemoteErr)
		return tghelpers.SendText(c, e.text(lang, "wf.error.generic"))
	}

	metrics.CountWorkflow(def.Content, nav.ActionEdit, metrics.OutcomeCommitted)
	return e.rerenderList(c, sessionToken(sess), true)
}

// rerenderList brings the user back to the paginated list the workflow
// started from. forceSend is used when there is no list message to edit.
func (e *Engine) rerenderList(c tele.Context, tok nav.Token, forceSend bool) error {
	listTok := nav.Token{
		Content: tok.Content,
		Action:  nav.ActionNav,
		Page:    tok.Page,
		Extra:   tok.Extra,
	}
	if listTok.Page < 1 {
		listTok.Page = 1
	}
	return e.nav.Navigate(tghelpers.BuildContext(c), nav.NewMessenger(c), listTok, e.language(c), forceSend)
}

func (e *Engine) failRemote(c tele.Context, tok nav.Token, err error) error {
	ctx := tghelpers.BuildContext(c)
	logger.Warn(ctx, "workflow", "session.store.fail",
		slog.String("content_type", tok.Content),
		slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
	)
	return c.Respond(&tele.CallbackResponse{
		Text:      e.text(e.language(c), "wf.error.generic"),
		ShowAlert: true,
	})
}

func tokenData(tok nav.Token) map[string]string {
	data := map[string]string{
		keyContent: tok.Content,
		keyPage:    strconv.Itoa(tok.Page),
	}
	if tok.EntityID != "" {
		data[keyEntityID] = tok.EntityID
	}
	if tok.Extra != "" {
		data[keyExtra] = tok.Extra
	}
	return data
}

func sessionToken(sess session.Session) nav.Token {
	page, _ := strconv.Atoi(sess.Data[keyPage])
	return nav.Token{
		Content:  sess.Data[keyContent],
		Page:     page,
		EntityID: sess.Data[keyEntityID],
		Extra:    sess.Data[keyExtra],
	}
}

func stateAction(state string) string {
	if state == StateAwaitingAddInput {
		return nav.ActionAdd
	}
	return nav.ActionEdit
}
