package nav

import (
	"context"
	"errors"
	"testing"
)

type fakeMessenger struct {
	responses []string
	edits     []string
	mediaEdit []string
	sends     []string
	lastRows  [][]Button
	editErr   error
}

func (f *fakeMessenger) Respond(text string) error {
	f.responses = append(f.responses, text)
	return nil
}

func (f *fakeMessenger) EditText(caption string, rows [][]Button) error {
	if f.editErr != nil {
		return f.editErr
	}
	f.edits = append(f.edits, caption)
	f.lastRows = rows
	return nil
}

func (f *fakeMessenger) EditMedia(media, caption string, rows [][]Button) error {
	f.mediaEdit = append(f.mediaEdit, media)
	f.lastRows = rows
	return nil
}

func (f *fakeMessenger) Send(media, caption string, rows [][]Button) error {
	f.sends = append(f.sends, caption)
	f.lastRows = rows
	return nil
}

func testController(reg *Registry) *Controller {
	return NewController(reg, ControllerOptions{
		ErrorText: func(string) string { return "oops" },
	})
}

func TestNavigateEditsInPlace(t *testing.T) {
	reg := NewRegistry()
	reg.Register("admin-country", func(ctx context.Context, page int, lang, extra string) (View, error) {
		return View{
			Caption:    "page caption",
			TotalPages: 7,
			ItemRows: [][]Button{{
				{Label: "Ukraine", Token: Token{Content: "admin-country", Action: ActionDetails, Page: page, EntityID: "1"}},
			}},
		}, nil
	})

	m := &fakeMessenger{}
	ctl := testController(reg)
	tok := Token{Content: "admin-country", Action: ActionNav, Page: 2}

	if err := ctl.Navigate(context.Background(), m, tok, "uk", false); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if len(m.edits) != 1 || m.edits[0] != "page caption" {
		t.Fatalf("expected one text edit, got %+v", m.edits)
	}
	if len(m.sends) != 0 {
		t.Fatalf("unexpected send: %+v", m.sends)
	}
	if len(m.responses) != 1 || m.responses[0] != "" {
		t.Fatalf("expected silent ack, got %+v", m.responses)
	}

	// item row first, page controls last
	if len(m.lastRows) != 2 {
		t.Fatalf("expected 2 keyboard rows, got %d", len(m.lastRows))
	}
	if m.lastRows[0][0].Label != "Ukraine" {
		t.Fatalf("item row not first: %+v", m.lastRows[0])
	}
	for _, btn := range m.lastRows[1] {
		if btn.Token.Action != ActionNav || btn.Token.Content != "admin-country" {
			t.Fatalf("page control carries wrong token: %+v", btn.Token)
		}
	}
}

func TestNavigateMediaAndForceSend(t *testing.T) {
	reg := NewRegistry()
	reg.Register("user-product", func(ctx context.Context, page int, lang, extra string) (View, error) {
		return View{Caption: "pizza", Media: "file-id-1", TotalPages: 1}, nil
	})
	ctl := testController(reg)
	tok := Token{Content: "user-product", Action: ActionNav, Page: 1}

	m := &fakeMessenger{}
	if err := ctl.Navigate(context.Background(), m, tok, "en", false); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if len(m.mediaEdit) != 1 || m.mediaEdit[0] != "file-id-1" {
		t.Fatalf("expected media edit, got %+v", m.mediaEdit)
	}

	m = &fakeMessenger{}
	if err := ctl.Navigate(context.Background(), m, tok, "en", true); err != nil {
		t.Fatalf("Navigate force send: %v", err)
	}
	if len(m.sends) != 1 || len(m.edits) != 0 || len(m.mediaEdit) != 0 {
		t.Fatalf("forceSend should send a fresh message: %+v", m)
	}
}

func TestNavigateSinglePageHasNoControlRow(t *testing.T) {
	reg := NewRegistry()
	reg.Register("cart", func(ctx context.Context, page int, lang, extra string) (View, error) {
		return View{Caption: "cart", TotalPages: 1}, nil
	})
	m := &fakeMessenger{}
	ctl := testController(reg)

	if err := ctl.Navigate(context.Background(), m, Token{Content: "cart", Action: ActionNav, Page: 1}, "uk", false); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if len(m.lastRows) != 0 {
		t.Fatalf("expected no keyboard rows, got %+v", m.lastRows)
	}
}

func TestNavigateResolverMissIsSilent(t *testing.T) {
	m := &fakeMessenger{}
	ctl := testController(NewRegistry())

	if err := ctl.Navigate(context.Background(), m, Token{Content: "ghost", Action: ActionNav, Page: 1}, "uk", false); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if len(m.responses) != 1 || m.responses[0] != "" {
		t.Fatalf("expected silent ack only, got %+v", m.responses)
	}
	if len(m.edits)+len(m.sends)+len(m.mediaEdit) != 0 {
		t.Fatalf("resolver miss must not touch the message")
	}
}

func TestNavigateRemoteFailureShowsGenericError(t *testing.T) {
	reg := NewRegistry()
	reg.Register("orders", func(ctx context.Context, page int, lang, extra string) (View, error) {
		return View{}, errors.New("catalog: 502")
	})
	m := &fakeMessenger{}
	ctl := testController(reg)

	if err := ctl.Navigate(context.Background(), m, Token{Content: "orders", Action: ActionNav, Page: 1}, "uk", false); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if len(m.responses) != 1 || m.responses[0] != "oops" {
		t.Fatalf("expected generic error response, got %+v", m.responses)
	}
}

func TestNavigateDeliverFailureStaysContained(t *testing.T) {
	reg := NewRegistry()
	reg.Register("cart", func(ctx context.Context, page int, lang, extra string) (View, error) {
		return View{Caption: "cart", TotalPages: 3}, nil
	})
	m := &fakeMessenger{editErr: errors.New("message to edit not found")}
	ctl := testController(reg)

	if err := ctl.Navigate(context.Background(), m, Token{Content: "cart", Action: ActionNav, Page: 2}, "uk", false); err != nil {
		t.Fatalf("Navigate should contain delivery errors, got %v", err)
	}
	if len(m.responses) != 1 || m.responses[0] != "" {
		t.Fatalf("expected silent ack, got %+v", m.responses)
	}
}
