package nav

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

func TestRouterMatchOrder(t *testing.T) {
	r := NewRouter(RouterOptions{})

	noop := func(c tele.Context, tok Token) error { return nil }
	r.Handle("first", Match("cart"), noop)
	r.Handle("second", Match("cart", ActionNav), noop)
	r.Handle("third", MatchAction(ActionCancel), noop)

	rt, ok := r.match(Token{Content: "cart", Action: ActionNav, Page: 1})
	if !ok || rt.name != "first" {
		t.Fatalf("expected first registered match, got %q ok=%v", rt.name, ok)
	}

	rt, ok = r.match(Token{Content: "orders", Action: ActionCancel})
	if !ok || rt.name != "third" {
		t.Fatalf("expected action fallthrough, got %q ok=%v", rt.name, ok)
	}

	if _, ok := r.match(Token{Content: "orders", Action: ActionNav, Page: 1}); ok {
		t.Fatalf("unexpected match for unregistered content")
	}
}

func TestRouterSkipsInvalidRegistrations(t *testing.T) {
	r := NewRouter(RouterOptions{})
	r.Handle("bad-pred", nil, func(c tele.Context, tok Token) error { return nil })
	r.Handle("bad-handler", Match("cart"), nil)
	if r.Routes() != 0 {
		t.Fatalf("invalid registrations were accepted: %d", r.Routes())
	}
}

// fakeCbCtx implements the slice of tele.Context that Dispatch touches.
// Anything else panics through the embedded nil interface.
type fakeCbCtx struct {
	tele.Context

	data      string
	store     map[string]interface{}
	responses []*tele.CallbackResponse
}

func newFakeCbCtx(data string) *fakeCbCtx {
	return &fakeCbCtx{data: data, store: map[string]interface{}{}}
}

func (f *fakeCbCtx) Callback() *tele.Callback { return &tele.Callback{Data: f.data} }
func (f *fakeCbCtx) Update() tele.Update      { return tele.Update{ID: 7} }
func (f *fakeCbCtx) Sender() *tele.User       { return &tele.User{ID: 42} }
func (f *fakeCbCtx) Chat() *tele.Chat         { return &tele.Chat{ID: 42} }

func (f *fakeCbCtx) Get(key string) interface{}    { return f.store[key] }
func (f *fakeCbCtx) Set(key string, v interface{}) { f.store[key] = v }

func (f *fakeCbCtx) Respond(resp ...*tele.CallbackResponse) error {
	if len(resp) == 0 {
		f.responses = append(f.responses, &tele.CallbackResponse{})
		return nil
	}
	f.responses = append(f.responses, resp...)
	return nil
}

func TestDispatchMalformedPayloadAcksSilently(t *testing.T) {
	r := NewRouter(RouterOptions{
		UnknownActionText: func(string) string { return "unknown" },
	})
	r.Handle("navigate", MatchAction(ActionNav), func(c tele.Context, tok Token) error {
		t.Fatal("handler must not run for malformed payloads")
		return nil
	})

	c := newFakeCbCtx("not-a-token")
	if err := r.Dispatch(c); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if len(c.responses) != 1 {
		t.Fatalf("expected a single acknowledgment, got %d", len(c.responses))
	}
	if resp := c.responses[0]; resp.Text != "" || resp.ShowAlert {
		t.Fatalf("malformed payload must be acknowledged silently, got %+v", resp)
	}
}

func TestDispatchUnmatchedTokenRespondsUnknownAction(t *testing.T) {
	r := NewRouter(RouterOptions{
		UnknownActionText: func(lang string) string { return "unknown:" + lang },
		Language:          func(tele.Context) string { return "en" },
	})
	r.Handle("cart-only", Match("cart"), func(c tele.Context, tok Token) error { return nil })

	raw := Token{Content: "orders", Action: ActionNav, Page: 1}.Encode()
	c := newFakeCbCtx(raw)
	if err := r.Dispatch(c); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if len(c.responses) != 1 {
		t.Fatalf("expected a single response, got %d", len(c.responses))
	}
	if got := c.responses[0].Text; got != "unknown:en" {
		t.Fatalf("response text = %q, want localized unknown-action text", got)
	}
}

func TestDispatchDecodesOnceAndRoutes(t *testing.T) {
	r := NewRouter(RouterOptions{})

	var got Token
	r.Handle("cart.nav", Match("cart", ActionNav), func(c tele.Context, tok Token) error {
		got = tok
		return nil
	})

	c := newFakeCbCtx("t=cart;a=nav;p=3")
	if err := r.Dispatch(c); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	want := Token{Content: "cart", Action: ActionNav, Page: 3}
	if got != want {
		t.Fatalf("handler received %+v, want %+v", got, want)
	}
	// acknowledging is the matched handler's job
	if len(c.responses) != 0 {
		t.Fatalf("router responded on behalf of the handler: %+v", c.responses)
	}
}

func TestMatchPredicates(t *testing.T) {
	p := Match("admin-product", ActionAdd, ActionEdit)
	if !p(Token{Content: "admin-product", Action: ActionAdd}) {
		t.Fatalf("expected match for add")
	}
	if p(Token{Content: "admin-product", Action: ActionNav, Page: 1}) {
		t.Fatalf("unexpected match for nav")
	}
	if p(Token{Content: "admin-country", Action: ActionAdd}) {
		t.Fatalf("unexpected match for other content")
	}

	any := Match("admin-product")
	if !any(Token{Content: "admin-product", Action: "anything"}) {
		t.Fatalf("expected any-action match")
	}
}
