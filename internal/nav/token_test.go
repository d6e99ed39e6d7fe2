package nav

import (
	"errors"
	"testing"
)

func TestTokenRoundTrip(t *testing.T) {
	cases := []Token{
		{Content: "admin-country", Action: ActionNav, Page: 1},
		{Content: "admin-country", Action: ActionNav, Page: 12},
		{Content: "user-company", Action: ActionDetails, Page: 3, EntityID: "77"},
		{Content: "user-product", Action: ActionNav, Page: 2, Extra: "company:5"},
		{Content: "admin-product", Action: ActionEdit, EntityID: "9"},
		{Content: "admin-kitchen", Action: ActionDelete, EntityID: "4"},
		{Content: "admin-kitchen", Action: ActionConfirm, Page: 2, EntityID: "4"},
		{Content: "admin-kitchen", Action: ActionCancel, Page: 2},
		{Content: "cart", Action: "cart-add", EntityID: "15"},
	}
	for _, want := range cases {
		raw := want.Encode()
		got, err := Decode(raw)
		if err != nil {
			t.Fatalf("Decode(%q): unexpected error %v", raw, err)
		}
		if got != want {
			t.Fatalf("Decode(%q) = %+v, want %+v", raw, got, want)
		}
	}
}

func TestTokenEncodeDeterministic(t *testing.T) {
	a := Token{Content: "admin-company", Action: ActionNav, Page: 4, Extra: "kitchen:2"}
	b := Token{Content: "admin-company", Action: ActionNav, Page: 4, Extra: "kitchen:2"}
	if a.Encode() != b.Encode() {
		t.Fatalf("equal tokens encoded differently: %q vs %q", a.Encode(), b.Encode())
	}
	if got, want := a.Encode(), "t=admin-company;a=nav;p=4;e=kitchen:2"; got != want {
		t.Fatalf("Encode() = %q, want %q", got, want)
	}
}

func TestTokenEncodeOmitsEmptyFields(t *testing.T) {
	tok := Token{Content: "cart", Action: ActionNav, Page: 1}
	if got, want := tok.Encode(), "t=cart;a=nav;p=1"; got != want {
		t.Fatalf("Encode() = %q, want %q", got, want)
	}
	if len(tok.Encode()) > MaxPayloadLen {
		t.Fatalf("payload exceeds transport limit: %d bytes", len(tok.Encode()))
	}
}

func TestDecodeMalformed(t *testing.T) {
	cases := []string{
		"",
		"   ",
		"not-a-token",
		"t=cart;a",
		"t=cart;a=nav;p=zero",
		"t=cart;a=nav;p=0",
		"t=cart;a=nav;p=-2",
		"t=cart;a=nav;t=cart",
		"t=cart;a=nav;x=1",
	}
	for _, raw := range cases {
		_, err := Decode(raw)
		var decErr *DecodeError
		if !errors.As(err, &decErr) {
			t.Fatalf("Decode(%q): expected *DecodeError, got %v", raw, err)
		}
		if decErr.Kind != DecodeMalformed {
			t.Fatalf("Decode(%q): kind = %q, want %q", raw, decErr.Kind, DecodeMalformed)
		}
	}
}

func TestDecodeMissingField(t *testing.T) {
	cases := []struct {
		raw   string
		field string
	}{
		{"a=nav;p=1", "t"},
		{"t=cart;p=1", "a"},
		{"t=cart;a=nav", "p"},
		{"t=cart;a=back", "p"},
		{"t=cart;a=details;p=1", "id"},
		{"t=cart;a=edit", "id"},
		{"t=cart;a=delete", "id"},
		{"t=cart;a=confirm", "id"},
	}
	for _, tc := range cases {
		_, err := Decode(tc.raw)
		var decErr *DecodeError
		if !errors.As(err, &decErr) {
			t.Fatalf("Decode(%q): expected *DecodeError, got %v", tc.raw, err)
		}
		if decErr.Kind != DecodeMissingField {
			t.Fatalf("Decode(%q): kind = %q, want %q", tc.raw, decErr.Kind, DecodeMissingField)
		}
		if decErr.Field != tc.field {
			t.Fatalf("Decode(%q): field = %q, want %q", tc.raw, decErr.Field, tc.field)
		}
	}
}

func TestIsDecodeError(t *testing.T) {
	if _, err := Decode("not-a-token"); !IsDecodeError(err) {
		t.Fatalf("malformed payload: IsDecodeError = false for %v", err)
	}
	if _, err := Decode("t=cart;p=1"); !IsDecodeError(err) {
		t.Fatalf("missing field: IsDecodeError = false for %v", err)
	}
	if IsDecodeError(errors.New("boom")) {
		t.Fatal("IsDecodeError matched a foreign error")
	}
	if IsDecodeError(nil) {
		t.Fatal("IsDecodeError matched nil")
	}
}

func TestSeparatorInFieldValueFailsDecode(t *testing.T) {
	// the codec does no escaping; a separator inside a value must surface
	// as a decode failure, never as a token with shifted fields
	cases := []Token{
		{Content: "user-product", Action: ActionNav, Page: 1, Extra: "a;b"},
		{Content: "admin-product", Action: ActionEdit, EntityID: "9;id=8"},
	}
	for _, tok := range cases {
		raw := tok.Encode()
		got, err := Decode(raw)
		if err == nil {
			t.Fatalf("Decode(%q) = %+v, expected failure", raw, got)
		}
		if !IsDecodeError(err) {
			t.Fatalf("Decode(%q): expected decode error, got %v", raw, err)
		}
	}
}

func TestDecodeCustomActionNeedsOnlyContentAndAction(t *testing.T) {
	got, err := Decode("t=wishlist;a=wish-add;id=3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Token{Content: "wishlist", Action: "wish-add", EntityID: "3"}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}
