package nav

import (
	"fmt"
	"strconv"
	"strings"
)

// Actions carried by callback tokens. Content packages may define custom
// actions (e.g. cart mutations); only the listed ones get field validation.
const (
	ActionNav     = "nav"
	ActionBack    = "back"
	ActionAdd     = "add"
	ActionEdit    = "edit"
	ActionDelete  = "delete"
	ActionConfirm = "confirm"
	ActionCancel  = "cancel"
	ActionDetails = "details"
)

// MaxPayloadLen is the Telegram limit for callback button payloads.
const MaxPayloadLen = 64

// Token is the structured descriptor of a button-press intent.
// Page is 1-based. EntityID and Extra are optional depending on Action.
//
// The codec does no escaping: field values must not contain the ";"
// separator. Catalog ids are numeric and extras use "key:value" form, so a
// smuggled separator fails Decode instead of yielding a corrupted token.
type Token struct {
	Content  string
	Action   string
	Page     int
	EntityID string
	Extra    string
}

// Decode error kinds.
const (
	DecodeMalformed    = "malformed"
	DecodeMissingField = "missing_field"
)

// DecodeError describes why a callback payload could not be decoded.
type DecodeError struct {
	Kind  string
	Field string
	Raw   string
}

func (e *DecodeError) Error() string {
	if e.Kind == DecodeMissingField {
		return fmt.Sprintf("callback decode: missing field %q in %q", e.Field, e.Raw)
	}
	return fmt.Sprintf("callback decode: malformed payload %q", e.Raw)
}

// Code implements the error-code hook used by handler summary logging.
func (e *DecodeError) Code() string { return "decode_" + e.Kind }

func malformed(raw string) *DecodeError {
	return &DecodeError{Kind: DecodeMalformed, Raw: raw}
}

func missingField(field, raw string) *DecodeError {
	return &DecodeError{Kind: DecodeMissingField, Field: field, Raw: raw}
}

// Encode serializes the token with a fixed key order, omitting empty optional
// fields, so logically equal tokens always produce identical payloads.
func (t Token) Encode() string {
	var b strings.Builder
	b.Grow(MaxPayloadLen)
	b.WriteString("t=")
	b.WriteString(t.Content)
	b.WriteString(";a=")
	b.WriteString(t.Action)
	if t.Page > 0 {
		b.WriteString(";p=")
		b.WriteString(strconv.Itoa(t.Page))
	}
	if t.EntityID != "" {
		b.WriteString(";id=")
		b.WriteString(t.EntityID)
	}
	if t.Extra != "" {
		b.WriteString(";e=")
		b.WriteString(t.Extra)
	}
	return b.String()
}

// Decode parses a wire payload back into a Token. Decoding is total: every
// failure is reported as a *DecodeError, never a partially filled token.
func Decode(raw string) (Token, error) {
	var tok Token
	if strings.TrimSpace(raw) == "" {
		return Token{}, malformed(raw)
	}

	seen := make(map[string]struct{}, 5)
	for _, part := range strings.Split(raw, ";") {
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			return Token{}, malformed(raw)
		}
		if _, dup := seen[key]; dup {
			return Token{}, malformed(raw)
		}
		seen[key] = struct{}{}

		switch key {
		case "t":
			tok.Content = value
		case "a":
			tok.Action = value
		case "p":
			page, err := strconv.Atoi(value)
			if err != nil || page < 1 {
				return Token{}, malformed(raw)
			}
			tok.Page = page
		case "id":
			tok.EntityID = value
		case "e":
			tok.Extra = value
		default:
			return Token{}, malformed(raw)
		}
	}

	if tok.Content == "" {
		return Token{}, missingField("t", raw)
	}
	if tok.Action == "" {
		return Token{}, missingField("a", raw)
	}

	switch tok.Action {
	case ActionNav, ActionBack, ActionDetails:
		if tok.Page < 1 {
			return Token{}, missingField("p", raw)
		}
	}
	switch tok.Action {
	case ActionDetails, ActionEdit, ActionDelete, ActionConfirm:
		if tok.EntityID == "" {
			return Token{}, missingField("id", raw)
		}
	}

	return tok, nil
}

// IsDecodeError reports whether err is a callback decode failure.
func IsDecodeError(err error) bool {
	_, ok := err.(*DecodeError)
	return ok
}
