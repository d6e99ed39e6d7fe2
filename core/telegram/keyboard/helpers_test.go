package keyboard

import "testing"

func TestChunk(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}

	rows := Chunk(items, 2)
	if len(rows) != 3 {
		t.Fatalf("Chunk(5, 2): %d rows, want 3", len(rows))
	}
	if len(rows[0]) != 2 || len(rows[1]) != 2 || len(rows[2]) != 1 {
		t.Fatalf("Chunk(5, 2): uneven split %v", rows)
	}
	if rows[2][0] != "e" {
		t.Fatalf("Chunk(5, 2): last item = %q, want %q", rows[2][0], "e")
	}

	single := Chunk(items, 0)
	if len(single) != len(items) {
		t.Fatalf("Chunk(5, 0): %d rows, want one per item", len(single))
	}

	if rows := Chunk([]string(nil), 3); len(rows) != 0 {
		t.Fatalf("Chunk(empty): %d rows, want 0", len(rows))
	}
}

func TestContactButtonRequestsContact(t *testing.T) {
	markup := ContactButton("share")
	if len(markup.ReplyKeyboard) != 1 || len(markup.ReplyKeyboard[0]) != 1 {
		t.Fatalf("unexpected keyboard shape: %v", markup.ReplyKeyboard)
	}
	btn := markup.ReplyKeyboard[0][0]
	if btn.Text != "share" || !btn.Contact {
		t.Fatalf("button = %+v, want contact request labeled %q", btn, "share")
	}
	if !markup.OneTimeKeyboard {
		t.Fatal("contact keyboard should disappear after use")
	}
}
