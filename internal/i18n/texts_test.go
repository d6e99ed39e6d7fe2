package i18n

import "testing"

func TestLoadAndLookup(t *testing.T) {
	tr, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	langs := tr.Languages()
	if len(langs) != 2 || langs[0] != "en" || langs[1] != "uk" {
		t.Fatalf("Languages() = %+v", langs)
	}

	if got := tr.T("en", "wf.cancel"); got != "Cancel" {
		t.Fatalf("T(en, wf.cancel) = %q", got)
	}
	if got := tr.T("uk", "wf.cancel"); got != "Скасувати" {
		t.Fatalf("T(uk, wf.cancel) = %q", got)
	}
}

func TestLookupFallsBackToDefault(t *testing.T) {
	tr, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	// unknown language falls back to the default table
	if got, want := tr.T("de", "wf.cancel"), tr.T(DefaultLanguage, "wf.cancel"); got != want {
		t.Fatalf("fallback = %q, want %q", got, want)
	}
	// unknown key falls back to the key itself
	if got := tr.T("uk", "no.such.key"); got != "no.such.key" {
		t.Fatalf("missing key = %q", got)
	}
	if tr.Has("de") {
		t.Fatalf("Has(de) should be false")
	}
}

func TestEveryKeyTranslatedInAllLanguages(t *testing.T) {
	tr, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for key := range tr.tables[DefaultLanguage] {
		for _, lang := range tr.Languages() {
			if _, ok := tr.tables[lang][key]; !ok {
				t.Errorf("key %q missing in %q", key, lang)
			}
		}
	}
}
