package model

import "testing"

func TestParseSettingsRequiresName(t *testing.T) {
	_, _, err := ParseSettings([]byte(`{}`))
	if err == nil {
		t.Fatal("expected an error for missing name")
	}
}

func TestParseSettingsAppliesDefaults(t *testing.T) {
	settings, warnings, err := ParseSettings([]byte(`{"name": "example"}`))
	if err != nil {
		t.Fatal(err)
	}
	if len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", warnings)
	}
	if settings.Options.BouncerBaseURL != DefaultBouncerBaseURL {
		t.Fatal("expected default bouncer base URL")
	}
	if settings.Options.MaxRuntime != DefaultMaxRuntime {
		t.Fatal("expected default max runtime")
	}
	if !settings.Options.RandomizeInput {
		t.Fatal("expected randomize_input to default true")
	}
}

func TestParseSettingsCoercesNumericBooleans(t *testing.T) {
	raw := []byte(`{"name": "example", "options": {"no_collector": 1, "save_real_probe_ip": 0}}`)
	settings, warnings, err := ParseSettings(raw)
	if err != nil {
		t.Fatal(err)
	}
	if len(warnings) != 2 {
		t.Fatalf("expected 2 deprecation warnings, got %d: %v", len(warnings), warnings)
	}
	if !settings.Options.NoCollector {
		t.Fatal("expected no_collector coerced to true")
	}
	if settings.Options.SaveRealProbeIP {
		t.Fatal("expected save_real_probe_ip coerced to false")
	}
}

func TestParseSettingsRejectsNonBooleanNonNumeric(t *testing.T) {
	raw := []byte(`{"name": "example", "options": {"no_collector": "yes"}}`)
	_, _, err := ParseSettings(raw)
	if err == nil {
		t.Fatal("expected an error for a non-boolean, non-numeric option value")
	}
}

func TestParseSettingsRejectsMalformedJSON(t *testing.T) {
	_, _, err := ParseSettings([]byte(`not json`))
	if err == nil {
		t.Fatal("expected an error for malformed JSON")
	}
}
