package geoipx

import (
	"errors"
	"testing"
)

func TestLookupASNInvalidIP(t *testing.T) {
	asn, org, err := LookupASN("testdata/asn.mmdb", "xxx")
	if err == nil {
		t.Fatal("expected an error here")
	}
	if asn != 0 || org != "" {
		t.Fatal("expected zero values on error")
	}
}

func TestLookupASNMissingDatabase(t *testing.T) {
	_, _, err := LookupASN("testdata/does-not-exist.mmdb", "8.8.8.8")
	if err == nil {
		t.Fatal("expected an error here")
	}
}

func TestLookupCCInvalidIP(t *testing.T) {
	cc, err := LookupCC("testdata/country.mmdb", "xxx")
	if err == nil {
		t.Fatal("expected an error here")
	}
	if cc != "" {
		t.Fatal("expected an empty cc on error")
	}
}

func TestLookupCCMissingDatabase(t *testing.T) {
	_, err := LookupCC("testdata/does-not-exist.mmdb", "8.8.8.8")
	if err == nil {
		t.Fatal("expected an error here")
	}
}

func TestSentinelErrorsAreDistinct(t *testing.T) {
	if errors.Is(ErrNoEntry, ErrNoDataForType) {
		t.Fatal("ErrNoEntry and ErrNoDataForType must be distinct")
	}
}
