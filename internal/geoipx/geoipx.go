// Package geoipx resolves a probe IP address to an ASN and a country
// code using on-disk MaxMind-format databases.
package geoipx

import (
	"errors"
	"fmt"
	"net"

	"github.com/oschwald/maxminddb-golang"
)

// ErrNoEntry means the database has no record for the given IP.
var ErrNoEntry = errors.New("geoipx: mmdb_enoent")

// ErrNoDataForType means the record exists but the requested field is
// missing or has the wrong type.
var ErrNoDataForType = errors.New("geoipx: mmdb_enodatafortype")

type asnRecord struct {
	AutonomousSystemNumber       uint   `maxminddb:"autonomous_system_number"`
	AutonomousSystemOrganization string `maxminddb:"autonomous_system_organization"`
}

type countryRecord struct {
	RegisteredCountry struct {
		IsoCode string `maxminddb:"iso_code"`
	} `maxminddb:"registered_country"`
}

// LookupASN opens the database at dbPath and maps ip to an AS number
// and an AS organization name. The database handle is opened and
// closed within this call; no cache is kept across lookups.
func LookupASN(dbPath, ip string) (asn uint, org string, err error) {
	db, err := maxminddb.Open(dbPath)
	if err != nil {
		return 0, "", fmt.Errorf("geoipx: cannot open %s: %w", dbPath, err)
	}
	defer db.Close()

	parsed := net.ParseIP(ip)
	if parsed == nil {
		return 0, "", fmt.Errorf("geoipx: %q is not a valid IP address", ip)
	}

	var record asnRecord
	_, found, err := db.LookupNetwork(parsed, &record)
	if err != nil {
		return 0, "", fmt.Errorf("geoipx: %w", err)
	}
	if !found {
		return 0, "", ErrNoEntry
	}
	if record.AutonomousSystemNumber == 0 {
		return 0, "", ErrNoDataForType
	}
	return record.AutonomousSystemNumber, record.AutonomousSystemOrganization, nil
}

// LookupCC opens the database at dbPath and maps ip to a country code.
func LookupCC(dbPath, ip string) (cc string, err error) {
	db, err := maxminddb.Open(dbPath)
	if err != nil {
		return "", fmt.Errorf("geoipx: cannot open %s: %w", dbPath, err)
	}
	defer db.Close()

	parsed := net.ParseIP(ip)
	if parsed == nil {
		return "", fmt.Errorf("geoipx: %q is not a valid IP address", ip)
	}

	var record countryRecord
	_, found, err := db.LookupNetwork(parsed, &record)
	if err != nil {
		return "", fmt.Errorf("geoipx: %w", err)
	}
	if !found {
		return "", ErrNoEntry
	}
	if record.RegisteredCountry.IsoCode == "" {
		return "", ErrNoDataForType
	}
	return record.RegisteredCountry.IsoCode, nil
}
