// Package timefmt turns API timestamps into the date, time and relative text shown on cards.
package timefmt

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

const (
	dateLayout = "02 Jan 2006"
	timeLayout = "03:04 PM"
)

// Display is the split date/time pair rendered on a card.
type Display struct {
	Date string
	Time string
}

// Formatter renders timestamps in a fixed location.
type Formatter struct {
	loc *time.Location
}

// New returns a formatter for the named IANA zone. An empty name means UTC.
func New(zone string) (Formatter, error) {
	zone = strings.TrimSpace(zone)
	if zone == "" {
		return Formatter{loc: time.UTC}, nil
	}

	loc, err := time.LoadLocation(zone)
	if err != nil {
		return Formatter{}, fmt.Errorf("load timezone %q: %w", zone, err)
	}
	return Formatter{loc: loc}, nil
}

// Parse accepts RFC 3339 timestamps with or without fractional seconds.
func Parse(iso string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(iso))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", iso, err)
	}
	return ts, nil
}

// Convert splits an ISO timestamp into its display date and time.
func (f Formatter) Convert(iso string) (Display, error) {
	ts, err := Parse(iso)
	if err != nil {
		return Display{}, err
	}

	local := ts.In(f.location())
	return Display{
		Date: local.Format(dateLayout),
		Time: local.Format(timeLayout),
	}, nil
}

// Elapsed describes ts relative to now, e.g. "3 days ago" or "2 hours from now".
func (f Formatter) Elapsed(iso string, now time.Time) (string, error) {
	ts, err := Parse(iso)
	if err != nil {
		return "", err
	}
	return humanize.RelTime(ts, now, "ago", "from now"), nil
}

func (f Formatter) location() *time.Location {
	if f.loc == nil {
		return time.UTC
	}
	return f.loc
}
