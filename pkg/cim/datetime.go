package cim

import (
	"fmt"
	"strconv"
	"time"

	"github.com/mandelsoft/cimrepository/pkg/cimerr"
)

const (
	MICROSECOND uint64 = 1
	SECOND             = 1000000 * MICROSECOND
	MINUTE             = 60 * SECOND
	HOUR               = 60 * MINUTE
	DAY                = 24 * HOUR

	// TEN_THOUSAND_YEARS is the exclusive upper bound of timestamps.
	TEN_THOUSAND_YEARS uint64 = 315569520000000000
	// HUNDRED_MILLION_DAYS is the exclusive upper bound of intervals.
	HUNDRED_MILLION_DAYS uint64 = 8640000000000000000

	// epoch offset of 1970-01-01 counted from 0000-01-01 in seconds.
	posixEpoch int64 = 62167219200
)

const dateTimeLength = 25

// DateTime is a CIM datetime value. It is either a timestamp
// (yyyymmddhhmmss.mmmmmmsutc) or an interval (ddddddddhhmmss.mmmmmm:000).
// The zero value is the zero interval.
type DateTime struct {
	// usec holds the local time for timestamps and the length for intervals.
	usec      uint64
	offset    int16
	timestamp bool
	wildcards uint8
}

// ParseDateTime parses the 25 character string form.
// Trailing digit fields may be wildcarded with '*'.
func ParseDateTime(s string) (DateTime, error) {
	var dt DateTime

	if len(s) != dateTimeLength || s[14] != '.' {
		return dt, cimerr.New(cimerr.InvalidParameter, "invalid datetime %q", s)
	}
	digits := []byte(s[:14] + s[15:21])

	switch s[21] {
	case ':':
		if s[22:] != "000" {
			return dt, cimerr.New(cimerr.InvalidParameter, "invalid interval %q: utc field must be 000", s)
		}
	case '+', '-':
		dt.timestamp = true
		off, err := strconv.ParseUint(s[22:], 10, 16)
		if err != nil || !isDigits(s[22:]) {
			return dt, cimerr.New(cimerr.InvalidParameter, "invalid utc offset in %q", s)
		}
		dt.offset = int16(off)
		if s[21] == '-' {
			dt.offset = -dt.offset
		}
	default:
		return dt, cimerr.New(cimerr.InvalidParameter, "invalid datetime %q: unknown sign %q", s, s[21])
	}

	w, err := wildcardCount(digits, dt.timestamp)
	if err != nil {
		return dt, cimerr.New(cimerr.InvalidParameter, "invalid datetime %q: %s", s, err)
	}
	dt.wildcards = uint8(w)
	fillWildcards(digits, dt.timestamp)

	if dt.timestamp {
		dt.usec, err = timestampMicroseconds(digits)
	} else {
		dt.usec, err = intervalMicroseconds(digits)
	}
	if err != nil {
		return DateTime{}, cimerr.New(cimerr.InvalidParameter, "invalid datetime %q: %s", s, err)
	}
	return dt, nil
}

func MustParseDateTime(s string) DateTime {
	dt, err := ParseDateTime(s)
	if err != nil {
		panic(err)
	}
	return dt
}

// NewTimestamp creates a timestamp with microsecond precision keeping
// the zone offset of the given time.
func NewTimestamp(t time.Time) (DateTime, error) {
	_, off := t.Zone()
	if off%60 != 0 || off/60 < -999 || off/60 > 999 {
		return DateTime{}, cimerr.New(cimerr.OutOfRange, "utc offset %ds not representable", off)
	}
	if t.Year() < 0 || t.Year() > 9999 {
		return DateTime{}, cimerr.New(cimerr.OutOfRange, "year %d not representable", t.Year())
	}
	secs := t.Unix() + int64(off) + posixEpoch
	return DateTime{
		usec:      uint64(secs)*SECOND + uint64(t.Nanosecond()/1000),
		offset:    int16(off / 60),
		timestamp: true,
	}, nil
}

// NewTimestampFromMicroseconds creates a timestamp from UTC microseconds
// since 0000-01-01 and an offset given in minutes.
func NewTimestampFromMicroseconds(usec uint64, offset int) (DateTime, error) {
	if offset < -999 || offset > 999 {
		return DateTime{}, cimerr.New(cimerr.OutOfRange, "utc offset %d out of range", offset)
	}
	local := int64(usec) + int64(offset)*int64(MINUTE)
	if usec >= TEN_THOUSAND_YEARS || local < 0 || uint64(local) >= TEN_THOUSAND_YEARS {
		return DateTime{}, cimerr.New(cimerr.OutOfRange, "timestamp %d beyond year 9999", usec)
	}
	return DateTime{usec: uint64(local), offset: int16(offset), timestamp: true}, nil
}

func NewInterval(d time.Duration) (DateTime, error) {
	if d < 0 {
		return DateTime{}, cimerr.New(cimerr.OutOfRange, "negative interval %s", d)
	}
	return NewIntervalFromMicroseconds(uint64(d.Microseconds()))
}

func NewIntervalFromMicroseconds(usec uint64) (DateTime, error) {
	if usec >= HUNDRED_MILLION_DAYS {
		return DateTime{}, cimerr.New(cimerr.OutOfRange, "interval %d exceeds 99999999 days", usec)
	}
	return DateTime{usec: usec}, nil
}

func (d DateTime) IsInterval() bool {
	return !d.timestamp
}

func (d DateTime) IsTimestamp() bool {
	return d.timestamp
}

// UTCOffset returns the offset of a timestamp in minutes.
func (d DateTime) UTCOffset() int {
	return int(d.offset)
}

func (d DateTime) Wildcards() int {
	return int(d.wildcards)
}

// ToMicroseconds returns the length of an interval or the
// UTC normalized microseconds since 0000-01-01 of a timestamp.
func (d DateTime) ToMicroseconds() uint64 {
	if !d.timestamp {
		return d.usec
	}
	return d.normalized().usec
}

func (d DateTime) normalized() DateTime {
	if !d.timestamp || d.offset == 0 {
		return d
	}
	off := int64(d.offset)
	hours := off / 60 * int64(HOUR)
	minutes := off % 60 * int64(MINUTE)
	usec := int64(d.usec)
	switch {
	case d.wildcards < 10:
		usec -= hours + minutes
	case d.wildcards < 12:
		usec -= hours
	}
	if usec < 0 {
		usec = 0
	}
	return DateTime{usec: uint64(usec), timestamp: true, wildcards: d.wildcards}
}

// Time returns the timestamp as time in its own zone.
func (d DateTime) Time() (time.Time, error) {
	if !d.timestamp {
		return time.Time{}, cimerr.New(cimerr.TypeMismatch, "interval %s is no timestamp", d)
	}
	secs := int64(d.usec/SECOND) - posixEpoch - int64(d.offset)*60
	zone := time.FixedZone("", int(d.offset)*60)
	return time.Unix(secs, int64(d.usec%SECOND)*1000).In(zone), nil
}

// Duration returns an interval as duration.
func (d DateTime) Duration() (time.Duration, error) {
	if d.timestamp {
		return 0, cimerr.New(cimerr.TypeMismatch, "timestamp %s is no interval", d)
	}
	if d.usec > uint64(1<<63-1)/1000 {
		return 0, cimerr.New(cimerr.OutOfRange, "interval %s exceeds duration range", d)
	}
	return time.Duration(d.usec) * time.Microsecond, nil
}

// Compare compares two datetimes of the same kind.
func (d DateTime) Compare(o DateTime) (int, error) {
	if d.timestamp != o.timestamp {
		return 0, cimerr.New(cimerr.TypeMismatch, "comparing timestamp and interval")
	}
	if d.wildcards == 0 && o.wildcards == 0 {
		x, y := d.ToMicroseconds(), o.ToMicroseconds()
		switch {
		case x < y:
			return -1, nil
		case x > y:
			return 1, nil
		}
		return 0, nil
	}
	return matchStrings(d.normalized().String(), o.normalized().String()), nil
}

// Equal reports equality of two datetimes of the same kind.
// Values of different kinds are never equal.
func (d DateTime) Equal(o DateTime) bool {
	c, err := d.Compare(o)
	return err == nil && c == 0
}

// Difference returns y - x in microseconds.
func Difference(x, y DateTime) (int64, error) {
	if x.timestamp != y.timestamp {
		return 0, cimerr.New(cimerr.InvalidParameter, "difference between timestamp and interval")
	}
	return int64(y.ToMicroseconds()) - int64(x.ToMicroseconds()), nil
}

// Add adds an interval.
func (d DateTime) Add(i DateTime) (DateTime, error) {
	if i.timestamp {
		return DateTime{}, cimerr.New(cimerr.TypeMismatch, "cannot add timestamp %s", i)
	}
	r := d
	r.usec += i.usec
	if d.timestamp && r.usec >= TEN_THOUSAND_YEARS || !d.timestamp && r.usec >= HUNDRED_MILLION_DAYS || r.usec < d.usec {
		return DateTime{}, cimerr.New(cimerr.OutOfRange, "result of %s + %s out of range", d, i)
	}
	return r, nil
}

// Sub subtracts an interval from a datetime or a timestamp from
// another timestamp. The result must not be negative.
func (d DateTime) Sub(o DateTime) (DateTime, error) {
	if d.IsInterval() && o.IsTimestamp() {
		return DateTime{}, cimerr.New(cimerr.TypeMismatch, "cannot subtract timestamp from interval")
	}
	if d.timestamp == o.timestamp {
		x, y := d.ToMicroseconds(), o.ToMicroseconds()
		if x < y {
			return DateTime{}, cimerr.New(cimerr.OutOfRange, "result of %s - %s would be negative", d, o)
		}
		return DateTime{usec: x - y}, nil
	}
	if d.usec < o.usec {
		return DateTime{}, cimerr.New(cimerr.OutOfRange, "result of %s - %s would be negative", d, o)
	}
	r := d
	r.usec -= o.usec
	return r, nil
}

func (d DateTime) String() string {
	var digits []byte
	var suffix string

	u := d.usec
	if d.timestamp {
		t := time.Unix(int64(u/SECOND)-posixEpoch, 0).UTC()
		digits = []byte(fmt.Sprintf("%04d%02d%02d%02d%02d%02d%06d",
			t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second(), u%SECOND))
		sign := '+'
		off := d.offset
		if off < 0 {
			sign = '-'
			off = -off
		}
		suffix = fmt.Sprintf("%c%03d", sign, off)
	} else {
		digits = []byte(fmt.Sprintf("%08d%02d%02d%02d%06d",
			u/DAY, u%DAY/HOUR, u%HOUR/MINUTE, u%MINUTE/SECOND, u%SECOND))
		suffix = ":000"
	}
	for i := 0; i < int(d.wildcards); i++ {
		digits[len(digits)-1-i] = '*'
	}
	return string(digits[:14]) + "." + string(digits[14:]) + suffix
}

func (d DateTime) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *DateTime) UnmarshalText(data []byte) error {
	v, err := ParseDateTime(string(data))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

////////////////////////////////////////////////////////////////////////////////

var (
	timestampFields = []int{0, 4, 6, 8, 10, 12, 14}
	intervalFields  = []int{0, 8, 10, 12, 14}
)

// wildcardCount validates the wildcard structure of the 20 digit positions.
// Wildcards must form a suffix starting at a field boundary or inside the
// microseconds field.
func wildcardCount(digits []byte, timestamp bool) (int, error) {
	first := -1
	for i, c := range digits {
		switch {
		case c == '*':
			if first < 0 {
				first = i
			}
		case c >= '0' && c <= '9':
			if first >= 0 {
				return 0, fmt.Errorf("wildcards must be trailing")
			}
		default:
			return 0, fmt.Errorf("invalid character %q", c)
		}
	}
	if first < 0 {
		return 0, nil
	}
	if first < 14 {
		fields := intervalFields
		if timestamp {
			fields = timestampFields
		}
		found := false
		for _, f := range fields {
			if f == first {
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("partially wildcarded field")
		}
	}
	return len(digits) - first, nil
}

// fillWildcards replaces wildcards by the minimal field values.
func fillWildcards(digits []byte, timestamp bool) {
	for i, c := range digits {
		if c == '*' {
			digits[i] = '0'
		}
	}
	if timestamp {
		for _, i := range []int{4, 6} {
			if digits[i] == '0' && digits[i+1] == '0' {
				digits[i+1] = '1'
			}
		}
	}
}

func timestampMicroseconds(digits []byte) (uint64, error) {
	n := func(from, to int) int {
		v, _ := strconv.Atoi(string(digits[from:to]))
		return v
	}
	year, month, day := n(0, 4), n(4, 6), n(6, 8)
	hour, minute, second, usec := n(8, 10), n(10, 12), n(12, 14), n(14, 20)

	if month < 1 || month > 12 {
		return 0, fmt.Errorf("month %d out of range", month)
	}
	if day < 1 || day > daysIn(year, time.Month(month)) {
		return 0, fmt.Errorf("day %d out of range", day)
	}
	if hour > 23 || minute > 59 || second > 59 {
		return 0, fmt.Errorf("time %02d:%02d:%02d out of range", hour, minute, second)
	}
	t := time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)
	return uint64(t.Unix()+posixEpoch)*SECOND + uint64(usec), nil
}

func intervalMicroseconds(digits []byte) (uint64, error) {
	n := func(from, to int) uint64 {
		v, _ := strconv.ParseUint(string(digits[from:to]), 10, 64)
		return v
	}
	days, hour, minute, second, usec := n(0, 8), n(8, 10), n(10, 12), n(12, 14), n(14, 20)
	if hour > 23 || minute > 59 || second > 59 {
		return 0, fmt.Errorf("time %02d:%02d:%02d out of range", hour, minute, second)
	}
	return days*DAY + hour*HOUR + minute*MINUTE + second*SECOND + usec, nil
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// matchStrings compares two string forms ignoring wildcarded positions.
func matchStrings(a, b string) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] == '*' || b[i] == '*' {
			continue
		}
		if a[i] < b[i] {
			return -1
		}
		if a[i] > b[i] {
			return 1
		}
	}
	return 0
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
