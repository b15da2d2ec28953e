// Package timex decodes the compact date expressions emitted by the NLU
// recognizer and resolves them into concrete calendar dates.
package timex

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrMalformedTimex is returned for expressions the decoder cannot read.
var ErrMalformedTimex = errors.New("malformed timex expression")

// ErrInvalidDate is returned when anchor fields do not form a calendar date.
var ErrInvalidDate = errors.New("timex anchor is not a valid calendar date")

// ErrOutOfRange is returned when an offset leaves the supported calendar.
var ErrOutOfRange = errors.New("timex offset out of range")

const (
	presentRef = "PRESENT_REF"

	minYear       = 1
	maxYear       = 9999
	secondsPerDay = 24 * 60 * 60
)

var (
	durationRegex = regexp.MustCompile(`^P(?:(\d+)Y)?(?:(\d+)M)?(?:(\d+)W)?(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)
	dateRegex     = regexp.MustCompile(`^(\d{4}|XXXX)(?:-(\d{2}|XX)(?:-(\d{2}|XX))?)?$`)
	weekRegex     = regexp.MustCompile(`^(\d{4}|XXXX)-W(\d{2}|XX)(?:-(\d|WE))?$`)
	seasonRegex   = regexp.MustCompile(`^(\d{4}|XXXX)-(SP|SU|FA|WI)$`)
	timeRegex     = regexp.MustCompile(`^(\d{2})(?::(\d{2})(?::(\d{2}))?)?$`)
	partOfDay     = map[string]bool{"MO": true, "MI": true, "AF": true, "EV": true, "NI": true, "PM": true, "DT": true}
)

// Timex is one decoded expression. Zero means the field is absent: the
// recognizer never emits a zero year, month or day, and a zero amount adds
// nothing to an offset.
type Timex struct {
	// Anchor fields.
	Year       int
	Month      int
	DayOfMonth int

	// Informational fields the resolver does not use as anchors.
	WeekOfYear int
	DayOfWeek  int
	Weekend    bool
	Season     string
	Hour       int
	Minute     int
	Second     int
	PartOfDay  string
	Now        bool

	// Offset fields.
	Years   int
	Months  int
	Weeks   int
	Days    int
	Hours   int
	Minutes int
	Seconds int
}

// Parse decodes a single expression such as "2024-03-05", "XXXX-06",
// "P3D" or "(2024-06-01,2024-06-08,P1W)".
func Parse(expr string) (*Timex, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("%w: empty expression", ErrMalformedTimex)
	}

	t := &Timex{}
	var err error
	switch {
	case expr == presentRef:
		t.Now = true
	case strings.HasPrefix(expr, "P"):
		err = t.parseDuration(expr)
	case strings.HasPrefix(expr, "(") && strings.HasSuffix(expr, ")"):
		err = t.parseRange(expr)
	default:
		err = t.parseDateTime(expr)
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// A range carries its anchor in the start component and its span in the
// trailing duration; the end component is implied by the two.
func (t *Timex) parseRange(expr string) error {
	parts := strings.Split(expr[1:len(expr)-1], ",")
	if len(parts) != 3 {
		return fmt.Errorf("%w: range %q needs start, end and duration", ErrMalformedTimex, expr)
	}
	if err := t.parseDateTime(strings.TrimSpace(parts[0])); err != nil {
		return err
	}
	return t.parseDuration(strings.TrimSpace(parts[2]))
}

func (t *Timex) parseDuration(expr string) error {
	m := durationRegex.FindStringSubmatch(expr)
	if m == nil || expr == "P" || strings.HasSuffix(expr, "T") {
		return fmt.Errorf("%w: duration %q", ErrMalformedTimex, expr)
	}
	targets := []*int{&t.Years, &t.Months, &t.Weeks, &t.Days, &t.Hours, &t.Minutes, &t.Seconds}
	for i, target := range targets {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return fmt.Errorf("%w: duration %q: %v", ErrMalformedTimex, expr, err)
		}
		*target = n
	}
	return nil
}

func (t *Timex) parseDateTime(expr string) error {
	datePart, timePart, hasTime := strings.Cut(expr, "T")
	if datePart != "" {
		if err := t.parseDate(datePart); err != nil {
			return err
		}
	}
	if hasTime {
		return t.parseTime(timePart)
	}
	if datePart == "" {
		return fmt.Errorf("%w: %q", ErrMalformedTimex, expr)
	}
	return nil
}

func (t *Timex) parseDate(expr string) error {
	if m := dateRegex.FindStringSubmatch(expr); m != nil {
		var err error
		if t.Year, err = component(m[1], 0, 9999); err != nil {
			return fmt.Errorf("%w: year in %q", ErrMalformedTimex, expr)
		}
		if t.Month, err = component(m[2], 1, 12); err != nil {
			return fmt.Errorf("%w: month in %q", ErrMalformedTimex, expr)
		}
		if t.DayOfMonth, err = component(m[3], 1, 31); err != nil {
			return fmt.Errorf("%w: day in %q", ErrMalformedTimex, expr)
		}
		return nil
	}

	if m := weekRegex.FindStringSubmatch(expr); m != nil {
		var err error
		if t.Year, err = component(m[1], 0, 9999); err != nil {
			return fmt.Errorf("%w: year in %q", ErrMalformedTimex, expr)
		}
		if t.WeekOfYear, err = component(m[2], 1, 53); err != nil {
			return fmt.Errorf("%w: week in %q", ErrMalformedTimex, expr)
		}
		switch m[3] {
		case "":
		case "WE":
			t.Weekend = true
		default:
			if t.DayOfWeek, err = component(m[3], 1, 7); err != nil {
				return fmt.Errorf("%w: weekday in %q", ErrMalformedTimex, expr)
			}
		}
		return nil
	}

	if m := seasonRegex.FindStringSubmatch(expr); m != nil {
		year, err := component(m[1], 0, 9999)
		if err != nil {
			return fmt.Errorf("%w: year in %q", ErrMalformedTimex, expr)
		}
		t.Year = year
		t.Season = m[2]
		return nil
	}

	return fmt.Errorf("%w: date %q", ErrMalformedTimex, expr)
}

func (t *Timex) parseTime(expr string) error {
	if partOfDay[expr] {
		t.PartOfDay = expr
		return nil
	}
	m := timeRegex.FindStringSubmatch(expr)
	if m == nil {
		return fmt.Errorf("%w: time %q", ErrMalformedTimex, expr)
	}
	var err error
	if t.Hour, err = component(m[1], 0, 24); err != nil {
		return fmt.Errorf("%w: hour in %q", ErrMalformedTimex, expr)
	}
	if t.Minute, err = component(m[2], 0, 59); err != nil {
		return fmt.Errorf("%w: minute in %q", ErrMalformedTimex, expr)
	}
	if t.Second, err = component(m[3], 0, 59); err != nil {
		return fmt.Errorf("%w: second in %q", ErrMalformedTimex, expr)
	}
	return nil
}

// component reads one numeric field; "" and X placeholders mean absent.
func component(s string, lo, hi int) (int, error) {
	if s == "" || strings.Trim(s, "X") == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("%d out of range [%d, %d]", n, lo, hi)
	}
	return n, nil
}

// IsDefinite reports whether the expression names one full calendar date.
func (t *Timex) IsDefinite() bool {
	return t.Year != 0 && t.Month != 0 && t.DayOfMonth != 0
}

// Anchor builds the calendar date named by the anchor fields at midnight,
// taking any absent field from now.
func (t *Timex) Anchor(now time.Time) (time.Time, error) {
	year, month, day := now.Year(), int(now.Month()), now.Day()
	if t.Year != 0 {
		year = t.Year
	}
	if t.Month != 0 {
		month = t.Month
	}
	if t.DayOfMonth != 0 {
		day = t.DayOfMonth
	}
	if day > daysIn(year, time.Month(month)) {
		return time.Time{}, fmt.Errorf("%w: %04d-%02d-%02d", ErrInvalidDate, year, month, day)
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, now.Location()), nil
}

// Offset returns the relative span carried by the expression.
func (t *Timex) Offset() Offset {
	return Offset{
		Years:   t.Years,
		Months:  t.Months,
		Weeks:   t.Weeks,
		Days:    t.Days,
		Hours:   t.Hours,
		Minutes: t.Minutes,
		Seconds: t.Seconds,
	}
}

// Offset is a relative span. Years and months move along the calendar and
// clip the day to the target month; weeks and days are calendar days and
// the time fields are elapsed time.
type Offset struct {
	Years   int
	Months  int
	Weeks   int
	Days    int
	Hours   int
	Minutes int
	Seconds int
}

// AddTo applies o to t. Results outside years 1 to 9999 are rejected with
// ErrOutOfRange rather than wrapped.
func (o Offset) AddTo(t time.Time) (time.Time, error) {
	if err := o.check(); err != nil {
		return time.Time{}, err
	}

	total := t.Year()*12 + int(t.Month()) - 1 + o.Years*12 + o.Months
	year, month := floorDiv(total, 12), time.Month(floorMod(total, 12)+1)
	if year < minYear || year > maxYear {
		return time.Time{}, fmt.Errorf("%w: year %d", ErrOutOfRange, year)
	}
	day := t.Day()
	if last := daysIn(year, month); day > last {
		day = last
	}
	shifted := time.Date(year, month, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())

	// time.Duration tops out near 292 years: only the sub-day remainder
	// goes through it.
	seconds := o.Hours*3600 + o.Minutes*60 + o.Seconds
	days := o.Weeks*7 + o.Days + seconds/secondsPerDay
	shifted = shifted.AddDate(0, 0, days).Add(time.Duration(seconds%secondsPerDay) * time.Second)
	if y := shifted.Year(); y < minYear || y > maxYear {
		return time.Time{}, fmt.Errorf("%w: year %d", ErrOutOfRange, y)
	}
	return shifted, nil
}

// check bounds every amount by the span of the supported calendar, which
// also keeps the arithmetic in AddTo clear of integer overflow.
func (o Offset) check() error {
	const spanDays = (maxYear - minYear + 1) * 366
	limits := []struct {
		name   string
		amount int
		max    int
	}{
		{"years", o.Years, maxYear},
		{"months", o.Months, maxYear * 12},
		{"weeks", o.Weeks, spanDays / 7},
		{"days", o.Days, spanDays},
		{"hours", o.Hours, spanDays * 24},
		{"minutes", o.Minutes, spanDays * 24 * 60},
		{"seconds", o.Seconds, spanDays * secondsPerDay},
	}
	for _, l := range limits {
		if l.amount < 0 || l.amount > l.max {
			return fmt.Errorf("%w: %d %s", ErrOutOfRange, l.amount, l.name)
		}
	}
	return nil
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	return a - floorDiv(a, b)*b
}
