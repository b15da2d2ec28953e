package timex

import (
	"fmt"
	"time"

	"flybot/models"
)

// Token types emitted by the recognizer.
const (
	TypeDate      = "date"
	TypeDateRange = "daterange"
	TypeDuration  = "duration"
)

// DisplayLayout is the format of every resolved date.
const DisplayLayout = "02-01-2006"

// Clock supplies the reference instant for absent anchor fields.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// FixedClock always returns t.
func FixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}

// shape is the recognized layout of a token sequence.
type shape int

const (
	shapeUnknown shape = iota
	shapeRange
	shapeDuration
	shapeTwoDates
	shapeDateThenDuration
	shapeDurationThenDate
)

func classify(tokens []models.DateToken) shape {
	switch len(tokens) {
	case 1:
		switch tokens[0].Type {
		case TypeDateRange:
			return shapeRange
		case TypeDuration:
			return shapeDuration
		}
	case 2:
		switch [2]string{tokens[0].Type, tokens[1].Type} {
		case [2]string{TypeDate, TypeDate}:
			return shapeTwoDates
		case [2]string{TypeDate, TypeDuration}:
			return shapeDateThenDuration
		case [2]string{TypeDuration, TypeDate}:
			return shapeDurationThenDate
		}
	}
	return shapeUnknown
}

// Resolver turns recognizer date tokens into a start and end date.
type Resolver struct {
	clock Clock
}

// NewResolver returns a Resolver reading "now" from clock.
func NewResolver(clock Clock) *Resolver {
	if clock == nil {
		clock = SystemClock
	}
	return &Resolver{clock: clock}
}

// Resolve samples the clock once and resolves tokens against it.
func (r *Resolver) Resolve(tokens []models.DateToken) (string, string, error) {
	return ResolveAt(tokens, r.clock.Now())
}

// ResolveDate resolves a single date token to its anchor date.
func (r *Resolver) ResolveDate(token models.DateToken) (string, error) {
	return ResolveDateAt(token, r.clock.Now())
}

// ResolveAt resolves tokens against now. Sequences that match none of the
// recognized shapes yield two empty strings and no error; a token whose
// expression cannot be decoded yields an error.
func ResolveAt(tokens []models.DateToken, now time.Time) (start string, end string, err error) {
	now = wallClock(now)

	var from, to time.Time
	switch classify(tokens) {
	case shapeRange:
		t, err := parseToken(tokens[0])
		if err != nil {
			return "", "", err
		}
		if from, err = t.Anchor(now); err != nil {
			return "", "", err
		}
		if to, err = t.Offset().AddTo(from); err != nil {
			return "", "", err
		}

	case shapeDuration:
		t, err := parseToken(tokens[0])
		if err != nil {
			return "", "", err
		}
		from = now
		if to, err = t.Offset().AddTo(from); err != nil {
			return "", "", err
		}

	case shapeTwoDates:
		d0, err := anchorOf(tokens[0], now)
		if err != nil {
			return "", "", err
		}
		d1, err := anchorOf(tokens[1], now)
		if err != nil {
			return "", "", err
		}
		from, to = d0, d1
		if d1.Before(d0) {
			from, to = d1, d0
		}

	case shapeDateThenDuration, shapeDurationThenDate:
		anchor, span := tokens[0], tokens[1]
		if tokens[0].Type == TypeDuration {
			anchor, span = tokens[1], tokens[0]
		}
		if from, err = anchorOf(anchor, now); err != nil {
			return "", "", err
		}
		t, err := parseToken(span)
		if err != nil {
			return "", "", err
		}
		if to, err = t.Offset().AddTo(from); err != nil {
			return "", "", err
		}

	default:
		return "", "", nil
	}

	return from.Format(DisplayLayout), to.Format(DisplayLayout), nil
}

// ResolveDateAt resolves the anchor of a single token against now.
func ResolveDateAt(token models.DateToken, now time.Time) (string, error) {
	d, err := anchorOf(token, wallClock(now))
	if err != nil {
		return "", err
	}
	return d.Format(DisplayLayout), nil
}

func anchorOf(token models.DateToken, now time.Time) (time.Time, error) {
	t, err := parseToken(token)
	if err != nil {
		return time.Time{}, err
	}
	return t.Anchor(now)
}

// parseToken decodes the first alternative; the others are ignored.
func parseToken(token models.DateToken) (*Timex, error) {
	if len(token.Timex) == 0 {
		return nil, fmt.Errorf("%w: %s token carries no expression", ErrMalformedTimex, token.Type)
	}
	return Parse(token.Timex[0])
}

// Dates are handled as wall-clock values: the reference instant keeps its
// local fields and arithmetic never crosses a daylight-saving shift.
func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}
