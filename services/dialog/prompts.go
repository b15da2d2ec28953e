package dialog

import (
	"context"
	"strings"
	"time"

	"flybot/models"
	"flybot/services/timex"

	"go.uber.org/zap"
)

// Every locale gets the English yes/no choices.
const confirmChoices = " (1) Yes or (2) No"

var (
	yesAnswers = map[string]bool{"yes": true, "y": true, "yeah": true, "yep": true, "sure": true, "ok": true, "okay": true, "1": true, "true": true}
	noAnswers  = map[string]bool{"no": true, "n": true, "nope": true, "2": true, "false": true}
)

func parseConfirmation(answer string) (confirmed bool, ok bool) {
	a := strings.ToLower(strings.Trim(strings.TrimSpace(answer), ".!"))
	switch {
	case yesAnswers[a]:
		return true, true
	case noAnswers[a]:
		return false, true
	}
	return false, false
}

var dateLayouts = []string{"02-01-2006", "2-1-2006", "2006-01-02", "02/01/2006", "2/1/2006"}

// interpretDate reads a travel date typed by the user. Plain dates are
// accepted as is; anything else goes through the recognizer, and every date
// it names must carry a year, a month and a day. For a range the return
// prompt takes the end and the departure prompt the start.
func (d *Dialog) interpretDate(ctx context.Context, text string, wantEnd bool) (string, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t.Format(timex.DisplayLayout), true
		}
	}
	if d.recognizer == nil || text == "" {
		return "", false
	}

	result, err := d.recognizer.Recognize(ctx, text)
	if err != nil {
		d.logger.Warn("recognizer call failed for date prompt", zap.Error(err))
		return "", false
	}
	tokens := result.Entities.Datetime
	if len(tokens) == 0 || !definite(tokens) {
		return "", false
	}

	if len(tokens) == 1 && tokens[0].Type == timex.TypeDate {
		date, err := d.resolver.ResolveDate(tokens[0])
		if err != nil {
			return "", false
		}
		return date, true
	}

	start, end, err := d.resolver.Resolve(tokens)
	if err != nil {
		d.logger.Debug("could not resolve date answer", zap.Error(err))
		return "", false
	}
	if start == "" {
		return "", false
	}
	if wantEnd {
		return end, true
	}
	return start, true
}

// definite reports whether every date and range token names a full calendar
// date. Durations are measured from today and need no anchor.
func definite(tokens []models.DateToken) bool {
	for _, tok := range tokens {
		if tok.Type != timex.TypeDate && tok.Type != timex.TypeDateRange {
			continue
		}
		if len(tok.Timex) == 0 {
			return false
		}
		tx, err := timex.Parse(tok.Timex[0])
		if err != nil || !tx.IsDefinite() {
			return false
		}
	}
	return true
}
