package prompt

import (
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	yesWords = map[string]bool{"yes": true, "y": true, "yeah": true, "yep": true, "sure": true, "ok": true, "okay": true, "true": true}
	noWords  = map[string]bool{"no": true, "n": true, "nope": true, "nah": true, "false": true}
)

// Layouts aceitos para datas. Todas exigem o ano para que a data seja definida.
var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"Jan 2 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
}

// Recognize converte a resposta do usuário no valor tipado do Kind. now é usado para
// expressões relativas como "today" e "tomorrow".
func Recognize(kind Kind, input string, now time.Time) (interface{}, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, false
	}

	switch kind {
	case KindText:
		return input, true
	case KindInt:
		n, err := strconv.ParseInt(input, 10, 32)
		if err != nil {
			return nil, false
		}
		return int(n), true
	case KindDouble:
		f, err := strconv.ParseFloat(input, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, false
		}
		return f, true
	case KindBool:
		b, ok := recognizeBool(input)
		if !ok {
			return nil, false
		}
		return b, true
	case KindDate:
		d, ok := recognizeDate(input, now)
		if !ok {
			return nil, false
		}
		return d, true
	default:
		return nil, false
	}
}

func recognizeBool(input string) (bool, bool) {
	word := strings.Trim(strings.ToLower(strings.TrimSpace(input)), ".!")
	if yesWords[word] {
		return true, true
	}
	if noWords[word] {
		return false, true
	}
	return false, false
}

func recognizeDate(input string, now time.Time) (time.Time, bool) {
	switch strings.ToLower(input) {
	case "today":
		return day(now), true
	case "tomorrow":
		return day(now.AddDate(0, 0, 1)), true
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, input); err == nil {
			return day(t), true
		}
	}
	return time.Time{}, false
}

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// IntBetween aceita inteiros no intervalo fechado [lo, hi]
func IntBetween(lo, hi int) Validator {
	return func(value interface{}) bool {
		n, ok := value.(int)
		return ok && n >= lo && n <= hi
	}
}

// NotEmpty rejeita textos compostos apenas de espaços
func NotEmpty() Validator {
	return func(value interface{}) bool {
		s, ok := value.(string)
		return ok && strings.TrimSpace(s) != ""
	}
}

// DateNotBefore rejeita datas anteriores ao dia retornado por min
func DateNotBefore(min func() time.Time) Validator {
	return func(value interface{}) bool {
		d, ok := value.(time.Time)
		return ok && !d.Before(day(min()))
	}
}
