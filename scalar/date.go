// Package scalar parses loosely formatted scalar text: dates, big numbers and
// quoted values found in hand written or foreign JSON documents.
package scalar

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/viant/jsonio/errs"
)

const (
	days   = `(monday|mon|tuesday|tues|tue|wednesday|wed|thursday|thur|thu|friday|fri|saturday|sat|sunday|sun)`
	months = `(January|Jan|February|Feb|March|Mar|April|Apr|May|June|Jun|July|Jul|August|Aug|September|Sept|Sep|October|Oct|November|Nov|December|Dec)`
)

var (
	isoDate    = regexp.MustCompile(`(\d{4})[./-](\d{1,2})[./-](\d{1,2})`)
	usDate     = regexp.MustCompile(`(\d{1,2})[./-](\d{1,2})[./-](\d{4})`)
	monthFirst = regexp.MustCompile(`(?i)` + months + `[ ]*[,]?[ ]*(\d{1,2})(st|nd|rd|th|)[ ]*[,]?[ ]*(\d{4})`)
	dayFirst   = regexp.MustCompile(`(?i)(\d{1,2})(st|nd|rd|th|)[ ]*[,]?[ ]*` + months + `[ ]*[,]?[ ]*(\d{4})`)
	yearFirst  = regexp.MustCompile(`(?i)(\d{4})[ ]*[,]?[ ]*` + months + `[ ]*[,]?[ ]*(\d{1,2})(st|nd|rd|th|)`)
	unixDate   = regexp.MustCompile(`(?i)` + days + `[ ]+` + months + `[ ]+(\d{1,2})[ ]+(\d{2}:\d{2}:\d{2})[ ]+[A-Z]{1,4}\s+(\d{4})`)

	fullTime  = regexp.MustCompile(`(\d{2})[.:](\d{2})[.:](\d{2})[.](\d{1,10})([+-]\d{2}[:]?\d{2}|Z)?`)
	clockTime = regexp.MustCompile(`(\d{2})[.:](\d{2})[.:](\d{2})([+-]\d{2}[:]?\d{2}|Z)?`)
	shortTime = regexp.MustCompile(`(\d{2})[.:](\d{2})([+-]\d{2}[:]?\d{2}|Z)?`)

	dayName = regexp.MustCompile(`(?i)` + days)
)

var monthNumber = map[string]int{
	"jan": 1, "january": 1,
	"feb": 2, "february": 2,
	"mar": 3, "march": 3,
	"apr": 4, "april": 4,
	"may": 5,
	"jun": 6, "june": 6,
	"jul": 7, "july": 7,
	"aug": 8, "august": 8,
	"sep": 9, "sept": 9, "september": 9,
	"oct": 10, "october": 10,
	"nov": 11, "november": 11,
	"dec": 12, "december": 12,
}

// ParseDate parses free form date and time text. Empty text returns the zero
// time with ok=false. Text without a zone is interpreted in loc.
func ParseDate(text string, loc *time.Location) (result time.Time, ok bool, err error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return result, false, nil
	}
	if loc == nil {
		loc = time.Local
	}
	var year, month, day string
	var remains string

	if m := isoDate.FindStringSubmatchIndex(text); m != nil {
		year, month, day = group(text, m, 1), group(text, m, 2), group(text, m, 3)
		remains = cut(text, m)
	} else if m := usDate.FindStringSubmatchIndex(text); m != nil {
		month, day, year = group(text, m, 1), group(text, m, 2), group(text, m, 3)
		remains = cut(text, m)
	} else if m := monthFirst.FindStringSubmatchIndex(text); m != nil {
		month, day, year = group(text, m, 1), group(text, m, 2), group(text, m, 4)
		remains = cut(text, m)
	} else if m := dayFirst.FindStringSubmatchIndex(text); m != nil {
		day, month, year = group(text, m, 1), group(text, m, 3), group(text, m, 4)
		remains = cut(text, m)
	} else if m := yearFirst.FindStringSubmatchIndex(text); m != nil {
		year, month, day = group(text, m, 1), group(text, m, 2), group(text, m, 3)
		remains = cut(text, m)
	} else if m := unixDate.FindStringSubmatchIndex(text); m != nil {
		month, day, year = group(text, m, 2), group(text, m, 3), group(text, m, 5)
		remains = group(text, m, 4)
	} else {
		return result, false, errs.New(errs.CodeConversion, "Unable to parse: %s", text)
	}

	y, _ := strconv.Atoi(year)
	mon, err := monthOf(month)
	if err != nil {
		return result, false, err
	}
	if mon < 1 || mon > 12 {
		return result, false, errs.New(errs.CodeConversion, "Month must be between 1 and 12 inclusive, date: %s", text)
	}
	d, _ := strconv.Atoi(day)
	if d < 1 || d > 31 {
		return result, false, errs.New(errs.CodeConversion, "Day must be between 1 and 31 inclusive, date: %s", text)
	}

	var hour, minute, second, fraction, zone string
	if remains = strings.TrimSpace(remains); remains != "" {
		if m := fullTime.FindStringSubmatchIndex(remains); m != nil {
			hour, minute, second, fraction, zone = group(remains, m, 1), group(remains, m, 2), group(remains, m, 3), group(remains, m, 4), group(remains, m, 5)
			remains = cut(remains, m)
		} else if m := clockTime.FindStringSubmatchIndex(remains); m != nil {
			hour, minute, second, zone = group(remains, m, 1), group(remains, m, 2), group(remains, m, 3), group(remains, m, 4)
			remains = cut(remains, m)
		} else if m := shortTime.FindStringSubmatchIndex(remains); m != nil {
			hour, minute, zone = group(remains, m, 1), group(remains, m, 2), group(remains, m, 3)
			remains = cut(remains, m)
		}
	}

	if remains != "" {
		remains = strings.TrimSpace(dayName.ReplaceAllString(remains, ""))
		if remains != "" && remains != "," && remains != "T" {
			return result, false, errs.New(errs.CodeConversion, "Issue parsing data/time, other characters present: %s", remains)
		}
	}

	h, mi, s, nanos := 0, 0, 0, 0
	if hour != "" {
		h, _ = strconv.Atoi(hour)
		mi, _ = strconv.Atoi(minute)
		if second != "" {
			s, _ = strconv.Atoi(second)
		}
		nanos = fractionNanos(fraction)
	}
	if h > 23 {
		return result, false, errs.New(errs.CodeConversion, "Hour must be between 0 and 23 inclusive, time: %s", text)
	}
	if mi > 59 {
		return result, false, errs.New(errs.CodeConversion, "Minute must be between 0 and 59 inclusive, time: %s", text)
	}
	if s > 59 {
		return result, false, errs.New(errs.CodeConversion, "Second must be between 0 and 59 inclusive, time: %s", text)
	}
	if zone != "" {
		loc = zoneOf(zone)
	}
	return time.Date(y, time.Month(mon), d, h, mi, s, nanos, loc), true, nil
}

func monthOf(text string) (int, error) {
	if n, err := strconv.Atoi(text); err == nil {
		return n, nil
	}
	if n, ok := monthNumber[strings.ToLower(text)]; ok {
		return n, nil
	}
	return 0, errs.New(errs.CodeConversion, "Unable to parse month: %s", text)
}

// fractionNanos interprets digits after the seconds separator as a decimal fraction.
func fractionNanos(fraction string) int {
	if fraction == "" {
		return 0
	}
	if len(fraction) > 9 {
		fraction = fraction[:9]
	}
	n, _ := strconv.Atoi(fraction)
	for i := len(fraction); i < 9; i++ {
		n *= 10
	}
	return n
}

func zoneOf(zone string) *time.Location {
	if zone == "Z" {
		return time.UTC
	}
	sign := 1
	if zone[0] == '-' {
		sign = -1
	}
	digits := strings.ReplaceAll(zone[1:], ":", "")
	hours, _ := strconv.Atoi(digits[:2])
	minutes, _ := strconv.Atoi(digits[2:])
	offset := sign * (hours*3600 + minutes*60)
	if offset == 0 {
		return time.UTC
	}
	return time.FixedZone("", offset)
}

func group(text string, m []int, i int) string {
	if m[2*i] < 0 {
		return ""
	}
	return text[m[2*i]:m[2*i+1]]
}

func cut(text string, m []int) string {
	return text[:m[0]] + text[m[1]:]
}
