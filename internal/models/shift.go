package models

import "strings"

// ShiftCode identifies one of the three daily shifts. Codes are totally ordered.
type ShiftCode string

const (
	ShiftEarly ShiftCode = "EARLY"
	ShiftLate  ShiftCode = "LATE"
	ShiftNight ShiftCode = "NIGHT"
)

// ShiftCodes lists every shift code in ascending order.
var ShiftCodes = []ShiftCode{ShiftEarly, ShiftLate, ShiftNight}

// Index returns the position of the code in the shift ordering, or -1 when unknown.
func (c ShiftCode) Index() int {
	switch c {
	case ShiftEarly:
		return 0
	case ShiftLate:
		return 1
	case ShiftNight:
		return 2
	default:
		return -1
	}
}

// Valid reports whether the code is one of the known shifts.
func (c ShiftCode) Valid() bool {
	return c.Index() >= 0
}

// ParseShiftCode normalises user input into a ShiftCode.
func ParseShiftCode(raw string) (ShiftCode, bool) {
	code := ShiftCode(strings.ToUpper(strings.TrimSpace(raw)))
	return code, code.Valid()
}

// WeekdayPattern restricts continuous demand rules to certain weekdays and shifts.
type WeekdayPattern string

const (
	PatternMonFri           WeekdayPattern = "MO_FR"
	PatternMonSatAll        WeekdayPattern = "MO_SA_ALL"
	PatternMonFriSatEarly   WeekdayPattern = "MO_FR_SA_F"
	PatternMonFriSatNoNight WeekdayPattern = "MO_FR_SA_FS"
	PatternSunFri           WeekdayPattern = "SO_FR_ALL"
)
