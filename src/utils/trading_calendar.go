package utils

import "time"

const (
	DaysPerWeek          = 7
	OffsetDaysForHoliday = 1
	NewYearDay           = 1
	ThirdMondayOffset    = 2
	FourthThursdayOffset = 3
	JuneteenthFirstYear  = 2022
)

// IsTradingDay reports whether d is a weekday that is not a US market holiday.
func IsTradingDay(d time.Time) bool {
	if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		return false
	}
	return !IsMarketHoliday(d)
}

// PreviousTradingDay returns the last trading day strictly before d's date.
func PreviousTradingDay(d time.Time) time.Time {
	day := DateOnly(d).AddDate(0, 0, -1)
	for !IsTradingDay(day) {
		day = day.AddDate(0, 0, -1)
	}
	return day
}

// TradingDaysBefore walks back n trading days from d (n <= 0 is treated as 1).
func TradingDaysBefore(d time.Time, n int) time.Time {
	if n <= 0 {
		n = 1
	}
	day := d
	for i := 0; i < n; i++ {
		day = PreviousTradingDay(day)
	}
	return day
}

// IsMarketHoliday reports NYSE full-day closures for d's year: New Year's Day,
// MLK Day, Presidents' Day, Good Friday, Memorial Day, Juneteenth (from 2022),
// Independence Day, Labor Day, Thanksgiving and Christmas.
// Fixed-date holidays on a Saturday are observed the Friday before and on a
// Sunday the Monday after. A Saturday New Year's Day is not observed.
func IsMarketHoliday(d time.Time) bool {
	year := d.Year()

	newYearsDay := time.Date(year, time.January, NewYearDay, 0, 0, 0, 0, time.UTC)
	if newYearsDay.Weekday() == time.Sunday {
		newYearsDay = newYearsDay.AddDate(0, 0, OffsetDaysForHoliday)
	}

	mlkDay := calculateSpecificMonday(year, time.January, ThirdMondayOffset)
	presidentsDay := calculateSpecificMonday(year, time.February, ThirdMondayOffset)
	goodFriday := easterSunday(year).AddDate(0, 0, -2)

	memorialDay := time.Date(year, time.May, 31, 0, 0, 0, 0, time.UTC)
	for memorialDay.Weekday() != time.Monday {
		memorialDay = memorialDay.AddDate(0, 0, -1)
	}

	independenceDay := observed(time.Date(year, time.July, 4, 0, 0, 0, 0, time.UTC))
	laborDay := calculateSpecificMonday(year, time.September, 0)
	thanksgivingDay := calculateSpecificThursday(year, time.November, FourthThursdayOffset)
	christmasDay := observed(time.Date(year, time.December, 25, 0, 0, 0, 0, time.UTC))

	holidays := []time.Time{
		newYearsDay,
		mlkDay,
		presidentsDay,
		goodFriday,
		memorialDay,
		independenceDay,
		laborDay,
		thanksgivingDay,
		christmasDay,
	}
	if year >= JuneteenthFirstYear {
		holidays = append(holidays, observed(time.Date(year, time.June, 19, 0, 0, 0, 0, time.UTC)))
	}
	return isDateAmong(d, holidays)
}

// observed shifts a Saturday holiday to Friday and a Sunday holiday to Monday.
func observed(day time.Time) time.Time {
	switch day.Weekday() {
	case time.Saturday:
		return day.AddDate(0, 0, -OffsetDaysForHoliday)
	case time.Sunday:
		return day.AddDate(0, 0, OffsetDaysForHoliday)
	}
	return day
}

// easterSunday uses the anonymous Gregorian computus.
func easterSunday(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// calculateSpecificMonday calculates the specific Monday of a month (like the third Monday).
func calculateSpecificMonday(year int, month time.Month, mondayOffset int) time.Time {
	firstOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := int(time.Monday-firstOfMonth.Weekday()+DaysPerWeek) % DaysPerWeek
	return firstOfMonth.AddDate(0, 0, offset+mondayOffset*DaysPerWeek)
}

// calculateSpecificThursday calculates the specific Thursday of a month (like the fourth Thursday).
func calculateSpecificThursday(year int, month time.Month, thursdayOffset int) time.Time {
	firstOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := int(time.Thursday-firstOfMonth.Weekday()+DaysPerWeek) % DaysPerWeek
	return firstOfMonth.AddDate(0, 0, offset+thursdayOffset*DaysPerWeek)
}

func isDateAmong(t time.Time, dates []time.Time) bool {
	for _, d := range dates {
		if FormatDate(t) == FormatDate(d) {
			return true
		}
	}
	return false
}
