package market

import "time"

// IST is the dashboard's local zone (UTC+5:30). All trading windows are expressed in it.
var IST = time.FixedZone("IST", 5*3600+30*60)

// Trading windows in IST minutes since midnight. No holiday calendar is applied.
const (
	indiaOpenMinute  = 9 * 60
	indiaCloseMinute = 15*60 + 30
	usOpenMinute     = 19 * 60
	usCloseMinute    = 1*60 + 30 // next calendar day
)

func minuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

func isWeekday(d time.Weekday) bool {
	return d >= time.Monday && d <= time.Friday
}

// IsIndianMarketOpen reports whether t falls in [09:00, 15:30) IST, Monday to Friday.
func IsIndianMarketOpen(t time.Time) bool {
	ist := t.In(IST)
	if !isWeekday(ist.Weekday()) {
		return false
	}
	m := minuteOfDay(ist)
	return m >= indiaOpenMinute && m < indiaCloseMinute
}

// IsUSMarketOpen models the US session in IST: from 19:00 on a weekday until
// 01:30 the next morning, where the previous day must be Monday to Thursday.
func IsUSMarketOpen(t time.Time) bool {
	ist := t.In(IST)
	m := minuteOfDay(ist)
	if m >= usOpenMinute {
		return isWeekday(ist.Weekday())
	}
	if m < usCloseMinute {
		prev := ist.AddDate(0, 0, -1).Weekday()
		return prev >= time.Monday && prev <= time.Thursday
	}
	return false
}

// IsCryptoMarketOpen always returns true.
func IsCryptoMarketOpen(time.Time) bool {
	return true
}

// IsOpen dispatches to the trading window of m.
func IsOpen(m Market, t time.Time) bool {
	switch m {
	case IndianStocks:
		return IsIndianMarketOpen(t)
	case USStocks:
		return IsUSMarketOpen(t)
	case Crypto:
		return IsCryptoMarketOpen(t)
	default:
		return false
	}
}

// StatusString returns a short human-readable session label.
func StatusString(m Market, t time.Time) string {
	switch {
	case m == Crypto:
		return "Market Open (24x7)"
	case IsOpen(m, t):
		return "Market Open"
	default:
		return "Market Closed"
	}
}
