package core

import (
	"sort"
	"time"
)

const DefaultDueWindowDays = 7

// DueItem places one debt's payment in the current month.
type DueItem struct {
	DebtID           string    `json:"debtId"`
	Name             string    `json:"name"`
	DueDate          time.Time `json:"dueDate"`
	DaysUntilDue     int       `json:"daysUntilDue"`
	Overdue          bool      `json:"isOverdue"`
	Upcoming         bool      `json:"isUpcoming"`
	MinimumPayment   Money     `json:"minimumPayment"`
	RemainingBalance Money     `json:"remainingBalance"`
}

// DueCalendar totals the items in a due listing.
type DueCalendar struct {
	Items          []DueItem `json:"items"`
	TotalDue       Money     `json:"totalDue"`
	OverdueAmount  Money     `json:"overdueAmount"`
	UpcomingAmount Money     `json:"upcomingAmount"`
}

// DueDate returns the debt's due date in the month containing now. Due days
// past the end of a short month fall on its last day.
func DueDate(dueDay int, now time.Time) time.Time {
	y, m, _ := now.Date()
	last := time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
	return time.Date(y, m, min(dueDay, last), 0, 0, 0, 0, time.UTC)
}

// NextDueDate is the first due date on or after the day containing now,
// rolling into the following month once this month's date has passed.
func NextDueDate(dueDay int, now time.Time) time.Time {
	y, m, d := now.Date()
	due := DueDate(dueDay, now)
	if due.Before(time.Date(y, m, d, 0, 0, 0, 0, time.UTC)) {
		due = DueDate(dueDay, time.Date(y, m+1, 1, 0, 0, 0, 0, time.UTC))
	}
	return due
}

// UpcomingDue lists every debt with a balance left, ordered by days until due
// then ID. Upcoming means due within windowDays from today inclusive.
func UpcomingDue(views []DebtView, now time.Time, windowDays int) []DueItem {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	items := make([]DueItem, 0, len(views))
	for _, v := range views {
		if v.RemainingBalance.Cents == 0 {
			continue
		}
		due := DueDate(v.DueDay, now)
		days := int(due.Sub(today).Hours() / 24)
		items = append(items, DueItem{
			DebtID:           v.ID,
			Name:             v.Name,
			DueDate:          due,
			DaysUntilDue:     days,
			Overdue:          days < 0,
			Upcoming:         days >= 0 && days <= windowDays,
			MinimumPayment:   v.MinimumPayment,
			RemainingBalance: v.RemainingBalance,
		})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].DaysUntilDue != items[j].DaysUntilDue {
			return items[i].DaysUntilDue < items[j].DaysUntilDue
		}
		return items[i].DebtID < items[j].DebtID
	})
	return items
}

func BuildDueCalendar(views []DebtView, now time.Time, windowDays int) DueCalendar {
	c := DueCalendar{Items: UpcomingDue(views, now, windowDays)}
	for _, it := range c.Items {
		c.TotalDue = c.TotalDue.Add(it.MinimumPayment)
		switch {
		case it.Overdue:
			c.OverdueAmount = c.OverdueAmount.Add(it.MinimumPayment)
		case it.Upcoming:
			c.UpcomingAmount = c.UpcomingAmount.Add(it.MinimumPayment)
		}
	}
	return c
}
