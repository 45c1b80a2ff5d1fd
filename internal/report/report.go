// Package report builds the attendance report: aggregate counts over a user
// snapshot, filtering, stable sorting, clamped pagination, and the rendered
// message text. Everything here is a pure function of its inputs; reading a
// snapshot never mutates stored state.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mpetrov/rollcall/internal/database"
)

// FilterMode selects which users a report shows.
type FilterMode string

// SortMode selects the report ordering.
type SortMode string

const (
	FilterAll      FilterMode = "all"
	FilterActive   FilterMode = "active"
	FilterInactive FilterMode = "inactive"

	SortByName       SortMode = "name"
	SortByLastActive SortMode = "last"
)

// ValidFilter reports whether f is a known filter token.
func ValidFilter(f FilterMode) bool {
	return f == FilterAll || f == FilterActive || f == FilterInactive
}

// ValidSort reports whether s is a known sort token.
func ValidSort(s SortMode) bool {
	return s == SortByName || s == SortByLastActive
}

// Params selects one page of one view of the report.
type Params struct {
	Filter FilterMode
	Sort   SortMode
	Page   int // 0-based; out-of-range values are clamped, never rejected
}

// DefaultParams is the view a fresh /attendance request shows.
func DefaultParams() Params {
	return Params{Filter: FilterAll, Sort: SortByName, Page: 0}
}

// Result is one rendered report page plus the state needed to navigate away
// from it. Page is the clamped, effective page index.
type Result struct {
	Text string

	Page       int
	TotalPages int
	Filter     FilterMode
	Sort       SortMode

	ActiveCount   int
	InactiveCount int
	TotalCount    int
}

// Builder renders report pages of a fixed size.
type Builder struct {
	pageSize int
}

// NewBuilder creates a Builder. pageSize must be positive.
func NewBuilder(pageSize int) *Builder {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &Builder{pageSize: pageSize}
}

// Build computes counts over the full snapshot, then filters, sorts,
// paginates, and renders one page evaluated at the given instant.
func (b *Builder) Build(snapshot []database.User, now time.Time, p Params) Result {
	res := Result{Filter: p.Filter, Sort: p.Sort}

	// Counts always cover the unfiltered snapshot.
	for i := range snapshot {
		res.TotalCount++
		if snapshot[i].IsInactiveAt(now) {
			res.InactiveCount++
		} else {
			res.ActiveCount++
		}
	}

	filtered := filterUsers(snapshot, now, p.Filter)
	sortUsers(filtered, p.Sort)

	res.TotalPages = (len(filtered) + b.pageSize - 1) / b.pageSize
	if res.TotalPages < 1 {
		res.TotalPages = 1
	}

	res.Page = p.Page
	if res.Page < 0 {
		res.Page = 0
	}
	if res.Page > res.TotalPages-1 {
		res.Page = res.TotalPages - 1
	}

	start := res.Page * b.pageSize
	end := start + b.pageSize
	if start > len(filtered) {
		start = len(filtered)
	}
	if end > len(filtered) {
		end = len(filtered)
	}

	res.Text = renderText(filtered[start:end], now, res)
	return res
}

func filterUsers(snapshot []database.User, now time.Time, filter FilterMode) []*database.User {
	kept := make([]*database.User, 0, len(snapshot))
	for i := range snapshot {
		u := &snapshot[i]
		inactive := u.IsInactiveAt(now)
		if filter == FilterActive && inactive {
			continue
		}
		if filter == FilterInactive && !inactive {
			continue
		}
		kept = append(kept, u)
	}
	return kept
}

func sortUsers(users []*database.User, mode SortMode) {
	switch mode {
	case SortByLastActive:
		// Newest activity first; users never seen active sort last.
		sort.SliceStable(users, func(i, j int) bool {
			return lastActiveKey(users[i]).After(lastActiveKey(users[j]))
		})
	default:
		sort.SliceStable(users, func(i, j int) bool {
			return strings.ToLower(users[i].SortName()) < strings.ToLower(users[j].SortName())
		})
	}
}

func lastActiveKey(u *database.User) time.Time {
	if u.LastActive.Valid {
		return u.LastActive.Time
	}
	return time.Time{}
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func renderText(page []*database.User, now time.Time, res Result) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "<b>Attendance</b> — <i>%s</i> — Sorted by <i>%s</i>\n",
		filterLabel(res.Filter), sortLabel(res.Sort))
	fmt.Fprintf(&sb, "Active: <b>%d</b>  |  Inactive: <b>%d</b>  |  Total: <b>%d</b>\n",
		res.ActiveCount, res.InactiveCount, res.TotalCount)
	fmt.Fprintf(&sb, "Page %d / %d\n\n", res.Page+1, res.TotalPages)

	if len(page) == 0 {
		sb.WriteString("(no users to show on this page)")
		return sb.String()
	}

	for i, u := range page {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(htmlEscaper.Replace(u.DisplayName()))
		sb.WriteString(" | ")
		sb.WriteString(statusLabel(u, now))
	}
	return sb.String()
}

func filterLabel(f FilterMode) string {
	if ValidFilter(f) {
		return string(f)
	}
	return string(FilterAll)
}

func sortLabel(s SortMode) string {
	if s == SortByLastActive {
		return "last active"
	}
	return "name"
}

// statusLabel renders "Active" or the remaining inactivity time, floor
// truncated to days/hours/minutes. An elapsed stored window reads as Active.
func statusLabel(u *database.User, now time.Time) string {
	if !u.IsInactiveAt(now) {
		return "Active"
	}

	remaining := u.InactiveUntil.Time.Sub(now)
	days := int(remaining.Hours()) / 24
	hours := int(remaining.Hours()) % 24
	minutes := int(remaining.Minutes()) % 60
	return fmt.Sprintf("Inactive %dd %dh %dm", days, hours, minutes)
}
