package query

import (
	"sort"
	"strconv"
	"strings"

	"github.com/misd-it/misdesk/internal/domain"
)

// PageSize is the fixed number of rows per page.
const PageSize = 10

// SortKey selects the single active sort.
type SortKey string

const (
	SortByID         SortKey = "id"
	SortByFirstName  SortKey = "first_name"
	SortByEmail      SortKey = "email"
	SortByFiler      SortKey = "filer"
	SortByDepartment SortKey = "department"
	SortByCategory   SortKey = "category"
	SortByPriority   SortKey = "priority"
	SortByStatus     SortKey = "status"
)

// Params describe one projection request.
type Params struct {
	Filter string
	Sort   SortKey
	// Status is the partition pivot for SortByStatus: rows whose status
	// equals it sort first.
	Status domain.TicketStatus
	// Page is 1-based. Out-of-range pages yield an empty page.
	Page int
}

// Page is an ordered slice of the projected rows plus paging metadata.
type Page struct {
	Items      []domain.TicketView
	Page       int
	Total      int
	TotalPages int
}

// Project filters, sorts and paginates the given ticket collection. Pure
// function of its inputs; the input slice is not modified.
func Project(tickets []domain.TicketView, params Params) Page {
	filtered := filterTickets(tickets, params.Filter)
	sortTickets(filtered, params.Sort, params.Status)

	total := len(filtered)
	totalPages := (total + PageSize - 1) / PageSize

	page := params.Page
	if page < 1 {
		page = 1
	}
	start := (page - 1) * PageSize
	if start >= total {
		return Page{Items: []domain.TicketView{}, Page: page, Total: total, TotalPages: totalPages}
	}
	end := start + PageSize
	if end > total {
		end = total
	}
	return Page{Items: filtered[start:end], Page: page, Total: total, TotalPages: totalPages}
}

// filterTickets keeps tickets where any display field contains the
// filter text, case-insensitively. The empty filter is the identity.
func filterTickets(tickets []domain.TicketView, filter string) []domain.TicketView {
	out := make([]domain.TicketView, 0, len(tickets))
	needle := strings.ToLower(filter)
	for _, t := range tickets {
		if needle == "" || matches(&t, needle) {
			out = append(out, t)
		}
	}
	return out
}

func matches(t *domain.TicketView, needle string) bool {
	fields := []string{
		strconv.FormatInt(t.ID, 10),
		t.FirstName,
		t.LastName,
		t.Email,
		t.FilerName,
		t.DepartmentName,
		t.Category,
		string(t.Priority),
		t.AssigneeName,
		string(t.Status),
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// priorityRank orders High before Moderate before Low; anything outside
// the canonical labels sorts last.
func priorityRank(p domain.TicketPriority) int {
	switch p {
	case domain.TicketPriorityHigh:
		return 0
	case domain.TicketPriorityModerate:
		return 1
	case domain.TicketPriorityLow:
		return 2
	}
	return 3
}

func sortTickets(tickets []domain.TicketView, key SortKey, status domain.TicketStatus) {
	switch key {
	case SortByID:
		sort.Slice(tickets, func(i, j int) bool { return tickets[i].ID < tickets[j].ID })
	case SortByFirstName:
		sort.Slice(tickets, func(i, j int) bool { return tickets[i].FirstName < tickets[j].FirstName })
	case SortByEmail:
		sort.Slice(tickets, func(i, j int) bool { return tickets[i].Email < tickets[j].Email })
	case SortByFiler:
		sort.Slice(tickets, func(i, j int) bool { return tickets[i].FilerName < tickets[j].FilerName })
	case SortByDepartment:
		sort.Slice(tickets, func(i, j int) bool { return tickets[i].DepartmentName < tickets[j].DepartmentName })
	case SortByCategory:
		sort.Slice(tickets, func(i, j int) bool { return tickets[i].Category < tickets[j].Category })
	case SortByPriority:
		sort.Slice(tickets, func(i, j int) bool {
			return priorityRank(tickets[i].Priority) < priorityRank(tickets[j].Priority)
		})
	case SortByStatus:
		sort.Slice(tickets, func(i, j int) bool {
			return (tickets[i].Status == status) && (tickets[j].Status != status)
		})
	}
}
