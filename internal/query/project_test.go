package query

import (
	"fmt"
	"testing"

	"github.com/misd-it/misdesk/internal/domain"
)

func view(id int64, mutate func(*domain.TicketView)) domain.TicketView {
	v := domain.TicketView{
		Ticket: domain.Ticket{
			ID:        id,
			FirstName: fmt.Sprintf("First%d", id),
			LastName:  fmt.Sprintf("Last%d", id),
			Email:     fmt.Sprintf("user%d@example.com", id),
			Category:  "Hardware",
			Status:    domain.TicketStatusPending,
			Priority:  domain.TicketPriorityModerate,
		},
		DepartmentName: "Accounting",
		FilerName:      "Walk-in",
	}
	if mutate != nil {
		mutate(&v)
	}
	return v
}

func TestProjectEmptyFilterIsIdentity(t *testing.T) {
	tickets := []domain.TicketView{view(1, nil), view(2, nil), view(3, nil)}
	page := Project(tickets, Params{Page: 1})
	if page.Total != 3 || len(page.Items) != 3 {
		t.Fatalf("expected all rows, got total=%d items=%d", page.Total, len(page.Items))
	}
}

func TestProjectFilterIsCaseInsensitiveSubstring(t *testing.T) {
	tickets := []domain.TicketView{
		view(1, func(v *domain.TicketView) { v.DepartmentName = "Engineering" }),
		view(2, func(v *domain.TicketView) { v.Email = "ProudEngineer@example.com" }),
		view(3, nil),
	}
	page := Project(tickets, Params{Filter: "ENGINEER", Page: 1})
	if page.Total != 2 {
		t.Fatalf("expected 2 matches, got %d", page.Total)
	}
}

func TestProjectFilterMatchesNumericID(t *testing.T) {
	tickets := []domain.TicketView{view(41, nil), view(52, nil)}
	page := Project(tickets, Params{Filter: "41", Page: 1})
	if page.Total != 1 || page.Items[0].ID != 41 {
		t.Fatalf("expected ticket 41, got %+v", page.Items)
	}
}

func TestProjectPrioritySortBuckets(t *testing.T) {
	tickets := []domain.TicketView{
		view(1, func(v *domain.TicketView) { v.Priority = domain.TicketPriorityLow }),
		view(2, func(v *domain.TicketView) { v.Priority = domain.TicketPriorityHigh }),
		view(3, func(v *domain.TicketView) { v.Priority = domain.TicketPriorityModerate }),
		view(4, func(v *domain.TicketView) { v.Priority = domain.TicketPriorityHigh }),
		view(5, func(v *domain.TicketView) { v.Priority = domain.TicketPriority("urgent!!") }),
	}
	page := Project(tickets, Params{Sort: SortByPriority, Page: 1})

	got := make([]domain.TicketPriority, 0, len(page.Items))
	for _, item := range page.Items {
		got = append(got, item.Priority)
	}
	want := []domain.TicketPriority{
		domain.TicketPriorityHigh,
		domain.TicketPriorityHigh,
		domain.TicketPriorityModerate,
		domain.TicketPriorityLow,
		domain.TicketPriority("urgent!!"),
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: got %q, want %q (full order %v)", i, got[i], want[i], got)
		}
	}
}

func TestProjectStatusSortPartitions(t *testing.T) {
	tickets := []domain.TicketView{
		view(1, func(v *domain.TicketView) { v.Status = domain.TicketStatusResolved }),
		view(2, func(v *domain.TicketView) { v.Status = domain.TicketStatusInProgress }),
		view(3, func(v *domain.TicketView) { v.Status = domain.TicketStatusResolved }),
		view(4, func(v *domain.TicketView) { v.Status = domain.TicketStatusPending }),
	}
	page := Project(tickets, Params{Sort: SortByStatus, Status: domain.TicketStatusResolved, Page: 1})
	if page.Items[0].Status != domain.TicketStatusResolved || page.Items[1].Status != domain.TicketStatusResolved {
		t.Fatalf("matching statuses must come first, got %+v", page.Items)
	}
	for _, item := range page.Items[2:] {
		if item.Status == domain.TicketStatusResolved {
			t.Fatalf("matching status found after the partition: %+v", page.Items)
		}
	}
}

func TestProjectPagination(t *testing.T) {
	tickets := make([]domain.TicketView, 0, 23)
	for i := int64(1); i <= 23; i++ {
		tickets = append(tickets, view(i, nil))
	}

	page1 := Project(tickets, Params{Sort: SortByID, Page: 1})
	if len(page1.Items) != PageSize || page1.TotalPages != 3 || page1.Total != 23 {
		t.Fatalf("page 1: items=%d totalPages=%d total=%d", len(page1.Items), page1.TotalPages, page1.Total)
	}

	page3 := Project(tickets, Params{Sort: SortByID, Page: 3})
	if len(page3.Items) != 3 {
		t.Fatalf("page 3 should carry the remainder, got %d items", len(page3.Items))
	}
	if page3.Items[0].ID != 21 {
		t.Fatalf("page 3 should start at ticket 21, got %d", page3.Items[0].ID)
	}

	page9 := Project(tickets, Params{Sort: SortByID, Page: 9})
	if len(page9.Items) != 0 {
		t.Fatalf("out-of-range page must be empty, got %d items", len(page9.Items))
	}

	page0 := Project(tickets, Params{Sort: SortByID, Page: 0})
	if page0.Page != 1 || len(page0.Items) != PageSize {
		t.Fatalf("page below 1 must clamp to 1, got page=%d items=%d", page0.Page, len(page0.Items))
	}
}

func TestProjectDoesNotMutateInput(t *testing.T) {
	tickets := []domain.TicketView{
		view(3, nil),
		view(1, nil),
		view(2, nil),
	}
	_ = Project(tickets, Params{Sort: SortByID, Page: 1})
	if tickets[0].ID != 3 || tickets[1].ID != 1 || tickets[2].ID != 2 {
		t.Fatalf("input slice reordered: %+v", tickets)
	}
}
