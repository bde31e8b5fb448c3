package domain

import "time"

// Department is a lookup entity tickets are routed to.
type Department struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// Filer categorizes who is submitting a ticket (e.g. Student, Faculty).
type Filer struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}
