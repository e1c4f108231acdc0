package dashboard

import (
	"time"

	"github.com/dalemusser/visitdesk/internal/domain/models"
)

// Bucket is one bar or slice of a chart.
type Bucket struct {
	Label string
	Count int
	Pct   int // share of the largest bucket, 0-100, for bar widths
}

// ApprovalCounts tallies today's visitor records by approval status.
// Each record counts once, whatever its party size.
type ApprovalCounts struct {
	Total    int
	Approved int
	Pending  int
	Denied   int
}

// Buckets returns the approval slices with their share of the total.
func (c ApprovalCounts) Buckets() []Bucket {
	return shares(c.Total,
		Bucket{Label: "Approved", Count: c.Approved},
		Bucket{Label: "Pending", Count: c.Pending},
		Bucket{Label: "Denied", Count: c.Denied},
	)
}

// LifecycleCounts tallies today's visitors by presence. These sum the
// party size of each record.
type LifecycleCounts struct {
	Total     int
	Scheduled int
	Arrived   int
	Departed  int
}

// Buckets returns the presence slices with their share of the total.
func (c LifecycleCounts) Buckets() []Bucket {
	return shares(c.Total,
		Bucket{Label: "Scheduled", Count: c.Scheduled},
		Bucket{Label: "Arrived", Count: c.Arrived},
		Bucket{Label: "Departed", Count: c.Departed},
	)
}

// Stats is everything the dashboard draws for one society.
type Stats struct {
	Society  string
	Today    ApprovalCounts
	Presence LifecycleCounts
	Members  []Bucket // members per apartment, in apartment order
	Monthly  []Bucket // visitors per month this year, empty months left out
	Admins   []models.User
	Managers []models.User
}

// ComputeStats derives the dashboard figures from a society with its
// nested apartments, apartment members and visitors. now fixes both "today"
// and the time zone dates are read in.
func ComputeStats(s models.Society, now time.Time) Stats {
	st := Stats{Society: s.Name}
	loc := now.Location()
	y, m, d := now.Date()

	monthly := make([]int, 12)
	for _, a := range s.Apartments {
		st.Members = append(st.Members, Bucket{Label: a.Name, Count: len(a.Users)})

		for _, v := range a.Visitors {
			if v.FromDate.IsZero() {
				continue
			}
			from := v.FromDate.In(loc)
			fy, fm, fd := from.Date()

			if fy == y && fm <= m {
				monthly[fm-1] += v.VisitorsCount
			}
			if fy != y || fm != m || fd != d {
				continue
			}

			st.Today.Total++
			switch v.ApprovalStatus {
			case models.ApprovalApproved:
				st.Today.Approved++
			case models.ApprovalPending:
				st.Today.Pending++
			case models.ApprovalDenied:
				st.Today.Denied++
			}

			st.Presence.Total += v.VisitorsCount
			switch v.VisitorStatus {
			case models.VisitorScheduled:
				st.Presence.Scheduled += v.VisitorsCount
			case models.VisitorArrived:
				st.Presence.Arrived += v.VisitorsCount
			case models.VisitorDeparted:
				st.Presence.Departed += v.VisitorsCount
			}
		}
	}

	for i := 0; i < int(m); i++ {
		if monthly[i] > 0 {
			st.Monthly = append(st.Monthly, Bucket{Label: time.Month(i + 1).String()[:3], Count: monthly[i]})
		}
	}
	scale(st.Members)
	scale(st.Monthly)

	st.Admins, st.Managers = staff(s)
	return st
}

// staff splits the society's administrators by role. Admins come from the
// society's admin list and its member list; duplicates are dropped.
func staff(s models.Society) (admins, managers []models.User) {
	seen := map[string]bool{}
	for _, group := range [][]models.User{s.AdminNames, s.Users} {
		for _, u := range group {
			key := u.ID.String()
			if key == "" {
				key = "name:" + u.Name
			}
			if seen[key] {
				continue
			}
			switch u.Role {
			case models.RoleAdmin:
				admins = append(admins, u)
			case models.RoleManager:
				managers = append(managers, u)
			default:
				continue
			}
			seen[key] = true
		}
	}
	return admins, managers
}

func scale(bs []Bucket) {
	top := 0
	for _, b := range bs {
		top = max(top, b.Count)
	}
	if top == 0 {
		return
	}
	for i := range bs {
		bs[i].Pct = bs[i].Count * 100 / top
	}
}

func shares(total int, bs ...Bucket) []Bucket {
	if total > 0 {
		for i := range bs {
			bs[i].Pct = bs[i].Count * 100 / total
		}
	}
	return bs
}
