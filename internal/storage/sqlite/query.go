package sqlite

import (
	"fmt"
	"strings"

	"taskhive/internal/models"
)

// TaskQuery describes a task listing request: ownership scope, optional
// text filter, per-field sort direction flags and pagination. A sort
// flag is a raw query value; empty means the field does not participate
// in ordering.
type TaskQuery struct {
	ListID string
	UserID string

	Search string

	Status    string
	Priority  string
	CreatedAt string
	DueDate   string
	StartDate string
	EndDate   string

	Page  int
	Limit int
}

const (
	defaultPage  = 1
	defaultLimit = 50
)

// Descending reports whether a sort flag requests descending order.
// Only a case-insensitive "desc" does; anything else, including an
// empty flag, is ascending.
func Descending(flag string) bool {
	return strings.EqualFold(flag, "desc")
}

func directionSQL(flag string) string {
	if Descending(flag) {
		return "DESC"
	}
	return "ASC"
}

// NullDateFallback returns the date an undated task is treated as for
// sorting, chosen so undated tasks always sort after dated ones in
// either direction.
func NullDateFallback(desc bool) string {
	if desc {
		return "1900-01-01"
	}
	return "2099-12-31"
}

// statusRankSQL and priorityRankSQL translate the categorical rank
// tables into CASE expressions, so the database orders enums the same
// way models.StatusRank and models.PriorityRank do.
func statusRankSQL() string {
	return rankCaseSQL("status", models.StatusValues())
}

func priorityRankSQL() string {
	return rankCaseSQL("priority", models.PriorityValues())
}

func rankCaseSQL(column string, order []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CASE %s", column)
	for i, v := range order {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", v, i+1)
	}
	fmt.Fprintf(&b, " ELSE %d END", len(order)+1)
	return b.String()
}

func dateKeySQL(column, flag string) string {
	return fmt.Sprintf("COALESCE(%s, '%s') %s", column, NullDateFallback(Descending(flag)), directionSQL(flag))
}

func (q TaskQuery) page() int {
	if q.Page < 1 {
		return defaultPage
	}
	return q.Page
}

func (q TaskQuery) limit() int {
	if q.Limit < 1 {
		return defaultLimit
	}
	return q.Limit
}

func (q TaskQuery) offset() int {
	return (q.page() - 1) * q.limit()
}

// whereClause scopes the query to the owned list and applies the
// case-insensitive substring search over name and description.
func (q TaskQuery) whereClause() (string, []any) {
	where := "list_id = ? AND user_id = ?"
	args := []any{q.ListID, q.UserID}

	if q.Search != "" {
		where += " AND (instr(lower(name), ?) > 0 OR instr(lower(description), ?) > 0)"
		needle := strings.ToLower(q.Search)
		args = append(args, needle, needle)
	}
	return where, args
}

// orderClause builds the compound sort in fixed precedence: status,
// priority, createdAt, then the date fields. The first non-equal key
// decides; ties fall through. Creation order descending is the final
// fallback, with rowid as the exact insertion tiebreak.
func (q TaskQuery) orderClause() string {
	var keys []string

	if q.Status != "" {
		keys = append(keys, statusRankSQL()+" "+directionSQL(q.Status))
	}
	if q.Priority != "" {
		keys = append(keys, priorityRankSQL()+" "+directionSQL(q.Priority))
	}
	if q.CreatedAt != "" {
		keys = append(keys, "created_at "+directionSQL(q.CreatedAt))
	}
	if q.DueDate != "" {
		keys = append(keys, dateKeySQL("due_date", q.DueDate))
	}
	if q.StartDate != "" {
		keys = append(keys, dateKeySQL("start_date", q.StartDate))
	}
	if q.EndDate != "" {
		keys = append(keys, dateKeySQL("end_date", q.EndDate))
	}

	keys = append(keys, "created_at DESC", "rowid DESC")
	return "ORDER BY " + strings.Join(keys, ", ")
}
