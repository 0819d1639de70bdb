// internal/adapter/storage/builder.go

package storage

import (
	"fmt"
	"strings"

	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/domain/geo"
)

// conditions accumulates WHERE predicates with automatically numbered
// positional parameters, so filters compose without manual $n bookkeeping.
type conditions struct {
	clauses []string
	args    []interface{}
}

// add appends a predicate whose %s placeholders are replaced by the next
// positional parameters, one per argument.
func (c *conditions) add(format string, args ...interface{}) {
	placeholders := make([]interface{}, len(args))
	for i := range args {
		placeholders[i] = fmt.Sprintf("$%d", len(c.args)+i+1)
	}
	c.clauses = append(c.clauses, fmt.Sprintf(format, placeholders...))
	c.args = append(c.args, args...)
}

// boundingBox appends the rectangular pre-filter on the given lat/lng
// columns. Rows with a null position never become candidates.
func (c *conditions) boundingBox(latCol, lngCol string, box geo.BoundingBox) {
	c.add(latCol+" IS NOT NULL AND "+lngCol+" IS NOT NULL")
	c.add(latCol+" BETWEEN %s AND %s", box.MinLat, box.MaxLat)
	c.add(lngCol+" BETWEEN %s AND %s", box.MinLng, box.MaxLng)
}

// where renders the accumulated predicates as a WHERE clause.
func (c *conditions) where() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.clauses, " AND ")
}

// next returns the placeholder for one extra argument appended outside the
// WHERE clause, such as a LIMIT.
func (c *conditions) next(arg interface{}) string {
	c.args = append(c.args, arg)
	return fmt.Sprintf("$%d", len(c.args))
}
