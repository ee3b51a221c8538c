package listing

import (
	"strings"

	"github.com/dmrmediateam/eagan-luxury-sub001/models"
)

// Lookups is an in-memory LookupTable built per request from LookupValue rows.
type Lookups map[lookupKey]string

type lookupKey struct {
	mlsID, name, code string
}

// NewLookups indexes rows by (MlsID, LookupName, Code). Codes compare
// case-insensitively; later duplicates win.
func NewLookups(rows []models.LookupValue) Lookups {
	l := make(Lookups, len(rows))
	for _, r := range rows {
		if r.Code == "" || r.Display == "" {
			continue
		}
		l[lookupKey{r.MlsID, r.LookupName, strings.ToLower(r.Code)}] = r.Display
	}
	return l
}

func (l Lookups) Display(mlsID, lookupName, code string) string {
	return l[lookupKey{mlsID, lookupName, strings.ToLower(strings.TrimSpace(code))}]
}
