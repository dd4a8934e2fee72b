// Package patient provides patient record CRUD. Records are soft-deleted
// only (deactivated), and every write is stamped and audited.
package patient

import (
	"time"

	"github.com/carepoint/healthcare-records/internal/audited"
)

// ResourceType is the audit trail resource name for patients.
const ResourceType = "patient"

type Patient struct {
	audited.Fields
	Name      string
	BirthDate *time.Time
	Email     string
	Phone     string
	Active    bool
}
