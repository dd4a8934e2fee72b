// Package provider provides care provider CRUD.
package provider

import (
	"github.com/carepoint/healthcare-records/internal/audited"
)

const ResourceType = "provider"

type Provider struct {
	audited.Fields
	Name          string
	Specialty     string
	LicenseNumber string
	Email         string
	Active        bool
}
