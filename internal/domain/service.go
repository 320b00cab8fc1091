package domain

import "time"

// Service is a queue-producing unit operated by a company, e.g. one counter
// or clinic desk. Tickets are numbered and ordered per service.
type Service struct {
	ID                    string
	CompanyID             string
	Name                  string
	Description           string
	AverageServiceMinutes int
	CreatedAt             time.Time
}
