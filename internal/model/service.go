package model

// Service is a registry entry for a sending service. Read on every
// enrichment of every message from that sender, hence cached aggressively.
type Service struct {
	ServiceID              string `json:"serviceId"`
	ServiceName            string `json:"serviceName"`
	DepartmentName         string `json:"departmentName,omitempty"`
	OrganizationName       string `json:"organizationName"`
	OrganizationFiscalCode string `json:"organizationFiscalCode"`
	IsVisible              bool   `json:"isVisible"`
	Version                int    `json:"version"`
}
