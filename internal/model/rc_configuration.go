package model

// HasPrecondition values for a remote-content configuration.
const (
	HasPreconditionAlways = "ALWAYS"
	HasPreconditionOnce   = "ONCE"
	HasPreconditionNever  = "NEVER"
)

// RCConfiguration holds the remote-content delivery settings for a sending
// service, including whether a precondition check is required before the
// message can be rendered. Mutated by a separate administrative flow; read
// here strictly for enrichment.
type RCConfiguration struct {
	ConfigurationID string         `json:"configurationId"`
	UserID          string         `json:"userId,omitempty"`
	Name            string         `json:"name"`
	Description     string         `json:"description,omitempty"`
	HasPrecondition string         `json:"hasPrecondition"`
	DisableLollipop bool           `json:"disableLollipopFor,omitempty"`
	ProdEnvironment *RCEnvironment `json:"prodEnvironment,omitempty"`
	TestEnvironment *RCEnvironment `json:"testEnvironment,omitempty"`
	Version         int            `json:"version"`
}

// RCEnvironment is the per-environment connection detail of an RC
// configuration.
type RCEnvironment struct {
	BaseURL               string            `json:"baseUrl"`
	DetailsAuthentication map[string]string `json:"detailsAuthentication,omitempty"`
	TestUsers             []string          `json:"testUsers,omitempty"`
}
