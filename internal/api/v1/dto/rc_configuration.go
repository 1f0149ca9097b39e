package dto

// RCConfigurationEnvironment is the per-environment slice of a
// remote-content configuration.
type RCConfigurationEnvironment struct {
	BaseURL   string   `json:"base_url"`
	TestUsers []string `json:"test_users,omitempty"`
}

// RCConfigurationResponse is the public shape of a remote-content
// configuration.
type RCConfigurationResponse struct {
	ConfigurationID string                      `json:"configuration_id"`
	Name            string                      `json:"name"`
	Description     string                      `json:"description,omitempty"`
	HasPrecondition string                      `json:"has_precondition"`
	ProdEnvironment *RCConfigurationEnvironment `json:"prod_environment,omitempty"`
	TestEnvironment *RCConfigurationEnvironment `json:"test_environment,omitempty"`
}
