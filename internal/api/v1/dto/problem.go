package dto

// Problem is the structured error payload returned on every non-2xx
// response.
type Problem struct {
	Title  string `json:"title"`
	Detail string `json:"detail,omitempty"`
	Status int    `json:"status"`
}
