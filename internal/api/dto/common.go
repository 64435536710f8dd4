package dto

type ErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

// CountResponse reports how many relations a batch grant touched.
type CountResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}
