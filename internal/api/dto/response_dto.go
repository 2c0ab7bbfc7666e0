package dto

// Warning is a degraded secondary step reported with a successful response.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// DataResponse wraps a single payload.
type DataResponse struct {
	Data     any       `json:"data"`
	Warnings []Warning `json:"warnings,omitempty"`
}

// ListResponse wraps a page of documents.
type ListResponse struct {
	Data    any `json:"data"`
	Results int `json:"results"`
	Total   int `json:"total"`
	Limit   int `json:"limit,omitempty"`
	Offset  int `json:"offset"`
}
