package models

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalCount int `json:"totalCount"`
	TotalPages int `json:"totalPages"`
}

// PageItem is one entry of the page-number strip. Ellipsis entries carry no page.
type PageItem struct {
	Page     int  `json:"page,omitempty"`
	Ellipsis bool `json:"ellipsis,omitempty"`
}

// DonorPage is a filtered, sorted, paginated view of the registry.
type DonorPage struct {
	Items      []Donor    `json:"items"`
	Pagination Pagination `json:"pagination"`
	Window     []PageItem `json:"window"`
}
