package metadata

// ListStatusesRequest is the request for listing statuses.
type ListStatusesRequest struct{}

// ListStatusesResponse is the response containing the status catalog.
type ListStatusesResponse struct {
	Statuses []Status `json:"statuses"`
}

// ListPrioritiesRequest is the request for listing priorities.
type ListPrioritiesRequest struct{}

// ListPrioritiesResponse is the response containing the priority catalog.
type ListPrioritiesResponse struct {
	Priorities []Priority `json:"priorities"`
}

// CatalogRequest is the request for the full catalog snapshot.
type CatalogRequest struct{}

// CatalogResponse carries the full catalog plus the designated initial
// status, so consumers can rebuild a local registry in one round trip.
type CatalogResponse struct {
	Statuses        []Status   `json:"statuses"`
	Priorities      []Priority `json:"priorities"`
	InitialStatusID string     `json:"initial_status_id"`
}
