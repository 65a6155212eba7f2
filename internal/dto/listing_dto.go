package dto

// UpdateListingRequest is the JSON form of a partial update. Absent fields
// keep their stored values; images can only change through multipart
// uploads.
type UpdateListingRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Tags        []string `json:"tags"`
}

type DeleteListingResponse struct {
	Message string `json:"message"`
}
