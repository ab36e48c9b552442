package response

import "github.com/user/listings-service/internal/entity"

// TagResponse is one enrichment attribute of a listing.
type TagResponse struct {
	Attribute string `json:"attribute"`
	Value     string `json:"value"`
}

// VehicleDetailResponse is one normalized listing with its enrichment tags.
type VehicleDetailResponse struct {
	entity.Vehicle
	Tags []TagResponse `json:"tags"`
}
