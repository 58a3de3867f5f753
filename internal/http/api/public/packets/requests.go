package packets

// query for GET /api/mosques
type BoundsQuery struct {
	South *float64 `form:"south" binding:"required"`
	North *float64 `form:"north" binding:"required"`
	West  *float64 `form:"west"  binding:"required"`
	East  *float64 `form:"east"  binding:"required"`
	Limit int      `form:"limit" binding:"omitempty,min=1"`
}

// query for GET /api/mosques/nearby
type NearbyQuery struct {
	Lat      *float64 `form:"lat"       binding:"required,min=-90,max=90"`
	Lng      *float64 `form:"lng"       binding:"required,min=-180,max=180"`
	RadiusKm float64  `form:"radius_km" binding:"omitempty,gt=0,max=200"`
	Limit    int      `form:"limit"     binding:"omitempty,min=1"`
}

// body for POST /api/payments/checkout
type CheckoutRequest struct {
	PriceID      string `json:"priceId"`
	CustomAmount *int64 `json:"customAmount"`
}

// frame sent by the map page over /api/map/live
type LiveRequest struct {
	Type  string  `json:"type"` // "bounds", "select", "dismiss"
	South float64 `json:"south"`
	North float64 `json:"north"`
	West  float64 `json:"west"`
	East  float64 `json:"east"`
	ID    string  `json:"id,omitempty"`
}
