package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type TierRangePayload struct {
	StartID uint64 `json:"start_id"`
	EndID   uint64 `json:"end_id"`
	Tier    int    `json:"tier"`
}

type ConfigureRangesRequest struct {
	Ranges []TierRangePayload `json:"ranges"`
}

type SetPricesRequest struct {
	// Prices is positional: tier 1 first.
	Prices []int64 `json:"prices"`
}

type GenericAcceptedResponse struct {
	Status string `json:"status"`
}

type PriceResponse struct {
	Status string `json:"status"`
	Data   struct {
		CollectibleID uint64 `json:"collectible_id"`
		Price         int64  `json:"price"`
	} `json:"data"`
}

type TableResponse struct {
	Status string `json:"status"`
	Data   struct {
		Ranges []TierRangePayload `json:"ranges"`
		Prices []int64            `json:"prices"`
	} `json:"data"`
}
