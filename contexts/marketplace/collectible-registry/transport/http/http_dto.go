package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type IssueCollectibleRequest struct {
	MetadataRef string `json:"metadata_ref"`
}

type CollectibleResponse struct {
	Status string `json:"status"`
	Data   struct {
		CollectibleID uint64 `json:"collectible_id"`
		MetadataRef   string `json:"metadata_ref"`
		Holder        string `json:"holder"`
		IssuedAt      string `json:"issued_at"`
	} `json:"data"`
}

type MetadataResponse struct {
	Status string `json:"status"`
	Data   struct {
		CollectibleID uint64 `json:"collectible_id"`
		MetadataRef   string `json:"metadata_ref"`
		MetadataURL   string `json:"metadata_url"`
	} `json:"data"`
}

type HolderResponse struct {
	Status string `json:"status"`
	Data   struct {
		CollectibleID uint64 `json:"collectible_id"`
		Holder        string `json:"holder"`
	} `json:"data"`
}

type TransferRequest struct {
	To string `json:"to"`
}

type SetBaseURIRequest struct {
	BaseURI string `json:"base_uri"`
}

type SetOperatorRequest struct {
	Operator string `json:"operator"`
}

type GenericAcceptedResponse struct {
	Status string `json:"status"`
}
