package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ListItemRequest struct {
	CollectibleID uint64 `json:"collectible_id"`
	PriceOverride int64  `json:"price_override,omitempty"`
}

type MintAndListRequest struct {
	MetadataRef   string `json:"metadata_ref"`
	PriceOverride int64  `json:"price_override,omitempty"`
}

type MarketItemPayload struct {
	ItemID        uint64 `json:"item_id"`
	CollectibleID uint64 `json:"collectible_id"`
	Seller        string `json:"seller"`
	Owner         string `json:"owner"`
	Price         int64  `json:"price"`
	Sold          bool   `json:"sold"`
	ListedAt      string `json:"listed_at"`
	SoldAt        string `json:"sold_at,omitempty"`
}

type MarketItemResponse struct {
	Status string            `json:"status"`
	Data   MarketItemPayload `json:"data"`
}

type MarketItemListResponse struct {
	Status string              `json:"status"`
	Data   []MarketItemPayload `json:"data"`
}

type PurchaseRequest struct {
	Payment int64 `json:"payment"`
}

type ReceiptResponse struct {
	Status string `json:"status"`
	Data   struct {
		ReceiptID      string `json:"receipt_id"`
		ItemID         uint64 `json:"item_id"`
		Buyer          string `json:"buyer"`
		PricePaid      int64  `json:"price_paid"`
		RoyaltyPaid    int64  `json:"royalty_paid"`
		SellerProceeds int64  `json:"seller_proceeds"`
		Refunded       int64  `json:"refunded"`
		PurchasedAt    string `json:"purchased_at"`
	} `json:"data"`
}

type SetMarketingWalletRequest struct {
	Account string `json:"account"`
}

type SetRoyaltyRequest struct {
	Percent int `json:"percent"`
}

type SetPaymentTokenRequest struct {
	TokenRef string `json:"token_ref"`
}

type CreditWalletRequest struct {
	Amount int64 `json:"amount"`
}

type BalanceResponse struct {
	Status string `json:"status"`
	Data   struct {
		Account string `json:"account"`
		Balance int64  `json:"balance"`
	} `json:"data"`
}

type GenericAcceptedResponse struct {
	Status string `json:"status"`
}
