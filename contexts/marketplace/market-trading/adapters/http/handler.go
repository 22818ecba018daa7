package httpadapter

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"scorpion/contexts/marketplace/market-trading/application"
	"scorpion/contexts/marketplace/market-trading/ports"
	httptransport "scorpion/contexts/marketplace/market-trading/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) ListItemHandler(
	ctx context.Context,
	actorUserID string,
	req httptransport.ListItemRequest,
) (httptransport.MarketItemResponse, error) {
	item, err := h.Service.List(ctx, actorUserID, ports.ListInput{
		CollectibleID: req.CollectibleID,
		PriceOverride: ports.Amount(req.PriceOverride),
	})
	if err != nil {
		return httptransport.MarketItemResponse{}, err
	}
	return httptransport.MarketItemResponse{
		Status: "ok",
		Data:   toMarketItemPayload(item),
	}, nil
}

func (h Handler) MintAndListHandler(
	ctx context.Context,
	idempotencyKey string,
	actorUserID string,
	req httptransport.MintAndListRequest,
) (httptransport.MarketItemResponse, error) {
	item, err := h.Service.MintAndList(ctx, idempotencyKey, actorUserID, ports.MintAndListInput{
		MetadataRef:   strings.TrimSpace(req.MetadataRef),
		PriceOverride: ports.Amount(req.PriceOverride),
	})
	if err != nil {
		return httptransport.MarketItemResponse{}, err
	}
	return httptransport.MarketItemResponse{
		Status: "ok",
		Data:   toMarketItemPayload(item),
	}, nil
}

func (h Handler) GetItemHandler(
	ctx context.Context,
	itemID uint64,
) (httptransport.MarketItemResponse, error) {
	item, err := h.Service.Get(ctx, itemID)
	if err != nil {
		return httptransport.MarketItemResponse{}, err
	}
	return httptransport.MarketItemResponse{
		Status: "ok",
		Data:   toMarketItemPayload(item),
	}, nil
}

func (h Handler) FetchActiveHandler(ctx context.Context) (httptransport.MarketItemListResponse, error) {
	items, err := h.Service.FetchActive(ctx)
	if err != nil {
		return httptransport.MarketItemListResponse{}, err
	}
	resp := httptransport.MarketItemListResponse{
		Status: "ok",
		Data:   make([]httptransport.MarketItemPayload, 0, len(items)),
	}
	for _, item := range items {
		resp.Data = append(resp.Data, toMarketItemPayload(item))
	}
	return resp, nil
}

func (h Handler) PurchaseHandler(
	ctx context.Context,
	idempotencyKey string,
	actorUserID string,
	itemID uint64,
	req httptransport.PurchaseRequest,
) (httptransport.ReceiptResponse, error) {
	receipt, err := h.Service.Purchase(ctx, idempotencyKey, actorUserID, itemID, ports.Amount(req.Payment))
	if err != nil {
		return httptransport.ReceiptResponse{}, err
	}
	var resp httptransport.ReceiptResponse
	resp.Status = "ok"
	resp.Data.ReceiptID = receipt.ReceiptID
	resp.Data.ItemID = receipt.ItemID
	resp.Data.Buyer = receipt.Buyer
	resp.Data.PricePaid = int64(receipt.PricePaid)
	resp.Data.RoyaltyPaid = int64(receipt.RoyaltyPaid)
	resp.Data.SellerProceeds = int64(receipt.SellerProceeds)
	resp.Data.Refunded = int64(receipt.Refunded)
	resp.Data.PurchasedAt = receipt.PurchasedAt.Format(time.RFC3339)
	return resp, nil
}

func (h Handler) SetMarketingWalletHandler(
	ctx context.Context,
	actorUserID string,
	req httptransport.SetMarketingWalletRequest,
) (httptransport.GenericAcceptedResponse, error) {
	if err := h.Service.SetMarketingWallet(ctx, actorUserID, req.Account); err != nil {
		return httptransport.GenericAcceptedResponse{}, err
	}
	return httptransport.GenericAcceptedResponse{Status: "ok"}, nil
}

func (h Handler) SetRoyaltyHandler(
	ctx context.Context,
	actorUserID string,
	req httptransport.SetRoyaltyRequest,
) (httptransport.GenericAcceptedResponse, error) {
	if err := h.Service.SetRoyaltyPercent(ctx, actorUserID, req.Percent); err != nil {
		return httptransport.GenericAcceptedResponse{}, err
	}
	return httptransport.GenericAcceptedResponse{Status: "ok"}, nil
}

func (h Handler) SetPaymentTokenHandler(
	ctx context.Context,
	actorUserID string,
	req httptransport.SetPaymentTokenRequest,
) (httptransport.GenericAcceptedResponse, error) {
	if err := h.Service.SetPaymentToken(ctx, actorUserID, req.TokenRef); err != nil {
		return httptransport.GenericAcceptedResponse{}, err
	}
	return httptransport.GenericAcceptedResponse{Status: "ok"}, nil
}

func (h Handler) CreditWalletHandler(
	ctx context.Context,
	actorUserID string,
	account string,
	req httptransport.CreditWalletRequest,
) (httptransport.BalanceResponse, error) {
	if err := h.Service.CreditWallet(ctx, actorUserID, account, ports.Amount(req.Amount)); err != nil {
		return httptransport.BalanceResponse{}, err
	}
	return h.BalanceHandler(ctx, account)
}

func (h Handler) BalanceHandler(
	ctx context.Context,
	account string,
) (httptransport.BalanceResponse, error) {
	balance, err := h.Service.BalanceOf(ctx, strings.TrimSpace(account))
	if err != nil {
		return httptransport.BalanceResponse{}, err
	}
	var resp httptransport.BalanceResponse
	resp.Status = "ok"
	resp.Data.Account = strings.TrimSpace(account)
	resp.Data.Balance = int64(balance)
	return resp, nil
}

func toMarketItemPayload(item ports.MarketItem) httptransport.MarketItemPayload {
	payload := httptransport.MarketItemPayload{
		ItemID:        item.ItemID,
		CollectibleID: item.CollectibleID,
		Seller:        item.Seller,
		Owner:         item.Owner,
		Price:         int64(item.Price),
		Sold:          item.Sold,
		ListedAt:      item.ListedAt.Format(time.RFC3339),
	}
	if item.Sold {
		payload.SoldAt = item.SoldAt.Format(time.RFC3339)
	}
	return payload
}
