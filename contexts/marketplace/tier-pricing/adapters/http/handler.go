package httpadapter

import (
	"context"
	"log/slog"

	"scorpion/contexts/marketplace/tier-pricing/application"
	"scorpion/contexts/marketplace/tier-pricing/ports"
	httptransport "scorpion/contexts/marketplace/tier-pricing/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) ConfigureRangesHandler(
	ctx context.Context,
	actorUserID string,
	req httptransport.ConfigureRangesRequest,
) (httptransport.GenericAcceptedResponse, error) {
	ranges := make([]ports.TierRange, 0, len(req.Ranges))
	for _, item := range req.Ranges {
		ranges = append(ranges, ports.TierRange{
			StartID: item.StartID,
			EndID:   item.EndID,
			Tier:    ports.Tier(item.Tier),
		})
	}
	if err := h.Service.Configure(ctx, actorUserID, ranges); err != nil {
		return httptransport.GenericAcceptedResponse{}, err
	}
	return httptransport.GenericAcceptedResponse{Status: "ok"}, nil
}

func (h Handler) SetPricesHandler(
	ctx context.Context,
	actorUserID string,
	req httptransport.SetPricesRequest,
) (httptransport.GenericAcceptedResponse, error) {
	prices := make([]ports.Amount, 0, len(req.Prices))
	for _, price := range req.Prices {
		prices = append(prices, ports.Amount(price))
	}
	if err := h.Service.SetPrices(ctx, actorUserID, prices); err != nil {
		return httptransport.GenericAcceptedResponse{}, err
	}
	return httptransport.GenericAcceptedResponse{Status: "ok"}, nil
}

func (h Handler) PriceForHandler(
	ctx context.Context,
	collectibleID uint64,
) (httptransport.PriceResponse, error) {
	price, err := h.Service.PriceFor(ctx, collectibleID)
	if err != nil {
		return httptransport.PriceResponse{}, err
	}
	var resp httptransport.PriceResponse
	resp.Status = "ok"
	resp.Data.CollectibleID = collectibleID
	resp.Data.Price = int64(price)
	return resp, nil
}

func (h Handler) TableHandler(ctx context.Context) (httptransport.TableResponse, error) {
	ranges, err := h.Service.Ranges(ctx)
	if err != nil {
		return httptransport.TableResponse{}, err
	}
	prices, err := h.Service.Prices(ctx)
	if err != nil {
		return httptransport.TableResponse{}, err
	}

	var resp httptransport.TableResponse
	resp.Status = "ok"
	resp.Data.Ranges = make([]httptransport.TierRangePayload, 0, len(ranges))
	for _, item := range ranges {
		resp.Data.Ranges = append(resp.Data.Ranges, httptransport.TierRangePayload{
			StartID: item.StartID,
			EndID:   item.EndID,
			Tier:    int(item.Tier),
		})
	}
	resp.Data.Prices = make([]int64, 0, len(prices))
	for _, price := range prices {
		resp.Data.Prices = append(resp.Data.Prices, int64(price))
	}
	return resp, nil
}
