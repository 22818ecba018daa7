package httpadapter

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"scorpion/contexts/marketplace/collectible-registry/application"
	"scorpion/contexts/marketplace/collectible-registry/ports"
	httptransport "scorpion/contexts/marketplace/collectible-registry/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) IssueHandler(
	ctx context.Context,
	actorUserID string,
	req httptransport.IssueCollectibleRequest,
) (httptransport.CollectibleResponse, error) {
	item, err := h.Service.Issue(ctx, actorUserID, strings.TrimSpace(req.MetadataRef))
	if err != nil {
		return httptransport.CollectibleResponse{}, err
	}
	return toCollectibleResponse(item), nil
}

func (h Handler) MetadataHandler(
	ctx context.Context,
	collectibleID uint64,
) (httptransport.MetadataResponse, error) {
	ref, err := h.Service.ResolveMetadata(ctx, collectibleID)
	if err != nil {
		return httptransport.MetadataResponse{}, err
	}
	url, err := h.Service.MetadataURL(ctx, collectibleID)
	if err != nil {
		return httptransport.MetadataResponse{}, err
	}
	var resp httptransport.MetadataResponse
	resp.Status = "ok"
	resp.Data.CollectibleID = collectibleID
	resp.Data.MetadataRef = ref
	resp.Data.MetadataURL = url
	return resp, nil
}

func (h Handler) HolderHandler(
	ctx context.Context,
	collectibleID uint64,
) (httptransport.HolderResponse, error) {
	holder, err := h.Service.HolderOf(ctx, collectibleID)
	if err != nil {
		return httptransport.HolderResponse{}, err
	}
	var resp httptransport.HolderResponse
	resp.Status = "ok"
	resp.Data.CollectibleID = collectibleID
	resp.Data.Holder = holder
	return resp, nil
}

func (h Handler) TransferHandler(
	ctx context.Context,
	actorUserID string,
	collectibleID uint64,
	req httptransport.TransferRequest,
) (httptransport.CollectibleResponse, error) {
	item, err := h.Service.Transfer(ctx, actorUserID, collectibleID, strings.TrimSpace(req.To))
	if err != nil {
		return httptransport.CollectibleResponse{}, err
	}
	return toCollectibleResponse(item), nil
}

func (h Handler) SetBaseURIHandler(
	ctx context.Context,
	actorUserID string,
	req httptransport.SetBaseURIRequest,
) (httptransport.GenericAcceptedResponse, error) {
	if err := h.Service.SetBaseURI(ctx, actorUserID, req.BaseURI); err != nil {
		return httptransport.GenericAcceptedResponse{}, err
	}
	return httptransport.GenericAcceptedResponse{Status: "ok"}, nil
}

func (h Handler) SetOperatorHandler(
	ctx context.Context,
	actorUserID string,
	req httptransport.SetOperatorRequest,
) (httptransport.GenericAcceptedResponse, error) {
	if err := h.Service.SetOperator(ctx, actorUserID, req.Operator); err != nil {
		return httptransport.GenericAcceptedResponse{}, err
	}
	return httptransport.GenericAcceptedResponse{Status: "ok"}, nil
}

func toCollectibleResponse(item ports.Collectible) httptransport.CollectibleResponse {
	var resp httptransport.CollectibleResponse
	resp.Status = "ok"
	resp.Data.CollectibleID = item.ID
	resp.Data.MetadataRef = item.MetadataRef
	resp.Data.Holder = item.Holder
	resp.Data.IssuedAt = item.IssuedAt.Format(time.RFC3339)
	return resp
}
