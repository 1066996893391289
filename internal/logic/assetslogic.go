package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"findash-api/internal/cache"
	"findash-api/internal/svc"
	"findash-api/internal/types"
	"findash-api/pkg/catalog"
)

type AssetsLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewAssetsLogic(ctx context.Context, svcCtx *svc.ServiceContext) *AssetsLogic {
	return &AssetsLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *AssetsLogic) Assets(req *types.AssetsReq) (resp *types.AssetsResp, err error) {
	kind, err := catalog.ParseKind(req.Kind)
	if err != nil {
		return nil, err
	}

	entries, err := cache.Fetch(l.ctx, l.svcCtx.Cache, cache.AssetListKey(string(kind)),
		l.svcCtx.TTL.Duration(cache.TTLCatalog),
		func(context.Context) ([]catalog.Entry, error) {
			return l.svcCtx.Catalog.Entries(kind), nil
		})
	if err != nil {
		return nil, err
	}

	items := make([]types.AssetItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, types.AssetItem{
			Symbol:     e.Symbol,
			Name:       e.Name,
			ProviderId: e.ProviderID,
		})
	}
	return &types.AssetsResp{
		Kind:          string(kind),
		Label:         kind.Label(),
		DefaultSymbol: l.svcCtx.Catalog.DefaultSymbol(kind),
		UsesWindow:    kind.UsesWindow(),
		Assets:        items,
	}, nil
}
