package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest"

	"findash/internal/svc"
)

func RegisterHandlers(server *rest.Server, serverCtx *svc.ServiceContext) {
	server.AddRoutes(
		[]rest.Route{
			{Method: http.MethodGet, Path: "/view", Handler: ViewHandler(serverCtx)},
			{Method: http.MethodPost, Path: "/market", Handler: SwitchMarketHandler(serverCtx)},
			{Method: http.MethodPost, Path: "/selection", Handler: AssignHandler(serverCtx)},
			{Method: http.MethodPost, Path: "/auth", Handler: AuthHandler(serverCtx)},
			{Method: http.MethodPost, Path: "/refresh", Handler: RefreshHandler(serverCtx)},
			{Method: http.MethodGet, Path: "/history", Handler: HistoryHandler(serverCtx)},
			{Method: http.MethodGet, Path: "/clock", Handler: ClockHandler(serverCtx)},
			{Method: http.MethodGet, Path: "/quotes/cached", Handler: CachedQuotesHandler(serverCtx)},
			{Method: http.MethodPost, Path: "/chat", Handler: ChatHandler(serverCtx)},
		},
		rest.WithPrefix("/api"),
	)
}
