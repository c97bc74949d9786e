package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"findash/internal/logic"
	"findash/internal/svc"
	"findash/internal/types"
)

func ChatHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.ChatReq
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}
		l := logic.NewChatLogic(r.Context(), svcCtx)
		resp, err := l.Chat(&req)
		respond(w, r, resp, err)
	}
}
