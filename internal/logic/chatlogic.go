package logic

import (
	"context"
	"errors"

	"github.com/zeromicro/go-zero/core/logx"

	"findash/internal/svc"
	"findash/internal/types"
	"findash/pkg/assistant"
	"findash/pkg/llm"
)

type ChatLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewChatLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ChatLogic {
	return &ChatLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *ChatLogic) Chat(req *types.ChatReq) (*types.ChatResp, error) {
	asst := l.svcCtx.Assistant
	if asst == nil {
		return nil, errors.New("assistant is not configured")
	}
	if len(req.Messages) == 0 {
		return nil, errors.New("messages are required")
	}
	var choice assistant.Choice
	if req.Provider != "" {
		parsed, err := assistant.ParseChoice(req.Provider)
		if err != nil {
			return nil, err
		}
		choice = parsed
	}

	history := make([]llm.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		history = append(history, llm.Message{Role: m.Role, Content: m.Content})
	}
	reply, err := asst.Complete(l.ctx, history, choice)
	if err != nil {
		l.Errorf("chat failed provider=%s: %v", choice, err)
		return nil, err
	}
	return &types.ChatResp{Reply: reply, Providers: asst.Choices()}, nil
}
