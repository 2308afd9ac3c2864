package dto

import "sellerhub/internal/service"

type ChatReq struct {
	Message string                `json:"message" binding:"required"`
	History []service.ChatMessage `json:"history"`
}

type ExecuteActionReq struct {
	Action service.AIAction `json:"action" binding:"required"`
}
