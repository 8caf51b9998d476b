package handler

import (
	"starmf-gateway/internal/adapter/http/dto"
	"starmf-gateway/internal/core/domain"
	"starmf-gateway/internal/core/ports"
	"starmf-gateway/pkg/apperror"
	"starmf-gateway/pkg/response"

	"github.com/gin-gonic/gin"
)

// ClientHandler handles client registration endpoints.
type ClientHandler struct {
	clientSvc ports.ClientService
}

// NewClientHandler creates a new ClientHandler.
func NewClientHandler(clientSvc ports.ClientService) *ClientHandler {
	return &ClientHandler{clientSvc: clientSvc}
}

// RegisterClient handles POST /api/v1/clients.
func (h *ClientHandler) RegisterClient(c *gin.Context) {
	var req dto.ClientRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	client, err := h.clientSvc.RegisterClient(c.Request.Context(), req.ToRecord(), domain.RegistrationOptions{
		Type: domain.RegistrationNew,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.FromClient(client))
}

// ModifyClient handles PUT /api/v1/clients/:code.
func (h *ClientHandler) ModifyClient(c *gin.Context) {
	code := c.Param("code")

	var req dto.ClientRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)
	if req.ClientCode != code {
		response.Error(c, apperror.Validation("client code in body does not match path"))
		return
	}

	client, err := h.clientSvc.RegisterClient(c.Request.Context(), req.ToRecord(), domain.RegistrationOptions{
		Type:           domain.RegistrationModify,
		RequiredFields: req.RequiredFields,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.FromClient(client))
}

// GetClient handles GET /api/v1/clients/:code.
func (h *ClientHandler) GetClient(c *gin.Context) {
	code := c.Param("code")

	client, err := h.clientSvc.GetClient(c.Request.Context(), code)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.FromClient(client))
}
