package handlers

import (
	"errors"
	"net/http"
	"strings"

	"consultancy_crm_backend/internal/models"
	"consultancy_crm_backend/internal/services"
	"consultancy_crm_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ClientHandler holds the client service.
type ClientHandler struct {
	clientService services.ClientService
}

// NewClientHandler creates a new ClientHandler.
func NewClientHandler(cs services.ClientService) *ClientHandler {
	return &ClientHandler{clientService: cs}
}

// respondClientError maps service errors to status codes and envelopes.
func respondClientError(c *gin.Context, err error, fallback string) {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, utils.MissingFieldsResponse(
			validationErr.MissingFields,
			"Required fields missing: "+strings.Join(validationErr.MissingFields, ", "),
		))
	case errors.Is(err, services.ErrClientValidation):
		c.JSON(http.StatusBadRequest, utils.FailureWithCode(utils.ErrCodeValidationFailed, err.Error()))
	case errors.Is(err, services.ErrDuplicateClient):
		c.JSON(http.StatusConflict, utils.FailureWithCode(utils.ErrCodeDuplicateClient,
			"A client with the same name and mobile number already exists"))
	case errors.Is(err, services.ErrClientNotFound):
		c.JSON(http.StatusNotFound, utils.FailureResponse("Client not found"))
	default:
		utils.LogError(err, fallback)
		c.JSON(http.StatusInternalServerError, utils.FailureResponse(fallback))
	}
}

// CreateClient handles POST /api/clients.
func (h *ClientHandler) CreateClient(c *gin.Context) {
	var req services.ClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.FailureResponse("Invalid request payload"))
		return
	}

	client, err := h.clientService.CreateClient(c.Request.Context(), req)
	if err != nil {
		respondClientError(c, err, "Failed to create client")
		return
	}
	c.JSON(http.StatusCreated, utils.SuccessResponse(client, "Client added successfully"))
}

// GetClients handles GET /api/clients.
func (h *ClientHandler) GetClients(c *gin.Context) {
	clients, err := h.clientService.GetClients(c.Request.Context())
	if err != nil {
		utils.LogError(err, "GetClients: failed to list clients")
		c.JSON(http.StatusInternalServerError, utils.FailureResponse("Failed to fetch clients"))
		return
	}
	if clients == nil {
		clients = []models.Client{}
	}
	c.JSON(http.StatusOK, utils.SuccessResponse(clients, ""))
}

// SearchClients handles GET /api/clients/search.
func (h *ClientHandler) SearchClients(c *gin.Context) {
	criteria := models.ClientSearchCriteria{
		Name:   c.Query("name"),
		Mobile: c.Query("mobile"),
		Gender: c.Query("gender"),
		Date:   c.Query("date"),
	}

	clients, err := h.clientService.SearchClients(c.Request.Context(), criteria)
	if err != nil {
		utils.LogError(err, "SearchClients: failed to search clients")
		c.JSON(http.StatusInternalServerError, utils.FailureResponse("Failed to search clients"))
		return
	}
	if clients == nil {
		clients = []models.Client{}
	}
	c.JSON(http.StatusOK, utils.SuccessResponse(clients, ""))
}

// GetClientByID handles GET /api/clients/:id.
func (h *ClientHandler) GetClientByID(c *gin.Context) {
	client, err := h.clientService.GetClientByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondClientError(c, err, "Failed to fetch client")
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse(client, ""))
}

// UpdateClient handles PUT /api/clients/:id.
func (h *ClientHandler) UpdateClient(c *gin.Context) {
	var req services.ClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.FailureResponse("Invalid request payload"))
		return
	}

	client, err := h.clientService.UpdateClient(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondClientError(c, err, "Failed to update client")
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse(client, "Client updated successfully"))
}

// DeleteClient handles DELETE /api/clients/:id.
func (h *ClientHandler) DeleteClient(c *gin.Context) {
	err := h.clientService.DeleteClient(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondClientError(c, err, "Failed to delete client")
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse(nil, "Client deleted successfully"))
}
