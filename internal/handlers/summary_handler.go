package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"moneta/internal/services"
)

// SummaryHandler handles user-level aggregate requests.
type SummaryHandler struct {
	netWorthService services.NetWorthServicer
}

// NewSummaryHandler creates a new SummaryHandler.
func NewSummaryHandler(netWorthService services.NetWorthServicer) *SummaryHandler {
	return &SummaryHandler{netWorthService: netWorthService}
}

// GetNetWorth handles the retrieval of the user's net worth summary
// @Summary     Get net worth summary
// @Description Get total assets, liabilities, net assets, and lending/borrowing totals over visible, net-asset-included accounts
// @Tags        summary
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.NetWorthSummary "Net worth summary"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /summary/net-worth [get]
func (h *SummaryHandler) GetNetWorth(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.netWorthService.GetSummary(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}
