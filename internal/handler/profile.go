package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/billyapp/billy/internal/models"
	"github.com/billyapp/billy/internal/service"
)

// ProfileHandler serves shared profiles and their expenses.
type ProfileHandler struct {
	ledger *service.LedgerService
}

func NewProfileHandler(ledger *service.LedgerService) *ProfileHandler {
	return &ProfileHandler{ledger: ledger}
}

type createProfileReq struct {
	Name    string   `json:"name" binding:"required,max=64"`
	Members []string `json:"members"`
}

type addOutcomeReq struct {
	Description  string   `json:"description" binding:"max=255"`
	Amount       float64  `json:"amount" binding:"required,gt=0"`
	PaidBy       string   `json:"paid_by" binding:"required"`
	Participants []string `json:"participants" binding:"required,min=1"`
}

type expenseResp struct {
	ID           string    `json:"id"`
	Description  string    `json:"description"`
	Amount       float64   `json:"amount"`
	PaidBy       string    `json:"paid_by"`
	Kind         string    `json:"kind"`
	Participants []string  `json:"participants"`
	ToPay        []float64 `json:"to_pay"`
	HasPaid      []bool    `json:"has_paid"`
	CreatedAt    int64     `json:"created_at"`
}

func toExpenseResp(e *models.Expense) expenseResp {
	return expenseResp{
		ID:           e.ID,
		Description:  e.Description,
		Amount:       e.Amount,
		PaidBy:       e.PaidBy,
		Kind:         e.Kind,
		Participants: e.Participants,
		ToPay:        e.ToPay,
		HasPaid:      e.HasPaid,
		CreatedAt:    e.CreatedAt,
	}
}

// Create handles POST /api/v1/profiles.
func (h *ProfileHandler) Create(c *gin.Context) {
	var req createProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	profileID, okay := h.ledger.CreateProfile(requestCtx(c), req.Name, req.Members)
	if !okay {
		fail(c, http.StatusInternalServerError, "could not create profile")
		return
	}
	ok(c, gin.H{"profile_id": profileID})
}

// Get handles GET /api/v1/profiles/:id.
func (h *ProfileHandler) Get(c *gin.Context) {
	profile := h.ledger.GetProfile(requestCtx(c), c.Param("id"))
	if profile == nil {
		fail(c, http.StatusNotFound, "profile not found")
		return
	}
	ok(c, gin.H{
		"id":         profile.ID,
		"name":       profile.Name,
		"members":    profile.Members,
		"created_at": profile.CreatedAt,
	})
}

// AddOutcome handles POST /api/v1/profiles/:id/expenses.
func (h *ProfileHandler) AddOutcome(c *gin.Context) {
	var req addOutcomeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	expenseID, okay := h.ledger.AddOutcome(requestCtx(c), c.Param("id"),
		req.Description, req.Amount, req.PaidBy, req.Participants)
	if !okay {
		fail(c, http.StatusUnprocessableEntity, "could not add expense")
		return
	}
	ok(c, gin.H{"expense_id": expenseID})
}

// ListOutcomes handles GET /api/v1/profiles/:id/expenses.
func (h *ProfileHandler) ListOutcomes(c *gin.Context) {
	expenses := h.ledger.ListOutcomes(requestCtx(c), c.Param("id"))
	out := make([]expenseResp, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, toExpenseResp(e))
	}
	ok(c, gin.H{"expenses": out})
}

// RemoveOutcome handles DELETE /api/v1/profiles/:id/expenses/:expenseId.
func (h *ProfileHandler) RemoveOutcome(c *gin.Context) {
	if !h.ledger.RemoveOutcome(requestCtx(c), c.Param("id"), c.Param("expenseId")) {
		fail(c, http.StatusNotFound, "expense not found")
		return
	}
	ok(c, gin.H{"deleted": true})
}

func requestCtx(c *gin.Context) context.Context {
	return c.Request.Context()
}
