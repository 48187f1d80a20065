package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/billyapp/billy/internal/models"
	"github.com/billyapp/billy/internal/service"
)

// BillHandler serves ephemeral split-bill sessions.
type BillHandler struct {
	bills *service.BillService
}

func NewBillHandler(bills *service.BillService) *BillHandler {
	return &BillHandler{bills: bills}
}

type createBillReq struct {
	InitialAmount float64  `json:"initial_amount"`
	Participants  []string `json:"participants"`
}

type addParticipantReq struct {
	Name string `json:"name" binding:"required,max=64"`
}

type addBillOutcomeReq struct {
	PaidBy       string   `json:"paid_by" binding:"required"`
	Amount       float64  `json:"amount" binding:"required,gt=0"`
	Description  string   `json:"description" binding:"max=255"`
	Participants []string `json:"participants" binding:"required,min=1"`
}

type billTransactionResp struct {
	ID           string   `json:"id"`
	Description  string   `json:"description"`
	PaidBy       string   `json:"paid_by"`
	Amount       float64  `json:"amount"`
	Participants []string `json:"participants"`
	Date         int64    `json:"date"`
}

func toBillTransactionResps(transactions []models.BillTransaction) []billTransactionResp {
	out := make([]billTransactionResp, 0, len(transactions))
	for _, t := range transactions {
		out = append(out, billTransactionResp{
			ID:           t.ID,
			Description:  t.Description,
			PaidBy:       t.PaidBy,
			Amount:       t.Amount,
			Participants: t.Participants,
			Date:         t.Date,
		})
	}
	return out
}

// Create handles POST /api/v1/bills.
func (h *BillHandler) Create(c *gin.Context) {
	var req createBillReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	billID, okay := h.bills.CreateBill(req.InitialAmount, req.Participants)
	if !okay {
		fail(c, http.StatusUnprocessableEntity, "could not create bill")
		return
	}
	ok(c, gin.H{"bill_id": billID})
}

// Delete handles DELETE /api/v1/bills/:id.
func (h *BillHandler) Delete(c *gin.Context) {
	if !h.bills.DeleteBill(c.Param("id")) {
		fail(c, http.StatusNotFound, "bill not found")
		return
	}
	ok(c, gin.H{"deleted": true})
}

// AddParticipant handles POST /api/v1/bills/:id/participants.
func (h *BillHandler) AddParticipant(c *gin.Context) {
	var req addParticipantReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if !h.bills.AddParticipantToBill(c.Param("id"), req.Name) {
		fail(c, http.StatusConflict, "participant rejected")
		return
	}
	ok(c, gin.H{"added": true})
}

// Participants handles GET /api/v1/bills/:id/participants.
func (h *BillHandler) Participants(c *gin.Context) {
	names := h.bills.GetBillParticipants(c.Param("id"))
	if names == nil {
		names = []string{}
	}
	ok(c, gin.H{"participants": names})
}

// AddOutcome handles POST /api/v1/bills/:id/transactions.
func (h *BillHandler) AddOutcome(c *gin.Context) {
	var req addBillOutcomeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if !h.bills.AddOutcomeToBill(c.Param("id"), req.PaidBy, req.Amount, req.Description, req.Participants) {
		fail(c, http.StatusUnprocessableEntity, "could not add transaction")
		return
	}
	ok(c, gin.H{"added": true})
}

// Transactions handles GET /api/v1/bills/:id/transactions.
func (h *BillHandler) Transactions(c *gin.Context) {
	ok(c, gin.H{"transactions": toBillTransactionResps(h.bills.GetBillTransactions(c.Param("id")))})
}
