package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/billyapp/billy/internal/models"
	"github.com/billyapp/billy/internal/service"
)

// DebtsHandler serves debt views over any scope: a shared profile or a live
// bill session.
type DebtsHandler struct {
	ledger *service.LedgerService
}

func NewDebtsHandler(ledger *service.LedgerService) *DebtsHandler {
	return &DebtsHandler{ledger: ledger}
}

type markPaidReq struct {
	Participant string `json:"participant" binding:"required"`
	Paid        *bool  `json:"paid" binding:"required"`
}

type debtResp struct {
	Debtor   string  `json:"debtor"`
	Creditor string  `json:"creditor"`
	Amount   float64 `json:"amount"`
}

func toDebtResps(debts []models.Debt) []debtResp {
	out := make([]debtResp, 0, len(debts))
	for _, d := range debts {
		out = append(out, debtResp{Debtor: d.Debtor, Creditor: d.Creditor, Amount: d.Amount})
	}
	return out
}

// Calculate handles GET /api/v1/scopes/:id/debts.
func (h *DebtsHandler) Calculate(c *gin.Context) {
	debts := h.ledger.CalculateDebts(requestCtx(c), c.Param("id"))
	ok(c, gin.H{"debts": debts})
}

// ToUser handles GET /api/v1/scopes/:id/debts/to/:user.
func (h *DebtsHandler) ToUser(c *gin.Context) {
	debts := h.ledger.GetDebtsToUser(requestCtx(c), c.Param("user"), c.Param("id"))
	ok(c, gin.H{"debts": toDebtResps(debts)})
}

// FromUser handles GET /api/v1/scopes/:id/debts/from/:user.
func (h *DebtsHandler) FromUser(c *gin.Context) {
	debts := h.ledger.GetDebtsFromUser(requestCtx(c), c.Param("user"), c.Param("id"))
	ok(c, gin.H{"debts": toDebtResps(debts)})
}

// Total handles GET /api/v1/scopes/:id/total?user=&from=&to=.
// from/to are dates in 2006-01-02 form; the range is inclusive, so the end
// date extends to the last second of that day.
func (h *DebtsHandler) Total(c *gin.Context) {
	user := c.Query("user")
	if user == "" {
		fail(c, http.StatusBadRequest, "user query parameter required")
		return
	}
	start, err := time.Parse(time.DateOnly, c.Query("from"))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid from date")
		return
	}
	end, err := time.Parse(time.DateOnly, c.Query("to"))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid to date")
		return
	}
	end = end.Add(24*time.Hour - time.Second)

	total := h.ledger.GetTotalToPayForUserInDateRange(requestCtx(c), user, c.Param("id"), start, end)
	ok(c, gin.H{"total": total})
}

// MarkPaid handles POST /api/v1/scopes/:id/expenses/:expenseId/paid.
func (h *DebtsHandler) MarkPaid(c *gin.Context) {
	var req markPaidReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if !h.ledger.MarkAsPaid(requestCtx(c), c.Param("id"), req.Participant, c.Param("expenseId"), *req.Paid) {
		fail(c, http.StatusNotFound, "expense or participant not found")
		return
	}
	ok(c, gin.H{"updated": true})
}

// Redistribute handles POST /api/v1/scopes/:id/redistribute.
func (h *DebtsHandler) Redistribute(c *gin.Context) {
	if !h.ledger.RedistributeDebts(requestCtx(c), c.Param("id")) {
		fail(c, http.StatusNotFound, "scope not found or not redistributable")
		return
	}
	ok(c, gin.H{"redistributed": true})
}
