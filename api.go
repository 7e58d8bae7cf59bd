package equiledger

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/equiledger/equiledger/common"
	"github.com/equiledger/equiledger/schema"
	"github.com/gin-gonic/gin"
)

func (l *Ledger) runAPI(port string) {
	r := l.engine
	r.Use(common.CORSMiddleware())
	r.Use(common.LimiterMiddleware(600, "M", l.config.GetIPWhiteList()))

	v1 := r.Group("/")
	{
		// submit ops
		v1.POST("/attest", l.submitAttestation)
		v1.POST("/transfer", l.submitTransfer)
		v1.POST("/vault/lock", l.submitLock)
		v1.POST("/bridge/issue/:jurisdiction", l.bridgeIssue)
		v1.POST("/bridge/redeem/:jurisdiction", l.bridgeRedeem)
		v1.POST("/bridge/transfer", l.bridgeTransfer)
		v1.POST("/escrow/sweep", l.escrowSweep)

		// reads
		v1.GET("/supply", l.getSupply)
		v1.GET("/era/transitions", l.getEraTransitions)
		v1.GET("/account/:address", l.getAccount)
		v1.GET("/account/:address/locks", l.getAccountLocks)
		v1.GET("/account/:address/allowance", l.getAllowance)
		v1.GET("/account/:address/derivative/:jurisdiction", l.getDerivative)
		v1.GET("/escrow/:jurisdiction", l.getEscrow)
		v1.GET("/events", l.getEvents)
	}

	admin := r.Group("/admin")
	admin.Use(l.adminAuth())
	{
		admin.POST("/vault/unlock/:id", l.adminUnlock)
		admin.POST("/vault/liquidate/:id", l.adminLiquidate)
		admin.POST("/vitality/sweep/:address", l.adminVitalitySweep)
		admin.POST("/escrow/activate/:jurisdiction", l.adminActivateEscrow)
	}

	if err := r.Run(port); err != nil {
		panic(err)
	}
}

func (l *Ledger) submitAttestation(c *gin.Context) {
	att := schema.PresenceAttestation{}
	if err := c.ShouldBindJSON(&att); err != nil {
		errorResponse(c, err.Error())
		return
	}
	resp, err := l.IssueOnPresence(att)
	if err != nil {
		mapErrResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (l *Ledger) submitTransfer(c *gin.Context) {
	req := schema.ReqTransfer{}
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, err.Error())
		return
	}
	resp, err := l.Transfer(req.From, req.To, req.Amount)
	if err != nil {
		mapErrResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (l *Ledger) submitLock(c *gin.Context) {
	req := schema.ReqLock{}
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, err.Error())
		return
	}
	resp, err := l.Lock(req.Owner, req.Amount, req.MinDuration, req.MaxDuration)
	if err != nil {
		mapErrResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (l *Ledger) bridgeIssue(c *gin.Context) {
	req := schema.ReqBridge{}
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, err.Error())
		return
	}
	resp, err := l.IssueLocal(c.Param("jurisdiction"), req.Owner, req.Amount)
	if err != nil {
		mapErrResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (l *Ledger) bridgeRedeem(c *gin.Context) {
	req := schema.ReqBridge{}
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, err.Error())
		return
	}
	resp, err := l.RedeemLocal(c.Param("jurisdiction"), req.Owner, req.Amount)
	if err != nil {
		mapErrResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (l *Ledger) bridgeTransfer(c *gin.Context) {
	req := schema.ReqCrossTransfer{}
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, err.Error())
		return
	}
	resp, err := l.CrossTransfer(req.FromJurisdiction, req.ToJurisdiction, req.From, req.To, req.Amount)
	if err != nil {
		mapErrResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (l *Ledger) escrowSweep(c *gin.Context) {
	flushed, err := l.SweepExpiredEscrows()
	if err != nil {
		mapErrResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, schema.RespSweep{Flushed: flushed})
}

func (l *Ledger) getSupply(c *gin.Context) {
	c.JSON(http.StatusOK, l.cache.GetSnapshot())
}

func (l *Ledger) getEraTransitions(c *gin.Context) {
	const cacheKey = "era-transitions"
	if body, err := l.cache.GetResp(cacheKey); err == nil {
		c.Data(http.StatusOK, "application/json; charset=utf-8", body)
		return
	}
	transitions, err := l.GetEraTransitions()
	if err != nil {
		internalErrorResponse(c, err.Error())
		return
	}
	body, err := json.Marshal(transitions)
	if err != nil {
		internalErrorResponse(c, err.Error())
		return
	}
	if err := l.cache.SetResp(cacheKey, body); err != nil {
		log.Warn("l.cache.SetResp(cacheKey,body)", "err", err)
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

func (l *Ledger) getAccount(c *gin.Context) {
	acc, err := l.GetAccountInfo(c.Param("address"))
	if err != nil {
		mapErrResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, acc)
}

func (l *Ledger) getAccountLocks(c *gin.Context) {
	locks, err := l.GetLocks(c.Param("address"))
	if err != nil {
		mapErrResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, locks)
}

func (l *Ledger) getAllowance(c *gin.Context) {
	allowance, err := l.Allowance(c.Param("address"))
	if err != nil {
		mapErrResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, allowance)
}

func (l *Ledger) getDerivative(c *gin.Context) {
	deriv, err := l.GetDerivativeBalance(c.Param("jurisdiction"), c.Param("address"))
	if err != nil {
		mapErrResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, deriv)
}

func (l *Ledger) getEscrow(c *gin.Context) {
	esc, err := l.GetEscrowInfo(c.Param("jurisdiction"))
	if err != nil {
		mapErrResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, esc)
}

func (l *Ledger) getEvents(c *gin.Context) {
	cursor, err := strconv.ParseInt(c.DefaultQuery("cursor", "0"), 10, 64)
	if err != nil {
		errorResponse(c, err.Error())
		return
	}
	account := c.Query("account")
	num := 200

	var events []schema.LedgerEvent
	if account != "" {
		if err := checkAddress(account); err != nil {
			mapErrResponse(c, err)
			return
		}
		events, err = l.wdb.GetEventsByAccount(normAddr(account), num)
	} else {
		events, err = l.wdb.GetEvents(cursor, num)
	}
	if err != nil {
		internalErrorResponse(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, events)
}

func (l *Ledger) adminUnlock(c *gin.Context) {
	if err := l.Unlock(c.Param("id")); err != nil {
		mapErrResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, "ok")
}

func (l *Ledger) adminLiquidate(c *gin.Context) {
	if err := l.Liquidate(c.Param("id")); err != nil {
		mapErrResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, "ok")
}

func (l *Ledger) adminVitalitySweep(c *gin.Context) {
	if err := l.SweepInactivity(c.Param("address")); err != nil {
		mapErrResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, "ok")
}

func (l *Ledger) adminActivateEscrow(c *gin.Context) {
	if err := l.ActivateJurisdiction(c.Param("jurisdiction")); err != nil {
		mapErrResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, "ok")
}

// mapErrResponse translates sentinel errors to http status: malformed input
// 400, missing 404, state conflicts 422, throttling 429.
func mapErrResponse(c *gin.Context, err error) {
	status := http.StatusBadRequest
	switch err {
	case schema.ErrAccountNotFound, schema.ErrLockNotFound, schema.ErrEscrowNotFound, schema.ErrNotExist:
		status = http.StatusNotFound
	case schema.ErrReplayedAttestation, schema.ErrLockNotLocked, schema.ErrLockNotMature,
		schema.ErrEscrowNotInactive, schema.ErrClockAlreadyStarted,
		schema.ErrDeathClockExpired, schema.ErrDeathClockNotExpired,
		schema.ErrAccountStillActive, schema.ErrAccountAlreadyInactive,
		schema.ErrInsufficientBalanceForRemoval:
		status = http.StatusUnprocessableEntity
	case schema.ErrDailyLimitExceeded:
		status = http.StatusTooManyRequests
	}
	c.JSON(status, schema.RespErr{Err: err.Error()})
}

func errorResponse(c *gin.Context, err string) {
	// client error
	c.JSON(http.StatusBadRequest, schema.RespErr{
		Err: err,
	})
}

func internalErrorResponse(c *gin.Context, err string) {
	c.JSON(http.StatusInternalServerError, schema.RespErr{
		Err: err,
	})
}
