package message

import (
	"errors"
	"net/http"

	midsec "github.com/Ksaikiran28/NexChat/middleware/security"
	"github.com/Ksaikiran28/NexChat/tools/errs"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the message API under /api/messages; every route
// requires an authenticated caller.
func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/users", h.ListPeers)
	r.PUT("/mark/:id", h.MarkSeen)
	r.GET("/:id", h.FetchConversation)
	r.POST("/send/:id", h.Send)
	r.DELETE("/:id", h.Delete)
}

type sendReq struct {
	Text  string `json:"text"`
	Image string `json:"image"`
}

func (h *Handler) Send(c *gin.Context) {
	var req sendReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid body"})
		return
	}
	m, err := h.svc.Send(c.Request.Context(), midsec.UserID(c), c.Param("id"), req.Text, req.Image)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "newMessage": m})
}

func (h *Handler) FetchConversation(c *gin.Context) {
	msgs, err := h.svc.FetchConversation(c.Request.Context(), midsec.UserID(c), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "messages": msgs})
}

func (h *Handler) MarkSeen(c *gin.Context) {
	if err := h.svc.MarkSeen(c.Request.Context(), c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), midsec.UserID(c)); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Message deleted successfully"})
}

func (h *Handler) ListPeers(c *gin.Context) {
	peers, err := h.svc.ListPeers(c.Request.Context(), midsec.UserID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	unseen := make(map[string]int64)
	for _, p := range peers {
		if p.UnseenCount > 0 {
			unseen[p.ID] = p.UnseenCount
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "users": peers, "unseenMessages": unseen})
}

// abortWithError maps the error taxonomy onto HTTP statuses.
func abortWithError(c *gin.Context, err error) {
	var ce *errs.CodeError
	status := http.StatusInternalServerError
	msg := "internal error"
	if errors.As(err, &ce) {
		msg = ce.Msg
		switch ce.Code {
		case errs.RecordNotFound:
			status = http.StatusNotFound
		case errs.NoPermission:
			status = http.StatusForbidden
		case errs.ArgsError:
			status = http.StatusBadRequest
		case errs.DatabaseError:
			status = http.StatusInternalServerError
		}
	}
	c.JSON(status, gin.H{"success": false, "message": msg})
}
