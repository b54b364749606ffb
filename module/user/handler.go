package user

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

// RegisterRoutes mounts the account API under /api/auth. Signup and login
// are public; the rest require a token.
func (h *Handler) RegisterRoutes(public, authed gin.IRoutes) {
	public.POST("/signup", h.Signup)
	public.POST("/login", h.Login)
	authed.GET("/check", h.Check)
	authed.PUT("/update-profile", h.UpdateProfile)
}

func (h *Handler) Signup(c *gin.Context) {
	var req SignupParams
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid body"})
		return
	}
	u, token, err := h.svc.Signup(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success":  true,
		"userData": u,
		"token":    token,
		"message":  "Account created successfully",
	})
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid body"})
		return
	}
	u, token, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"userData": u,
		"token":    token,
		"message":  "Login successful",
	})
}

func (h *Handler) Check(c *gin.Context) {
	u, err := h.svc.Get(c.Request.Context(), midsec.UserID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "userData": u})
}

type updateProfileReq struct {
	FullName   string `json:"fullName"`
	Bio        string `json:"bio"`
	ProfilePic string `json:"profilePic"`
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req updateProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid body"})
		return
	}
	u, err := h.svc.UpdateProfile(c.Request.Context(), midsec.UserID(c), req.FullName, req.Bio, req.ProfilePic)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "userData": u})
}

func abortWithError(c *gin.Context, err error) {
	var ce *errs.CodeError
	status := http.StatusInternalServerError
	msg := "internal error"
	if errors.As(err, &ce) {
		msg = ce.Msg
		switch ce.Code {
		case errs.RecordNotFound:
			status = http.StatusNotFound
		case errs.DuplicateRecord:
			status = http.StatusConflict
		case errs.PasswordError:
			status = http.StatusUnauthorized
		case errs.ArgsError:
			status = http.StatusBadRequest
		}
	}
	c.JSON(status, gin.H{"success": false, "message": msg})
}
