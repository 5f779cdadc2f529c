// Package api exposes the chat operations and the account endpoints over HTTP.
package api

import (
	"log/slog"
	"net/http"
	"rosterhub/auth"
	"rosterhub/domain/chat"
	"rosterhub/services"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	log    *slog.Logger
	chats  services.IChatService
	auth   services.IAuthService
	tokens auth.TokenValidator
}

func NewHandler(log *slog.Logger, chats services.IChatService, authService services.IAuthService, tokens auth.TokenValidator) *Handler {
	return &Handler{log: log, chats: chats, auth: authService, tokens: tokens}
}

// NewRouter builds the gin engine with every route plus the extra handlers
// mounted by the caller (the subscription gateway).
func NewRouter(log *slog.Logger, h *Handler, extra func(r *gin.Engine)) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(log))
	h.RegisterRoutes(r)
	if extra != nil {
		extra(r)
	}
	return r
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)

	api := r.Group("/api/v1")
	{
		account := api.Group("/auth")
		account.POST("/register", h.Register)
		account.POST("/login", h.Login)

		protected := api.Group("", auth.RequireAuth(h.tokens, Unauthorized))
		protected.POST("/chats", h.CreateChat)
		protected.POST("/chats/seen", h.MarkChatAsSeen)

		orgs := protected.Group("/organizations/:org")
		orgs.GET("/chats", h.GetAllChats)
		orgs.GET("/chats/between", h.GetChatsBetweenUsers)
		orgs.GET("/chats/search", h.SearchChats)
		orgs.GET("/users/:user/chats", h.GetChatByUser)
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type createChatRequest struct {
	From           string `json:"from"`
	To             string `json:"to"`
	Content        string `json:"content"`
	OrganizationID string `json:"organizationId"`
}

// CreateChat defaults "from" to the caller. Sending on behalf of someone else is forbidden.
func (h *Handler) CreateChat(c *gin.Context) {
	caller := c.GetString(string(auth.ProfileIDKey))

	var req createChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "malformed request body")
		return
	}
	if req.From == "" {
		req.From = caller
	}
	if req.From != caller {
		Forbidden(c, "cannot send a chat on behalf of another profile")
		return
	}

	created, err := h.chats.CreateChat(c.Request.Context(), chat.CreateChatCommand{
		From:           req.From,
		To:             req.To,
		Content:        req.Content,
		OrganizationID: req.OrganizationID,
	})
	if err != nil {
		h.log.Debug("createChat rejected", "from", caller, "error", err)
		FromError(c, err)
		return
	}
	Created(c, created)
}

type markSeenRequest struct {
	UserID         string `json:"userId"`
	OrganizationID string `json:"organizationId"`
}

func (h *Handler) MarkChatAsSeen(c *gin.Context) {
	var req markSeenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "malformed request body")
		return
	}

	ok, err := h.chats.MarkChatAsSeen(c.Request.Context(), chat.MarkSeenCommand{
		PeerID:         req.UserID,
		OrganizationID: req.OrganizationID,
		ViewerID:       c.GetString(string(auth.ProfileIDKey)),
	})
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, ok)
}

func (h *Handler) GetAllChats(c *gin.Context) {
	chats, err := h.chats.GetAllChats(c.Request.Context(), chat.GetAllChatsCommand{
		OrganizationID: c.Param("org"),
		ViewerID:       c.GetString(string(auth.ProfileIDKey)),
	})
	h.respondChats(c, chats, err)
}

func (h *Handler) GetChatByUser(c *gin.Context) {
	chats, err := h.chats.GetChatByUser(c.Request.Context(), chat.GetChatByUserCommand{
		OrganizationID: c.Param("org"),
		UserID:         c.Param("user"),
		ViewerID:       c.GetString(string(auth.ProfileIDKey)),
	})
	h.respondChats(c, chats, err)
}

func (h *Handler) GetChatsBetweenUsers(c *gin.Context) {
	chats, err := h.chats.GetChatsBetweenUsers(c.Request.Context(), chat.GetChatsBetweenUsersCommand{
		OrganizationID: c.Param("org"),
		UserA:          c.Query("userA"),
		UserB:          c.Query("userB"),
		ViewerID:       c.GetString(string(auth.ProfileIDKey)),
	})
	h.respondChats(c, chats, err)
}

func (h *Handler) SearchChats(c *gin.Context) {
	chats, err := h.chats.SearchChats(c.Request.Context(), chat.SearchChatsCommand{
		OrganizationID: c.Param("org"),
		Input:          c.Query("q"),
		ViewerID:       c.GetString(string(auth.ProfileIDKey)),
	})
	h.respondChats(c, chats, err)
}

func (h *Handler) respondChats(c *gin.Context, chats []chat.Chat, err error) {
	if err != nil {
		FromError(c, err)
		return
	}
	if chats == nil {
		chats = []chat.Chat{}
	}
	Success(c, chats)
}

type registerRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	OrganizationID string `json:"organizationId"`
}

func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "malformed request body")
		return
	}
	session, err := h.auth.Register(services.RegisterCommand{
		Name:           req.Name,
		Email:          req.Email,
		Password:       req.Password,
		OrganizationID: req.OrganizationID,
	})
	if err != nil {
		FromError(c, err)
		return
	}
	Created(c, session)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "malformed request body")
		return
	}
	session, err := h.auth.Login(req.Email, req.Password)
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, session)
}
