package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/CaseyLotteBenett/textroleplay/internal/service"
	"github.com/CaseyLotteBenett/textroleplay/pkg/log"
	"github.com/CaseyLotteBenett/textroleplay/pkg/middleware"
	"github.com/CaseyLotteBenett/textroleplay/pkg/response"
)

// HTTPHandler serves the REST surface: room directory, history pages,
// export snapshots and archival.
type HTTPHandler struct {
	rooms   service.RoomService
	history service.HistoryService
}

func NewHTTPHandler(rooms service.RoomService, history service.HistoryService) *HTTPHandler {
	return &HTTPHandler{
		rooms:   rooms,
		history: history,
	}
}

// RegisterRoutes wires the handler into the gin engine. Everything
// under /api/v1 requires a valid session token.
func (h *HTTPHandler) RegisterRoutes(r *gin.Engine, auth *middleware.AuthMiddleware) {
	r.GET("/health", h.Health)

	api := r.Group("/api/v1")
	api.Use(auth.RequireAuth())
	{
		api.GET("/rooms", h.ListRooms)
		api.POST("/rooms", h.CreateRoom)
		api.GET("/rooms/:room_id/messages", h.GetMessages)
		api.GET("/rooms/:room_id/export", h.ExportRoom)
		api.POST("/rooms/:room_id/archive", h.ArchiveRoom)
	}
}

func (h *HTTPHandler) Health(c *gin.Context) {
	response.Success(c, gin.H{"status": "ok"})
}

func (h *HTTPHandler) ListRooms(c *gin.Context) {
	rooms, err := h.rooms.ListRooms(c.Request.Context())
	if err != nil {
		log.Ctx(c.Request.Context()).Error().Err(err).Msg("failed to list rooms")
		response.InternalError(c, "failed to list rooms")
		return
	}
	response.Success(c, gin.H{"rooms": rooms})
}

type createRoomRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	IsPublic    *bool  `json:"is_public"`
}

func (h *HTTPHandler) CreateRoom(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "name is required")
		return
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	room, err := h.rooms.CreateRoom(c.Request.Context(), req.Name, req.Description, isPublic)
	if err != nil {
		if errors.Is(err, service.ErrRoomExists) {
			response.Conflict(c, "room name already exists")
			return
		}
		log.Ctx(c.Request.Context()).Error().Err(err).Msg("failed to create room")
		response.InternalError(c, "failed to create room")
		return
	}
	response.Created(c, room)
}

// GetMessages serves one page of room history, newest first. Malformed
// limit/offset values fall back to defaults instead of erroring.
func (h *HTTPHandler) GetMessages(c *gin.Context) {
	roomID := c.Param("room_id")

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil {
		limit = 0
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil {
		offset = 0
	}

	page, err := h.history.GetHistory(c.Request.Context(), roomID, limit, offset)
	if err != nil {
		if errors.Is(err, service.ErrRoomNotFound) {
			response.NotFound(c, "room not found")
			return
		}
		log.Ctx(c.Request.Context()).Error().Err(err).Str(log.FieldRoomID, roomID).Msg("failed to read room history")
		response.InternalError(c, "failed to read room history")
		return
	}
	response.Success(c, page)
}

func (h *HTTPHandler) ExportRoom(c *gin.Context) {
	roomID := c.Param("room_id")
	ctx := service.WithActor(c.Request.Context(), middleware.GetUserID(c))

	export, err := h.history.ExportRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, service.ErrRoomNotFound) {
			response.NotFound(c, "room not found")
			return
		}
		log.Ctx(ctx).Error().Err(err).Str(log.FieldRoomID, roomID).Msg("failed to export room")
		response.InternalError(c, "failed to export room")
		return
	}
	response.Success(c, export)
}

type archiveRoomRequest struct {
	Before *time.Time `json:"before"`
}

// ArchiveRoom stamps the archival marker on the room's messages. The
// messages stay readable afterwards; archival is a bookkeeping state,
// not a delete.
func (h *HTTPHandler) ArchiveRoom(c *gin.Context) {
	roomID := c.Param("room_id")
	ctx := service.WithActor(c.Request.Context(), middleware.GetUserID(c))

	var req archiveRoomRequest
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "invalid archive request body")
			return
		}
	}

	result, err := h.history.ArchiveRoom(ctx, roomID, req.Before)
	if err != nil {
		if errors.Is(err, service.ErrRoomNotFound) {
			response.NotFound(c, "room not found")
			return
		}
		log.Ctx(ctx).Error().Err(err).Str(log.FieldRoomID, roomID).Msg("failed to archive room")
		response.InternalError(c, "failed to archive room")
		return
	}
	response.Success(c, result)
}
