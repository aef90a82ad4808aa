package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/soundrift/soundrift/internal/apperr"
	"github.com/soundrift/soundrift/internal/playlists"
	"github.com/soundrift/soundrift/pkg/middleware"
)

// PlaylistsHandler exposes playlist creation, listing and membership
// mutation. All routes require a resolved identity.
type PlaylistsHandler struct {
	svc *playlists.Service
	// sampleImage is returned alongside listings for clients that render a
	// placeholder cover.
	sampleImage string
}

func NewPlaylistsHandler(svc *playlists.Service, sampleImage string) *PlaylistsHandler {
	return &PlaylistsHandler{svc: svc, sampleImage: sampleImage}
}

// Register routes under /playlists. The bare and `-track` suffixed mutation
// paths are aliases for the same handlers: an API-compatibility contract,
// not two implementations.
func (h *PlaylistsHandler) Register(rg *gin.RouterGroup, auth gin.HandlerFunc) {
	g := rg.Group("/playlists", auth)
	g.GET("", h.List)
	g.POST("", h.Create)
	g.POST("/:playlistId/add-track", h.AddTrack)
	g.POST("/:playlistId/add", h.AddTrack)
	g.POST("/:playlistId/remove-track", h.RemoveTrack)
	g.POST("/:playlistId/remove", h.RemoveTrack)
}

func (h *PlaylistsHandler) List(c *gin.Context) {
	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		respondError(c, apperr.Unauthorized("authentication required"))
		return
	}
	list, err := h.svc.List(c.Request.Context(), ident.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	resp := gin.H{"playlists": list}
	if h.sampleImage != "" {
		resp["sample_image"] = h.sampleImage
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PlaylistsHandler) Create(c *gin.Context) {
	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		respondError(c, apperr.Unauthorized("authentication required"))
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation("invalid request body"))
		return
	}
	pl, err := h.svc.Create(c.Request.Context(), ident.UserID, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, pl)
}

func (h *PlaylistsHandler) AddTrack(c *gin.Context) {
	ident, playlistID, trackID, ok := h.membershipArgs(c)
	if !ok {
		return
	}
	inserted, err := h.svc.AddTrack(c.Request.Context(), ident.UserID, playlistID, trackID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "inserted": inserted})
}

func (h *PlaylistsHandler) RemoveTrack(c *gin.Context) {
	ident, playlistID, trackID, ok := h.membershipArgs(c)
	if !ok {
		return
	}
	deleted, err := h.svc.RemoveTrack(c.Request.Context(), ident.UserID, playlistID, trackID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "deletedRows": deleted})
}

// membershipArgs pulls the identity, path playlist id and body track id
// shared by the add/remove handlers; it writes the error response itself.
func (h *PlaylistsHandler) membershipArgs(c *gin.Context) (*middleware.Identity, int64, int64, bool) {
	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		respondError(c, apperr.Unauthorized("authentication required"))
		return nil, 0, 0, false
	}
	playlistID, err := strconv.ParseInt(c.Param("playlistId"), 10, 64)
	if err != nil {
		respondError(c, apperr.Validation("invalid playlist id"))
		return nil, 0, 0, false
	}
	var req struct {
		TrackID *int64 `json:"trackId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.TrackID == nil {
		respondError(c, apperr.Validation("trackId is required"))
		return nil, 0, 0, false
	}
	return ident, playlistID, *req.TrackID, true
}
