package handlers

import (
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/soundrift/soundrift/internal/apperr"
	"github.com/soundrift/soundrift/internal/tracks"
	"github.com/soundrift/soundrift/pkg/middleware"
)

// legacyNameCookie carries a display name set by older clients; it sits low
// in the uploader-name fallback chain.
const legacyNameCookie = "legacy_name"

// TracksHandler exposes the upload and browse surface.
type TracksHandler struct {
	svc *tracks.Service
}

func NewTracksHandler(svc *tracks.Service) *TracksHandler {
	return &TracksHandler{svc: svc}
}

// Register routes under the given group
func (h *TracksHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/upload", h.Upload)
	rg.GET("/tracks", h.List)
}

// Upload accepts the multipart track submission. Field names (`artist_name`
// vs legacy `artist`, `userId`) are a client-compatibility contract.
func (h *TracksHandler) Upload(c *gin.Context) {
	artist := c.PostForm("artist_name")
	if artist == "" {
		artist = c.PostForm("artist")
	}

	sub := tracks.Submission{
		Title:        c.PostForm("title"),
		ArtistName:   artist,
		UploaderName: c.PostForm("uploader_name"),
		Token:        middleware.BearerToken(c),
	}
	if v := c.PostForm("userId"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			sub.LegacyUserID = &id
		}
	}
	if v, err := c.Cookie(legacyNameCookie); err == nil {
		sub.LegacyName = v
	}

	audio, err := c.FormFile("audio")
	if err == nil {
		upload, file, ferr := openUpload(audio)
		if ferr != nil {
			respondError(c, apperr.Validation("audio file is unreadable"))
			return
		}
		defer file.Close()
		sub.Audio = upload
	}
	if cover, err := c.FormFile("cover"); err == nil {
		upload, file, ferr := openUpload(cover)
		if ferr == nil {
			defer file.Close()
			sub.Cover = upload
		}
	}

	track, err := h.svc.Submit(c.Request.Context(), sub)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "track uploaded", "track": track})
}

func openUpload(fh *multipart.FileHeader) (*tracks.Upload, multipart.File, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, nil, err
	}
	return &tracks.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Reader:      f,
	}, f, nil
}

// List returns the newest tracks.
func (h *TracksHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	list, err := h.svc.Recent(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tracks": list})
}
