package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stuverse/visavault/internal/crypto"
	"github.com/stuverse/visavault/internal/models"
	"github.com/stuverse/visavault/internal/services/auth"
	"github.com/stuverse/visavault/internal/services/documents"
)

type registerRequest struct {
	Email    string `json:"email" binding:"required"`
	Name     string `json:"name"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, models.ErrCodeValidation, "email and password are required")
		return
	}

	user, err := s.auth.Register(req.Email, req.Name, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrEmailNotAllowed):
			apiError(c, http.StatusBadRequest, models.ErrCodeValidation, "a university email address is required")
		case errors.Is(err, models.ErrEmailTaken):
			apiError(c, http.StatusConflict, models.ErrCodeValidation, "email already registered")
		default:
			s.logger.WithError(err).Error("Registration failed")
			apiError(c, http.StatusInternalServerError, models.ErrCodeServerError, "registration failed")
		}
		return
	}

	c.JSON(http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, models.ErrCodeValidation, "email and password are required")
		return
	}

	session, err := s.auth.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			apiError(c, http.StatusUnauthorized, models.ErrCodeAuth, "invalid email or password")
			return
		}
		s.logger.WithError(err).Error("Login failed")
		apiError(c, http.StatusInternalServerError, models.ErrCodeServerError, "login failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      session.Token,
		"expires_at": session.ExpiresAt.Format(time.RFC3339),
	})
}

func (s *Server) handleLogout(c *gin.Context) {
	token := bearerToken(c.GetHeader("Authorization"))
	if err := s.auth.Logout(token); err != nil {
		s.logger.WithError(err).Warn("Logout failed")
	}
	c.Status(http.StatusNoContent)
}

// handleUpload accepts a multipart form with fields "file", "kind", and
// "password". The password gates the zero-knowledge encryption; it is
// verified against the login hash first so a typo cannot produce a
// document nobody can ever decrypt.
func (s *Server) handleUpload(c *gin.Context) {
	userID := currentUser(c)

	if s.cfg.MaxUploadBytes > 0 {
		if c.Request.ContentLength > s.cfg.MaxUploadBytes {
			apiError(c, http.StatusRequestEntityTooLarge, models.ErrCodeValidation, "upload too large")
			return
		}
		// Backstop for chunked requests with no declared length.
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxUploadBytes)
	}

	password := c.PostForm("password")
	if password == "" {
		apiError(c, http.StatusBadRequest, models.ErrCodeValidation, "password is required")
		return
	}

	if err := s.auth.VerifyPassword(userID, password); err != nil {
		apiError(c, http.StatusForbidden, models.ErrCodeAuth, "incorrect password")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		apiError(c, http.StatusBadRequest, models.ErrCodeValidation, "file is required")
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		apiError(c, http.StatusBadRequest, models.ErrCodeValidation, "could not open uploaded file")
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		apiError(c, http.StatusBadRequest, models.ErrCodeValidation, "could not read uploaded file")
		return
	}

	doc, err := s.documents.Upload(c.Request.Context(), userID, password, documents.UploadRequest{
		Kind:     models.DocumentKind(c.PostForm("kind")),
		Filename: fileHeader.Filename,
		MimeType: fileHeader.Header.Get("Content-Type"),
		Data:     data,
	})
	if err != nil {
		var uploadErr *models.UploadError
		if errors.As(err, &uploadErr) && uploadErr.Code == models.ErrCodeValidation {
			apiError(c, http.StatusBadRequest, models.ErrCodeValidation, "unknown document kind")
			return
		}
		s.logger.WithError(err).Error("Upload failed")
		apiError(c, http.StatusInternalServerError, models.ErrCodeServerError, "upload failed")
		return
	}

	c.JSON(http.StatusCreated, doc)
}

func (s *Server) handleListDocuments(c *gin.Context) {
	docs, err := s.documents.List(c.Request.Context(), currentUser(c))
	if err != nil {
		s.logger.WithError(err).Error("List documents failed")
		apiError(c, http.StatusInternalServerError, models.ErrCodeServerError, "could not list documents")
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

type downloadRequest struct {
	Password string `json:"password" binding:"required"`
}

// handleDownload is a POST so the password travels in the body, never in
// a URL that could end up in access logs.
func (s *Server) handleDownload(c *gin.Context) {
	var req downloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, models.ErrCodeValidation, "password is required")
		return
	}

	doc, plain, err := s.documents.Download(c.Request.Context(), currentUser(c), c.Param("id"), req.Password)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrDocumentNotFound):
			apiError(c, http.StatusNotFound, models.ErrCodeNotFound, "document not found")
		case errors.Is(err, crypto.ErrDecryptionFailed):
			// Deliberately indistinct: wrong password and corrupted data
			// must read the same to the client.
			apiError(c, http.StatusForbidden, models.ErrCodeDecryption, "incorrect password or corrupted data")
		default:
			s.logger.WithError(err).Error("Download failed")
			apiError(c, http.StatusInternalServerError, models.ErrCodeServerError, "download failed")
		}
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	contentType := doc.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Data(http.StatusOK, contentType, plain)
}

func (s *Server) handleDeleteDocument(c *gin.Context) {
	err := s.documents.Delete(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, models.ErrDocumentNotFound) {
			apiError(c, http.StatusNotFound, models.ErrCodeNotFound, "document not found")
			return
		}
		s.logger.WithError(err).Error("Delete failed")
		apiError(c, http.StatusInternalServerError, models.ErrCodeServerError, "delete failed")
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleExtraction(c *gin.Context) {
	text, err := s.documents.Extraction(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, models.ErrDocumentNotFound):
			apiError(c, http.StatusNotFound, models.ErrCodeNotFound, "no extraction for this document")
		case errors.Is(err, crypto.ErrArtifactCorrupt):
			s.logger.WithField("doc_id", c.Param("id")).Error("Corrupt extraction payload")
			apiError(c, http.StatusInternalServerError, models.ErrCodeServerError, "extraction unavailable")
		default:
			s.logger.WithError(err).Error("Extraction fetch failed")
			apiError(c, http.StatusInternalServerError, models.ErrCodeServerError, "extraction unavailable")
		}
		return
	}

	c.Data(http.StatusOK, "application/json", text)
}

func (s *Server) handleJourney(c *gin.Context) {
	progress, err := s.journey.Progress(currentUser(c))
	if err != nil {
		s.logger.WithError(err).Error("Journey fetch failed")
		apiError(c, http.StatusInternalServerError, models.ErrCodeServerError, "could not load journey")
		return
	}
	c.JSON(http.StatusOK, gin.H{"stages": progress})
}

func (s *Server) handleCompleteStage(c *gin.Context) {
	err := s.journey.Complete(currentUser(c), c.Param("slug"))
	if err != nil {
		if errors.Is(err, models.ErrStageNotFound) {
			apiError(c, http.StatusNotFound, models.ErrCodeNotFound, "unknown journey stage")
			return
		}
		s.logger.WithError(err).Error("Stage completion failed")
		apiError(c, http.StatusInternalServerError, models.ErrCodeServerError, "could not complete stage")
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleListNotifications(c *gin.Context) {
	unreadOnly := c.Query("unread") == "1" || c.Query("unread") == "true"

	notifications, err := s.notify.List(currentUser(c), unreadOnly)
	if err != nil {
		s.logger.WithError(err).Error("List notifications failed")
		apiError(c, http.StatusInternalServerError, models.ErrCodeServerError, "could not list notifications")
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

func (s *Server) handleMarkNotificationsRead(c *gin.Context) {
	if err := s.notify.MarkRead(currentUser(c)); err != nil {
		s.logger.WithError(err).Error("Mark read failed")
		apiError(c, http.StatusInternalServerError, models.ErrCodeServerError, "could not update notifications")
		return
	}
	c.Status(http.StatusNoContent)
}

// handleNotificationSocket upgrades to a websocket for live notification
// delivery. The connection stays registered until the client disconnects.
func (s *Server) handleNotificationSocket(c *gin.Context) {
	userID := currentUser(c)

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote an HTTP error response.
		return
	}

	s.notify.Register(userID, conn)

	// Drain client frames to detect disconnect.
	go func() {
		defer func() {
			s.notify.Unregister(userID, conn)
			_ = conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
