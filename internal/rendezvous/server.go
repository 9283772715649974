package rendezvous

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type roomRequest struct {
	Address string `json:"address" binding:"required,url"`
}

type roomURI struct {
	Code string `uri:"code" binding:"required"`
}

type roomResponse struct {
	Code    string `json:"code"`
	Address string `json:"address"`
	PeerID  string `json:"peer_id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type bindMessages map[string]map[string]string

var roomRequestMessages = bindMessages{
	"Address": {
		"required": "address is required",
		"url":      "address must be a URL",
	},
}

// Server exposes a Directory over HTTP.
type Server struct {
	dir Directory
}

func NewServer(dir Directory) *Server {
	return &Server{dir: dir}
}

func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.POST("/rooms", s.handleClaim)
	router.PUT("/rooms/:code", s.handleRegister)
	router.GET("/rooms/:code", s.handleResolve)
	router.DELETE("/rooms/:code", s.handleRelease)
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func (s *Server) handleClaim(c *gin.Context) {
	var req roomRequest
	if !bindJSON(c, &req, roomRequestMessages) {
		return
	}
	code, err := Claim(c.Request.Context(), s.dir, req.Address)
	if err != nil {
		writeError(c, err)
		return
	}
	log.Printf("room claimed code=%s address=%s", code, req.Address)
	c.JSON(http.StatusCreated, roomResponse{Code: code, Address: req.Address, PeerID: PeerID(code)})
}

func (s *Server) handleRegister(c *gin.Context) {
	var uri roomURI
	if !bindURI(c, &uri) {
		return
	}
	var req roomRequest
	if !bindJSON(c, &req, roomRequestMessages) {
		return
	}
	code := Normalize(uri.Code)
	if err := s.dir.Register(c.Request.Context(), code, req.Address); err != nil {
		writeError(c, err)
		return
	}
	log.Printf("room registered code=%s address=%s", code, req.Address)
	c.JSON(http.StatusOK, roomResponse{Code: code, Address: req.Address, PeerID: PeerID(code)})
}

func (s *Server) handleResolve(c *gin.Context) {
	var uri roomURI
	if !bindURI(c, &uri) {
		return
	}
	code := Normalize(uri.Code)
	addr, err := s.dir.Resolve(c.Request.Context(), code)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, roomResponse{Code: code, Address: addr, PeerID: PeerID(code)})
}

func (s *Server) handleRelease(c *gin.Context) {
	var uri roomURI
	if !bindURI(c, &uri) {
		return
	}
	code := Normalize(uri.Code)
	if err := s.dir.Release(c.Request.Context(), code); err != nil {
		writeError(c, err)
		return
	}
	log.Printf("room released code=%s", code)
	c.Status(http.StatusNoContent)
}

func bindJSON(c *gin.Context, req any, messages bindMessages) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: resolveBindError(err, messages)})
		return false
	}
	return true
}

func bindURI(c *gin.Context, req any) bool {
	if err := c.ShouldBindUri(req); err != nil {
		c.JSON(http.StatusNotFound, errorResponse{Error: ErrRoomNotFound.Error()})
		return false
	}
	return true
}

func resolveBindError(err error, messages bindMessages) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, verr := range verrs {
			if msg, ok := messages[verr.Field()][verr.Tag()]; ok {
				return msg
			}
		}
	}
	return "invalid request"
}

func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrInvalidCode):
		status = http.StatusBadRequest
	case errors.Is(err, ErrRoomNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrRoomTaken):
		status = http.StatusConflict
	}
	c.JSON(status, errorResponse{Error: err.Error()})
}
