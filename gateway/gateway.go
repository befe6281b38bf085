// Package gateway exposes the engine over HTTP and pushes block
// notifications to connected users over websockets.
package gateway

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/samuraitruong/guardian"
	"github.com/samuraitruong/guardian/internal/logger"
	"github.com/samuraitruong/guardian/model"
	"github.com/samuraitruong/guardian/runtime/tree"
	"github.com/samuraitruong/guardian/service/event"
	"github.com/samuraitruong/guardian/transfer"
)

const userKey = "gateway.user"

// Server wires the engine endpoints into a gin router and runs the
// notification listeners feeding the websocket hub.
type Server struct {
	engine   *guardian.Service
	hub      *Hub
	router   *gin.Engine
	upgrader websocket.Upgrader
	log      zerolog.Logger

	updates *event.Listener[event.BlockUpdate]
	errors  *event.Listener[event.BlockError]
}

// New creates a server over the engine.
func New(engine *guardian.Service) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		engine: engine,
		hub:    NewHub(),
		router: gin.New(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		log: logger.New("gateway"),
	}
	s.updates = event.NewListener(engine.Notifier().Updates(), s.hub.OnBlockUpdate)
	s.errors = event.NewListener(engine.Notifier().Errors(), s.hub.OnBlockError)
	s.routes()
	return s
}

// Handler returns the http handler for serving or tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins pumping notifications to websocket clients.
func (s *Server) Start() {
	s.updates.Start()
	s.errors.Start()
}

// Stop terminates the notification pumps.
func (s *Server) Stop() {
	s.updates.Stop()
	s.errors.Stop()
}

// ListenAndServe starts the pumps and serves HTTP until the listener fails.
func (s *Server) ListenAndServe(addr string) error {
	s.Start()
	defer s.Stop()
	s.log.Info().Str("addr", addr).Msg("gateway listening")
	return s.router.Run(addr)
}

func (s *Server) routes() {
	s.router.Use(gin.Recovery())
	s.router.GET("/ws", s.serveWS)

	api := s.router.Group("/api/v1", s.authenticate)
	api.POST("/policies", s.createPolicy)
	api.GET("/policies/:policyId", s.getPolicy)
	api.PUT("/policies/:policyId", s.savePolicy)
	api.POST("/policies/validate", s.validatePolicy)
	api.POST("/policies/:policyId/publish", s.publishPolicy)
	api.GET("/policies/:policyId/export/file", s.exportPolicy)
	api.GET("/policies/:policyId/export/message", s.exportPolicyMessage)
	api.POST("/policies/import/file", s.importPolicy)
	api.POST("/policies/import/file/preview", s.previewPolicy)
	api.GET("/policies/:policyId/blocks/:uuid", s.getBlockData)
	api.POST("/policies/:policyId/blocks/:uuid", s.setBlockData)
	api.GET("/policies/:policyId/tag/:tag", s.getBlockByTag)
	api.GET("/blocks/:uuid/parents", s.getBlockParents)
}

// authenticate resolves the bearer token into a user identity.
func (s *Server) authenticate(c *gin.Context) {
	token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	if token == "" {
		token = c.Query("token")
	}
	user, err := s.engine.Identities().Resolve(c.Request.Context(), token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Set(userKey, *user)
	c.Next()
}

func currentUser(c *gin.Context) model.User {
	user, _ := c.Get(userKey)
	return user.(model.User)
}

func (s *Server) createPolicy(c *gin.Context) {
	definition := &model.Policy{}
	if err := c.ShouldBindJSON(definition); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	record, err := s.engine.CreatePolicy(c.Request.Context(), definition, currentUser(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (s *Server) getPolicy(c *gin.Context) {
	record, err := s.engine.Policies().Load(c.Request.Context(), c.Param("policyId"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "policy not found"})
		return
	}
	c.JSON(http.StatusOK, record)
}

func (s *Server) savePolicy(c *gin.Context) {
	updated := &model.Policy{}
	if err := c.ShouldBindJSON(updated); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	updated.ID = c.Param("policyId")
	record, err := s.engine.SavePolicy(c.Request.Context(), updated, currentUser(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (s *Server) validatePolicy(c *gin.Context) {
	definition := &model.Policy{}
	if err := c.ShouldBindJSON(definition); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	report := s.engine.ValidatePolicy(c.Request.Context(), definition)
	c.JSON(http.StatusOK, gin.H{"isValid": report.IsValid(), "errors": report.Errors()})
}

func (s *Server) publishPolicy(c *gin.Context) {
	body := struct {
		Version string `json:"policyVersion"`
	}{}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	record, report, err := s.engine.PublishPolicy(c.Request.Context(), c.Param("policyId"), body.Version, currentUser(c))
	if errors.Is(err, guardian.ErrInvalidDefinition) && report != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"isValid": false, "errors": report.Errors()})
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (s *Server) exportPolicy(c *gin.Context) {
	archive, err := s.engine.ExportPolicy(c.Request.Context(), c.Param("policyId"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=policy.zip")
	c.Data(http.StatusOK, "application/zip", archive)
}

func (s *Server) exportPolicyMessage(c *gin.Context) {
	message, err := s.engine.ExportPolicyMessage(c.Request.Context(), c.Param("policyId"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, message)
}

func (s *Server) importPolicy(c *gin.Context) {
	archive, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	record, err := s.engine.ImportPolicy(c.Request.Context(), archive, currentUser(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (s *Server) previewPolicy(c *gin.Context) {
	archive, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	preview, err := s.engine.PreviewPolicy(c.Request.Context(), archive)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, preview)
}

func (s *Server) getBlockData(c *gin.Context) {
	data, err := s.engine.GetBlockData(c.Request.Context(), currentUser(c), c.Param("policyId"), c.Param("uuid"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}

func (s *Server) setBlockData(c *gin.Context) {
	var data interface{}
	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := s.engine.SetBlockData(c.Request.Context(), currentUser(c), c.Param("policyId"), c.Param("uuid"), data)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) getBlockByTag(c *gin.Context) {
	uuid, err := s.engine.GetBlockByTag(c.Param("policyId"), c.Param("tag"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": uuid})
}

func (s *Server) getBlockParents(c *gin.Context) {
	parents, err := s.engine.GetBlockParents(c.Param("uuid"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, parents)
}

// serveWS upgrades the connection and binds it to the token's user.
func (s *Server) serveWS(c *gin.Context) {
	user, err := s.engine.Identities().Resolve(c.Request.Context(), c.Query("token"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	ws, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	s.hub.Attach(user.ID, ws)
	go func() {
		defer s.hub.Detach(user.ID, ws)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// fail maps engine errors onto HTTP statuses.
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, guardian.ErrPolicyNotFound),
		errors.Is(err, tree.ErrBlockNotFound),
		errors.Is(err, tree.ErrUnregisteredPolicy):
		status = http.StatusNotFound
	case errors.Is(err, guardian.ErrPermissionDenied),
		errors.Is(err, guardian.ErrInvalidOwner):
		status = http.StatusForbidden
	case errors.Is(err, guardian.ErrInvalidVersion),
		errors.Is(err, guardian.ErrVersionAlreadyPublished),
		errors.Is(err, guardian.ErrPolicyPublished),
		errors.Is(err, guardian.ErrInvalidDefinition),
		errors.Is(err, transfer.ErrInvalidArchive):
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		s.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
