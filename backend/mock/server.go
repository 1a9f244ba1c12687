// Package mock is an in-memory stand-in for the hosted backend: auth,
// filtered table CRUD, blob storage, function invocation and the realtime
// change feed. The gateway's integration tests run against it, and the app
// shell uses it for local development.
package mock

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"harborview.com/shiftman/security"
)

type user struct {
	ID       string
	Email    string
	Password string
	Role     string
}

type change struct {
	ID        int64          `json:"id"`
	Table     string         `json:"table"`
	Type      string         `json:"type"`
	Record    map[string]any `json:"record,omitempty"`
	OldRecord map[string]any `json:"oldRecord,omitempty"`
}

type Server struct {
	base64Secret string

	mu         sync.Mutex
	changed    *sync.Cond
	users      map[string]user
	tables     map[string][]map[string]any
	blobs      map[string][]byte
	changes    []change
	nextChange int64
}

func New(base64Secret string) (*Server, error) {
	if _, err := base64.StdEncoding.DecodeString(base64Secret); err != nil {
		return nil, fmt.Errorf("decode secret: %w", err)
	}
	s := &Server{
		base64Secret: base64Secret,
		users:        make(map[string]user),
		tables:       make(map[string][]map[string]any),
		blobs:        make(map[string][]byte),
		nextChange:   1,
	}
	s.changed = sync.NewCond(&s.mu)
	return s, nil
}

// AddUser registers a sign-in credential.
func (s *Server) AddUser(email, password, role string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := user{ID: uuid.NewString(), Email: email, Password: password, Role: role}
	s.users[strings.ToLower(email)] = u
	return u.ID
}

// Seed loads rows into a table without recording change events.
func (s *Server) Seed(table string, rows ...map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[table] = append(s.tables[table], rows...)
}

// Rows returns a copy of a table's rows, for test assertions.
func (s *Server) Rows(table string) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]map[string]any, len(s.tables[table]))
	copy(out, s.tables[table])
	return out
}

func (s *Server) recordChange(table, typ string, record, old map[string]any) {
	c := change{
		ID:        s.nextChange,
		Table:     table,
		Type:      typ,
		Record:    record,
		OldRecord: old,
	}
	s.nextChange++
	s.changes = append(s.changes, c)
	s.changed.Broadcast()
}

// Router builds the gin engine serving the backend API surface.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	api := r.Group("/api/v1")
	api.POST("/auth/signin", s.handleSignIn)
	api.POST("/auth/refresh", s.handleRefresh)

	protected := api.Group("")
	protected.Use(authentication(s.base64Secret))
	{
		protected.POST("/auth/signout", func(c *gin.Context) {
			c.JSON(200, gin.H{"data": gin.H{}})
		})
		protected.GET("/auth/session", s.handleSession)

		protected.GET("/tables/:table", s.handleSelect)
		protected.POST("/tables/:table", s.handleInsert)
		protected.PATCH("/tables/:table", s.handleUpdate)
		protected.DELETE("/tables/:table", s.handleDelete)

		protected.POST("/storage/:bucket/*path", s.handleUpload)
		protected.GET("/storage/sign/:bucket/*path", s.handleSign)

		protected.POST("/functions/:name", s.handleInvoke)

		protected.GET("/realtime/poll", s.handlePoll)
	}

	return r
}

func (s *Server) session(u user) gin.H {
	token, _ := security.CreateSessionToken(&security.Identity{
		UserID:   u.ID,
		Email:    u.Email,
		Role:     u.Role,
		Provider: "mock",
	}, s.base64Secret, 3600)

	refresh := uuid.NewString()

	return gin.H{
		"accessToken":  token,
		"refreshToken": refresh,
		"expiresAt":    time.Now().Add(time.Hour),
		"user": gin.H{
			"id":    u.ID,
			"email": u.Email,
			"role":  u.Role,
		},
	}
}

func (s *Server) handleSignIn(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"message": "invalid sign-in payload"})
		return
	}

	s.mu.Lock()
	u, ok := s.users[strings.ToLower(req.Email)]
	s.mu.Unlock()

	if !ok || u.Password != req.Password {
		c.JSON(401, gin.H{"code": "invalid_credentials", "message": "invalid email or password"})
		return
	}

	c.JSON(200, gin.H{"data": s.session(u)})
}

func (s *Server) handleRefresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		c.JSON(401, gin.H{"message": "invalid refresh token"})
		return
	}

	// the mock does not track refresh tokens; hand back a fresh session for
	// the first registered user
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		c.JSON(200, gin.H{"data": s.session(u)})
		return
	}
	c.JSON(401, gin.H{"message": "no users registered"})
}

func (s *Server) handleSession(c *gin.Context) {
	claims := c.MustGet("claims").(*security.IdentityClaims)
	c.JSON(200, gin.H{"data": gin.H{
		"accessToken": strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "),
		"expiresAt":   claims.ExpiresAt.Time,
		"user": gin.H{
			"id":    claims.UserID,
			"email": claims.Email,
			"role":  claims.Role,
		},
	}})
}

func (s *Server) handleInvoke(c *gin.Context) {
	name := c.Param("name")
	if name != "assistant-chat" {
		c.JSON(404, gin.H{"message": "unknown function " + name})
		return
	}
	var payload struct {
		Prompt string `json:"prompt"`
	}
	_ = c.ShouldBindJSON(&payload)
	c.JSON(200, gin.H{"data": gin.H{
		"reply": "You asked: " + payload.Prompt,
	}})
}

func (s *Server) handleUpload(c *gin.Context) {
	bucket := c.Param("bucket")
	path := strings.TrimPrefix(c.Param("path"), "/")

	data, err := c.GetRawData()
	if err != nil {
		c.JSON(400, gin.H{"message": "failed to read upload body"})
		return
	}

	s.mu.Lock()
	s.blobs[bucket+"/"+path] = data
	s.mu.Unlock()

	c.JSON(200, gin.H{"data": gin.H{"path": path}})
}

func (s *Server) handleSign(c *gin.Context) {
	bucket := c.Param("bucket")
	path := strings.TrimPrefix(c.Param("path"), "/")

	s.mu.Lock()
	_, ok := s.blobs[bucket+"/"+path]
	s.mu.Unlock()
	if !ok {
		c.JSON(404, gin.H{"message": "object not found"})
		return
	}

	expires := c.DefaultQuery("expiresIn", "3600")
	c.JSON(200, gin.H{"data": gin.H{
		"url": fmt.Sprintf("http://%s/api/v1/storage/%s/%s?expires=%s", c.Request.Host, bucket, path, expires),
	}})
}

func (s *Server) handlePoll(c *gin.Context) {
	table := c.Query("table")
	filter := c.Query("filter")
	cursor, _ := strconv.ParseInt(c.DefaultQuery("cursor", "0"), 10, 64)
	waitSec, _ := strconv.Atoi(c.DefaultQuery("wait", "0"))

	deadline := time.Now().Add(time.Duration(waitSec) * time.Second)

	s.mu.Lock()
	defer s.mu.Unlock()

	for {
		events := s.pendingLocked(table, filter, cursor)
		if len(events) > 0 || waitSec == 0 || time.Now().After(deadline) {
			next := cursor
			if len(events) > 0 {
				next = events[len(events)-1].ID
			} else {
				next = s.nextChange - 1
			}
			c.JSON(200, gin.H{"data": gin.H{"events": events, "cursor": next}})
			return
		}

		// sync.Cond has no deadline; wake periodically from a side goroutine
		waker := time.AfterFunc(100*time.Millisecond, s.changed.Broadcast)
		s.changed.Wait()
		waker.Stop()
	}
}

func (s *Server) pendingLocked(table, filter string, cursor int64) []change {
	events := make([]change, 0)
	for _, ch := range s.changes {
		if ch.ID <= cursor || ch.Table != table {
			continue
		}
		if filter != "" && !matchesFilterExpr(ch.Record, filter) && !matchesFilterExpr(ch.OldRecord, filter) {
			continue
		}
		events = append(events, ch)
	}
	return events
}
