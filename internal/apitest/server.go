// Package apitest provides an in-process fake of the Retail Management API
// for tests. It issues opaque tokens, lets tests expire them on demand,
// counts refresh calls and serves in-memory CRUD collections with the same
// shapes and error bodies as the real server. Products are served with a
// nested {"id", "name"} branch, as the real server does.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

// DefaultCollections are the collection names served by New.
var DefaultCollections = []string{
	"products", "branches", "vendors", "sales", "purchases",
	"ledger-entries", "stock-movements", "audit-logs",
}

// Item is a stored record in its JSON form.
type Item = map[string]any

type collection struct {
	nextID int64
	items  map[int64]Item
}

type listHold struct {
	arrived chan struct{}
	release chan struct{}
}

// Server is a fake Retail API.
type Server struct {
	*httptest.Server

	mu            sync.Mutex
	users         map[string]user
	access        map[string]bool
	refresh       map[string]bool
	accessSeq     int
	refreshSeq    int
	collections   map[string]*collection
	refreshCalls  int
	loginCalls    int
	requests      map[string]int
	holds         map[string]*listHold
	rotateRefresh bool
	paginate      bool
	rejectAccess  bool
}

type user struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	password string
}

// New starts a fake API; it is closed when the test ends. The API root is
// URL()+"/api/".
func New(t testing.TB) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &Server{
		users:       make(map[string]user),
		access:      make(map[string]bool),
		refresh:     make(map[string]bool),
		collections: make(map[string]*collection),
		requests:    make(map[string]int),
		holds:       make(map[string]*listHold),
	}
	for _, name := range DefaultCollections {
		s.collections[name] = &collection{nextID: 1, items: make(map[int64]Item)}
	}
	s.users["admin"] = user{ID: 1, Username: "admin", Email: "admin@example.com", Role: "admin", password: "secret"}

	s.Server = httptest.NewServer(s.router())
	t.Cleanup(s.Close)
	return s
}

// BaseURL returns the API root.
func (s *Server) BaseURL() string {
	return s.URL + "/api/"
}

func (s *Server) router() *gin.Engine {
	r := gin.New()
	r.Use(s.count)

	api := r.Group("/api")
	api.POST("/token/", s.handleLogin)
	api.POST("/token/refresh/", s.handleRefresh)
	api.POST("/register/", s.handleRegister)

	for name := range s.collections {
		g := api.Group("/"+name, s.requireAccess)
		g.GET("/", s.handleList(name))
		g.POST("/", s.handleCreate(name))
		g.GET("/:id/", s.handleGet(name))
		g.PUT("/:id/", s.handleUpdate(name))
		g.PATCH("/:id/", s.handleUpdate(name))
		g.DELETE("/:id/", s.handleDelete(name))
	}

	r.GET("/admin/api/customuser/", s.requireAccess, s.handleCurrentUser)
	return r
}

func (s *Server) count(c *gin.Context) {
	s.mu.Lock()
	s.requests[c.Request.Method+" "+c.Request.URL.Path]++
	s.mu.Unlock()
	c.Next()
}

// SimpleJWT's response for a rejected access token.
var tokenNotValid = gin.H{
	"detail": "Given token not valid for any token type",
	"code":   "token_not_valid",
	"messages": []gin.H{{
		"token_class": "AccessToken",
		"token_type":  "access",
		"message":     "Token is invalid or expired",
	}},
}

func (s *Server) requireAccess(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"detail": "Authentication credentials were not provided.",
			"code":   "not_authenticated",
		})
		return
	}

	s.mu.Lock()
	valid := s.access[token] && !s.rejectAccess
	s.mu.Unlock()

	if !valid {
		c.AbortWithStatusJSON(http.StatusUnauthorized, tokenNotValid)
		return
	}
	c.Next()
}

func (s *Server) handleLogin(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	_ = c.ShouldBindJSON(&req)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loginCalls++

	u, ok := s.users[req.Username]
	if !ok || u.password != req.Password {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "No active account found with the given credentials"})
		return
	}

	access, refresh := s.issueAccessLocked(), s.issueRefreshLocked()
	c.JSON(http.StatusOK, gin.H{"access": access, "refresh": refresh})
}

func (s *Server) handleRefresh(c *gin.Context) {
	var req struct {
		Refresh string `json:"refresh"`
	}
	_ = c.ShouldBindJSON(&req)

	s.mu.Lock()
	s.refreshCalls++
	valid := s.refresh[req.Refresh]
	s.mu.Unlock()

	if !valid {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Token is invalid or expired", "code": "token_not_valid"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	body := gin.H{"access": s.issueAccessLocked()}
	if s.rotateRefresh {
		delete(s.refresh, req.Refresh)
		body["refresh"] = s.issueRefreshLocked()
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) handleRegister(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	_ = c.ShouldBindJSON(&req)

	s.mu.Lock()
	defer s.mu.Unlock()

	if req.Username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"username": []string{"This field is required."}})
		return
	}
	if _, exists := s.users[req.Username]; exists {
		c.JSON(http.StatusBadRequest, gin.H{"username": []string{"A user with that username already exists."}})
		return
	}

	u := user{ID: int64(len(s.users) + 1), Username: req.Username, Email: req.Email, Role: req.Role, password: req.Password}
	s.users[u.Username] = u
	c.JSON(http.StatusCreated, u)
}

func (s *Server) handleCurrentUser(c *gin.Context) {
	role := c.Query("role__exact")

	s.mu.Lock()
	out := make([]user, 0, len(s.users))
	for _, u := range s.users {
		if role == "" || u.Role == role {
			out = append(out, u)
		}
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleList(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		items := s.snapshotLocked(name)
		hold := s.holds[name]
		delete(s.holds, name)
		paginate := s.paginate
		s.mu.Unlock()

		if hold != nil {
			close(hold.arrived)
			<-hold.release
		}

		if paginate {
			c.JSON(http.StatusOK, gin.H{"count": len(items), "next": nil, "previous": nil, "results": items})
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

func (s *Server) handleCreate(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var item Item
		if err := c.ShouldBindJSON(&item); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"non_field_errors": []string{"Invalid data."}})
			return
		}
		if v, ok := item["name"]; ok && v == "" {
			c.JSON(http.StatusBadRequest, gin.H{"name": []string{"This field may not be blank."}})
			return
		}

		s.mu.Lock()
		item = s.insertLocked(name, item)
		s.mu.Unlock()

		c.JSON(http.StatusCreated, item)
	}
}

func (s *Server) handleGet(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}

		s.mu.Lock()
		item, found := s.collections[name].items[id]
		s.mu.Unlock()

		if !found {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

func (s *Server) handleUpdate(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		var patch Item
		if err := c.ShouldBindJSON(&patch); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"non_field_errors": []string{"Invalid data."}})
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		item, found := s.collections[name].items[id]
		if !found {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
			return
		}
		for k, v := range patch {
			item[k] = v
		}
		s.expandLocked(name, item)
		item["id"] = id
		c.JSON(http.StatusOK, item)
	}
}

func (s *Server) handleDelete(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		items := s.collections[name].items
		if _, found := items[id]; !found {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
			return
		}
		delete(items, id)
		c.Status(http.StatusNoContent)
	}
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return 0, false
	}
	return id, true
}

func (s *Server) issueAccessLocked() string {
	s.accessSeq++
	token := "a" + strconv.Itoa(s.accessSeq)
	s.access[token] = true
	return token
}

func (s *Server) issueRefreshLocked() string {
	s.refreshSeq++
	token := "r" + strconv.Itoa(s.refreshSeq)
	s.refresh[token] = true
	return token
}

func (s *Server) insertLocked(name string, item Item) Item {
	col := s.collections[name]
	id := col.nextID
	col.nextID++

	stored := make(Item, len(item)+2)
	for k, v := range item {
		stored[k] = v
	}
	stored["id"] = id
	s.expandLocked(name, stored)
	if _, ok := stored["created_at"]; !ok {
		stored["created_at"] = time.Now().UTC().Format(time.RFC3339)
	}
	col.items[id] = stored
	return stored
}

// expandLocked rewrites a product's branch reference the way the real
// server serializes it. Creates send "branch_id", updates send "branch".
func (s *Server) expandLocked(name string, item Item) {
	if name != "products" {
		return
	}
	if v, ok := item["branch_id"]; ok {
		delete(item, "branch_id")
		item["branch"] = v
	}
	var id int64
	switch v := item["branch"].(type) {
	case float64:
		id = int64(v)
	case int:
		id = int64(v)
	case int64:
		id = v
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return
		}
		id = n
	default:
		return
	}
	ref := Item{"id": id, "name": ""}
	if b, ok := s.collections["branches"].items[id]; ok {
		ref["name"] = b["name"]
	}
	item["branch"] = ref
}

func (s *Server) snapshotLocked(name string) []Item {
	col := s.collections[name]
	ids := make([]int64, 0, len(col.items))
	for id := range col.items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]Item, 0, len(ids))
	for _, id := range ids {
		// Round-trip so a held response cannot observe later writes.
		raw, _ := json.Marshal(col.items[id])
		var copied Item
		_ = json.Unmarshal(raw, &copied)
		out = append(out, copied)
	}
	return out
}

// AddUser registers an account that can log in.
func (s *Server) AddUser(username, password, role string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[username] = user{
		ID:       int64(len(s.users) + 1),
		Username: username,
		Email:    username + "@example.com",
		Role:     role,
		password: password,
	}
}

// IssueTokens mints a valid token pair without a login request.
func (s *Server) IssueTokens() (access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueAccessLocked(), s.issueRefreshLocked()
}

// ExpireAccess makes the given access tokens invalid.
func (s *Server) ExpireAccess(tokens ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range tokens {
		delete(s.access, t)
	}
}

// ExpireRefresh makes the given refresh tokens invalid.
func (s *Server) ExpireRefresh(tokens ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range tokens {
		delete(s.refresh, t)
	}
}

// RejectAllAccess makes every access token, including future ones, fail.
func (s *Server) RejectAllAccess(reject bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejectAccess = reject
}

// RotateRefresh makes the refresh endpoint also return a new refresh token.
func (s *Server) RotateRefresh(rotate bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rotateRefresh = rotate
}

// Paginate wraps list responses in a {"count", "results"} envelope.
func (s *Server) Paginate(paginate bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paginate = paginate
}

// Seed stores items directly and returns them with their assigned ids.
func (s *Server) Seed(name string, items ...Item) []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[name]; !ok {
		panic(fmt.Sprintf("apitest: unknown collection %q", name))
	}
	out := make([]Item, 0, len(items))
	for _, item := range items {
		out = append(out, s.insertLocked(name, item))
	}
	return out
}

// Items returns the stored items of a collection ordered by id.
func (s *Server) Items(name string) []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(name)
}

// HoldNextList makes the next list request on name capture its response
// and then wait. arrived is closed once the response is captured; the
// response is written after release is called.
func (s *Server) HoldNextList(name string) (arrived <-chan struct{}, release func()) {
	h := &listHold{arrived: make(chan struct{}), release: make(chan struct{})}
	s.mu.Lock()
	s.holds[name] = h
	s.mu.Unlock()

	var once sync.Once
	return h.arrived, func() { once.Do(func() { close(h.release) }) }
}

// RefreshCalls returns how many refresh requests were received.
func (s *Server) RefreshCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshCalls
}

// LoginCalls returns how many login requests were received.
func (s *Server) LoginCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loginCalls
}

// Requests returns how many requests hit "METHOD /path".
func (s *Server) Requests(methodPath string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[methodPath]
}
