// Package api provides the HTTP REST API server for the fortune-telling
// service.
//
// It exposes endpoints for chart computation, major-period and annual-period
// projection, pillar inversion, LLM interpretation, and WebSocket streaming.
package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ZRnown/ai-fortune-telling/internal/bazi"
	"github.com/ZRnown/ai-fortune-telling/internal/config"
	"github.com/ZRnown/ai-fortune-telling/internal/infra"
	"github.com/ZRnown/ai-fortune-telling/internal/llm"
	"github.com/ZRnown/ai-fortune-telling/internal/lunisolar"
	"github.com/ZRnown/ai-fortune-telling/pkg/models"
	"github.com/ZRnown/ai-fortune-telling/web"
)

// Server is the HTTP API server.
type Server struct {
	router      chi.Router
	cfg         *config.Config
	engine      *bazi.Engine
	provider    llm.Provider // nil when no API key is configured
	wsHub       *WSHub
	charts      *infra.ChartCache
	chatLimiter *infra.RateLimiter
}

// NewServer creates a configured API server with all routes and middleware.
// A missing LLM key is not fatal: the computation endpoints work without
// one, and /chat reports the provider as unavailable.
func NewServer(cfg *config.Config) (*Server, error) {
	provider, err := llm.FromConfig(cfg.LLM)
	if err != nil {
		log.Printf("LLM provider disabled: %v", err)
		provider = nil
	}

	srv := &Server{
		cfg:         cfg,
		engine:      bazi.NewEngine(lunisolar.NewCalendar()),
		provider:    provider,
		wsHub:       NewWSHub(),
		charts:      infra.NewChartCache(time.Hour),
		chatLimiter: infra.NewRateLimiter(10, time.Minute),
	}

	srv.router = srv.buildRouter()
	return srv, nil
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe starts the HTTP server with graceful shutdown.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start WebSocket hub
	go s.wsHub.Run()

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return httpSrv.Shutdown(ctx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	// CORS
	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", s.handleHealth)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Chart computation
		r.Post("/bazi", s.handleBazi)
		r.Post("/dayun", s.handleDaYun)
		r.Post("/liunian", s.handleLiuNian)

		// Pillar inversion
		r.Post("/invert", s.handleInvert)

		// LLM interpretation
		r.Post("/chat", s.handleChat)

		// Configuration
		r.Get("/config/keys", s.handleGetConfigKeys)

		// WebSocket
		r.Get("/ws", s.handleWebSocket)
	})

	// Embedded web UI
	r.Handle("/*", http.FileServerFS(web.DistFS()))

	return r
}

// computeChart computes a chart, serving repeated birth moments from cache.
func (s *Server) computeChart(in models.BirthInput) (*models.BaziResult, error) {
	if chart, ok := s.charts.Get(in); ok {
		return chart, nil
	}
	chart, err := s.engine.ComputeBazi(in)
	if err != nil {
		return nil, err
	}
	s.charts.Set(in, chart)
	return chart, nil
}

// ============================================================
// Request / Response types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// BaziRequest is the body for POST /api/v1/bazi.
type BaziRequest struct {
	models.BirthInput
	DaYunCount   int `json:"dayun_count,omitempty"`
	LiuNianCount int `json:"liunian_count,omitempty"`
}

// BaziResponse bundles the chart with its projections.
type BaziResponse struct {
	Chart   *models.BaziResult  `json:"chart"`
	DaYun   []models.DaYunItem  `json:"dayun,omitempty"`
	LiuNian []models.LiuNianItem `json:"liunian,omitempty"`
}

// DaYunRequest is the body for POST /api/v1/dayun.
type DaYunRequest struct {
	models.BirthInput
	Count int `json:"count,omitempty"`
}

// LiuNianRequest is the body for POST /api/v1/liunian.
type LiuNianRequest struct {
	models.BirthInput
	StartYear int `json:"start_year"`
	Count     int `json:"count,omitempty"`
}

// InvertRequest is the body for POST /api/v1/invert.
type InvertRequest struct {
	Pillars models.PillarsInput  `json:"pillars"`
	Options models.SearchOptions `json:"options,omitempty"`
}

// ChatRequest is the body for POST /api/v1/chat. Instruction, when set,
// replaces the default system instruction.
type ChatRequest struct {
	models.BirthInput
	Instruction string        `json:"instruction,omitempty"`
	Question    string        `json:"question"`
	History     []ChatMessage `json:"history,omitempty"`
}

// ChatMessage represents a single chat message in history.
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	llmStatus := "disabled"
	if s.provider != nil {
		llmStatus = s.provider.Name()
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status":  "ok",
			"version": "dev",
			"llm":     llmStatus,
		},
	})
}

func (s *Server) handleBazi(w http.ResponseWriter, r *http.Request) {
	var req BaziRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	chart, err := s.computeChart(req.BirthInput)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := BaziResponse{Chart: chart}
	dyCount := req.DaYunCount
	if dyCount <= 0 {
		dyCount = s.cfg.Engine.DaYunCount
	}
	resp.DaYun = s.engine.CalculateDaYun(req.BirthInput, chart, dyCount)
	if len(resp.DaYun) > 0 {
		lnCount := req.LiuNianCount
		if lnCount <= 0 {
			lnCount = s.cfg.Engine.LiuNianCount
		}
		resp.LiuNian = s.engine.CalculateLiuNian(req.Year, resp.DaYun[0].StartYear, lnCount, chart.DayStem())
	}

	// Broadcast to WebSocket clients
	s.wsHub.Broadcast(WSMessage{
		Type: "chart_computed",
		Data: map[string]interface{}{
			"solar_date": chart.SolarDate,
			"ganzhi":     chart.LunarDate,
		},
	})

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    resp,
	})
}

func (s *Server) handleDaYun(w http.ResponseWriter, r *http.Request) {
	var req DaYunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	chart, err := s.computeChart(req.BirthInput)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	count := req.Count
	if count <= 0 {
		count = s.cfg.Engine.DaYunCount
	}
	items := s.engine.CalculateDaYun(req.BirthInput, chart, count)

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    items,
	})
}

func (s *Server) handleLiuNian(w http.ResponseWriter, r *http.Request) {
	var req LiuNianRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.StartYear == 0 {
		writeError(w, http.StatusBadRequest, "start_year is required")
		return
	}

	chart, err := s.computeChart(req.BirthInput)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	count := req.Count
	if count <= 0 {
		count = s.cfg.Engine.LiuNianCount
	}
	items := s.engine.CalculateLiuNian(req.Year, req.StartYear, count, chart.DayStem())

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    items,
	})
}

func (s *Server) handleInvert(w http.ResponseWriter, r *http.Request) {
	var req InvertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	timeout := time.Duration(s.cfg.Engine.SearchTimeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	found, err := s.engine.FindDateByPillars(ctx, req.Pillars, req.Options)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.wsHub.Broadcast(WSMessage{
		Type: "search_complete",
		Data: map[string]interface{}{
			"found": found != nil,
		},
	})

	if found == nil {
		// Exhausted range without a match: success with null data
		writeJSON(w, http.StatusOK, APIResponse{Success: true})
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    found,
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if s.provider == nil {
		writeError(w, http.StatusServiceUnavailable, "no LLM provider configured")
		return
	}
	if !s.chatLimiter.Allow() {
		writeError(w, http.StatusTooManyRequests, "interpretation rate limit exceeded, retry later")
		return
	}

	chart, err := s.computeChart(req.BirthInput)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	messages := llm.InterpretMessagesWith(chart, req.Instruction, req.Question)
	// Splice history between the chart context and the final question
	if len(req.History) > 0 {
		spliced := make([]llm.Message, 0, len(messages)+len(req.History))
		spliced = append(spliced, messages[:len(messages)-1]...)
		for _, m := range req.History {
			switch m.Role {
			case "user":
				spliced = append(spliced, llm.UserMessage(m.Content))
			case "assistant":
				spliced = append(spliced, llm.AssistantMessage(m.Content))
			}
		}
		spliced = append(spliced, messages[len(messages)-1])
		messages = spliced
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	result, err := s.provider.Chat(ctx, messages, &llm.ChatOptions{
		Model:       s.cfg.LLM.Model,
		Temperature: s.cfg.LLM.Temperature,
		MaxTokens:   s.cfg.LLM.MaxTokens,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"provider": result.Provider,
			"model":    result.Model,
			"content":  result.Content,
			"tokens":   result.Usage.TotalTokens,
		},
	})
}

func (s *Server) handleGetConfigKeys(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    config.CheckAPIKeys(s.cfg),
	})
}

// ============================================================
// Helpers
// ============================================================

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to write JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}

// ============================================================
// WebSocket Hub
// ============================================================

// WSMessage is a message sent over WebSocket connections.
type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// WSHub manages WebSocket connections and message broadcasting.
type WSHub struct {
	mu         sync.RWMutex
	clients    map[*WSClient]bool
	broadcast  chan WSMessage
	register   chan *WSClient
	unregister chan *WSClient
}

// WSClient represents a single WebSocket connection.
type WSClient struct {
	hub  *WSHub
	send chan WSMessage

	mu     sync.Mutex
	closed bool
}

// enqueue delivers a message to the client's write pump. Messages to a
// client that the hub already shut down, or whose queue is full, are
// dropped; the hub disconnects full clients on the next broadcast.
func (c *WSClient) enqueue(msg WSMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- msg:
	default:
	}
}

// shutdown closes the send channel exactly once. Only the hub calls this,
// so concurrent readers can never hit a closed channel through enqueue.
func (c *WSClient) shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// NewWSHub creates a new WebSocket hub.
func NewWSHub() *WSHub {
	return &WSHub{
		clients:    make(map[*WSClient]bool),
		broadcast:  make(chan WSMessage, 256),
		register:   make(chan *WSClient),
		unregister: make(chan *WSClient),
	}
}

// Run starts the hub event loop.
func (h *WSHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.shutdown()
			}
			h.mu.Unlock()
		case msg := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- msg:
				default:
					// Slow client; disconnect
					h.mu.RUnlock()
					h.mu.Lock()
					delete(h.clients, client)
					client.shutdown()
					h.mu.Unlock()
					h.mu.RLock()
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Broadcast sends a message to all connected WebSocket clients.
func (h *WSHub) Broadcast(msg WSMessage) {
	select {
	case h.broadcast <- msg:
	default:
		// Drop message if broadcast channel is full
	}
}

// ClientCount returns the number of connected WebSocket clients.
func (h *WSHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Register adds a client to the hub.
func (h *WSHub) Register(client *WSClient) {
	h.register <- client
}

// Unregister removes a client from the hub.
func (h *WSHub) Unregister(client *WSClient) {
	h.unregister <- client
}
