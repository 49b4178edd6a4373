// Package server 提供对外的 HTTP 接口
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lincunyuan/Financial-Agent/internal/agent"
)

// Server HTTP 服务
type Server struct {
	coordinator *agent.Coordinator
	engine      *gin.Engine
}

type analyzeRequest struct {
	UserID string `json:"user_id"`
	Query  string `json:"query" binding:"required"`
}

type chatRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Query  string `json:"query" binding:"required"`
}

// New 创建 HTTP 服务
func New(coordinator *agent.Coordinator, env string) *Server {
	if env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	s := &Server{
		coordinator: coordinator,
		engine:      gin.New(),
	}
	s.engine.Use(gin.Recovery())
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/healthz", s.health)

	api := s.engine.Group("/api")
	api.POST("/analyze", s.analyze)
	api.POST("/chat", s.chat)
	api.GET("/history/:user_id", s.history)
	api.DELETE("/history/:user_id", s.clearHistory)
}

// Handler 返回底层 http.Handler，由调用方装进自己的 http.Server
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// analyze 只做意图分析，不产生回复
func (s *Server) analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "参数错误: "+err.Error())
		return
	}
	if req.UserID == "" {
		req.UserID = "anonymous"
	}
	result := s.coordinator.Analyze(c.Request.Context(), req.UserID, req.Query)
	ok(c, result)
}

// chat 完整问答流程
func (s *Server) chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "参数错误: "+err.Error())
		return
	}
	resp := s.coordinator.ProcessQuery(c.Request.Context(), req.UserID, req.Query)
	ok(c, resp)
}

func (s *Server) history(c *gin.Context) {
	userID := c.Param("user_id")
	ok(c, s.coordinator.History(userID))
}

func (s *Server) clearHistory(c *gin.Context) {
	userID := c.Param("user_id")
	if err := s.coordinator.ClearSession(userID); err != nil {
		fail(c, http.StatusInternalServerError, "清空会话失败: "+err.Error())
		return
	}
	ok(c, gin.H{"user_id": userID})
}
