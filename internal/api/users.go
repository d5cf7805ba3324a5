package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"todo-planner/internal/access"
	"todo-planner/internal/model"
	"todo-planner/internal/service"
)

func (s *server) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, s.Logger, bindError(err))
		return
	}
	user, err := s.Users.Register(c.Request.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(c, s.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"doc": user, "message": "Successfully registered."})
}

func (s *server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, s.Logger, bindError(err))
		return
	}
	session, err := s.Users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, s.Logger, err)
		return
	}
	maxAge := int(time.Until(session.Expires).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.Cookie.Name, session.Token, maxAge, "/", "", s.Cookie.Secure, true)
	c.JSON(http.StatusOK, gin.H{"user": session.User, "token": session.Token, "exp": session.Expires.Unix()})
}

func (s *server) logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.Cookie.Name, "", -1, "/", "", s.Cookie.Secure, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully."})
}

func (s *server) me(c *gin.Context) {
	user, err := s.Users.Me(c.Request.Context(), actorOf(c))
	if err != nil {
		writeError(c, s.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (s *server) updateMe(c *gin.Context) {
	var req updateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, s.Logger, bindError(err))
		return
	}
	user, err := s.Users.UpdateProfile(c.Request.Context(), actorOf(c), req.Name)
	if err != nil {
		writeError(c, s.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"doc": user, "message": "Updated successfully."})
}

func (s *server) setRole(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		writeError(c, s.Logger, err)
		return
	}
	var req setRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, s.Logger, bindError(err))
		return
	}
	user, err := s.Users.SetRole(c.Request.Context(), actorOf(c), id, model.Role(req.Role))
	if err != nil {
		writeError(c, s.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"doc": user, "message": "Updated successfully."})
}

func (s *server) telegramLink(c *gin.Context) {
	actor := actorOf(c)
	if _, ok := access.ActorID(actor); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	if !s.TelegramEnabled {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "telegram is not configured"})
		return
	}
	code, expires, err := s.Users.IssueTelegramLinkCode(c.Request.Context(), actor)
	if err != nil {
		writeError(c, s.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": code, "command": "/start " + code, "expires": expires})
}
