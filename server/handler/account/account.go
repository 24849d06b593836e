// Package account serves signup and login.
package account

import (
	"net/http"
	"time"

	"go.lepak.sg/metro-planner/auth"
	"go.lepak.sg/metro-planner/server/handler/respond"
)

type Handler struct {
	Auth *auth.Service
}

type credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResult struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	Admin     bool      `json:"admin"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Signup serves POST /v1/auth/signup.
func (h Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := respond.Decode(w, r, &c); err != nil {
		respond.Err(w, err)
		return
	}

	u, err := h.Auth.Signup(r.Context(), c.Username, c.Password)
	if err != nil {
		respond.Err(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, u)
}

// Login serves POST /v1/auth/login.
func (h Handler) Login(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := respond.Decode(w, r, &c); err != nil {
		respond.Err(w, err)
		return
	}

	token, claims, err := h.Auth.Login(r.Context(), c.Username, c.Password)
	if err != nil {
		respond.Err(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, loginResult{
		Token:     token,
		Username:  claims.Username,
		Admin:     claims.Admin,
		ExpiresAt: claims.ExpiresAt.Time,
	})
}
