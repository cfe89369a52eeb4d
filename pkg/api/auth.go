package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"sdn-controller/pkg/auth"
	"sdn-controller/pkg/model"
)

const tokenTTL = 24 * time.Hour

// AuthHandler manages operator accounts stored through gorm.
type AuthHandler struct {
	DB     *gorm.DB
	Signer *auth.Signer
	// Auth guards creation of accounts after the first one.
	Auth func(r *http.Request) bool
}

type authRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	ReadOnly bool   `json:"readOnly,omitempty"`
}

func (a *AuthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/auth/register", a.handleRegister)
	mux.HandleFunc("/api/v1/auth/login", a.handleLogin)
}

// handleRegister lets anyone create the first operator, who is never
// read-only. Later accounts need an authorized caller.
func (a *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req authRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	var count int64
	if err := a.DB.Model(&model.Operator{}).Count(&count).Error; err != nil {
		http.Error(w, "failed to query operators", http.StatusInternalServerError)
		return
	}
	if count > 0 && (a.Auth == nil || !a.Auth(r)) {
		http.Error(w, "registration closed", http.StatusForbidden)
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "failed to hash password", http.StatusInternalServerError)
		return
	}
	op := model.Operator{Username: req.Username, PasswordHash: string(hash), ReadOnly: count > 0 && req.ReadOnly}
	if err := a.DB.Create(&op).Error; err != nil {
		http.Error(w, "failed to create operator", http.StatusInternalServerError)
		return
	}
	a.issue(w, op)
}

func (a *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req authRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	var op model.Operator
	if err := a.DB.Where("username = ?", req.Username).First(&op).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "failed to query operators", http.StatusInternalServerError)
			return
		}
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(req.Password)) != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	a.issue(w, op)
}

func (a *AuthHandler) issue(w http.ResponseWriter, op model.Operator) {
	token, err := a.Signer.Generate(op, tokenTTL)
	if err != nil {
		http.Error(w, "failed to sign token", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"token": token, "readOnly": op.ReadOnly})
}
