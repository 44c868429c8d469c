package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/cepho/cepho-api/internal/request"
	"github.com/cepho/cepho-api/internal/services/oidc"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	oidcProvider *oidc.Provider
	providerName string
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(oidcProvider *oidc.Provider, providerName string) *AuthHandler {
	return &AuthHandler{oidcProvider: oidcProvider, providerName: providerName}
}

// GetOIDCLogin returns OIDC configuration for frontend
func (h *AuthHandler) GetOIDCLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	loginConfig, err := h.oidcProvider.GetLoginConfig(ctx, h.providerName)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Failed to get OIDC configuration", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, loginConfig)
}

// ExchangeCodeRequest carries the authorization code from the frontend callback
type ExchangeCodeRequest struct {
	Code string `json:"code"`
}

// ExchangeCode trades an authorization code for tokens on behalf of the frontend
func (h *AuthHandler) ExchangeCode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ExchangeCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}
	if req.Code == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "code is required")
		return
	}

	oidcConfig, err := h.oidcProvider.GetConfig(ctx, h.providerName)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Failed to get OIDC configuration", err.Error())
		return
	}

	client := oidc.NewClient(oidcConfig)
	token, err := client.ExchangeCode(ctx, req.Code)
	if err != nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Failed to exchange authorization code")
		return
	}

	response := map[string]any{
		"access_token": token.AccessToken,
		"token_type":   token.TokenType,
		"expiry":       token.Expiry,
	}
	if idToken, ok := token.Extra("id_token").(string); ok {
		response["id_token"] = idToken
	}
	if token.RefreshToken != "" {
		response["refresh_token"] = token.RefreshToken
	}

	respondJSON(w, http.StatusOK, response)
}

// GetMe returns current user information
func (h *AuthHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	respondJSON(w, http.StatusOK, user)
}
