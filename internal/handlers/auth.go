package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/maisonlux/ateliergo/internal/utils"
)

// loginRequest is the login payload
type loginRequest struct {
	MemberID string `json:"memberId"`
	PIN      string `json:"pin"`
}

// login exchanges a member id + PIN for a bearer token. This is only the
// actor-identity boundary; there is no session storage behind it.
func (r *Router) login(w http.ResponseWriter, req *http.Request) {
	var body loginRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	member, err := r.store.GetMember(req.Context(), body.MemberID)
	if err != nil || !member.Active {
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if !utils.CheckPIN(body.PIN, member.PINHash) {
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := utils.GenerateToken(member, r.cfg.JWTSecret)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"token":  token,
		"member": member,
	})
}
