package handlers

import (
	"net/http"

	"winsales/internal/actions"
)

type ProfileHandler struct {
	base
}

func NewProfileHandler(d Deps) *ProfileHandler {
	return &ProfileHandler{base{d}}
}

func (h *ProfileHandler) Show(w http.ResponseWriter, r *http.Request) {
	h.renderProfile(w, r, http.StatusOK, map[string]interface{}{})
}

func (h *ProfileHandler) renderProfile(w http.ResponseWriter, r *http.Request, status int, data map[string]interface{}) {
	user, err := h.Users.GetByID(r.Context(), h.session(r).UserID)
	if err != nil {
		h.serverError(w, r, "load profile", err)
		return
	}
	data["Title"] = "Mi perfil"
	data["User"] = user
	h.renderStatus(w, r, status, "profile.html", data)
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	res := h.Actions.UpdateProfile(r.Context(), h.session(r), r.PostForm)
	if res.Success {
		http.Redirect(w, r, "/dashboard/profile?saved=1", http.StatusFound)
		return
	}
	h.renderProfile(w, r, resultStatus(res), formData(map[string]interface{}{}, r, res))
}

func (h *ProfileHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	res := h.Actions.ChangePassword(r.Context(), h.session(r), r.PostForm)
	if res.Success {
		http.Redirect(w, r, "/dashboard/profile?saved=1", http.StatusFound)
		return
	}
	data := map[string]interface{}{
		"PasswordError":  res.Error,
		"PasswordFields": res.FieldErrors(),
	}
	status := resultStatus(res)
	if res.Error == actions.MsgWrongPassword {
		status = http.StatusUnprocessableEntity
	}
	h.renderProfile(w, r, status, data)
}
