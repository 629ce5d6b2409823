package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/apontei/apontei/internal/rest"
)

type UserDTO struct {
	ID            string `json:"id,omitempty"`
	FullName      string `json:"fullName"`
	Email         string `json:"email"`
	CPF           string `json:"cpf"`
	Matricula     string `json:"matricula"`
	Role          string `json:"role"`
	Status        string `json:"status,omitempty"`
	DepartmentID  string `json:"departmentId,omitempty"`
	ManagerID     string `json:"managerId,omitempty"`
	Timezone      string `json:"timezone,omitempty"`
	WeeklyHours   int    `json:"weeklyHours,omitempty"`
	AdmissionDate string `json:"admissionDate,omitempty"`
	Password      string `json:"password,omitempty"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	log.Debug("Creating user")

	current, err := CurrentUser(r.Context())
	if err != nil || !current.IsDirector() {
		writeError(w, http.StatusForbidden, "Only directors can create users")
		return
	}

	var dto UserDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body format")
		return
	}

	u, err := dtoToUser(dto)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.service.Create(r.Context(), u, dto.Password)
	if err != nil {
		status := statusForUserError(err)
		if status == http.StatusInternalServerError {
			log.Errorf("failed to create user: %v", err)
			writeError(w, status, "Failed to create user")
			return
		}
		writeError(w, status, err.Error())
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(userToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) Current(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	u, err := h.service.GetCurrent(r.Context())
	if err != nil {
		writeError(w, http.StatusForbidden, "Not authenticated")
		return
	}
	if err := json.NewEncoder(w).Encode(userToDTO(u)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id := mux.Vars(r)["userId"]

	current, err := CurrentUser(r.Context())
	if err != nil {
		writeError(w, http.StatusForbidden, "Not authenticated")
		return
	}

	target, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNoUser) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		log.Errorf("failed to get user: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to get user")
		return
	}

	if !CanActOn(current, target) {
		writeError(w, http.StatusForbidden, "You cannot view this user")
		return
	}

	if err := json.NewEncoder(w).Encode(userToDTO(target)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	users, err := h.service.List(r.Context())
	if err != nil {
		log.Errorf("failed to list users: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to list users")
		return
	}

	dtos := make([]UserDTO, 0, len(users))
	for _, u := range users {
		dtos = append(dtos, userToDTO(u))
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id := mux.Vars(r)["userId"]

	current, err := CurrentUser(r.Context())
	if err != nil || !current.IsDirector() {
		writeError(w, http.StatusForbidden, "Only directors can update users")
		return
	}

	var dto UserDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body format")
		return
	}
	u, err := dtoToUser(dto)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	u.ID = id

	updated, err := h.service.Update(r.Context(), u, dto.Password)
	if err != nil {
		if errors.Is(err, ErrNoUser) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		status := statusForUserError(err)
		if status == http.StatusInternalServerError {
			log.Errorf("failed to update user: %v", err)
			writeError(w, status, "Failed to update user")
			return
		}
		writeError(w, status, err.Error())
		return
	}

	if err := json.NewEncoder(w).Encode(userToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id := mux.Vars(r)["userId"]

	current, err := CurrentUser(r.Context())
	if err != nil || !current.IsDirector() {
		writeError(w, http.StatusForbidden, "Only directors can delete users")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNoUser) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		log.Errorf("failed to delete user: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to delete user")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func statusForUserError(err error) int {
	switch {
	case errors.Is(err, ErrInvalidEmail),
		errors.Is(err, ErrInvalidCPF),
		errors.Is(err, ErrWeakPassword),
		errors.Is(err, ErrInvalidRole),
		errors.Is(err, ErrEmailTaken):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(rest.ErrorResponse{Error: message}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func userToDTO(u User) UserDTO {
	dto := UserDTO{
		ID:           u.ID,
		FullName:     u.FullName,
		Email:        u.Email,
		CPF:          u.CPF,
		Matricula:    u.Matricula,
		Role:         string(u.Role),
		Status:       string(u.Status),
		DepartmentID: u.DepartmentID,
		ManagerID:    u.ManagerID,
		Timezone:     u.Timezone,
		WeeklyHours:  u.WeeklyHours,
	}
	if u.AdmissionDate != nil {
		dto.AdmissionDate = u.AdmissionDate.Format(time.DateOnly)
	}
	return dto
}

func dtoToUser(dto UserDTO) (User, error) {
	u := User{
		ID:           dto.ID,
		FullName:     dto.FullName,
		Email:        dto.Email,
		CPF:          dto.CPF,
		Matricula:    dto.Matricula,
		Role:         Role(dto.Role),
		Status:       Status(dto.Status),
		DepartmentID: dto.DepartmentID,
		ManagerID:    dto.ManagerID,
		Timezone:     dto.Timezone,
		WeeklyHours:  dto.WeeklyHours,
	}
	if dto.AdmissionDate != "" {
		d, err := time.Parse(time.DateOnly, dto.AdmissionDate)
		if err != nil {
			return User{}, errors.New("admissionDate must be in YYYY-MM-DD format")
		}
		u.AdmissionDate = &d
	}
	return u, nil
}
