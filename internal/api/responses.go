package api

import "github.com/denzelpenzel/skillswap/internal/models"

type errorResponse struct {
	Error     bool   `json:"error"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type skillCreatedResponse struct {
	Message string        `json:"message"`
	Skill   *models.Skill `json:"skill"`
}

type requestCreatedResponse struct {
	Message string               `json:"message"`
	Request *models.SkillRequest `json:"request"`
}

type healthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp"`
}
