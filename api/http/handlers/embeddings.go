package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/artem13815/freelance/api/http/presenter"
	"github.com/artem13815/freelance/pkg/embedding"
	"github.com/artem13815/freelance/pkg/freelancer"
	"github.com/artem13815/freelance/pkg/project"
)

// Refresher forces regeneration of one entity's embedding.
type Refresher interface {
	Refresh(ctx context.Context, doc embedding.Document) ([]float32, error)
}

type EmbeddingHandler struct {
	svc         Refresher
	projects    project.Repository
	freelancers freelancer.Repository
}

func NewEmbeddingHandler(svc Refresher, projects project.Repository, freelancers freelancer.Repository) *EmbeddingHandler {
	return &EmbeddingHandler{svc: svc, projects: projects, freelancers: freelancers}
}

type refreshResponse struct {
	Kind       string    `json:"kind"`
	ID         string    `json:"id"`
	Dimensions int       `json:"dimensions"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Refresh пересчитывает эмбеддинг проекта или профиля (только админ).
// @Summary Пересчитать эмбеддинг
// @Tags    Embeddings
// @Produce json
// @Param   kind path string true "project | freelancer"
// @Param   id   path string true "ID сущности (UUID)"
// @Security BearerAuth
// @Success 200 {object} refreshResponse
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 401 {object} presenter.ErrorResponse
// @Failure 403 {object} presenter.ErrorResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Failure 502 {object} presenter.ErrorResponse
// @Router  /embeddings/{kind}/{id}/refresh [post]
func (h *EmbeddingHandler) Refresh(c *fiber.Ctx) error {
	kind, err := embedding.ParseKind(c.Params("kind"))
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, err.Error())
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "невалидный id")
	}

	ctx := c.UserContext()
	doc, err := embedding.Load(ctx, h.projects, h.freelancers, kind, id)
	if err != nil {
		return writeError(c, err)
	}
	vec, err := h.svc.Refresh(ctx, doc)
	if err != nil {
		return writeError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, refreshResponse{
		Kind:       string(kind),
		ID:         id.String(),
		Dimensions: len(vec),
		UpdatedAt:  time.Now().UTC(),
	})
}
