package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/artem13815/freelance/api/http/presenter"
	"github.com/artem13815/freelance/pkg/freelancer"
	"github.com/artem13815/freelance/pkg/invoice"
	"github.com/artem13815/freelance/pkg/llm"
	"github.com/artem13815/freelance/pkg/matching"
	"github.com/artem13815/freelance/pkg/project"
	"github.com/artem13815/freelance/pkg/security/jwt"
)

var errNoActor = errors.New("не удалось определить пользователя")

// actor reads the identity set by the auth middleware.
func actor(c *fiber.Ctx) (uuid.UUID, bool, error) {
	userIDStr, _ := c.Locals(jwt.LocalUserID).(string)
	actorID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, false, errNoActor
	}
	isAdmin, _ := c.Locals(jwt.LocalIsAdmin).(bool)
	return actorID, isAdmin, nil
}

// decodeBody parses a JSON object keeping numbers as json.Number.
func decodeBody(c *fiber.Ctx) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(c.Body()))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// writeError maps domain errors onto HTTP statuses.
func writeError(c *fiber.Ctx, err error) error {
	var verr invoice.ErrValidation
	switch {
	case errors.Is(err, project.ErrNotFound),
		errors.Is(err, freelancer.ErrNotFound),
		errors.Is(err, invoice.ErrNotFound):
		return presenter.Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, matching.ErrNoCandidates):
		return presenter.Error(c, http.StatusNotFound, err.Error())
	case errors.As(err, &verr):
		return presenter.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, llm.ErrProvider):
		return presenter.Error(c, http.StatusBadGateway, "LLM-провайдер недоступен")
	default:
		return err
	}
}
