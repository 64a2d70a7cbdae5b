package history

import (
	"errors"
	"strconv"

	"dbt-metabase/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for export history.
type Handler struct {
	store  *Store
	logger *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(store *Store, logger *zap.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// RegisterRoutes registers the history routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/runs")
	group.Get("/", h.HandleList)
	group.Get("/:id", h.HandleGet)
}

// HandleList lists the latest export runs.
// @Summary List Export Runs
// @Description Returns the latest export runs, newest first.
// @Tags history
// @Produce json
// @Param limit query int false "Maximum number of runs (default 20, max 200)"
// @Success 200 {array} ExportRun
// @Failure 503 {object} map[string]string "History disabled"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /runs [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	limit := DefaultListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "limit must be a number"})
		}
		limit = n
	}

	runs, err := h.store.List(c.UserContext(), limit)
	if err != nil {
		return h.fail(c, l, err)
	}
	return c.JSON(runs)
}

// HandleGet returns one export run.
// @Summary Get Export Run
// @Description Returns the export run with the given id.
// @Tags history
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} ExportRun
// @Failure 404 {object} map[string]string "Not Found"
// @Failure 503 {object} map[string]string "History disabled"
// @Router /runs/{id} [get]
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	run, err := h.store.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, l, err)
	}
	return c.JSON(run)
}

func (h *Handler) fail(c *fiber.Ctx, l *zap.Logger, err error) error {
	switch {
	case errors.Is(err, ErrDisabled):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrRunNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	default:
		l.Error("History query failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}
