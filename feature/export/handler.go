package export

import (
	"errors"

	"dbt-metabase/core/logger"
	"dbt-metabase/core/reconcile"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for export runs.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the export routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/export")
	group.Post("/", h.HandleExport)
	group.Get("/defaults", h.HandleDefaults)
}

// HandleExport runs one export.
// @Summary Run Export
// @Description Pushes dbt manifest metadata to Metabase. Omitted fields fall back to the configured defaults. This operation may take as long as the sync timeout plus one API call per change.
// @Tags export
// @Accept json
// @Produce json
// @Param request body Request false "Option overrides"
// @Success 200 {object} RunResult
// @Failure 400 {object} map[string]string "Invalid options"
// @Failure 404 {object} RunResult "Database not found"
// @Failure 502 {object} RunResult "Metabase unavailable"
// @Failure 500 {object} RunResult "Internal Server Error"
// @Router /export [post]
func (h *Handler) HandleExport(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req Request
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body: " + err.Error()})
		}
	}
	opts := req.Apply(h.service.Defaults())

	l.Info("Triggering export", zap.String("database", opts.MetabaseDatabase), zap.Bool("dry_run", opts.DryRun))
	result, err := h.service.Run(c.UserContext(), opts)

	switch {
	case err == nil:
		return c.JSON(result)
	case reconcile.IsInvalidOption(err):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, reconcile.ErrDatabaseNotFound):
		return c.Status(fiber.StatusNotFound).JSON(result)
	case reconcile.IsCatalogUnavailable(err):
		return c.Status(fiber.StatusBadGateway).JSON(result)
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(result)
	}
}

// HandleDefaults returns the configured export options.
// @Summary Export Defaults
// @Description Returns the export options used when a request omits them.
// @Tags export
// @Produce json
// @Success 200 {object} Request
// @Router /export/defaults [get]
func (h *Handler) HandleDefaults(c *fiber.Ctx) error {
	return c.JSON(RequestFrom(h.service.Defaults()))
}
