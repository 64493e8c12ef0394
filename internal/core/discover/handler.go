package discover

import (
	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler { return &Handler{service: service} }

func (h *Handler) HandleGet(c *fiber.Ctx) error {
	rawURL := c.Query("url")
	if rawURL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "url is required"})
	}
	res, err := h.service.MapURL(Request{
		URL:               rawURL,
		Depth:             c.QueryInt("depth", 1),
		LinkLimit:         c.QueryInt("limit", 100),
		IncludeSubdomains: c.QueryBool("include_subdomains", false),
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error()})
	}
	return c.JSON(fiber.Map{"success": true, "url": rawURL, "discovered": len(res.Links), "links": res.Links})
}
