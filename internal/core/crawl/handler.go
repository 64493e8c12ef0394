package crawl

import (
	"github.com/gofiber/fiber/v2"

	"trendhire/internal/core/job"
	"trendhire/internal/model"
)

type Handler struct {
	job   *job.Service
	crawl *Service
}

func NewHandler(jobSvc *job.Service, crawlSvc *Service) *Handler {
	return &Handler{job: jobSvc, crawl: crawlSvc}
}

type createResponse struct {
	Success  bool   `json:"success"`
	JobID    string `json:"job_id,omitempty"`
	TaskName string `json:"task_name,omitempty"`
	Error    string `json:"error,omitempty"`
}

type statusResponse struct {
	Success bool              `json:"success"`
	JobID   string            `json:"job_id"`
	Status  job.Status        `json:"status"`
	Stats   *model.Statistics `json:"statistics,omitempty"`
	Report  *model.Report     `json:"report,omitempty"`
	Error   string            `json:"error,omitempty"`
}

func (h *Handler) HandleCreate(c *fiber.Ctx) error {
	var br model.BatchRequest
	if err := c.BodyParser(&br); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(createResponse{Error: "invalid body"})
	}
	id, err := h.crawl.Enqueue(c.Context(), br)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(createResponse{Error: err.Error()})
	}
	return c.JSON(createResponse{Success: true, JobID: id, TaskName: br.TaskName})
}

func (h *Handler) HandleGet(c *fiber.Ctx) error {
	id := c.Params("jobId")
	j, err := h.job.GetStatus(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(statusResponse{JobID: id, Error: "not_found"})
	}
	resp := statusResponse{Success: true, JobID: id, Status: j.Status, Error: j.Error}
	if j.Report != nil {
		st := j.Report.Stats()
		resp.Stats = &st
		resp.Report = j.Report
	}
	return c.JSON(resp)
}
