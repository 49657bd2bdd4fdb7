package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/slackbot-settings/internal/api/dto"
	"github.com/spec-kit/slackbot-settings/internal/domain"
	"github.com/spec-kit/slackbot-settings/internal/service"
	apperrors "github.com/spec-kit/slackbot-settings/pkg/util/errorutil"
)

// StaffHandler exposes the escalation roster.
type StaffHandler struct {
	staff *service.StaffService
}

// NewStaffHandler constructs handler.
func NewStaffHandler(staffService *service.StaffService) *StaffHandler {
	return &StaffHandler{staff: staffService}
}

// List handles GET /api/staff.
func (h *StaffHandler) List(c *fiber.Ctx) error {
	members, err := h.staff.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(staffResponses(members))
}

// Replace handles POST /api/staff. The body is the complete roster.
func (h *StaffHandler) Replace(c *fiber.Ctx) error {
	var req []dto.StaffMember
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload: expected a JSON array of staff members", nil)
	}
	if err := validateStruct(dto.ReplaceRosterRequest{Members: req}); err != nil {
		return err
	}

	members := make([]domain.StaffMember, 0, len(req))
	for _, m := range req {
		members = append(members, domain.StaffMember{
			ID:        m.ID,
			Name:      m.Name,
			AccountID: m.AccountID,
			Tasks:     m.Tasks,
		})
	}

	stored, err := h.staff.Replace(c.UserContext(), members)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(staffResponses(stored))
}

// Escalation handles GET /api/staff/escalation?category=.
func (h *StaffHandler) Escalation(c *fiber.Ctx) error {
	category := strings.TrimSpace(c.Query("category"))
	if category == "" {
		return apperrors.NewValidationError("category required", nil)
	}
	members, err := h.staff.Escalation(c.UserContext(), category)
	if err != nil {
		return err
	}
	return c.JSON(staffResponses(members))
}

func staffResponses(members []domain.StaffMember) []dto.StaffMember {
	resp := make([]dto.StaffMember, 0, len(members))
	for _, m := range members {
		resp = append(resp, dto.StaffMember{
			ID:        m.ID,
			Name:      m.Name,
			AccountID: m.AccountID,
			Tasks:     m.Tasks,
		})
	}
	return resp
}
