package handlers

import (
	"net/http"
	"strings"
	"time"

	"house_admin/internal/domain"
	"house_admin/internal/model"

	"github.com/gin-gonic/gin"
)

type CreateHouseRequest struct {
	HouseNumber      string            `json:"house_number" binding:"required"`
	AdminEmail       string            `json:"admin_email"`
	RegistrationDate string            `json:"registration_date"`
	Status           model.HouseStatus `json:"status"`
	Note             string            `json:"note"`
}

type UpdateHouseRequest struct {
	HouseNumber      Field[string]            `json:"house_number"`
	AdminEmail       Field[string]            `json:"admin_email"`
	RegistrationDate Field[string]            `json:"registration_date"`
	Status           Field[model.HouseStatus] `json:"status"`
	Note             Field[string]            `json:"note"`
}

type HouseResponse struct {
	ID               uint              `json:"id"`
	HouseNumber      string            `json:"house_number"`
	AdminEmail       string            `json:"admin_email"`
	RegistrationDate *string           `json:"registration_date"`
	Status           model.HouseStatus `json:"status"`
	Note             string            `json:"note"`
	MemberCount      *int64            `json:"member_count,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

func toHouseResponse(h model.House) HouseResponse {
	return HouseResponse{
		ID:               h.ID,
		HouseNumber:      h.HouseNumber,
		AdminEmail:       h.AdminEmail,
		RegistrationDate: formatDate(h.RegistrationDate),
		Status:           h.Status,
		Note:             h.Note,
		CreatedAt:        h.CreatedAt,
		UpdatedAt:        h.UpdatedAt,
	}
}

func toHouseCountResponse(h model.HouseWithCount) HouseResponse {
	resp := toHouseResponse(h.House)
	n := h.MemberCount
	resp.MemberCount = &n
	return resp
}

func (r UpdateHouseRequest) patch() (model.HousePatch, error) {
	var (
		p   model.HousePatch
		err error
	)
	if p.HouseNumber, err = r.HouseNumber.Ptr("house_number"); err != nil {
		return p, err
	}
	if p.HouseNumber != nil {
		trimmed := strings.TrimSpace(*p.HouseNumber)
		if trimmed == "" {
			return p, domain.Invalidf("house_number must not be empty")
		}
		p.HouseNumber = &trimmed
	}
	if p.AdminEmail, err = r.AdminEmail.Ptr("admin_email"); err != nil {
		return p, err
	}
	if p.RegistrationDate, err = datePatch(r.RegistrationDate, "registration_date"); err != nil {
		return p, err
	}
	if p.Status, err = r.Status.Ptr("status"); err != nil {
		return p, err
	}
	if p.Status != nil && !p.Status.Valid() {
		return p, domain.Invalidf("unknown house status %q", *p.Status)
	}
	if p.Note, err = r.Note.Ptr("note"); err != nil {
		return p, err
	}
	return p, nil
}

func (h *Handler) ListHouses(c *gin.Context) {
	houses, err := h.Houses.ListHouses(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	resp := make([]HouseResponse, 0, len(houses))
	for _, house := range houses {
		resp = append(resp, toHouseResponse(house))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) ListHousesWithCount(c *gin.Context) {
	houses, err := h.Houses.ListHousesWithCount(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	resp := make([]HouseResponse, 0, len(houses))
	for _, house := range houses {
		resp = append(resp, toHouseCountResponse(house))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) GetHouse(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	house, err := h.Houses.GetHouse(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toHouseResponse(*house))
}

func (h *Handler) GetHouseByNumber(c *gin.Context) {
	number := strings.TrimSpace(c.Param("number"))
	house, err := h.Houses.FindHouseByNumber(c.Request.Context(), number)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if house == nil {
		h.writeError(c, domain.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, toHouseResponse(*house))
}

func (h *Handler) CreateHouse(c *gin.Context) {
	var body CreateHouseRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	number := strings.TrimSpace(body.HouseNumber)
	if number == "" {
		badRequest(c, "house_number is required")
		return
	}
	if body.Status != "" && !body.Status.Valid() {
		h.writeError(c, domain.Invalidf("unknown house status %q", body.Status))
		return
	}
	registered, err := parseDate(body.RegistrationDate, "registration_date")
	if err != nil {
		h.writeError(c, err)
		return
	}

	house := model.House{
		HouseNumber:      number,
		AdminEmail:       strings.TrimSpace(body.AdminEmail),
		RegistrationDate: registered,
		Status:           body.Status,
		Note:             body.Note,
	}
	if err := h.Houses.InsertHouse(c.Request.Context(), &house); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toHouseResponse(house))
}

func (h *Handler) UpdateHouse(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var body UpdateHouseRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	patch, err := body.patch()
	if err != nil {
		h.writeError(c, err)
		return
	}
	house, err := h.Houses.UpdateHouse(c.Request.Context(), id, patch)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toHouseResponse(*house))
}

func (h *Handler) DeleteHouse(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.Houses.DeleteHouse(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListHouseMembers(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	members, err := h.Members.ListMembersByHouse(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toMemberResponses(members))
}
