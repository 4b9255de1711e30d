package handlers

import (
	"net/http"
	"time"

	"house_admin/internal/model"

	"github.com/gin-gonic/gin"
)

type CreateMemberRequest struct {
	HouseID        uint    `json:"house_id"`
	MemberEmail    string  `json:"member_email"`
	ExpirationDate string  `json:"expiration_date"`
	Note           *string `json:"note"`
	IsActive       *bool   `json:"is_active"`
	LineID         string  `json:"line_id"`
}

type UpdateMemberRequest struct {
	HouseID        Field[uint]   `json:"house_id"`
	MemberEmail    Field[string] `json:"member_email"`
	ExpirationDate Field[string] `json:"expiration_date"`
	Note           Field[string] `json:"note"`
	IsActive       Field[bool]   `json:"is_active"`
}

type MemberResponse struct {
	ID             uint      `json:"id"`
	HouseID        uint      `json:"house_id"`
	MemberEmail    string    `json:"member_email"`
	ExpirationDate *string   `json:"expiration_date"`
	Note           *string   `json:"note"`
	IsActive       bool      `json:"is_active"`
	LineID         string    `json:"line_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type ArchivedMemberResponse struct {
	ID               uint      `json:"id"`
	OriginalMemberID *uint     `json:"original_member_id"`
	HouseID          *uint     `json:"house_id"`
	HouseNumber      string    `json:"house_number"`
	MemberEmail      string    `json:"member_email"`
	ExpirationDate   *string   `json:"expiration_date"`
	RegistrationDate *string   `json:"registration_date"`
	Note             *string   `json:"note"`
	LineID           string    `json:"line_id"`
	ArchivedAt       time.Time `json:"archived_at"`
	ArchivedReason   string    `json:"archived_reason"`
}

type CleanupResponse struct {
	Archived int `json:"archived"`
}

func toMemberResponse(m model.Member) MemberResponse {
	return MemberResponse{
		ID:             m.ID,
		HouseID:        m.HouseID,
		MemberEmail:    m.MemberEmail,
		ExpirationDate: formatDate(m.ExpirationDate),
		Note:           m.Note,
		IsActive:       m.IsActive,
		LineID:         m.LineID,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func toMemberResponses(members []model.Member) []MemberResponse {
	resp := make([]MemberResponse, 0, len(members))
	for _, m := range members {
		resp = append(resp, toMemberResponse(m))
	}
	return resp
}

func (r CreateMemberRequest) member() (model.NewMember, error) {
	expires, err := parseDate(r.ExpirationDate, "expiration_date")
	if err != nil {
		return model.NewMember{}, err
	}
	return model.NewMember{
		HouseID:        r.HouseID,
		MemberEmail:    r.MemberEmail,
		ExpirationDate: expires,
		Note:           r.Note,
		IsActive:       r.IsActive,
		LineID:         r.LineID,
	}, nil
}

func (r UpdateMemberRequest) patch() (model.MemberPatch, error) {
	var (
		p   model.MemberPatch
		err error
	)
	if p.HouseID, err = r.HouseID.Ptr("house_id"); err != nil {
		return p, err
	}
	if p.MemberEmail, err = r.MemberEmail.Ptr("member_email"); err != nil {
		return p, err
	}
	if p.ExpirationDate, err = datePatch(r.ExpirationDate, "expiration_date"); err != nil {
		return p, err
	}
	if r.Note.Set {
		var note *string
		if !r.Note.Null {
			v := r.Note.Value
			note = &v
		}
		p.Note = &note
	}
	if p.IsActive, err = r.IsActive.Ptr("is_active"); err != nil {
		return p, err
	}
	return p, nil
}

func (h *Handler) ListMembers(c *gin.Context) {
	members, err := h.Members.ListMembers(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toMemberResponses(members))
}

func (h *Handler) ListActiveMembers(c *gin.Context) {
	members, err := h.Members.ListActiveMembers(c.Request.Context(), h.today())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toMemberResponses(members))
}

func (h *Handler) ListExpiredMembers(c *gin.Context) {
	members, err := h.Members.ListExpiredMembers(c.Request.Context(), h.today())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toMemberResponses(members))
}

func (h *Handler) ListArchivedMembers(c *gin.Context) {
	archived, err := h.Archive.ListArchivedMembers(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	resp := make([]ArchivedMemberResponse, 0, len(archived))
	for _, a := range archived {
		resp = append(resp, ArchivedMemberResponse{
			ID:               a.ID,
			OriginalMemberID: a.OriginalMemberID,
			HouseID:          a.HouseID,
			HouseNumber:      a.HouseNumber,
			MemberEmail:      a.MemberEmail,
			ExpirationDate:   formatDate(a.ExpirationDate),
			RegistrationDate: formatDate(a.RegistrationDate),
			Note:             a.Note,
			LineID:           a.LineID,
			ArchivedAt:       a.ArchivedAt,
			ArchivedReason:   a.ArchivedReason,
		})
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) AvailableHouses(c *gin.Context) {
	houses, err := h.Available.AvailableHouses(c.Request.Context())
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

// CleanupExpired archives expired members now instead of waiting for the
// roster worker's next tick.
func (h *Handler) CleanupExpired(c *gin.Context) {
	n, err := h.Cleaner.Refresh(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, CleanupResponse{Archived: n})
}

func (h *Handler) GetMember(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	member, err := h.Members.GetMember(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toMemberResponse(*member))
}

func (h *Handler) CreateMember(c *gin.Context) {
	var body CreateMemberRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	in, err := body.member()
	if err != nil {
		h.writeError(c, err)
		return
	}
	member, err := h.MemberSvc.CreateMember(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toMemberResponse(*member))
}

func (h *Handler) UpdateMember(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var body UpdateMemberRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	patch, err := body.patch()
	if err != nil {
		h.writeError(c, err)
		return
	}
	member, err := h.MemberSvc.UpdateMember(c.Request.Context(), id, patch)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toMemberResponse(*member))
}

func (h *Handler) DeleteMember(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.MemberSvc.DeleteMember(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
