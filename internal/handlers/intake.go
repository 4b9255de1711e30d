package handlers

import (
	"errors"
	"net/http"
	"time"

	"house_admin/internal/domain"
	"house_admin/internal/model"

	"github.com/gin-gonic/gin"
)

type CreateIntakeRequest struct {
	LineID           string          `json:"line_id"`
	PhoneNumber      string          `json:"phone_number"`
	RegistrationDate string          `json:"registration_date"`
	ExpirationDate   string          `json:"expiration_date"`
	Package          string          `json:"package"`
	PackagePrice     *int            `json:"package_price"`
	Email            string          `json:"email"`
	HouseGroup       string          `json:"house_group"`
	CustomerName     string          `json:"customer_name"`
	Channel          model.Channel   `json:"channel"`
	CancelledOrMoved model.Lifecycle `json:"cancelled_or_moved"`
}

type UpdateIntakeRequest struct {
	LineID           Field[string]          `json:"line_id"`
	PhoneNumber      Field[string]          `json:"phone_number"`
	RegistrationDate Field[string]          `json:"registration_date"`
	ExpirationDate   Field[string]          `json:"expiration_date"`
	Package          Field[string]          `json:"package"`
	PackagePrice     Field[int]             `json:"package_price"`
	Email            Field[string]          `json:"email"`
	HouseGroup       Field[string]          `json:"house_group"`
	CustomerName     Field[string]          `json:"customer_name"`
	Channel          Field[model.Channel]   `json:"channel"`
	CancelledOrMoved Field[model.Lifecycle] `json:"cancelled_or_moved"`
}

type IntakeResponse struct {
	ID               uint             `json:"id"`
	LineID           string           `json:"line_id"`
	PhoneNumber      string           `json:"phone_number"`
	RegistrationDate *string          `json:"registration_date"`
	ExpirationDate   *string          `json:"expiration_date"`
	Package          string           `json:"package"`
	PackagePrice     *int             `json:"package_price"`
	Email            string           `json:"email"`
	HouseGroup       string           `json:"house_group"`
	CustomerName     string           `json:"customer_name"`
	Channel          model.Channel    `json:"channel"`
	CancelledOrMoved model.Lifecycle  `json:"cancelled_or_moved"`
	SyncStatus       model.SyncStatus `json:"sync_status"`
	SyncNote         string           `json:"sync_note"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// SyncFailedResponse is sent when the intake write committed but the
// membership sync did not.
type SyncFailedResponse struct {
	Error     string         `json:"error"`
	Code      string         `json:"code"`
	Committed bool           `json:"committed"`
	Record    IntakeResponse `json:"record"`
}

func toIntakeResponse(r model.IntakeRecord) IntakeResponse {
	return IntakeResponse{
		ID:               r.ID,
		LineID:           r.LineID,
		PhoneNumber:      r.PhoneNumber,
		RegistrationDate: formatDate(r.RegistrationDate),
		ExpirationDate:   formatDate(r.ExpirationDate),
		Package:          r.Package,
		PackagePrice:     r.PackagePrice,
		Email:            r.Email,
		HouseGroup:       r.HouseGroup,
		CustomerName:     r.CustomerName,
		Channel:          r.Channel,
		CancelledOrMoved: r.CancelledOrMoved,
		SyncStatus:       r.SyncStatus,
		SyncNote:         r.SyncNote,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

func (r CreateIntakeRequest) record() (model.IntakeRecord, error) {
	registered, err := parseDate(r.RegistrationDate, "registration_date")
	if err != nil {
		return model.IntakeRecord{}, err
	}
	expires, err := parseDate(r.ExpirationDate, "expiration_date")
	if err != nil {
		return model.IntakeRecord{}, err
	}
	return model.IntakeRecord{
		LineID:           r.LineID,
		PhoneNumber:      r.PhoneNumber,
		RegistrationDate: registered,
		ExpirationDate:   expires,
		Package:          r.Package,
		PackagePrice:     r.PackagePrice,
		Email:            r.Email,
		HouseGroup:       r.HouseGroup,
		CustomerName:     r.CustomerName,
		Channel:          r.Channel,
		CancelledOrMoved: r.CancelledOrMoved,
	}, nil
}

func (r UpdateIntakeRequest) patch() (model.IntakePatch, error) {
	var (
		p   model.IntakePatch
		err error
	)
	if p.LineID, err = r.LineID.Ptr("line_id"); err != nil {
		return p, err
	}
	if p.PhoneNumber, err = r.PhoneNumber.Ptr("phone_number"); err != nil {
		return p, err
	}
	if p.RegistrationDate, err = datePatch(r.RegistrationDate, "registration_date"); err != nil {
		return p, err
	}
	if p.ExpirationDate, err = datePatch(r.ExpirationDate, "expiration_date"); err != nil {
		return p, err
	}
	if p.Package, err = r.Package.Ptr("package"); err != nil {
		return p, err
	}
	if r.PackagePrice.Set {
		var price *int
		if !r.PackagePrice.Null {
			v := r.PackagePrice.Value
			price = &v
		}
		p.PackagePrice = &price
	}
	if p.Email, err = r.Email.Ptr("email"); err != nil {
		return p, err
	}
	if p.HouseGroup, err = r.HouseGroup.Ptr("house_group"); err != nil {
		return p, err
	}
	if p.CustomerName, err = r.CustomerName.Ptr("customer_name"); err != nil {
		return p, err
	}
	if p.Channel, err = r.Channel.Ptr("channel"); err != nil {
		return p, err
	}
	if r.CancelledOrMoved.Set {
		// null clears the lifecycle flag
		v := r.CancelledOrMoved.Value
		p.CancelledOrMoved = &v
	}
	return p, nil
}

func (h *Handler) ListIntake(c *gin.Context) {
	records, err := h.Intake.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	resp := make([]IntakeResponse, 0, len(records))
	for _, r := range records {
		resp = append(resp, toIntakeResponse(r))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) GetIntake(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	record, err := h.Intake.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toIntakeResponse(*record))
}

func (h *Handler) CreateIntake(c *gin.Context) {
	var body CreateIntakeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	record, err := body.record()
	if err != nil {
		h.writeError(c, err)
		return
	}
	saved, err := h.Intake.Create(c.Request.Context(), record)
	if err != nil {
		h.writeIntakeError(c, saved, err)
		return
	}
	c.JSON(http.StatusCreated, toIntakeResponse(*saved))
}

func (h *Handler) UpdateIntake(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var body UpdateIntakeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	patch, err := body.patch()
	if err != nil {
		h.writeError(c, err)
		return
	}
	saved, err := h.Intake.Update(c.Request.Context(), id, patch)
	if err != nil {
		h.writeIntakeError(c, saved, err)
		return
	}
	c.JSON(http.StatusOK, toIntakeResponse(*saved))
}

func (h *Handler) DeleteIntake(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.Intake.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) writeIntakeError(c *gin.Context, saved *model.IntakeRecord, err error) {
	var syncErr *domain.SyncError
	if !errors.As(err, &syncErr) || saved == nil {
		h.writeError(c, err)
		return
	}
	_ = c.Error(err)
	c.JSON(http.StatusConflict, SyncFailedResponse{
		Error:     syncErr.Error(),
		Code:      codeSyncFailed,
		Committed: true,
		Record:    toIntakeResponse(*saved),
	})
}
