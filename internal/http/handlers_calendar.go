package httpx

import (
	"net/http"
	"strconv"

	apperrors "github.com/ltm/adventcal/internal/errors"
	"github.com/ltm/adventcal/internal/service"
)

// CalendarHandlers serves the calendar page and day fragments. All routes
// sit behind the auth gate; handlers operate on the effective identity, so
// impersonation is transparent here.
type CalendarHandlers struct {
	Svc      *service.CalendarService
	Renderer *TemplateRenderer
}

// Home renders the calendar page.
// GET /.
func (h *CalendarHandlers) Home(w http.ResponseWriter, r *http.Request) error {
	identity, ok := IdentityFrom(r.Context())
	if !ok {
		return apperrors.Forbidden("calendar without identity")
	}

	effective := identity.Effective()
	days, err := h.Svc.Days(r.Context(), effective.ID)
	if err != nil {
		return err
	}

	data := CalendarPageData{
		Email:         identity.User.Email,
		IsAdmin:       identity.User.IsAdmin,
		Impersonating: identity.Impersonating(),
		ActingEmail:   effective.Email,
		Days:          days,
		CSRFToken:     GetCSRFToken(r),
	}
	if WantsPartial(r) {
		return h.Renderer.Render(w, "calendar-content", data)
	}
	return h.Renderer.Render(w, "layout", data)
}

// OpenDay marks a day opened for the effective user and returns its message
// as a fragment.
// POST /days/{day}/open.
func (h *CalendarHandlers) OpenDay(w http.ResponseWriter, r *http.Request) error {
	identity, ok := IdentityFrom(r.Context())
	if !ok {
		return apperrors.Forbidden("calendar without identity")
	}
	day, err := dayParam(r)
	if err != nil {
		return err
	}

	msg, err := h.Svc.Open(r.Context(), identity.Effective().ID, day)
	if err != nil {
		return err
	}
	return h.Renderer.Render(w, "day-fragment", DayFragmentData{Day: msg.Day, Body: msg.Body})
}

// Day returns the message fragment for an already-opened day.
// GET /days/{day}.
func (h *CalendarHandlers) Day(w http.ResponseWriter, r *http.Request) error {
	identity, ok := IdentityFrom(r.Context())
	if !ok {
		return apperrors.Forbidden("calendar without identity")
	}
	day, err := dayParam(r)
	if err != nil {
		return err
	}

	msg, err := h.Svc.Message(r.Context(), identity.Effective().ID, day)
	if err != nil {
		return err
	}
	return h.Renderer.Render(w, "day-fragment", DayFragmentData{Day: msg.Day, Body: msg.Body})
}

// dayParam extracts the {day} path value. Range validation lives in the
// calendar service; this only rejects non-numeric paths.
func dayParam(r *http.Request) (int, error) {
	day, err := strconv.Atoi(r.PathValue("day"))
	if err != nil {
		return 0, apperrors.Display("That calendar day does not exist.")
	}
	return day, nil
}
