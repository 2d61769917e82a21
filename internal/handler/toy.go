package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"reflect"

	"incywincy-api/internal/model"
	"incywincy-api/internal/query"
	"incywincy-api/internal/repository"
	"incywincy-api/internal/service"
	"incywincy-api/pkg/apierror"
	"incywincy-api/pkg/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// LivenessMessage is the body of GET /.
const LivenessMessage = "Incy Wincy Cars is running..."

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// ToyHandler handles toy catalog HTTP requests.
type ToyHandler struct {
	toyService *service.ToyService
}

// NewToyHandler creates a new toy handler.
func NewToyHandler(toyService *service.ToyService) *ToyHandler {
	return &ToyHandler{
		toyService: toyService,
	}
}

// Root handles GET /
func (h *ToyHandler) Root(w http.ResponseWriter, r *http.Request) {
	response.Text(w, http.StatusOK, LivenessMessage)
}

// AllToys handles GET /all_toys
func (h *ToyHandler) AllToys(w http.ResponseWriter, r *http.Request) {
	toys, err := h.toyService.AllToys(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, toys)
}

// SearchToys handles GET /all_toys/{searchText}
func (h *ToyHandler) SearchToys(w http.ResponseWriter, r *http.Request) {
	toys, err := h.toyService.Search(r.Context(), pathParam(r, "searchText"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, toys)
}

// ViewToy handles GET /view_toy/{id}
func (h *ToyHandler) ViewToy(w http.ResponseWriter, r *http.Request) {
	toy, err := h.toyService.View(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, toy)
}

// EditForm handles GET /update_toy/{id}
func (h *ToyHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	toy, err := h.toyService.EditForm(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, toy)
}

// UpdateToy handles PATCH /update_toy/{id}
func (h *ToyHandler) UpdateToy(w http.ResponseWriter, r *http.Request) {
	var body model.ToyUpdate
	if err := decodeBody(w, r, &body); err != nil {
		h.fail(w, r, err)
		return
	}

	res, err := h.toyService.Update(r.Context(), chi.URLParam(r, "id"), body)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, res)
}

// MyToys handles GET /my_toys?email=&sort=
func (h *ToyHandler) MyToys(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	toys, err := h.toyService.SellerToys(r.Context(), q.Get("email"), q.Get("sort"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, toys)
}

// DeleteToy handles DELETE /my_toys/{id}
func (h *ToyHandler) DeleteToy(w http.ResponseWriter, r *http.Request) {
	res, err := h.toyService.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, res)
}

// AddToy handles POST /add_toy
func (h *ToyHandler) AddToy(w http.ResponseWriter, r *http.Request) {
	var body model.NewToy
	if err := decodeBody(w, r, &body); err != nil {
		h.fail(w, r, err)
		return
	}

	res, err := h.toyService.Add(r.Context(), body)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Created(w, res)
}

// SubCategory handles GET /{sub_category}
func (h *ToyHandler) SubCategory(w http.ResponseWriter, r *http.Request) {
	toys, err := h.toyService.SubCategory(r.Context(), pathParam(r, "sub_category"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, toys)
}

func (h *ToyHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := toAPIError(err)
	if apiErr.StatusCode >= http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Int("status", apiErr.StatusCode).Msg("request failed")
	}
	response.Error(w, apiErr)
}

// toAPIError maps domain failures to HTTP errors.
func toAPIError(err error) *apierror.Error {
	var apiErr *apierror.Error
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, query.ErrInvalidID),
		errors.Is(err, query.ErrInvalidSort),
		errors.Is(err, query.ErrEmptyPatch):
		return apierror.BadRequest(err.Error())
	case errors.Is(err, repository.ErrUnavailable):
		return apierror.ServiceUnavailable("toy store is unavailable")
	default:
		return apierror.InternalError("")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apierror.BadRequest("request body too large")
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return apierror.ValidationError("request validation failed", apierror.FieldError{
				Field:   typeErr.Field,
				Message: "must be " + kindOf(typeErr.Type),
			})
		}
		return apierror.BadRequest("invalid JSON body")
	}
	return nil
}

func kindOf(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "an integer"
	case reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.String:
		return "a string"
	default:
		return "a " + t.Kind().String()
	}
}

// pathParam returns a decoded path parameter. chi matches against RawPath
// when the request path contains escaped characters.
func pathParam(r *http.Request, name string) string {
	v := chi.URLParam(r, name)
	if r.URL.RawPath == "" {
		return v
	}
	if decoded, err := url.PathUnescape(v); err == nil {
		return decoded
	}
	return v
}
