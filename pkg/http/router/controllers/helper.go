package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/lintang-b-s/Tollwise/pkg/util"
	"go.uber.org/zap"
)

type envelope map[string]interface{}

type baseAPI struct {
	log *zap.Logger
}

func (api *baseAPI) writeJSON(w http.ResponseWriter, status int, data envelope, headers http.Header) error {
	js, err := json.Marshal(data)
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func (api *baseAPI) errorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	resp := errorResponse{}
	resp.Error.Code = http.StatusText(status)
	resp.Error.Message = message

	if err := api.writeJSON(w, status, envelope{"error": resp.Error}, nil); err != nil {
		api.log.Error("write error response", zap.Error(err), zap.String("path", r.URL.Path))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (api *baseAPI) ServerErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	api.log.Error("internal server error", zap.Error(err), zap.String("method", r.Method),
		zap.String("path", r.URL.Path))
	api.errorResponse(w, r, http.StatusInternalServerError, util.MessageInternalServerError)
}

func (api *baseAPI) BadRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	api.errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func (api *baseAPI) NotFoundResponse(w http.ResponseWriter, r *http.Request, message string) {
	api.errorResponse(w, r, http.StatusNotFound, message)
}

func (api *baseAPI) BadGatewayResponse(w http.ResponseWriter, r *http.Request, err error) {
	api.log.Error("upstream failure", zap.Error(err), zap.String("path", r.URL.Path))
	api.errorResponse(w, r, http.StatusBadGateway, "routing service unavailable")
}

// getStatusCode maps the code attached by util.WrapErrorf to an HTTP error response.
func (api *baseAPI) getStatusCode(w http.ResponseWriter, r *http.Request, err error) {
	var ierr *util.Error
	message := err.Error()
	if errors.As(err, &ierr) {
		message = ierr.Message()
	}

	switch util.ErrorCode(err) {
	case util.ErrBadParamInput:
		api.BadRequestResponse(w, r, errors.New(message))
	case util.ErrNotFound:
		api.NotFoundResponse(w, r, message)
	case util.ErrBadGateway:
		api.BadGatewayResponse(w, r, err)
	default:
		api.ServerErrorResponse(w, r, err)
	}
}

var (
	validate = validator.New()
	trans    ut.Translator
)

func init() {
	english := en.New()
	uni := ut.New(english, english)
	trans, _ = uni.GetTranslator("en")
	_ = enTranslations.RegisterDefaultTranslations(validate, trans)
}

func translateError(err error, trans ut.Translator) (errs []error) {
	if err == nil {
		return nil
	}
	var validatorErrs validator.ValidationErrors
	if !errors.As(err, &validatorErrs) {
		return []error{err}
	}
	for _, e := range validatorErrs {
		errs = append(errs, errors.New(e.Translate(trans)))
	}
	return errs
}

// validateStruct returns nil or a single error listing every failed field.
func validateStruct(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		vv := translateError(err, trans)
		vvString := []string{}
		for _, v := range vv {
			vvString = append(vvString, v.Error())
		}
		return fmt.Errorf("validation error: %v", vvString)
	}
	return nil
}

func parseFloatParam(query map[string][]string, name string) (float64, error) {
	raw := strings.TrimSpace(first(query[name]))
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s is required and must be a valid float", name)
	}
	return v, nil
}

// parseBoolParam reads name, treating anything but an explicit "false" or "0" as true.
func parseBoolParam(query map[string][]string, name string, def bool) bool {
	raw := strings.ToLower(strings.TrimSpace(first(query[name])))
	switch raw {
	case "":
		return def
	case "false", "0", "no":
		return false
	default:
		return true
	}
}

func parseTimeParam(query map[string][]string, name string) (time.Time, error) {
	raw := strings.TrimSpace(first(query[name]))
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be an RFC3339 timestamp", name)
	}
	return t, nil
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
