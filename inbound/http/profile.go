package http

import (
	"context"
	"encoding/json"
	"errors"
	"event-ticket/common"
	"event-ticket/common/auth"
	"event-ticket/common/constant"
	"event-ticket/common/convert"
	"event-ticket/common/errs"
	"event-ticket/common/otel"
	"event-ticket/model"
	"event-ticket/outbound/sqlgen"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"log/slog"
	"net/http"
	"strings"
)

type ProfileHttp struct {
	Querier  *sqlgen.Queries
	Validate *validator.Validate
}

func RegisterProfileHttp(
	mux *http.ServeMux,
	authn Authenticator,
	querier *sqlgen.Queries,
	validate *validator.Validate,
) *ProfileHttp {
	in := &ProfileHttp{
		Querier:  querier,
		Validate: validate,
	}

	mux.Handle("GET /api/profile", authn.Require()(in.get))
	mux.Handle("PUT /api/profile", authn.Require()(in.update))

	return in
}

func (in ProfileHttp) get(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOf(w, r)
	if !ok {
		return
	}

	ctx, span := otel.Tracer.Start(r.Context(), "ProfileHttp.get")
	defer span.End()

	traceIdAttr := common.ExtractTraceIDFromCtx(ctx)

	registrant, err := in.Querier.FindRegistrantById(ctx, identity.RegistrantId)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		slog.ErrorContext(ctx, "failed to find registrant", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		writeErrorResponse(w, err)
		return
	}

	if errors.Is(err, pgx.ErrNoRows) {
		writeJSONResponse(w, http.StatusOK, model.ProfileResponse{
			Id:          identity.RegistrantId,
			DisplayName: identity.Name,
			Email:       identity.Email,
		})
		return
	}

	writeJSONResponse(w, http.StatusOK, convert.Profile(registrant))
}

func (in ProfileHttp) update(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOf(w, r)
	if !ok {
		return
	}

	var req model.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, errInvalidRequest)
		return
	}

	if err := in.Validate.Struct(req); err != nil {
		writeErrorResponse(w, err)
		return
	}

	ctx, span := otel.Tracer.Start(r.Context(), "ProfileHttp.update")
	defer span.End()

	traceIdAttr := common.ExtractTraceIDFromCtx(ctx)
	slog.InfoContext(ctx, "update profile receive request", slog.Any(constant.LogFieldPayload, req), traceIdAttr)

	registrant, err := in.Querier.UpsertRegistrant(ctx, sqlgen.UpsertRegistrantParams{
		ID:          identity.RegistrantId,
		DisplayName: strings.TrimSpace(req.DisplayName),
		Email:       req.Email,
		Phone:       req.Phone,
		Institution: strings.TrimSpace(req.Institution),
		Department:  strings.TrimSpace(req.Department),
		Year:        strings.TrimSpace(req.Year),
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to upsert registrant", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		writeErrorResponse(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, convert.Profile(registrant))
}

// ResolveAcademic fills fields missing from supplied with the stored profile. Institution,
// department and year are all required once resolved.
func ResolveAcademic(stored model.AcademicFields, supplied *model.AcademicFields) (model.AcademicFields, error) {
	resolved := stored.Merge(supplied)

	if missing := resolved.Missing(); len(missing) > 0 {
		return model.AcademicFields{}, &errs.HttpError{
			Code:    http.StatusBadRequest,
			Message: "Validation failed",
			Data:    missing,
		}
	}

	return resolved, nil
}

// resolveRegistrant resolves academic fields against the stored profile and persists the result,
// so the registrant row referenced by registrations and orders always exists.
func resolveRegistrant(
	ctx context.Context,
	querier *sqlgen.Queries,
	identity auth.Identity,
	supplied *model.AcademicFields,
	traceIdAttr slog.Attr,
) (sqlgen.Registrant, error) {
	stored, err := querier.FindRegistrantById(ctx, identity.RegistrantId)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		slog.ErrorContext(ctx, "failed to find registrant", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		return sqlgen.Registrant{}, err
	}

	if errors.Is(err, pgx.ErrNoRows) {
		stored = sqlgen.Registrant{ID: identity.RegistrantId, DisplayName: identity.Name, Email: identity.Email}
	}

	academic, err := ResolveAcademic(model.AcademicFields{
		Institution: stored.Institution,
		Department:  stored.Department,
		Year:        stored.Year,
	}, supplied)
	if err != nil {
		slog.DebugContext(ctx, "academic fields incomplete", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		return sqlgen.Registrant{}, err
	}

	if stored.Institution == academic.Institution && stored.Department == academic.Department && stored.Year == academic.Year {
		return stored, nil
	}

	registrant, err := querier.UpsertRegistrant(ctx, sqlgen.UpsertRegistrantParams{
		ID:          identity.RegistrantId,
		DisplayName: stored.DisplayName,
		Email:       stored.Email,
		Phone:       stored.Phone,
		Institution: academic.Institution,
		Department:  academic.Department,
		Year:        academic.Year,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to upsert registrant", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		return sqlgen.Registrant{}, err
	}

	return registrant, nil
}
