package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/Tubbz-alt/thor/internal/api/models"
	"github.com/Tubbz-alt/thor/internal/params"
	"github.com/Tubbz-alt/thor/internal/y4m"
)

func (s *Server) registerParamsRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "resolve-params",
		Method:      http.MethodPost,
		Path:        "/api/params/resolve",
		Summary:     "Resolve Parameters",
		Description: "Parse an encoder command line, including -cf configuration files and the input file's YUV4MPEG2 header, and validate the result",
		Tags:        []string{"params"},
		Security:    withAuth(),
		Errors:      []int{400, 401, 422},
	}, func(_ context.Context, input *models.ResolveRequest) (*models.ResolveResponse, error) {
		opts := s.options.Session
		opts.Bus = s.bus
		opts.Source = "api"
		opts.SkipProbe = opts.SkipProbe || input.Body.SkipProbe

		res, err := params.NewSession(opts).Resolve(input.Body.Args)
		if err != nil {
			return nil, s.mapParamsError(err)
		}

		body := models.ResolveData{
			Params:   res.Params,
			Warnings: res.Warnings,
			Origins:  res.Origins,
			Includes: res.Includes,
			Header:   headerData(res.Header),
		}
		if body.Warnings == nil {
			body.Warnings = []string{}
		}
		if body.Includes == nil {
			body.Includes = []string{}
		}
		return &models.ResolveResponse{Body: body}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-registry",
		Method:      http.MethodGet,
		Path:        "/api/params/registry",
		Summary:     "Parameter Registry",
		Description: "List every encoder parameter with its kind, default and description",
		Tags:        []string{"params"},
		Security:    withAuth(),
		Errors:      []int{401, 500},
	}, func(_ context.Context, _ *struct{}) (*models.RegistryResponse, error) {
		reg, err := params.DefaultRegistry(new(params.Params))
		if err != nil {
			return nil, huma.Error500InternalServerError("build parameter registry", err)
		}

		entries := reg.Entries()
		data := models.RegistryData{
			Entries: make([]models.RegistryEntry, 0, len(entries)),
			Count:   len(entries),
		}
		for _, e := range entries {
			data.Entries = append(data.Entries, models.RegistryEntry{
				Name:    e.Name,
				Kind:    e.Kind().String(),
				Default: e.Default,
				Help:    e.Help,
			})
		}
		return &models.RegistryResponse{Body: data}, nil
	})
}

// mapParamsError maps session errors to HTTP errors. Parse failures are the
// caller's input being malformed; validation failures are a well-formed but
// unusable parameter set. Tokens read from a configuration file are never echoed,
// only the code and the file.
func (s *Server) mapParamsError(err error) error {
	var perr *params.Error
	if !errors.As(err, &perr) {
		s.logger.Error("Unexpected session error", "error", err)
		return huma.Error500InternalServerError("internal server error", err)
	}

	detail := &huma.ErrorDetail{
		Message:  perr.Code,
		Location: "body.args",
	}
	switch {
	case perr.File != "":
		detail.Value = perr.File
	case perr.Param != "":
		detail.Value = perr.Param
	}

	if perr.Tier == params.TierValidation {
		return huma.Error422UnprocessableEntity(perr.Redacted(), detail)
	}
	return huma.Error400BadRequest(perr.Redacted(), detail)
}

func headerData(h *y4m.Header) *models.HeaderData {
	if h == nil {
		return nil
	}
	return &models.HeaderData{
		Width:     h.Width,
		Height:    h.Height,
		FrameRate: h.FrameRate,
		AspectNum: h.AspectNum,
		AspectDen: h.AspectDen,
		Subsample: h.Subsample,
		BitDepth:  h.BitDepth,
	}
}
