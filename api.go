package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"loginprobe/internal/attempt"
	"loginprobe/internal/endpoint"
	"loginprobe/internal/tokenstore"

	"github.com/danielgtaylor/huma/v2"
)

type endpointsBody struct {
	Selected  string              `json:"selected"`
	Endpoints []endpoint.Endpoint `json:"endpoints"`
}

type endpointsOutput struct {
	Body endpointsBody
}

type selectEndpointInput struct {
	Body struct {
		Endpoint string `json:"endpoint" minLength:"1" doc:"Base URL from the endpoint list"`
	}
}

type submitInput struct {
	Body struct {
		Email    string `json:"email" minLength:"1" doc:"Login email"`
		Password string `json:"password" minLength:"1" doc:"Login password"`
	}
}

type submitOutput struct {
	Body struct {
		AttemptID string `json:"attemptId"`
		Endpoint  string `json:"endpoint"`
		LoginURL  string `json:"loginUrl"`
	}
}

type stateOutput struct {
	Body attempt.State
}

type tokenOutput struct {
	Body struct {
		Key     string `json:"key"`
		Present bool   `json:"present"`
		tokenstore.TokenInfo
	}
}

func registerAPI(api huma.API, a *app) {
	group := huma.NewGroup(api, "/api")

	huma.Get(group, "/endpoints", func(ctx context.Context, _ *struct{}) (*endpointsOutput, error) {
		return a.endpointsResponse(a.sessions.SelectedEndpoint(ctx)), nil
	})

	huma.Put(group, "/endpoint", func(ctx context.Context, in *selectEndpointInput) (*endpointsOutput, error) {
		selected, err := a.sessions.SelectEndpoint(ctx, in.Body.Endpoint)
		if errors.Is(err, endpoint.ErrUnknownEndpoint) {
			return nil, huma.Error422UnprocessableEntity("unknown endpoint " + in.Body.Endpoint)
		}
		if err != nil {
			return nil, err
		}
		log.Printf("endpoint selected: endpoint=%s", selected.Value)
		return a.endpointsResponse(selected), nil
	})

	huma.Post(group, "/attempts", func(ctx context.Context, in *submitInput) (*submitOutput, error) {
		ep := a.sessions.SelectedEndpoint(ctx)
		started, err := a.attempts.Submit(ctx, attempt.Credentials{
			Email:    in.Body.Email,
			Password: in.Body.Password,
		}, ep)
		if errors.Is(err, attempt.ErrAttemptInFlight) {
			return nil, huma.Error409Conflict("a login attempt is already in flight")
		}
		if err != nil {
			return nil, err
		}

		out := &submitOutput{}
		out.Body.AttemptID = started.ID()
		out.Body.Endpoint = ep.Value
		out.Body.LoginURL = ep.LoginURL()
		return out, nil
	}, func(op *huma.Operation) {
		op.DefaultStatus = http.StatusAccepted
	})

	huma.Get(group, "/attempt", func(_ context.Context, _ *struct{}) (*stateOutput, error) {
		return &stateOutput{Body: a.store.Snapshot()}, nil
	})

	huma.Get(group, "/token", func(ctx context.Context, _ *struct{}) (*tokenOutput, error) {
		token, ok, err := a.tokens.Get(ctx, a.tokenKey)
		if err != nil {
			log.Printf("token lookup failed: key=%s err=%v", a.tokenKey, err)
			return nil, huma.Error503ServiceUnavailable("token store unavailable")
		}
		out := &tokenOutput{}
		out.Body.Key = a.tokenKey
		out.Body.Present = ok
		if ok {
			out.Body.TokenInfo = tokenstore.Inspect(token, time.Now())
		}
		return out, nil
	})
}

func (a *app) endpointsResponse(selected endpoint.Endpoint) *endpointsOutput {
	return &endpointsOutput{Body: endpointsBody{
		Selected:  selected.Value,
		Endpoints: a.catalog.All(),
	}}
}
