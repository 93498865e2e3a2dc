package persistence

import (
	"context"
	"fmt"
	"net/http"

	"promptrefiner/internal/domain"
)

// AuthRepo verifies bearer tokens against the auth service's user endpoint.
// Identity lifecycle (signup, login, reset) is the auth service's business;
// this side only checks that a token resolves to a subject.
type AuthRepo struct {
	BaseUrl     string
	BaseHeaders []string
	Client      *http.Client
}

type authUser struct {
	Id string `json:"id"`
}

func (r AuthRepo) Verify(ctx context.Context, token string) (string, error) {
	user, err := request[authUser](ctx, r.Client, reqConfig{
		Method:  "GET",
		Url:     fmt.Sprintf("%s/user", r.BaseUrl),
		Headers: append(r.BaseHeaders, fmt.Sprintf("Authorization: Bearer %s", token))},
		200)

	if err != nil {
		return "", domain.ValidationError{Msg: "invalid or expired token"}
	}

	if user.Id == "" {
		return "", domain.ValidationError{Msg: "token resolves to no subject"}
	}

	return user.Id, nil
}
