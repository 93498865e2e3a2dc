package persistence

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"promptrefiner/internal/app"
)

type reqConfig struct {
	Method    string
	Url       string
	UrlParams []string
	Headers   []string
	Body      []byte
}

func request[T any](ctx context.Context, client *http.Client, config reqConfig, expectedResCode int) (*T, error) {
	url := config.Url
	if len(config.UrlParams) > 0 {
		url = fmt.Sprintf("%s?%s", url, strings.Join(config.UrlParams, "&"))
	}

	req, err := http.NewRequestWithContext(ctx, config.Method, url, bytes.NewBuffer(config.Body))

	if err != nil {
		return nil, err
	}

	for i := 0; i < len(config.Headers); i++ {
		headerKV := strings.SplitN(config.Headers[i], ":", 2)
		req.Header.Add(headerKV[0], strings.TrimSpace(headerKV[1]))
	}

	resp, err := client.Do(req)

	if err != nil {
		return nil, err
	} else if resp.StatusCode != expectedResCode {
		return nil, fmt.Errorf("unexpected response status code %d", resp.StatusCode)
	}

	body, err := app.Read(resp.Body)

	if err != nil {
		// 201 with Prefer return=minimal and 204 carry no body.
		if errors.Is(err, app.ErrNoContent) {
			return new(T), nil
		}
		return nil, err
	}

	var t *T
	t, err = app.ReadJSON[T](body)

	if err != nil {
		return nil, err
	}

	return t, nil
}
