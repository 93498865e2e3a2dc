package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"promptrefiner/internal/domain"
)

// RecordRepo stores prompt records behind a PostgREST-style REST surface.
// One row per record; the variants live inside the record document, so every
// write is a whole-record upsert.
type RecordRepo struct {
	BaseUrl     string
	BaseHeaders []string
	Client      *http.Client
}

func (r RecordRepo) Upsert(ctx context.Context, record domain.PromptRecord) error {
	body, err := json.Marshal(record)

	if err != nil {
		return err
	}

	_, err = request[domain.PromptRecord](ctx, r.Client, reqConfig{
		Method: "POST",
		Url:    r.BaseUrl,
		Body:   body,
		Headers: append(r.BaseHeaders,
			"Content-Type:application/json",
			"Prefer:resolution=merge-duplicates,return=minimal")},
		201)

	if err != nil {
		return err
	}

	return nil
}

func (r RecordRepo) Read(ctx context.Context, id string) (*domain.PromptRecord, error) {
	records, err := request[[]domain.PromptRecord](ctx, r.Client, reqConfig{
		Method:    "GET",
		Url:       r.BaseUrl,
		UrlParams: []string{fmt.Sprintf("id=eq.%s", id), "limit=1"},
		Headers:   r.BaseHeaders},
		200)

	if err != nil {
		return nil, err
	}

	if len(*records) == 0 {
		return nil, domain.NotFoundError{Kind: "record", Id: id}
	}

	record := (*records)[0]
	return &record, nil
}

func (r RecordRepo) Delete(ctx context.Context, id string) error {
	_, err := request[domain.PromptRecord](ctx, r.Client, reqConfig{
		Method:    "DELETE",
		Url:       r.BaseUrl,
		UrlParams: []string{fmt.Sprintf("id=eq.%s", id)},
		Headers:   r.BaseHeaders},
		204)

	if err != nil {
		return err
	}

	return nil
}

func (r RecordRepo) List(ctx context.Context, ownerId string, limit int) ([]domain.PromptRecord, error) {
	records, err := request[[]domain.PromptRecord](ctx, r.Client, reqConfig{
		Method:    "GET",
		Url:       r.BaseUrl,
		UrlParams: []string{fmt.Sprintf("owner_id=eq.%s", ownerId), fmt.Sprintf("limit=%d", limit)},
		Headers:   r.BaseHeaders},
		200)

	if err != nil {
		return nil, err
	}

	return *records, nil
}
