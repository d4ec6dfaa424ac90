package apiclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Page is a normalized list response.
type Page[T any] struct {
	Items      []T
	Count      int
	Next       string
	Previous   string
	TotalPages int
}

type envelope struct {
	Count      *int            `json:"count"`
	Next       *string         `json:"next"`
	Previous   *string         `json:"previous"`
	TotalPages int             `json:"total_pages"`
	Results    json.RawMessage `json:"results"`
}

// DecodeList accepts either a bare JSON array or a paginated
// {count, next, previous, results} object.
// Without total_pages, TotalPages is ceil(count / len(results)), and at least 1.
func DecodeList[T any](body []byte) (Page[T], error) {
	var page Page[T]

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return page, errors.New("decode list: empty body")
	}

	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &page.Items); err != nil {
			return page, fmt.Errorf("decode list: %w", err)
		}
		page.Count = len(page.Items)
	case '{':
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return page, fmt.Errorf("decode list: %w", err)
		}
		if env.Results == nil {
			return page, errors.New("decode list: object without results")
		}
		if err := json.Unmarshal(env.Results, &page.Items); err != nil {
			return page, fmt.Errorf("decode list results: %w", err)
		}
		page.Count = len(page.Items)
		if env.Count != nil {
			page.Count = *env.Count
		}
		if env.Next != nil {
			page.Next = *env.Next
		}
		if env.Previous != nil {
			page.Previous = *env.Previous
		}
		page.TotalPages = env.TotalPages
	default:
		return page, errors.New("decode list: unexpected shape")
	}

	if page.Items == nil {
		page.Items = []T{}
	}
	if page.TotalPages <= 0 {
		page.TotalPages = 1
		if n := len(page.Items); n > 0 && page.Count > n {
			page.TotalPages = (page.Count + n - 1) / n
		}
	}
	return page, nil
}
