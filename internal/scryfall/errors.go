package scryfall

import "fmt"

// NotFoundError indicates Scryfall could not match the request to any card.
type NotFoundError struct {
	Query string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("scryfall: no match for %s", e.Query)
}

// APIError is a structured error payload from the Scryfall API.
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Details string `json:"details"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("scryfall: %s (%d %s)", e.Details, e.Status, e.Code)
}
