package shared

import (
	"encoding/json"
	"fmt"
	"net/http"

	"hrpayroll/internal/domain/apperr"
)

// DecodeJSON reads a single JSON object from the request body into dst.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid request payload: %v", apperr.ErrInvalidInput, err)
	}
	return nil
}
