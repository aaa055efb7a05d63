// Package handlers agrupa os handlers HTTP da API.
package handlers

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"

	"github.com/gorilla/schema"
)

const maxBodyBytes = 64 << 10

var formDecoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}()

// decodeRequest aceita tanto JSON quanto formulários (urlencoded ou multipart).
func decodeRequest[T any](r *http.Request) (T, error) {
	var data T
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
			return data, fmt.Errorf("unable to parse request body: %w", err)
		}
		return data, nil
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
			return data, fmt.Errorf("unable to parse multipart form: %w", err)
		}
	default:
		if err := r.ParseForm(); err != nil {
			return data, fmt.Errorf("unable to parse form: %w", err)
		}
	}

	if err := formDecoder.Decode(&data, r.PostForm); err != nil {
		return data, fmt.Errorf("unable to decode form: %w", err)
	}
	return data, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
