package rest

import (
	"bytes"
	"encoding/json"
)

// StartResponse is returned by /api/challenge/start
type StartResponse struct {
	UUID       string `json:"uuid"`
	Piece      string `json:"piece"`      // data:image/jpeg;base64,...
	Background string `json:"background"` // data:image/jpeg;base64,...
	PieceY     int    `json:"pieceY"`
	PieceSize  int    `json:"pieceSize"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
}

// VerifyRequest is the JSON body for /api/challenge/verify
type VerifyRequest struct {
	UUID     string   `json:"uuid"`
	Position Position `json:"position"`
}

// VerifyResponse is returned by /api/challenge/verify
type VerifyResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// StatusResponse is returned by /api/challenge/{id}/status
type StatusResponse struct {
	UUID     string `json:"uuid"`
	Verified bool   `json:"verified"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Position is the slider value. Widgets send it either as a JSON number or
// as a string; both are kept verbatim for the verifier to parse.
type Position string

func (p *Position) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = Position(s)
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*p = ""
		return nil
	}
	*p = Position(data)
	return nil
}
