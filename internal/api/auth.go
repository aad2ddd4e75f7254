package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	apperrors "agriwise-client/internal/common/errors"
	"agriwise-client/internal/common/validation"
	"agriwise-client/internal/models"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login exchanges a username and password for a credential.
func (c *Client) Login(ctx context.Context, username, password string) (*models.Credential, error) {
	var missing []apperrors.FieldError
	if strings.TrimSpace(username) == "" {
		missing = append(missing, apperrors.FieldError{Field: "username", Message: "is required", Code: "REQUIRED_FIELD_MISSING"})
	}
	if password == "" {
		missing = append(missing, apperrors.FieldError{Field: "password", Message: "is required", Code: "REQUIRED_FIELD_MISSING"})
	}
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError(missing)
	}

	var out struct {
		Token    string `json:"token"`
		UserID   int    `json:"user_id"`
		Username string `json:"username"`
	}
	_, err := c.do(ctx, call{
		op:     OpLogin,
		method: http.MethodPost,
		path:   pathLogin,
		body:   loginRequest{Username: strings.TrimSpace(username), Password: password},
		schema: validation.SchemaLogin,
		out:    &out,
	})
	if err != nil {
		return nil, err
	}

	name := out.Username
	if name == "" {
		name = strings.TrimSpace(username)
	}
	return &models.Credential{
		Token:    out.Token,
		Username: name,
		UserID:   out.UserID,
		IssuedAt: time.Now().UTC(),
	}, nil
}
