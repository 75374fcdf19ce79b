package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPDirectory habla con la Admin API REST del directorio gestionado
// (estilo GoTrue): POST /admin/users para aprovisionar con la service
// role key y POST /token?grant_type=password para autenticar.
type HTTPDirectory struct {
	BaseURL    string
	ServiceKey string

	http *http.Client
}

// NewHTTPDirectory crea el cliente. serviceKey es la credencial
// administrativa del directorio; si falta, el server está mal configurado
// y el bridge no debe arrancar (ver wiring en main).
func NewHTTPDirectory(baseURL, serviceKey string) *HTTPDirectory {
	return &HTTPDirectory{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		ServiceKey: serviceKey,
		http:       &http.Client{Timeout: 10 * time.Second},
	}
}

type createUserRequest struct {
	Email        string         `json:"email"`
	Password     string         `json:"password"`
	EmailConfirm bool           `json:"email_confirm"`
	UserMetadata map[string]any `json:"user_metadata"`
}

type directoryError struct {
	Message string `json:"msg"`
	Error   string `json:"error"`
	ErrDesc string `json:"error_description"`
}

func (e *directoryError) text() string {
	for _, s := range []string{e.Message, e.ErrDesc, e.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

func (d *HTTPDirectory) CreateAccount(ctx context.Context, email, password string, profile Profile) error {
	payload := createUserRequest{
		Email:        email,
		Password:     password,
		EmailConfirm: true,
		UserMetadata: map[string]any{"full_name": profile.Name},
	}
	// avatar_url ausente se omite, no se manda null-string
	if profile.AvatarURL != "" {
		payload.UserMetadata["avatar_url"] = profile.AvatarURL
	}

	status, body, err := d.do(ctx, http.MethodPost, "/admin/users", payload)
	if err != nil {
		return err
	}
	if status/100 == 2 {
		return nil
	}

	var de directoryError
	_ = json.Unmarshal(body, &de)
	// El directorio señala duplicados con un mensaje, no con un código
	// estable; el texto es parte del contrato observado.
	if strings.Contains(de.text(), "already been registered") {
		return ErrAlreadyExists
	}
	return fmt.Errorf("directory create account: status=%d msg=%s", status, de.text())
}

func (d *HTTPDirectory) Authenticate(ctx context.Context, email, password string) (*Session, error) {
	payload := map[string]string{"email": email, "password": password}

	status, body, err := d.do(ctx, http.MethodPost, "/token?grant_type=password", payload)
	if err != nil {
		return nil, err
	}
	if status/100 != 2 {
		return nil, ErrAuthFailed
	}

	var s Session
	if err := json.Unmarshal(body, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if s.AccessToken == "" {
		return nil, ErrAuthFailed
	}
	return &s, nil
}

func (d *HTTPDirectory) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.BaseURL+"/health", nil)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", d.ServiceKey)
	resp, err := d.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("directory health: status=%d", resp.StatusCode)
	}
	return nil
}

func (d *HTTPDirectory) do(ctx context.Context, method, path string, payload any) (int, []byte, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, d.BaseURL+path, bytes.NewReader(b))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("apikey", d.ServiceKey)
	req.Header.Set("Authorization", "Bearer "+d.ServiceKey)

	resp, err := d.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	return resp.StatusCode, body, nil
}
