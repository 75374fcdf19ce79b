package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
)

type client struct {
	BaseURL   string
	APIKey    string
	OutFormat string // "json" | "text"
	HTTP      *http.Client
}

func (c *client) do(method, path string, body []byte) (int, []byte, error) {
	url := strings.TrimRight(c.BaseURL, "/") + path
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("X-Admin-API-Key", c.APIKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b, nil
}

func (c *client) print(status int, body []byte) {
	if c.OutFormat == "json" {
		var v any
		if json.Unmarshal(body, &v) == nil {
			p, _ := json.MarshalIndent(v, "", "  ")
			fmt.Println(string(p))
			return
		}
	}
	if len(body) > 0 {
		fmt.Println(string(body))
	} else {
		fmt.Printf("status=%d\n", status)
	}
}

func main() {
	var (
		baseURL = envOr("GATEJOHN_ADMIN_URL", "http://localhost:8080")
		apiKey  = envOr("GATEJOHN_ADMIN_KEY", "")
		out     = envOr("GATEJOHN_OUT", "text")
		timeout = 30 * time.Second
	)

	root := &cobra.Command{
		Use:   "gatejohnctl",
		Short: "CLI admin para el bridge SSO (vía /v1/admin)",
	}

	root.PersistentFlags().StringVar(&baseURL, "admin-api-url", baseURL, "URL base del Admin API (env GATEJOHN_ADMIN_URL)")
	root.PersistentFlags().StringVar(&apiKey, "admin-api-key", apiKey, "API key del Admin API (env GATEJOHN_ADMIN_KEY)")
	root.PersistentFlags().StringVar(&out, "out", out, "Formato de salida: json|text")

	cl := &client{HTTP: &http.Client{Timeout: timeout}}
	requireKey := func(cmd *cobra.Command, args []string) error {
		cl.BaseURL, cl.APIKey, cl.OutFormat = baseURL, apiKey, out
		if apiKey == "" {
			return fmt.Errorf("falta API key (flag --admin-api-key o env GATEJOHN_ADMIN_KEY)")
		}
		return nil
	}

	// grupo admin
	adminCmd := &cobra.Command{
		Use:               "admin",
		Short:             "Operaciones administrativas",
		PersistentPreRunE: requireKey,
	}

	// ping: readiness del server (no requiere key, pero la dejamos pasar)
	pingCmd := &cobra.Command{
		Use:   "ping",
		Short: "Readiness del server",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := cl.do("GET", "/readyz", nil)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("ping fallo: status=%d body=%s", status, string(body))
			}
			if cl.OutFormat == "text" {
				fmt.Println("ok")
				return nil
			}
			cl.print(status, body)
			return nil
		},
	}

	// tenants create
	var crName, crSlug, crLogo, crColor, crDomain string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Crear un tenant",
		RunE: func(cmd *cobra.Command, args []string) error {
			if crName == "" || crSlug == "" {
				return fmt.Errorf("--name y --slug son requeridos")
			}
			payload := map[string]any{"name": crName, "slug": crSlug}
			if crLogo != "" {
				payload["logo_url"] = crLogo
			}
			if crColor != "" {
				payload["brand_color"] = crColor
			}
			if crDomain != "" {
				payload["primary_domain"] = crDomain
			}
			b, _ := json.Marshal(payload)
			status, body, err := cl.do("POST", "/v1/admin/tenants", b)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("create fallo: status=%d body=%s", status, string(body))
			}
			cl.print(status, body)
			return nil
		},
	}
	createCmd.Flags().StringVar(&crName, "name", "", "Nombre del tenant")
	createCmd.Flags().StringVar(&crSlug, "slug", "", "Slug del tenant (ej. acme)")
	createCmd.Flags().StringVar(&crLogo, "logo-url", "", "URL del logo (opcional)")
	createCmd.Flags().StringVar(&crColor, "brand-color", "", "Color de marca (opcional)")
	createCmd.Flags().StringVar(&crDomain, "primary-domain", "", "Dominio primario (opcional)")

	// tenants get
	var getSlug string
	getCmd := &cobra.Command{
		Use:   "get",
		Short: "Ver un tenant (sin secretos)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if getSlug == "" {
				return fmt.Errorf("--slug es requerido")
			}
			status, body, err := cl.do("GET", "/v1/admin/tenants/"+getSlug, nil)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("get fallo: status=%d body=%s", status, string(body))
			}
			cl.print(status, body)
			return nil
		},
	}
	getCmd.Flags().StringVar(&getSlug, "slug", "", "Slug del tenant")

	// tenants set-sso-secret
	var setSlug, setSecret string
	setSecretCmd := &cobra.Command{
		Use:   "set-sso-secret",
		Short: "Setear o rotar el shared secret de SSO del tenant",
		RunE: func(cmd *cobra.Command, args []string) error {
			if setSlug == "" {
				return fmt.Errorf("--slug es requerido")
			}
			if setSecret == "" {
				return fmt.Errorf("--secret es requerido")
			}
			b, _ := json.Marshal(map[string]string{"secret": setSecret})
			status, body, err := cl.do("PUT", "/v1/admin/tenants/"+setSlug+"/sso-secret", b)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("set-sso-secret fallo: status=%d body=%s", status, string(body))
			}
			fmt.Println("ok")
			return nil
		},
	}
	setSecretCmd.Flags().StringVar(&setSlug, "slug", "", "Slug del tenant")
	setSecretCmd.Flags().StringVar(&setSecret, "secret", "", "Shared secret en claro (se cifra server-side)")

	// tenants clear-sso-secret
	var clearSlug string
	clearSecretCmd := &cobra.Command{
		Use:   "clear-sso-secret",
		Short: "Deshabilitar SSO del tenant borrando su secreto",
		RunE: func(cmd *cobra.Command, args []string) error {
			if clearSlug == "" {
				return fmt.Errorf("--slug es requerido")
			}
			status, body, err := cl.do("DELETE", "/v1/admin/tenants/"+clearSlug+"/sso-secret", nil)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("clear-sso-secret fallo: status=%d body=%s", status, string(body))
			}
			fmt.Println("ok")
			return nil
		},
	}
	clearSecretCmd.Flags().StringVar(&clearSlug, "slug", "", "Slug del tenant")

	// assertion sign: genera un JWT HS256 de prueba para el exchange.
	// Herramienta local, no llama al server.
	var signSecret, signEmail, signName, signAvatar string
	var signTTL time.Duration
	signCmd := &cobra.Command{
		Use:   "sign",
		Short: "Firmar una aserción HS256 de prueba",
		RunE: func(cmd *cobra.Command, args []string) error {
			if signSecret == "" || signEmail == "" || signName == "" {
				return fmt.Errorf("--secret, --email y --name son requeridos")
			}
			now := time.Now()
			claims := jwtv5.MapClaims{
				"email": signEmail,
				"name":  signName,
				"iat":   now.Unix(),
				"exp":   now.Add(signTTL).Unix(),
			}
			if signAvatar != "" {
				claims["avatar_url"] = signAvatar
			}
			tok := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
			s, err := tok.SignedString([]byte(signSecret))
			if err != nil {
				return err
			}
			fmt.Println(s)
			return nil
		},
	}
	signCmd.Flags().StringVar(&signSecret, "secret", "", "Shared secret del tenant")
	signCmd.Flags().StringVar(&signEmail, "email", "", "Claim email")
	signCmd.Flags().StringVar(&signName, "name", "", "Claim name")
	signCmd.Flags().StringVar(&signAvatar, "avatar-url", "", "Claim avatar_url (opcional)")
	signCmd.Flags().DurationVar(&signTTL, "ttl", 5*time.Minute, "Vigencia del token")

	// wiring
	tenantsCmd := &cobra.Command{Use: "tenants", Short: "Operaciones sobre tenants"}
	tenantsCmd.AddCommand(createCmd, getCmd, setSecretCmd, clearSecretCmd)

	assertionCmd := &cobra.Command{Use: "assertion", Short: "Herramientas de aserciones"}
	assertionCmd.AddCommand(signCmd)

	adminCmd.AddCommand(pingCmd, tenantsCmd)
	root.AddCommand(adminCmd, assertionCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
