package apmec

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2"

	"github.com/pineunity/apmec-horizon/internal/config"
)

// AuthTokenHeader is the header Keystone-authenticated services read.
const AuthTokenHeader = "X-Auth-Token"

// newHTTPClient builds the HTTP client for cfg: TLS settings first, then the
// credential layer on top.
func newHTTPClient(cfg config.OrchestratorConfig) (*http.Client, error) {
	base := http.DefaultTransport.(*http.Transport).Clone()

	if cfg.Insecure {
		tcc := base.TLSClientConfig.Clone()
		if tcc == nil {
			tcc = &tls.Config{}
		}
		tcc.InsecureSkipVerify = true
		base.TLSClientConfig = tcc
	}

	if cfg.CACert != "" {
		pem, err := os.ReadFile(cfg.CACert)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA bundle %s: %w", cfg.CACert, err)
		}
		if err := trustCa(base, pem); err != nil {
			return nil, fmt.Errorf("failed to add CA bundle %s: %w", cfg.CACert, err)
		}
	}

	var rt http.RoundTripper = base
	if cfg.Auth.Token != "" {
		source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Auth.Token})
		switch cfg.Auth.Mode {
		case config.AuthModeBearer:
			rt = &oauth2.Transport{Source: source, Base: base}
		case config.AuthModeNone:
		default:
			rt = &keystoneTransport{source: source, base: base}
		}
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = config.DefaultTimeout
	}

	return &http.Client{Transport: rt, Timeout: timeout}, nil
}

// trustCa appends the PEM encoded certificates to the transport's root pool.
func trustCa(tran *http.Transport, pem []byte) error {
	tcc := tran.TLSClientConfig.Clone()
	if tcc == nil {
		tcc = &tls.Config{}
	}

	rootcas := tcc.RootCAs
	if rootcas == nil {
		if system, err := x509.SystemCertPool(); err == nil {
			rootcas = system
		} else {
			rootcas = x509.NewCertPool()
		}
	}
	if !rootcas.AppendCertsFromPEM(pem) {
		return fmt.Errorf("no certificates found")
	}
	tcc.RootCAs = rootcas

	tran.TLSClientConfig = tcc
	return nil
}

// keystoneTransport presents the token the way OpenStack services expect it.
type keystoneTransport struct {
	source oauth2.TokenSource
	base   http.RoundTripper
}

func (t *keystoneTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	tok, err := t.source.Token()
	if err != nil {
		return nil, err
	}
	r := req.Clone(req.Context())
	r.Header.Set(AuthTokenHeader, tok.AccessToken)
	return t.base.RoundTrip(r)
}
