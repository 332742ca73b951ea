package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthMode represents the authentication mode for the application.
type AuthMode string

const (
	// AuthModeOAuth uses OAuth/OIDC for single sign-on.
	AuthModeOAuth AuthMode = "oauth"
	// AuthModeMock completes single sign-on locally (for development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "oauth", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: oauth, mock)", v)
	}
}

// DirectoryBackend selects where password accounts are looked up.
type DirectoryBackend string

const (
	DirectoryBackendStatic   DirectoryBackend = "static"
	DirectoryBackendPostgres DirectoryBackend = "postgres"
)

// UnmarshalText implements encoding.TextUnmarshaler for DirectoryBackend.
func (d *DirectoryBackend) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "static", "postgres":
		*d = DirectoryBackend(v)
		return nil
	default:
		return fmt.Errorf("invalid DirectoryBackend: %q (valid options: static, postgres)", v)
	}
}

// DefaultGoogleIssuer is Google's OIDC issuer.
const DefaultGoogleIssuer = "https://accounts.google.com"

// OIDCProviderConfig holds the client registration for one identity provider.
type OIDCProviderConfig struct {
	ClientID     string   `env:"CLIENT_ID"`
	ClientSecret string   `env:"CLIENT_SECRET"`
	IssuerURL    string   `env:"ISSUER_URL"`
	Scopes       []string `env:"SCOPES"        envDefault:"openid,profile,email" envSeparator:","`
}

// Configured reports whether the provider has enough settings to run discovery.
func (o OIDCProviderConfig) Configured() bool {
	return o.ClientID != "" && o.IssuerURL != ""
}

func (o *OIDCProviderConfig) sanitize(defaultIssuer string) {
	o.ClientID = strings.TrimSpace(o.ClientID)
	o.IssuerURL = strings.TrimRight(strings.TrimSpace(o.IssuerURL), "/")
	if o.IssuerURL == "" {
		o.IssuerURL = defaultIssuer
	}
}

// DevAuthConfig controls the identities synthesized when AUTH_MODE=mock.
type DevAuthConfig struct {
	GoogleEmail    string `env:"GOOGLE_EMAIL"    envDefault:"user@gmail.com"`
	MicrosoftEmail string `env:"MICROSOFT_EMAIL" envDefault:"user@outlook.com"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines how single sign-on completes.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"mock"`

	// Directory selects the password account source.
	Directory DirectoryBackend `env:"AUTH_DIRECTORY" envDefault:"static"`

	// BcryptCost is used when hashing the static demo directory and seeding accounts.
	BcryptCost int `env:"AUTH_BCRYPT_COST" envDefault:"10"`

	Google    OIDCProviderConfig `envPrefix:"OIDC_GOOGLE_"`
	Microsoft OIDCProviderConfig `envPrefix:"OIDC_MICROSOFT_"`

	// AllowedDomains restricts SSO sign-in to these registrable email domains.
	// Empty allows every verified address.
	AllowedDomains []string `env:"AUTH_ALLOWED_DOMAINS" envSeparator:","`

	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`
}

// Sanitize applies defaults and normalizes provider settings.
func (a *AuthConfig) Sanitize() {
	if a.Mode == "" {
		a.Mode = AuthModeMock
	}
	if a.Directory == "" {
		a.Directory = DirectoryBackendStatic
	}
	if a.BcryptCost < 4 || a.BcryptCost > 31 {
		a.BcryptCost = 10
	}
	a.Google.sanitize(DefaultGoogleIssuer)
	// Microsoft issuers are tenant specific, so there is no usable default.
	a.Microsoft.sanitize("")

	domains := a.AllowedDomains[:0]
	for _, d := range a.AllowedDomains {
		if d = strings.ToLower(strings.TrimSpace(d)); d != "" {
			domains = append(domains, d)
		}
	}
	a.AllowedDomains = domains
}

// EnabledProviders returns the names of providers with a complete client
// registration, in display order.
func (a *AuthConfig) EnabledProviders() []string {
	var out []string
	if a.Google.Configured() {
		out = append(out, "google")
	}
	if a.Microsoft.Configured() {
		out = append(out, "microsoft")
	}
	return out
}

const (
	// DevTokenSecret signs tokens in development when TOKEN_SECRET is unset.
	DevTokenSecret = "bookms-development-secret"
	// MinTokenSecretLength is the shortest accepted HMAC secret.
	MinTokenSecretLength = 16
)

// TokenConfig controls the tokens issued at sign-in.
type TokenConfig struct {
	Secret string        `env:"SECRET" envDefault:"bookms-development-secret"`
	Issuer string        `env:"ISSUER" envDefault:"bookms"`
	TTL    time.Duration `env:"TTL"    envDefault:"1h"`
}

// Sanitize applies defaults to token settings.
func (t *TokenConfig) Sanitize() {
	if t.TTL <= 0 {
		t.TTL = time.Hour
	}
	if t.Issuer = strings.TrimSpace(t.Issuer); t.Issuer == "" {
		t.Issuer = "bookms"
	}
}
